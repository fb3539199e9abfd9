package dataset

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nutrimatch/backend/internal/domain"
)

//go:embed synonyms.yaml
var defaultSynonymsYAML []byte

type yamlSynonymFile struct {
	Groups []domain.SynonymGroup `yaml:"groups"`
}

// DefaultSynonyms returns the built-in curated synonym table
func DefaultSynonyms() ([]domain.SynonymGroup, error) {
	return ParseSynonyms(defaultSynonymsYAML)
}

// LoadSynonyms reads a synonym table from path, or the built-in table when path is empty
func LoadSynonyms(path string) ([]domain.SynonymGroup, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSynonyms()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read synonyms: %v", domain.ErrDatasetInvalid, err)
	}
	return ParseSynonyms(data)
}

// ParseSynonyms decodes a YAML synonym table. Every group needs a canonical
// name; blank aliases are dropped.
func ParseSynonyms(data []byte) ([]domain.SynonymGroup, error) {
	var file yamlSynonymFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode synonyms: %v", domain.ErrDatasetInvalid, err)
	}

	groups := make([]domain.SynonymGroup, 0, len(file.Groups))
	for i, g := range file.Groups {
		canonical := strings.TrimSpace(g.Canonical)
		if canonical == "" {
			return nil, fmt.Errorf("%w: synonym group %d has no canonical name", domain.ErrDatasetInvalid, i)
		}
		aliases := make([]string, 0, len(g.Aliases))
		for _, a := range g.Aliases {
			if a = strings.TrimSpace(a); a != "" {
				aliases = append(aliases, a)
			}
		}
		groups = append(groups, domain.SynonymGroup{Canonical: canonical, Aliases: aliases})
	}
	return groups, nil
}
