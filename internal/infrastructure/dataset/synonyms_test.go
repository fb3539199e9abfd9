package dataset

import (
	"errors"
	"testing"

	"github.com/nutrimatch/backend/internal/domain"
)

func TestDefaultSynonyms(t *testing.T) {
	groups, err := DefaultSynonyms()
	if err != nil {
		t.Fatalf("DefaultSynonyms() error = %v", err)
	}
	if len(groups) != 20 {
		t.Fatalf("len(groups) = %d, want 20", len(groups))
	}
	if groups[0].Canonical != "白飯" {
		t.Errorf("first group = %q, want 白飯", groups[0].Canonical)
	}

	seen := make(map[string]bool)
	for _, g := range groups {
		if seen[g.Canonical] {
			t.Errorf("canonical %q listed twice", g.Canonical)
		}
		seen[g.Canonical] = true
		for _, a := range g.Aliases {
			if a == g.Canonical {
				t.Errorf("group %q repeats its canonical name as an alias", g.Canonical)
			}
		}
	}
}

func TestParseSynonyms(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "trims and drops blank aliases", input: "groups:\n  - canonical: ' 白飯 '\n    aliases: [米飯, '', ' 飯 ']\n", want: 1},
		{name: "no groups", input: "groups: []\n", want: 0},
		{name: "missing canonical", input: "groups:\n  - aliases: [米飯]\n", wantErr: true},
		{name: "not yaml", input: "groups: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := ParseSynonyms([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, domain.ErrDatasetInvalid) {
					t.Errorf("error = %v, want ErrDatasetInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSynonyms() error = %v", err)
			}
			if len(groups) != tt.want {
				t.Fatalf("len(groups) = %d, want %d", len(groups), tt.want)
			}
			if tt.want == 1 {
				g := groups[0]
				if g.Canonical != "白飯" || len(g.Aliases) != 2 || g.Aliases[1] != "飯" {
					t.Errorf("group = %+v", g)
				}
			}
		})
	}
}
