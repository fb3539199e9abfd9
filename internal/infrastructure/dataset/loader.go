package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/nutrimatch/backend/internal/domain"
)

// Logical columns of the nutrient dataset
const (
	colFoodID      = "food_id"
	colCategory    = "category"
	colName        = "canonical_name"
	colAliases     = "aliases"
	colDescription = "description"
	colCalories    = "calories"
	colProtein     = "protein"
	colCarbs       = "carbs"
	colFat         = "fat"
	colSodium      = "sodium"
	colFiber       = "fiber"
	colPotassium   = "potassium"
)

// headerColumns maps accepted header spellings (government dataset or English) to logical columns
var headerColumns = map[string]string{
	"整合編號":      colFoodID,
	"食品分類":      colCategory,
	"樣品名稱":      colName,
	"俗名":        colAliases,
	"內容物描述":     colDescription,
	"熱量(kcal)":  colCalories,
	"粗蛋白(g)":    colProtein,
	"總碳水化合物(g)": colCarbs,
	"粗脂肪(g)":    colFat,
	"鈉(mg)":     colSodium,
	"膳食纖維(g)":   colFiber,
	"鉀(mg)":     colPotassium,

	"food_id":        colFoodID,
	"category":       colCategory,
	"canonical_name": colName,
	"name":           colName,
	"aliases":        colAliases,
	"description":    colDescription,
	"calories":       colCalories,
	"protein":        colProtein,
	"carbs":          colCarbs,
	"fat":            colFat,
	"sodium":         colSodium,
	"fiber":          colFiber,
	"potassium":      colPotassium,
}

var requiredColumns = []string{
	colFoodID, colCategory, colName,
	colCalories, colProtein, colCarbs, colFat, colSodium, colFiber, colPotassium,
}

// aliasSeparators splits the free-text alias cells
var aliasSeparators = regexp.MustCompile(`[，,;/、\n\r]+`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSource loads the nutrient dataset from a CSV file and the synonym table
// from a YAML file (or the built-in table)
type CSVSource struct {
	Path         string
	SynonymsPath string
}

// Load reads and parses both files
func (s CSVSource) Load(ctx context.Context) ([]domain.FoodRecord, []domain.SynonymGroup, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open dataset: %v", domain.ErrDatasetInvalid, err)
	}
	defer f.Close()

	records, err := ParseCSV(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	synonyms, err := LoadSynonyms(s.SynonymsPath)
	if err != nil {
		return nil, nil, err
	}
	return records, synonyms, nil
}

// ParseCSV reads dataset rows into records in file order. A missing required
// column, a malformed row or an empty dataset fails the whole load; an
// unparseable nutrient cell becomes 0.
func ParseCSV(ctx context.Context, r io.Reader) ([]domain.FoodRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read dataset: %v", domain.ErrDatasetInvalid, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: dataset is empty", domain.ErrDatasetInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrDatasetInvalid, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.FoodRecord
	for {
		if len(records)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDatasetInvalid, err)
		}
		records = append(records, rowRecord(row, index))
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: dataset has no rows", domain.ErrDatasetInvalid)
	}
	return records, nil
}

// columnIndex resolves logical columns to positions in the header row
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		col, ok := headerColumns[name]
		if !ok {
			col, ok = headerColumns[strings.ToLower(name)]
		}
		if !ok {
			continue
		}
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrDatasetInvalid, strings.Join(missing, ", "))
	}
	return index, nil
}

func rowRecord(row []string, index map[string]int) domain.FoodRecord {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	num := func(col string) float64 {
		return parseNutrient(cell(col))
	}

	aliases := append(splitAliases(cell(colAliases)), splitAliases(cell(colDescription))...)

	return domain.FoodRecord{
		FoodID:        cell(colFoodID),
		Category:      cell(colCategory),
		CanonicalName: cell(colName),
		Aliases:       aliases,
		Per100g: domain.NutrientVector{
			Calories:  num(colCalories),
			Protein:   num(colProtein),
			Carbs:     num(colCarbs),
			Fat:       num(colFat),
			Sodium:    num(colSodium),
			Fiber:     num(colFiber),
			Potassium: num(colPotassium),
		},
	}
}

// parseNutrient treats blank, non-numeric and negative cells as 0
func parseNutrient(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func splitAliases(value string) []string {
	if value == "" || strings.EqualFold(value, "nan") {
		return nil
	}
	var out []string
	for _, part := range aliasSeparators.Split(value, -1) {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
