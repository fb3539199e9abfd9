package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
)

// testRecords is a small slice of the nutrient database in dataset order
func testRecords() []domain.FoodRecord {
	return []domain.FoodRecord{
		{FoodID: "A0100101", Category: "穀物類", CanonicalName: "白飯", Aliases: []string{"米飯"},
			Per100g: domain.NutrientVector{Calories: 183, Protein: 3.1, Carbs: 41, Fat: 0.3, Sodium: 1, Fiber: 0.6, Potassium: 29}},
		{FoodID: "A0100201", Category: "穀物類", CanonicalName: "糙米飯",
			Per100g: domain.NutrientVector{Calories: 178, Protein: 3.6, Carbs: 37.9, Fat: 1, Sodium: 2, Fiber: 2.4, Potassium: 97}},
		{FoodID: "I0402401", Category: "肉類", CanonicalName: "雞胸肉", Aliases: []string{"清雞胸"},
			Per100g: domain.NutrientVector{Calories: 117, Protein: 22.4, Carbs: 0, Fat: 0.9, Sodium: 45, Fiber: 0, Potassium: 382}},
		{FoodID: "I0402501", Category: "肉類", CanonicalName: "雞腿肉",
			Per100g: domain.NutrientVector{Calories: 157, Protein: 18.5, Carbs: 0, Fat: 8.7, Sodium: 88, Fiber: 0, Potassium: 260}},
		{FoodID: "J0100101", Category: "魚貝類", CanonicalName: "鮭魚", Aliases: []string{"三文魚"},
			Per100g: domain.NutrientVector{Calories: 200, Protein: 20.5, Carbs: 0, Fat: 12.5, Sodium: 47, Fiber: 0, Potassium: 360}},
		{FoodID: "F0100101", Category: "蔬菜類", CanonicalName: "高麗菜", Aliases: []string{"甘藍"},
			Per100g: domain.NutrientVector{Calories: 23, Protein: 1.3, Carbs: 4.8, Fat: 0.1, Sodium: 11, Fiber: 1.1, Potassium: 187}},
		{FoodID: "H0100101", Category: "水果類", CanonicalName: "香蕉",
			Per100g: domain.NutrientVector{Calories: 85, Protein: 1.5, Carbs: 22.1, Fat: 0.1, Sodium: 0, Fiber: 1.6, Potassium: 368}},
		{FoodID: "E0100101", Category: "蛋類", CanonicalName: "雞蛋", Aliases: []string{"蛋"},
			Per100g: domain.NutrientVector{Calories: 134, Protein: 12.5, Carbs: 1.8, Fat: 8.8, Sodium: 138, Fiber: 0, Potassium: 127}},
	}
}

func testSynonyms() []domain.SynonymGroup {
	return []domain.SynonymGroup{
		{Canonical: "白飯", Aliases: []string{"米飯", "白米飯"}},
		{Canonical: "雞胸肉", Aliases: []string{"雞胸", "雞柳", "雞里肌"}},
		{Canonical: "高麗菜", Aliases: []string{"甘藍", "包心菜"}},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(testRecords(), testSynonyms())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

// staticSource is a DatasetSource returning fixed data or a fixed error
type staticSource struct {
	mu       sync.Mutex
	records  []domain.FoodRecord
	synonyms []domain.SynonymGroup
	err      error
	loads    int
}

func (s *staticSource) Load(ctx context.Context) ([]domain.FoodRecord, []domain.SynonymGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.records, s.synonyms, nil
}

func (s *staticSource) set(records []domain.FoodRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.err = err
}

func newTestCatalog(t *testing.T) (*Catalog, *staticSource) {
	t.Helper()
	src := &staticSource{records: testRecords(), synonyms: testSynonyms()}
	catalog := NewCatalog(src, nil)
	if _, err := catalog.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	return catalog, src
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string][]byte
	getError error
	setError error
	gets     int
	sets     int
	deletes  int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getError != nil {
		return nil, m.getError
	}
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.data, key)
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}
