package usecase

import (
	"errors"
	"testing"

	"github.com/nutrimatch/backend/internal/domain"
)

func TestPortionEstimate(t *testing.T) {
	e := NewPortionEstimator(ProfileGeneral)

	tests := []struct {
		name            string
		category        string
		profile         string
		point           string
		wantProfile     string
		wantMin         float64
		wantMax         float64
		wantEstimated   float64
		categoryDefault bool
		profileDefault  bool
	}{
		{name: "known category", category: "肉類", profile: "general", wantProfile: ProfileGeneral, wantMin: 90, wantMax: 200, wantEstimated: 145},
		{name: "unknown category uses profile default", category: "其他", profile: "general", wantProfile: ProfileGeneral, wantMin: 100, wantMax: 250, wantEstimated: 175, categoryDefault: true},
		{name: "missing category uses profile default", category: "", profile: "", wantProfile: ProfileGeneral, wantMin: 100, wantMax: 250, wantEstimated: 175, categoryDefault: true},
		{name: "legacy profile name", category: "肉類", profile: "fitness", wantProfile: ProfileHighProtein, wantMin: 140, wantMax: 280, wantEstimated: 210},
		{name: "bento alias", category: "蔬菜類", profile: "Bento", wantProfile: ProfileGeneral, wantMin: 120, wantMax: 300, wantEstimated: 210},
		{name: "high-protein default range", category: "其他", profile: "high-protein", wantProfile: ProfileHighProtein, wantMin: 120, wantMax: 280, wantEstimated: 200, categoryDefault: true},
		{name: "unknown profile falls back", category: "肉類", profile: "keto", wantProfile: ProfileGeneral, wantMin: 90, wantMax: 200, wantEstimated: 145, profileDefault: true},
		{name: "min point", category: "肉類", profile: "general", point: "min", wantProfile: ProfileGeneral, wantMin: 90, wantMax: 200, wantEstimated: 90},
		{name: "max point", category: "肉類", profile: "general", point: "MAX", wantProfile: ProfileGeneral, wantMin: 90, wantMax: 200, wantEstimated: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Estimate(tt.category, tt.profile, tt.point)
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			if got.Profile != tt.wantProfile {
				t.Errorf("Profile = %q, want %q", got.Profile, tt.wantProfile)
			}
			if got.MinGrams != tt.wantMin || got.MaxGrams != tt.wantMax {
				t.Errorf("range = (%v, %v), want (%v, %v)", got.MinGrams, got.MaxGrams, tt.wantMin, tt.wantMax)
			}
			if got.Estimated != tt.wantEstimated {
				t.Errorf("Estimated = %v, want %v", got.Estimated, tt.wantEstimated)
			}
			if got.CategoryDefault != tt.categoryDefault {
				t.Errorf("CategoryDefault = %v, want %v", got.CategoryDefault, tt.categoryDefault)
			}
			if got.ProfileDefault != tt.profileDefault {
				t.Errorf("ProfileDefault = %v, want %v", got.ProfileDefault, tt.profileDefault)
			}
		})
	}
}

func TestPortionEstimateRejectsUnknownPoint(t *testing.T) {
	_, err := NewPortionEstimator("").Estimate("肉類", "", "huge")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestPortionRangesAreOrdered(t *testing.T) {
	for name, p := range portionProfiles {
		if p.fallback.min <= 0 || p.fallback.min > p.fallback.max {
			t.Errorf("%s fallback range %v is not ordered", name, p.fallback)
		}
		for category, r := range p.ranges {
			if r.min <= 0 || r.min > r.max {
				t.Errorf("%s/%s range %v is not ordered", name, category, r)
			}
		}
	}
}

func TestNewPortionEstimatorDefault(t *testing.T) {
	if got := NewPortionEstimator("nonsense").DefaultProfile(); got != ProfileGeneral {
		t.Errorf("DefaultProfile() = %q, want %q", got, ProfileGeneral)
	}
	if got := NewPortionEstimator("fitness").DefaultProfile(); got != ProfileHighProtein {
		t.Errorf("DefaultProfile() = %q, want %q", got, ProfileHighProtein)
	}
	if got := NewPortionEstimator("").Profiles(); len(got) != 2 || got[0] != ProfileGeneral {
		t.Errorf("Profiles() = %v", got)
	}
}
