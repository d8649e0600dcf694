package Waitlist

import (
	"testing"

	"MindLine/Models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func entry(id uint, name string, opts func(*Models.WaitlistEntry)) Models.WaitlistEntry {
	e := Models.WaitlistEntry{
		Model:   gorm.Model{ID: id},
		Urgency: Models.UrgencyMedium,
		Patient: Models.Patient{
			Name:      name,
			Phone:     "+15550100",
			Diagnosis: "Anxiety",
			Insurance: "Aetna",
		},
	}
	if opts != nil {
		opts(&e)
	}
	return e
}

func names(entries []Models.WaitlistEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Patient.Name)
	}
	return out
}

func TestQueryDropsExcluded(t *testing.T) {
	entries := []Models.WaitlistEntry{
		entry(1, "Ann", nil),
		entry(2, "Bo", func(e *Models.WaitlistEntry) { e.Excluded = true }),
		entry(3, "Cal", nil),
	}

	result := Query(entries, Filters{}, nil)

	assert.Equal(t, []string{"Ann", "Cal"}, names(result))
	for _, e := range result {
		assert.False(t, e.Excluded)
	}
}

func TestQuerySearchTerm(t *testing.T) {
	entries := []Models.WaitlistEntry{
		entry(1, "Annabel Lee", nil),
		entry(2, "Bo Diddley", nil),
		entry(3, "Joanna Smith", nil),
	}

	result := Query(entries, Filters{SearchTerm: "ann"}, nil)

	assert.Equal(t, []string{"Annabel Lee", "Joanna Smith"}, names(result))
}

func TestQueryHandRaisedPreservesOrder(t *testing.T) {
	entries := []Models.WaitlistEntry{
		entry(1, "Ann", func(e *Models.WaitlistEntry) { e.HandRaised = true }),
		entry(2, "Bo", nil),
		entry(3, "Cal", func(e *Models.WaitlistEntry) { e.HandRaised = true }),
		entry(4, "Dee", nil),
	}

	result := Query(entries, Filters{HandRaised: true}, nil)

	assert.Equal(t, []string{"Ann", "Cal"}, names(result))
}

func TestQueryMaxDistance(t *testing.T) {
	entries := []Models.WaitlistEntry{
		entry(1, "Near", func(e *Models.WaitlistEntry) { e.Patient.Distance = 4 }),
		entry(2, "Far", func(e *Models.WaitlistEntry) { e.Patient.Distance = 25 }),
		entry(3, "Unknown", nil), // distance 0 means unknown, passes
		entry(4, "Edge", func(e *Models.WaitlistEntry) { e.Patient.Distance = 10 }),
	}

	result := Query(entries, Filters{MaxDistance: 10}, nil)

	assert.Equal(t, []string{"Near", "Unknown", "Edge"}, names(result))
}

func TestQueryDiagnosisAndInsuranceExact(t *testing.T) {
	entries := []Models.WaitlistEntry{
		entry(1, "Ann", nil),
		entry(2, "Bo", func(e *Models.WaitlistEntry) { e.Patient.Diagnosis = "PTSD" }),
		entry(3, "Cal", func(e *Models.WaitlistEntry) { e.Patient.Insurance = "Cigna" }),
	}

	assert.Equal(t, []string{"Ann", "Cal"}, names(Query(entries, Filters{Diagnosis: "Anxiety"}, nil)))
	assert.Equal(t, []string{"Ann", "Bo"}, names(Query(entries, Filters{Insurance: "Aetna"}, nil)))
}

func TestQueryWithProvider(t *testing.T) {
	provider := &Models.Provider{
		Model:             gorm.Model{ID: 7},
		Specialties:       []string{"Anxiety"},
		InsuranceAccepted: []string{"Aetna"},
		VirtualAvailable:  true,
	}
	providerID := provider.ID

	entries := []Models.WaitlistEntry{
		// Fresh match, low urgency.
		entry(1, "Ann", func(e *Models.WaitlistEntry) { e.Urgency = Models.UrgencyLow }),
		// On the provider's own waitlist but would not match fresh.
		entry(2, "Bo", func(e *Models.WaitlistEntry) {
			e.ProviderID = &providerID
			e.Patient.Diagnosis = "Chronic Pain"
		}),
		// No match and not on the waitlist: filtered out.
		entry(3, "Cal", func(e *Models.WaitlistEntry) { e.Patient.Insurance = "Cigna" }),
		// Fresh match, high urgency: sorts ahead of Ann.
		entry(4, "Dee", func(e *Models.WaitlistEntry) { e.Urgency = Models.UrgencyHigh }),
	}

	result := Query(entries, Filters{}, provider)

	assert.Equal(t, []string{"Bo", "Dee", "Ann"}, names(result))
}

func TestQueryDoesNotMutateInput(t *testing.T) {
	provider := &Models.Provider{
		Model:             gorm.Model{ID: 7},
		Specialties:       []string{"Anxiety"},
		InsuranceAccepted: []string{"Aetna"},
	}
	entries := []Models.WaitlistEntry{
		entry(1, "Ann", func(e *Models.WaitlistEntry) { e.Urgency = Models.UrgencyLow }),
		entry(2, "Bo", func(e *Models.WaitlistEntry) { e.Urgency = Models.UrgencyHigh }),
	}

	Query(entries, Filters{}, provider)

	assert.Equal(t, []string{"Ann", "Bo"}, names(entries))
}

func TestQueryEmptyInput(t *testing.T) {
	assert.Empty(t, Query(nil, Filters{SearchTerm: "ann"}, nil))
	assert.Empty(t, Query([]Models.WaitlistEntry{}, Filters{}, nil))
}
