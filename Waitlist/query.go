package Waitlist

import (
	"sort"
	"strings"

	"MindLine/Matching"
	"MindLine/Models"

	"github.com/samber/lo"
)

// Filters narrows the waitlist before a provider is considered. Zero
// values mean "no filter"; HandRaised only filters when set to true.
// A patient distance of zero means unknown and passes MaxDistance.
type Filters struct {
	SearchTerm  string  `json:"search_term"`
	HandRaised  bool    `json:"hand_raised"`
	Diagnosis   string  `json:"diagnosis"`
	Insurance   string  `json:"insurance"`
	MaxDistance float64 `json:"max_distance"`
}

// Query filters and orders waitlist entries. The filter steps run in a
// fixed order: excluded, search term, hand-raised, distance, diagnosis,
// insurance, then provider. With a provider selected, entries already on
// that provider's waitlist sort ahead of fresh matches, ties broken by
// urgency. The input slice is never mutated.
func Query(entries []Models.WaitlistEntry, filters Filters, provider *Models.Provider) []Models.WaitlistEntry {
	result := lo.Filter(entries, func(entry Models.WaitlistEntry, _ int) bool {
		return !entry.Excluded
	})

	if filters.SearchTerm != "" {
		term := strings.ToLower(filters.SearchTerm)
		result = lo.Filter(result, func(entry Models.WaitlistEntry, _ int) bool {
			return strings.Contains(strings.ToLower(entry.Patient.Name), term)
		})
	}

	if filters.HandRaised {
		result = lo.Filter(result, func(entry Models.WaitlistEntry, _ int) bool {
			return entry.HandRaised
		})
	}

	if filters.MaxDistance > 0 {
		result = lo.Filter(result, func(entry Models.WaitlistEntry, _ int) bool {
			return entry.Patient.Distance == 0 || entry.Patient.Distance <= filters.MaxDistance
		})
	}

	if filters.Diagnosis != "" {
		result = lo.Filter(result, func(entry Models.WaitlistEntry, _ int) bool {
			return strings.EqualFold(entry.Patient.Diagnosis, filters.Diagnosis)
		})
	}

	if filters.Insurance != "" {
		result = lo.Filter(result, func(entry Models.WaitlistEntry, _ int) bool {
			return strings.EqualFold(entry.Patient.Insurance, filters.Insurance)
		})
	}

	if provider != nil {
		profile := provider.Profile()
		result = lo.Filter(result, func(entry Models.WaitlistEntry, _ int) bool {
			if entry.OnProviderWaitlist(provider.ID) {
				return true
			}
			return Matching.Evaluate(profile, entry.Patient.Needs()).Matches
		})

		sort.SliceStable(result, func(i, j int) bool {
			iOwn := result[i].OnProviderWaitlist(provider.ID)
			jOwn := result[j].OnProviderWaitlist(provider.ID)
			if iOwn != jOwn {
				return iOwn
			}
			return result[i].UrgencyRank() < result[j].UrgencyRank()
		})
	}

	return result
}
