package Cache

import (
	"MindLine/Models"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key scopes cached waitlist views to a single tenant. Practice groups
// share nothing with each other, including a provider's cached matches.
type Key struct {
	PracticeGroupID uint
	ProviderID      uint
}

// MatchCache keeps recently computed per-provider waitlist match results
// so the dashboard doesn't re-run the evaluator on every poll. Any write
// to the waitlist or a provider invalidates the affected entry.
type MatchCache struct {
	cache *lru.Cache[Key, []Models.WaitlistEntry]
}

func NewMatchCache(size int) (*MatchCache, error) {
	cache, err := lru.New[Key, []Models.WaitlistEntry](size)
	if err != nil {
		return nil, err
	}
	return &MatchCache{cache: cache}, nil
}

func (mc *MatchCache) Get(practiceGroupID, providerID uint) ([]Models.WaitlistEntry, bool) {
	return mc.cache.Get(Key{PracticeGroupID: practiceGroupID, ProviderID: providerID})
}

func (mc *MatchCache) Put(practiceGroupID, providerID uint, entries []Models.WaitlistEntry) {
	mc.cache.Add(Key{PracticeGroupID: practiceGroupID, ProviderID: providerID}, entries)
}

func (mc *MatchCache) Invalidate(practiceGroupID, providerID uint) {
	mc.cache.Remove(Key{PracticeGroupID: practiceGroupID, ProviderID: providerID})
}

// InvalidateAll drops every cached list, used when a waitlist-wide change
// (entry added, excluded, hand raised) can affect any provider's view.
func (mc *MatchCache) InvalidateAll() {
	mc.cache.Purge()
}
