package Cache

import (
	"testing"

	"MindLine/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCacheIsScopedPerPracticeGroup(t *testing.T) {
	cache, err := NewMatchCache(4)
	require.NoError(t, err)

	entries := []Models.WaitlistEntry{{PatientID: 1, Patient: Models.Patient{Name: "Ann"}}}
	cache.Put(1, 7, entries)

	got, ok := cache.Get(1, 7)
	require.True(t, ok)
	assert.Equal(t, "Ann", got[0].Patient.Name)

	// Same provider ID queried by another practice group never hits.
	_, ok = cache.Get(2, 7)
	assert.False(t, ok)
}

func TestMatchCacheInvalidate(t *testing.T) {
	cache, err := NewMatchCache(4)
	require.NoError(t, err)

	cache.Put(1, 7, []Models.WaitlistEntry{{PatientID: 1}})
	cache.Put(2, 7, []Models.WaitlistEntry{{PatientID: 2}})

	cache.Invalidate(1, 7)

	_, ok := cache.Get(1, 7)
	assert.False(t, ok)
	_, ok = cache.Get(2, 7)
	assert.True(t, ok)

	cache.InvalidateAll()
	_, ok = cache.Get(2, 7)
	assert.False(t, ok)
}
