package id

import (
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)

	_, err = ulid.Parse(a)
	require.NoError(t, err)
	assert.Less(t, a, b)
}

type failingEntropy struct{}

func (failingEntropy) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNewULIDReturnsEntropyError(t *testing.T) {
	ref, err := newULID(time.Now(), failingEntropy{})
	assert.Error(t, err)
	assert.Empty(t, ref)
}

func TestNextTradeIDMonotonicWithinMillisecond(t *testing.T) {
	now := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	first := nextTradeID(now)
	second := nextTradeID(now)
	third := nextTradeID(now.Add(-time.Second))

	assert.Equal(t, now.UnixMilli(), first)
	assert.Equal(t, first+1, second)
	assert.Equal(t, second+1, third)
}

func TestObserveAdvancesSequence(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).UnixMilli()
	Observe(future)

	assert.Greater(t, NextTradeID(), future)
}
