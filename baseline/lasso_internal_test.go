package baseline

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftThreshold(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2.0, softThreshold(3, 1))
	assert.Equal(t, -2.0, softThreshold(-3, 1))
	assert.Equal(t, 0.0, softThreshold(0.5, 1))
	assert.Equal(t, 0.0, softThreshold(-1, 1))
}

func TestAlphaPath(t *testing.T) {
	t.Parallel()
	path := alphaPath(2, DefaultLassoOptions())
	require.Len(t, path, 100)
	assert.InDelta(t, 2.0, path[0], 1e-12)
	assert.InDelta(t, 2e-3, path[99], 1e-12)
	for i := 1; i < len(path); i++ {
		assert.Less(t, path[i], path[i-1])
	}
}

func TestKFold_Partition(t *testing.T) {
	t.Parallel()
	folds := kFold(11, 3, rand.New(rand.NewPCG(1, 0)))
	require.Len(t, folds, 3)
	assert.Len(t, folds[0], 4)
	assert.Len(t, folds[1], 4)
	assert.Len(t, folds[2], 3)

	var all []int
	for _, f := range folds {
		all = append(all, f...)
	}
	sort.Ints(all)
	for i, v := range all {
		assert.Equal(t, i, v)
	}
}
