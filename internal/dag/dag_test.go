package dag

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelfs/sentinel/internal/wal"
)

func testEntry(sequence uint32, deps []uuid.UUID) wal.Entry {
	return wal.NewEntryWithDeps(wal.Operation{Kind: wal.KindCreateFolder, Path: "/test"}, sequence, deps)
}

func TestSimpleGraphSingleLevel(t *testing.T) {
	e1 := testEntry(0, nil)
	e2 := testEntry(1, nil)

	g, err := FromEntries([]wal.Entry{e1, e2})
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, g.LevelCount())
	assert.Len(t, g.Levels()[0], 2)
}

func TestSequentialGraphOneEntryPerLevel(t *testing.T) {
	e1 := testEntry(0, nil)
	e2 := testEntry(1, []uuid.UUID{e1.ID})
	e3 := testEntry(2, []uuid.UUID{e2.ID})

	g, err := FromEntries([]wal.Entry{e1, e2, e3})
	require.NoError(t, err)
	assert.Equal(t, 3, g.LevelCount())
	for _, level := range g.Levels() {
		assert.Len(t, level, 1)
	}
}

func TestDiamondGraphParallelMiddleLevel(t *testing.T) {
	a := testEntry(0, nil)
	b := testEntry(1, []uuid.UUID{a.ID})
	c := testEntry(2, []uuid.UUID{a.ID})
	d := testEntry(3, []uuid.UUID{b.ID, c.ID})

	g, err := FromEntries([]wal.Entry{a, b, c, d})
	require.NoError(t, err)
	assert.Equal(t, 3, g.LevelCount())

	levels := g.Levels()
	assert.Len(t, levels[0], 1)
	assert.Len(t, levels[1], 2)
	assert.Len(t, levels[2], 1)
}

func TestCycleDetected(t *testing.T) {
	a := testEntry(0, nil)
	b := testEntry(1, []uuid.UUID{a.ID})
	c := testEntry(2, []uuid.UUID{b.ID})
	a.DependsOn = []uuid.UUID{c.ID}

	_, err := FromEntries([]wal.Entry{a, b, c})
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestEmptyEntriesRejected(t *testing.T) {
	_, err := FromEntries(nil)
	assert.ErrorIs(t, err, ErrEmptyGraph)
}

func TestMissingDependencyRejected(t *testing.T) {
	fake := uuid.New()
	e := testEntry(0, []uuid.UUID{fake})

	_, err := FromEntries([]wal.Entry{e})
	require.Error(t, err)
	assert.Contains(t, err.Error(), fake.String())
}

func TestTopologicalOrderRespectsDependencies(t *testing.T) {
	a := testEntry(0, nil)
	b := testEntry(1, []uuid.UUID{a.ID})
	c := testEntry(2, []uuid.UUID{b.ID})

	g, err := FromEntries([]wal.Entry{a, b, c})
	require.NoError(t, err)

	order := g.TopologicalOrder()
	require.Len(t, order, 3)
	pos := func(id uuid.UUID) int {
		for i, e := range order {
			if e.ID == id {
				return i
			}
		}
		return -1
	}
	assert.Less(t, pos(a.ID), pos(b.ID))
	assert.Less(t, pos(b.ID), pos(c.ID))
}

func TestStatsReportsMaxParallelism(t *testing.T) {
	a := testEntry(0, nil)
	b := testEntry(1, []uuid.UUID{a.ID})
	c := testEntry(2, []uuid.UUID{a.ID})

	g, err := FromEntries([]wal.Entry{a, b, c})
	require.NoError(t, err)

	stats := g.Stats()
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.LevelCount)
	assert.Equal(t, 2, stats.MaxParallelism)
}
