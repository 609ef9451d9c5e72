package ui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModelAppliesBlockCommitted(t *testing.T) {
	m := newModel(nil)
	m.apply(Event{Kind: BlockCommitted, BlockNumber: 42})
	require.Equal(t, uint64(1), m.blocks)
	require.Len(t, m.tasks, 1)
	require.Contains(t, m.tasks[0], "block 42 committed")
}

func TestModelTaskListIsBounded(t *testing.T) {
	m := newModel(nil)
	for i := 0; i < maxTasks+5; i++ {
		m.apply(Event{Kind: BlockCommitted, BlockNumber: uint64(i)})
	}
	require.Len(t, m.tasks, maxTasks)
	require.Contains(t, m.tasks[len(m.tasks)-1], "block")
}

func TestModelRecordsFatal(t *testing.T) {
	m := newModel(nil)
	m.apply(Event{Kind: Fatal, Message: "undo signal received"})
	require.Equal(t, "undo signal received", m.fatal)
	require.Contains(t, m.View(), "fatal: undo signal received")
}

func TestIndexingGaugeCyclesEveryHundredBlocks(t *testing.T) {
	require.Equal(t, 0.0, indexingGauge(0))
	require.Equal(t, 0.5, indexingGauge(50))
	require.Equal(t, 0.0, indexingGauge(100))
}
