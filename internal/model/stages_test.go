package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextStageFollowsPipeline(t *testing.T) {
	t.Parallel()

	next, ok := NextStage(StageSaved)
	require.True(t, ok)
	require.Equal(t, StageApplied, next)

	next, ok = NextStage(StageInterview)
	require.True(t, ok)
	require.Equal(t, StageOffer, next)

	_, ok = NextStage(StageOffer)
	require.False(t, ok)
	_, ok = NextStage(StageRejected)
	require.False(t, ok)
	_, ok = NextStage("unknown")
	require.False(t, ok)
}

func TestDefaultBoardColumns(t *testing.T) {
	t.Parallel()

	b := DefaultBoard()
	require.Equal(t, []string{
		StageSaved, StageApplied, StageScreening, StageAptitude,
		StageTechnical, StageInterview, StageOffer, StageRejected,
	}, b.ColumnIDs())
	for _, col := range b {
		require.NotNil(t, col.Items)
	}
	require.False(t, IsTrackingStage(StageSaved))
	require.True(t, IsTrackingStage(StageRejected))

	order := PipelineOrder()
	order[0] = "mutated"
	require.Equal(t, StageSaved, PipelineOrder()[0])
}

func TestBoardCloneIsDeep(t *testing.T) {
	t.Parallel()

	b := DefaultBoard()
	b[1].Items = append(b[1].Items, Card{
		ID:      "c1",
		History: []HistoryEntry{{Status: StageApplied, Date: time.Now(), Type: HistoryTypeStatusChange}},
	})

	clone := b.Clone()
	clone[1].Items[0].Company = "changed"
	clone[1].Items[0].History[0].Status = "changed"

	require.Empty(t, b[1].Items[0].Company)
	require.Equal(t, StageApplied, b[1].Items[0].History[0].Status)
	require.Equal(t, 1, b.CardCount())
}
