package drag

import (
	"testing"
	"time"

	"github.com/simonjohansson/jobboard/internal/board"
	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/stretchr/testify/require"
)

var (
	dayD  = time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)
	clock = time.Date(2024, 4, 9, 15, 30, 0, 0, time.UTC)
)

func fixedNow() time.Time { return clock }

func testBoard() model.Board {
	b := model.DefaultBoard()
	b = board.InsertCard(b, model.StageInterview, model.Card{ID: "i1", Company: "Acme", Date: dayD,
		History: []model.HistoryEntry{{Status: model.StageInterview, Date: dayD, Type: model.HistoryTypeStatusChange}}}, 0)
	b = board.InsertCard(b, model.StageInterview, model.Card{ID: "i2", Company: "Globex", Date: dayD}, 1)
	b = board.InsertCard(b, model.StageInterview, model.Card{ID: "i3", Company: "Initech", Date: dayD}, 2)
	b = board.InsertCard(b, model.StageSaved, model.Card{ID: "s1", Company: "Hooli", Date: dayD}, 0)
	b = board.InsertCard(b, model.StageOffer, model.Card{ID: "o1", Company: "Umbrella", Date: dayD, Description: "Platform team"}, 0)
	return b
}

func ids(b model.Board, columnID string) []string {
	col, _ := b.Column(columnID)
	out := make([]string, 0, len(col.Items))
	for _, c := range col.Items {
		out = append(out, c.ID)
	}
	return out
}

func job(b model.Board, id string) JobPayload {
	card, col, _ := board.FindCard(b, id)
	return JobPayload{Card: card, OriginColumnID: col}
}

func columnTarget(id string) *Target {
	return &Target{ID: id, Kind: TargetColumn}
}

func cardTarget(id string, pointerY float64) *Target {
	return &Target{ID: id, Kind: TargetCard, PointerY: pointerY, Top: 100, Height: 40}
}

func eventTypes(events []model.Event) []model.EventType {
	out := make([]model.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestInsertionIndex(t *testing.T) {
	t.Parallel()

	b := testBoard()
	require.Equal(t, 1, InsertionIndex(b, model.StageInterview, *cardTarget("i2", 110)))
	require.Equal(t, 2, InsertionIndex(b, model.StageInterview, *cardTarget("i2", 120)), "midpoint ties insert after")
	require.Equal(t, 3, InsertionIndex(b, model.StageInterview, *cardTarget("i3", 139)))
	require.Equal(t, 3, InsertionIndex(b, model.StageInterview, *columnTarget(model.StageInterview)))
	require.Equal(t, 0, InsertionIndex(b, model.StageRejected, *columnTarget(model.StageRejected)))
	require.Equal(t, 0, InsertionIndex(b, "nowhere", *columnTarget("nowhere")))
}

func TestReorderWithinColumnKeepsDateAndHistory(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnHover, fixedNow)
	require.NoError(t, r.Start(b, job(b, "i1")))

	over := r.Over(b, cardTarget("i3", 110))
	require.False(t, over.Changed)

	res := r.End(over.Board, cardTarget("i3", 110))
	require.True(t, res.Changed)
	require.False(t, r.Active())
	require.Equal(t, []string{"i2", "i3", "i1"}, ids(res.Board, model.StageInterview))
	require.Equal(t, []model.EventType{model.EventTypeCardReordered}, eventTypes(res.Events))

	card, _, _ := board.FindCard(res.Board, "i1")
	require.Equal(t, dayD, card.Date)
	require.Len(t, card.History, 1)
}

func TestCommitOnHoverMovesAcrossColumns(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnHover, fixedNow)
	require.NoError(t, r.Start(b, job(b, "s1")))

	hover := r.Over(b, cardTarget("i2", 130))
	require.True(t, hover.Changed)
	require.Equal(t, []string{"i1", "i2", "s1", "i3"}, ids(hover.Board, model.StageInterview))
	require.Empty(t, ids(hover.Board, model.StageSaved))

	card, _, _ := board.FindCard(hover.Board, "s1")
	require.Equal(t, clock, card.Date, "tracking column touches date on hover")
	require.Empty(t, card.History, "history waits for the drop")

	// Hovering the same column again does not move the card.
	again := r.Over(hover.Board, cardTarget("i1", 101))
	require.False(t, again.Changed)
	require.Equal(t, hover.Board, again.Board)

	drop := r.End(again.Board, columnTarget(model.StageInterview))
	require.True(t, drop.Changed)
	card, col, _ := board.FindCard(drop.Board, "s1")
	require.Equal(t, model.StageInterview, col)
	require.Len(t, card.History, 1)
	require.Equal(t, model.StageInterview, card.History[0].Status)
	require.Equal(t, []model.EventType{model.EventTypeCardMoved}, eventTypes(drop.Events))
	require.Equal(t, model.StageSaved, drop.Events[0].FromColumnID)
}

func TestHistoryAppendedOnceAcrossManyHovers(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnHover, fixedNow)
	require.NoError(t, r.Start(b, job(b, "s1")))

	cur := b
	for _, col := range []string{model.StageApplied, model.StageScreening, model.StageTechnical, model.StageApplied} {
		cur = r.Over(cur, columnTarget(col)).Board
	}
	res := r.End(cur, columnTarget(model.StageApplied))

	card, col, _ := board.FindCard(res.Board, "s1")
	require.Equal(t, model.StageApplied, col)
	require.Equal(t, []model.HistoryEntry{{Status: model.StageApplied, Date: clock, Type: model.HistoryTypeStatusChange}}, card.History)
	require.Equal(t, b.CardCount(), res.Board.CardCount())
}

func TestDropWithoutHoverStillRelocates(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnHover, fixedNow)
	require.NoError(t, r.Start(b, job(b, "i2")))

	res := r.End(b, cardTarget("o1", 101))
	require.Equal(t, []string{"i2", "o1"}, ids(res.Board, model.StageOffer))
	require.Equal(t, []model.EventType{model.EventTypeCardMoved, model.EventTypeOfferReached}, eventTypes(res.Events))
}

func TestDropBackOnOriginLeavesHistoryAlone(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnHover, fixedNow)
	require.NoError(t, r.Start(b, job(b, "i2")))

	cur := r.Over(b, columnTarget(model.StageRejected)).Board
	cur = r.Over(cur, columnTarget(model.StageInterview)).Board
	res := r.End(cur, columnTarget(model.StageInterview))

	card, col, _ := board.FindCard(res.Board, "i2")
	require.Equal(t, model.StageInterview, col)
	require.Empty(t, card.History)
	require.Empty(t, res.Events)
}

func TestCancelUnderCommitOnHoverKeepsLastHover(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnHover, fixedNow)
	require.NoError(t, r.Start(b, job(b, "i1")))

	hover := r.Over(b, columnTarget(model.StageOffer))
	res := r.End(hover.Board, nil)
	require.False(t, r.Active())

	require.False(t, res.Changed)
	require.Empty(t, res.Events)
	require.Equal(t, hover.Board, res.Board)

	card, col, _ := board.FindCard(res.Board, "i1")
	require.Equal(t, model.StageOffer, col)
	require.Len(t, card.History, 1)
	require.Equal(t, model.StageInterview, card.History[0].Status)
}

func TestOverFollowsCardMovedOutsideTheDrag(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnHover, fixedNow)
	require.NoError(t, r.Start(b, job(b, "s1")))

	moved := board.Relocate(b, "s1", model.StageSaved, model.StageInterview, 0)
	hover := r.Over(moved, columnTarget(model.StageApplied))
	require.True(t, hover.Changed)
	require.Equal(t, []string{"s1"}, ids(hover.Board, model.StageApplied))
	require.Equal(t, []string{"i1", "i2", "i3"}, ids(hover.Board, model.StageInterview))
	require.Equal(t, model.StageInterview, hover.Events[0].FromColumnID)

	res := r.End(hover.Board, columnTarget(model.StageApplied))
	require.True(t, res.Changed)
	card, col, _ := board.FindCard(res.Board, "s1")
	require.Equal(t, model.StageApplied, col)
	require.Len(t, card.History, 1)
	require.Equal(t, model.StageApplied, card.History[0].Status)
	require.Equal(t, model.StageSaved, res.Events[0].FromColumnID)
}

func TestDragEndsWhenCardDisappears(t *testing.T) {
	t.Parallel()

	for _, policy := range []Policy{CommitOnHover, CommitOnDrop} {
		b := testBoard()
		r := New(policy, fixedNow)
		require.NoError(t, r.Start(b, job(b, "i2")))

		gone := board.RemoveCard(b, model.StageInterview, "i2")
		hover := r.Over(gone, columnTarget(model.StageSaved))
		require.False(t, hover.Changed)
		require.Empty(t, hover.Events)
		require.Equal(t, gone, hover.Board)
		require.False(t, r.Active())

		require.NoError(t, r.Start(b, job(b, "i3")))
		res := r.End(board.RemoveCard(b, model.StageInterview, "i3"), columnTarget(model.StageOffer))
		require.False(t, res.Changed)
		require.Empty(t, res.Events)
		require.False(t, r.Active())
	}
}

func TestCommitOnDropBuffersUntilDrop(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnDrop, fixedNow)
	require.NoError(t, r.Start(b, job(b, "s1")))

	hover := r.Over(b, cardTarget("i1", 100))
	require.False(t, hover.Changed)
	require.Equal(t, b, hover.Board)
	require.Equal(t, []string{"s1", "i1", "i2", "i3"}, ids(hover.Preview, model.StageInterview))

	res := r.End(hover.Board, columnTarget(model.StageInterview))
	require.True(t, res.Changed)
	require.Equal(t, []string{"s1", "i1", "i2", "i3"}, ids(res.Board, model.StageInterview))
	card, _, _ := board.FindCard(res.Board, "s1")
	require.Equal(t, clock, card.Date)
	require.Len(t, card.History, 1)
}

func TestCommitOnDropCancelDiscardsPreview(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnDrop, fixedNow)
	require.NoError(t, r.Start(b, job(b, "s1")))

	hover := r.Over(b, columnTarget(model.StageApplied))
	require.Equal(t, []string{"s1"}, ids(hover.Preview, model.StageApplied))

	res := r.Cancel(hover.Board)
	require.False(t, res.Changed)
	require.Equal(t, b, res.Board)
	require.False(t, r.Active())
}

func TestStartRules(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnHover, fixedNow)

	require.NoError(t, r.Start(b, JobPayload{Card: model.Card{ID: "ghost"}}))
	require.False(t, r.Active())

	require.NoError(t, r.Start(b, job(b, "i1")))
	require.ErrorIs(t, r.Start(b, job(b, "i2")), ErrDragInProgress)

	p, ok := r.Payload()
	require.True(t, ok)
	require.Equal(t, "i1", p.(JobPayload).Card.ID)
}

func TestIdleNotificationsAreIgnored(t *testing.T) {
	t.Parallel()

	b := testBoard()
	r := New(CommitOnHover, fixedNow)

	require.False(t, r.Over(b, columnTarget(model.StageOffer)).Changed)
	require.False(t, r.End(b, columnTarget(model.StageOffer)).Changed)

	require.NoError(t, r.Start(b, job(b, "s1")))
	r.End(b, columnTarget(model.StageSaved))
	late := r.Over(b, columnTarget(model.StageOffer))
	require.False(t, late.Changed)
	require.Equal(t, []string{"s1"}, ids(late.Board, model.StageSaved))
}

func TestResumeDrops(t *testing.T) {
	t.Parallel()

	b := testBoard()
	resume := ResumePayload{ResumeID: "res-1", Title: "Platform CV"}

	cases := []struct {
		name   string
		target *Target
		want   model.EventType
		column string
	}{
		{name: "card with description", target: cardTarget("o1", 0), want: model.EventTypeTailorRequested, column: model.StageOffer},
		{name: "card without description", target: cardTarget("i2", 0), want: model.EventTypeDescriptionRequired, column: model.StageInterview},
		{name: "column", target: columnTarget(model.StageApplied), want: model.EventTypeCardFromResumeRequested, column: model.StageApplied},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := New(CommitOnHover, fixedNow)
			require.NoError(t, r.Start(b, resume))
			require.False(t, r.Over(b, tc.target).Changed)

			res := r.End(b, tc.target)
			require.False(t, res.Changed)
			require.Equal(t, b, res.Board)
			require.Len(t, res.Events, 1)
			require.Equal(t, tc.want, res.Events[0].Type)
			require.Equal(t, "res-1", res.Events[0].ResumeID)
			require.Equal(t, tc.column, res.Events[0].ColumnID)
		})
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, CommitOnHover, p)

	p, err = ParsePolicy("Drop")
	require.NoError(t, err)
	require.Equal(t, CommitOnDrop, p)
	require.Equal(t, "drop", p.String())

	_, err = ParsePolicy("sometimes")
	require.Error(t, err)
}
