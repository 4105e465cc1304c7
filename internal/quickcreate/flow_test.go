package quickcreate

import (
	"strings"
	"testing"
	"time"

	"github.com/simonjohansson/jobboard/internal/board"
	"github.com/simonjohansson/jobboard/internal/drag"
	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

func appliedBoard() model.Board {
	b := model.DefaultBoard()
	return board.InsertCard(b, model.StageApplied, model.Card{ID: "existing", Company: "Initech", Role: "QA", Date: now}, 0)
}

func TestResumeDropCreatesCardOnlyAfterConfirm(t *testing.T) {
	t.Parallel()

	b := appliedBoard()
	r := drag.New(drag.CommitOnHover, func() time.Time { return now })
	require.NoError(t, r.Start(b, drag.ResumePayload{ResumeID: "res-7", Title: "SRE resume"}))
	dropped := r.End(b, &drag.Target{ID: model.StageApplied, Kind: drag.TargetColumn})
	require.Len(t, dropped.Events, 1)
	ev := dropped.Events[0]
	require.Equal(t, model.EventTypeCardFromResumeRequested, ev.Type)

	f := New()
	require.NoError(t, f.Open(ev.ResumeID, ev.ColumnID, ev.Message))
	pending, ok := f.Pending()
	require.True(t, ok)
	require.Equal(t, Pending{ResumeID: "res-7", TargetColumnID: model.StageApplied, ResumeTitle: "SRE resume"}, pending)

	col, _ := dropped.Board.Column(model.StageApplied)
	require.Len(t, col.Items, 1)

	res, err := f.Confirm(dropped.Board, "Globex", "SRE", "new-id", now)
	require.NoError(t, err)
	col, _ = res.Board.Column(model.StageApplied)
	require.Len(t, col.Items, 2)
	require.Equal(t, "new-id", col.Items[0].ID)
	require.Equal(t, "Globex", col.Items[0].Company)
	require.Equal(t, "SRE", col.Items[0].Role)
	require.Equal(t, "res-7", col.Items[0].LinkedResumeID)
	require.Equal(t, now, col.Items[0].Date)
	require.Equal(t, model.EventTypeCardCreated, res.Events[0].Type)

	_, ok = f.Pending()
	require.False(t, ok)
}

func TestConfirmWithoutCompanyKeepsPending(t *testing.T) {
	t.Parallel()

	b := appliedBoard()
	f := New()
	require.NoError(t, f.Open("res-1", model.StageApplied, ""))

	res, err := f.Confirm(b, "   ", "SRE", "id-1", now)
	require.ErrorIs(t, err, ErrCompanyRequired)
	require.Equal(t, b, res.Board)
	_, ok := f.Pending()
	require.True(t, ok)

	res, err = f.Confirm(b, strings.Repeat("a", 201), "SRE", "id-1", now)
	require.ErrorIs(t, err, ErrCompanyTooLong)
	require.NotErrorIs(t, err, ErrCompanyRequired)
	require.Equal(t, b, res.Board)
	_, ok = f.Pending()
	require.True(t, ok)

	res, err = f.Confirm(b, "Acme", "", "id-1", now)
	require.NoError(t, err)
	col, _ := res.Board.Column(model.StageApplied)
	require.Equal(t, board.DefaultRole, col.Items[0].Role)
}

func TestConfirmFailures(t *testing.T) {
	t.Parallel()

	b := appliedBoard()
	f := New()

	_, err := f.Confirm(b, "Acme", "", "id-1", now)
	require.ErrorIs(t, err, ErrNothingPending)

	require.NoError(t, f.Open("res-1", "archive", ""))
	_, err = f.Confirm(b, "Acme", "", "id-1", now)
	require.ErrorIs(t, err, ErrUnknownColumn)

	require.NoError(t, f.Open("res-1", model.StageApplied, ""))
	_, err = f.Confirm(b, "Acme", "", "existing", now)
	require.Error(t, err)
	_, ok := f.Pending()
	require.True(t, ok)
}

func TestOpenAndCancel(t *testing.T) {
	t.Parallel()

	f := New()
	require.Error(t, f.Open("", model.StageApplied, "x"))
	require.False(t, f.Cancel())

	require.NoError(t, f.Open("res-1", model.StageSaved, "x"))
	require.NoError(t, f.Open("res-2", model.StageApplied, "y"))
	pending, _ := f.Pending()
	require.Equal(t, "res-2", pending.ResumeID)

	require.True(t, f.Cancel())
	_, ok := f.Pending()
	require.False(t, ok)
}
