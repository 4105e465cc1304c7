package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/simonjohansson/jobboard/internal/model"
)

// SQLiteProjection is a query-friendly copy of the board. It is rebuilt from the
// board after every save and never read back as the source of truth.
type SQLiteProjection struct {
	db *sql.DB
}

func NewSQLiteProjection(path string) (*SQLiteProjection, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	projection := &SQLiteProjection{db: db}
	if err := projection.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return projection, nil
}

func (p *SQLiteProjection) Close() error {
	return p.db.Close()
}

// init recreates the schema. The projection is disposable and is rebuilt from the
// board on load, so tables left by older layouts are simply dropped.
func (p *SQLiteProjection) init() error {
	_, err := p.db.Exec(`
DROP TABLE IF EXISTS cards;
DROP TABLE IF EXISTS board_columns;

CREATE TABLE board_columns (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  position INTEGER NOT NULL
);

CREATE TABLE cards (
  id TEXT PRIMARY KEY,
  column_id TEXT NOT NULL,
  column_position INTEGER NOT NULL,
  position INTEGER NOT NULL,
  company TEXT NOT NULL,
  role TEXT NOT NULL,
  date TEXT NOT NULL,
  linked_resume_id TEXT,
  rejection_reason TEXT,
  history_count INTEGER NOT NULL,
  rounds_count INTEGER NOT NULL
);
`)
	return err
}

// ListCards returns every card ordered by board column then position. An empty
// columnID lists the whole board.
func (p *SQLiteProjection) ListCards(ctx context.Context, columnID string) ([]model.CardSummary, error) {
	query := `
SELECT id, column_id, position, company, role, date, linked_resume_id, rejection_reason, history_count, rounds_count
FROM cards`
	args := []any{}
	if columnID != "" {
		query += ` WHERE column_id = ?`
		args = append(args, columnID)
	}
	query += ` ORDER BY column_position ASC, position ASC`
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]model.CardSummary, 0)
	for rows.Next() {
		var (
			c       model.CardSummary
			date    string
			resume  sql.NullString
			outcome sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.ColumnID, &c.Position, &c.Company, &c.Role, &date, &resume, &outcome, &c.HistoryCount, &c.RoundsCount); err != nil {
			return nil, err
		}
		if c.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, err
		}
		c.LinkedResumeID = resume.String
		c.RejectionReason = outcome.String
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

func (p *SQLiteProjection) RebuildFromBoard(ctx context.Context, b model.Board) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM board_columns`); err != nil {
		return err
	}

	for ci, col := range b {
		if _, err = tx.ExecContext(ctx, `INSERT INTO board_columns (id, title, position) VALUES (?, ?, ?)`, col.ID, col.Title, ci); err != nil {
			return fmt.Errorf("insert column %s: %w", col.ID, err)
		}
		for pos, card := range col.Items {
			if _, err = tx.ExecContext(ctx, `
INSERT INTO cards (
  id, column_id, column_position, position, company, role, date, linked_resume_id, rejection_reason, history_count, rounds_count
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
				card.ID,
				col.ID,
				ci,
				pos,
				card.Company,
				card.Role,
				card.Date.UTC().Format(time.RFC3339),
				nullString(card.LinkedResumeID),
				nullString(card.RejectionReason),
				len(card.History),
				len(card.UpcomingRounds),
			); err != nil {
				return fmt.Errorf("insert card %s: %w", card.ID, err)
			}
		}
	}

	err = tx.Commit()
	return err
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
