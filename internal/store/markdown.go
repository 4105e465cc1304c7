package store

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/simonjohansson/jobboard/internal/model"
	"gopkg.in/yaml.v3"
)

const (
	boardFile = "board.md"
	cardsDir  = "cards"

	sectionNotes       = "Notes"
	sectionDescription = "Description"
	sectionRounds      = "Upcoming Rounds"
	sectionHistory     = "History"

	noneMarker = "(none)"
)

var knownSections = map[string]struct{}{
	sectionNotes:       {},
	sectionDescription: {},
	sectionRounds:      {},
	sectionHistory:     {},
}

// MarkdownStore keeps the board as human-editable markdown: board.md lists the
// columns and cards/<id>.md holds one card each.
type MarkdownStore struct {
	dataDir  string
	cardsDir string
	mu       sync.RWMutex
	now      func() time.Time
}

var renameFile = os.Rename

func NewMarkdownStore(dataDir string) (*MarkdownStore, error) {
	dir := filepath.Join(dataDir, cardsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &MarkdownStore{dataDir: dataDir, cardsDir: dir, now: time.Now}, nil
}

func (s *MarkdownStore) DataDir() string {
	return s.dataDir
}

type boardFrontmatter struct {
	Version int                 `yaml:"version"`
	SavedAt time.Time           `yaml:"saved_at"`
	Columns []columnFrontmatter `yaml:"columns"`
}

type columnFrontmatter struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Color string `yaml:"color,omitempty"`
}

type cardFrontmatter struct {
	ID              string    `yaml:"id"`
	Column          string    `yaml:"column"`
	Position        int       `yaml:"position"`
	Company         string    `yaml:"company"`
	Role            string    `yaml:"role"`
	Date            time.Time `yaml:"date"`
	LinkedResumeID  string    `yaml:"linked_resume_id,omitempty"`
	Salary          string    `yaml:"salary,omitempty"`
	RejectionReason string    `yaml:"rejection_reason,omitempty"`
}

// LoadBoard returns os.ErrNotExist when nothing has been saved yet.
func (s *MarkdownStore) LoadBoard(ctx context.Context) (model.Board, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dataDir, boardFile))
	if err != nil {
		return nil, err
	}
	yml, _, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", boardFile, err)
	}
	var fm boardFrontmatter
	if err := yaml.Unmarshal(yml, &fm); err != nil {
		return nil, fmt.Errorf("parse %s: %w", boardFile, err)
	}

	b := make(model.Board, 0, len(fm.Columns))
	for _, col := range fm.Columns {
		b = append(b, model.Column{ID: col.ID, Title: col.Title, Color: col.Color, Items: []model.Card{}})
	}

	cards, err := s.readCards()
	if err != nil {
		return nil, err
	}
	for _, pc := range cards {
		ci := b.ColumnIndex(pc.column)
		if ci < 0 {
			return nil, fmt.Errorf("card %s references unknown column %q", pc.card.ID, pc.column)
		}
		b[ci].Items = append(b[ci].Items, pc.card)
	}
	return b, nil
}

// SaveBoard rewrites board.md and every card file whose content changed, then
// removes files for cards that are no longer on the board.
func (s *MarkdownStore) SaveBoard(ctx context.Context, b model.Board) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := make(map[string]struct{}, b.CardCount())
	for _, col := range b {
		for pos, card := range col.Items {
			name := cardFileName(card.ID)
			keep[name] = struct{}{}
			data, err := serializeCard(card, col.ID, pos)
			if err != nil {
				return fmt.Errorf("serialize card %s: %w", card.ID, err)
			}
			if err := writeIfChanged(filepath.Join(s.cardsDir, name), data); err != nil {
				return fmt.Errorf("write card %s: %w", card.ID, err)
			}
		}
	}

	entries, err := os.ReadDir(s.cardsDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isCardFile(entry.Name()) {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.cardsDir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	return s.writeBoardFile(b)
}

func (s *MarkdownStore) writeBoardFile(b model.Board) error {
	fm := boardFrontmatter{Version: model.SnapshotVersion, SavedAt: s.now().UTC()}
	for _, col := range b {
		fm.Columns = append(fm.Columns, columnFrontmatter{ID: col.ID, Title: col.Title, Color: col.Color})
	}
	yml, err := yaml.Marshal(&fm)
	if err != nil {
		return err
	}
	buf := bytes.Buffer{}
	buf.WriteString("---\n")
	buf.Write(yml)
	buf.WriteString("---\n")
	buf.WriteString("# Board\n")
	for _, col := range b {
		fmt.Fprintf(&buf, "- %s: %d\n", col.Title, len(col.Items))
	}
	return writeFileAtomic(filepath.Join(s.dataDir, boardFile), buf.Bytes(), 0o644)
}

type placedCard struct {
	card     model.Card
	column   string
	position int
}

func (s *MarkdownStore) readCards() ([]placedCard, error) {
	entries, err := os.ReadDir(s.cardsDir)
	if err != nil {
		return nil, err
	}
	out := make([]placedCard, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isCardFile(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.cardsDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		pc, err := parseCard(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		out = append(out, pc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].column == out[j].column {
			return out[i].position < out[j].position
		}
		return out[i].column < out[j].column
	})
	return out, nil
}

func writeIfChanged(path string, data []byte) error {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	return writeFileAtomic(path, data, 0o644)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}

	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := renameFile(tmpPath, path); err != nil {
		return err
	}

	cleanup = false
	return nil
}

func serializeCard(c model.Card, columnID string, position int) ([]byte, error) {
	fm := cardFrontmatter{
		ID:              c.ID,
		Column:          columnID,
		Position:        position,
		Company:         c.Company,
		Role:            c.Role,
		Date:            c.Date.UTC(),
		LinkedResumeID:  c.LinkedResumeID,
		Salary:          c.Salary,
		RejectionReason: c.RejectionReason,
	}
	yml, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, err
	}

	var body strings.Builder
	body.WriteString("---\n")
	body.Write(yml)
	body.WriteString("---\n")
	body.WriteString("# " + sectionNotes + "\n")
	writeText(&body, c.Notes)
	body.WriteString("\n# " + sectionDescription + "\n")
	writeText(&body, c.Description)
	body.WriteString("\n# " + sectionRounds + "\n")
	if len(c.UpcomingRounds) == 0 {
		body.WriteString(noneMarker + "\n")
	}
	for _, r := range c.UpcomingRounds {
		body.WriteString("## ")
		body.WriteString(r.ScheduledDate.UTC().Format(time.RFC3339Nano))
		body.WriteString(" | ")
		body.WriteString(r.Type)
		body.WriteByte('\n')
		body.WriteString(escapeText(strings.TrimSpace(r.Notes)))
		body.WriteString("\n\n")
	}
	body.WriteString("\n# " + sectionHistory + "\n")
	if len(c.History) == 0 {
		body.WriteString(noneMarker + "\n")
	}
	for _, h := range c.History {
		body.WriteString("## ")
		body.WriteString(h.Date.UTC().Format(time.RFC3339Nano))
		body.WriteString(" | ")
		body.WriteString(h.Status)
		body.WriteByte('\n')
		body.WriteString(h.Type)
		body.WriteString("\n\n")
	}
	return []byte(body.String()), nil
}

func writeText(body *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		body.WriteString(noneMarker + "\n")
		return
	}
	body.WriteString(escapeText(text))
	body.WriteByte('\n')
}

// escapeText prefixes free-text lines that the parser would otherwise read as
// structure with a backslash. unescapeText strips exactly one.
func escapeText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, `\`) || line == noneMarker {
			lines[i] = `\` + line
		}
	}
	return strings.Join(lines, "\n")
}

func unescapeText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, `\`)
	}
	return strings.Join(lines, "\n")
}

func parseCard(data []byte) (placedCard, error) {
	yml, body, err := splitFrontmatter(data)
	if err != nil {
		return placedCard{}, err
	}
	var fm cardFrontmatter
	if err := yaml.Unmarshal(yml, &fm); err != nil {
		return placedCard{}, err
	}
	if strings.TrimSpace(fm.ID) == "" {
		return placedCard{}, errors.New("card id is required")
	}
	card := model.Card{
		ID:              fm.ID,
		Company:         fm.Company,
		Role:            fm.Role,
		Date:            fm.Date,
		LinkedResumeID:  fm.LinkedResumeID,
		Salary:          fm.Salary,
		RejectionReason: fm.RejectionReason,
	}
	parseSections(body, &card)
	return placedCard{card: card, column: fm.Column, position: fm.Position}, nil
}

// parseSections reads the markdown body. Only the four known "# " headings start a
// section; free text is escaped on write so it never contains one.
func parseSections(body string, card *model.Card) {
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		section string
		heading string
		lines   []string
		text    = map[string][]string{}
	)

	flush := func() {
		if heading == "" {
			return
		}
		entry := strings.TrimSpace(strings.Join(lines, "\n"))
		parts := strings.SplitN(heading, " | ", 2)
		heading, lines = "", nil
		if len(parts) != 2 {
			return
		}
		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(parts[0]))
		if err != nil {
			return
		}
		switch section {
		case sectionRounds:
			card.UpcomingRounds = append(card.UpcomingRounds, model.UpcomingRound{
				Type:          strings.TrimSpace(parts[1]),
				ScheduledDate: ts,
				Notes:         unescapeText(entry),
			})
		case sectionHistory:
			kind := entry
			if kind == "" {
				kind = model.HistoryTypeStatusChange
			}
			card.History = append(card.History, model.HistoryEntry{
				Status: strings.TrimSpace(parts[1]),
				Date:   ts,
				Type:   kind,
			})
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "# ") {
			name := strings.TrimSpace(strings.TrimPrefix(line, "# "))
			if _, ok := knownSections[name]; ok {
				flush()
				section = name
				continue
			}
		}
		switch section {
		case sectionNotes, sectionDescription:
			text[section] = append(text[section], line)
		case sectionRounds, sectionHistory:
			if strings.HasPrefix(line, "## ") {
				flush()
				heading = strings.TrimSpace(strings.TrimPrefix(line, "## "))
				continue
			}
			if heading != "" {
				lines = append(lines, line)
			}
		}
	}
	flush()

	card.Notes = sectionText(text[sectionNotes])
	card.Description = sectionText(text[sectionDescription])
}

func sectionText(lines []string) string {
	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if text == noneMarker {
		return ""
	}
	return unescapeText(text)
}

func splitFrontmatter(data []byte) ([]byte, string, error) {
	raw := string(data)
	if !strings.HasPrefix(raw, "---\n") {
		return nil, "", errors.New("missing frontmatter")
	}
	rest := raw[4:]
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return nil, "", errors.New("invalid frontmatter")
	}
	return []byte(rest[:idx]), rest[idx+5:], nil
}

func cardFileName(id string) string {
	return "card-" + url.PathEscape(id) + ".md"
}

func isCardFile(name string) bool {
	return strings.HasPrefix(name, "card-") && filepath.Ext(name) == ".md"
}
