package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed snapshot.schema.json
var snapshotSchema string

var snapshotSchemaLoader = gojsonschema.NewStringLoader(snapshotSchema)

// SchemaError lists every problem found in a snapshot document.
type SchemaError struct {
	Errors []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid board snapshot:")
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

func EncodeSnapshot(b model.Board, savedAt time.Time) ([]byte, error) {
	if b == nil {
		b = model.Board{}
	}
	return json.Marshal(model.Snapshot{
		Version: model.SnapshotVersion,
		SavedAt: savedAt.UTC(),
		Columns: b,
	})
}

// DecodeSnapshot accepts either a versioned snapshot object or a bare array of
// columns. The document is schema-checked and card ids must be unique.
func DecodeSnapshot(data []byte) (model.Board, error) {
	result, err := gojsonschema.Validate(snapshotSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate snapshot: %w", err)
	}
	if !result.Valid() {
		schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			schemaErr.Errors = append(schemaErr.Errors, FieldError{Field: field, Message: desc.Description()})
		}
		return nil, schemaErr
	}

	var b model.Board
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &b)
	} else {
		var snap model.Snapshot
		err = json.Unmarshal(data, &snap)
		b = snap.Columns
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := checkUnique(b); err != nil {
		return nil, err
	}
	for i := range b {
		if b[i].Items == nil {
			b[i].Items = []model.Card{}
		}
	}
	return b, nil
}

func checkUnique(b model.Board) error {
	var errs []FieldError
	columns := map[string]struct{}{}
	cards := map[string]struct{}{}
	for ci, col := range b {
		if _, dup := columns[col.ID]; dup {
			errs = append(errs, FieldError{Field: fmt.Sprintf("columns.%d.id", ci), Message: fmt.Sprintf("duplicate column id %q", col.ID)})
		}
		columns[col.ID] = struct{}{}
		for i, card := range col.Items {
			if _, dup := cards[card.ID]; dup {
				errs = append(errs, FieldError{Field: fmt.Sprintf("columns.%d.items.%d.id", ci, i), Message: fmt.Sprintf("duplicate card id %q", card.ID)})
			}
			cards[card.ID] = struct{}{}
		}
	}
	if len(errs) > 0 {
		return &SchemaError{Errors: errs}
	}
	return nil
}
