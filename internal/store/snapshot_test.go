package store

import (
	"errors"
	"testing"

	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	b := sampleBoard()
	data, err := EncodeSnapshot(b, savedAt)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":1`)
	assert.Contains(t, string(data), `"linkedResumeId":"res-1"`)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, b, decoded)
}

func TestDecodeSnapshotAcceptsBareColumns(t *testing.T) {
	t.Parallel()

	doc := `[
	  {"id": "saved", "title": "Saved", "items": []},
	  {"id": "applied", "title": "Applied", "items": [
	    {"id": "1717228800000", "company": "Acme", "role": "SWE", "date": "2024-06-01T08:00:00.000Z",
	     "history": [{"status": "applied", "date": "2024-06-01T08:00:00.000Z", "type": "status_change"}]}
	  ]}
	]`
	b, err := DecodeSnapshot([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, []string{model.StageSaved, model.StageApplied}, b.ColumnIDs())
	require.Equal(t, "Acme", b[1].Items[0].Company)
	require.Len(t, b[1].Items[0].History, 1)
	require.NotNil(t, b[0].Items)
}

func TestDecodeSnapshotReportsSchemaErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing company": `{"columns": [{"id": "applied", "items": [{"id": "c1"}]}]}`,
		"bad date":        `{"columns": [{"id": "applied", "items": [{"id": "c1", "company": "Acme", "date": "yesterday"}]}]}`,
		"wrong type":      `{"columns": {"id": "applied"}}`,
		"missing items":   `[{"id": "applied"}]`,
	}
	for name, doc := range cases {
		name, doc := name, doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeSnapshot([]byte(doc))
			require.Error(t, err)
			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "got %T: %v", err, err)
			assert.NotEmpty(t, schemaErr.Errors)
			assert.Contains(t, schemaErr.Error(), "invalid board snapshot")
		})
	}
}

func TestDecodeSnapshotRejectsDuplicates(t *testing.T) {
	t.Parallel()

	doc := `{"version": 1, "columns": [
	  {"id": "applied", "items": [{"id": "c1", "company": "Acme"}]},
	  {"id": "offer", "items": [{"id": "c1", "company": "Acme"}]},
	  {"id": "offer", "items": []}
	]}`
	_, err := DecodeSnapshot([]byte(doc))
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Len(t, schemaErr.Errors, 2)
	assert.Equal(t, "columns.1.items.0.id", schemaErr.Errors[0].Field)
	assert.Equal(t, "columns.2.id", schemaErr.Errors[1].Field)
}

func TestDecodeSnapshotRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := DecodeSnapshot([]byte(`{"columns": [`))
	require.Error(t, err)
}
