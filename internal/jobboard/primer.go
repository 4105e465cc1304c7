package jobboard

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/simonjohansson/jobboard/internal/model"
)

func columnIDs() []string {
	board := model.DefaultBoard()
	ids := make([]string, 0, len(board))
	for _, col := range board {
		ids = append(ids, col.ID)
	}
	return ids
}

func printPrimer(output Output, stdout io.Writer) error {
	columns := columnIDs()

	executionRules := []string{
		"Prefer `--output json` for any command whose output will be parsed.",
		"Cards are addressed by their id (`--id`/`-i`), returned by `card add` and `board show`.",
		"Columns are addressed by id, never by title.",
		"`card advance` follows the pipeline and does nothing from offer or rejected.",
		"`watch` is long-running and must be explicitly stopped by the caller.",
	}

	commandTemplates := map[string]string{
		"show_board":    "jobboard --output json board show",
		"export_board":  "jobboard --output json board export",
		"import_board":  "jobboard --output json board import -f \"$FILE\"",
		"save_board":    "jobboard --output json board save",
		"add_card":      "jobboard --output json card add -c \"$COLUMN\" -n \"$COMPANY\" -r \"$ROLE\"",
		"track_job":     "jobboard --output json card track -n \"$COMPANY\" -r \"$ROLE\"",
		"get_card":      "jobboard --output json card get -i \"$ID\"",
		"update_card":   "jobboard --output json card update -i \"$ID\" --notes \"$NOTES\"",
		"advance_card":  "jobboard --output json card advance -i \"$ID\"",
		"change_status": "jobboard --output json card status -i \"$ID\" -c \"$COLUMN\"",
		"delete_card":   "jobboard --output json card rm -i \"$ID\"",
		"funnel":        "jobboard --output json analytics funnel",
		"velocity":      "jobboard --output json analytics velocity -w 30days",
		"rejections":    "jobboard --output json analytics rejections",
		"watch_events":  "jobboard --output json watch -c \"$COLUMN\"",
	}

	outcomeShape := map[string]any{
		"changed": true,
		"saved":   true,
		"card": map[string]any{
			"id":      "0190f7c2-7a1e-7c3b-9a51-2f1d0c1e4b6a",
			"company": "Acme",
			"role":    "Backend Engineer",
			"date":    "2026-02-20T12:00:00Z",
			"history": []any{
				map[string]any{"status": "saved", "date": "2026-02-20T12:00:00Z", "type": "status_change"},
			},
		},
		"events": []any{
			map[string]any{"type": "card.created", "card_id": "0190f7c2-...", "column_id": "saved"},
		},
	}

	errorShape := map[string]any{
		"backend_problem_json": map[string]any{
			"title":  "Not Found",
			"status": 404,
			"detail": "card ghost not found",
		},
		"cli_fallback_json": map[string]any{
			"status": 502,
			"error":  "gateway or CLI processing error",
		},
	}

	watchEventShape := map[string]any{
		"type":           "card.moved",
		"card_id":        "0190f7c2-...",
		"from_column_id": "interview",
		"column_id":      "offer",
		"timestamp":      "2026-02-20T12:34:56Z",
	}

	if output == OutputJSON {
		payload := map[string]any{
			"name":    "jobboard",
			"mode":    "machine",
			"purpose": "HTTP client for the job application board.",
			"columns": columns,
			"usage": map[string]any{
				"global_flags": []string{"--server-url", "--output"},
				"commands": []string{
					"serve",
					"board show|export|import|save",
					"card add|track|get|update|advance|status|delete",
					"analytics funnel|velocity|rejections",
					"watch [--column <id>]",
					"primer",
				},
			},
			"execution_rules":   executionRules,
			"command_templates": commandTemplates,
			"outcome_shape":     outcomeShape,
			"error_shape":       errorShape,
			"watch_event_shape": watchEventShape,
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdout, string(raw))
		return nil
	}

	lines := []string{
		"JOBBOARD PRIMER",
		"",
		"COLUMNS",
		strings.Join(columns, " | "),
		"",
		"EXECUTION RULES",
	}
	for i, rule := range executionRules {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, rule))
	}
	lines = append(lines, "", "COMMAND TEMPLATES")
	for _, key := range []string{
		"show_board", "export_board", "import_board", "save_board",
		"add_card", "track_job", "get_card", "update_card", "advance_card", "change_status", "delete_card",
		"funnel", "velocity", "rejections", "watch_events",
	} {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(key), commandTemplates[key]))
	}
	lines = append(lines,
		"",
		"RESPONSE SHAPES",
		"MUTATION => {\"changed\":true,\"saved\":true,\"card\":{...},\"events\":[{\"type\":\"card.created\",...}]}",
		"SHOW_BOARD => {\"columns\":[{\"id\":\"applied\",\"title\":\"Applied\",\"items\":[...]}],\"drag_active\":false,\"dirty\":false}",
		"",
		"ERROR SHAPE",
		"- backend problem JSON includes: title, status, detail.",
		"- CLI fallback JSON shape: {\"status\":<int>,\"error\":\"<message>\"}.",
		"",
		"WATCH EVENT SHAPE",
		"- {\"type\":\"card.moved\",\"card_id\":\"...\",\"from_column_id\":\"interview\",\"column_id\":\"offer\",\"timestamp\":\"...\"}",
	)
	_, _ = fmt.Fprintln(stdout, strings.Join(lines, "\n"))
	return nil
}
