package cardcmd

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/simonjohansson/jobboard/internal/jobboard/commands/common"
	"github.com/spf13/cobra"
)

func New(runtime common.Runtime, stdout io.Writer, handle common.HandleResponseFunc, wrapErr common.WrapErrorFunc) *cobra.Command {
	cardCmd := &cobra.Command{
		Use:     "card",
		Aliases: []string{"cards"},
		Short:   "Manage job cards.",
		Long:    "Add, track, inspect, advance, move, update, and remove job cards.",
	}

	send := func(method, path string, body any) error {
		client, err := common.NewClient(runtime)
		if err != nil {
			return wrapErr(http.StatusBadRequest, err.Error())
		}
		resp, reqErr := client.Do(context.Background(), method, path, nil, body)
		return handle(runtime.Output(), stdout, resp, reqErr)
	}

	addCmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"new"},
		Short:   "Quick-add a card to a column.",
		Long:    "Create a card with a company and optional role at the top of a column.",
		Example: strings.TrimSpace(`jobboard card add --column applied --company "Acme" --role "Backend Engineer"
jobboard cards new -c saved -n "Globex"`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			column, _ := cmd.Flags().GetString("column")
			company, _ := cmd.Flags().GetString("company")
			role, _ := cmd.Flags().GetString("role")

			body := map[string]string{"company": strings.TrimSpace(company)}
			if value := strings.TrimSpace(role); value != "" {
				body["role"] = value
			}
			return send(http.MethodPost, common.PathEscape("columns", column, "cards"), body)
		},
	}
	addCmd.Flags().StringP("column", "c", "", "Column id (saved|applied|screening|...)")
	addCmd.Flags().StringP("company", "n", "", "Company name")
	addCmd.Flags().StringP("role", "r", "", "Role title")
	_ = addCmd.MarkFlagRequired("column")
	_ = addCmd.MarkFlagRequired("company")

	trackCmd := &cobra.Command{
		Use:   "track",
		Short: "Track a job posting with full details.",
		Long:  "Create a card in the saved column with optional description, notes, salary, and linked resume.",
		Example: strings.TrimSpace(`jobboard card track --company "Acme" --role "SRE" --salary "120k"
jobboard card track -n "Initech" --resume r1`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			company, _ := cmd.Flags().GetString("company")
			body := map[string]string{"company": strings.TrimSpace(company)}
			for flag, field := range map[string]string{
				"role":        "role",
				"description": "description",
				"notes":       "notes",
				"salary":      "salary",
				"resume":      "linkedResumeId",
			} {
				if value, _ := cmd.Flags().GetString(flag); strings.TrimSpace(value) != "" {
					body[field] = strings.TrimSpace(value)
				}
			}
			return send(http.MethodPost, "/cards/track", body)
		},
	}
	trackCmd.Flags().StringP("company", "n", "", "Company name")
	trackCmd.Flags().StringP("role", "r", "", "Role title")
	trackCmd.Flags().StringP("description", "d", "", "Job description")
	trackCmd.Flags().String("notes", "", "Free-form notes")
	trackCmd.Flags().String("salary", "", "Salary expectation")
	trackCmd.Flags().String("resume", "", "Linked resume id")
	_ = trackCmd.MarkFlagRequired("company")

	getCmd := &cobra.Command{
		Use:     "get",
		Aliases: []string{"show"},
		Short:   "Get one card.",
		Long:    "Fetch one card and the column it sits in.",
		Example: strings.TrimSpace(`jobboard card get --id 0190f7c2-...
jobboard cards show -i 0190f7c2-... --output json`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			return send(http.MethodGet, common.PathEscape("cards", id), nil)
		},
	}
	getCmd.Flags().StringP("id", "i", "", "Card id")
	_ = getCmd.MarkFlagRequired("id")

	advanceCmd := &cobra.Command{
		Use:     "advance",
		Aliases: []string{"next"},
		Short:   "Move a card to the next pipeline stage.",
		Long:    "Advance a card one stage along saved, applied, screening, aptitude, technical, interview, offer.",
		Example: strings.TrimSpace(`jobboard card advance --id 0190f7c2-...`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			return send(http.MethodPost, common.PathEscape("cards", id, "advance"), nil)
		},
	}
	advanceCmd.Flags().StringP("id", "i", "", "Card id")
	_ = advanceCmd.MarkFlagRequired("id")

	statusCmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"move"},
		Short:   "Move a card to any column.",
		Long:    "Change a card's status by moving it to the top of the target column.",
		Example: strings.TrimSpace(`jobboard card status --id 0190f7c2-... --column rejected
jobboard cards move -i 0190f7c2-... -c interview`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			column, _ := cmd.Flags().GetString("column")
			return send(http.MethodPatch, common.PathEscape("cards", id, "status"), map[string]string{"column": strings.TrimSpace(column)})
		},
	}
	statusCmd.Flags().StringP("id", "i", "", "Card id")
	statusCmd.Flags().StringP("column", "c", "", "Target column id")
	_ = statusCmd.MarkFlagRequired("id")
	_ = statusCmd.MarkFlagRequired("column")

	updateCmd := &cobra.Command{
		Use:     "update",
		Aliases: []string{"edit"},
		Short:   "Update card fields.",
		Long:    "Patch only the fields whose flags are given. Pass an empty value to clear a field.",
		Example: strings.TrimSpace(`jobboard card update --id 0190f7c2-... --notes "recruiter call friday"
jobboard cards edit -i 0190f7c2-... --reason "position filled"`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			body := map[string]string{}
			for flag, field := range map[string]string{
				"company":     "company",
				"role":        "role",
				"description": "description",
				"notes":       "notes",
				"salary":      "salary",
				"reason":      "rejectionReason",
				"resume":      "linkedResumeId",
			} {
				if cmd.Flags().Changed(flag) {
					value, _ := cmd.Flags().GetString(flag)
					body[field] = value
				}
			}
			if len(body) == 0 {
				return wrapErr(http.StatusBadRequest, "nothing to update")
			}
			return send(http.MethodPatch, common.PathEscape("cards", id), body)
		},
	}
	updateCmd.Flags().StringP("id", "i", "", "Card id")
	updateCmd.Flags().StringP("company", "n", "", "Company name")
	updateCmd.Flags().StringP("role", "r", "", "Role title")
	updateCmd.Flags().StringP("description", "d", "", "Job description")
	updateCmd.Flags().String("notes", "", "Free-form notes")
	updateCmd.Flags().String("salary", "", "Salary expectation")
	updateCmd.Flags().String("reason", "", "Rejection reason")
	updateCmd.Flags().String("resume", "", "Linked resume id")
	_ = updateCmd.MarkFlagRequired("id")

	deleteCmd := &cobra.Command{
		Use:     "delete",
		Aliases: []string{"rm"},
		Short:   "Delete a card.",
		Long:    "Remove a card permanently. A linked resume tailored for it is released.",
		Example: strings.TrimSpace(`jobboard card delete --id 0190f7c2-...
jobboard cards rm -i 0190f7c2-...`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			return send(http.MethodDelete, common.PathEscape("cards", id), nil)
		},
	}
	deleteCmd.Flags().StringP("id", "i", "", "Card id")
	_ = deleteCmd.MarkFlagRequired("id")

	cardCmd.AddCommand(addCmd, trackCmd, getCmd, advanceCmd, statusCmd, updateCmd, deleteCmd)
	return cardCmd
}
