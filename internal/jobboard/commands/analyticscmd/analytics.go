package analyticscmd

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/simonjohansson/jobboard/internal/jobboard/commands/common"
	"github.com/spf13/cobra"
)

func New(runtime common.Runtime, stdout io.Writer, handle common.HandleResponseFunc, wrapErr common.WrapErrorFunc) *cobra.Command {
	analyticsCmd := &cobra.Command{
		Use:     "analytics",
		Aliases: []string{"stats"},
		Short:   "Pipeline analytics.",
		Long:    "Funnel counts, application velocity, and rejection reasons computed from the board.",
	}

	send := func(path string, query url.Values) error {
		client, err := common.NewClient(runtime)
		if err != nil {
			return wrapErr(http.StatusBadRequest, err.Error())
		}
		resp, reqErr := client.Do(context.Background(), http.MethodGet, path, query, nil)
		return handle(runtime.Output(), stdout, resp, reqErr)
	}

	funnelCmd := &cobra.Command{
		Use:   "funnel",
		Short: "Current and lifetime counts per pipeline stage.",
		Example: strings.TrimSpace(`jobboard analytics funnel
jobboard --output json stats funnel`),
		RunE: func(_ *cobra.Command, _ []string) error {
			return send("/analytics/funnel", nil)
		},
	}

	velocityCmd := &cobra.Command{
		Use:   "velocity",
		Short: "Applications per day with upcoming rounds.",
		Example: strings.TrimSpace(`jobboard analytics velocity --window 30days
jobboard stats velocity -w 3months`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, _ := cmd.Flags().GetString("window")
			query := url.Values{}
			if value := strings.TrimSpace(window); value != "" {
				query.Set("window", value)
			}
			return send("/analytics/velocity", query)
		},
	}
	velocityCmd.Flags().StringP("window", "w", "", "Window: 7days, 30days, 3months, or all")

	rejectionsCmd := &cobra.Command{
		Use:     "rejections",
		Short:   "Most common rejection reasons.",
		Example: strings.TrimSpace(`jobboard analytics rejections`),
		RunE: func(_ *cobra.Command, _ []string) error {
			return send("/analytics/rejections", nil)
		},
	}

	analyticsCmd.AddCommand(funnelCmd, velocityCmd, rejectionsCmd)
	return analyticsCmd
}
