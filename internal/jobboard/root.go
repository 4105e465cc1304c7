package jobboard

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/simonjohansson/jobboard/internal/jobboard/commands/analyticscmd"
	"github.com/simonjohansson/jobboard/internal/jobboard/commands/boardcmd"
	"github.com/simonjohansson/jobboard/internal/jobboard/commands/cardcmd"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	serverURL string
	output    string
}

type commandRuntime struct {
	cfg *Config
}

func (r commandRuntime) ServerURL() string {
	return r.cfg.ServerURL
}

func (r commandRuntime) Output() string {
	return string(r.cfg.Output)
}

func NewRootCommand(initial Config, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cfg := initial
	flags := globalFlags{
		serverURL: initial.ServerURL,
		output:    string(initial.Output),
	}
	runtime := commandRuntime{cfg: &cfg}

	root := &cobra.Command{
		Use:   "jobboard",
		Short: "Run the job board server and manage applications over HTTP.",
		Long: strings.TrimSpace(`jobboard is a single binary for:
- starting the job board backend
- managing the board, cards, and analytics over the HTTP API
- streaming board events over websocket

Use jobboard help <command> for command-specific examples.

--server-url selects the backend endpoint and --output selects text/json formatting.`),
		Example: strings.TrimSpace(`jobboard serve
jobboard board show
jobboard card add -c applied -n "Acme" -r "Backend Engineer"
jobboard card advance -i 0190f7c2-...
jobboard analytics velocity -w 30days
jobboard watch -c offer
jobboard --output json primer`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return applyGlobalFlags(&cfg, flags)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&flags.serverURL, "server-url", flags.serverURL, "Backend API base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&flags.output, "output", flags.output, "Output format: text or json")

	root.AddCommand(newServeCommand(&cfg))
	root.AddCommand(newPrimerCommand(&cfg, stdout))
	root.AddCommand(boardcmd.New(runtime, stdin, stdout, handleResponseFromString, wrapCLIError))
	root.AddCommand(cardcmd.New(runtime, stdout, handleResponseFromString, wrapCLIError))
	root.AddCommand(analyticscmd.New(runtime, stdout, handleResponseFromString, wrapCLIError))
	root.AddCommand(newWatchCommand(&cfg, stdout))

	return root
}

func applyGlobalFlags(cfg *Config, flags globalFlags) error {
	output := strings.TrimSpace(flags.output)
	if !isValidOutput(output) {
		return &cliError{status: http.StatusBadRequest, message: fmt.Sprintf("invalid --output: %s", output)}
	}

	cfg.ServerURL = strings.TrimSpace(flags.serverURL)
	cfg.Output = Output(output)

	if cfg.ServerURL == "" {
		return &cliError{status: http.StatusBadRequest, message: "--server-url cannot be empty"}
	}

	return nil
}

func handleResponseFromString(output string, stdout io.Writer, resp *http.Response, reqErr error) error {
	if !isValidOutput(output) {
		return &cliError{status: http.StatusBadRequest, message: fmt.Sprintf("invalid --output: %s", output)}
	}
	return handleResponse(Output(output), stdout, resp, reqErr)
}

func wrapCLIError(status int, message string) error {
	return &cliError{status: status, message: message}
}

func newPrimerCommand(cfg *Config, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "primer",
		Short: "Print concise usage guidance.",
		Long:  "Prints command templates and response shapes for scripting.",
		Example: strings.TrimSpace(`jobboard primer
jobboard --output json primer`),
		RunE: func(_ *cobra.Command, _ []string) error {
			return printPrimer(cfg.Output, stdout)
		},
	}
}
