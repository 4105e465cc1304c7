package boardcmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/simonjohansson/jobboard/internal/jobboard/commands/common"
	"github.com/spf13/cobra"
)

func New(runtime common.Runtime, stdin io.Reader, stdout io.Writer, handle common.HandleResponseFunc, wrapErr common.WrapErrorFunc) *cobra.Command {
	boardCmd := &cobra.Command{
		Use:   "board",
		Short: "Inspect, export, import, and save the board.",
		Long:  "Read the whole board, move snapshots in and out, and retry a failed save.",
	}

	send := func(method, path string, body any) error {
		client, err := common.NewClient(runtime)
		if err != nil {
			return wrapErr(http.StatusBadRequest, err.Error())
		}
		resp, reqErr := client.Do(context.Background(), method, path, nil, body)
		return handle(runtime.Output(), stdout, resp, reqErr)
	}

	showCmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"ls"},
		Short:   "Print every column and its cards.",
		Example: strings.TrimSpace(`jobboard board show
jobboard --output json board ls`),
		RunE: func(_ *cobra.Command, _ []string) error {
			return send(http.MethodGet, "/board", nil)
		},
	}

	exportCmd := &cobra.Command{
		Use:     "export",
		Short:   "Print a snapshot of the board as JSON.",
		Example: strings.TrimSpace(`jobboard --output json board export > board.json`),
		RunE: func(_ *cobra.Command, _ []string) error {
			return send(http.MethodGet, "/board/export", nil)
		},
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the board with a snapshot.",
		Long:  "Replace the whole board with a JSON snapshot read from --file, or stdin when --file is -.",
		Example: strings.TrimSpace(`jobboard board import --file board.json
cat board.json | jobboard board import -f -`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			var (
				raw []byte
				err error
			)
			if strings.TrimSpace(path) == "-" {
				raw, err = io.ReadAll(stdin)
			} else {
				raw, err = os.ReadFile(strings.TrimSpace(path))
			}
			if err != nil {
				return wrapErr(http.StatusBadRequest, err.Error())
			}
			return send(http.MethodPut, "/board", raw)
		},
	}
	importCmd.Flags().StringP("file", "f", "", "Snapshot file, or - for stdin")
	_ = importCmd.MarkFlagRequired("file")

	saveCmd := &cobra.Command{
		Use:     "save",
		Short:   "Persist the in-memory board.",
		Long:    "Write the current board to storage. Useful after a board.save_failed event.",
		Example: strings.TrimSpace(`jobboard board save`),
		RunE: func(_ *cobra.Command, _ []string) error {
			return send(http.MethodPost, "/board/save", nil)
		},
	}

	boardCmd.AddCommand(showCmd, exportCmd, importCmd, saveCmd)
	return boardCmd
}
