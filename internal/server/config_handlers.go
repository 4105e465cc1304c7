package server

import (
	"context"
	"os"
	"strings"

	"github.com/simonjohansson/jobboard/internal/analytics"
	"github.com/simonjohansson/jobboard/internal/model"
	"github.com/simonjohansson/jobboard/pkg/boardconfig"
)

type stageOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type clientConfigOutput struct {
	Body struct {
		ServerURL       string        `json:"server_url"`
		DragPolicy      string        `json:"drag_policy"`
		Stages          []stageOption `json:"stages"`
		VelocityWindows []string      `json:"velocity_windows"`
		PostgresMirror  bool          `json:"postgres_mirror"`
	}
}

// clientConfig describes what a UI needs before its first board fetch.
// A missing or unreadable config file yields an empty server url.
func (s *Server) clientConfig(_ context.Context, _ *struct{}) (*clientConfigOutput, error) {
	out := &clientConfigOutput{}
	out.Body.DragPolicy = s.session.DragPolicy().String()
	out.Body.PostgresMirror = s.postgres != nil
	for _, col := range model.DefaultBoard() {
		out.Body.Stages = append(out.Body.Stages, stageOption{ID: col.ID, Title: col.Title})
	}
	for _, w := range []analytics.Window{analytics.Window7Days, analytics.Window30Days, analytics.Window3Months, analytics.WindowAll} {
		out.Body.VelocityWindows = append(out.Body.VelocityWindows, string(w))
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return out, nil
	}
	cfg, err := boardconfig.LoadFile(boardconfig.ConfigPath(home))
	if err != nil {
		return out, nil
	}
	out.Body.ServerURL = strings.TrimSpace(cfg.ServerURL)
	return out, nil
}
