package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/simonjohansson/jobboard/internal/drag"
	"github.com/simonjohansson/jobboard/internal/resume"
	"github.com/simonjohansson/jobboard/internal/session"
	"github.com/simonjohansson/jobboard/internal/store"
)

type Options struct {
	DataDir      string
	SQLitePath   string
	ResumeDBPath string
	PostgresURL  string
	DragPolicy   drag.Policy
	Location     *time.Location
	Logger       *slog.Logger
}

type Server struct {
	session    *session.Session
	projection *store.SQLiteProjection
	postgres   *store.PostgresStore
	resumes    *resume.Catalog
	hub        *hub
	logger     *slog.Logger
	router     *chi.Mux
	api        huma.API
}

func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	markdownStore, err := store.NewMarkdownStore(opts.DataDir)
	if err != nil {
		return nil, err
	}
	projection, err := store.NewSQLiteProjection(opts.SQLitePath)
	if err != nil {
		return nil, err
	}
	resumes, err := resume.NewCatalog(opts.ResumeDBPath)
	if err != nil {
		_ = projection.Close()
		return nil, err
	}

	s := &Server{
		projection: projection,
		resumes:    resumes,
		hub:        newHub(logger),
		logger:     logger,
		router:     chi.NewRouter(),
	}

	var persister store.Persister = markdownStore
	if opts.PostgresURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pg, err := store.ConnectPostgres(ctx, opts.PostgresURL)
		if err == nil {
			err = pg.Migrate(ctx)
		}
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.postgres = pg
		persister = store.NewFanout(markdownStore, pg)
	}

	s.session = session.New(session.Options{
		Persister:  persister,
		Projection: projection,
		Resumes:    resumes,
		Publisher:  s.hub,
		Logger:     logger,
		Policy:     opts.DragPolicy,
		Location:   opts.Location,
	})
	if err := s.session.Load(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}

	s.routes()
	s.logger.Info("server initialized",
		"data_dir", opts.DataDir,
		"sqlite_path", opts.SQLitePath,
		"resume_db_path", opts.ResumeDBPath,
		"postgres_mirror", s.postgres != nil,
		"drag_policy", opts.DragPolicy.String(),
	)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.api.OpenAPI()
}

func (s *Server) Close() error {
	s.hub.Close()
	if s.session != nil {
		s.session.Close()
	}
	if s.postgres != nil {
		s.postgres.Close()
	}
	return errors.Join(s.resumes.Close(), s.projection.Close())
}

func (s *Server) routes() {
	s.router.Use(s.requestLoggingMiddleware)

	config := huma.DefaultConfig("Job Board API", "1.0.0")
	config.OpenAPIPath = "/openapi"
	config.DocsPath = ""

	s.api = humachi.New(s.router, config)
	s.registerOperations()
	s.registerWebSocketOperationDocs()

	// Websocket upgrade endpoint remains a native HTTP handler.
	s.router.Get("/ws", s.hub.ServeWS)
}

func (s *Server) registerOperations() {
	huma.Get(s.api, "/health", s.health)
	huma.Get(s.api, "/client-config", s.clientConfig)

	s.registerBoardOperations()
	s.registerCardOperations()
	s.registerDragOperations()
	s.registerSmartDropOperations()
	s.registerAnalyticsOperations()
	s.registerResumeOperations()

	huma.Register(s.api, huma.Operation{
		OperationID: "listProjectedCards",
		Method:      http.MethodGet,
		Path:        "/projection/cards",
		Summary:     "List cards from the SQLite projection",
		Errors:      []int{http.StatusInternalServerError},
	}, s.listProjectedCards)

	huma.Register(s.api, huma.Operation{
		OperationID: "rebuildProjection",
		Method:      http.MethodPost,
		Path:        "/admin/rebuild",
		Summary:     "Rebuild SQLite projection from the board",
		Errors:      []int{http.StatusInternalServerError},
	}, s.rebuildProjection)
}

func (s *Server) registerWebSocketOperationDocs() {
	oapi := s.api.OpenAPI()
	if oapi.Paths == nil {
		oapi.Paths = map[string]*huma.PathItem{}
	}
	oapi.Paths["/ws"] = &huma.PathItem{
		Get: &huma.Operation{
			OperationID: "websocketEvents",
			Summary:     "Websocket event stream",
			Description: "Subscribe to board events. Optional column query param filters by column id.",
			Responses: map[string]*huma.Response{
				"101": {Description: "Switching protocols to websocket"},
			},
		},
	}
}
