package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/skillcat/pkg/errors"
	"github.com/matzehuels/skillcat/pkg/query"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalogue as a read-only JSON API",
		Long: `Serve exposes the catalogue over HTTP:

  GET /api/index            the full index document
  GET /api/stats            aggregate counts
  GET /api/slugs            every slug
  GET /api/skills           search (q, category, tier, sort, fuzzy, limit)
  GET /api/skills/{slug}    detail document, synthesized when not enriched
  GET /healthz              liveness

Send SIGHUP to reload the index after a collect run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return serve(ctx, addr, cat, loggerFromContext(ctx))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

func serve(ctx context.Context, addr string, cat *query.Catalog, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(cat, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go reloadOnHangup(ctx, cat, logger)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving catalogue", "addr", addr, "skills", cat.Len())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// reloadOnHangup re-reads the index whenever the process receives SIGHUP.
func reloadOnHangup(ctx context.Context, cat *query.Catalog, logger *log.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := cat.Reload(); err != nil {
				logger.Warn("reload failed", "err", err)
				continue
			}
			logger.Info("catalogue reloaded", "skills", cat.Len())
		}
	}
}

// newRouter builds the HTTP API over cat.
func newRouter(cat *query.Catalog, logger *log.Logger) http.Handler {
	h := &handlers{cat: cat}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/index", h.index)
		r.Get("/stats", h.stats)
		r.Get("/slugs", h.slugs)
		r.Get("/skills", h.search)
		r.Get("/skills/{slug}", h.detail)
	})
	return r
}

// requestLogger logs each request at debug level.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

type handlers struct {
	cat *query.Catalog
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "skills": h.cat.Len()})
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cat.Index())
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	snap := h.cat.Index()
	writeJSON(w, http.StatusOK, map[string]any{
		"total":       snap.Total,
		"lastUpdated": snap.LastUpdated,
		"stats":       snap.Stats,
	})
}

func (h *handlers) slugs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cat.Slugs())
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	opts := searchOpts{
		category: v.Get("category"),
		tier:     v.Get("tier"),
		sort:     v.Get("sort"),
	}
	if s := v.Get("fuzzy"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "fuzzy must be a boolean, got %q", s))
			return
		}
		opts.fuzzy = b
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "limit must be a non-negative number, got %q", s))
			return
		}
		opts.limit = n
	}

	q, err := buildQuery(v.Get("q"), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	skills := h.cat.Find(q)
	writeJSON(w, http.StatusOK, map[string]any{"total": len(skills), "skills": skills})
}

func (h *handlers) detail(w http.ResponseWriter, r *http.Request) {
	d, err := h.cat.Detail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errs.ErrCodeNotFound:
		status = http.StatusNotFound
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidSlug:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": errs.UserMessage(err), "code": string(code)})
}
