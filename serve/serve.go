// Package serve is a reference backend answering grid queries from a row store.
package serve

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	nt "shgrid/entity"
	"shgrid/grid"
	"shgrid/query"
	"shgrid/store/duck"
)

// MaxLimit caps the rows returned by one request.
const MaxLimit = 1000

// Store answers row queries.
type Store interface {
	Query(ctx context.Context, in query.Input) (rows []map[string]any, count int, err error)
	GetRow(ctx context.Context, id string) (row map[string]any, err error)
}

// Config specifies a Server.
type Config struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Server serves rows over http.
type Server struct {
	addr     string
	shutdown time.Duration
	store    Store
	logger   nt.Logger
}

// New creates a Server.
func (cfg *Config) New(store Store, lgr nt.Logger) *Server {

	if lgr == nil {
		lgr = nt.NopLogger{}
	}

	shutdown := cfg.ShutdownTimeout
	if shutdown == 0 {
		shutdown = 5 * time.Second
	}

	return &Server{
		addr:     cfg.Addr,
		shutdown: shutdown,
		store:    store,
		logger:   lgr,
	}
}

// Router returns the handler for all routes.
func (svr *Server) Router() http.Handler {

	rtr := chi.NewMux()
	rtr.Use(
		middleware.RequestID,
		svr.logRequests,
		middleware.Recoverer,
	)

	rtr.Get("/rows", svr.getRows)
	rtr.Get("/rows/{id}", svr.getRow)

	return rtr
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (svr *Server) Serve(ctx context.Context) error {

	eg, egCtx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    svr.addr,
		Handler: svr.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return egCtx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		svr.logger.Info(ctx, "starting server", "addr", svr.addr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "failed to listen on %s", svr.addr)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), svr.shutdown)
		defer cancel()

		svr.logger.Info(ctx, "shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// unexported

func (svr *Server) getRows(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()

	in, err := query.Parse(r.URL.Query())
	if err != nil {
		svr.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	if in.Limit == 0 {
		in.Limit = nt.DefaultLimit
	}
	if in.Limit > MaxLimit {
		svr.writeError(ctx, w, http.StatusBadRequest, errors.Errorf("limit must not exceed %d", MaxLimit))
		return
	}

	rows, count, err := svr.store.Query(ctx, in)
	switch {
	case errors.Is(err, duck.ErrUnknownColumn):
		svr.writeError(ctx, w, http.StatusBadRequest, err)
		return
	case err != nil:
		svr.writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set(grid.TotalCountHeader, strconv.Itoa(count))
	svr.writeJson(ctx, w, http.StatusOK, grid.Page[map[string]any]{Data: rows, Count: count})
}

func (svr *Server) getRow(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()

	row, err := svr.store.GetRow(ctx, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, duck.ErrNotFound):
		svr.writeError(ctx, w, http.StatusNotFound, err)
		return
	case err != nil:
		svr.writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}

	svr.writeJson(ctx, w, http.StatusOK, row)
}

func (svr *Server) writeError(ctx context.Context, w http.ResponseWriter, code int, err error) {

	if code >= http.StatusInternalServerError {
		svr.logger.Error(ctx, "request failed", err)
	}

	svr.writeJson(ctx, w, code, nt.GridError{Code: code, Message: err.Error()})
}

func (svr *Server) writeJson(ctx context.Context, w http.ResponseWriter, code int, val any) {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	err := json.NewEncoder(w).Encode(val)
	if err != nil {
		svr.logger.Error(ctx, "failed to write response", err)
	}
}

func (svr *Server) logRequests(next http.Handler) http.Handler {

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		svr.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
