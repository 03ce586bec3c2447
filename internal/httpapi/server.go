// Package httpapi exposes the shopping list as a small JSON API for a
// browser front end.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Makepad-fr/shop/internal/model"
	"github.com/Makepad-fr/shop/internal/shoplist"
)

// Config tunes the handler.
type Config struct {
	Logger          *slog.Logger
	APIToken        string   // empty disables auth on mutating routes
	AllowedOrigins  []string // CORS; nil means none
	RateLimitPerMin int      // per client IP; 0 disables
}

type api struct {
	shop      *shoplist.List
	log       *slog.Logger
	mutations *prometheus.CounterVec
}

// NewHandler builds the router. Each handler gets its own metrics registry.
func NewHandler(shop *shoplist.List, cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a := &api{
		shop: shop,
		log:  log,
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_mutations_total",
			Help: "List mutations by operation and result.",
		}, []string{"op", "result"}),
	}
	reg.MustRegister(a.mutations)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLog(log))
	r.Use(recovery(log))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/items", func(r chi.Router) {
		if cfg.RateLimitPerMin > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
		}
		r.Get("/", a.list)

		r.Group(func(r chi.Router) {
			r.Use(requireToken(cfg.APIToken))
			r.Post("/", a.add)
			r.Patch("/{id}", a.rename)
			r.Post("/{id}/toggle", a.toggle)
			r.Delete("/{id}", a.remove)
		})
	})
	return r
}

type titleRequest struct {
	Title string `json:"title"`
}

type errorResponse struct {
	Error   string      `json:"error"`
	Durable *bool       `json:"durable,omitempty"`
	Item    *model.Item `json:"item,omitempty"`
}

func (a *api) list(w http.ResponseWriter, r *http.Request) {
	items := a.shop.Items()
	if r.URL.Query().Get("sort") == "display" {
		items = model.DisplayOrder(items)
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *api) add(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := a.shop.Add(r.Context(), req.Title)
	a.respond(w, "add", http.StatusCreated, &it, err)
}

func (a *api) rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req titleRequest
	if !decode(w, r, &req) {
		return
	}
	it, err := a.shop.Rename(r.Context(), id, req.Title)
	a.respond(w, "rename", http.StatusOK, &it, err)
}

func (a *api) toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	it, err := a.shop.Toggle(r.Context(), id)
	a.respond(w, "toggle", http.StatusOK, &it, err)
}

func (a *api) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a.respond(w, "remove", http.StatusNoContent, nil, a.shop.Remove(r.Context(), id))
}

// respond maps a controller result to a status code and counts it.
func (a *api) respond(w http.ResponseWriter, op string, okStatus int, it *model.Item, err error) {
	switch {
	case err == nil:
		a.mutations.WithLabelValues(op, "ok").Inc()
		if it == nil {
			w.WriteHeader(okStatus)
			return
		}
		writeJSON(w, okStatus, it)
	case errors.Is(err, shoplist.ErrInvalidTitle):
		a.mutations.WithLabelValues(op, "invalid").Inc()
		writeError(w, http.StatusUnprocessableEntity, "title must be 1-"+strconv.Itoa(model.MaxTitleLen)+" characters")
	case errors.Is(err, shoplist.ErrNotFound):
		a.mutations.WithLabelValues(op, "not_found").Inc()
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, shoplist.ErrStoreWrite):
		a.mutations.WithLabelValues(op, "not_durable").Inc()
		durable := false
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   "change applied but not saved",
			Durable: &durable,
			Item:    it,
		})
	default:
		a.mutations.WithLabelValues(op, "error").Inc()
		a.log.Error("unexpected list error", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 16<<10)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Serve runs h on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
