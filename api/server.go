package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/matt-g-everett/ledseq/sched"
	"github.com/matt-g-everett/ledseq/stream"
)

const requestTimeout = 5 * time.Second

// Api serves the queue over HTTP alongside the static client.
type Api struct {
	log    zerolog.Logger
	player stream.Player
	static string
}

func NewApi(player stream.Player, static string, log zerolog.Logger) *Api {
	a := new(Api)
	a.log = log.With().Str("component", "api").Logger()
	a.player = player
	a.static = static
	return a
}

// Router builds the handler tree.
func (a *Api) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(a.log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api", func(api chi.Router) {
		api.Get("/queue", a.getQueue)
		api.Post("/queue/{name}", a.playAnimation)
		api.Post("/skip", a.skip)
	})

	r.Handle("/*", http.FileServer(http.Dir(a.static)))

	return r
}

// Serve listens on addr until ctx is done.
func (a *Api) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.log.Info().Str("addr", addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type queueResponse struct {
	Queue []sched.EntryInfo `json:"queue"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *Api) getQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := a.player.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queueResponse{Queue: queue})
}

// playAnimation handles POST /api/queue/{name}
func (a *Api) playAnimation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := a.player.Play(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}

	queue, err := a.player.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/queue")
	writeJSON(w, http.StatusAccepted, queueResponse{Queue: queue})
}

func (a *Api) skip(w http.ResponseWriter, r *http.Request) {
	if err := a.player.Skip(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, stream.ErrUnknownAnimation):
		return http.StatusNotFound
	case errors.Is(err, sched.ErrAlreadyQueued), errors.Is(err, stream.ErrNothingPlaying):
		return http.StatusConflict
	case errors.Is(err, sched.ErrInvalidHandle):
		return http.StatusBadRequest
	case errors.Is(err, stream.ErrStopped), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
