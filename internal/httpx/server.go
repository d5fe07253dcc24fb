package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"grid_tactics/internal/game"
)

// Server exposes a game session over a JSON API.
type Server struct {
	sessionMu sync.Mutex
	session   *game.Session
	srvMu     sync.Mutex
	srv       *http.Server
}

const (
	maxJSONBodyBytes int64 = 1 << 20
	apiCSP                 = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
)

func NewServer(session *game.Session) *Server {
	return &Server{session: session}
}

// Listen starts the HTTP server.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	log.Info().Str("addr", addr).Msg("http listening")
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Use(withJSON)
		r.Get("/state", s.handleState)
		r.Post("/click", s.handleClick)
		r.Post("/ability", s.handleAbility)
		r.Post("/can-trigger", s.handleCanTrigger)
		r.Post("/execute", s.handleExecute)
		r.Post("/tick", s.handleTick)
		r.Post("/phase/advance", s.handleAdvance)
		r.Post("/turn/end", s.handleEndTurn)
		r.Get("/cards/{id}/cooldowns", s.handleCooldowns)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// ---- middleware and JSON helpers ----

func withJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		applyAPISecurityHeaders(w.Header())
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	writeJSON(w, map[string]string{"error": msg})
}

func applyAPISecurityHeaders(h http.Header) {
	h.Set("Content-Security-Policy", apiCSP)
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	h.Set("Cross-Origin-Embedder-Policy", "require-corp")
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// decode reads a JSON body into v and writes the error response itself.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// statusFor maps game errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrUnknownCard):
		return http.StatusNotFound
	case errors.Is(err, game.ErrPhaseResolving),
		errors.Is(err, game.ErrAbilityInFlight),
		errors.Is(err, game.ErrNotYourTurn):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) stateLocked() game.SessionState {
	return s.session.State()
}

// ---- API: state ----

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.sessionMu.Lock()
	state := s.stateLocked()
	s.sessionMu.Unlock()
	writeJSON(w, map[string]any{"state": state})
}

// ---- API: input ----

type clickBody struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Kind string `json:"kind"` // "cell" or "card"
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var body clickBody
	if !decode(w, r, &body) {
		return
	}
	at := game.Coord{X: body.X, Y: body.Y}
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if !s.session.Board.InBounds(at) {
		writeError(w, http.StatusBadRequest, game.ErrOutOfBounds.Error())
		return
	}
	switch body.Kind {
	case "", "cell":
		s.session.HandleCellClick(at)
	case "card":
		s.session.HandleCardClick(at)
	default:
		writeError(w, http.StatusBadRequest, "invalid click kind")
		return
	}
	writeJSON(w, map[string]any{"state": s.stateLocked()})
}

type abilityBody struct {
	Card    string      `json:"card"`
	Ability string      `json:"ability"`
	Target  *game.Coord `json:"target,omitempty"`
}

func (s *Server) handleAbility(w http.ResponseWriter, r *http.Request) {
	var body abilityBody
	if !decode(w, r, &body) {
		return
	}
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if err := s.session.SelectAbility(body.Card, body.Ability); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"state": s.stateLocked()})
}

func (s *Server) handleCanTrigger(w http.ResponseWriter, r *http.Request) {
	var body abilityBody
	if !decode(w, r, &body) {
		return
	}
	if body.Target == nil {
		writeError(w, http.StatusBadRequest, "missing target")
		return
	}
	s.sessionMu.Lock()
	ok, err := s.session.CanTrigger(body.Card, body.Ability, *body.Target)
	s.sessionMu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"canTrigger": ok})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var body abilityBody
	if !decode(w, r, &body) {
		return
	}
	if body.Target == nil {
		writeError(w, http.StatusBadRequest, "missing target")
		return
	}
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	started, err := s.session.Execute(body.Card, body.Ability, *body.Target)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"started": started, "state": s.stateLocked()})
}

type tickBody struct {
	Count int `json:"count"`
}

const maxTicks = 64

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	body := tickBody{Count: 1}
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if !decode(w, r, &body) {
			return
		}
	}
	if body.Count < 1 || body.Count > maxTicks {
		writeError(w, http.StatusBadRequest, "count out of range")
		return
	}
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	for range body.Count {
		s.session.Tick()
	}
	writeJSON(w, map[string]any{"state": s.stateLocked()})
}

// ---- API: turn flow ----

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if err := s.session.Advance(); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"state": s.stateLocked()})
}

type endTurnBody struct {
	Player int `json:"player"`
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	var body endTurnBody
	if !decode(w, r, &body) {
		return
	}
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if err := s.session.EndTurn(game.PlayerID(body.Player)); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"state": s.stateLocked()})
}

func (s *Server) handleCooldowns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.sessionMu.Lock()
	cds, err := s.session.Cooldowns(id)
	s.sessionMu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"card": id, "cooldowns": cds})
}
