// Package server exposes the review core over an HTTP JSON API. It is one
// of two presentation surfaces (the Telegram bot being the other) and holds
// no review logic of its own: it resolves identities, keeps the session
// registry, and translates the core's error taxonomy to status codes.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/example/flashvocab/internal/review"
	"github.com/example/flashvocab/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	selector   *review.Selector
	recorder   *review.Recorder
	aggregator *review.Aggregator
	sessions   *SessionManager
	secret     string
	logger     *slog.Logger
}

// New wires the API routes over the given core components.
func New(selector *review.Selector, recorder *review.Recorder, aggregator *review.Aggregator, sessions *SessionManager, secret string, logger *slog.Logger) *Server {
	s := &Server{
		selector:   selector,
		recorder:   recorder,
		aggregator: aggregator,
		sessions:   sessions,
		secret:     secret,
		logger:     logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(s.requestLogger)

	e.GET("/healthz", s.handleHealth)

	api := e.Group("/api/v1", s.identityMiddleware)
	api.POST("/sessions", s.handleCreateSession)
	api.GET("/sessions/:id", s.handleGetSession)
	api.POST("/sessions/:id/reveal", s.handleReveal)
	api.POST("/sessions/:id/decide", s.handleDecide)
	api.POST("/sessions/:id/skip", s.handleSkip)
	api.POST("/sessions/:id/retry", s.handleRetry)
	api.GET("/stats", s.handleStats, requireIdentity)

	s.echo = e
	return s
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		s.logger.Info("request",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Request().URL.Path),
			slog.Int("status", c.Response().Status),
			slog.String("user_id", identity(c)),
		)
		return err
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// sessionResponse is the envelope every session endpoint returns.
type sessionResponse struct {
	Session string          `json:"session"`
	State   review.Snapshot `json:"state"`
}

// handleCreateSession opens a review session for the caller (guest or
// authenticated) and fetches the first word. An empty vocabulary is not a
// transport failure: the session comes back in its error phase with a
// retry affordance.
func (s *Server) handleCreateSession(c echo.Context) error {
	session := review.NewSession(s.selector, s.recorder, identity(c))
	id := s.sessions.Put(session)

	if err := session.Start(c.Request().Context()); err != nil && !isDomainError(err) {
		return translateError(err)
	}
	return c.JSON(http.StatusCreated, sessionResponse{Session: id, State: session.State()})
}

func (s *Server) handleGetSession(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: c.Param("id"), State: session.State()})
}

func (s *Server) handleReveal(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	if err := session.Reveal(); err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: c.Param("id"), State: session.State()})
}

type decideRequest struct {
	Decision models.Status `json:"decision"`
}

func (s *Server) handleDecide(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	var req decideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !req.Decision.Decidable() {
		return echo.NewHTTPError(http.StatusBadRequest, "decision must be \"known\" or \"unknown\"")
	}

	if err := session.Decide(c.Request().Context(), req.Decision); err != nil && !isDomainError(err) {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: c.Param("id"), State: session.State()})
}

func (s *Server) handleSkip(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	if err := session.Skip(c.Request().Context()); err != nil && !isDomainError(err) {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: c.Param("id"), State: session.State()})
}

func (s *Server) handleRetry(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	if err := session.Retry(c.Request().Context()); err != nil && !isDomainError(err) {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: c.Param("id"), State: session.State()})
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.aggregator.Compute(c.Request().Context(), identity(c))
	if err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// session resolves the :id parameter to a live session.
func (s *Server) session(c echo.Context) (*review.Session, error) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "unknown session")
	}
	return session, nil
}

// isDomainError reports whether err settles into the session's own error
// phase rather than failing the HTTP exchange: the client reads the
// condition from the returned state and shows the retry affordance.
func isDomainError(err error) bool {
	return errors.Is(err, review.ErrNoWordsAvailable) ||
		errors.Is(err, review.ErrReadFailed) ||
		errors.Is(err, review.ErrWriteFailed) ||
		errors.Is(err, review.ErrInvalidReference)
}

// translateError maps core rejections onto HTTP status codes.
func translateError(err error) error {
	switch {
	case errors.Is(err, review.ErrSessionBusy):
		return echo.NewHTTPError(http.StatusConflict, "another request is in flight")
	case errors.Is(err, review.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, review.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case errors.Is(err, review.ErrNoWordsAvailable):
		return echo.NewHTTPError(http.StatusNotFound, "no words available")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
