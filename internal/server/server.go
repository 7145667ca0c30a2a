// Package server exposes the assistant's HTTP API: chat, preference updates,
// recommendations, history, document ingestion and health.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"rozgar/internal/domain"
	"rozgar/internal/service"
)

type Server struct {
	assistant *service.Assistant
	log       *zap.Logger
}

func New(assistant *service.Assistant, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{assistant: assistant, log: log}
}

// Register mounts all routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.Use(middleware.Recover())
	e.GET("/health", s.health)
	e.POST("/api/chat", s.chat)
	e.GET("/api/preferences", s.getPreferences)
	e.PUT("/api/preferences", s.putPreferences)
	e.GET("/api/recommendations", s.recommendations)
	e.GET("/api/history", s.history)
	e.POST("/api/documents", s.ingest)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Language  string `json:"language"`
}

type jobResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Company  string  `json:"company"`
	Category string  `json:"category"`
	Location string  `json:"location"`
	Score    float64 `json:"score"`
}

type chatResponse struct {
	SessionID string        `json:"session_id"`
	Response  string        `json:"response"`
	Language  string        `json:"language"`
	Truncated bool          `json:"truncated"`
	Jobs      []jobResponse `json:"jobs,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	result, err := s.assistant.Chat(c.Request().Context(), req.SessionID, req.Message, req.Language)
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, chatResponse{
		SessionID: result.SessionID,
		Response:  result.Response,
		Language:  result.Language,
		Truncated: result.Truncated,
		Jobs:      toJobResponses(result.Jobs),
		Timestamp: time.Now(),
	})
}

type preferencesRequest struct {
	SessionID  string   `json:"session_id"`
	Categories []string `json:"categories"`
	Keywords   []string `json:"keywords"`
	Location   string   `json:"location"`
	Weight     *float64 `json:"weight,omitempty"`
}

func (s *Server) putPreferences(c echo.Context) error {
	var req preferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}
	if req.Weight != nil && (*req.Weight < 0 || *req.Weight > 1) {
		return echo.NewHTTPError(http.StatusBadRequest, "weight must be in [0,1]")
	}
	err := s.assistant.UpdatePreferences(c.Request().Context(), domain.Preferences{
		SessionID:  req.SessionID,
		Categories: req.Categories,
		Keywords:   req.Keywords,
		Location:   req.Location,
		Weight:     req.Weight,
	})
	if err != nil {
		return s.mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getPreferences(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}
	prefs, err := s.assistant.Preferences(c.Request().Context(), sessionID)
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, preferencesRequest{
		SessionID:  prefs.SessionID,
		Categories: prefs.Categories,
		Keywords:   prefs.Keywords,
		Location:   prefs.Location,
		Weight:     prefs.Weight,
	})
}

func (s *Server) recommendations(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}
	jobs, err := s.assistant.Recommendations(c.Request().Context(), sessionID)
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"jobs": toJobResponses(jobs)})
}

type historyTurn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) history(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
	}
	turns, err := s.assistant.History(c.Request().Context(), sessionID, limit)
	if err != nil {
		return s.mapError(c, err)
	}
	out := make([]historyTurn, len(turns))
	for i, t := range turns {
		out[i] = historyTurn{Role: string(t.Role), Text: t.Text, Language: t.Language, Timestamp: t.CreatedAt}
	}
	return c.JSON(http.StatusOK, map[string]any{"turns": out})
}

type ingestRequest struct {
	Documents []struct {
		ID       string `json:"id"`
		Text     string `json:"text"`
		Language string `json:"language"`
	} `json:"documents"`
}

func (s *Server) ingest(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Documents) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "documents are required")
	}
	docs := make([]domain.Document, len(req.Documents))
	for i, d := range req.Documents {
		if d.ID == "" || d.Text == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "document id and text are required")
		}
		docs[i] = domain.Document{ID: d.ID, Text: d.Text, Language: d.Language}
	}
	result, err := s.assistant.Ingest(c.Request().Context(), docs)
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"documents": result.Documents,
		"chunks":    result.Chunks,
		"summary":   result.Summary,
	})
}

func toJobResponses(jobs []domain.MatchResult) []jobResponse {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]jobResponse, len(jobs))
	for i, j := range jobs {
		out[i] = jobResponse{
			ID:       j.Listing.ID,
			Title:    j.Listing.Title,
			Company:  j.Listing.Company,
			Category: j.Listing.Category,
			Location: j.Listing.Location,
			Score:    j.Score,
		}
	}
	return out
}

// mapError translates the error taxonomy to HTTP statuses. External-service
// failures are retryable by the caller; the degraded state is reported, never
// papered over with a fabricated response.
func (s *Server) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrContextOverflow):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "query too long")
	case errors.Is(err, domain.ErrEmptyPreferences):
		return echo.NewHTTPError(http.StatusBadRequest, "set preferences before requesting recommendations")
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrGenerationFailed):
		s.log.Error("upstream service failure", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "assistant temporarily unavailable, please retry")
	default:
		s.log.Error("request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
