package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/itchan-dev/nbbs/internal/config"
	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	"github.com/itchan-dev/nbbs/internal/service"
	"github.com/itchan-dev/nbbs/internal/utils"
)

// HealthChecker reports whether the document store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	board   service.BoardService
	thread  service.ThreadService
	comment service.CommentService
	health  HealthChecker
	cfg     *config.Config
}

func New(board service.BoardService, thread service.ThreadService, comment service.CommentService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		board:   board,
		thread:  thread,
		comment: comment,
		health:  health,
		cfg:     cfg,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if h.cfg.Public.Http.LegacyStatusCodes {
		utils.WriteErrorLegacy(w, err)
		return
	}
	utils.WriteErrorAndStatusCode(w, err)
}

// boardId returns the id query parameter, falling back to the default board.
func (h *Handler) boardId(r *http.Request) string {
	if id := r.URL.Query().Get("id"); id != "" {
		return id
	}
	return h.cfg.Public.DefaultBoard
}

// parseIntParam parses a validated numeric parameter.
func parseIntParam(value string, name string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, internal_errors.Validation("Invalid parameter '%s'.", name)
	}
	return n, nil
}

// optionalInt parses a config parameter; an absent or empty value yields nil.
func optionalInt(value string, name string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, internal_errors.Validation("Invalid parameter '%s'.", name)
	}
	return &n, nil
}
