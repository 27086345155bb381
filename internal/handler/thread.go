package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/nbbs/internal/api"
	"github.com/itchan-dev/nbbs/internal/domain"
	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	mw "github.com/itchan-dev/nbbs/internal/middleware"
	"github.com/itchan-dev/nbbs/internal/utils"
)

// GetThreads is the public board listing.
func (h *Handler) GetThreads(w http.ResponseWriter, r *http.Request) {
	req := api.BoardRequest{Id: h.boardId(r)}
	if err := utils.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeThreadList(w, req.Id)
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	req := api.CreateThreadRequest{Id: h.boardId(r), Title: r.URL.Query().Get("title")}
	if err := utils.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}

	if _, err := h.thread.Create(req.Id, req.Title, mw.GetHostFromContext(r)); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeThreadList(w, req.Id)
}

func (h *Handler) writeThreadList(w http.ResponseWriter, board domain.BoardId) {
	summaries, err := h.thread.List(board)
	if err != nil {
		h.writeError(w, err)
		return
	}

	views := make(api.ThreadListResponse, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, h.comment.View(domain.Thread{Id: s.Id, Title: s.Title, Comments: s.Comments}))
	}
	utils.WriteJSON(w, views)
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	req := api.ThreadRequest{Id: h.boardId(r), ThreadId: chi.URLParam(r, "threadID")}
	if err := utils.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}
	threadId, err := parseIntParam(req.ThreadId, "threadID")
	if err != nil {
		h.writeError(w, err)
		return
	}

	th, err := h.thread.Get(req.Id, threadId)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, h.comment.View(th))
}

// GetAdminThreads lists threads with every comment field.
func (h *Handler) GetAdminThreads(w http.ResponseWriter, r *http.Request) {
	req := api.AdminRequest{Id: h.boardId(r), Password: r.URL.Query().Get("password")}
	if err := utils.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.authorize(req); err != nil {
		h.writeError(w, err)
		return
	}

	summaries, err := h.thread.List(req.Id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, api.ThreadSummaryListResponse(summaries))
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := api.RemoveThreadRequest{
		AdminRequest: api.AdminRequest{Id: h.boardId(r), Password: q.Get("password")},
		ThreadId:     q.Get("thread_id"),
	}
	if err := utils.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}
	threadId, err := parseIntParam(req.ThreadId, "thread_id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	idx, err := h.thread.Delete(req.Id, threadId, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, idx)
}

func (h *Handler) authorize(req api.AdminRequest) error {
	ok, err := h.board.VerifyPassword(req.Id, req.Password)
	if err != nil {
		return err
	}
	if !ok {
		return internal_errors.ErrBadPassword
	}
	return nil
}
