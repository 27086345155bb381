package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/nbbs/internal/api"
	"github.com/itchan-dev/nbbs/internal/domain"
	mw "github.com/itchan-dev/nbbs/internal/middleware"
	"github.com/itchan-dev/nbbs/internal/utils"
)

func (h *Handler) commentData(r *http.Request) (domain.CommentCreationData, error) {
	q := r.URL.Query()
	req := api.CreateCommentRequest{
		ThreadRequest: api.ThreadRequest{Id: h.boardId(r), ThreadId: chi.URLParam(r, "threadID")},
		Name:          q.Get("name"),
		Text:          q.Get("text"),
		Info:          q.Get("info"),
	}
	if err := utils.Validate(req); err != nil {
		return domain.CommentCreationData{}, err
	}
	threadId, err := parseIntParam(req.ThreadId, "threadID")
	if err != nil {
		return domain.CommentCreationData{}, err
	}

	return domain.CommentCreationData{
		Board:  req.Id,
		Thread: threadId,
		Name:   req.Name,
		Text:   req.Text,
		Host:   mw.GetHostFromContext(r),
		Info:   req.Info,
	}, nil
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	data, err := h.commentData(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	th, err := h.comment.Add(data)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, h.comment.View(th))
}

// PreviewComment returns the thread as it would look with the comment, saving nothing.
func (h *Handler) PreviewComment(w http.ResponseWriter, r *http.Request) {
	data, err := h.commentData(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	th, err := h.comment.Preview(data)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, h.comment.View(th))
}

func (h *Handler) UpdateCommentVisibility(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := api.UpdateCommentRequest{
		AdminRequest: api.AdminRequest{Id: h.boardId(r), Password: q.Get("password")},
		ThreadId:     chi.URLParam(r, "threadID"),
		CommentId:    q.Get("comment_id"),
		Visible:      q.Get("visible"),
	}
	if err := utils.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}
	threadId, err := parseIntParam(req.ThreadId, "threadID")
	if err != nil {
		h.writeError(w, err)
		return
	}
	commentId, err := parseIntParam(req.CommentId, "comment_id")
	if err != nil {
		h.writeError(w, err)
		return
	}
	visible, _ := strconv.ParseBool(req.Visible)

	th, err := h.comment.UpdateVisibility(req.Id, threadId, commentId, req.Password, visible)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, th)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := api.RemoveCommentRequest{
		AdminRequest: api.AdminRequest{Id: h.boardId(r), Password: q.Get("password")},
		ThreadId:     chi.URLParam(r, "threadID"),
		CommentId:    q.Get("comment_id"),
	}
	if err := utils.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}
	threadId, err := parseIntParam(req.ThreadId, "threadID")
	if err != nil {
		h.writeError(w, err)
		return
	}
	commentId, err := parseIntParam(req.CommentId, "comment_id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	th, err := h.comment.Remove(req.Id, threadId, commentId, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, th)
}
