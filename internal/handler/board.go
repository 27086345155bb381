package handler

import (
	"net/http"
	"strconv"

	"github.com/itchan-dev/nbbs/internal/api"
	"github.com/itchan-dev/nbbs/internal/domain"
	"github.com/itchan-dev/nbbs/internal/utils"
)

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	req := api.AdminRequest{Id: h.boardId(r), Password: r.URL.Query().Get("password")}
	if err := utils.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}

	cfg, err := h.board.Create(req.Id, req.Password, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, cfg)
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := api.UpdateConfigRequest{
		AdminRequest:         api.AdminRequest{Id: h.boardId(r), Password: q.Get("password")},
		IntervalMinutes:      q.Get("interval_minutes"),
		CommentModerated:     q.Get("comment_moderated"),
		MaxThreadsNum:        q.Get("max_threads_num"),
		MaxCommentsNum:       q.Get("max_comments_num"),
		MaxThreadTitleLength: q.Get("max_thread_title_length"),
		MaxCommentNameLength: q.Get("max_comment_name_length"),
		MaxCommentTextLength: q.Get("max_comment_text_length"),
	}
	if q.Has("john_doe") {
		johnDoe := q.Get("john_doe")
		req.JohnDoe = &johnDoe
	}
	if err := utils.Validate(req); err != nil {
		h.writeError(w, err)
		return
	}

	update, err := configUpdate(req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	cfg, err := h.board.UpdateConfig(req.Id, req.Password, update)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, cfg)
}

func configUpdate(req api.UpdateConfigRequest) (domain.BoardConfigUpdate, error) {
	update := domain.BoardConfigUpdate{JohnDoe: req.JohnDoe}
	if req.CommentModerated != "" {
		moderated, _ := strconv.ParseBool(req.CommentModerated)
		update.CommentModerated = &moderated
	}

	ints := []struct {
		dst   **int
		value string
		name  string
	}{
		{&update.IntervalMinutes, req.IntervalMinutes, "interval_minutes"},
		{&update.MaxThreadsNum, req.MaxThreadsNum, "max_threads_num"},
		{&update.MaxCommentsNum, req.MaxCommentsNum, "max_comments_num"},
		{&update.MaxThreadTitleLength, req.MaxThreadTitleLength, "max_thread_title_length"},
		{&update.MaxCommentNameLength, req.MaxCommentNameLength, "max_comment_name_length"},
		{&update.MaxCommentTextLength, req.MaxCommentTextLength, "max_comment_text_length"},
	}
	for _, f := range ints {
		n, err := optionalInt(f.value, f.name)
		if err != nil {
			return domain.BoardConfigUpdate{}, err
		}
		*f.dst = n
	}
	return update, nil
}
