package service

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/itchan-dev/nbbs/internal/domain"
	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	"github.com/itchan-dev/nbbs/internal/logger"
)

type CommentService interface {
	Add(data domain.CommentCreationData) (domain.Thread, error)
	Preview(data domain.CommentCreationData) (domain.Thread, error)
	UpdateVisibility(board domain.BoardId, thread domain.ThreadId, comment domain.CommentId, password domain.Password, visible bool) (domain.Thread, error)
	Remove(board domain.BoardId, thread domain.ThreadId, comment domain.CommentId, password domain.Password) (domain.Thread, error)
	View(thread domain.Thread) domain.ThreadView
}

// TextRenderer turns comment text into HTML for the public view.
type TextRenderer interface {
	Render(text string) string
}

// Comment is the comment manager.
type Comment struct {
	docs     docs
	locks    *Locks
	boards   *Board
	access   *Access
	tripSalt string
	renderer TextRenderer
	now      func() time.Time
	log      *slog.Logger
}

// NewComment builds the comment manager. renderer may be nil.
func NewComment(store DocumentStore, locks *Locks, boards *Board, access *Access, tripSalt string, renderer TextRenderer, now func() time.Time) *Comment {
	if now == nil {
		now = time.Now
	}
	return &Comment{
		docs:     docs{store},
		locks:    locks,
		boards:   boards,
		access:   access,
		tripSalt: tripSalt,
		renderer: renderer,
		now:      now,
		log:      logger.Component("comment_manager"),
	}
}

// Add validates and stores a comment. Checks, in order: board and thread
// exist, interval gate, name/text present, name/text length, comment cap.
func (c *Comment) Add(data domain.CommentCreationData) (domain.Thread, error) {
	if err := ValidateBoardId(data.Board); err != nil {
		return domain.Thread{}, err
	}
	unlock := c.locks.Lock(data.Board)
	defer unlock()

	cfg, th, err := c.loadLocked(data.Board, data.Thread)
	if err != nil {
		return domain.Thread{}, err
	}

	allowed, err := c.access.intervalGateLocked(data.Board, data.Host, c.now(), cfg.IntervalMinutes)
	if err != nil {
		return domain.Thread{}, err
	}
	if !allowed {
		return domain.Thread{}, internal_errors.ErrIntervalGate
	}

	comment, err := c.build(cfg, &th, data, !cfg.CommentModerated)
	if err != nil {
		return domain.Thread{}, err
	}
	th.Comments = append(th.Comments, comment)
	th.NextCommentIdHint = comment.Id + 1

	if err := c.docs.write(threadKey(data.Board, data.Thread), th); err != nil {
		return domain.Thread{}, err
	}

	commentsCreatedTotal.WithLabelValues(data.Board, strconv.FormatBool(cfg.CommentModerated)).Inc()
	c.log.Info("comment created",
		"board", data.Board,
		"thread_id", data.Thread,
		"comment_id", comment.Id,
		"visible", comment.Visible,
		"host", data.Host)
	return th, nil
}

// Preview runs the same validation and id/trip computation as Add and
// returns the would-be thread without persisting it or touching the gate.
// The previewed comment is always shown.
func (c *Comment) Preview(data domain.CommentCreationData) (domain.Thread, error) {
	if err := ValidateBoardId(data.Board); err != nil {
		return domain.Thread{}, err
	}
	unlock := c.locks.RLock(data.Board)
	defer unlock()

	cfg, th, err := c.loadLocked(data.Board, data.Thread)
	if err != nil {
		return domain.Thread{}, err
	}

	comment, err := c.build(cfg, &th, data, true)
	if err != nil {
		return domain.Thread{}, err
	}
	th.Comments = append(th.Comments, comment)
	return th, nil
}

func (c *Comment) loadLocked(board domain.BoardId, thread domain.ThreadId) (domain.BoardConfig, domain.Thread, error) {
	if err := c.docs.mustBoard(board); err != nil {
		return domain.BoardConfig{}, domain.Thread{}, err
	}
	cfg, err := c.docs.config(board)
	if err != nil {
		return domain.BoardConfig{}, domain.Thread{}, err
	}
	th, err := c.docs.indexedThread(board, thread)
	if err != nil {
		return domain.BoardConfig{}, domain.Thread{}, err
	}
	return cfg, th, nil
}

func (c *Comment) build(cfg domain.BoardConfig, th *domain.Thread, data domain.CommentCreationData, visible bool) (domain.AdminComment, error) {
	raw := data.Name
	if strings.TrimSpace(raw) == "" {
		raw = cfg.JohnDoe
	}
	name, trip := ParseName(raw, c.tripSalt)
	if name == "" {
		name = strings.TrimSpace(cfg.JohnDoe)
	}

	if name == "" || data.Text == "" {
		return domain.AdminComment{}, internal_errors.ErrCommentEmpty
	}
	if cfg.MaxCommentNameLength > 0 && utf8.RuneCountInString(name) > cfg.MaxCommentNameLength {
		return domain.AdminComment{}, internal_errors.ErrNameTooLong
	}
	if cfg.MaxCommentTextLength > 0 && utf8.RuneCountInString(data.Text) > cfg.MaxCommentTextLength {
		return domain.AdminComment{}, internal_errors.ErrTextTooLong
	}
	if cfg.MaxCommentsNum > 0 && len(th.Comments) >= cfg.MaxCommentsNum {
		return domain.AdminComment{}, internal_errors.ErrThreadFull
	}

	return domain.AdminComment{
		Id:      th.NextCommentId(),
		Dt:      c.now().UTC(),
		Name:    name,
		Trip:    trip,
		Text:    data.Text,
		Host:    data.Host,
		Info:    data.Info,
		Visible: visible,
	}, nil
}

// UpdateVisibility sets the visible flag of a comment. An unknown comment id is ignored.
func (c *Comment) UpdateVisibility(board domain.BoardId, thread domain.ThreadId, comment domain.CommentId, password domain.Password, visible bool) (domain.Thread, error) {
	return c.moderate(board, thread, comment, password, func(th *domain.Thread) {
		for i := range th.Comments {
			if th.Comments[i].Id == comment {
				th.Comments[i].Visible = visible
				c.log.Info("comment visibility updated", "board", board, "thread_id", thread, "comment_id", comment, "visible", visible)
				return
			}
		}
	})
}

// Remove drops a comment from the thread. Its id is not reissued: the thread
// keeps the next id as a high-water mark.
func (c *Comment) Remove(board domain.BoardId, thread domain.ThreadId, comment domain.CommentId, password domain.Password) (domain.Thread, error) {
	return c.moderate(board, thread, comment, password, func(th *domain.Thread) {
		th.NextCommentIdHint = th.NextCommentId()
		th.Comments = slices.DeleteFunc(th.Comments, func(ac domain.AdminComment) bool { return ac.Id == comment })
		c.log.Info("comment removed", "board", board, "thread_id", thread, "comment_id", comment)
	})
}

func (c *Comment) moderate(board domain.BoardId, thread domain.ThreadId, comment domain.CommentId, password domain.Password, apply func(th *domain.Thread)) (domain.Thread, error) {
	if err := ValidateBoardId(board); err != nil {
		return domain.Thread{}, err
	}
	unlock := c.locks.Lock(board)
	defer unlock()

	if err := c.boards.authorizeLocked(board, password, true); err != nil {
		return domain.Thread{}, err
	}
	th, err := c.docs.indexedThread(board, thread)
	if err != nil {
		return domain.Thread{}, err
	}
	if comment < 0 {
		return domain.Thread{}, internal_errors.ErrParamMissing
	}

	apply(&th)
	if err := c.docs.write(threadKey(board, thread), th); err != nil {
		return domain.Thread{}, err
	}
	return th, nil
}

// View projects a thread for non-admin callers.
func (c *Comment) View(th domain.Thread) domain.ThreadView {
	return domain.ThreadView{
		Id:           th.Id,
		Title:        th.Title,
		Comments:     RenderForViewer(th.Comments, c.renderer),
		InvisibleNum: th.InvisibleNum(),
	}
}

// RenderForViewer keeps visible comments in order and strips host, info and
// the visible flag. renderer may be nil.
func RenderForViewer(comments []domain.AdminComment, renderer TextRenderer) []domain.Comment {
	public := make([]domain.Comment, 0, len(comments))
	for _, ac := range comments {
		if !ac.Visible {
			continue
		}
		pc := domain.Comment{
			Id:   ac.Id,
			Dt:   ac.Dt,
			Name: ac.Name,
			Trip: ac.Trip,
			Text: ac.Text,
		}
		if renderer != nil {
			pc.TextHTML = renderer.Render(ac.Text)
		}
		public = append(public, pc)
	}
	return public
}
