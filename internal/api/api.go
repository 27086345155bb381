package api

import "github.com/itchan-dev/nbbs/internal/domain"

// Request DTOs. Every parameter arrives as a query string value; validate
// tags use the query parameter names in error messages.

type BoardRequest struct {
	Id string `query:"id" validate:"required"`
}

type AdminRequest struct {
	Id       string `query:"id" validate:"required"`
	Password string `query:"password"`
}

type UpdateConfigRequest struct {
	AdminRequest
	IntervalMinutes      string  `query:"interval_minutes" validate:"omitempty,number"`
	CommentModerated     string  `query:"comment_moderated" validate:"omitempty,boolean"`
	JohnDoe              *string `query:"john_doe"`
	MaxThreadsNum        string  `query:"max_threads_num" validate:"omitempty,number"`
	MaxCommentsNum       string  `query:"max_comments_num" validate:"omitempty,number"`
	MaxThreadTitleLength string  `query:"max_thread_title_length" validate:"omitempty,number"`
	MaxCommentNameLength string  `query:"max_comment_name_length" validate:"omitempty,number"`
	MaxCommentTextLength string  `query:"max_comment_text_length" validate:"omitempty,number"`
}

type RemoveThreadRequest struct {
	AdminRequest
	ThreadId string `query:"thread_id" validate:"required,number"`
}

type CreateThreadRequest struct {
	Id    string `query:"id" validate:"required"`
	Title string `query:"title"` // checked by the service, after the board and gate
}

type ThreadRequest struct {
	Id       string `query:"id" validate:"required"`
	ThreadId string `query:"threadID" validate:"required,number"`
}

type CreateCommentRequest struct {
	ThreadRequest
	Name string `query:"name"`
	Text string `query:"text"`
	Info string `query:"info"`
}

type UpdateCommentRequest struct {
	AdminRequest
	ThreadId  string `query:"threadID" validate:"required,number"`
	CommentId string `query:"comment_id" validate:"required,number"`
	Visible   string `query:"visible" validate:"required,boolean"`
}

type RemoveCommentRequest struct {
	AdminRequest
	ThreadId  string `query:"threadID" validate:"required,number"`
	CommentId string `query:"comment_id" validate:"required,number"`
}

// Response DTOs

type ErrorResponse struct {
	Error string `json:"error"`
}

// ThreadListResponse is the public board listing.
type ThreadListResponse []domain.ThreadView

// ThreadSummaryListResponse is the admin board listing.
type ThreadSummaryListResponse []domain.ThreadSummary
