package domain

type (
	BoardId   = string
	Password  = string
	Host      = string
	ThreadId  = int64
	CommentId = int64

	ThreadTitle = string
	CommentName = string
	CommentText = string
)
