package domain

// Thread is the document stored in threads/<id>.json.
type Thread struct {
	Id       ThreadId       `json:"id"`
	Title    ThreadTitle    `json:"title"`
	Comments []AdminComment `json:"comments"`
	// NextCommentIdHint survives removals so comment ids are never reissued.
	NextCommentIdHint CommentId `json:"next_comment_id,omitempty"`
}

// InvisibleNum counts comments waiting for moderation.
func (t *Thread) InvisibleNum() int {
	n := 0
	for _, c := range t.Comments {
		if !c.Visible {
			n++
		}
	}
	return n
}

// NextCommentId is max existing id + 1 (0 for an empty thread), never below
// the recorded high-water mark.
func (t *Thread) NextCommentId() CommentId {
	next := t.NextCommentIdHint
	for _, c := range t.Comments {
		if c.Id >= next {
			next = c.Id + 1
		}
	}
	return next
}

// ThreadSummary is the admin listing entry.
type ThreadSummary struct {
	Id           ThreadId       `json:"id"`
	Title        ThreadTitle    `json:"title"`
	Comments     []AdminComment `json:"comments"`
	CommentNum   int            `json:"comment_num"`
	InvisibleNum int            `json:"invisible_num"`
	FirstDt      string         `json:"first_dt"`
	LastDt       string         `json:"last_dt"`
}

// ThreadView is a thread as shown to non-admin callers.
type ThreadView struct {
	Id           ThreadId    `json:"id"`
	Title        ThreadTitle `json:"title"`
	Comments     []Comment   `json:"comments"`
	InvisibleNum int         `json:"invisible_num"`
}
