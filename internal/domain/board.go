package domain

import "time"

// BoardConfig is the per-board policy stored in config.json.
type BoardConfig struct {
	IntervalMinutes      int    `json:"interval_minutes" yaml:"interval_minutes"`
	CommentModerated     bool   `json:"comment_moderated" yaml:"comment_moderated"`
	JohnDoe              string `json:"john_doe" yaml:"john_doe"` // name used when a comment has none
	MaxThreadsNum        int    `json:"max_threads_num" yaml:"max_threads_num"`
	MaxCommentsNum       int    `json:"max_comments_num" yaml:"max_comments_num"`
	MaxThreadTitleLength int    `json:"max_thread_title_length" yaml:"max_thread_title_length"`
	MaxCommentNameLength int    `json:"max_comment_name_length" yaml:"max_comment_name_length"`
	MaxCommentTextLength int    `json:"max_comment_text_length" yaml:"max_comment_text_length"`
}

// BoardConfigUpdate holds the fields of an UpdateConfig request. Nil fields keep the stored value.
type BoardConfigUpdate struct {
	IntervalMinutes      *int
	CommentModerated     *bool
	JohnDoe              *string
	MaxThreadsNum        *int
	MaxCommentsNum       *int
	MaxThreadTitleLength *int
	MaxCommentNameLength *int
	MaxCommentTextLength *int
}

// Apply merges u into c.
func (u BoardConfigUpdate) Apply(c BoardConfig) BoardConfig {
	mergeInt(&c.IntervalMinutes, u.IntervalMinutes)
	if u.CommentModerated != nil {
		c.CommentModerated = *u.CommentModerated
	}
	if u.JohnDoe != nil {
		c.JohnDoe = *u.JohnDoe
	}
	mergeInt(&c.MaxThreadsNum, u.MaxThreadsNum)
	mergeInt(&c.MaxCommentsNum, u.MaxCommentsNum)
	mergeInt(&c.MaxThreadTitleLength, u.MaxThreadTitleLength)
	mergeInt(&c.MaxCommentNameLength, u.MaxCommentNameLength)
	mergeInt(&c.MaxCommentTextLength, u.MaxCommentTextLength)
	return c
}

func mergeInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// PasswordDocument is password.json. Password is only set by boards created before hashing.
type PasswordDocument struct {
	Hash     string `json:"password_hash,omitempty"`
	Password string `json:"password,omitempty"`
}

// ThreadIndex is threads.json: thread ids in creation order.
type ThreadIndex struct {
	ThreadIDs []ThreadId `json:"thread_IDs"`
	// NextThreadId survives removals so thread ids are never reissued.
	NextThreadId ThreadId `json:"next_thread_id,omitempty"`
}

// NextId is max indexed id + 1 (0 for none), never below the high-water mark.
func (idx ThreadIndex) NextId() ThreadId {
	next := idx.NextThreadId
	for _, id := range idx.ThreadIDs {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// RateLedger is ips.json: last submission time per host.
type RateLedger map[Host]time.Time

// IgnoreList is the global ignore_list.json.
type IgnoreList struct {
	HostList []Host `json:"host_list"`
}
