package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoardConfigUpdateApply(t *testing.T) {
	base := BoardConfig{IntervalMinutes: 1, JohnDoe: "anon", MaxThreadsNum: 10, MaxCommentsNum: 20}
	interval := 5
	moderated := true

	got := BoardConfigUpdate{IntervalMinutes: &interval, CommentModerated: &moderated}.Apply(base)

	want := base
	want.IntervalMinutes = 5
	want.CommentModerated = true
	assert.Equal(t, want, got)
	assert.Equal(t, base, BoardConfigUpdate{}.Apply(base), "empty update keeps everything")
}

func TestThreadNextCommentId(t *testing.T) {
	assert.Equal(t, CommentId(0), (&Thread{}).NextCommentId())

	th := &Thread{Comments: []AdminComment{{Id: 0}, {Id: 4}, {Id: 2}}}
	assert.Equal(t, CommentId(5), th.NextCommentId())

	th = &Thread{Comments: []AdminComment{{Id: 1}}, NextCommentIdHint: 7}
	assert.Equal(t, CommentId(7), th.NextCommentId(), "hint wins after the highest comment was removed")
}

func TestThreadIndexNextId(t *testing.T) {
	assert.Equal(t, ThreadId(0), ThreadIndex{}.NextId())
	assert.Equal(t, ThreadId(4), ThreadIndex{ThreadIDs: []ThreadId{3, 1}}.NextId())
	assert.Equal(t, ThreadId(9), ThreadIndex{ThreadIDs: []ThreadId{3}, NextThreadId: 9}.NextId())
}

func TestThreadInvisibleNum(t *testing.T) {
	th := &Thread{Comments: []AdminComment{{Visible: true}, {Visible: false}, {Visible: false}}}
	assert.Equal(t, 2, th.InvisibleNum())
}
