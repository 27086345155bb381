package handler

import (
	"net/http"
	"testing"

	"github.com/itchan-dev/nbbs/internal/domain"
	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentHandler(t *testing.T) {
	t.Run("passes request data", func(t *testing.T) {
		th := newTestHandler(false)
		var got domain.CommentCreationData
		th.comment.MockAdd = func(data domain.CommentCreationData) (domain.Thread, error) {
			got = data
			return domain.Thread{Id: data.Thread, Comments: []domain.AdminComment{
				{Id: 0, Name: "alice", Trip: "abc", Text: data.Text, Host: data.Host, Info: data.Info, Visible: true},
			}}, nil
		}

		rr := th.get("/api/threads/2/comments/new?id=b&name=alice%23pw&text=hi&info=ua")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.CommentCreationData{
			Board: "b", Thread: 2, Name: "alice#pw", Text: "hi", Host: "192.0.2.1", Info: "ua",
		}, got)
		view := decode[domain.ThreadView](t, rr)
		require.Len(t, view.Comments, 1)
		assert.Equal(t, "abc", view.Comments[0].Trip)
		assert.NotContains(t, rr.Body.String(), "192.0.2.1")
	})

	t.Run("missing text is left to the service", func(t *testing.T) {
		th := newTestHandler(false)
		called := false
		th.comment.MockAdd = func(data domain.CommentCreationData) (domain.Thread, error) {
			called = true
			assert.Equal(t, "", data.Text)
			return domain.Thread{}, internal_errors.ErrCommentEmpty
		}

		rr := th.get("/api/threads/2/comments/new?id=b&name=a")

		assert.True(t, called)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Too few parameters.", errorMessage(t, rr))
	})

	t.Run("missing text on unknown thread", func(t *testing.T) {
		th := newTestHandler(false)
		th.comment.MockAdd = func(data domain.CommentCreationData) (domain.Thread, error) {
			return domain.Thread{}, internal_errors.NotFound(data.Thread)
		}

		rr := th.get("/api/threads/7/comments/new?id=b")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "ID '7' not found.", errorMessage(t, rr))
	})

	t.Run("thread full", func(t *testing.T) {
		th := newTestHandler(false)
		th.comment.MockAdd = func(data domain.CommentCreationData) (domain.Thread, error) {
			return domain.Thread{}, internal_errors.ErrThreadFull
		}

		rr := th.get("/api/threads/2/comments/new?id=b&text=x")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Too many comments.", errorMessage(t, rr))
	})
}

func TestPreviewCommentHandler(t *testing.T) {
	th := newTestHandler(false)
	added := false
	th.comment.MockAdd = func(data domain.CommentCreationData) (domain.Thread, error) {
		added = true
		return domain.Thread{}, nil
	}
	th.comment.MockPreview = func(data domain.CommentCreationData) (domain.Thread, error) {
		return domain.Thread{Id: data.Thread, Comments: []domain.AdminComment{{Id: 5, Text: data.Text, Visible: true}}}, nil
	}

	rr := th.get("/api/threads/2/comments/preview?id=b&text=draft")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, added)
	view := decode[domain.ThreadView](t, rr)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "draft", view.Comments[0].Text)
}

func TestUpdateCommentVisibilityHandler(t *testing.T) {
	t.Run("successful", func(t *testing.T) {
		th := newTestHandler(false)
		th.comment.MockUpdateVisibility = func(board string, thread, comment int64, password string, visible bool) (domain.Thread, error) {
			assert.Equal(t, int64(2), thread)
			assert.Equal(t, int64(4), comment)
			assert.False(t, visible)
			return domain.Thread{Id: thread, Comments: []domain.AdminComment{{Id: 4, Host: "h", Visible: visible}}}, nil
		}

		rr := th.get("/api/admin/threads/2/comments/update?id=b&password=pw&comment_id=4&visible=false")

		require.Equal(t, http.StatusOK, rr.Code)
		got := decode[domain.Thread](t, rr)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, "h", got.Comments[0].Host, "admin view keeps private fields")
	})

	t.Run("missing visible", func(t *testing.T) {
		th := newTestHandler(false)

		rr := th.get("/api/admin/threads/2/comments/update?id=b&password=pw&comment_id=4")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Too few parameters.", errorMessage(t, rr))
	})

	t.Run("malformed visible", func(t *testing.T) {
		th := newTestHandler(false)

		rr := th.get("/api/admin/threads/2/comments/update?id=b&password=pw&comment_id=4&visible=maybe")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid parameter 'visible'.", errorMessage(t, rr))
	})
}

func TestDeleteCommentHandler(t *testing.T) {
	t.Run("successful", func(t *testing.T) {
		th := newTestHandler(false)
		th.comment.MockRemove = func(board string, thread, comment int64, password string) (domain.Thread, error) {
			assert.Equal(t, "b", board)
			assert.Equal(t, int64(1), comment)
			return domain.Thread{Id: thread, Comments: []domain.AdminComment{}}, nil
		}

		rr := th.get("/api/admin/threads/2/comments/remove?id=b&password=pw&comment_id=1")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decode[domain.Thread](t, rr).Comments)
	})

	t.Run("wrong password", func(t *testing.T) {
		th := newTestHandler(false)
		th.comment.MockRemove = func(board string, thread, comment int64, password string) (domain.Thread, error) {
			return domain.Thread{}, internal_errors.ErrBadPassword
		}

		rr := th.get("/api/admin/threads/2/comments/remove?id=b&password=x&comment_id=1")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
