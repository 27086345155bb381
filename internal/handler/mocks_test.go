package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/nbbs/internal/api"
	"github.com/itchan-dev/nbbs/internal/config"
	"github.com/itchan-dev/nbbs/internal/domain"
	mw "github.com/itchan-dev/nbbs/internal/middleware"
	"github.com/itchan-dev/nbbs/internal/service"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockBoardService struct {
	MockCreate         func(id, password string, cfg *domain.BoardConfig) (domain.BoardConfig, error)
	MockGetConfig      func(id string) (domain.BoardConfig, error)
	MockUpdateConfig   func(id, password string, update domain.BoardConfigUpdate) (domain.BoardConfig, error)
	MockVerifyPassword func(id, password string) (bool, error)
}

func (m *MockBoardService) Create(id, password string, cfg *domain.BoardConfig) (domain.BoardConfig, error) {
	if m.MockCreate != nil {
		return m.MockCreate(id, password, cfg)
	}
	return domain.BoardConfig{}, nil
}

func (m *MockBoardService) GetConfig(id string) (domain.BoardConfig, error) {
	if m.MockGetConfig != nil {
		return m.MockGetConfig(id)
	}
	return domain.BoardConfig{}, nil
}

func (m *MockBoardService) UpdateConfig(id, password string, update domain.BoardConfigUpdate) (domain.BoardConfig, error) {
	if m.MockUpdateConfig != nil {
		return m.MockUpdateConfig(id, password, update)
	}
	return domain.BoardConfig{}, nil
}

func (m *MockBoardService) VerifyPassword(id, password string) (bool, error) {
	if m.MockVerifyPassword != nil {
		return m.MockVerifyPassword(id, password)
	}
	return true, nil
}

type MockThreadService struct {
	MockList   func(board string) ([]domain.ThreadSummary, error)
	MockCreate func(board, title, host string) (domain.Thread, error)
	MockGet    func(board string, id int64) (domain.Thread, error)
	MockDelete func(board string, id int64, password string) (domain.ThreadIndex, error)
}

func (m *MockThreadService) List(board string) ([]domain.ThreadSummary, error) {
	if m.MockList != nil {
		return m.MockList(board)
	}
	return []domain.ThreadSummary{}, nil
}

func (m *MockThreadService) Create(board, title, host string) (domain.Thread, error) {
	if m.MockCreate != nil {
		return m.MockCreate(board, title, host)
	}
	return domain.Thread{}, nil
}

func (m *MockThreadService) Get(board string, id int64) (domain.Thread, error) {
	if m.MockGet != nil {
		return m.MockGet(board, id)
	}
	return domain.Thread{}, nil
}

func (m *MockThreadService) Delete(board string, id int64, password string) (domain.ThreadIndex, error) {
	if m.MockDelete != nil {
		return m.MockDelete(board, id, password)
	}
	return domain.ThreadIndex{}, nil
}

type MockCommentService struct {
	MockAdd              func(data domain.CommentCreationData) (domain.Thread, error)
	MockPreview          func(data domain.CommentCreationData) (domain.Thread, error)
	MockUpdateVisibility func(board string, thread, comment int64, password string, visible bool) (domain.Thread, error)
	MockRemove           func(board string, thread, comment int64, password string) (domain.Thread, error)
}

func (m *MockCommentService) Add(data domain.CommentCreationData) (domain.Thread, error) {
	if m.MockAdd != nil {
		return m.MockAdd(data)
	}
	return domain.Thread{}, nil
}

func (m *MockCommentService) Preview(data domain.CommentCreationData) (domain.Thread, error) {
	if m.MockPreview != nil {
		return m.MockPreview(data)
	}
	return domain.Thread{}, nil
}

func (m *MockCommentService) UpdateVisibility(board string, thread, comment int64, password string, visible bool) (domain.Thread, error) {
	if m.MockUpdateVisibility != nil {
		return m.MockUpdateVisibility(board, thread, comment, password, visible)
	}
	return domain.Thread{}, nil
}

func (m *MockCommentService) Remove(board string, thread, comment int64, password string) (domain.Thread, error) {
	if m.MockRemove != nil {
		return m.MockRemove(board, thread, comment, password)
	}
	return domain.Thread{}, nil
}

// View uses the real projection so responses match production.
func (m *MockCommentService) View(th domain.Thread) domain.ThreadView {
	return domain.ThreadView{
		Id:           th.Id,
		Title:        th.Title,
		Comments:     service.RenderForViewer(th.Comments, nil),
		InvisibleNum: th.InvisibleNum(),
	}
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// --- Helpers ---

type testHandler struct {
	*Handler
	board   *MockBoardService
	thread  *MockThreadService
	comment *MockCommentService
	router  chi.Router
}

func newTestHandler(legacy bool) *testHandler {
	cfg := config.New(config.Public{Http: config.Http{LegacyStatusCodes: legacy}}, config.Private{})
	th := &testHandler{
		board:   &MockBoardService{},
		thread:  &MockThreadService{},
		comment: &MockCommentService{},
	}
	th.Handler = New(th.board, th.thread, th.comment, &MockHealthChecker{}, cfg)

	r := chi.NewRouter()
	r.Use(mw.ClientHost(false))
	r.Get("/api/admin/new", th.CreateBoard)
	r.Get("/api/admin/config", th.UpdateConfig)
	r.Get("/api/admin/threads", th.GetAdminThreads)
	r.Get("/api/admin/threads/remove", th.DeleteThread)
	r.Get("/api/admin/threads/{threadID}/comments/update", th.UpdateCommentVisibility)
	r.Get("/api/admin/threads/{threadID}/comments/remove", th.DeleteComment)
	r.Get("/api/threads", th.GetThreads)
	r.Get("/api/threads/new", th.CreateThread)
	r.Get("/api/threads/{threadID}", th.GetThread)
	r.Get("/api/threads/{threadID}/comments/preview", th.PreviewComment)
	r.Get("/api/threads/{threadID}/comments/new", th.CreateComment)
	th.router = r
	return th
}

func (th *testHandler) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "192.0.2.1:4000"
	rr := httptest.NewRecorder()
	th.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[api.ErrorResponse](t, rr).Error
}
