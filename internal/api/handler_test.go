package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"AuctionSync/internal/model"
	"AuctionSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingRunner struct {
	release chan struct{}
	got     chan []model.Category
	err     error
}

func (r *blockingRunner) Run(_ context.Context, categories []model.Category) (*service.Summary, error) {
	r.got <- categories
	<-r.release
	return &service.Summary{RunID: "run-1", Stage: service.StageDone, Items: 7}, r.err
}

func newRouter(h *SyncHandler, rh *RunHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/sync", h.TriggerSync)
	r.GET("/api/status", h.Status)
	r.GET("/api/runs", rh.ListRuns)
	return r
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func statusBody(t *testing.T, r http.Handler) map[string]any {
	t.Helper()
	w := do(r, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTriggerSyncRejectsConcurrentRuns(t *testing.T) {
	logger, _ := test.NewNullLogger()
	runner := &blockingRunner{release: make(chan struct{}), got: make(chan []model.Category, 1)}
	h := &SyncHandler{newRunner: func() (Runner, error) { return runner, nil }, logger: logger}
	r := newRouter(h, NewRunHandler(nil, logger))

	w := do(r, http.MethodPost, "/api/sync?category="+url.QueryEscape("검")+"&category="+url.QueryEscape("활"))
	assert.Equal(t, http.StatusAccepted, w.Code)
	cats := <-runner.got
	require.Len(t, cats, 2)
	assert.Equal(t, "검", cats[0].ID)
	assert.Equal(t, true, statusBody(t, r)["running"])

	w = do(r, http.MethodPost, "/api/sync")
	assert.Equal(t, http.StatusConflict, w.Code)

	close(runner.release)
	assert.Eventually(t, func() bool {
		return statusBody(t, r)["running"] == false
	}, time.Second, 10*time.Millisecond)

	body := statusBody(t, r)
	last, ok := body["last"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "run-1", last["runId"])
	assert.EqualValues(t, 7, last["items"])

	// 运行结束后可以再次触发
	runner.release = make(chan struct{})
	close(runner.release)
	w = do(r, http.MethodPost, "/api/sync?category="+url.QueryEscape("검"))
	assert.Equal(t, http.StatusAccepted, w.Code)
	<-runner.got
}

func TestTriggerSyncRecordsRunError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	runner := &blockingRunner{release: make(chan struct{}), got: make(chan []model.Category, 1), err: errors.New("致命错误: bad key")}
	close(runner.release)
	h := &SyncHandler{newRunner: func() (Runner, error) { return runner, nil }, logger: logger}
	r := newRouter(h, NewRunHandler(nil, logger))

	require.Equal(t, http.StatusAccepted, do(r, http.MethodPost, "/api/sync").Code)
	all := <-runner.got
	assert.Greater(t, len(all), 40)

	assert.Eventually(t, func() bool {
		body := statusBody(t, r)
		return body["running"] == false && body["error"] == "致命错误: bad key"
	}, time.Second, 10*time.Millisecond)
}

func TestTriggerSyncBadRequests(t *testing.T) {
	logger, _ := test.NewNullLogger()
	h := &SyncHandler{newRunner: func() (Runner, error) { return nil, errors.New("spaces config") }, logger: logger}
	r := newRouter(h, NewRunHandler(nil, logger))

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/sync?category="+url.QueryEscape("없는분류")).Code)
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodPost, "/api/sync").Code)
	// 创建失败后锁已释放
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodPost, "/api/sync").Code)
}

type staticRuns struct {
	runs []*model.IngestRun
	err  error
}

func (s *staticRuns) SaveRun(context.Context, *model.IngestRun) error { return nil }

func (s *staticRuns) ListRuns(_ context.Context, _ int) ([]*model.IngestRun, error) {
	return s.runs, s.err
}

func TestListRuns(t *testing.T) {
	logger, _ := test.NewNullLogger()
	h := &SyncHandler{logger: logger}

	r := newRouter(h, NewRunHandler(nil, logger))
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/api/runs").Code)

	repo := &staticRuns{runs: []*model.IngestRun{{RunUUID: "a", Status: model.RunStatusDone}}}
	r = newRouter(h, NewRunHandler(repo, logger))
	w := do(r, http.MethodGet, "/api/runs?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Runs  []model.IngestRun `json:"runs"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "a", body.Runs[0].RunUUID)

	repo.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/api/runs").Code)
}
