package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"AuctionSync/internal/catalog"
	"AuctionSync/internal/config"
	"AuctionSync/internal/interfaces"
	"AuctionSync/internal/model"
	"AuctionSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Runner 执行一次采集
type Runner interface {
	Run(ctx context.Context, categories []model.Category) (*service.Summary, error)
}

type SyncHandler struct {
	newRunner func() (Runner, error)
	logger    *logrus.Logger

	runMu sync.Mutex // 同一进程内同时只允许一次运行

	stateMu   sync.RWMutex
	running   bool
	startedAt time.Time
	last      *service.Summary
	lastErr   string
}

func NewSyncHandler(cfg *config.Config, runs interfaces.RunRepository, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		newRunner: func() (Runner, error) {
			return service.NewOrchestratorFromConfig(context.Background(), cfg, runs, logger)
		},
		logger: logger,
	}
}

// TriggerSync 在后台启动一次采集
// POST /api/sync?category=검&category=활（不传则采集全部分类）
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	categories := catalog.All()
	if ids := c.QueryArray("category"); len(ids) > 0 {
		selected, err := catalog.Select(ids)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		categories = selected
	}

	if !h.runMu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "已有采集任务在运行"})
		return
	}

	runner, err := h.newRunner()
	if err != nil {
		h.runMu.Unlock()
		h.logger.WithError(err).Error("创建采集任务失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.setRunning()
	go h.run(runner, categories)

	c.JSON(http.StatusAccepted, gin.H{
		"message":    "采集已开始",
		"categories": len(categories),
	})
}

// Status 当前运行状态与最近一次运行的汇总
// GET /api/status
func (h *SyncHandler) Status(c *gin.Context) {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()

	resp := gin.H{"running": h.running}
	if h.running {
		resp["startedAt"] = h.startedAt
	}
	if h.last != nil {
		resp["last"] = h.last
	}
	if h.lastErr != "" {
		resp["error"] = h.lastErr
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SyncHandler) run(runner Runner, categories []model.Category) {
	defer func() {
		if p := recover(); p != nil {
			h.logger.WithField("panic", p).Error("采集任务异常退出")
			h.setFinished(nil, "采集任务异常退出")
		}
	}()

	summary, err := runner.Run(context.Background(), categories)
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	h.setFinished(summary, errMsg)
}

func (h *SyncHandler) setRunning() {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	h.running = true
	h.startedAt = time.Now()
}

// setFinished 更新状态并释放运行锁；状态显示未运行时即可再次触发
func (h *SyncHandler) setFinished(summary *service.Summary, errMsg string) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	h.running = false
	if summary != nil {
		h.last = summary
	}
	h.lastErr = errMsg
	h.runMu.Unlock()
}
