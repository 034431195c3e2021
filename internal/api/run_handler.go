package api

import (
	"net/http"
	"strconv"

	"AuctionSync/internal/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RunHandler 运行历史查询接口
type RunHandler struct {
	repo   interfaces.RunRepository
	logger *logrus.Logger
}

// NewRunHandler repo 为 nil 表示未配置数据库
func NewRunHandler(repo interfaces.RunRepository, logger *logrus.Logger) *RunHandler {
	return &RunHandler{repo: repo, logger: logger}
}

// ListRuns 最近的运行记录
// GET /api/runs?limit=20
func (h *RunHandler) ListRuns(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未配置数据库，运行历史不可用"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.repo.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("ListRuns failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": len(runs)})
}
