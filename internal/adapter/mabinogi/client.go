package mabinogi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"AuctionSync/internal/config"
	"AuctionSync/internal/interfaces"
	"AuctionSync/internal/model"
	"AuctionSync/internal/utils/httpclient"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client 拍卖行列表接口客户端
// 串行使用：限流、重试、退避、致命错误熔断与旧快照兜底都在这里完成
type Client struct {
	api       *config.APIConfig
	ingest    *config.IngestConfig
	http      *resty.Client
	limiter   *rate.Limiter
	snapshots interfaces.SnapshotLoader
	quota     interfaces.QuotaCounter
	logger    *logrus.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time

	calls       int64
	errors      int64
	consecutive int // 连续失败次数，任意成功清零
	fatalStreak int // 连续致命类失败次数，任意成功或非致命失败清零
}

// NewClient 创建客户端；snapshots 与 quota 可为 nil
func NewClient(apiCfg *config.APIConfig, ingestCfg *config.IngestConfig, snapshots interfaces.SnapshotLoader, quota interfaces.QuotaCounter, logger *logrus.Logger) *Client {
	httpClient := resty.NewWithClient(httpclient.NewHTTPClient(apiCfg, logger)).
		SetHeader("Accept", "application/json").
		SetHeader(apiCfg.KeyHeader, apiCfg.APIKey)

	limit := rate.Inf
	if ingestCfg.MinDelay > 0 {
		limit = rate.Every(ingestCfg.MinDelay)
	}

	return &Client{
		api:       apiCfg,
		ingest:    ingestCfg,
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, 1),
		snapshots: snapshots,
		quota:     quota,
		logger:    logger,
		sleep:     sleepContext,
		now:       time.Now,
	}
}

// Calls 已发出的调用次数（含失败）
func (c *Client) Calls() int64 { return c.calls }

// Errors 失败的调用次数
func (c *Client) Errors() int64 { return c.errors }

// ConsecutiveErrors 当前连续失败次数
func (c *Client) ConsecutiveErrors() int { return c.consecutive }

// Backoff 第 attempt 次重试前的等待时间：base × 2^attempt（attempt 从 0 开始）
// attempt 超过 config.MaxRetriesLimit 时按上限计算
func (c *Client) Backoff(attempt int) time.Duration {
	if attempt > config.MaxRetriesLimit {
		attempt = config.MaxRetriesLimit
	}
	if attempt < 0 {
		attempt = 0
	}
	return c.ingest.BaseBackoff * time.Duration(1<<uint(attempt))
}

// FetchPage 拉取一个分类的一页数据
// 瞬时错误按退避重试，重试用尽后尝试使用上次落盘的快照兜底
func (c *Client) FetchPage(ctx context.Context, categoryID, cursor string) (*model.Page, error) {
	log := c.logger.WithField("category", categoryID)
	var lastErr error

	for attempt := 0; attempt <= c.ingest.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.Backoff(attempt - 1)
			log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).WithError(lastErr).Warn("瞬时错误，退避后重试")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		page, err := c.fetchOnce(ctx, categoryID, cursor)
		if err == nil {
			c.consecutive = 0
			c.fatalStreak = 0
			return page, nil
		}
		if IsFatal(err) || ctx.Err() != nil {
			return nil, err
		}

		c.errors++
		c.consecutive++

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return nil, err
		}
		switch apiErr.Class {
		case ClassFatal:
			c.fatalStreak++
			if c.fatalStreak >= c.ingest.FatalThreshold {
				log.WithError(apiErr).WithField("streak", c.fatalStreak).Error("连续致命错误达到阈值，终止运行")
				return nil, &FatalError{Cause: apiErr}
			}
			return nil, fmt.Errorf("分类%s请求失败: %w", categoryID, apiErr)
		case ClassPermanent:
			c.fatalStreak = 0
			return nil, fmt.Errorf("分类%s请求失败: %w", categoryID, apiErr)
		default:
			c.fatalStreak = 0
			lastErr = apiErr
		}
	}

	if c.snapshots != nil {
		if items, ok := c.snapshots.LoadCategorySnapshot(categoryID); ok {
			log.WithError(lastErr).WithField("items", len(items)).Warn("重试用尽，使用上次快照兜底")
			return &model.Page{UsedFallback: true, Restored: items}, nil
		}
	}
	return nil, fmt.Errorf("分类%s %w: %w", categoryID, ErrRetriesExhausted, lastErr)
}

// fetchOnce 发出一次请求（先占用配额，再等待限流）
func (c *Client) fetchOnce(ctx context.Context, categoryID, cursor string) (*model.Page, error) {
	if c.quota != nil {
		if _, err := c.quota.Reserve(c.now()); err != nil {
			return nil, &FatalError{Cause: err}
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.calls++
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam(c.api.CategoryParam, categoryID)
	if cursor != "" {
		req.SetQueryParam(c.api.CursorParam, cursor)
	}
	resp, err := req.Get(c.api.BaseURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{Message: err.Error(), Class: ClassTransient}
	}
	if resp.IsError() {
		return nil, ClassifyResponse(resp.StatusCode(), resp.Body())
	}

	var body listResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &APIError{
			Status:  resp.StatusCode(),
			Message: fmt.Sprintf("响应解析失败: %v", err),
			Class:   ClassPermanent,
		}
	}

	page := &model.Page{Items: body.Items}
	if body.NextCursor != nil {
		page.NextCursor = *body.NextCursor
	}
	c.logger.WithFields(logrus.Fields{
		"category": categoryID,
		"items":    len(page.Items),
		"hasNext":  page.NextCursor != "",
	}).Debug("拉取分页成功")
	return page, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
