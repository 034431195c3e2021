package service

import (
	"context"

	"AuctionSync/internal/interfaces"
	"AuctionSync/internal/model"

	"github.com/sirupsen/logrus"
)

// CollectResult 单个分类的采集结果
// UsedFallback 为 true 时 Listings 为空，Restored 为旧快照的全部内容
type CollectResult struct {
	Listings     []model.RawListing
	Restored     []model.NormalizedItem
	UsedFallback bool
	Pages        int
}

// Collector 分页驱动：沿游标逐页拉取一个分类
type Collector struct {
	client   interfaces.PageFetcher
	maxPages int
	logger   *logrus.Logger
}

func NewCollector(client interfaces.PageFetcher, maxPages int, logger *logrus.Logger) *Collector {
	if maxPages <= 0 {
		maxPages = 100
	}
	return &Collector{client: client, maxPages: maxPages, logger: logger}
}

// Collect 拉取分类的全部分页；客户端返回的错误（含致命错误）原样向上传递
func (c *Collector) Collect(ctx context.Context, category model.Category) (*CollectResult, error) {
	result := &CollectResult{}
	cursor := ""
	for {
		page, err := c.client.FetchPage(ctx, category.ID, cursor)
		if err != nil {
			return nil, err
		}
		result.Pages++

		if page.UsedFallback {
			return &CollectResult{Restored: page.Restored, UsedFallback: true, Pages: result.Pages}, nil
		}
		if len(page.Items) == 0 {
			return result, nil
		}
		result.Listings = append(result.Listings, page.Items...)

		if page.NextCursor == "" {
			return result, nil
		}
		if result.Pages >= c.maxPages {
			c.logger.WithFields(logrus.Fields{
				"category": category.ID,
				"pages":    result.Pages,
				"items":    len(result.Listings),
			}).Warn("达到单分类页数上限，停止翻页")
			return result, nil
		}
		cursor = page.NextCursor
	}
}
