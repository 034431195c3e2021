package interfaces

import (
	"context"
	"time"

	"AuctionSync/internal/model"
)

// PageFetcher 拍卖行分页接口（限流、重试、降级由实现负责）
type PageFetcher interface {
	FetchPage(ctx context.Context, categoryID, cursor string) (*model.Page, error) // 拉取单页
	Calls() int64                                                                  // 已发出的调用次数
	Errors() int64                                                                 // 失败调用次数
}

// SnapshotLoader 读取上次成功落盘的分类快照
type SnapshotLoader interface {
	LoadCategorySnapshot(categoryID string) ([]model.NormalizedItem, bool)
}

// SnapshotStore 快照与元数据目录的持久化接口
type SnapshotStore interface {
	SnapshotLoader
	SaveCategorySnapshot(categoryID string, items []model.NormalizedItem) error
	SaveEnchants(partition string, incoming model.EnchantCatalog) (model.EnchantCatalog, error)
	SaveSetCatalog(kind string, incoming model.SetCatalog) (model.SetCatalog, error)
}

// QuotaCounter 每日调用配额
type QuotaCounter interface {
	Reserve(now time.Time) (int, error) // 预占一次调用，超过当日上限返回错误
}
