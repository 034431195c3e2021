package interfaces

import (
	"context"

	"AuctionSync/internal/model"
)

// RunRepository 运行历史的数据库操作接口
type RunRepository interface {
	SaveRun(ctx context.Context, run *model.IngestRun) error
	ListRuns(ctx context.Context, limit int) ([]*model.IngestRun, error)
}

// CatalogReporter 元数据目录报表生成
type CatalogReporter interface {
	Write(enchants map[string]model.EnchantCatalog, sets map[string]model.SetCatalog) (string, error)
}

// Publisher 把输出目录同步到远端存储
type Publisher interface {
	PublishDir(ctx context.Context, dir string) (int, error)
}
