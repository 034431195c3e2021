package service

import (
	"context"
	"path/filepath"

	"AuctionSync/internal/adapter/mabinogi"
	"AuctionSync/internal/config"
	"AuctionSync/internal/interfaces"
	"AuctionSync/internal/publish"
	"AuctionSync/internal/report"
	"AuctionSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// QuotaFile 每日配额文件相对输出目录的位置
const QuotaFile = "meta/quota.json"

// NewOrchestratorFromConfig 按配置装配一次运行所需的组件
// 每次运行都新建客户端，调用计数不跨运行累积；runs 为 nil 时不记录运行历史
func NewOrchestratorFromConfig(ctx context.Context, cfg *config.Config, runs interfaces.RunRepository, logger *logrus.Logger) (*Orchestrator, error) {
	store := repository.NewFileStore(cfg.Output.Dir, logger)
	quota := repository.NewQuotaStore(filepath.Join(cfg.Output.Dir, filepath.FromSlash(QuotaFile)), cfg.API.DailyCallLimit, logger)
	client := mabinogi.NewClient(&cfg.API, &cfg.Ingest, store, quota, logger)

	o := NewOrchestrator(client, store, cfg.Ingest.MaxPages, logger)
	if runs != nil {
		o.WithRunRepository(runs)
	}
	if cfg.Output.XLSXReport {
		o.WithReporter(report.NewCatalogReport(cfg.Output.Dir, logger))
	}
	if cfg.Spaces.Enabled {
		publisher, err := publish.NewSpacesPublisher(ctx, &cfg.Spaces, logger)
		if err != nil {
			return nil, err
		}
		o.WithPublisher(publisher, cfg.Output.Dir)
	}
	return o, nil
}
