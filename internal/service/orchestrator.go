package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"AuctionSync/internal/adapter/mabinogi"
	"AuctionSync/internal/interfaces"
	"AuctionSync/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Summary 一次运行的汇总
type Summary struct {
	RunID      string         `json:"runId"`
	Stage      Stage          `json:"stage"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Duration   time.Duration  `json:"duration"`
	Calls      int64          `json:"calls"`
	Errors     int64          `json:"errors"`
	Processed  int            `json:"processed"`
	Skipped    int            `json:"skipped"`
	Fallbacks  int            `json:"fallbacks"`
	Items      int            `json:"items"`
	Restored   int            `json:"restored"`
	AbortCause string         `json:"abortCause,omitempty"`
	Categories []CategoryStat `json:"categories"`
}

// ToRun 转换为数据库运行记录
func (s *Summary) ToRun() *model.IngestRun {
	status := model.RunStatusDone
	if s.Stage == StageAborted {
		status = model.RunStatusAborted
	}
	run := &model.IngestRun{
		RunUUID:    s.RunID,
		Status:     status,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Calls:      s.Calls,
		Errors:     s.Errors,
		Processed:  s.Processed,
		Skipped:    s.Skipped,
		Fallbacks:  s.Fallbacks,
		Items:      s.Items,
	}
	if s.AbortCause != "" {
		cause := s.AbortCause
		run.AbortCause = &cause
	}
	if raw, err := json.Marshal(s.Categories); err == nil {
		run.Categories = datatypes.JSON(raw)
	}
	return run
}

// Orchestrator 一次完整采集：逐分类拉取、归一化、落快照，最后合并元数据目录
type Orchestrator struct {
	fetcher   interfaces.PageFetcher
	collector *Collector
	processor *Processor
	store     interfaces.SnapshotStore
	runs      interfaces.RunRepository
	reporter  interfaces.CatalogReporter
	publisher interfaces.Publisher
	outputDir string
	logger    *logrus.Logger
	now       func() time.Time
}

func NewOrchestrator(fetcher interfaces.PageFetcher, store interfaces.SnapshotStore, maxPages int, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher:   fetcher,
		collector: NewCollector(fetcher, maxPages, logger),
		processor: NewProcessor(),
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// WithRunRepository 运行结束后写入运行历史
func (o *Orchestrator) WithRunRepository(runs interfaces.RunRepository) *Orchestrator {
	o.runs = runs
	return o
}

// WithReporter 元数据合并后生成报表
func (o *Orchestrator) WithReporter(reporter interfaces.CatalogReporter) *Orchestrator {
	o.reporter = reporter
	return o
}

// WithPublisher 运行成功后把输出目录发布到远端
func (o *Orchestrator) WithPublisher(publisher interfaces.Publisher, outputDir string) *Orchestrator {
	o.publisher = publisher
	o.outputDir = outputDir
	return o
}

// Run 执行一次采集
// 分类级错误只跳过该分类；致命错误立即中止，且不写任何元数据目录
func (o *Orchestrator) Run(ctx context.Context, categories []model.Category) (*Summary, error) {
	run := NewRunContext(o.now())
	log := o.logger.WithField("run", run.RunID)
	log.WithField("categories", len(categories)).Info("开始采集")

	run.Stage = StageProcessCategory
	for i, cat := range categories {
		stat, err := o.processCategory(ctx, cat, run)
		if err != nil {
			if mabinogi.IsFatal(err) || ctx.Err() != nil {
				log.WithError(err).WithField("category", cat.ID).Error("致命错误，中止本次运行")
				return o.finish(ctx, run, err)
			}
			log.WithError(err).WithField("category", cat.ID).Warn("分类处理失败，跳过")
			stat.State = CategorySkipped
			stat.Error = err.Error()
		}
		run.RecordCategory(stat)
		log.WithFields(logrus.Fields{
			"category": cat.ID,
			"state":    stat.State,
			"items":    stat.Items,
			"progress": fmt.Sprintf("%d/%d", i+1, len(categories)),
		}).Info("分类处理完成")
	}

	run.Stage = StageMergeMetadata
	if err := o.mergeMetadata(run); err != nil {
		return o.finish(ctx, run, err)
	}

	run.Stage = StageDone
	if o.publisher != nil {
		if n, err := o.publisher.PublishDir(ctx, o.outputDir); err != nil {
			log.WithError(err).Warn("发布输出目录失败")
		} else {
			log.WithField("objects", n).Info("输出目录已发布")
		}
	}
	return o.finish(ctx, run, nil)
}

// processCategory 拉取并处理单个分类；兜底分类保留原快照不重写
func (o *Orchestrator) processCategory(ctx context.Context, cat model.Category, run *RunContext) (CategoryStat, error) {
	stat := CategoryStat{ID: cat.ID, Group: cat.ParentGroup}

	result, err := o.collector.Collect(ctx, cat)
	if err != nil {
		return stat, err
	}
	stat.Pages = result.Pages

	if result.UsedFallback {
		stat.State = CategoryFallback
		stat.Items = len(result.Restored)
		return stat, nil
	}

	scratch := run.Scratch()
	items := o.processor.Process(result.Listings, cat.ID, scratch)
	if err := o.store.SaveCategorySnapshot(cat.ID, items); err != nil {
		return stat, err
	}
	run.Absorb(scratch)
	stat.State = CategoryOK
	stat.Items = len(items)
	return stat, nil
}

// mergeMetadata 与已落盘的目录合并后写回四个元数据文件
func (o *Orchestrator) mergeMetadata(run *RunContext) error {
	enchants := make(map[string]model.EnchantCatalog, 2)
	for _, partition := range []string{model.EnchantPrefix, model.EnchantSuffix} {
		merged, err := o.store.SaveEnchants(partition, run.Enchants[partition])
		if err != nil {
			return fmt.Errorf("写入元数据失败: %w", err)
		}
		enchants[partition] = merged
	}

	sets := make(map[string]model.SetCatalog, 2)
	for kind, incoming := range map[string]model.SetCatalog{
		model.CatalogReforge:  run.Reforges,
		model.CatalogEcostone: run.Ecostones,
	} {
		merged, err := o.store.SaveSetCatalog(kind, incoming)
		if err != nil {
			return fmt.Errorf("写入元数据失败: %w", err)
		}
		sets[kind] = merged
	}

	o.logger.WithFields(logrus.Fields{
		"prefix":    len(enchants[model.EnchantPrefix]),
		"suffix":    len(enchants[model.EnchantSuffix]),
		"reforges":  len(sets[model.CatalogReforge]),
		"ecostones": len(sets[model.CatalogEcostone]),
	}).Info("元数据目录已合并")

	if o.reporter != nil {
		path, err := o.reporter.Write(enchants, sets)
		if err != nil {
			o.logger.WithError(err).Warn("生成元数据报表失败")
		} else {
			o.logger.WithField("path", path).Info("元数据报表已生成")
		}
	}
	return nil
}

// finish 汇总、记录运行历史并输出统计
func (o *Orchestrator) finish(ctx context.Context, run *RunContext, cause error) (*Summary, error) {
	if cause != nil {
		run.Stage = StageAborted
	}
	finished := o.now()
	summary := &Summary{
		RunID:      run.RunID,
		Stage:      run.Stage,
		StartedAt:  run.StartedAt,
		FinishedAt: finished,
		Duration:   finished.Sub(run.StartedAt),
		Calls:      o.fetcher.Calls(),
		Errors:     o.fetcher.Errors(),
		Processed:  run.Processed,
		Skipped:    run.Skipped,
		Fallbacks:  run.Fallbacks,
		Items:      run.Items,
		Restored:   run.Restored,
		Categories: run.Categories,
	}
	if cause != nil {
		summary.AbortCause = cause.Error()
	}

	if o.runs != nil {
		if err := o.runs.SaveRun(context.WithoutCancel(ctx), summary.ToRun()); err != nil {
			o.logger.WithError(err).Warn("保存运行记录失败")
		}
	}

	entry := o.logger.WithFields(logrus.Fields{
		"run":       summary.RunID,
		"stage":     summary.Stage,
		"calls":     summary.Calls,
		"errors":    summary.Errors,
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"fallbacks": summary.Fallbacks,
		"items":     summary.Items,
		"restored":  summary.Restored,
		"duration":  summary.Duration.Round(time.Millisecond).String(),
	})
	if cause != nil {
		entry.WithError(cause).Error("采集已中止")
		return summary, cause
	}
	entry.Info("采集完成")
	return summary, nil
}
