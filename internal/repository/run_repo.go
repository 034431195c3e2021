package repository

import (
	"context"
	"fmt"

	"AuctionSync/internal/interfaces"
	"AuctionSync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) interfaces.RunRepository {
	return &RunRepository{db: db}
}

// SaveRun 写入一次运行记录（RunUUID 为空时自动生成）
func (r *RunRepository) SaveRun(ctx context.Context, run *model.IngestRun) error {
	if run.RunUUID == "" {
		run.RunUUID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("保存运行记录失败: %w, run_uuid: %s", err, run.RunUUID)
	}
	return nil
}

// ListRuns 按开始时间倒序返回最近的运行记录
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*model.IngestRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	var runs []*model.IngestRun
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	return runs, nil
}
