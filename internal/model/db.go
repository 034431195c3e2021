package model

import (
	"time"

	"gorm.io/datatypes"
)

// 运行状态
const (
	RunStatusDone    = "done"
	RunStatusAborted = "aborted"
)

// IngestRun 一次采集运行的汇总记录（配置了数据库时落库）
type IngestRun struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	RunUUID    string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null;comment:运行唯一ID"`
	Status     string         `gorm:"column:status;type:varchar(16);not null;comment:状态：done/aborted"`
	StartedAt  time.Time      `gorm:"column:started_at;type:timestamp;not null;comment:开始时间"`
	FinishedAt time.Time      `gorm:"column:finished_at;type:timestamp;not null;comment:结束时间"`
	Calls      int64          `gorm:"column:calls;type:bigint;default:0;comment:API调用次数"`
	Errors     int64          `gorm:"column:errors;type:bigint;default:0;comment:API错误次数"`
	Processed  int            `gorm:"column:processed;type:int;default:0;comment:成功处理的分类数"`
	Skipped    int            `gorm:"column:skipped;type:int;default:0;comment:跳过的分类数"`
	Fallbacks  int            `gorm:"column:fallbacks;type:int;default:0;comment:使用旧快照兜底的分类数"`
	Items      int            `gorm:"column:items;type:int;default:0;comment:写入快照的物品总数"`
	AbortCause *string        `gorm:"column:abort_cause;type:text;comment:中止原因"`
	Categories datatypes.JSON `gorm:"column:categories;type:jsonb;comment:各分类统计"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

func (IngestRun) TableName() string { return "ingest_runs" }
