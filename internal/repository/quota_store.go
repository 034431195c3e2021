package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"AuctionSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// ErrDailyQuotaExceeded 当日调用次数已达上限
var ErrDailyQuotaExceeded = errors.New("已达到当日 API 调用上限")

const (
	quotaDateLayout = "2006-01-02"
	quotaKeepDays   = 7
)

// QuotaStore 以 JSON 文件记录每日（UTC）调用次数
// 文件内容形如 {"2024-05-01": 1234}，只保留最近几天
// 不支持多个进程同时写入
type QuotaStore struct {
	path   string
	limit  int
	logger *logrus.Logger
	counts map[string]int
}

// NewQuotaStore 创建配额计数器；limit<=0 表示不限制
func NewQuotaStore(path string, limit int, logger *logrus.Logger) interfaces.QuotaCounter {
	return newQuotaStore(path, limit, logger)
}

func newQuotaStore(path string, limit int, logger *logrus.Logger) *QuotaStore {
	return &QuotaStore{path: path, limit: limit, logger: logger}
}

// Reserve 预占一次调用并立即落盘，返回当日已用次数
// 配额文件存在但读不出来时直接报错，不会从零重新计数
func (q *QuotaStore) Reserve(now time.Time) (int, error) {
	if err := q.ensureLoaded(); err != nil {
		return 0, err
	}
	day := now.UTC().Format(quotaDateLayout)
	used := q.counts[day]
	if q.limit > 0 && used >= q.limit {
		return used, fmt.Errorf("%w: %s 已调用 %d 次（上限 %d）", ErrDailyQuotaExceeded, day, used, q.limit)
	}
	q.counts[day] = used + 1
	q.prune(day)
	if err := writeJSONAtomic(q.path, q.counts); err != nil {
		return used + 1, fmt.Errorf("写入配额文件失败: %w", err)
	}
	return used + 1, nil
}

// Used 返回指定日期（UTC）的已用次数
func (q *QuotaStore) Used(now time.Time) (int, error) {
	if err := q.ensureLoaded(); err != nil {
		return 0, err
	}
	return q.counts[now.UTC().Format(quotaDateLayout)], nil
}

func (q *QuotaStore) ensureLoaded() error {
	if q.counts != nil {
		return nil
	}
	counts, err := q.load()
	if err != nil {
		q.logger.WithError(err).WithField("path", q.path).Error("配额文件不可用")
		return err
	}
	q.counts = counts
	return nil
}

// load 只有文件不存在时才视为首次运行
func (q *QuotaStore) load() (map[string]int, error) {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]int{}, nil
		}
		return nil, fmt.Errorf("读取配额文件失败: %w", err)
	}
	counts := map[string]int{}
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("解析配额文件失败: %w", err)
	}
	if counts == nil {
		counts = map[string]int{}
	}
	return counts, nil
}

// prune 只保留最近 quotaKeepDays 个日期
func (q *QuotaStore) prune(today string) {
	if len(q.counts) <= quotaKeepDays {
		return
	}
	days := make([]string, 0, len(q.counts))
	for d := range q.counts {
		if d != today {
			days = append(days, d)
		}
	}
	sort.Strings(days)
	for len(days) > quotaKeepDays-1 {
		delete(q.counts, days[0])
		days = days[1:]
	}
}
