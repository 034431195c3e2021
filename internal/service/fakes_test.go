package service

import (
	"context"
	"fmt"

	"AuctionSync/internal/merger"
	"AuctionSync/internal/model"
)

// scriptedFetcher 按分类返回预设的分页或错误
type scriptedFetcher struct {
	pages  map[string][]*model.Page
	errs   map[string]error
	calls  int64
	errors int64
	seen   []string
}

func (f *scriptedFetcher) FetchPage(_ context.Context, categoryID, cursor string) (*model.Page, error) {
	f.calls++
	f.seen = append(f.seen, categoryID+"|"+cursor)
	if err, ok := f.errs[categoryID]; ok {
		f.errors++
		return nil, err
	}
	pages := f.pages[categoryID]
	idx := 0
	if cursor != "" {
		_, _ = fmt.Sscanf(cursor, "p%d", &idx)
	}
	if idx >= len(pages) {
		return &model.Page{}, nil
	}
	return pages[idx], nil
}

func (f *scriptedFetcher) Calls() int64  { return f.calls }
func (f *scriptedFetcher) Errors() int64 { return f.errors }

// endlessFetcher 永远返回一条数据和下一页游标
type endlessFetcher struct{ calls int64 }

func (f *endlessFetcher) FetchPage(_ context.Context, _ string, _ string) (*model.Page, error) {
	f.calls++
	return &model.Page{
		Items:      []model.RawListing{{ItemName: "x"}},
		NextCursor: fmt.Sprintf("p%d", f.calls),
	}, nil
}

func (f *endlessFetcher) Calls() int64  { return f.calls }
func (f *endlessFetcher) Errors() int64 { return 0 }

// memoryStore 内存版快照存储，记录写入次数
type memoryStore struct {
	snapshots     map[string][]model.NormalizedItem
	enchants      map[string]model.EnchantCatalog
	sets          map[string]model.SetCatalog
	snapshotSaves int
	catalogSaves  int
	failSnapshot  map[string]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		snapshots:    map[string][]model.NormalizedItem{},
		enchants:     map[string]model.EnchantCatalog{},
		sets:         map[string]model.SetCatalog{},
		failSnapshot: map[string]error{},
	}
}

func (m *memoryStore) LoadCategorySnapshot(id string) ([]model.NormalizedItem, bool) {
	items, ok := m.snapshots[id]
	return items, ok
}

func (m *memoryStore) SaveCategorySnapshot(id string, items []model.NormalizedItem) error {
	if err := m.failSnapshot[id]; err != nil {
		return err
	}
	m.snapshotSaves++
	m.snapshots[id] = items
	return nil
}

func (m *memoryStore) SaveEnchants(partition string, incoming model.EnchantCatalog) (model.EnchantCatalog, error) {
	m.catalogSaves++
	m.enchants[partition] = merger.MergeEnchant(m.enchants[partition], incoming)
	return m.enchants[partition], nil
}

func (m *memoryStore) SaveSetCatalog(kind string, incoming model.SetCatalog) (model.SetCatalog, error) {
	m.catalogSaves++
	m.sets[kind] = merger.MergeSetCatalog(m.sets[kind], incoming)
	return m.sets[kind], nil
}

type memoryRuns struct {
	runs []*model.IngestRun
}

func (m *memoryRuns) SaveRun(_ context.Context, run *model.IngestRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryRuns) ListRuns(_ context.Context, limit int) ([]*model.IngestRun, error) {
	return m.runs, nil
}

type recordingReporter struct {
	enchants map[string]model.EnchantCatalog
	sets     map[string]model.SetCatalog
}

func (r *recordingReporter) Write(enchants map[string]model.EnchantCatalog, sets map[string]model.SetCatalog) (string, error) {
	r.enchants, r.sets = enchants, sets
	return "catalog.xlsx", nil
}

type recordingPublisher struct {
	dirs []string
}

func (p *recordingPublisher) PublishDir(_ context.Context, dir string) (int, error) {
	p.dirs = append(p.dirs, dir)
	return 1, nil
}
