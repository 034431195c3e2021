package service

import (
	"time"

	"AuctionSync/internal/extractor"
	"AuctionSync/internal/merger"
	"AuctionSync/internal/model"

	"github.com/google/uuid"
)

// Stage 运行阶段
type Stage string

const (
	StageInit            Stage = "INIT"
	StageProcessCategory Stage = "PROCESS_CATEGORY"
	StageMergeMetadata   Stage = "MERGE_METADATA"
	StageDone            Stage = "DONE"
	StageAborted         Stage = "ABORTED"
)

// 分类处理结果
const (
	CategoryOK       = "ok"
	CategoryFallback = "fallback"
	CategorySkipped  = "skipped"
)

// CategoryStat 单个分类的处理统计
type CategoryStat struct {
	ID    string `json:"id"`
	Group string `json:"group,omitempty"`
	State string `json:"state"`
	Items int    `json:"items"`
	Pages int    `json:"pages"`
	Error string `json:"error,omitempty"`
}

// RunContext 一次运行内的累积状态，每次运行新建，不跨运行共享
type RunContext struct {
	RunID     string
	StartedAt time.Time
	Stage     Stage

	Enchants  map[string]model.EnchantCatalog // prefix/suffix → 本次观测到的附魔
	Reforges  model.SetCatalog
	Ecostones model.SetCatalog

	Processed  int
	Skipped    int
	Fallbacks  int
	Items      int // 本次写入快照的物品数
	Restored   int // 兜底分类沿用旧快照的物品数
	Categories []CategoryStat

	seenReforge  map[string]map[string]struct{}
	seenEcostone map[string]map[string]struct{}
}

// NewRunContext 创建运行上下文
func NewRunContext(now time.Time) *RunContext {
	run := newFactBuffer()
	run.RunID = uuid.NewString()
	run.StartedAt = now
	run.Stage = StageInit
	return run
}

func newFactBuffer() *RunContext {
	return &RunContext{
		Enchants: map[string]model.EnchantCatalog{
			model.EnchantPrefix: {},
			model.EnchantSuffix: {},
		},
		Reforges:     model.SetCatalog{},
		Ecostones:    model.SetCatalog{},
		seenReforge:  map[string]map[string]struct{}{},
		seenEcostone: map[string]map[string]struct{}{},
	}
}

// Scratch 单个分类的临时累积区，确认落盘后再用 Absorb 并入本次运行
func (r *RunContext) Scratch() *RunContext {
	scratch := newFactBuffer()
	scratch.RunID = r.RunID
	scratch.StartedAt = r.StartedAt
	scratch.Stage = r.Stage
	return scratch
}

// Absorb 把临时累积区的附魔/精工/生态石观测并入当前运行，合并规则与逐条记录一致
func (r *RunContext) Absorb(other *RunContext) {
	for _, partition := range []string{model.EnchantPrefix, model.EnchantSuffix} {
		for name, entry := range other.Enchants[partition] {
			r.AddEnchant(extractor.EnchantFact{
				Partition: partition,
				Name:      name,
				Rank:      entry.Rank,
				Effects:   entry.Effects,
			})
		}
	}
	for typ, names := range other.Reforges {
		for _, name := range names {
			addToSet(r.Reforges, r.seenReforge, typ, name)
		}
	}
	for typ, names := range other.Ecostones {
		for _, name := range names {
			addToSet(r.Ecostones, r.seenEcostone, typ, name)
		}
	}
}

// AddEnchant 记录一次附魔观测；同名条目内相同文本的效果放宽区间，新文本追加
func (r *RunContext) AddEnchant(fact extractor.EnchantFact) {
	catalog, ok := r.Enchants[fact.Partition]
	if !ok {
		catalog = model.EnchantCatalog{}
		r.Enchants[fact.Partition] = catalog
	}

	entry, ok := catalog[fact.Name]
	if !ok {
		entry = model.EnchantEntry{Name: fact.Name, Effects: []model.EnchantEffect{}}
	}
	entry.Rank = fact.Rank
	for _, eff := range fact.Effects {
		idx := -1
		for i := range entry.Effects {
			if entry.Effects[i].Text == eff.Text {
				idx = i
				break
			}
		}
		if idx >= 0 {
			merger.WidenEffect(&entry.Effects[idx], eff)
			continue
		}
		entry.Effects = append(entry.Effects, eff)
	}
	catalog[fact.Name] = entry
}

// AddReforge 记录精工选项名
func (r *RunContext) AddReforge(fact extractor.ReforgeFact) {
	addToSet(r.Reforges, r.seenReforge, fact.Type, fact.Name)
}

// AddEcostone 记录生态石觉醒能力名
func (r *RunContext) AddEcostone(fact extractor.EcostoneFact) {
	addToSet(r.Ecostones, r.seenEcostone, fact.Type, fact.Name)
}

func addToSet(set model.SetCatalog, seen map[string]map[string]struct{}, typ, name string) {
	names, ok := seen[typ]
	if !ok {
		names = map[string]struct{}{}
		seen[typ] = names
	}
	if _, dup := names[name]; dup {
		return
	}
	names[name] = struct{}{}
	set[typ] = append(set[typ], name)
}

// RecordCategory 记录分类结果并更新计数
func (r *RunContext) RecordCategory(stat CategoryStat) {
	switch stat.State {
	case CategoryOK:
		r.Processed++
		r.Items += stat.Items
	case CategoryFallback:
		r.Processed++
		r.Fallbacks++
		r.Restored += stat.Items
	case CategorySkipped:
		r.Skipped++
	}
	r.Categories = append(r.Categories, stat)
}
