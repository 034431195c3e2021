package service

import (
	"testing"
	"time"

	"AuctionSync/internal/extractor"
	"AuctionSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enchantOpt(sub, value, desc string) model.ItemOption {
	return model.ItemOption{Type: model.OptionTypeEnchant, SubType: sub, Value: value, Desc: desc}
}

func TestProcessNormalizesAndFlags(t *testing.T) {
	run := NewRunContext(time.Now())
	in := []model.RawListing{
		{
			ItemName: "롱 소드", DisplayName: "신속한 롱 소드", Count: 1, PricePerUnit: 25000,
			ExpireAt: "2024-05-02T10:00:00.000Z",
			Options: []model.ItemOption{
				enchantOpt("접두", "신속한 (랭크 8)", "공격 속도 1 증가"),
				{Type: model.OptionTypeReforge, Value: "최대 공격력 (15레벨:30 증가)"},
			},
		},
		{
			ItemName: "화염 에코스톤", DisplayName: "불 에코스톤", Count: 1, PricePerUnit: 900000,
			Options: []model.ItemOption{{Type: model.OptionTypeEcostone, Value: "화염 강화 20 레벨"}},
		},
		{ItemName: "포션", DisplayName: "포션", Count: 10, PricePerUnit: 300},
	}

	items := NewProcessor().Process(in, "한손검", run)
	require.Len(t, items, 3)

	assert.Equal(t, model.NormalizedItem{
		Name: "롱 소드", DisplayName: "신속한 롱 소드", Price: 25000, Count: 1,
		ExpireAt: "2024-05-02T10:00:00.000Z", HasEnchant: true, HasReforge: true,
	}, items[0])
	assert.True(t, items[1].HasEcostone)
	assert.False(t, items[2].HasEnchant || items[2].HasReforge || items[2].HasEcostone)

	entry, ok := run.Enchants[model.EnchantPrefix]["신속한"]
	require.True(t, ok)
	assert.Equal(t, 8, entry.Rank)
	require.Len(t, entry.Effects, 1)
	assert.Equal(t, 1.0, *entry.Effects[0].Value)

	assert.Equal(t, []string{"최대 공격력"}, run.Reforges["한손검"])
	assert.Equal(t, []string{"화염 강화"}, run.Ecostones["불"])
}

func TestProcessSkipsUnparsableOptionsButKeepsFlags(t *testing.T) {
	run := NewRunContext(time.Now())
	in := []model.RawListing{{
		ItemName: "x",
		Options: []model.ItemOption{
			enchantOpt("", "이름만", ""),
			{Type: model.OptionTypeReforge, Value: "괄호 없음"},
			{Type: model.OptionTypeEcostone, Value: "레벨 없음"},
		},
	}}
	items := NewProcessor().Process(in, "검", run)
	require.Len(t, items, 1)
	assert.True(t, items[0].HasEnchant)
	assert.True(t, items[0].HasReforge)
	assert.True(t, items[0].HasEcostone)
	assert.Empty(t, run.Enchants[model.EnchantPrefix])
	assert.Empty(t, run.Enchants[model.EnchantSuffix])
	assert.Empty(t, run.Reforges)
	assert.Empty(t, run.Ecostones)
}

func TestProcessEmptyInput(t *testing.T) {
	items := NewProcessor().Process(nil, "검", NewRunContext(time.Now()))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestAddEnchantWithinRun(t *testing.T) {
	run := NewRunContext(time.Now())
	p := NewProcessor()
	listing := func(value, desc string) model.RawListing {
		return model.RawListing{ItemName: "x", Options: []model.ItemOption{enchantOpt("접미", value, desc)}}
	}

	p.Process([]model.RawListing{
		listing("오피서의 (랭크 6)", "공격력 10% 증가"),
		listing("오피서의 (랭크 6)", "공격력 10% 증가, 방어 5 감소"),
		listing("오피서의 (랭크 5)", "공격력 15% 증가"),
	}, "검", run)

	entry := run.Enchants[model.EnchantSuffix]["오피서의"]
	assert.Equal(t, 5, entry.Rank)
	require.Len(t, entry.Effects, 3)
	assert.Equal(t, "공격력 10% 증가", entry.Effects[0].Text)
	assert.Equal(t, 10.0, *entry.Effects[0].Min)
	assert.Equal(t, 10.0, *entry.Effects[0].Max)
	assert.True(t, entry.Effects[0].IsPercent)
	assert.Equal(t, "방어 5 감소", entry.Effects[1].Text)
	assert.Equal(t, "공격력 15% 증가", entry.Effects[2].Text)
}

func TestAddSetDeduplicates(t *testing.T) {
	run := NewRunContext(time.Now())
	run.AddReforge(reforge("검", "크리티컬"))
	run.AddReforge(reforge("검", "크리티컬"))
	run.AddReforge(reforge("검", "밸런스"))
	assert.Equal(t, []string{"크리티컬", "밸런스"}, run.Reforges["검"])
}

func TestRecordCategoryCounters(t *testing.T) {
	run := NewRunContext(time.Now())
	run.RecordCategory(CategoryStat{ID: "a", State: CategoryOK, Items: 3})
	run.RecordCategory(CategoryStat{ID: "b", State: CategoryFallback, Items: 2})
	run.RecordCategory(CategoryStat{ID: "c", State: CategorySkipped})
	assert.Equal(t, 2, run.Processed)
	assert.Equal(t, 1, run.Fallbacks)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 3, run.Items)
	assert.Equal(t, 2, run.Restored)
	assert.Len(t, run.Categories, 3)
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, StageInit, run.Stage)
}

func TestAbsorbFoldsScratchFacts(t *testing.T) {
	run := NewRunContext(time.Now())
	run.AddEnchant(extractor.EnchantFact{
		Partition: model.EnchantPrefix,
		Name:      "신속한",
		Rank:      8,
		Effects:   []model.EnchantEffect{{Text: "공격 속도 # 증가", Min: model.Float64Ptr(1), Max: model.Float64Ptr(1)}},
	})
	run.AddReforge(reforge("검", "크리티컬"))

	scratch := run.Scratch()
	assert.Equal(t, run.RunID, scratch.RunID)
	scratch.AddEnchant(extractor.EnchantFact{
		Partition: model.EnchantPrefix,
		Name:      "신속한",
		Rank:      7,
		Effects:   []model.EnchantEffect{{Text: "공격 속도 # 증가", Min: model.Float64Ptr(3), Max: model.Float64Ptr(3)}},
	})
	scratch.AddReforge(reforge("검", "크리티컬"))
	scratch.AddReforge(reforge("검", "최대 공격력"))
	scratch.AddEcostone(extractor.EcostoneFact{Type: "1", Name: "체력"})

	// 并入前本次运行不受影响
	assert.Equal(t, []string{"크리티컬"}, run.Reforges["검"])
	assert.Empty(t, run.Ecostones)

	run.Absorb(scratch)
	entry := run.Enchants[model.EnchantPrefix]["신속한"]
	assert.Equal(t, 7, entry.Rank)
	require.Len(t, entry.Effects, 1)
	assert.Equal(t, 1.0, *entry.Effects[0].Min)
	assert.Equal(t, 3.0, *entry.Effects[0].Max)
	assert.Equal(t, []string{"크리티컬", "최대 공격력"}, run.Reforges["검"])
	assert.Equal(t, []string{"체력"}, run.Ecostones["1"])
}

func reforge(typ, name string) extractor.ReforgeFact {
	return extractor.ReforgeFact{Type: typ, Name: name}
}
