// Package merger 合并新观测到的元数据与已落盘的元数据。
// 合并结果总是两者的超集：区间只会变宽，集合只会增长。
package merger

import (
	"sort"

	"AuctionSync/internal/model"
)

// MergeEnchant 合并附魔目录，不修改入参
// 同名条目以 incoming 的 rank 为准，效果按文本精确匹配合并区间
func MergeEnchant(existing, incoming model.EnchantCatalog) model.EnchantCatalog {
	out := make(model.EnchantCatalog, len(existing)+len(incoming))
	for name, entry := range existing {
		out[name] = cloneEntry(entry)
	}
	for name, in := range incoming {
		cur, ok := out[name]
		if !ok {
			out[name] = cloneEntry(in)
			continue
		}
		cur.Rank = in.Rank
		if cur.Name == "" {
			cur.Name = in.Name
		}
		cur.Effects = MergeEffects(cur.Effects, in.Effects)
		out[name] = cur
	}
	return out
}

// MergeEffects 按文本合并效果列表；已有文本放宽区间，新文本追加在末尾
func MergeEffects(existing, incoming []model.EnchantEffect) []model.EnchantEffect {
	out := make([]model.EnchantEffect, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))
	for _, e := range existing {
		if i, ok := index[e.Text]; ok {
			WidenEffect(&out[i], e)
			continue
		}
		index[e.Text] = len(out)
		out = append(out, cloneEffect(e))
	}
	for _, e := range incoming {
		if i, ok := index[e.Text]; ok {
			WidenEffect(&out[i], e)
			continue
		}
		index[e.Text] = len(out)
		out = append(out, cloneEffect(e))
	}
	return out
}

// WidenEffect 用 src 的区间放宽 dst：min 取较小值，max 取较大值
func WidenEffect(dst *model.EnchantEffect, src model.EnchantEffect) {
	srcMin, srcMax := src.Min, src.Max
	if srcMin == nil {
		srcMin = src.Value
	}
	if srcMax == nil {
		srcMax = src.Value
	}
	if srcMin != nil && (dst.Min == nil || *srcMin < *dst.Min) {
		dst.Min = model.Float64Ptr(*srcMin)
	}
	if srcMax != nil && (dst.Max == nil || *srcMax > *dst.Max) {
		dst.Max = model.Float64Ptr(*srcMax)
	}
	if dst.Value == nil && src.Value != nil {
		dst.Value = model.Float64Ptr(*src.Value)
	}
	dst.IsPercent = dst.IsPercent || src.IsPercent
}

// MergeSetCatalog 合并集合类目录（精工选项 / 生态石能力）：键取并集，值去重排序
func MergeSetCatalog(existing, incoming model.SetCatalog) model.SetCatalog {
	out := make(model.SetCatalog, len(existing)+len(incoming))
	for _, src := range []model.SetCatalog{existing, incoming} {
		for key, values := range src {
			out[key] = append(out[key], values...)
		}
	}
	for key, values := range out {
		out[key] = dedupSorted(values)
	}
	return out
}

func dedupSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func cloneEntry(e model.EnchantEntry) model.EnchantEntry {
	c := model.EnchantEntry{Name: e.Name, Rank: e.Rank}
	c.Effects = MergeEffects(nil, e.Effects)
	return c
}

func cloneEffect(e model.EnchantEffect) model.EnchantEffect {
	c := model.EnchantEffect{Text: e.Text, IsPercent: e.IsPercent}
	if e.Value != nil {
		c.Value = model.Float64Ptr(*e.Value)
	}
	if e.Min != nil {
		c.Min = model.Float64Ptr(*e.Min)
	}
	if e.Max != nil {
		c.Max = model.Float64Ptr(*e.Max)
	}
	return c
}
