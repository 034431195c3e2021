// Package extractor 从选项文本中提取元数据。
// 所有函数都是纯函数；不匹配是正常结果（返回 false），不是错误。
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"AuctionSync/internal/model"
)

var (
	// 오피서의 (랭크 5)
	enchantValueRe = regexp.MustCompile(`^(.+?)\s*\(\s*랭크\s*(\d+)\s*\)\s*$`)
	// 공격력 10% 증가 / 최대 생명력 20 회복
	effectNumberRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(%?)\s*(증가|감소|회복)`)
)

// EnchantFact 单条附魔观测结果
type EnchantFact struct {
	Partition string // model.EnchantPrefix / model.EnchantSuffix
	Name      string
	Rank      int
	Effects   []model.EnchantEffect
}

// ParseEnchant 解析附魔选项；subType 为 접두/접미，desc 为逗号分隔的效果描述
func ParseEnchant(value, subType, desc string) (EnchantFact, bool) {
	partition, ok := enchantPartition(subType)
	if !ok {
		return EnchantFact{}, false
	}
	m := enchantValueRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return EnchantFact{}, false
	}
	name := strings.TrimSpace(m[1])
	rank, err := strconv.Atoi(m[2])
	if name == "" || err != nil {
		return EnchantFact{}, false
	}

	fact := EnchantFact{Partition: partition, Name: name, Rank: rank}
	for _, phrase := range SplitEffects(desc) {
		fact.Effects = append(fact.Effects, ParseEffect(phrase))
	}
	return fact, true
}

// SplitEffects 按逗号拆分效果描述，去掉空白项
func SplitEffects(desc string) []string {
	var out []string
	for _, p := range strings.Split(desc, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseEffect 把效果短语转为 EnchantEffect；带数值的短语附带 value/min/max
func ParseEffect(phrase string) model.EnchantEffect {
	effect := model.EnchantEffect{Text: phrase}
	m := effectNumberRe.FindStringSubmatch(phrase)
	if m == nil {
		return effect
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return effect
	}
	effect.Value = model.Float64Ptr(v)
	effect.IsPercent = m[2] == "%"
	effect.Min = model.Float64Ptr(v)
	effect.Max = model.Float64Ptr(v)
	return effect
}

func enchantPartition(subType string) (string, bool) {
	switch strings.TrimSpace(subType) {
	case "접두", model.EnchantPrefix:
		return model.EnchantPrefix, true
	case "접미", model.EnchantSuffix:
		return model.EnchantSuffix, true
	}
	return "", false
}
