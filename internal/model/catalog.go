package model

import "time"

// 附魔分区
const (
	EnchantPrefix = "prefix"
	EnchantSuffix = "suffix"
)

// 集合类元数据种类
const (
	CatalogReforge  = "reforges"
	CatalogEcostone = "ecostones"
)

// EnchantEffect 附魔的单条效果；数值类效果带区间
type EnchantEffect struct {
	Text      string   `json:"text"`
	Value     *float64 `json:"value,omitempty"`
	IsPercent bool     `json:"isPercent,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

// EnchantEntry 附魔条目，按名称在 prefix/suffix 分区内唯一
type EnchantEntry struct {
	Name    string          `json:"name"`
	Rank    int             `json:"rank"`
	Effects []EnchantEffect `json:"effects"`
}

// EnchantCatalog 附魔名称 → 条目
type EnchantCatalog map[string]EnchantEntry

// SetCatalog 类型键 → 去重排序后的名称集合（精工选项/生态石能力共用）
type SetCatalog map[string][]string

// EnchantFile meta/enchants/{prefix,suffix}.json 的文件结构
type EnchantFile struct {
	Updated  time.Time      `json:"updated"`
	Enchants EnchantCatalog `json:"enchants"`
}

// ReforgeFile meta/reforges/reforges.json 的文件结构
type ReforgeFile struct {
	Updated  time.Time  `json:"updated"`
	Reforges SetCatalog `json:"reforges"`
}

// EcostoneFile meta/ecostones/abilities.json 的文件结构
type EcostoneFile struct {
	Updated   time.Time  `json:"updated"`
	Ecostones SetCatalog `json:"ecostones"`
}

// Float64Ptr 取地址的小工具（字面量无法直接取地址）
func Float64Ptr(v float64) *float64 {
	return &v
}
