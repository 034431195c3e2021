package extractor

import (
	"regexp"
	"strings"
)

// 스매시 대미지 (15레벨:150 % 증가)
var reforgeValueRe = regexp.MustCompile(`^([^(]+)\((.+)\)\s*$`)

// ReforgeFact 单条精工选项观测结果
type ReforgeFact struct {
	Type string // 由分类 ID 推导的粗粒度类型
	Name string
}

// ParseReforge 解析精工选项，取第一个括号之前的选项名
func ParseReforge(value, categoryID string) (ReforgeFact, bool) {
	m := reforgeValueRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return ReforgeFact{}, false
	}
	name := strings.TrimSpace(m[1])
	if name == "" || strings.TrimSpace(m[2]) == "" {
		return ReforgeFact{}, false
	}
	typ := ReforgeType(categoryID)
	if typ == "" {
		return ReforgeFact{}, false
	}
	return ReforgeFact{Type: typ, Name: name}, true
}

// ReforgeType 分类 ID 中第一个分隔符（/ _ -）之前的部分；没有分隔符时返回整个 ID
func ReforgeType(categoryID string) string {
	id := strings.TrimSpace(categoryID)
	if i := strings.IndexAny(id, "/_-"); i >= 0 {
		return strings.TrimSpace(id[:i])
	}
	return id
}
