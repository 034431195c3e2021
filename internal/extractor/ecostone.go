package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

const ecostoneMarker = "에코스톤"

// 공격력 증가 20 레벨
var ecostoneValueRe = regexp.MustCompile(`^(.+?)\s*(\d+)\s*레벨\s*$`)

// EcostoneFact 单条生态石觉醒能力观测结果
type EcostoneFact struct {
	Type  string
	Name  string
	Level int
}

// ParseEcostone 解析觉醒能力，类型取自物品显示名的前缀
func ParseEcostone(value, displayName string) (EcostoneFact, bool) {
	m := ecostoneValueRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return EcostoneFact{}, false
	}
	name := strings.TrimSpace(m[1])
	level, err := strconv.Atoi(m[2])
	if name == "" || err != nil {
		return EcostoneFact{}, false
	}
	typ := EcostoneType(displayName)
	if typ == "" {
		return EcostoneFact{}, false
	}
	return EcostoneFact{Type: typ, Name: name, Level: level}, true
}

// EcostoneType 显示名中 "에코스톤" 之前的部分；没有该标记时取第一个词
func EcostoneType(displayName string) string {
	dn := strings.TrimSpace(displayName)
	if i := strings.Index(dn, ecostoneMarker); i > 0 {
		if typ := strings.TrimSpace(dn[:i]); typ != "" {
			return typ
		}
	}
	if fields := strings.Fields(dn); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
