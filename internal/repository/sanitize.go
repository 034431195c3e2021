package repository

import (
	"strings"
	"unicode"
)

// SanitizeKey 把分类/目录键转换为安全的文件名
// 不安全字符（<>:"/\|?*、控制字符、空白）替换为 '_'，并去掉首尾的 '.' 和 '_'。
// 映射是确定性的；不同原始键可能映射到同一文件名（如 "a/b" 与 "a b"），这是已知限制。
func SanitizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r), unicode.IsControl(r), unicode.IsSpace(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "_"
	}
	return out
}
