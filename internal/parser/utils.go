package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	keySeparatorRe = regexp.MustCompile(`[\s\-/]+`)

	lowerCaser = cases.Lower(language.Und)
	titleCaser = cases.Title(language.Und)
)

// NormalizeColumnName 规范化列名，去除换行并压缩空白
func NormalizeColumnName(name string) string {
	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.ReplaceAll(name, "\t", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
}

// HeaderKey 将表头转为记录键名
//
// "Accommodation Name" → "accommodationName"；"accommodation_name"、"accommodationName" 保持不变；
// 全大写单词整体小写。
func HeaderKey(header string) string {
	header = NormalizeColumnName(header)
	if header == "" {
		return ""
	}

	tokens := keySeparatorRe.Split(header, -1)
	var b strings.Builder
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(lowerFirst(tok))
			continue
		}
		b.WriteString(titleCaser.String(tok))
	}
	return b.String()
}

func lowerFirst(tok string) string {
	if !hasLower(tok) {
		return lowerCaser.String(tok)
	}
	runes := []rune(tok)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func hasLower(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

// ContainsAny 检查字符串是否包含任意一个关键词（不区分大小写）
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
