// Package textutil 收拢各阶段共用的文本切分与规范化规则。
//
// 两套切分口径：
//   - Tokens：按空白切分原文（评论长度、词表、覆盖率均按此口径）
//   - Words：NFKC 规范化 + 大小写折叠后按非字母数字切分（检测器与打分器的词典匹配口径）
package textutil

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Tokens 按空白切分原文，不做任何规范化。
func Tokens(text string) []string {
	return strings.Fields(text)
}

// LowerTokens 小写后按空白切分。
func LowerTokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Distinct 返回去重后的 token 集合。
func Distinct(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Normalize 做 NFKC 规范化、大小写折叠与空白压缩。
func Normalize(text string) string {
	s := norm.NFKC.String(text)
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Words 返回规范化后的词序列，标点与符号作为分隔符（组合附标保留，保证天城文完整）。
func Words(text string) []string {
	return strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r) && !unicode.Is(unicode.Mc, r)
	})
}

// Key 返回规范化文本的 SHA-1 十六进制摘要，用作外部存储中的评论实体 key。
func Key(text string) string {
	h := sha1.Sum([]byte(Normalize(text)))
	return hex.EncodeToString(h[:])
}
