package scorer

import (
	"strings"

	"github.com/jonreiter/govader"
)

// Vader 是俚语与表情符号敏感的复合情感得分，取值 [-1, 1]。
//
// 基于 govader 的 VADER 词典与规则（否定、程度副词、大写强调、"but" 转折），
// 再并入评论场景常见的俚语词条。并入的词条覆盖 VADER 原有取值。
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader 创建打分器；slang 为额外词条，取值使用 VADER 量纲（约 [-4, 4]）。
func NewVader(slang map[string]float64) *Vader {
	a := govader.NewSentimentIntensityAnalyzer()
	for term, v := range slang {
		a.Lexicon[strings.ToLower(term)] = v
	}
	return &Vader{analyzer: a}
}

func (s *Vader) Name() string { return "slang_sentiment" }

// Score 返回 VADER compound 得分。分析器构建后只读，可并发调用。
func (s *Vader) Score(text string) float64 {
	return s.analyzer.PolarityScores(text).Compound
}
