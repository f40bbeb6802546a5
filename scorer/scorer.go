// Package scorer 提供特征抽取使用的文本打分器。
//
// 单条打分器（Scorer）对一条评论独立打分；批量打分器（BatchScorer）
// 以分组为单位一次调用，适合远程服务或需要整组上下文的模型。
package scorer

import (
	"context"

	"github.com/rushteam/revrank/core"
)

// Scorer 对单条文本打分，必须是纯函数、可并发调用。
type Scorer interface {
	Name() string
	Score(text string) float64
}

// BatchScorer 对一组文本批量打分，返回值与输入一一对应。
type BatchScorer interface {
	Name() string
	ScoreBatch(ctx context.Context, texts []string) ([]float64, error)
}

// Set 是特征抽取所需的全部打分器。
type Set struct {
	Polarity     Scorer
	Subjectivity Scorer
	Service      Scorer
	Slang        Scorer
	Noun         BatchScorer
}

// Validate 检查打分器是否齐全。
func (s *Set) Validate() error {
	switch {
	case s == nil:
		return core.ConfigError("scorer: nil scorer set")
	case s.Polarity == nil:
		return core.ConfigError("scorer: polarity scorer is required")
	case s.Subjectivity == nil:
		return core.ConfigError("scorer: subjectivity scorer is required")
	case s.Service == nil:
		return core.ConfigError("scorer: service relevance scorer is required")
	case s.Slang == nil:
		return core.ConfigError("scorer: slang sentiment scorer is required")
	case s.Noun == nil:
		return core.ConfigError("scorer: noun batch scorer is required")
	}
	return nil
}

// DefaultSet 返回默认打分器组：内置词典、VADER 俚语情感、prose 词性标注。
func DefaultSet() *Set {
	lex := DefaultLexicon()
	return &Set{
		Polarity:     lex.Polarity(),
		Subjectivity: lex.Subjectivity(),
		Service:      NewKeyword("service_relevance", DefaultServiceKeywords),
		Slang:        NewVader(DefaultSlangLexicon),
		Noun:         NewPOSNouns(),
	}
}

// Func 把普通函数适配为 Scorer。
type Func struct {
	name string
	fn   func(text string) float64
}

func NewFunc(name string, fn func(text string) float64) *Func {
	return &Func{name: name, fn: fn}
}

func (s *Func) Name() string              { return s.name }
func (s *Func) Score(text string) float64 { return s.fn(text) }

// BatchFunc 把普通函数适配为 BatchScorer。
type BatchFunc struct {
	name string
	fn   func(ctx context.Context, texts []string) ([]float64, error)
}

func NewBatchFunc(name string, fn func(ctx context.Context, texts []string) ([]float64, error)) *BatchFunc {
	return &BatchFunc{name: name, fn: fn}
}

func (s *BatchFunc) Name() string { return s.name }

func (s *BatchFunc) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	return s.fn(ctx, texts)
}

// PerItem 把单条打分器提升为批量打分器。
func PerItem(s Scorer) BatchScorer {
	return NewBatchFunc(s.Name(), func(ctx context.Context, texts []string) ([]float64, error) {
		out := make([]float64, len(texts))
		for i, t := range texts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = s.Score(t)
		}
		return out, nil
	})
}
