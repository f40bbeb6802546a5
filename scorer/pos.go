package scorer

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/jdkato/prose/v2"

	"github.com/rushteam/revrank/core"
)

// POSNouns 是名词得分的批量打分器：词性标注为名词（NN、NNS、NNP、NNPS）的词
// 占全部词的比例，标点不计入。
//
// 标注使用 prose 内置的英文感知机模型，模型在首次打分时加载一次，之后只读共享。
type POSNouns struct {
	once  sync.Once
	model *prose.Model
	err   error
}

func NewPOSNouns() *POSNouns { return &POSNouns{} }

func (s *POSNouns) Name() string { return "noun_score" }

func (s *POSNouns) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := s.ratio(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *POSNouns) load() {
	doc, err := prose.NewDocument("", prose.WithSegmentation(false), prose.WithExtraction(false))
	if err != nil {
		s.err = core.WrapDomainError(core.ModuleScorer, core.ErrorCodeInternalError, "scorer: load pos tagger", err)
		return
	}
	s.model = doc.Model
}

func (s *POSNouns) ratio(text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
		prose.UsingModel(s.model))
	if err != nil {
		return 0, core.WrapDomainError(core.ModuleScorer, core.ErrorCodeInternalError, "scorer: pos tagging", err)
	}
	var words, nouns int
	for _, tok := range doc.Tokens() {
		if !strings.ContainsFunc(tok.Text, isWordRune) {
			continue
		}
		words++
		if strings.HasPrefix(tok.Tag, "NN") {
			nouns++
		}
	}
	if words == 0 {
		return 0, nil
	}
	return float64(nouns) / float64(words), nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
