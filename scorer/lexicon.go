package scorer

import (
	"math"
	"os"

	json "github.com/goccy/go-json"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/pkg/textutil"
)

// Lexicon 是情感词典。
//
// Valence 为词的情感倾向，取值 [-1, 1]；Subjective 为表达主观评价的词，
// Valence 中的词同样视为主观词。
type Lexicon struct {
	Valence    map[string]float64
	Subjective map[string]struct{}
}

// LoadLexicon 从 JSON 文件加载词典：{"valence": {...}, "subjective": [...]}
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleScorer, core.ErrorCodeInvalidConfig, "scorer: read lexicon "+path, err)
	}
	var raw struct {
		Valence    map[string]float64 `json:"valence"`
		Subjective []string           `json:"subjective"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, core.WrapDomainError(core.ModuleScorer, core.ErrorCodeInvalidConfig, "scorer: parse lexicon "+path, err)
	}
	return NewLexicon(raw.Valence, raw.Subjective), nil
}

// NewLexicon 创建词典，key 统一规范化。
func NewLexicon(valence map[string]float64, subjective []string) *Lexicon {
	lex := &Lexicon{
		Valence:    make(map[string]float64, len(valence)),
		Subjective: make(map[string]struct{}, len(subjective)),
	}
	for w, v := range valence {
		lex.Valence[textutil.Normalize(w)] = math.Max(-1, math.Min(1, v))
	}
	for _, w := range subjective {
		lex.Subjective[textutil.Normalize(w)] = struct{}{}
	}
	return lex
}

// PolarityOf 返回命中词情感倾向的均值，取值 [-1, 1]；无命中为 0。
func (l *Lexicon) PolarityOf(text string) float64 {
	var sum float64
	var n int
	for _, w := range textutil.Words(text) {
		if v, ok := l.Valence[w]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SubjectivityOf 返回主观词占比，取值 [0, 1]；空文本为 0。
func (l *Lexicon) SubjectivityOf(text string) float64 {
	words := textutil.Words(text)
	if len(words) == 0 {
		return 0
	}
	var n int
	for _, w := range words {
		_, opinion := l.Subjective[w]
		_, valenced := l.Valence[w]
		if opinion || valenced {
			n++
		}
	}
	return float64(n) / float64(len(words))
}

// Polarity 返回情感倾向打分器。
func (l *Lexicon) Polarity() Scorer { return NewFunc("polarity", l.PolarityOf) }

// Subjectivity 返回主观性打分器。
func (l *Lexicon) Subjectivity() Scorer { return NewFunc("subjectivity", l.SubjectivityOf) }

// Keyword 统计命中关键词占总词数的比例。
type Keyword struct {
	name     string
	keywords map[string]struct{}
}

func NewKeyword(name string, keywords []string) *Keyword {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[textutil.Normalize(k)] = struct{}{}
	}
	return &Keyword{name: name, keywords: set}
}

func (s *Keyword) Name() string { return s.name }

func (s *Keyword) Score(text string) float64 {
	words := textutil.Words(text)
	if len(words) == 0 {
		return 0
	}
	var n int
	for _, w := range words {
		if _, ok := s.keywords[w]; ok {
			n++
		}
	}
	return float64(n) / float64(len(words))
}
