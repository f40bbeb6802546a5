package detector

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/rushteam/revrank/core"
)

// GibberishModelFile 是乱码模型在资源目录下的文件名。
const GibberishModelFile = "gib_model.json"

// GibberishModel 是字符二元组马尔可夫模型。
//
// LogProb[i][j] 为字母表第 i 个字符之后出现第 j 个字符的对数概率；
// 文本的得分为所有相邻字符转移对数概率均值的指数，低于 Threshold 判为乱码。
type GibberishModel struct {
	Alphabet  string      `json:"alphabet"`
	LogProb   [][]float64 `json:"log_prob"`
	Threshold float64     `json:"threshold"`

	index map[rune]int
}

// LoadGibberishModel 从资源目录加载模型（prefix/gib_model.json）。
func LoadGibberishModel(prefix string) (*GibberishModel, error) {
	path := filepath.Join(prefix, GibberishModelFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDetector, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("detector: read gibberish model %s", path), err)
	}
	var m GibberishModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, core.WrapDomainError(core.ModuleDetector, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("detector: parse gibberish model %s", path), err)
	}
	if err := m.init(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *GibberishModel) init() error {
	runes := []rune(m.Alphabet)
	if len(runes) == 0 {
		return core.ConfigError("detector: gibberish model has empty alphabet")
	}
	if len(m.LogProb) != len(runes) {
		return core.ConfigError("detector: gibberish model has %d rows, alphabet has %d", len(m.LogProb), len(runes))
	}
	for i, row := range m.LogProb {
		if len(row) != len(runes) {
			return core.ConfigError("detector: gibberish model row %d has %d columns, want %d", i, len(row), len(runes))
		}
	}
	m.index = make(map[rune]int, len(runes))
	for i, r := range runes {
		m.index[r] = i
	}
	return nil
}

// Score 返回文本的平均转移概率；可比较的转移少于一个时 ok 为 false。
func (m *GibberishModel) Score(text string) (score float64, ok bool) {
	prev := -1
	var sum float64
	var n int
	for _, r := range strings.ToLower(text) {
		idx, known := m.index[r]
		if !known {
			continue
		}
		if prev >= 0 {
			sum += m.LogProb[prev][idx]
			n++
		}
		prev = idx
	}
	if n == 0 {
		return 0, false
	}
	return math.Exp(sum / float64(n)), true
}

// Gibberish 是乱码检测器。
type Gibberish struct {
	Model     *GibberishModel
	Threshold float64
}

// NewGibberish 加载模型并创建检测器；threshold > 0 时覆盖模型自带阈值。
func NewGibberish(prefix string, threshold float64) (*Gibberish, error) {
	m, err := LoadGibberishModel(prefix)
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = m.Threshold
	}
	return &Gibberish{Model: m, Threshold: threshold}, nil
}

func (d *Gibberish) Name() string { return CategoryGibberish }

// Detect 字母表之外的字符不参与打分（非拉丁文本交给语言检测器处理）。
func (d *Gibberish) Detect(_ context.Context, text string) (bool, error) {
	score, ok := d.Model.Score(text)
	if !ok {
		return false, nil
	}
	return score < d.Threshold, nil
}
