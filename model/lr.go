package model

import (
	"context"
	"fmt"
	"math"
	"os"

	json "github.com/goccy/go-json"

	"github.com/rushteam/revrank/core"
)

// DefaultThreshold 是线性分类器的判定阈值。
const DefaultThreshold = 0.5

// LinearClassifier 实现了逻辑回归 (Logistic Regression) 二分类器。
//
// 预测原理：
// 1. 可选标准化: x_i = (x_i - Mean_i) / Std_i
// 2. 线性加权求和: z = Bias + sum(Weight_i * x_i)
// 3. Sigmoid 变换: P = 1 / (1 + exp(-z))
//
// P >= Threshold 输出 1（anchor 胜出），否则输出 0。
type LinearClassifier struct {
	Bias      float64
	Weights   [InputDim]float64
	Threshold float64

	Mean []float64 // 长度为 0 或 InputDim
	Std  []float64
}

type linearFile struct {
	Bias      float64   `json:"bias"`
	Weights   []float64 `json:"weights"`
	Threshold float64   `json:"threshold"`
	Mean      []float64 `json:"mean"`
	Std       []float64 `json:"std"`
}

// LoadLinear 从 JSON 文件加载模型：
//
//	{"bias": -0.2, "weights": [14 个系数], "threshold": 0.5, "mean": [...], "std": [...]}
//
// mean/std 可省略；threshold 缺省为 0.5。
func LoadLinear(path string) (*LinearClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeInvalidConfig, "model: read "+path, err)
	}
	var raw linearFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeInvalidConfig, "model: parse "+path, err)
	}
	if len(raw.Weights) != InputDim {
		return nil, core.ConfigError("model: %s has %d weights, want %d", path, len(raw.Weights), InputDim)
	}
	if len(raw.Mean) != len(raw.Std) || (len(raw.Mean) != 0 && len(raw.Mean) != InputDim) {
		return nil, core.ConfigError("model: %s mean/std must both have %d entries", path, InputDim)
	}
	for i, s := range raw.Std {
		if s == 0 {
			return nil, core.ConfigError("model: %s std[%d] is zero", path, i)
		}
	}

	m := &LinearClassifier{Bias: raw.Bias, Threshold: raw.Threshold, Mean: raw.Mean, Std: raw.Std}
	copy(m.Weights[:], raw.Weights)
	if m.Threshold <= 0 {
		m.Threshold = DefaultThreshold
	}
	return m, nil
}

func (m *LinearClassifier) Name() string          { return "linear" }
func (m *LinearClassifier) ConcurrencySafe() bool { return true }

// Probability 返回 anchor 胜出的概率。
func (m *LinearClassifier) Probability(row []float64) float64 {
	z := m.Bias
	for i, x := range row {
		if len(m.Mean) == InputDim {
			x = (x - m.Mean[i]) / m.Std[i]
		}
		z += m.Weights[i] * x
	}
	return 1 / (1 + math.Exp(-z))
}

func (m *LinearClassifier) Predict(ctx context.Context, rows [][]float64) ([]int, error) {
	if err := checkRows(rows); err != nil {
		return nil, err
	}
	out := make([]int, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m.Probability(row) >= m.Threshold {
			out[i] = 1
		}
	}
	return out, nil
}

func (m *LinearClassifier) String() string {
	return fmt.Sprintf("linear(bias=%g, threshold=%g)", m.Bias, m.Threshold)
}
