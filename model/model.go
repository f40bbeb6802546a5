// Package model 定义锦标赛排序使用的二分类器。
//
// 分类器输入为一次有序比较的 14 维特征行（anchor 7 维 + contender 7 维），
// 输出 1 表示 anchor 胜出，0 表示落败；其他取值视为无效输出，不计入胜负。
package model

import (
	"context"
	"fmt"

	"github.com/rushteam/revrank/core"
)

// InputDim 是单行输入的维度。
const InputDim = 2 * core.FeatureDim

// Classifier 是成对比较的分类器抽象。
// 整个运行期间只读；是否可被并发调用通过 ConcurrencySafe 声明。
type Classifier interface {
	Name() string

	// Predict 对一批比较行打分，返回值与 rows 一一对应
	Predict(ctx context.Context, rows [][]float64) ([]int, error)
}

// ConcurrencySafe 由可被多个 goroutine 同时调用的分类器实现。
// 未实现该接口的分类器一律按非并发安全处理，调用方需要串行化。
type ConcurrencySafe interface {
	ConcurrencySafe() bool
}

// IsConcurrencySafe 报告分类器是否声明了并发安全。
func IsConcurrencySafe(c Classifier) bool {
	s, ok := c.(ConcurrencySafe)
	return ok && s.ConcurrencySafe()
}

// FuncClassifier 把普通函数适配为 Classifier，逐行调用。
type FuncClassifier struct {
	name string
	fn   func(row []float64) int
	safe bool
}

// NewFuncClassifier 创建函数式分类器；safe 声明 fn 是否可并发调用。
func NewFuncClassifier(name string, safe bool, fn func(row []float64) int) *FuncClassifier {
	return &FuncClassifier{name: name, fn: fn, safe: safe}
}

func (c *FuncClassifier) Name() string          { return c.name }
func (c *FuncClassifier) ConcurrencySafe() bool { return c.safe }

func (c *FuncClassifier) Predict(ctx context.Context, rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = c.fn(row)
	}
	return out, nil
}

func checkRows(rows [][]float64) error {
	for i, row := range rows {
		if len(row) != InputDim {
			return core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
				fmt.Sprintf("model: row %d has %d columns, want %d", i, len(row), InputDim))
		}
	}
	return nil
}
