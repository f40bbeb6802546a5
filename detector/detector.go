// Package detector 定义质量过滤的检测器契约及内置实现。
//
// 每个检测器只负责一个失败类别（语言、乱码、脏话、竞品品牌……），
// 过滤器按类别统计命中数，因此检测器的 Name 即类别名。
package detector

import (
	"context"
	"fmt"
)

// 内置类别名。
const (
	CategoryLanguage   = "language"
	CategoryGibberish  = "gibberish"
	CategorySwear      = "swear"
	CategoryCompetitor = "competitor_brand"
)

// Detector 是检测器的抽象接口：判断一段文本是否属于某个失败类别。
//
// 约定：
//   - 无状态、可重入，可被多个 goroutine 同时调用
//   - 返回 true 表示命中（应丢弃）
//   - 返回 error 表示无法给出结论；如何处理由调用方（过滤器）决定
type Detector interface {
	// Name 返回检测器名称（即过滤类别名）
	Name() string

	// Detect 检测文本是否命中
	Detect(ctx context.Context, text string) (bool, error)
}

// Func 把普通函数适配为 Detector。
type Func struct {
	name string
	fn   func(text string) (bool, error)
}

// NewFunc 创建函数式检测器。
func NewFunc(name string, fn func(text string) (bool, error)) *Func {
	return &Func{name: name, fn: fn}
}

func (d *Func) Name() string { return d.name }

func (d *Func) Detect(_ context.Context, text string) (bool, error) {
	if d.fn == nil {
		return false, nil
	}
	return d.fn(text)
}

// AnyOf 把多个检测器合并为一个类别：任一命中即命中。
// 例如英文脏话与印地语脏话合并为 swear 类别。
// 子检测器出错时继续检查其余检测器；只要有命中就返回 true，否则返回第一个错误。
type AnyOf struct {
	name      string
	detectors []Detector
}

// NewAnyOf 创建组合检测器。
func NewAnyOf(name string, detectors ...Detector) *AnyOf {
	return &AnyOf{name: name, detectors: detectors}
}

func (d *AnyOf) Name() string { return d.name }

func (d *AnyOf) Detect(ctx context.Context, text string) (bool, error) {
	var firstErr error
	for _, sub := range d.detectors {
		hit, err := sub.Detect(ctx, text)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", sub.Name(), err)
			}
			continue
		}
		if hit {
			return true, nil
		}
	}
	return false, firstErr
}
