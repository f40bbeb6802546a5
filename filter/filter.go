// Package filter 实现评论质量过滤：每条评论跑完全部检测器，命中任一类别即丢弃。
package filter

import (
	"context"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/detector"
)

// Check 对一段文本运行全部检测器并汇总为 Verdict。
//
// 不做短路：即使前面的检测器已命中，后面的检测器仍会执行，
// 以便每个类别的计数都是完整的。检测器出错时按保守策略视为命中该类别。
func Check(ctx context.Context, detectors []detector.Detector, text string) core.Verdict {
	var v core.Verdict
	for _, d := range detectors {
		hit, err := d.Detect(ctx, text)
		if err != nil {
			v.Failed = append(v.Failed, d.Name())
			hit = true
		}
		if hit && !v.Has(d.Name()) {
			v.Categories = append(v.Categories, d.Name())
		}
	}
	return v
}

// CheckNames 确认检测器名称互不相同；名称即报告中的类别，重名会让计数串位。
func CheckNames(detectors []detector.Detector) error {
	seen := make(map[string]bool, len(detectors))
	for _, d := range detectors {
		if seen[d.Name()] {
			return core.ConfigError("filter: duplicate detector name %q", d.Name())
		}
		seen[d.Name()] = true
	}
	return nil
}
