package filter

import (
	"context"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/detector"
	"github.com/rushteam/revrank/logging"
	"github.com/rushteam/revrank/metrics"
	"github.com/rushteam/revrank/pipeline"
	"github.com/rushteam/revrank/pkg/utils"
)

// CategoryCount 是单个类别的命中统计。
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`  // 命中数（含出错）
	Errors   int    `json:"errors"` // 检测器出错数
}

// Discard 记录一条被丢弃的评论及其命中的类别。
type Discard struct {
	ID         int      `json:"id"`
	GroupKey   string   `json:"group_key"`
	Text       string   `json:"text"`
	Categories []string `json:"categories"`
}

// Report 是一次过滤的汇总报告。一条评论命中多个类别时在每个类别各计一次，
// 但在 Discards 中只出现一次。
type Report struct {
	Total      int             `json:"total"`
	Survivors  int             `json:"survivors"`
	Categories []CategoryCount `json:"categories"`
	Discards   []Discard       `json:"discards"`
}

// Discarded 返回被丢弃的评论数。
func (r *Report) Discarded() int { return len(r.Discards) }

// Count 返回某个类别的命中数。
func (r *Report) Count(category string) int {
	for _, c := range r.Categories {
		if c.Category == category {
			return c.Count
		}
	}
	return 0
}

// QualityNode 是质量过滤 Node。
type QualityNode struct {
	Detectors []detector.Detector
	Workers   int // 并发检测的评论数上限，<=0 表示不限制

	last atomic.Pointer[Report]
}

// LastReport 返回最近一次 Apply 的报告，尚未运行时为 nil。
func (n *QualityNode) LastReport() *Report { return n.last.Load() }

func (n *QualityNode) Name() string        { return "filter.quality" }
func (n *QualityNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *QualityNode) Process(
	ctx context.Context,
	rctx *core.RunContext,
	items []*core.Item,
) ([]*core.Item, error) {
	out, report, err := n.Apply(ctx, items)
	if err != nil {
		return nil, err
	}
	if rctx != nil {
		rctx.SetReport(core.ReportFilter, report)
	}
	return out, nil
}

// Apply 过滤 items，返回保留的评论（保持输入顺序）与报告。
func (n *QualityNode) Apply(ctx context.Context, items []*core.Item) ([]*core.Item, *Report, error) {
	if err := CheckNames(n.Detectors); err != nil {
		return nil, nil, err
	}
	verdicts := make([]core.Verdict, len(items))

	eg, egCtx := errgroup.WithContext(ctx)
	if n.Workers > 0 {
		eg.SetLimit(n.Workers)
	}
	for i, it := range items {
		if it == nil {
			continue
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			verdicts[i] = Check(egCtx, n.Detectors, it.Text)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	report := &Report{Categories: make([]CategoryCount, len(n.Detectors))}
	index := make(map[string]int, len(n.Detectors))
	for i, d := range n.Detectors {
		report.Categories[i].Category = d.Name()
		index[d.Name()] = i
	}

	out := make([]*core.Item, 0, len(items))
	for i, it := range items {
		if it == nil {
			continue
		}
		report.Total++
		v := verdicts[i]
		for _, c := range v.Categories {
			report.Categories[index[c]].Count++
			metrics.FilterFlagged.WithLabelValues(c).Inc()
		}
		for _, c := range v.Failed {
			report.Categories[index[c]].Errors++
			metrics.FilterDetectorErrors.WithLabelValues(c).Inc()
		}
		if !v.Bad() {
			out = append(out, it)
			continue
		}

		it.PutLabel(utils.LabelFiltered, utils.Label{Value: strings.Join(v.Categories, ","), Source: "filter"})
		report.Discards = append(report.Discards, Discard{
			ID:         it.ID,
			GroupKey:   it.GroupKey,
			Text:       it.Text,
			Categories: v.Categories,
		})
		logging.Info().Int("id", it.ID).Str("group", it.GroupKey).Strs("categories", v.Categories).
			Strs("failed", v.Failed).Str("text", it.Text).Msg("review discarded")
	}
	report.Survivors = len(out)
	metrics.FilterDiscarded.Add(float64(report.Discarded()))

	ev := logging.Info().Int("total", report.Total).Int("survivors", report.Survivors).Int("discarded", report.Discarded())
	for _, c := range report.Categories {
		ev = ev.Int(c.Category, c.Count)
	}
	ev.Msg("quality filter done")
	n.last.Store(report)
	return out, report, nil
}
