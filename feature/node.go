package feature

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/logging"
	"github.com/rushteam/revrank/metrics"
	"github.com/rushteam/revrank/pipeline"
	"github.com/rushteam/revrank/scorer"
)

// ExtractNode 是特征抽取 Node：按组并行计算，组内共享词表。
type ExtractNode struct {
	Scorers *scorer.Set
	Workers int // 并行处理的组数上限，<=0 表示不限制
}

func (n *ExtractNode) Name() string        { return "feature.review" }
func (n *ExtractNode) Kind() pipeline.Kind { return pipeline.KindFeature }

// Close 释放持有外部连接的批量打分器（如 Feast）。
func (n *ExtractNode) Close() error {
	if n.Scorers == nil {
		return nil
	}
	if c, ok := n.Scorers.Noun.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (n *ExtractNode) Process(
	ctx context.Context,
	rctx *core.RunContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if err := n.Scorers.Validate(); err != nil {
		return nil, err
	}
	groups := core.GroupItems(items)

	eg, egCtx := errgroup.WithContext(ctx)
	if n.Workers > 0 {
		eg.SetLimit(n.Workers)
	}
	for _, g := range groups {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			start := time.Now()
			if err := ExtractGroup(egCtx, g.Items, n.Scorers); err != nil {
				return fmt.Errorf("group %q: %w", g.Key, err)
			}
			metrics.FeatureGroupSeconds.Observe(time.Since(start).Seconds())
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logging.Info().Int("groups", len(groups)).Int("items", len(items)).Msg("features extracted")
	return items, nil
}
