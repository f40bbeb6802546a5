package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/logging"
)

// Pipeline 把排序逻辑拆成可组合的 Node 链：Filter → Feature → Rank → Evaluate。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RunContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil {
		rctx = core.NewRunContext(false)
	}
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		logging.Debug().
			Str("run_id", rctx.RunID).
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("took", time.Since(start)).
			Msg("node done")
		cur = next
	}
	return cur, nil
}

// Close 关闭所有实现了 io.Closer 的 Node。
func (p *Pipeline) Close() error {
	var errs []error
	for _, node := range p.Nodes {
		if c, ok := node.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("node %s: %w", node.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
