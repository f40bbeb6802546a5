// Package rank 实现组内成对锦标赛排序。
//
// 同组的每条评论（anchor）依次与组内其他每条评论（contender）比较一次，
// 有序对 (A, B) 与 (B, A) 是两次独立比较。anchor 的得分为胜场数除以分母。
package rank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/logging"
	"github.com/rushteam/revrank/metrics"
	"github.com/rushteam/revrank/model"
	"github.com/rushteam/revrank/pipeline"
	"github.com/rushteam/revrank/pkg/utils"
)

// Denominator 决定胜场数除以什么。
type Denominator int

const (
	// DenominatorGroupSize 除以组大小 n，得分上限为 (n-1)/n。
	DenominatorGroupSize Denominator = iota
	// DenominatorOpponents 除以对手数 n-1，得分上限为 1。
	DenominatorOpponents
)

// ParseDenominator 解析配置值 "n" / "n-1"。
func ParseDenominator(s string) (Denominator, error) {
	switch s {
	case "", "n":
		return DenominatorGroupSize, nil
	case "n-1":
		return DenominatorOpponents, nil
	default:
		return 0, core.ConfigError("rank: unknown denominator %q (want n or n-1)", s)
	}
}

func (d Denominator) String() string {
	if d == DenominatorOpponents {
		return "n-1"
	}
	return "n"
}

func (d Denominator) of(n int) int {
	if d == DenominatorOpponents {
		return n - 1
	}
	return n
}

// 降级原因。
const (
	ReasonTimeout    = "timeout"
	ReasonClassifier = "classifier"
)

// GroupReport 是单组的排序统计。
type GroupReport struct {
	Key         string        `json:"key"`
	Size        int           `json:"size"`
	Comparisons int           `json:"comparisons"`
	Undefined   int           `json:"undefined"`
	Degraded    bool          `json:"degraded"`
	Reason      string        `json:"reason,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Report 是一次排序的汇总，Groups 按组 key 升序。
type Report struct {
	Groups []GroupReport `json:"groups"`
}

// DegradedGroups 返回被降级的组 key。
func (r *Report) DegradedGroups() []string {
	var out []string
	for _, g := range r.Groups {
		if g.Degraded {
			out = append(out, g.Key)
		}
	}
	return out
}

// TournamentNode 是锦标赛排序 Node。
type TournamentNode struct {
	Classifier  model.Classifier
	Denominator Denominator

	Workers       int // 并行排序的组数上限，<=0 表示不限制
	AnchorWorkers int // 组内并行的 anchor 数上限，<=0 表示不限制

	GroupTimeout time.Duration // 单组超时，0 表示不限制
	MaxRetries   int           // 分类器调用失败后的重试次数
	RetryBackoff time.Duration // 首次重试的等待时间，之后指数增长

	last atomic.Pointer[Report]
}

func (n *TournamentNode) Name() string        { return "rank.tournament" }
func (n *TournamentNode) Kind() pipeline.Kind { return pipeline.KindRank }

// LastReport 返回最近一次排序的报告。
func (n *TournamentNode) LastReport() *Report { return n.last.Load() }

// Close 释放分类器持有的资源（ONNX 会话等）。
func (n *TournamentNode) Close() error {
	if c, ok := n.Classifier.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (n *TournamentNode) Process(
	ctx context.Context,
	rctx *core.RunContext,
	items []*core.Item,
) ([]*core.Item, error) {
	out, report, err := n.Rank(ctx, items)
	if err != nil {
		return nil, err
	}
	if rctx != nil {
		rctx.SetReport(core.ReportRank, report)
		rctx.PutLabel(utils.LabelRankModel, utils.Label{Value: n.Classifier.Name(), Source: "rank"})
	}
	return out, nil
}

// Rank 对 items 分组打分，返回按（组 key 升序，得分降序，ID 升序）排列的结果。
// 单组失败只会降级该组；ctx 被取消时整体返回错误。
func (n *TournamentNode) Rank(ctx context.Context, items []*core.Item) ([]*core.Item, *Report, error) {
	if n.Classifier == nil {
		return nil, nil, core.ConfigError("rank: classifier is required")
	}
	for _, it := range items {
		if it != nil && it.Features == nil {
			return nil, nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
				fmt.Sprintf("rank: item %d has no features", it.ID))
		}
	}

	groups := core.GroupItems(items)
	report := &Report{Groups: make([]GroupReport, len(groups))}
	predict := n.predictor()

	eg, egCtx := errgroup.WithContext(ctx)
	if n.Workers > 0 {
		eg.SetLimit(n.Workers)
	}
	for i, g := range groups {
		eg.Go(func() error {
			gr, err := n.rankGroup(egCtx, g, predict)
			if err != nil {
				return err
			}
			report.Groups[i] = gr
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	core.SortRanked(out)

	degraded := report.DegradedGroups()
	logging.Info().Int("groups", len(groups)).Int("items", len(out)).Strs("degraded", degraded).
		Str("denominator", n.Denominator.String()).Msg("tournament done")
	n.last.Store(report)
	return out, report, nil
}

type predictFunc func(ctx context.Context, rows [][]float64) ([]int, error)

// predictor 返回分类器调用入口；未声明并发安全的分类器在整个运行内串行调用。
func (n *TournamentNode) predictor() predictFunc {
	if model.IsConcurrencySafe(n.Classifier) {
		return n.Classifier.Predict
	}
	var mu sync.Mutex
	return func(ctx context.Context, rows [][]float64) ([]int, error) {
		mu.Lock()
		defer mu.Unlock()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return n.Classifier.Predict(ctx, rows)
	}
}

type tally struct {
	win, lose, undefined int
}

// rankGroup 计算单组胜负。组内结果只在全部比较成功后写回 items。
func (n *TournamentNode) rankGroup(ctx context.Context, g core.Group, predict predictFunc) (GroupReport, error) {
	start := time.Now()
	size := len(g.Items)
	gr := GroupReport{Key: g.Key, Size: size}

	groupCtx := ctx
	if n.GroupTimeout > 0 {
		var cancel context.CancelFunc
		groupCtx, cancel = context.WithTimeout(ctx, n.GroupTimeout)
		defer cancel()
	}

	tallies := make([]tally, size)
	eg, anchorCtx := errgroup.WithContext(groupCtx)
	if n.AnchorWorkers > 0 {
		eg.SetLimit(n.AnchorWorkers)
	}
	for a := range g.Items {
		if size < 2 {
			break // 单条评论没有对手
		}
		eg.Go(func() error {
			rows := make([][]float64, 0, size-1)
			for c, contender := range g.Items {
				if c == a {
					continue
				}
				rows = append(rows, core.PairRow(*g.Items[a].Features, *contender.Features))
			}
			outcomes, err := n.predictWithRetry(anchorCtx, predict, rows)
			if err != nil {
				return err
			}
			for _, o := range outcomes {
				switch out := core.Outcome(o); {
				case !out.Defined():
					tallies[a].undefined++
				case out == core.OutcomeWin:
					tallies[a].win++
				default:
					tallies[a].lose++
				}
			}
			return nil
		})
	}
	err := eg.Wait()
	gr.Duration = time.Since(start)
	metrics.GroupRankSeconds.Observe(gr.Duration.Seconds())

	if err != nil {
		// 上游取消：中止整个运行
		if ctx.Err() != nil {
			return gr, ctx.Err()
		}
		reason := ReasonClassifier
		if errors.Is(err, context.DeadlineExceeded) || groupCtx.Err() != nil {
			reason = ReasonTimeout
		}
		n.degrade(g, &gr, reason, err)
		return gr, nil
	}

	denom := n.Denominator.of(size)
	for i, it := range g.Items {
		t := tallies[i]
		it.Win, it.Lose = t.win, t.lose
		it.Score = 0
		if denom > 0 {
			it.Score = float64(t.win) / float64(denom)
		}
		gr.Comparisons += t.win + t.lose + t.undefined
		gr.Undefined += t.undefined
		metrics.Comparisons.WithLabelValues("win").Add(float64(t.win))
		metrics.Comparisons.WithLabelValues("lose").Add(float64(t.lose))
		metrics.Comparisons.WithLabelValues("undefined").Add(float64(t.undefined))
	}
	if gr.Undefined > 0 {
		logging.Warn().Str("group", g.Key).Int("undefined", gr.Undefined).Msg("classifier returned values outside {0,1}")
	}
	logging.Debug().Str("group", g.Key).Int("size", size).Int("comparisons", gr.Comparisons).
		Dur("duration", gr.Duration).Msg("group ranked")
	return gr, nil
}

func (n *TournamentNode) degrade(g core.Group, gr *GroupReport, reason string, err error) {
	gr.Degraded = true
	gr.Reason = reason
	for _, it := range g.Items {
		it.Win, it.Lose, it.Score = 0, 0, 0
		it.PutLabel(utils.LabelDegraded, utils.Label{Value: reason, Source: "rank"})
	}
	metrics.GroupsDegraded.WithLabelValues(reason).Inc()
	logging.Warn().Err(err).Str("group", g.Key).Int("size", gr.Size).Str("reason", reason).Msg("group degraded")
}

// predictWithRetry 调用分类器，失败后按指数退避重试 MaxRetries 次。
func (n *TournamentNode) predictWithRetry(ctx context.Context, predict predictFunc, rows [][]float64) ([]int, error) {
	var out []int
	op := func() error {
		res, err := predict(ctx, rows)
		if err == nil && len(res) != len(rows) {
			err = fmt.Errorf("classifier returned %d outcomes for %d rows", len(res), len(rows))
		}
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		out = res
		return nil
	}
	notify := func(error, time.Duration) { metrics.ClassifierRetries.Inc() }

	err := backoff.RetryNotify(op, n.retryPolicy(ctx), notify)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, core.WrapDomainError(core.ModuleRank, core.ErrorCodeDegraded,
		fmt.Sprintf("rank: classifier failed after %d attempts", max(n.MaxRetries, 0)+1), err)
}

func (n *TournamentNode) retryPolicy(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if n.RetryBackoff > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = n.RetryBackoff
		eb.RandomizationFactor = 0
		eb.Multiplier = 2
		eb.MaxElapsedTime = 0
		b = eb
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(n.MaxRetries, 0))), ctx)
}
