// Package app 把配置、数据读取、Pipeline 与结果输出串成一次完整运行。
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rushteam/revrank/config"
	_ "github.com/rushteam/revrank/config/builders"
	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/dataset"
	"github.com/rushteam/revrank/evaluate"
	"github.com/rushteam/revrank/filter"
	"github.com/rushteam/revrank/logging"
	"github.com/rushteam/revrank/metrics"
	"github.com/rushteam/revrank/pipeline"
	"github.com/rushteam/revrank/rank"
	"github.com/rushteam/revrank/sink"
	"github.com/rushteam/revrank/store"
)

// App 持有一次运行所需的全部组件。所有配置问题都在 New 中暴露。
type App struct {
	Settings *config.Settings
	Pipeline *pipeline.Pipeline
	Sinks    sink.Multi
}

// Result 汇总一次运行的产出。
type Result struct {
	RunID    string
	Input    int
	Ranked   []core.RankedResult
	Filter   *filter.Report
	Rank     *rank.Report
	Evaluate *evaluate.Report
	Duration time.Duration
}

// New 校验资源、构建 Pipeline 与输出端。任何错误都应让进程在处理数据前退出。
func New(s *config.Settings) (*App, error) {
	if err := s.CheckResources(); err != nil {
		return nil, err
	}
	cfg, err := s.PipelineConfig()
	if err != nil {
		return nil, err
	}
	p, err := config.Build(cfg)
	if err != nil {
		return nil, err
	}
	sinks, err := openSinks(s.Output)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return &App{Settings: s, Pipeline: p, Sinks: sinks}, nil
}

func openSinks(o config.OutputSettings) (sink.Multi, error) {
	var sinks sink.Multi
	if o.CSVPath != "" {
		sinks = append(sinks, sink.NewCSVSink(o.CSVPath))
	}
	if o.RedisAddr != "" {
		rs, err := store.NewRedisStore(store.RedisOptions{Addr: o.RedisAddr, DB: o.RedisDB, Password: o.RedisPassword})
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, sink.NewRedisSink(rs, o.RedisPrefix))
	}
	if o.SQLitePath != "" {
		ss, err := sink.NewSQLiteSink(o.SQLitePath)
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, ss)
	}
	if len(sinks) == 0 {
		return nil, core.ConfigError("app: no output configured")
	}
	return sinks, nil
}

// Run 读取输入、执行 Pipeline，成功后才写出结果。
func (a *App) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	s := a.Settings

	items, err := dataset.Load(s.Input.Path, dataset.Options{
		GroupColumn:  s.Input.GroupColumn,
		TextColumn:   s.Input.TextColumn,
		LabelColumn:  s.Input.LabelColumn,
		RequireLabel: s.Eval.Enabled,
	})
	if err != nil {
		return nil, err
	}

	rctx := core.NewRunContext(s.Eval.Enabled)
	log := logging.With().Str("run_id", rctx.RunID).Logger()
	log.Info().Str("input", s.Input.Path).Int("items", len(items)).Bool("eval", s.Eval.Enabled).Msg("run started")

	out, err := a.Pipeline.Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:  rctx.RunID,
		Input:  len(items),
		Ranked: core.Project(out),
	}
	res.Filter, _ = report[*filter.Report](rctx, core.ReportFilter)
	res.Rank, _ = report[*rank.Report](rctx, core.ReportRank)
	if s.Eval.Enabled {
		var ok bool
		if res.Evaluate, ok = report[*evaluate.Report](rctx, core.ReportEvaluate); !ok {
			// 拓扑中没有 evaluate.topk 时在这里补做
			if res.Evaluate, err = evaluate.Evaluate(out); err != nil {
				return nil, err
			}
			evaluate.Observe(res.Evaluate)
		}
	}

	if err := a.Sinks.Write(ctx, rctx.RunID, res.Ranked); err != nil {
		return nil, err
	}
	if s.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(s.Metrics.Textfile); err != nil {
			log.Warn().Err(err).Str("path", s.Metrics.Textfile).Msg("write metrics textfile failed")
		}
	}

	res.Duration = time.Since(start)
	ev := log.Info().Int("ranked", len(res.Ranked)).Dur("took", res.Duration)
	if res.Filter != nil {
		ev = ev.Int("discarded", res.Filter.Discarded())
	}
	if res.Rank != nil {
		ev = ev.Strs("degraded_groups", res.Rank.DegradedGroups())
	}
	ev.Msg("run finished")
	return res, nil
}

// Close 释放 Pipeline 与输出端持有的资源。
func (a *App) Close() error {
	return errors.Join(a.Pipeline.Close(), a.Sinks.Close())
}

func report[T any](rctx *core.RunContext, key string) (T, bool) {
	var zero T
	v, ok := rctx.Report(key)
	if !ok {
		return zero, false
	}
	r, ok := v.(T)
	return r, ok
}
