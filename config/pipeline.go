package config

import (
	"maps"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/pipeline"
)

// Node 类型名。
const (
	NodeFilter   = "filter.quality"
	NodeFeature  = "feature.review"
	NodeRank     = "rank.tournament"
	NodeEvaluate = "evaluate.topk"
	NodeTopN     = "rank.topn"
)

// PipelineConfig 返回本次运行的拓扑。
// 未指定 Pipeline 文件时使用默认拓扑 filter -> feature -> rank（-> evaluate）（-> topn）；
// 指定文件时，文件中各 Node 未设置的顶层 key 由运行参数补齐。
func (s *Settings) PipelineConfig() (*pipeline.Config, error) {
	defaults := s.nodeDefaults()

	if s.Pipeline == "" {
		cfg := &pipeline.Config{}
		cfg.Pipeline.Name = "revrank"
		cfg.AddNode(NodeFilter, defaults[NodeFilter])
		cfg.AddNode(NodeFeature, defaults[NodeFeature])
		cfg.AddNode(NodeRank, defaults[NodeRank])
		if s.Eval.Enabled {
			cfg.AddNode(NodeEvaluate, defaults[NodeEvaluate])
		}
		if s.Output.TopN > 0 {
			cfg.AddNode(NodeTopN, defaults[NodeTopN])
		}
		return cfg, nil
	}

	cfg, err := pipeline.LoadConfig(s.Pipeline)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "config: pipeline "+s.Pipeline, err)
	}
	for i, nc := range cfg.Pipeline.Nodes {
		merged := maps.Clone(defaults[nc.Type])
		if merged == nil {
			merged = make(map[string]any)
		}
		maps.Copy(merged, nc.Config)
		cfg.Pipeline.Nodes[i].Config = merged
	}
	return cfg, nil
}

func (s *Settings) nodeDefaults() map[string]map[string]any {
	return map[string]map[string]any{
		NodeFilter: {
			"resources_dir":        s.Filter.ResourcesDir,
			"spell_threshold":      s.Filter.SpellThreshold,
			"disallowed_languages": s.Filter.DisallowedLanguages,
			"workers":              s.Filter.Workers,
		},
		NodeFeature: {
			"workers":      s.Feature.Workers,
			"lexicon_path": s.Feature.LexiconPath,
			"noun": map[string]any{
				"source":   s.Feature.NounSource,
				"endpoint": s.Feature.Feast.Endpoint,
				"host":     s.Feature.Feast.Host,
				"port":     s.Feature.Feast.Port,
				"project":  s.Feature.Feast.Project,
				"feature":  s.Feature.Feast.Feature,
				"token":    s.Feature.Feast.Token,
				"tls":      s.Feature.Feast.TLS,
				"timeout":  s.Feature.Feast.Timeout,
			},
		},
		NodeRank: {
			"model": map[string]any{
				"kind":        s.Model.Kind,
				"path":        s.Model.Path,
				"endpoint":    s.Model.Endpoint,
				"timeout":     s.Model.Timeout,
				"rate_limit":  s.Model.RateLimit,
				"ort_library": s.Model.ORTLibrary,
			},
			"denominator":    s.Rank.Denominator,
			"workers":        s.Rank.Workers,
			"anchor_workers": s.Rank.AnchorWorkers,
			"group_timeout":  s.Rank.GroupTimeout,
			"max_retries":    s.Rank.MaxRetries,
			"retry_backoff":  s.Rank.RetryBackoff,
		},
		NodeEvaluate: {},
		NodeTopN:     {"n": s.Output.TopN},
	}
}
