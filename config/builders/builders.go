// Package builders 注册内置 Node 的构建器。入口处以空导入触发注册：
//
//	import _ "github.com/rushteam/revrank/config/builders"
package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/revrank/config"
	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/detector"
	"github.com/rushteam/revrank/evaluate"
	"github.com/rushteam/revrank/feast"
	"github.com/rushteam/revrank/feature"
	"github.com/rushteam/revrank/filter"
	"github.com/rushteam/revrank/model"
	"github.com/rushteam/revrank/pipeline"
	"github.com/rushteam/revrank/pkg/conv"
	"github.com/rushteam/revrank/rank"
	"github.com/rushteam/revrank/scorer"
)

func init() {
	config.Register(config.NodeFilter, BuildQualityNode)
	config.Register(config.NodeFeature, BuildExtractNode)
	config.Register(config.NodeRank, BuildTournamentNode)
	config.Register(config.NodeEvaluate, BuildTopKNode)
	config.Register(config.NodeTopN, BuildTopNNode)
}

// BuildQualityNode 构建质量过滤 Node：四类标准检测器，外加可选的规则 / 词表检测器。
//
//	resources_dir: resources
//	spell_threshold: 0.02
//	disallowed_languages: [hi, mr]
//	extra:
//	  - {type: rule, name: too_short, expr: "size(words) < 2"}
//	  - {type: wordlist, name: spam, words: ["whatsapp me"]}
func BuildQualityNode(cfg map[string]any) (pipeline.Node, error) {
	langs := conv.ConfigGetStrings(cfg, "disallowed_languages")
	if langs == nil {
		langs = detector.DefaultDisallowedLanguages
	}
	detectors, err := detector.Standard(detector.StandardOptions{
		ResourcesDir:        conv.ConfigGet(cfg, "resources_dir", "resources"),
		SpellThreshold:      conv.ConfigGetFloat64(cfg, "spell_threshold", 0),
		DisallowedLanguages: langs,
	})
	if err != nil {
		return nil, err
	}
	for i, ec := range conv.ConfigGetMaps(cfg, "extra") {
		d, err := buildDetector(ec)
		if err != nil {
			return nil, fmt.Errorf("extra[%d]: %w", i, err)
		}
		detectors = append(detectors, d)
	}
	if err := filter.CheckNames(detectors); err != nil {
		return nil, err
	}
	return &filter.QualityNode{
		Detectors: detectors,
		Workers:   conv.ConfigGetInt(cfg, "workers", 0),
	}, nil
}

func buildDetector(cfg map[string]any) (detector.Detector, error) {
	name := conv.ConfigGet(cfg, "name", "")
	if name == "" {
		return nil, core.ConfigError("detector name is required")
	}
	switch typ := conv.ConfigGet(cfg, "type", ""); typ {
	case "rule":
		return detector.NewRule(name, conv.ConfigGet(cfg, "expr", ""))
	case "wordlist":
		if path := conv.ConfigGet(cfg, "path", ""); path != "" {
			return detector.LoadWordList(name, path)
		}
		return detector.NewWordList(name, conv.ConfigGetStrings(cfg, "words")), nil
	default:
		return nil, core.ConfigError("unknown detector type %q", typ)
	}
}

// BuildExtractNode 构建特征抽取 Node。
//
//	workers: 8
//	lexicon_path: resources/lexicon.json
//	noun: {source: feast, host: feast.local, port: 6565, feature: "review_nlp:noun_score"}
//	noun: {source: feast, endpoint: "http://feast.local:6566", feature: "review_nlp:noun_score"}
func BuildExtractNode(cfg map[string]any) (pipeline.Node, error) {
	set := scorer.DefaultSet()
	if path := conv.ConfigGet(cfg, "lexicon_path", ""); path != "" {
		lex, err := scorer.LoadLexicon(path)
		if err != nil {
			return nil, err
		}
		set.Polarity = lex.Polarity()
		set.Subjectivity = lex.Subjectivity()
	}

	noun := conv.ConfigGetMap(cfg, "noun")
	switch source := conv.ConfigGet(noun, "source", "pos"); source {
	case "pos", "":
	case "feast":
		fb, err := buildFeastScorer(noun)
		if err != nil {
			return nil, err
		}
		set.Noun = fb
	default:
		return nil, core.ConfigError("unknown noun source %q", source)
	}

	return &feature.ExtractNode{
		Scorers: set,
		Workers: conv.ConfigGetInt(cfg, "workers", 0),
	}, nil
}

func buildFeastScorer(cfg map[string]any) (*scorer.FeastBatch, error) {
	endpoint := conv.ConfigGet(cfg, "endpoint", "")
	host := conv.ConfigGet(cfg, "host", "")
	ref := conv.ConfigGet(cfg, "feature", "")
	if (endpoint == "" && host == "") || ref == "" {
		return nil, core.ConfigError("feast noun scorer requires endpoint or host, and feature")
	}
	project := conv.ConfigGet(cfg, "project", "")
	opts := []feast.ClientOption{
		feast.WithTimeout(conv.ConfigGetDuration(cfg, "timeout", 10*time.Second)),
	}
	if token := conv.ConfigGet(cfg, "token", ""); token != "" {
		opts = append(opts, feast.WithToken(token, conv.ConfigGet(cfg, "tls", false)))
	}

	var client feast.Client
	if endpoint != "" {
		client = feast.NewHTTPClient(endpoint, project, opts...)
	} else {
		gc, err := feast.NewGrpcClient(host, conv.ConfigGetInt(cfg, "port", 0), project, opts...)
		if err != nil {
			return nil, err
		}
		client = gc
	}
	return &scorer.FeastBatch{Client: client, Feature: ref, Project: project}, nil
}

// BuildTournamentNode 构建两两比较排序 Node。
//
//	model: {kind: linear, path: resources/model.json}
//	denominator: n
//	group_timeout: 2m
//	max_retries: 2
func BuildTournamentNode(cfg map[string]any) (pipeline.Node, error) {
	denom, err := rank.ParseDenominator(conv.ConfigGet(cfg, "denominator", ""))
	if err != nil {
		return nil, err
	}
	mc := conv.ConfigGetMap(cfg, "model")
	if mc == nil {
		return nil, core.ConfigError("rank.tournament: model is required")
	}
	clf, err := model.Open(model.Spec{
		Kind:       conv.ConfigGet(mc, "kind", model.KindLinear),
		Path:       conv.ConfigGet(mc, "path", ""),
		Endpoint:   conv.ConfigGet(mc, "endpoint", ""),
		Timeout:    conv.ConfigGetDuration(mc, "timeout", 5*time.Second),
		RateLimit:  conv.ConfigGetFloat64(mc, "rate_limit", 0),
		ORTLibrary: conv.ConfigGet(mc, "ort_library", ""),
	})
	if err != nil {
		return nil, err
	}
	return &rank.TournamentNode{
		Classifier:    clf,
		Denominator:   denom,
		Workers:       conv.ConfigGetInt(cfg, "workers", 0),
		AnchorWorkers: conv.ConfigGetInt(cfg, "anchor_workers", 0),
		GroupTimeout:  conv.ConfigGetDuration(cfg, "group_timeout", 0),
		MaxRetries:    conv.ConfigGetInt(cfg, "max_retries", 0),
		RetryBackoff:  conv.ConfigGetDuration(cfg, "retry_backoff", 100*time.Millisecond),
	}, nil
}

// BuildTopKNode 构建评估 Node，无配置项。
func BuildTopKNode(map[string]any) (pipeline.Node, error) {
	return &evaluate.TopKNode{}, nil
}

// BuildTopNNode 构建按组截断 Node。
//
//	n: 5
func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt(cfg, "n", 0)
	if n < 0 {
		return nil, core.ConfigError("rank.topn: n must be >= 0, got %d", n)
	}
	return &rank.TopNNode{N: int(n)}, nil
}
