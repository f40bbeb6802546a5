// Package metrics 定义排序运行的 Prometheus 指标。
//
// 批处理任务没有常驻 HTTP 端口，指标注册在独立的 Registry 上，
// 运行结束后通过 WriteTextfile 写给 node_exporter 的 textfile collector。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry 是本进程所有 revrank 指标的注册表。
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// 质量过滤
	FilterFlagged = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revrank_filter_flagged_total",
			Help: "Items flagged per detector category",
		},
		[]string{"category"},
	)

	FilterDetectorErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revrank_filter_detector_errors_total",
			Help: "Detector failures recovered by flagging the item",
		},
		[]string{"category"},
	)

	FilterDiscarded = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "revrank_filter_discarded_total",
			Help: "Items removed by the quality filter (union of categories)",
		},
	)

	// 特征抽取
	FeatureGroupSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "revrank_feature_group_seconds",
			Help:    "Feature extraction duration per group",
			Buckets: prometheus.DefBuckets,
		},
	)

	// 锦标赛排序
	Comparisons = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revrank_comparisons_total",
			Help: "Ordered pairwise comparisons by classifier outcome",
		},
		[]string{"outcome"}, // win / lose / undefined
	)

	GroupRankSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "revrank_group_rank_seconds",
			Help:    "Tournament duration per group",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	GroupsDegraded = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revrank_groups_degraded_total",
			Help: "Groups whose tournament was abandoned",
		},
		[]string{"reason"}, // timeout / classifier
	)

	ClassifierRetries = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "revrank_classifier_retries_total",
			Help: "Classifier batch calls retried after an error",
		},
	)

	ClassifierBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "revrank_classifier_breaker_state",
			Help: "Remote classifier circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// 评估
	EvalAccuracy = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "revrank_eval_accuracy",
			Help: "Top-k rank accuracy per group",
		},
		[]string{"group"},
	)

	EvalMeanAccuracy = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "revrank_eval_mean_accuracy",
			Help: "Mean top-k rank accuracy over non-degenerate groups",
		},
	)
)

// WriteTextfile 将当前指标以文本格式写入 path（原子替换）。
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
