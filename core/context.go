package core

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rushteam/revrank/pkg/utils"
)

// 运行级报告的 key，供各 Node 写入、调用方读取。
const (
	ReportFilter   = "filter"
	ReportRank     = "rank"
	ReportEvaluate = "evaluate"
)

// RunContext 承载一次排序运行的上下文，贯穿整个 Pipeline 透传。
type RunContext struct {
	// RunID 唯一标识一次运行，写入日志与持久化结果
	RunID string

	// EvalMode 为 true 时输入带真实标签，Pipeline 末端执行排序评估
	EvalMode bool

	// Labels 是运行级标签
	Labels map[string]utils.Label

	// Params 运行级参数（阈值、开关等），由配置层注入
	Params map[string]any

	mu      sync.RWMutex
	reports map[string]any
}

func NewRunContext(evalMode bool) *RunContext {
	return &RunContext{
		RunID:    uuid.NewString(),
		EvalMode: evalMode,
		Labels:   make(map[string]utils.Label),
		Params:   make(map[string]any),
	}
}

// PutLabel 写入运行级 Label。
func (rctx *RunContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取运行级 Label。
func (rctx *RunContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// SetReport 保存某阶段的结构化报告（filter / rank / evaluate）。
func (rctx *RunContext) SetReport(key string, report any) {
	if rctx == nil {
		return
	}
	rctx.mu.Lock()
	defer rctx.mu.Unlock()
	if rctx.reports == nil {
		rctx.reports = make(map[string]any)
	}
	rctx.reports[key] = report
}

// Report 读取某阶段的报告。
func (rctx *RunContext) Report(key string) (any, bool) {
	if rctx == nil {
		return nil, false
	}
	rctx.mu.RLock()
	defer rctx.mu.RUnlock()
	r, ok := rctx.reports[key]
	return r, ok
}
