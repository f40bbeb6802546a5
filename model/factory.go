package model

import (
	"os"
	"time"

	"github.com/rushteam/revrank/core"
)

// 分类器类型。
const (
	KindLinear = "linear"
	KindRPC    = "rpc"
	KindONNX   = "onnx"
)

// Spec 描述如何加载分类器。
type Spec struct {
	Kind       string
	Path       string // linear / onnx 模型文件
	Endpoint   string // rpc 服务地址
	Timeout    time.Duration
	RateLimit  float64 // rpc 每秒请求数，<=0 不限流
	ORTLibrary string  // onnxruntime 共享库
}

// Open 按 Spec 加载分类器。模型文件缺失等问题返回 INVALID_CONFIG。
func Open(spec Spec) (Classifier, error) {
	switch spec.Kind {
	case KindLinear, "":
		if _, err := os.Stat(spec.Path); err != nil {
			return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeInvalidConfig, "model: model file "+spec.Path, err)
		}
		return LoadLinear(spec.Path)
	case KindRPC:
		if spec.Endpoint == "" {
			return nil, core.ConfigError("model: rpc classifier requires an endpoint")
		}
		return NewRPCClassifier("rpc", spec.Endpoint, spec.Timeout, WithRateLimit(spec.RateLimit, 1)), nil
	case KindONNX:
		return LoadONNX(ONNXOptions{ModelPath: spec.Path, LibraryPath: spec.ORTLibrary})
	default:
		return nil, core.ConfigError("model: unknown classifier kind %q", spec.Kind)
	}
}
