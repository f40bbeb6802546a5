package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）、消息（Message）与所属模块（Module）
//   - 可选携带底层原因（Err），支持 errors.Is / errors.As 穿透
//
// 使用场景：
//   - 配置错误：INVALID_CONFIG（启动阶段即失败，不做任何处理）
//   - 检测失败：UNDETECTABLE（由过滤器就地按保守策略处理，不向上传播）
//   - 分组降级：DEGRADED（单组超时或分类器持续失败）
//   - 评估：MISSING_LABEL
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_CONFIG"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "filter", "rank"）
	Err     error  // 底层原因（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误链中是否包含 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的第一个 DomainError，没有则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层原因的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
	ErrorCodeInvalidConfig = "INVALID_CONFIG" // 配置错误，启动即失败
	ErrorCodeUndetectable  = "UNDETECTABLE"   // 检测器无法对输入给出结论
	ErrorCodeDegraded      = "DEGRADED"       // 分组降级（超时 / 分类器持续失败）
	ErrorCodeMissingLabel  = "MISSING_LABEL"  // 评估模式缺少真实标签
)

// 模块名称常量
const (
	ModuleStore    = "store"    // 存储模块
	ModuleDataset  = "dataset"  // 输入数据
	ModuleDetector = "detector" // 检测器
	ModuleFilter   = "filter"   // 质量过滤
	ModuleScorer   = "scorer"   // 打分器
	ModuleFeature  = "feature"  // 特征抽取
	ModuleModel    = "model"    // 二分类器
	ModuleRank     = "rank"     // 锦标赛排序
	ModuleEvaluate = "evaluate" // 排序评估
	ModuleSink     = "sink"     // 结果输出
	ModuleConfig   = "config"   // 配置
)

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsInvalidConfig 检查错误是否为 INVALID_CONFIG
func IsInvalidConfig(err error) bool {
	return hasCode(err, ErrorCodeInvalidConfig)
}

// IsUndetectable 检查错误是否为 UNDETECTABLE
func IsUndetectable(err error) bool {
	return hasCode(err, ErrorCodeUndetectable)
}

// IsDegraded 检查错误是否为 DEGRADED
func IsDegraded(err error) bool {
	return hasCode(err, ErrorCodeDegraded)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// ConfigError 是启动阶段配置错误的快捷构造。
func ConfigError(format string, args ...any) *DomainError {
	return NewDomainError(ModuleConfig, ErrorCodeInvalidConfig, fmt.Sprintf(format, args...))
}
