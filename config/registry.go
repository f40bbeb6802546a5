package config

import (
	"slices"
	"strings"
	"sync"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/pipeline"
)

// 使用配置驱动时，需在 main 或入口处 import _ "github.com/rushteam/revrank/config/builders"
// 以触发内置 Node（filter.quality、feature.review、rank.tournament、evaluate.topk）的 init 注册。

// NodeBuilder 与 pipeline.NodeBuilder 一致。
type NodeBuilder = pipeline.NodeBuilder

var (
	registry   = make(map[string]NodeBuilder)
	registryMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑。重复注册时后者覆盖前者。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typeName] = builder
}

// SupportedTypes 返回已注册的 Node 类型（排序）。
func SupportedTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// DefaultFactory 返回包含所有已注册 Node 类型的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range registry {
		f.Register(typeName, builder)
	}
	return f
}

// Build 按拓扑构建 Pipeline。出现未注册的类型或任一 Node 构建失败都视为配置错误，
// 已构建的 Node 会被关闭。
func Build(cfg *pipeline.Config) (*pipeline.Pipeline, error) {
	if len(cfg.Pipeline.Nodes) == 0 {
		return nil, core.ConfigError("config: pipeline has no nodes")
	}
	supported := SupportedTypes()
	for _, nc := range cfg.Pipeline.Nodes {
		if !slices.Contains(supported, nc.Type) {
			return nil, core.ConfigError("config: unknown node type %q (supported: %s)", nc.Type, strings.Join(supported, ", "))
		}
	}

	p := &pipeline.Pipeline{}
	factory := DefaultFactory()
	for _, nc := range cfg.Pipeline.Nodes {
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			_ = p.Close()
			if core.IsDomainError(err) {
				return nil, err
			}
			return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "config: build node "+nc.Type, err)
		}
		p.Nodes = append(p.Nodes, node)
	}
	return p, nil
}
