package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config 描述一条排序流水线的拓扑：按顺序执行的 Node 列表。
type Config struct {
	Pipeline struct {
		Name  string       `yaml:"name" json:"name"`
		Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
	} `yaml:"pipeline" json:"pipeline"`
}

// NodeConfig 是单个 Node 的类型与参数。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type"`
	Config map[string]any `yaml:"config" json:"config"`
}

// LoadConfig 读取拓扑文件，.json 按 JSON 解析，其余按 YAML 解析。
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline %s: %w", path, err)
	}
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse pipeline %s: %w", path, err)
	}
	return &cfg, nil
}

// AddNode 追加一个 Node。
func (c *Config) AddNode(nodeType string, config map[string]any) {
	c.Pipeline.Nodes = append(c.Pipeline.Nodes, NodeConfig{Type: nodeType, Config: config})
}

// Types 按执行顺序返回各 Node 的类型。
func (c *Config) Types() []string {
	out := make([]string, len(c.Pipeline.Nodes))
	for i, nc := range c.Pipeline.Nodes {
		out[i] = nc.Type
	}
	return out
}

// BuildPipeline 用 factory 逐个构建 Node；任一失败时关闭已构建的 Node 并返回错误。
func (c *Config) BuildPipeline(factory *NodeFactory) (*Pipeline, error) {
	p := &Pipeline{Nodes: make([]Node, 0, len(c.Pipeline.Nodes))}
	for _, nc := range c.Pipeline.Nodes {
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("build node %s: %w", nc.Type, err)
		}
		p.Nodes = append(p.Nodes, node)
	}
	return p, nil
}

// NodeFactory 保存 Node 类型到构建函数的映射。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{builders: make(map[string]NodeBuilder)}
}

func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Has 报告类型是否已注册。
func (f *NodeFactory) Has(nodeType string) bool {
	_, ok := f.builders[nodeType]
	return ok
}

func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type: %s", nodeType)
	}
	return builder(config)
}
