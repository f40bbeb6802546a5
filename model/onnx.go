package model

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/rushteam/revrank/core"
)

// ONNX 模型的默认输入输出名（sklearn-onnx 导出的分类器约定）。
const (
	DefaultONNXInput  = "input"
	DefaultONNXOutput = "label"
)

var ortInit sync.Mutex

// ONNXClassifier 使用 onnxruntime 在本地执行导出的分类模型（如随机森林）。
//
// 输入张量 float32 [n, 14]，输出张量 int64 [n]。
// onnxruntime 会话不声明并发安全，调用方需要串行化。
type ONNXClassifier struct {
	path    string
	session *ort.DynamicAdvancedSession
}

// ONNXOptions 是 ONNX 分类器的加载参数。
type ONNXOptions struct {
	ModelPath   string
	LibraryPath string // onnxruntime 共享库路径，为空时使用系统默认
	InputName   string
	OutputName  string
}

// LoadONNX 初始化 onnxruntime 环境（进程内一次）并加载模型。
func LoadONNX(opts ONNXOptions) (*ONNXClassifier, error) {
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeInvalidConfig, "model: onnx model "+opts.ModelPath, err)
	}
	if opts.InputName == "" {
		opts.InputName = DefaultONNXInput
	}
	if opts.OutputName == "" {
		opts.OutputName = DefaultONNXOutput
	}

	ortInit.Lock()
	if !ort.IsInitialized() {
		if opts.LibraryPath != "" {
			ort.SetSharedLibraryPath(opts.LibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			ortInit.Unlock()
			return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeInvalidConfig, "model: init onnxruntime", err)
		}
	}
	ortInit.Unlock()

	session, err := ort.NewDynamicAdvancedSession(opts.ModelPath,
		[]string{opts.InputName}, []string{opts.OutputName}, nil)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeInvalidConfig, "model: open onnx session", err)
	}
	return &ONNXClassifier{path: opts.ModelPath, session: session}, nil
}

func (m *ONNXClassifier) Name() string { return "onnx" }

func (m *ONNXClassifier) Predict(ctx context.Context, rows [][]float64) ([]int, error) {
	if len(rows) == 0 {
		return []int{}, nil
	}
	if err := checkRows(rows); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := make([]float32, 0, len(rows)*InputDim)
	for _, row := range rows {
		for _, x := range row {
			data = append(data, float32(x))
		}
	}
	input, err := ort.NewTensor(ort.NewShape(int64(len(rows)), InputDim), data)
	if err != nil {
		return nil, fmt.Errorf("onnx input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[int64](ort.NewShape(int64(len(rows))))
	if err != nil {
		return nil, fmt.Errorf("onnx output tensor: %w", err)
	}
	defer output.Destroy()

	if err := m.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, core.WrapDomainError(core.ModuleModel, core.ErrorCodeUnavailable, "model: onnx run", err)
	}

	labels := output.GetData()
	out := make([]int, len(rows))
	for i := range out {
		out[i] = int(labels[i])
	}
	return out, nil
}

// Close 释放会话资源。
func (m *ONNXClassifier) Close() error {
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	return err
}
