// Package dataset 读取待排序的评论表。
//
// 输入为带表头的 CSV（.tsv 扩展名按制表符分隔）。每行一条评论，
// 行号（从 0 开始，不含表头）即评论 ID。
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rushteam/revrank/core"
)

// 列名别名：显式配置的列名优先，其次依次尝试别名。
var (
	GroupAliases = []string{"group_key", "product"}
	TextAliases  = []string{"text", "answer_option", "review"}
	LabelAliases = []string{"label"}
)

// Options 指定列映射。
type Options struct {
	GroupColumn string
	TextColumn  string
	LabelColumn string

	// RequireLabel 为 true 时标签列必须存在且每行都有 0/1 标签（评估模式）
	RequireLabel bool
}

// Load 读取文件。文件不存在返回 INVALID_CONFIG。
func Load(path string, opts Options) ([]*core.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeInvalidConfig, "dataset: open "+path, err)
	}
	defer f.Close()

	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	items, err := read(f, comma, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Read 从 CSV 流读取评论。
func Read(r io.Reader, opts Options) ([]*core.Item, error) {
	return read(r, ',', opts)
}

func read(r io.Reader, comma rune, opts Options) ([]*core.Item, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, invalid("dataset: empty input")
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "dataset: read header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	groupIdx, err := column(header, opts.GroupColumn, GroupAliases)
	if err != nil {
		return nil, err
	}
	textIdx, err := column(header, opts.TextColumn, TextAliases)
	if err != nil {
		return nil, err
	}
	labelIdx, err := column(header, opts.LabelColumn, LabelAliases)
	if err != nil {
		if opts.RequireLabel {
			return nil, err
		}
		labelIdx = -1
	}

	var items []*core.Item
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, fmt.Sprintf("dataset: line %d", line), err)
		}
		if groupIdx >= len(rec) || textIdx >= len(rec) {
			return nil, invalid("dataset: line %d has %d fields", line, len(rec))
		}

		it := core.NewItem(len(items), rec[groupIdx], rec[textIdx])
		if labelIdx >= 0 && labelIdx < len(rec) && strings.TrimSpace(rec[labelIdx]) != "" {
			label, err := parseLabel(rec[labelIdx])
			if err != nil {
				return nil, invalid("dataset: line %d: %v", line, err)
			}
			it.Label = &label
		}
		if opts.RequireLabel && it.Label == nil {
			return nil, invalid("dataset: line %d has no label", line)
		}
		items = append(items, it)
	}
	return items, nil
}

func column(header []string, name string, aliases []string) (int, error) {
	candidates := aliases
	if name != "" {
		candidates = []string{name}
	}
	for _, c := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), c) {
				return i, nil
			}
		}
	}
	return -1, invalid("dataset: column %s not found in header %v", strings.Join(candidates, "|"), header)
}

// parseLabel 接受 0/1（以及 0.0/1.0 这类浮点写法）。
func parseLabel(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || (f != 0 && f != 1) {
		return 0, fmt.Errorf("label %q is not 0 or 1", s)
	}
	return int(f), nil
}

func invalid(format string, args ...any) error {
	return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, fmt.Sprintf(format, args...))
}
