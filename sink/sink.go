// Package sink 持久化排序结果。
//
// 只有整条流水线成功后才会调用 Sink；每个 Sink 要么完整写入一次运行的结果，
// 要么返回错误，不留下半份数据。
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/logging"
)

// Sink 是排序结果的输出端。results 已按（组 key 升序，得分降序）排列。
type Sink interface {
	Name() string
	Write(ctx context.Context, runID string, results []core.RankedResult) error
	Close() error
}

// Multi 依次写入多个 Sink，遇到第一个错误即停止。
//
// 各 Sink 之间没有跨端事务：单个 Sink 内部的写入是原子的，但排在失败者之前的
// Sink 已经发布了本次结果，输出端之间会出现不一致。此时返回 *PartialWriteError，
// 其中列出已发布的 Sink，调用方据此决定重跑或人工处理。
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Write(ctx context.Context, runID string, results []core.RankedResult) error {
	published := make([]string, 0, len(m))
	for _, s := range m {
		if err := s.Write(ctx, runID, results); err != nil {
			if len(published) > 0 {
				logging.Error().Err(err).Str("run_id", runID).Str("failed", s.Name()).
					Strs("published", published).Msg("sink: outputs diverged")
			}
			return &PartialWriteError{Published: published, Failed: s.Name(), Err: err}
		}
		published = append(published, s.Name())
	}
	return nil
}

// PartialWriteError 说明 Multi 在第几个 Sink 失败，以及此前哪些 Sink 已经写入。
type PartialWriteError struct {
	Published []string
	Failed    string
	Err       error
}

func (e *PartialWriteError) Error() string {
	if len(e.Published) == 0 {
		return fmt.Sprintf("sink %s: %v", e.Failed, e.Err)
	}
	return fmt.Sprintf("sink %s: %v (already published: %s)", e.Failed, e.Err, strings.Join(e.Published, ", "))
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// Close 关闭全部 Sink，返回合并后的错误。
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sink %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func wrap(msg string, err error) error {
	return core.WrapDomainError(core.ModuleSink, core.ErrorCodeUnavailable, msg, err)
}
