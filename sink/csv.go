package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rushteam/revrank/core"
)

// CSVHeader 是输出文件的表头。
var CSVHeader = []string{"group_key", "text", "score"}

// CSVSink 把结果写成 CSV。先写同目录下的临时文件并 fsync，再原子 rename 到目标路径，
// 读者要么看到旧文件，要么看到完整的新文件。
type CSVSink struct {
	Path string
}

func NewCSVSink(path string) *CSVSink { return &CSVSink{Path: path} }

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Write(ctx context.Context, _ string, results []core.RankedResult) (err error) {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return wrap("sink: create temp file in "+dir, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(CSVHeader); err != nil {
		return wrap("sink: write header", err)
	}
	for i, r := range results {
		if i%1024 == 0 {
			if err = ctx.Err(); err != nil {
				return err
			}
		}
		if err = w.Write([]string{r.GroupKey, r.Text, strconv.FormatFloat(r.Score, 'f', -1, 64)}); err != nil {
			return wrap("sink: write row", err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return wrap("sink: flush", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return wrap("sink: chmod", err)
	}
	if err = tmp.Sync(); err != nil {
		return wrap("sink: fsync", err)
	}
	if err = tmp.Close(); err != nil {
		return wrap("sink: close temp file", err)
	}
	if err = os.Rename(tmp.Name(), s.Path); err != nil {
		return wrap("sink: publish "+s.Path, err)
	}
	return nil
}

func (s *CSVSink) Close() error { return nil }
