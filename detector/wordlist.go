package detector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/pkg/textutil"
)

// WordList 是词表检测器：文本（规范化后）包含任一词条即命中。
// 单词按词边界匹配，多词短语按连续词序列匹配。
type WordList struct {
	name    string
	words   map[string]struct{}
	phrases []string
}

// NewWordList 创建词表检测器，词条同样经过规范化。
func NewWordList(name string, entries []string) *WordList {
	d := &WordList{name: name, words: make(map[string]struct{})}
	for _, e := range entries {
		ws := textutil.Words(e)
		switch len(ws) {
		case 0:
		case 1:
			d.words[ws[0]] = struct{}{}
		default:
			d.phrases = append(d.phrases, " "+strings.Join(ws, " ")+" ")
		}
	}
	return d
}

// LoadWordList 从文件加载词表：每行一个词条，空行与 # 开头的行忽略。
func LoadWordList(name, path string) (*WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDetector, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("detector: open word list %s", path), err)
	}
	defer f.Close()

	var entries []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := sc.Err(); err != nil {
		return nil, core.WrapDomainError(core.ModuleDetector, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("detector: read word list %s", path), err)
	}
	return NewWordList(name, entries), nil
}

func (d *WordList) Name() string { return d.name }

// Len 返回词条数量。
func (d *WordList) Len() int { return len(d.words) + len(d.phrases) }

func (d *WordList) Detect(_ context.Context, text string) (bool, error) {
	ws := textutil.Words(text)
	for _, w := range ws {
		if _, ok := d.words[w]; ok {
			return true, nil
		}
	}
	if len(d.phrases) == 0 || len(ws) < 2 {
		return false, nil
	}
	joined := " " + strings.Join(ws, " ") + " "
	for _, p := range d.phrases {
		if strings.Contains(joined, p) {
			return true, nil
		}
	}
	return false, nil
}
