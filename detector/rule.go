package detector

import (
	"context"

	"github.com/rushteam/revrank/pkg/dsl"
)

// Rule 是基于 CEL 表达式的检测器，表达式为 true 即命中。
//
// 示例：
//
//	length < 2
//	words.exists(w, w in ["http", "https", "www"])
type Rule struct {
	name string
	prg  *dsl.Program
}

// NewRule 编译表达式并创建检测器。
func NewRule(name, expr string) (*Rule, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Rule{name: name, prg: prg}, nil
}

func (d *Rule) Name() string { return d.name }

func (d *Rule) Detect(_ context.Context, text string) (bool, error) {
	return d.prg.Evaluate(text)
}
