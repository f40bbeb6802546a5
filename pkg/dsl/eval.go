package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/revrank/pkg/textutil"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义规则可见的变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("text", cel.StringType),
		cel.Variable("tokens", cel.ListType(cel.StringType)),
		cel.Variable("words", cel.ListType(cel.StringType)),
		cel.Variable("length", cel.IntType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译好的文本规则，使用 CEL (Common Expression Language) 实现。
// 编译一次、并发求值：cel.Program 本身是线程安全的。
//
// 规则可见的变量：
//   - text：原文
//   - tokens：按空白切分的原文 token
//   - words：规范化后的词（小写、去标点）
//   - length：tokens 数量
//
// 示例：
//   - `length < 2` → 过短评论
//   - `words.exists(w, w == "http" || w == "https")` → 含链接
//   - `text.matches("^[0-9 ]+$")` → 纯数字
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译一条返回布尔值的规则表达式。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must return bool, got %v", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Expr 返回规则原文。
func (p *Program) Expr() string { return p.expr }

// Evaluate 对一段文本求值。
func (p *Program) Evaluate(text string) (bool, error) {
	tokens := textutil.Tokens(text)
	input := map[string]any{
		"text":   text,
		"tokens": tokens,
		"words":  textutil.Words(text),
		"length": int64(len(tokens)),
	}

	out, _, err := p.prg.Eval(input)
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}
