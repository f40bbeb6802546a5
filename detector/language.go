package detector

import (
	"context"

	"github.com/abadojack/whatlanggo"

	"github.com/rushteam/revrank/core"
)

// ErrUndetectable 表示文本中没有可用于判断语言的字母。
var ErrUndetectable = core.NewDomainError(core.ModuleDetector, core.ErrorCodeUndetectable, "detector: language undetectable")

// LanguageIdentifier 识别文本语言，返回 ISO 639-1 代码。
// 无法识别时返回错误（而不是猜测一个代码），由调用方决定是否按保守策略丢弃。
type LanguageIdentifier interface {
	Identify(text string) (string, error)
}

// DefaultDisallowedLanguages 是默认不接受的语言代码。
var DefaultDisallowedLanguages = []string{"hi", "mr"}

// Language 是语言检测器：识别结果属于禁用语言集合即命中。
type Language struct {
	Identifier LanguageIdentifier
	Disallowed map[string]struct{}
}

// NewLanguage 创建语言检测器；disallowed 为空时使用 DefaultDisallowedLanguages。
func NewLanguage(identifier LanguageIdentifier, disallowed ...string) *Language {
	if identifier == nil {
		identifier = NewWhatlang()
	}
	if len(disallowed) == 0 {
		disallowed = DefaultDisallowedLanguages
	}
	set := make(map[string]struct{}, len(disallowed))
	for _, code := range disallowed {
		set[code] = struct{}{}
	}
	return &Language{Identifier: identifier, Disallowed: set}
}

func (d *Language) Name() string { return CategoryLanguage }

func (d *Language) Detect(_ context.Context, text string) (bool, error) {
	code, err := d.Identifier.Identify(text)
	if err != nil {
		return false, err
	}
	_, bad := d.Disallowed[code]
	return bad, nil
}

// Whatlang 基于 whatlanggo 的三元组模型识别语言。
//
// 默认排除迈蒂利语、博杰普尔语、尼泊尔语，天城文文本只在 hi / mr 之间判定。
type Whatlang struct {
	Options whatlanggo.Options
}

func NewWhatlang() *Whatlang {
	return &Whatlang{Options: whatlanggo.Options{
		Blacklist: map[whatlanggo.Lang]bool{
			whatlanggo.Mai: true,
			whatlanggo.Bho: true,
			whatlanggo.Nep: true,
		},
	}}
}

func (w *Whatlang) Identify(text string) (string, error) {
	info := whatlanggo.DetectWithOptions(text, w.Options)
	if info.Script == nil || info.Lang < 0 {
		return "", ErrUndetectable
	}
	if code := info.Lang.Iso6391(); code != "" {
		return code, nil
	}
	// 没有两字母代码的语言退回 ISO 639-3
	return info.Lang.Iso6393(), nil
}
