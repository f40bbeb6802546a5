package detector

import "path/filepath"

// 资源目录下的词表文件名。
const (
	SwearEnglishFile = "swear_en.txt"
	SwearHindiFile   = "swear_hi.txt"
	BrandsFile       = "competitor_brands.txt"
)

// StandardOptions 是标准检测器组的构建参数。
type StandardOptions struct {
	ResourcesDir        string
	SpellThreshold      float64
	DisallowedLanguages []string
	LanguageIdentifier  LanguageIdentifier
}

// Standard 构建四类标准检测器：语言、乱码、脏话（英文 + 印地语）、竞品品牌。
// 任一资源缺失或格式错误都直接返回错误，调用方应在启动阶段失败。
func Standard(opts StandardOptions) ([]Detector, error) {
	gib, err := NewGibberish(opts.ResourcesDir, opts.SpellThreshold)
	if err != nil {
		return nil, err
	}
	swearEN, err := LoadWordList("swear_en", filepath.Join(opts.ResourcesDir, SwearEnglishFile))
	if err != nil {
		return nil, err
	}
	swearHI, err := LoadWordList("swear_hi", filepath.Join(opts.ResourcesDir, SwearHindiFile))
	if err != nil {
		return nil, err
	}
	brands, err := LoadWordList(CategoryCompetitor, filepath.Join(opts.ResourcesDir, BrandsFile))
	if err != nil {
		return nil, err
	}
	return []Detector{
		NewLanguage(opts.LanguageIdentifier, opts.DisallowedLanguages...),
		gib,
		NewAnyOf(CategorySwear, swearEN, swearHI),
		brands,
	}, nil
}
