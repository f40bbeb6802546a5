package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/detector"
)

// EnvPrefix 是环境变量前缀：REVRANK_RANK_GROUP_TIMEOUT -> rank.group_timeout。
const EnvPrefix = "REVRANK_"

// Settings 是一次运行的全部参数。
// 加载顺序（后者覆盖前者）：默认值 -> YAML 文件 -> REVRANK_* 环境变量 -> 命令行。
type Settings struct {
	Input    InputSettings   `koanf:"input"`
	Model    ModelSettings   `koanf:"model"`
	Filter   FilterSettings  `koanf:"filter"`
	Feature  FeatureSettings `koanf:"feature"`
	Rank     RankSettings    `koanf:"rank"`
	Output   OutputSettings  `koanf:"output"`
	Eval     EvalSettings    `koanf:"eval"`
	Log      LogSettings     `koanf:"log"`
	Metrics  MetricsSettings `koanf:"metrics"`
	Pipeline string          `koanf:"pipeline"` // 可选的 Pipeline 拓扑 YAML，为空时使用默认拓扑
}

type InputSettings struct {
	Path        string `koanf:"path" validate:"required"`
	GroupColumn string `koanf:"group_column"`
	TextColumn  string `koanf:"text_column"`
	LabelColumn string `koanf:"label_column"`
}

type ModelSettings struct {
	Kind       string        `koanf:"kind" validate:"oneof=linear rpc onnx"`
	Path       string        `koanf:"path" validate:"required_unless=Kind rpc"`
	Endpoint   string        `koanf:"endpoint" validate:"required_if=Kind rpc"`
	Timeout    time.Duration `koanf:"timeout" validate:"min=0"`
	RateLimit  float64       `koanf:"rate_limit" validate:"min=0"`
	ORTLibrary string        `koanf:"ort_library"`
}

type FilterSettings struct {
	ResourcesDir        string   `koanf:"resources_dir" validate:"required"`
	SpellThreshold      float64  `koanf:"spell_threshold" validate:"min=0,max=1"`
	DisallowedLanguages []string `koanf:"disallowed_languages"`
	Workers             int      `koanf:"workers" validate:"min=0"`
}

type FeatureSettings struct {
	Workers     int           `koanf:"workers" validate:"min=0"`
	LexiconPath string        `koanf:"lexicon_path"`
	NounSource  string        `koanf:"noun_source" validate:"oneof=pos feast"`
	Feast       FeastSettings `koanf:"feast"`
}

// FeastSettings 仅在 noun_source=feast 时生效。Endpoint 非空时走 feature server 的 HTTP 接口，
// 否则用 Host/Port 走 gRPC。
type FeastSettings struct {
	Endpoint string        `koanf:"endpoint" validate:"omitempty,url"`
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port" validate:"min=0,max=65535"`
	Project  string        `koanf:"project"`
	Feature  string        `koanf:"feature"`
	Token    string        `koanf:"token"`
	TLS      bool          `koanf:"tls"`
	Timeout  time.Duration `koanf:"timeout" validate:"min=0"`
}

type RankSettings struct {
	Workers       int           `koanf:"workers" validate:"min=0"`
	AnchorWorkers int           `koanf:"anchor_workers" validate:"min=0"`
	GroupTimeout  time.Duration `koanf:"group_timeout" validate:"min=0"`
	MaxRetries    int           `koanf:"max_retries" validate:"min=0,max=10"`
	RetryBackoff  time.Duration `koanf:"retry_backoff" validate:"min=0"`
	Denominator   string        `koanf:"denominator" validate:"oneof=n n-1"`
}

type OutputSettings struct {
	CSVPath       string `koanf:"csv_path"`
	RedisAddr     string `koanf:"redis_addr" validate:"omitempty,hostname_port"`
	RedisDB       int    `koanf:"redis_db" validate:"min=0"`
	RedisPassword string `koanf:"redis_password"`
	RedisPrefix   string `koanf:"redis_prefix"`
	SQLitePath    string `koanf:"sqlite_path"`
	TopN          int    `koanf:"top_n" validate:"min=0"` // 每组只发布前 N 条，0 表示全部
}

type EvalSettings struct {
	Enabled bool `koanf:"enabled"`
}

type LogSettings struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type MetricsSettings struct {
	Textfile string `koanf:"textfile"`
}

// DefaultSettings 返回默认参数。
func DefaultSettings() *Settings {
	return &Settings{
		Model: ModelSettings{
			Kind:    "linear",
			Path:    "resources/model.json",
			Timeout: 5 * time.Second,
		},
		Filter: FilterSettings{
			ResourcesDir:        "resources",
			DisallowedLanguages: detector.DefaultDisallowedLanguages,
		},
		Feature: FeatureSettings{
			NounSource: "pos",
			Feast: FeastSettings{
				Port:    6565,
				Feature: "review_nlp:noun_score",
				Timeout: 10 * time.Second,
			},
		},
		Rank: RankSettings{
			GroupTimeout: 2 * time.Minute,
			MaxRetries:   2,
			RetryBackoff: 200 * time.Millisecond,
			Denominator:  "n",
		},
		Output: OutputSettings{
			CSVPath:     "ranked_reviews.csv",
			RedisPrefix: "revrank",
		},
		Log: LogSettings{
			Level:  "info",
			Format: "json",
		},
	}
}

// sliceKeys 是环境变量中以逗号分隔的列表字段。
var sliceKeys = []string{
	"filter.disallowed_languages",
}

// Load 加载参数。path 为空时跳过文件层；overrides 的 key 为点分路径（如 "model.path"），
// 通常来自命令行。任何错误都是 INVALID_CONFIG。
func Load(path string, overrides map[string]any) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "config: load defaults", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "config: load "+path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "config: load env", err)
	}
	if err := splitSlices(k); err != nil {
		return nil, err
	}
	for key, val := range overrides {
		if err := k.Set(key, val); err != nil {
			return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "config: override "+key, err)
		}
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "config: unmarshal", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// envKey 把 REVRANK_RANK_GROUP_TIMEOUT 转成 rank.group_timeout：第一个下划线是分节符，
// feature.feast_* 再下沉一层（REVRANK_FEATURE_FEAST_HOST -> feature.feast.host）。
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.Replace(key, "_", ".", 1)
	if rest, ok := strings.CutPrefix(key, "feature.feast_"); ok {
		key = "feature.feast." + rest
	}
	return key
}

func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "config: set "+key, err)
		}
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate 校验参数取值。错误信息使用配置路径（如 model.endpoint）。
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "config: validate", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Settings.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return core.ConfigError("config: %s", strings.Join(msgs, "; "))
}

// CheckResources 在处理任何数据之前确认所有依赖文件存在。
func (s *Settings) CheckResources() error {
	files := []string{
		s.Input.Path,
		filepath.Join(s.Filter.ResourcesDir, detector.GibberishModelFile),
		filepath.Join(s.Filter.ResourcesDir, detector.SwearEnglishFile),
		filepath.Join(s.Filter.ResourcesDir, detector.SwearHindiFile),
		filepath.Join(s.Filter.ResourcesDir, detector.BrandsFile),
	}
	if s.Model.Kind != "rpc" {
		files = append(files, s.Model.Path)
	}
	if s.Feature.LexiconPath != "" {
		files = append(files, s.Feature.LexiconPath)
	}
	if s.Pipeline != "" {
		files = append(files, s.Pipeline)
	}

	var missing []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return core.ConfigError("config: missing resources: %s", strings.Join(missing, ", "))
	}
	if fs := s.Feature.Feast; s.Feature.NounSource == "feast" && ((fs.Host == "" && fs.Endpoint == "") || fs.Feature == "") {
		return core.ConfigError("config: feature.feast.endpoint or host, and feature.feast.feature, are required for noun_source=feast")
	}
	return nil
}
