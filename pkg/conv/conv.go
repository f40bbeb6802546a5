// Package conv 从 YAML/JSON 解码得到的 map[string]any 中按类型读取节点参数。
//
// 解码器给出的数字类型不固定（yaml.v3 给 int，JSON 给 float64），
// 这里的读取函数对数字写法一律宽容，类型不符或缺失时返回调用方给的默认值。
package conv

import (
	"strconv"
	"strings"
	"time"
)

// ToFloat64 把常见数字类型转为 float64，bool 视为 1/0。
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// ConfigGet 按 key 取 T 类型的值。
func ConfigGet[T any](m map[string]any, key string, def T) T {
	if v, ok := m[key].(T); ok {
		return v
	}
	return def
}

// ConfigGetInt 取整数，接受 3、3.0 两种写法。
func ConfigGetInt(m map[string]any, key string, def int) int {
	if _, isBool := m[key].(bool); isBool {
		return def
	}
	if f, ok := ToFloat64(m[key]); ok {
		return int(f)
	}
	return def
}

// ConfigGetFloat64 取浮点数，接受整数写法。
func ConfigGetFloat64(m map[string]any, key string, def float64) float64 {
	if f, ok := ToFloat64(m[key]); ok {
		return f
	}
	return def
}

// ConfigGetDuration 取时长："30s" 之类按 time.ParseDuration 解析，纯数字按秒计。
func ConfigGetDuration(m map[string]any, key string, def time.Duration) time.Duration {
	switch val := m[key].(type) {
	case time.Duration:
		return val
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	default:
		if f, ok := ToFloat64(val); ok {
			return time.Duration(f * float64(time.Second))
		}
	}
	return def
}

// ConfigGetStrings 取字符串列表。接受 []string、[]any（数字按整数格式化）
// 以及逗号分隔的字符串；不存在时返回 nil。
func ConfigGetStrings(m map[string]any, key string) []string {
	switch val := m[key].(type) {
	case []string:
		return val
	case string:
		var out []string
		for _, s := range strings.Split(val, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			switch x := e.(type) {
			case string:
				out = append(out, x)
			case bool:
			default:
				if f, ok := ToFloat64(x); ok {
					out = append(out, strconv.FormatFloat(f, 'f', -1, 64))
				}
			}
		}
		return out
	}
	return nil
}

// ConfigGetMap 取子 map。
func ConfigGetMap(m map[string]any, key string) map[string]any {
	sub, _ := m[key].(map[string]any)
	return sub
}

// ConfigGetMaps 取 map 列表（如 extra: [{type: rule, ...}]），非 map 元素被跳过。
func ConfigGetMaps(m map[string]any, key string) []map[string]any {
	switch val := m[key].(type) {
	case []map[string]any:
		return val
	case []any:
		out := make([]map[string]any, 0, len(val))
		for _, e := range val {
			if sub, ok := e.(map[string]any); ok {
				out = append(out, sub)
			}
		}
		return out
	}
	return nil
}
