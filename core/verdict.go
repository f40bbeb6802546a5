package core

// Verdict 是单条评论的过滤结论：命中的检测器类别集合。
// Categories 为空即保留；非空即丢弃。
// Failed 记录执行出错的检测器（出错按保守策略同时计入 Categories）。
type Verdict struct {
	Categories []string
	Failed     []string
}

// Bad 报告该评论是否应被丢弃。
func (v Verdict) Bad() bool {
	return len(v.Categories) > 0
}

// Has 报告是否命中某个类别。
func (v Verdict) Has(category string) bool {
	for _, c := range v.Categories {
		if c == category {
			return true
		}
	}
	return false
}
