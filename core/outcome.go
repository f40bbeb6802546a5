package core

// Outcome 是一次有序比较 (anchor, contender) 的分类器输出。
// 契约只定义 0/1 两个值，没有平局；其他取值视为未定义结果，不计入胜负。
type Outcome int

const (
	OutcomeLose Outcome = 0 // anchor 输（contender 胜）
	OutcomeWin  Outcome = 1 // anchor 胜
)

// Defined 报告该输出是否属于契约内的取值。
func (o Outcome) Defined() bool {
	return o == OutcomeWin || o == OutcomeLose
}
