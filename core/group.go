package core

import "sort"

// Group 是共享同一 GroupKey 的 items 视图，不拥有 items。
// 排序与词表计算都以 Group 为边界，不跨组。
type Group struct {
	Key   string
	Items []*Item
}

// GroupItems 按 GroupKey 切分 items。
// 组按 key 升序返回；组内保持输入顺序。nil item 被跳过。
func GroupItems(items []*Item) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, it := range items {
		if it == nil {
			continue
		}
		i, ok := index[it.GroupKey]
		if !ok {
			i = len(groups)
			index[it.GroupKey] = i
			groups = append(groups, Group{Key: it.GroupKey})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// SortRanked 给出排序结果的全序：GroupKey 升序，Score 降序，同分按 ID 升序。
func SortRanked(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.GroupKey != b.GroupKey {
			return a.GroupKey < b.GroupKey
		}
		return RankedBefore(a, b)
	})
}

// RankedBefore 是组内排序规则：Score 降序，同分时 ID 小者在前。
func RankedBefore(a, b *Item) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}
