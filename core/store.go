package core

import "context"

// Store 是结果发布所用的键值存储，由 store 包实现（内存 / Redis）。
type Store interface {
	// Name 返回后端名称（日志/指标用）
	Name() string

	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入 key；ttl 单位为秒，缺省或 <=0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除 key，不区分数据结构
	Delete(ctx context.Context, key string) error

	Close() error
}

// KeyValueStore 在 Store 之上增加有序集合、哈希与原子改名，
// 用于按组发布排序结果：先写临时 key，再 Rename 覆盖正式 key。
type KeyValueStore interface {
	Store

	// ZAdd 一次写入多个有序集合成员，已存在的成员更新分数
	ZAdd(ctx context.Context, key string, members ...ZMember) error

	// ZRange 按分数降序返回下标区间 [start, stop] 的成员，stop 为 -1 表示到末尾
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	ZScore(ctx context.Context, key string, member string) (float64, error)

	// HSet 一次写入多个哈希字段
	HSet(ctx context.Context, key string, fields map[string][]byte) error
	HGet(ctx context.Context, key, field string) ([]byte, error)
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)

	// Rename 原子地把 src 改名为 dst，dst 已存在时被覆盖；src 不存在返回 ErrStoreNotFound
	Rename(ctx context.Context, src, dst string) error
}

// ZMember 是有序集合中的一个成员。
type ZMember struct {
	Member string
	Score  float64
}

var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

// IsStoreNotFound 判断是否为存储层的 key 不存在。
func IsStoreNotFound(err error) bool {
	if de := GetDomainError(err); de != nil {
		return de.Module == ModuleStore && de.Code == ErrorCodeNotFound
	}
	return false
}
