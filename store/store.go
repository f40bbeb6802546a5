// Package store 提供 core.Store / core.KeyValueStore 的实现：
// 内存版用于测试与本地运行，Redis 版用于发布排序结果。
//
// 示例：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	kv, err := store.NewRedisStore(store.RedisOptions{Addr: "localhost:6379"})
package store

import "github.com/rushteam/revrank/core"

// ErrNotFound 是 core.ErrStoreNotFound 的别名。
var ErrNotFound = core.ErrStoreNotFound
