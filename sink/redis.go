package sink

import (
	"context"
	"strconv"

	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/logging"
)

// DefaultKeyPrefix 是 Redis 中排序结果 key 的默认前缀。
const DefaultKeyPrefix = "revrank"

// RedisSink 把每组结果发布为一个有序集合与一个文本哈希：
//
//	ZADD <prefix>:<group> <score> <item_id>
//	HSET <prefix>:<group>:text <item_id> <text>
//	SET  <prefix>:run <run_id>
//
// 每组先写入带 run id 的临时 key，全部写完后再 RENAME 覆盖正式 key，
// 读方不会看到写了一半的组，也不会混入上一次运行的评论。
type RedisSink struct {
	Store  core.KeyValueStore
	Prefix string
}

func NewRedisSink(store core.KeyValueStore, prefix string) *RedisSink {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisSink{Store: store, Prefix: prefix}
}

func (s *RedisSink) Name() string { return "redis:" + s.Store.Name() }

// RankKey 返回组的有序集合 key。
func (s *RedisSink) RankKey(group string) string { return s.Prefix + ":" + group }

// TextKey 返回组的文本哈希 key。
func (s *RedisSink) TextKey(group string) string { return s.Prefix + ":" + group + ":text" }

func staging(key, runID string) string { return key + ":staging:" + runID }

type groupBatch struct {
	key     string
	members []core.ZMember
	texts   map[string][]byte
}

// batches 按组聚合结果，组的顺序沿用结果中的出现顺序。
func batches(results []core.RankedResult) []*groupBatch {
	var out []*groupBatch
	idx := make(map[string]*groupBatch)
	for _, r := range results {
		b, ok := idx[r.GroupKey]
		if !ok {
			b = &groupBatch{key: r.GroupKey, texts: make(map[string][]byte)}
			idx[r.GroupKey] = b
			out = append(out, b)
		}
		member := strconv.Itoa(r.ID)
		b.members = append(b.members, core.ZMember{Member: member, Score: r.Score})
		b.texts[member] = []byte(r.Text)
	}
	return out
}

func (s *RedisSink) Write(ctx context.Context, runID string, results []core.RankedResult) (err error) {
	groups := batches(results)
	defer func() {
		if err == nil {
			return
		}
		// 尽力清理临时 key，失败只记日志
		for _, g := range groups {
			for _, key := range []string{staging(s.RankKey(g.key), runID), staging(s.TextKey(g.key), runID)} {
				if derr := s.Store.Delete(context.WithoutCancel(ctx), key); derr != nil {
					logging.Warn().Err(derr).Str("key", key).Msg("sink: drop staging key failed")
				}
			}
		}
	}()

	for _, g := range groups {
		if err := s.Store.ZAdd(ctx, staging(s.RankKey(g.key), runID), g.members...); err != nil {
			return wrap("sink: zadd "+s.RankKey(g.key), err)
		}
		if err := s.Store.HSet(ctx, staging(s.TextKey(g.key), runID), g.texts); err != nil {
			return wrap("sink: hset "+s.TextKey(g.key), err)
		}
	}

	// 先换文本再换排名：读到新排名时文本一定已就绪
	for _, g := range groups {
		if err := s.Store.Rename(ctx, staging(s.TextKey(g.key), runID), s.TextKey(g.key)); err != nil {
			return wrap("sink: publish "+s.TextKey(g.key), err)
		}
		if err := s.Store.Rename(ctx, staging(s.RankKey(g.key), runID), s.RankKey(g.key)); err != nil {
			return wrap("sink: publish "+s.RankKey(g.key), err)
		}
	}
	if err := s.Store.Set(ctx, s.Prefix+":run", []byte(runID)); err != nil {
		return wrap("sink: set run id", err)
	}
	return nil
}

func (s *RedisSink) Close() error { return s.Store.Close() }
