package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/revrank/core"
)

// RedisOptions 是连接参数，零值字段使用 go-redis 默认值。
type RedisOptions struct {
	Addr        string
	DB          int
	Password    string
	DialTimeout time.Duration
}

// RedisStore 把排序结果发布到 Redis，供线上服务按组读取。
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 建立连接并 PING 一次；连不上属于配置错误，在处理任何数据前暴露。
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		DB:          opts.DB,
		Password:    opts.Password,
		DialTimeout: opts.DialTimeout,
	})
	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInvalidConfig, "store: redis "+opts.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient 包装已有的客户端，不做连通性检查。
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// missing 把 redis.Nil 与 RENAME 的 "no such key" 统一为 ErrStoreNotFound。
func missing(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil), strings.Contains(err.Error(), "no such key"):
		return core.ErrStoreNotFound
	default:
		return err
	}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	return val, missing(err)
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	var exp time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		exp = time.Duration(ttl[0]) * time.Second
	}
	return r.client.Set(ctx, key, value, exp).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// ZAdd 以单条 ZADD 写入全部成员。
func (r *RedisStore) ZAdd(ctx context.Context, key string, members ...core.ZMember) error {
	if len(members) == 0 {
		return nil
	}
	zs := make([]redis.Z, len(members))
	for i, m := range members {
		zs[i] = redis.Z{Score: m.Score, Member: m.Member}
	}
	return r.client.ZAdd(ctx, key, zs...).Err()
}

// ZRange 对应 ZREVRANGE：分数高的在前。
func (r *RedisStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.client.ZRevRange(ctx, key, start, stop).Result()
}

func (r *RedisStore) ZScore(ctx context.Context, key string, member string) (float64, error) {
	score, err := r.client.ZScore(ctx, key, member).Result()
	return score, missing(err)
}

// HSet 以单条 HSET 写入全部字段。
func (r *RedisStore) HSet(ctx context.Context, key string, fields map[string][]byte) error {
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, 2*len(fields))
	for f, v := range fields {
		args = append(args, f, v)
	}
	return r.client.HSet(ctx, key, args...).Err()
}

func (r *RedisStore) HGet(ctx context.Context, key, field string) ([]byte, error) {
	val, err := r.client.HGet(ctx, key, field).Bytes()
	return val, missing(err)
}

func (r *RedisStore) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	vals, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(vals))
	for k, v := range vals {
		out[k] = []byte(v)
	}
	return out, nil
}

func (r *RedisStore) Rename(ctx context.Context, src, dst string) error {
	return missing(r.client.Rename(ctx, src, dst).Err())
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ core.KeyValueStore = (*RedisStore)(nil)
