package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"memo-engine-sol/internal/parser"
	"memo-engine-sol/pkg/logger"
)

const defaultProfileTTL = 10 * time.Minute

// ProfileStoreOption 构造两级 profile 缓存所需的参数
type ProfileStoreOption struct {
	Network  string        // 缓存键的网络段，不同网络的数据互不串扰
	Addr     string        // Redis 地址，留空则只用内存层
	Password string
	DB       int
	TTL      time.Duration // <=0 时取默认 10 分钟
}

type hotEntry struct {
	profile  *parser.Profile
	expireAt time.Time
}

// ProfileStore 是进程内热表 + 可选 Redis 的两级 profile 缓存。
// Redis 故障只降级为内存命中，缓存层的任何异常都不会上升为业务错误。
type ProfileStore struct {
	mu      sync.RWMutex
	hot     map[string]hotEntry
	rdb     *redis.Client // nil 表示纯内存模式
	ttl     time.Duration
	network string
}

func NewProfileStore(opt ProfileStoreOption) *ProfileStore {
	ttl := opt.TTL
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}

	var rdb *redis.Client
	if opt.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     opt.Addr,
			Password: opt.Password,
			DB:       opt.DB,
		})
	}

	return &ProfileStore{
		hot:     make(map[string]hotEntry),
		rdb:     rdb,
		ttl:     ttl,
		network: opt.Network,
	}
}

func (s *ProfileStore) key(user string) string {
	return fmt.Sprintf("profile:%s:%s", s.network, user)
}

// Get 先查热表再查 Redis，Redis 命中会回填热表
func (s *ProfileStore) Get(ctx context.Context, user string) (*parser.Profile, bool) {
	s.mu.RLock()
	entry, ok := s.hot[user]
	s.mu.RUnlock()
	if ok {
		if time.Now().Before(entry.expireAt) {
			return entry.profile, true
		}
		s.mu.Lock()
		delete(s.hot, user)
		s.mu.Unlock()
	}

	if s.rdb == nil {
		return nil, false
	}

	raw, err := s.rdb.Get(ctx, s.key(user)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("[ProfileCache] redis get %s: %v", user, err)
		}
		return nil, false
	}
	var p parser.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.Warnf("[ProfileCache] corrupt cache entry for %s: %v", user, err)
		return nil, false
	}

	s.mu.Lock()
	s.hot[user] = hotEntry{profile: &p, expireAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return &p, true
}

// Set 同时写热表与 Redis
func (s *ProfileStore) Set(ctx context.Context, user string, p *parser.Profile) {
	if p == nil {
		return
	}

	s.mu.Lock()
	s.hot[user] = hotEntry{profile: p, expireAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		logger.Warnf("[ProfileCache] marshal profile %s: %v", user, err)
		return
	}
	if err := s.rdb.Set(ctx, s.key(user), raw, s.ttl).Err(); err != nil {
		logger.Warnf("[ProfileCache] redis set %s: %v", user, err)
	}
}

// Invalidate 在 profile 更新或删除后清掉两级缓存
func (s *ProfileStore) Invalidate(ctx context.Context, user string) {
	s.mu.Lock()
	delete(s.hot, user)
	s.mu.Unlock()

	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, s.key(user)).Err(); err != nil {
		logger.Warnf("[ProfileCache] redis del %s: %v", user, err)
	}
}

// GetBatch 返回命中的条目，未命中的键不出现在结果里。
// 热表逐个查，剩余的合并成一次 MGET。
func (s *ProfileStore) GetBatch(ctx context.Context, users []string) map[string]*parser.Profile {
	found := make(map[string]*parser.Profile, len(users))
	var misses []string

	now := time.Now()
	s.mu.RLock()
	for _, user := range users {
		if entry, ok := s.hot[user]; ok && now.Before(entry.expireAt) {
			found[user] = entry.profile
		} else {
			misses = append(misses, user)
		}
	}
	s.mu.RUnlock()

	if s.rdb == nil || len(misses) == 0 {
		return found
	}

	keys := make([]string, len(misses))
	for i, user := range misses {
		keys[i] = s.key(user)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warnf("[ProfileCache] redis mget %d keys: %v", len(keys), err)
		return found
	}

	s.mu.Lock()
	for i, value := range values {
		text, ok := value.(string)
		if !ok {
			continue
		}
		var p parser.Profile
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			continue
		}
		found[misses[i]] = &p
		s.hot[misses[i]] = hotEntry{profile: &p, expireAt: time.Now().Add(s.ttl)}
	}
	s.mu.Unlock()
	return found
}

// Close 释放 Redis 连接，纯内存模式下为空操作
func (s *ProfileStore) Close() error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
