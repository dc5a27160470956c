package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"invite-social/apps/invitation-service/model"
	"invite-social/pkg/logger"
)

// KV 邀请缓存依赖的键值存储契约，*redis.RedisClient 满足该接口
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// invitationCache 邀请列表缓存
//
// 以 all_to_user_<id或转义邮箱> / all_from_user_<id> 为键缓存某用户的
// 完整邀请集合，读路径在内存中过滤。缓存故障不致命：未命中或出错时
// 回源数据库，只记日志。
type invitationCache struct {
	kv  KV
	log logger.Logger
}

func newInvitationCache(kv KV, log logger.Logger) *invitationCache {
	return &invitationCache{kv: kv, log: log}
}

func toUserKey(userID int64) string {
	return model.CacheNamespace + ":" + model.CacheKeyAllToUser + strconv.FormatInt(userID, 10)
}

func toEmailKey(email string) string {
	return model.CacheNamespace + ":" + model.CacheKeyAllToUser + url.QueryEscape(email)
}

func fromUserKey(inviterID int64) string {
	return model.CacheNamespace + ":" + model.CacheKeyAllFromUser + strconv.FormatInt(inviterID, 10)
}

// get 读取缓存的邀请集合，第二个返回值表示是否命中
func (c *invitationCache) get(ctx context.Context, key string) ([]*model.Invitation, bool) {
	if c.kv == nil {
		return nil, false
	}
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn(ctx, "Invitation cache read failed",
				logger.F("key", key),
				logger.F("error", err.Error()))
		}
		return nil, false
	}
	var invitations []*model.Invitation
	if err := json.Unmarshal([]byte(raw), &invitations); err != nil {
		c.log.Warn(ctx, "Invitation cache entry corrupt, discarding",
			logger.F("key", key),
			logger.F("error", err.Error()))
		return nil, false
	}
	return invitations, true
}

// set 写入缓存的邀请集合
func (c *invitationCache) set(ctx context.Context, key string, invitations []*model.Invitation) {
	if c.kv == nil {
		return
	}
	raw, err := json.Marshal(invitations)
	if err != nil {
		return
	}
	if err := c.kv.Set(ctx, key, string(raw), model.CacheExpireUserInvitations*time.Second); err != nil {
		c.log.Warn(ctx, "Invitation cache write failed",
			logger.F("key", key),
			logger.F("error", err.Error()))
	}
}

// invalidate 按受影响的记录集合清除相关用户的缓存键
//
// 更新/删除场景必须用变更前的匹配集合调用，否则受影响用户无法定位。
func (c *invitationCache) invalidate(ctx context.Context, invitations []*model.Invitation) {
	if c.kv == nil || len(invitations) == 0 {
		return
	}
	keys := make(map[string]struct{})
	for _, inv := range invitations {
		// 邮箱邀请的被邀请人可能还不是注册用户
		if inv.UserID > 0 {
			keys[toUserKey(inv.UserID)] = struct{}{}
		}
		if inv.InviteeEmail != "" {
			keys[toEmailKey(inv.InviteeEmail)] = struct{}{}
		}
		// 申请没有邀请人
		if inv.InviterID > 0 {
			keys[fromUserKey(inv.InviterID)] = struct{}{}
		}
	}
	for key := range keys {
		if err := c.kv.Del(ctx, key); err != nil {
			c.log.Warn(ctx, "Invitation cache invalidation failed",
				logger.F("key", key),
				logger.F("error", err.Error()))
		}
	}
}
