package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// TTLs are short: unread counts go stale with every append, so the cache only
// smooths over poll bursts between invalidations.
const (
	UnreadTotalTTL = 30 * time.Second
	GroupListTTL   = 1 * time.Minute
)

// NotificationCache holds per-user unread aggregates.
// All methods are nil-safe so the service runs unchanged without Redis.
type NotificationCache struct {
	redis *RedisCache
}

func NewNotificationCache(redis *RedisCache) *NotificationCache {
	return &NotificationCache{redis: redis}
}

func unreadTotalKey(userID uint) string {
	return fmt.Sprintf("unread:total:%d", userID)
}

func groupListKey(userID uint) string {
	return fmt.Sprintf("notif:groups:%d", userID)
}

// GetUnreadTotal retrieves a cached total unread count
func (nc *NotificationCache) GetUnreadTotal(userID uint) (int64, bool) {
	if nc == nil || nc.redis == nil {
		return 0, false
	}
	data, err := nc.redis.Get(unreadTotalKey(userID))
	if err != nil || data == nil {
		return 0, false
	}

	var count int64
	if err := msgpack.Unmarshal(data, &count); err != nil {
		return 0, false
	}
	return count, true
}

// SetUnreadTotal caches the total unread count for a user
func (nc *NotificationCache) SetUnreadTotal(userID uint, count int64) error {
	if nc == nil || nc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(count)
	if err != nil {
		return err
	}
	return nc.redis.Set(unreadTotalKey(userID), data, UnreadTotalTTL)
}

// GetGroupList retrieves a cached notification list payload
func (nc *NotificationCache) GetGroupList(userID uint, out interface{}) bool {
	if nc == nil || nc.redis == nil {
		return false
	}
	data, err := nc.redis.Get(groupListKey(userID))
	if err != nil || data == nil {
		return false
	}
	return msgpack.Unmarshal(data, out) == nil
}

// SetGroupList caches the notification list payload for a user
func (nc *NotificationCache) SetGroupList(userID uint, payload interface{}) error {
	if nc == nil || nc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return err
	}
	return nc.redis.Set(groupListKey(userID), data, GroupListTTL)
}

// InvalidateUser drops every cached aggregate for one user
func (nc *NotificationCache) InvalidateUser(userID uint) error {
	if nc == nil || nc.redis == nil {
		return nil
	}
	if err := nc.redis.Delete(unreadTotalKey(userID)); err != nil {
		return err
	}
	return nc.redis.Delete(groupListKey(userID))
}

// InvalidateAll drops all cached notification aggregates. Used after a group
// append, where recomputing the affected member set would cost more than the
// cache saves.
func (nc *NotificationCache) InvalidateAll() error {
	if nc == nil || nc.redis == nil {
		return nil
	}
	if err := nc.redis.DeletePattern("unread:total:*"); err != nil {
		return err
	}
	return nc.redis.DeletePattern("notif:groups:*")
}
