package services

import "time"

// Store operaciones de persistencia que los servicios necesitan.
// *redis.RedisClient la implementa; los tests usan un almacén en memoria.
type Store interface {
	Set(key, value string, expiration time.Duration) error
	Get(key string) (string, error)
	AddToSet(key string, member string) error
	RemoveFromSet(key string, member string) error
	GetSetMembers(key string) ([]string, error)
	ScheduleAt(key, member string, dueAtMs int64) error
	GetDue(key string, nowMs int64) ([]string, error)
	ClaimScheduled(key, member string) (bool, error)
}
