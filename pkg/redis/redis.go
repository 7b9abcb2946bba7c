package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient estructura para manejar conexiones con Redis
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// Nil error devuelto por Redis cuando una clave no existe
var Nil = redis.Nil

// NewRedisClient crea una nueva instancia del cliente Redis
func NewRedisClient(addr, password string, db int) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Verificar conexión
	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("❌ Error conectando a Redis: %v", err)
	}

	log.Println("✅ Conexión exitosa a Redis")

	return &RedisClient{
		client: rdb,
		ctx:    ctx,
	}
}

// Set guarda un valor con TTL opcional (0 = sin expiración)
func (r *RedisClient) Set(key, value string, expiration time.Duration) error {
	return r.client.Set(r.ctx, key, value, expiration).Err()
}

// Get obtiene un valor por clave
func (r *RedisClient) Get(key string) (string, error) {
	return r.client.Get(r.ctx, key).Result()
}

// Del elimina una clave
func (r *RedisClient) Del(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

// AddToSet agrega un miembro a un set
func (r *RedisClient) AddToSet(key string, member string) error {
	return r.client.SAdd(r.ctx, key, member).Err()
}

// RemoveFromSet elimina un miembro de un set
func (r *RedisClient) RemoveFromSet(key string, member string) error {
	return r.client.SRem(r.ctx, key, member).Err()
}

// GetSetMembers obtiene todos los miembros de un set
func (r *RedisClient) GetSetMembers(key string) ([]string, error) {
	return r.client.SMembers(r.ctx, key).Result()
}

// ScheduleAt agrega un miembro a la cola de envíos programados (sorted set),
// con el timestamp de entrega en milisegundos como score. La cola sobrevive
// reinicios del proceso.
func (r *RedisClient) ScheduleAt(key, member string, dueAtMs int64) error {
	return r.client.ZAdd(r.ctx, key, redis.Z{
		Score:  float64(dueAtMs),
		Member: member,
	}).Err()
}

// GetDue obtiene los miembros de la cola cuyo score ya venció (score <= nowMs)
func (r *RedisClient) GetDue(key string, nowMs int64) ([]string, error) {
	return r.client.ZRangeByScore(r.ctx, key, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", nowMs),
	}).Result()
}

// ClaimScheduled elimina un miembro de la cola; devuelve true solo si este
// proceso lo eliminó, lo que garantiza entrega a lo más una vez.
func (r *RedisClient) ClaimScheduled(key, member string) (bool, error) {
	removed, err := r.client.ZRem(r.ctx, key, member).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// Close cierra la conexión con Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// HealthCheck verifica que Redis esté funcionando
func (r *RedisClient) HealthCheck() error {
	_, err := r.client.Ping(r.ctx).Result()
	if err != nil {
		return fmt.Errorf("redis health check failed: %v", err)
	}
	return nil
}
