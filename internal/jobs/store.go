package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	metaKeyPrefix   = "pdf:meta:"
	resultKeyPrefix = "pdf:result:"
)

// Store はジョブのステータスレコードと結果バイト列を保持します。
// 書き込みのたびにTTLが再設定され、期限切れのレコードは存在しない扱いになります。
type Store interface {
	PutStatus(ctx context.Context, jobID string, record *Record) error
	GetStatus(ctx context.Context, jobID string) (*Record, error)
	PutResult(ctx context.Context, jobID string, data []byte) error
	GetResult(ctx context.Context, jobID string) ([]byte, error)
	Delete(ctx context.Context, jobID string) (bool, error)
}

// RedisStore は Store のRedis実装です。
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore は RedisStore を作成します。
func NewStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
	}
}

// PutStatus はステータスレコードを保存します（TTLを再設定）。
func (s *RedisStore) PutStatus(ctx context.Context, jobID string, record *Record) error {
	if jobID == "" {
		return fmt.Errorf("jobID is required")
	}
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	record.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, metaKey(jobID), payload, s.ttl).Err()
}

// GetStatus はステータスレコードを取得します。存在しない場合は (nil, nil) を返します。
func (s *RedisStore) GetStatus(ctx context.Context, jobID string) (*Record, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID is required")
	}
	data, err := s.rdb.Get(ctx, metaKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// PutResult は結果のPDFバイト列を保存します（TTLを再設定）。
func (s *RedisStore) PutResult(ctx context.Context, jobID string, data []byte) error {
	if jobID == "" {
		return fmt.Errorf("jobID is required")
	}
	return s.rdb.Set(ctx, resultKey(jobID), data, s.ttl).Err()
}

// GetResult は結果バイト列を取得します。存在しない場合は (nil, nil) を返します。
func (s *RedisStore) GetResult(ctx context.Context, jobID string) ([]byte, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID is required")
	}
	data, err := s.rdb.Get(ctx, resultKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Delete はステータスと結果をまとめて削除します。
// いずれかが存在していた場合に true を返します。
func (s *RedisStore) Delete(ctx context.Context, jobID string) (bool, error) {
	if jobID == "" {
		return false, fmt.Errorf("jobID is required")
	}
	deleted, err := s.rdb.Del(ctx, metaKey(jobID), resultKey(jobID)).Result()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

func metaKey(id string) string {
	return metaKeyPrefix + id
}

func resultKey(id string) string {
	return resultKeyPrefix + id
}
