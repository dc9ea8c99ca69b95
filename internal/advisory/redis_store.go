package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

const (
	fieldEvaluationID = "evaluation_id"
	fieldAdvisory     = "advisory"
)

// completeScript writes the advisory only while the stored identity matches.
// KEYS[1] slot hash, ARGV[1] evaluation id, ARGV[2] advisory JSON, ARGV[3] ttl ms.
var completeScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'evaluation_id') ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'advisory', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

type RedisStoreConfig struct {
	KeyPrefix string        // e.g. "planner"
	TTL       time.Duration // 0 keeps slots until cleared
}

type redisStore struct {
	client *redis.Client
	cfg    RedisStoreConfig
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, cfg RedisStoreConfig) Store {
	return &redisStore{client: client, cfg: cfg, now: time.Now}
}

func (s *redisStore) key(sessionID int64) string {
	return fmt.Sprintf("%s:advisory:%d", s.cfg.KeyPrefix, sessionID)
}

func (s *redisStore) Begin(ctx context.Context, sessionID, evaluationID int64) error {
	raw, err := json.Marshal(pending(sessionID, evaluationID, s.now()))
	if err != nil {
		return fmt.Errorf("encoding advisory: %w", err)
	}

	key := s.key(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldEvaluationID, strconv.FormatInt(evaluationID, 10),
			fieldAdvisory, raw)
		if s.cfg.TTL > 0 {
			pipe.PExpire(ctx, key, s.cfg.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("begin advisory (session=%d): %w", sessionID, err)
	}
	return nil
}

func (s *redisStore) Complete(ctx context.Context, a model.Advisory) error {
	a.UpdatedAt = s.now()
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding advisory: %w", err)
	}

	written, err := completeScript.Run(ctx, s.client,
		[]string{s.key(a.SessionID)},
		strconv.FormatInt(a.EvaluationID, 10), string(raw), s.cfg.TTL.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("complete advisory (session=%d): %w", a.SessionID, err)
	}
	if written == 0 {
		return ErrStaleEvaluation
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, sessionID int64) (model.Advisory, error) {
	raw, err := s.client.HGet(ctx, s.key(sessionID), fieldAdvisory).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return none(sessionID), nil
		}
		return model.Advisory{}, fmt.Errorf("get advisory (session=%d): %w", sessionID, err)
	}

	var a model.Advisory
	if err := json.Unmarshal(raw, &a); err != nil {
		return model.Advisory{}, fmt.Errorf("decoding advisory (session=%d): %w", sessionID, err)
	}
	return a, nil
}

func (s *redisStore) Clear(ctx context.Context, sessionID int64) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear advisory (session=%d): %w", sessionID, err)
	}
	return nil
}
