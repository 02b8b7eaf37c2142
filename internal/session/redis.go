package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/benbell/shopbot/internal/domain"
)

const (
	sessionKeyPattern  = "user:session:%d"
	sessionScanPattern = "user:session:*"
	sessionScanCount   = 100
)

// RedisStorage persists sessions in Redis, one JSON value per user. Entries
// carry no TTL: a session survives until the user resets it or the key is
// removed operationally.
type RedisStorage struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStorage initializes a Redis-backed Storage implementation.
func NewRedisStorage(client *redis.Client, log *slog.Logger) *RedisStorage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{
		client: client,
		log:    log,
	}
}

// Save stores the session snapshot under the user's key.
func (s *RedisStorage) Save(ctx context.Context, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	key := fmt.Sprintf(sessionKeyPattern, sess.UserID)
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("save session in redis: %w", err)
	}
	return nil
}

// LoadAll scans every persisted session. Keys that do not parse back to a
// user id and values that do not decode are skipped with a log line.
func (s *RedisStorage) LoadAll(ctx context.Context) (map[int64]*domain.Session, error) {
	sessions := make(map[int64]*domain.Session)

	var cursor uint64
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, sessionScanPattern, sessionScanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("scan sessions: %w", err)
		}

		for _, key := range keys {
			userID, err := userIDFromKey(key)
			if err != nil {
				s.log.Warn("discarding session with malformed key", slog.String("key", key))
				continue
			}

			data, err := s.client.Get(ctx, key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				return nil, fmt.Errorf("fetch session %s: %w", key, err)
			}

			var sess domain.Session
			if err := json.Unmarshal([]byte(data), &sess); err != nil {
				s.log.Warn("discarding undecodable session", slog.String("key", key), slog.Any("error", err))
				continue
			}

			sessions[userID] = &sess
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return sessions, nil
}

func userIDFromKey(key string) (int64, error) {
	idx := strings.LastIndex(key, ":")
	if idx == -1 || idx == len(key)-1 {
		return 0, fmt.Errorf("invalid key format: %s", key)
	}
	return strconv.ParseInt(key[idx+1:], 10, 64)
}
