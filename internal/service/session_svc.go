package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/crediforum/crediforum-go/pkg/hash"
)

// SessionService resolves bearer tokens to user IDs. Sessions are issued by
// the external auth flow, which writes `session:{sha256(token)}` -> userId
// into the shared redis; this service is the read side of that contract.
type SessionService struct {
	rdb *redis.Client
}

func NewSessionService(rdb *redis.Client) *SessionService {
	return &SessionService{rdb: rdb}
}

// Resolve returns the user ID for a session token, or "" if the token is
// unknown, expired, or sessions are unavailable.
func (s *SessionService) Resolve(ctx context.Context, token string) (string, error) {
	if s.rdb == nil || token == "" {
		return "", nil
	}

	userID, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", hash.SHA256Hex(token))
}
