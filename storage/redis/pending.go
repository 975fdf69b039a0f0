// Package redisstore persists pending sign-in state in Redis, for
// deployments where the redirect legs of a flow may land on different
// instances.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	oidckit "github.com/PaulFidika/linkkit/oidc"
)

const keyPrefix = "linkkit:pending:"

// PendingSignIns is a Redis-backed oidckit.PendingStore.
type PendingSignIns struct {
	rdb *redis.Client
}

func NewPendingSignIns(rdb *redis.Client) *PendingSignIns {
	return &PendingSignIns{rdb: rdb}
}

func (s *PendingSignIns) Put(ctx context.Context, state string, p oidckit.PendingSignIn, ttl time.Duration) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending sign-in: %w", err)
	}
	return s.rdb.Set(ctx, keyPrefix+state, b, ttl).Err()
}

// Take returns and removes the record for state in one round trip, so a
// replayed callback cannot reuse it.
func (s *PendingSignIns) Take(ctx context.Context, state string) (oidckit.PendingSignIn, bool, error) {
	b, err := s.rdb.GetDel(ctx, keyPrefix+state).Bytes()
	if err == redis.Nil {
		return oidckit.PendingSignIn{}, false, nil
	}
	if err != nil {
		return oidckit.PendingSignIn{}, false, err
	}
	var p oidckit.PendingSignIn
	if err := json.Unmarshal(b, &p); err != nil {
		return oidckit.PendingSignIn{}, false, fmt.Errorf("decode pending sign-in: %w", err)
	}
	return p, true, nil
}

func (s *PendingSignIns) Delete(ctx context.Context, state string) error {
	return s.rdb.Del(ctx, keyPrefix+state).Err()
}
