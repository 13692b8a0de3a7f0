package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// TxidStore implements ports.TxidReservationStore using Redis SET NX.
//
// Reserving a candidate txid before the insert cuts down on wasted database
// round-trips when several nodes generate ids in the same millisecond. The
// unique index on transactions.txid stays the real guarantee; a reservation
// that expires before its insert only costs one extra retry.
type TxidStore struct {
	client *goredis.Client
	prefix string
}

// NewTxidStore creates a new Redis-backed txid reservation store.
func NewTxidStore(client *goredis.Client) *TxidStore {
	return &TxidStore{
		client: client,
		prefix: "txid:",
	}
}

// Reserve atomically claims a candidate txid for the TTL.
// Returns true if the txid was free, false if another writer holds it.
func (s *TxidStore) Reserve(ctx context.Context, txid string, ttl time.Duration) (bool, error) {
	key := s.prefix + txid
	result, err := s.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis txid reserve: %w", err)
	}
	return result == "OK", nil
}
