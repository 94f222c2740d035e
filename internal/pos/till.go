package pos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zedx-auto/garagepos/internal/shopapi"
)

// Till keeps per-session terminal state in Redis: the working cart and, during
// reconciliation, the pending sale that was reopened.
type Till struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTill constructs a Till store.
func NewTill(client *redis.Client, ttl time.Duration) *Till {
	return &Till{client: client, ttl: ttl}
}

func (t *Till) cartKey(sessionID string) string {
	return "garagepos:till:cart:" + sessionID
}

func (t *Till) reopenedKey(sessionID string) string {
	return "garagepos:till:reopened:" + sessionID
}

// Cart loads the session's cart, empty when none was stored yet.
func (t *Till) Cart(ctx context.Context, sessionID string) (*Cart, error) {
	data, err := t.client.Get(ctx, t.cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Cart{}, nil
		}
		return nil, fmt.Errorf("pos/till: load cart: %w", err)
	}
	var cart Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("pos/till: decode cart: %w", err)
	}
	return &cart, nil
}

// SaveCart persists the session's cart.
func (t *Till) SaveCart(ctx context.Context, sessionID string, cart *Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("pos/till: encode cart: %w", err)
	}
	if err := t.client.Set(ctx, t.cartKey(sessionID), data, t.ttl).Err(); err != nil {
		return fmt.Errorf("pos/till: save cart: %w", err)
	}
	return nil
}

// ClearCart drops the session's cart.
func (t *Till) ClearCart(ctx context.Context, sessionID string) error {
	if err := t.client.Del(ctx, t.cartKey(sessionID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("pos/till: clear cart: %w", err)
	}
	return nil
}

// Reopened returns the pending sale currently open for reconciliation, or
// ErrNoPendingSale.
func (t *Till) Reopened(ctx context.Context, sessionID string) (*shopapi.Transaction, error) {
	data, err := t.client.Get(ctx, t.reopenedKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoPendingSale
		}
		return nil, fmt.Errorf("pos/till: load reopened sale: %w", err)
	}
	var txn shopapi.Transaction
	if err := json.Unmarshal(data, &txn); err != nil {
		return nil, fmt.Errorf("pos/till: decode reopened sale: %w", err)
	}
	return &txn, nil
}

// SaveReopened stores the pending sale being reconciled.
func (t *Till) SaveReopened(ctx context.Context, sessionID string, txn *shopapi.Transaction) error {
	data, err := json.Marshal(txn)
	if err != nil {
		return fmt.Errorf("pos/till: encode reopened sale: %w", err)
	}
	if err := t.client.Set(ctx, t.reopenedKey(sessionID), data, t.ttl).Err(); err != nil {
		return fmt.Errorf("pos/till: save reopened sale: %w", err)
	}
	return nil
}

// ClearReopened drops the reconciliation state.
func (t *Till) ClearReopened(ctx context.Context, sessionID string) error {
	if err := t.client.Del(ctx, t.reopenedKey(sessionID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("pos/till: clear reopened sale: %w", err)
	}
	return nil
}
