package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/zedx-auto/garagepos/internal/shopapi"

	_ "github.com/zedx-auto/garagepos/testing"
)

type upstreamState struct {
	calls atomic.Int64
	fail  atomic.Bool
}

func newUpstream(t *testing.T, state *upstreamState) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state.calls.Add(1)
		if state.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "backend down"})
			return
		}
		var payload any
		switch r.URL.Path {
		case "/transaction/getTransactionTotals":
			payload = shopapi.TransactionTotals{TotalAmount: 5000, TransactionCount: 12}
		case "/outgoingPayment/getTransactionTotals":
			payload = shopapi.OutgoingPaymentTotals{TotalAmount: 900, PaymentCount: 3}
		case "/transaction/getAllToday":
			payload = []shopapi.Transaction{{ID: 1, TransactionNo: "00000001"}}
		case "/outgoingPayment/getAllToday":
			payload = []shopapi.OutgoingPayment{{ID: 1, Amount: 300}}
		case "/transaction/getLast30DaysData":
			payload = []shopapi.DailyRevenuePoint{{Date: "2026-08-29", Amount: 700}}
		default:
			t.Errorf("unexpected upstream path %s", r.URL.Path)
			return
		}
		raw, _ := json.Marshal(payload)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "responseDto": json.RawMessage(raw)})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, state *upstreamState) *Service {
	t.Helper()
	srv := newUpstream(t, state)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := shopapi.New(srv.URL, 5*time.Second, logger)
	return NewService(logger, api, client, 5*time.Minute)
}

func TestSnapshotAggregatesAllFeeds(t *testing.T) {
	state := &upstreamState{}
	svc := newTestService(t, state)

	snap, err := svc.Snapshot(context.Background(), "tok")
	require.NoError(t, err)
	require.InDelta(t, 5000.0, snap.Totals.TotalAmount, 0.001)
	require.Equal(t, 12, snap.Totals.TransactionCount)
	require.InDelta(t, 900.0, snap.OutgoingTotals.TotalAmount, 0.001)
	require.Len(t, snap.TodaySales, 1)
	require.Len(t, snap.TodayOutgoing, 1)
	require.Len(t, snap.RevenueSeries, 1)
	require.False(t, snap.Stale)
	require.EqualValues(t, 5, state.calls.Load())
}

func TestSnapshotServedFromCache(t *testing.T) {
	state := &upstreamState{}
	svc := newTestService(t, state)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx, "tok")
	require.NoError(t, err)
	calls := state.calls.Load()

	_, err = svc.Snapshot(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, calls, state.calls.Load(), "fresh snapshot must not refetch")
}

func TestSnapshotServesStaleOnOutage(t *testing.T) {
	state := &upstreamState{}
	svc := newTestService(t, state)
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx, "tok")
	require.NoError(t, err)

	// Expire the freshness window and take the backend down.
	svc.ttl = 0
	state.fail.Store(true)

	stale, err := svc.Snapshot(ctx, "tok")
	require.NoError(t, err)
	require.True(t, stale.Stale)
	require.InDelta(t, snap.Totals.TotalAmount, stale.Totals.TotalAmount, 0.001)
}

func TestSnapshotFailsWithoutCache(t *testing.T) {
	state := &upstreamState{}
	state.fail.Store(true)
	svc := newTestService(t, state)

	_, err := svc.Snapshot(context.Background(), "tok")
	require.Error(t, err)
}

func TestSnapshotMissingToken(t *testing.T) {
	state := &upstreamState{}
	svc := newTestService(t, state)

	_, err := svc.Snapshot(context.Background(), "")
	require.ErrorIs(t, err, shopapi.ErrAuthRequired)
	require.EqualValues(t, 0, state.calls.Load())
}

func TestRefreshRebuildsCache(t *testing.T) {
	state := &upstreamState{}
	svc := newTestService(t, state)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx, "tok"))
	calls := state.calls.Load()

	// A fresh cached copy now exists, so a read adds no upstream calls.
	snap, err := svc.Snapshot(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, calls, state.calls.Load())
	require.InDelta(t, 5000.0, snap.Totals.TotalAmount, 0.001)
}
