package shopapi

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

	"github.com/stretchr/testify/require"

	_ "github.com/zedx-auto/garagepos/testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMissingTokenShortCircuits(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, testLogger())

	_, err := client.ListServices(context.Background(), 1, 10, true)
	require.ErrorIs(t, err, ErrAuthRequired)
	require.EqualValues(t, 0, hits.Load(), "no request may reach the backend without a token")
}

func TestBearerTokenAndEnvelopeDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"responseDto": map[string]any{
				"payload":      []map[string]any{{"id": 1, "name": "Full Wash", "isActive": true}},
				"totalRecords": 1,
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, testLogger()).WithToken("tok-123")

	page, err := client.ListServices(context.Background(), 1, 10, true)
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalRecords)
	require.Len(t, page.Payload, 1)
	require.Equal(t, "Full Wash", page.Payload[0].Name)
}

func TestRejectionUsesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "vehicle number already registered",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, testLogger()).WithToken("tok")

	_, err := client.SaveCustomer(context.Background(), Customer{Name: "x"})
	require.ErrorIs(t, err, ErrRejected)
	require.Contains(t, err.Error(), "vehicle number already registered")
}

func TestRejectionFallsBackToErrorDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":           false,
			"errorDescription": "invalid credentials",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, testLogger())

	_, err := client.Login(context.Background(), "user", "wrong")
	require.ErrorIs(t, err, ErrRejected)
	require.Contains(t, err.Error(), "invalid credentials")
}

func TestTransportFailureMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := New(srv.URL, time.Second, testLogger()).WithToken("tok")

	_, err := client.GetShopDetails(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPErrorStatusIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "validation failed"})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, testLogger()).WithToken("tok")

	_, err := client.SaveService(context.Background(), Service{})
	require.ErrorIs(t, err, ErrRejected)
}

func TestHTTPStatusMapping(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, HTTPStatus(authRequired()))
	require.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(&APIError{Kind: KindRejected, Message: "nope"}))
	require.Equal(t, http.StatusBadGateway, HTTPStatus(&APIError{Kind: KindTransport, Message: "down"}))
}

func TestSearchCustomersMergesAndDedupes(t *testing.T) {
	byMobile := []Customer{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	byVehicle := []Customer{{ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
	byName := []Customer{{ID: 1, Name: "A"}, {ID: 4, Name: "D"}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload []Customer
		switch r.URL.Path {
		case "/customer/getAllByMobileNumber":
			payload = byMobile
		case "/customer/getAllByVehicleNumber":
			payload = byVehicle
		case "/customer/getAllByName":
			payload = byName
		}
		raw, _ := json.Marshal(CustomerPage{Payload: payload, TotalRecords: len(payload)})
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "responseDto": json.RawMessage(raw)})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, testLogger()).WithToken("tok")

	matches, err := client.SearchCustomers(context.Background(), "query")
	require.NoError(t, err)
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	require.Equal(t, []int64{1, 2, 3, 4}, ids)
}
