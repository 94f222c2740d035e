package transactions

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/zedx-auto/garagepos/internal/session"
	"github.com/zedx-auto/garagepos/internal/shopapi"

	_ "github.com/zedx-auto/garagepos/testing"
)

type historyUpstream struct {
	lastPath  string
	lastQuery map[string]string
}

func (u *historyUpstream) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.lastPath = r.URL.Path
		u.lastQuery = map[string]string{}
		for key := range r.URL.Query() {
			u.lastQuery[key] = r.URL.Query().Get(key)
		}
		switch r.URL.Path {
		case "/transaction/getAllPage", "/transaction/getAllPageByCustomer", "/transaction/getAllPageByTransactionNo":
			raw, _ := json.Marshal(shopapi.TransactionPage{
				Payload:      []shopapi.Transaction{{ID: 42, TransactionNo: "00000042"}},
				TotalRecords: 1,
			})
			_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "responseDto": json.RawMessage(raw)})
		case "/transaction/updateTransactionDetailsStatus":
			_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "responseDto": json.RawMessage(`true`)})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "errorDescription": "unknown path"})
		}
	})
}

func newHistoryRouter(t *testing.T, authenticated bool) (chi.Router, *historyUpstream) {
	t.Helper()
	upstream := &historyUpstream{}
	srv := httptest.NewServer(upstream.handler())
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := shopapi.New(srv.URL, 5*time.Second, logger)
	h := NewHandler(logger, api)

	sess := &session.Session{ID: "terminal-1"}
	if authenticated {
		sess.Login("operator-token", &session.Profile{ID: 1, Username: "cashier"})
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(session.ContextWithSession(r.Context(), sess)))
		})
	})
	h.MountRoutes(router)
	return router, upstream
}

func doGet(router chi.Router, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListPaged(t *testing.T) {
	router, upstream := newHistoryRouter(t, true)

	rec := doGet(router, "/?pageNumber=2&pageSize=5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/transaction/getAllPage", upstream.lastPath)
	require.Equal(t, "2", upstream.lastQuery["pageNumber"])
	require.Equal(t, "5", upstream.lastQuery["pageSize"])

	var page shopapi.TransactionPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 1, page.TotalRecords)
	require.Equal(t, "00000042", page.Payload[0].TransactionNo)
}

func TestListFiltersByCustomer(t *testing.T) {
	router, upstream := newHistoryRouter(t, true)

	rec := doGet(router, "/?customerId=9")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/transaction/getAllPageByCustomer", upstream.lastPath)
	require.Equal(t, "9", upstream.lastQuery["customerId"])
}

func TestListFiltersByTransactionNo(t *testing.T) {
	router, upstream := newHistoryRouter(t, true)

	rec := doGet(router, "/?transactionNo=00000042")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/transaction/getAllPageByTransactionNo", upstream.lastPath)
	require.Equal(t, "00000042", upstream.lastQuery["transactionNo"])
}

func TestListRejectsBadCustomerID(t *testing.T) {
	router, _ := newHistoryRouter(t, true)

	rec := doGet(router, "/?customerId=abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateDetailStatus(t *testing.T) {
	router, upstream := newHistoryRouter(t, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/details/501/status?status=false", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/transaction/updateTransactionDetailsStatus", upstream.lastPath)
	require.Equal(t, "501", upstream.lastQuery["transactionDetailsId"])
	require.Equal(t, "false", upstream.lastQuery["status"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["isActive"])
}

func TestUpdateDetailStatusRejectsBadID(t *testing.T) {
	router, _ := newHistoryRouter(t, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/details/zero/status", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListWithoutTokenIsUnauthorized(t *testing.T) {
	router, upstream := newHistoryRouter(t, false)

	rec := doGet(router, "/")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, upstream.lastPath)
}
