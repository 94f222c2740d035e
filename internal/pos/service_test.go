package pos

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zedx-auto/garagepos/internal/session"
	"github.com/zedx-auto/garagepos/internal/shopapi"

	_ "github.com/zedx-auto/garagepos/testing"
)

type memorySagaRepo struct {
	mu    sync.Mutex
	sagas map[uuid.UUID]*SaleSaga
	open  map[string]uuid.UUID

	createErr error
}

func newMemorySagaRepo() *memorySagaRepo {
	return &memorySagaRepo{
		sagas: make(map[uuid.UUID]*SaleSaga),
		open:  make(map[string]uuid.UUID),
	}
}

func (r *memorySagaRepo) Create(ctx context.Context, saga *SaleSaga) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.open[saga.SessionID]; exists {
		return ErrSagaOpen
	}
	stored := *saga
	r.sagas[saga.ID] = &stored
	r.open[saga.SessionID] = saga.ID
	return nil
}

func (r *memorySagaRepo) SetCustomer(ctx context.Context, id uuid.UUID, customerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if saga, ok := r.sagas[id]; ok {
		saga.CustomerID = &customerID
		saga.Step = StepCustomerCreated
	}
	return nil
}

func (r *memorySagaRepo) SetTransaction(ctx context.Context, id uuid.UUID, transactionID int64, transactionNo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if saga, ok := r.sagas[id]; ok {
		saga.TransactionID = &transactionID
		saga.TransactionNo = transactionNo
		saga.Step = StepTransactionCreated
		delete(r.open, saga.SessionID)
	}
	return nil
}

func (r *memorySagaRepo) SetError(ctx context.Context, id uuid.UUID, cause string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if saga, ok := r.sagas[id]; ok {
		saga.LastError = &cause
	}
	return nil
}

func (r *memorySagaRepo) Close(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if saga, ok := r.sagas[id]; ok {
		delete(r.open, saga.SessionID)
	}
	return nil
}

func (r *memorySagaRepo) OpenBySession(ctx context.Context, sessionID string) (*SaleSaga, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.open[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *r.sagas[id]
	return &copied, nil
}

type captureDispatcher struct {
	mu   sync.Mutex
	jobs []ReceiptJob
}

func (d *captureDispatcher) EnqueueReceipt(ctx context.Context, job ReceiptJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
	return nil
}

func (d *captureDispatcher) last() *ReceiptJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.jobs) == 0 {
		return nil
	}
	job := d.jobs[len(d.jobs)-1]
	return &job
}

// fakeUpstream emulates the shop backend's envelope protocol.
type fakeUpstream struct {
	mu             sync.Mutex
	customers      []shopapi.Customer
	transactions   []shopapi.Transaction
	nextCustomerID int64
	nextTxnID      int64

	// rejectSaves makes the next N transaction saves fail as duplicates.
	rejectSaves int
	saveCalls   int
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/customer/save", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var c shopapi.Customer
		_ = json.NewDecoder(r.Body).Decode(&c)
		f.nextCustomerID++
		c.ID = f.nextCustomerID
		f.customers = append(f.customers, c)
		writeEnvelope(w, c)
	})
	mux.HandleFunc("/transaction/getAllPage", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		page := shopapi.TransactionPage{TotalRecords: len(f.transactions)}
		if n := len(f.transactions); n > 0 {
			page.Payload = []shopapi.Transaction{f.transactions[n-1]}
		}
		writeEnvelope(w, page)
	})
	mux.HandleFunc("/transaction/save", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.saveCalls++
		if f.rejectSaves > 0 {
			f.rejectSaves--
			writeRejection(w, "transaction number already exists")
			return
		}
		var txn shopapi.Transaction
		_ = json.NewDecoder(r.Body).Decode(&txn)
		f.nextTxnID++
		txn.ID = f.nextTxnID
		f.transactions = append(f.transactions, txn)
		writeEnvelope(w, txn)
	})
	mux.HandleFunc("/transaction/update", func(w http.ResponseWriter, r *http.Request) {
		var txn shopapi.Transaction
		_ = json.NewDecoder(r.Body).Decode(&txn)
		writeEnvelope(w, txn)
	})
	mux.HandleFunc("/transaction/getAllPageByStatus", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		status := r.URL.Query().Get("status")
		var page shopapi.TransactionPage
		for _, txn := range f.transactions {
			if txn.Status == status {
				page.Payload = append(page.Payload, txn)
			}
		}
		page.TotalRecords = len(page.Payload)
		writeEnvelope(w, page)
	})
	mux.HandleFunc("/transaction/getAllPageByTransactionNo", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		no := r.URL.Query().Get("transactionNo")
		var page shopapi.TransactionPage
		for _, txn := range f.transactions {
			if txn.TransactionNo == no {
				page.Payload = append(page.Payload, txn)
			}
		}
		page.TotalRecords = len(page.Payload)
		writeEnvelope(w, page)
	})
	mux.HandleFunc("/shopDetails/get", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, shopapi.ShopDetails{ID: 1, Name: "ZedX Auto", MobileNumber: "0771234567", IsActive: true})
	})
	return mux
}

func writeEnvelope(w http.ResponseWriter, payload any) {
	raw, _ := json.Marshal(payload)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "responseDto": json.RawMessage(raw)})
}

func writeRejection(w http.ResponseWriter, message string) {
	_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "errorDescription": message})
}

const testPIN = "4321"

type serviceFixture struct {
	service    *Service
	sagas      *memorySagaRepo
	dispatcher *captureDispatcher
	upstream   *fakeUpstream
	till       *Till
	sess       *session.Session
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	upstream := &fakeUpstream{}
	srv := httptest.NewServer(upstream.handler())
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := shopapi.New(srv.URL, 5*time.Second, logger)

	pinHash, err := bcrypt.GenerateFromPassword([]byte(testPIN), bcrypt.MinCost)
	require.NoError(t, err)

	sagas := newMemorySagaRepo()
	dispatcher := &captureDispatcher{}
	till := NewTill(client, time.Hour)
	svc := NewService(logger, api, sagas, till, dispatcher, string(pinHash))

	sess := &session.Session{ID: "terminal-1"}
	sess.Login("operator-token", &session.Profile{ID: 1, Username: "cashier"})

	return &serviceFixture{
		service:    svc,
		sagas:      sagas,
		dispatcher: dispatcher,
		upstream:   upstream,
		till:       till,
		sess:       sess,
	}
}

func (f *serviceFixture) fillCart(t *testing.T, ctx context.Context) {
	t.Helper()
	_, err := f.service.AddToCart(ctx, f.sess, AddItemRequest{ServiceID: 1, Name: "Full Wash", Amount: 100})
	require.NoError(t, err)
	_, err = f.service.AddToCart(ctx, f.sess, AddItemRequest{ServiceID: 2, Name: "Vacuum", Amount: 50})
	require.NoError(t, err)
}

func TestCheckoutFullPayment(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.fillCart(t, ctx)

	result, err := f.service.Checkout(ctx, f.sess, CheckoutRequest{
		PaymentMethodID: 1,
		NewCustomer: &NewCustomerInput{
			Name:          "Nimal Perera",
			VehicleNumber: "CAB-1234",
			MobileNumber:  "0771234567",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "00000001", result.TransactionNo)
	require.InDelta(t, 150.0, result.TotalAmount, 0.001)
	require.InDelta(t, 150.0, result.AmountPaid, 0.001)
	require.Equal(t, shopapi.StatusCompleted, result.Transaction.Status)
	require.NotNil(t, result.Transaction.FinalPaymentAmount)
	require.Nil(t, result.Transaction.AdvancePaymentAmount)

	// The inline customer was created upstream.
	require.Len(t, f.upstream.customers, 1)
	require.Equal(t, "Nimal Perera", f.upstream.customers[0].Name)

	// Cart cleared and saga closed afterwards.
	cart, err := f.service.Cart(ctx, f.sess)
	require.NoError(t, err)
	require.True(t, cart.Empty())
	open, err := f.sagas.OpenBySession(ctx, f.sess.ID)
	require.NoError(t, err)
	require.Nil(t, open)

	job := f.dispatcher.last()
	require.NotNil(t, job)
	require.Equal(t, ReceiptKindFull, job.Kind)
	require.Equal(t, "ZedX Auto", job.Shop.Name)
}

func TestCheckoutAdvancePayment(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.fillCart(t, ctx)

	result, err := f.service.Checkout(ctx, f.sess, CheckoutRequest{
		PaymentMethodID: 1,
		CustomerID:      7,
		Advance:         true,
		AdvanceAmount:   60,
	})
	require.NoError(t, err)
	require.Equal(t, shopapi.StatusPending, result.Transaction.Status)
	require.NotNil(t, result.Transaction.AdvancePaymentAmount)
	require.InDelta(t, 60.0, *result.Transaction.AdvancePaymentAmount, 0.001)
	require.InDelta(t, 60.0, result.AmountPaid, 0.001)
	require.InDelta(t, 150.0, result.TotalAmount, 0.001)

	job := f.dispatcher.last()
	require.NotNil(t, job)
	require.Equal(t, ReceiptKindAdvance, job.Kind)
	require.InDelta(t, 60.0, job.AdvanceAmount, 0.001)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.Checkout(context.Background(), f.sess, CheckoutRequest{PaymentMethodID: 1, CustomerID: 1})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutRequiresCustomer(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.fillCart(t, ctx)

	_, err := f.service.Checkout(ctx, f.sess, CheckoutRequest{PaymentMethodID: 1})
	require.ErrorIs(t, err, ErrNoCustomer)
}

func TestCheckoutRetriesOnDuplicateNumber(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.fillCart(t, ctx)
	f.upstream.rejectSaves = 1

	result, err := f.service.Checkout(ctx, f.sess, CheckoutRequest{PaymentMethodID: 1, CustomerID: 3})
	require.NoError(t, err)
	require.Equal(t, 2, f.upstream.saveCalls)
	require.Equal(t, "00000001", result.TransactionNo)
}

func TestCheckoutResumesSagaAfterCustomerStep(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.fillCart(t, ctx)

	// First attempt creates the customer but fails on the transaction save.
	f.upstream.rejectSaves = 2
	_, err := f.service.Checkout(ctx, f.sess, CheckoutRequest{
		PaymentMethodID: 1,
		NewCustomer: &NewCustomerInput{
			Name:          "Kamala Silva",
			VehicleNumber: "WP-5678",
			MobileNumber:  "0712345678",
		},
	})
	require.Error(t, err)
	require.Len(t, f.upstream.customers, 1)

	open, err := f.sagas.OpenBySession(ctx, f.sess.ID)
	require.NoError(t, err)
	require.NotNil(t, open)
	require.Equal(t, StepCustomerCreated, open.Step)
	require.NotNil(t, open.LastError)

	// Retry resumes the open saga and must not create a second customer.
	result, err := f.service.Checkout(ctx, f.sess, CheckoutRequest{
		PaymentMethodID: 1,
		NewCustomer: &NewCustomerInput{
			Name:          "Kamala Silva",
			VehicleNumber: "WP-5678",
			MobileNumber:  "0712345678",
		},
	})
	require.NoError(t, err)
	require.Len(t, f.upstream.customers, 1)
	require.Equal(t, *open.CustomerID, result.Transaction.Customer.ID)

	open, err = f.sagas.OpenBySession(ctx, f.sess.ID)
	require.NoError(t, err)
	require.Nil(t, open)
}

func seedPendingSale(f *serviceFixture) {
	advance := 150.0
	now := time.Now()
	detailID := int64(501)
	f.upstream.transactions = append(f.upstream.transactions, shopapi.Transaction{
		ID:                     42,
		TransactionNo:          "00000042",
		Customer:               &shopapi.Customer{ID: 9, Name: "Sunil", MobileNumber: "0771112222"},
		PaymentMethod:          &shopapi.PaymentMethod{ID: 1, Name: "Cash"},
		TotalAmount:            500,
		AdvancePaymentAmount:   &advance,
		AdvancePaymentDateTime: &now,
		Status:                 shopapi.StatusPending,
		Details: []shopapi.TransactionDetail{
			{ID: &detailID, Service: shopapi.Service{ID: 1, Name: "Full Service"}, Amount: 500, IsActive: 1},
		},
	})
}

func TestReopenRejectsBadPIN(t *testing.T) {
	f := newServiceFixture(t)
	seedPendingSale(f)

	_, _, err := f.service.Reopen(context.Background(), f.sess, ReopenRequest{TransactionNo: "00000042", SupervisorPIN: "0000"})
	require.ErrorIs(t, err, ErrInvalidPIN)
}

func TestReopenUnknownSale(t *testing.T) {
	f := newServiceFixture(t)

	_, _, err := f.service.Reopen(context.Background(), f.sess, ReopenRequest{TransactionNo: "00009999", SupervisorPIN: testPIN})
	require.ErrorIs(t, err, ErrSaleNotFound)
}

func TestReopenRejectsCompletedSale(t *testing.T) {
	f := newServiceFixture(t)
	f.upstream.transactions = append(f.upstream.transactions, shopapi.Transaction{
		ID: 1, TransactionNo: "00000001", Status: shopapi.StatusCompleted,
	})

	_, _, err := f.service.Reopen(context.Background(), f.sess, ReopenRequest{TransactionNo: "00000001", SupervisorPIN: testPIN})
	require.ErrorIs(t, err, ErrNotPending)
}

func TestReopenAndFinalize(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	seedPendingSale(f)

	cart, txn, err := f.service.Reopen(ctx, f.sess, ReopenRequest{TransactionNo: "00000042", SupervisorPIN: testPIN})
	require.NoError(t, err)
	require.Equal(t, "00000042", txn.TransactionNo)
	require.Len(t, cart.Lines, 1)
	require.InDelta(t, 500.0, cart.Total(), 0.001)

	// Add one more service before collecting the balance.
	_, err = f.service.AddToCart(ctx, f.sess, AddItemRequest{ServiceID: 2, Name: "Polish", Amount: 100})
	require.NoError(t, err)

	result, err := f.service.Finalize(ctx, f.sess)
	require.NoError(t, err)
	require.InDelta(t, 600.0, result.TotalAmount, 0.001)
	require.InDelta(t, 150.0, result.AdvancePaid, 0.001)
	require.InDelta(t, 450.0, result.AmountDue, 0.001)
	require.Equal(t, shopapi.StatusCompleted, result.Transaction.Status)
	require.NotNil(t, result.Transaction.FinalPaymentAmount)
	require.InDelta(t, 450.0, *result.Transaction.FinalPaymentAmount, 0.001)
	// The advance stays on the record for the receipt trail.
	require.NotNil(t, result.Transaction.AdvancePaymentAmount)

	// Kept line reuses its persisted id, added line has none.
	details := result.Transaction.Details
	require.Len(t, details, 2)
	require.NotNil(t, details[0].ID)
	require.Nil(t, details[1].ID)

	// Terminal state is cleared.
	cart, err = f.service.Cart(ctx, f.sess)
	require.NoError(t, err)
	require.True(t, cart.Empty())
	_, err = f.till.Reopened(ctx, f.sess.ID)
	require.ErrorIs(t, err, ErrNoPendingSale)

	job := f.dispatcher.last()
	require.NotNil(t, job)
	require.Equal(t, ReceiptKindFinal, job.Kind)
	require.InDelta(t, 150.0, job.AdvanceAmount, 0.001)
}

func TestFinalizeWithoutReopenedSale(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Finalize(context.Background(), f.sess)
	require.ErrorIs(t, err, ErrNoPendingSale)
}

func TestPendingSales(t *testing.T) {
	f := newServiceFixture(t)
	seedPendingSale(f)

	page, err := f.service.PendingSales(context.Background(), f.sess, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Payload, 1)
	require.Equal(t, "00000042", page.Payload[0].TransactionNo)
}

func TestClearCartAbandonsReopenedSale(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	seedPendingSale(f)

	_, _, err := f.service.Reopen(ctx, f.sess, ReopenRequest{TransactionNo: "00000042", SupervisorPIN: testPIN})
	require.NoError(t, err)

	require.NoError(t, f.service.ClearCart(ctx, f.sess))

	cart, err := f.service.Cart(ctx, f.sess)
	require.NoError(t, err)
	require.True(t, cart.Empty())
	_, err = f.till.Reopened(ctx, f.sess.ID)
	require.ErrorIs(t, err, ErrNoPendingSale)
}
