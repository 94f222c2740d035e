package pos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/zedx-auto/garagepos/internal/session"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

// ReceiptJob describes a receipt to render and hand off after a sale. Shop
// details travel in the payload because the background worker holds no
// operator session of its own.
type ReceiptJob struct {
	Kind          string              `json:"kind"` // "advance", "full" or "final"
	Shop          shopapi.ShopDetails `json:"shop"`
	Transaction   shopapi.Transaction `json:"transaction"`
	AdvanceAmount float64             `json:"advanceAmount"`
}

// Receipt kinds.
const (
	ReceiptKindAdvance = "advance"
	ReceiptKindFull    = "full"
	ReceiptKindFinal   = "final"
)

// ReceiptDispatcher enqueues receipt jobs for background processing.
type ReceiptDispatcher interface {
	EnqueueReceipt(ctx context.Context, job ReceiptJob) error
}

// Service implements the POS workflows: cart assembly, checkout with the
// advance/final split, and pending-sale reconciliation.
type Service struct {
	logger   *slog.Logger
	api      *shopapi.Client
	sagas    SagaRepository
	till     *Till
	receipts ReceiptDispatcher
	pinHash  []byte

	shopMu        sync.Mutex
	shopCached    *shopapi.ShopDetails
	shopFetchedAt time.Time
}

// shopCacheTTL bounds how stale the receipt header may get.
const shopCacheTTL = 10 * time.Minute

// NewService constructs a POS service around the unbound upstream client.
func NewService(logger *slog.Logger, api *shopapi.Client, sagas SagaRepository, till *Till, receipts ReceiptDispatcher, supervisorPINHash string) *Service {
	return &Service{
		logger:   logger,
		api:      api,
		sagas:    sagas,
		till:     till,
		receipts: receipts,
		pinHash:  []byte(supervisorPINHash),
	}
}

func (s *Service) bound(sess *session.Session) *shopapi.Client {
	return s.api.WithToken(sess.Token())
}

// Cart returns the session's working cart.
func (s *Service) Cart(ctx context.Context, sess *session.Session) (*Cart, error) {
	return s.till.Cart(ctx, sess.ID)
}

// AddItemRequest adds one catalog service to the cart with its per-sale
// description and price.
type AddItemRequest struct {
	ServiceID   int64   `json:"serviceId" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

// AddToCart applies AddItemRequest to the session cart.
func (s *Service) AddToCart(ctx context.Context, sess *session.Session, req AddItemRequest) (*Cart, error) {
	cart, err := s.till.Cart(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	cart.AddItem(shopapi.Service{ID: req.ServiceID, Name: req.Name, Icon: req.Icon}, req.Description, req.Amount)
	if err := s.till.SaveCart(ctx, sess.ID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveFromCart drops a cart line by service id.
func (s *Service) RemoveFromCart(ctx context.Context, sess *session.Session, serviceID int64) (*Cart, error) {
	cart, err := s.till.Cart(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	cart.RemoveItem(serviceID)
	if err := s.till.SaveCart(ctx, sess.ID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetQuantity updates a cart line's display quantity; below one removes it.
func (s *Service) SetQuantity(ctx context.Context, sess *session.Session, serviceID int64, quantity int) (*Cart, error) {
	cart, err := s.till.Cart(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	cart.UpdateQuantity(serviceID, quantity)
	if err := s.till.SaveCart(ctx, sess.ID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties the session cart, abandons any reopened sale and closes
// an unfinished checkout saga.
func (s *Service) ClearCart(ctx context.Context, sess *session.Session) error {
	if err := s.till.ClearCart(ctx, sess.ID); err != nil {
		return err
	}
	if err := s.till.ClearReopened(ctx, sess.ID); err != nil {
		return err
	}
	open, err := s.sagas.OpenBySession(ctx, sess.ID)
	if err != nil || open == nil {
		return err
	}
	return s.sagas.Close(ctx, open.ID)
}

// Checkout submits the wizard result. The two upstream writes (create customer,
// create transaction) are journaled as a saga so a retried checkout resumes
// from the step that already succeeded instead of re-issuing both calls. A
// customer created before a failed transaction save is left in place.
func (s *Service) Checkout(ctx context.Context, sess *session.Session, req CheckoutRequest) (*CheckoutResult, error) {
	api := s.bound(sess)

	cart, err := s.till.Cart(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, ErrEmptyCart
	}
	if req.CustomerID <= 0 && req.NewCustomer == nil {
		return nil, ErrNoCustomer
	}
	total := cart.Total()

	saga, err := s.openSaga(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	customer, err := s.resolveCustomer(ctx, api, saga, req)
	if err != nil {
		s.journalError(ctx, saga.ID, err)
		return nil, err
	}

	now := time.Now()
	txn := shopapi.Transaction{
		Customer:      customer,
		PaymentMethod: &shopapi.PaymentMethod{ID: req.PaymentMethodID},
		TotalAmount:   total,
		Details:       detailsFromCart(cart),
	}
	if req.Advance {
		advance := req.AdvanceAmount
		txn.Status = shopapi.StatusPending
		txn.AdvancePaymentAmount = &advance
		txn.AdvancePaymentDateTime = &now
	} else {
		final := total
		txn.Status = shopapi.StatusCompleted
		txn.FinalPaymentAmount = &final
		txn.FinalPaymentDateTime = &now
	}

	saved, err := s.saveWithFreshNumber(ctx, api, txn)
	if err != nil {
		s.journalError(ctx, saga.ID, err)
		return nil, err
	}

	if err := s.sagas.SetTransaction(ctx, saga.ID, saved.ID, saved.TransactionNo); err != nil {
		s.logger.Warn("journal transaction step", slog.Any("error", err))
	}
	if err := s.till.ClearCart(ctx, sess.ID); err != nil {
		s.logger.Warn("clear cart after checkout", slog.Any("error", err))
	}

	kind := ReceiptKindFull
	paid := total
	if req.Advance {
		kind = ReceiptKindAdvance
		paid = req.AdvanceAmount
	}
	s.dispatchReceipt(ctx, api, ReceiptJob{Kind: kind, Transaction: *saved, AdvanceAmount: req.AdvanceAmount})

	return &CheckoutResult{
		Transaction:   saved,
		TransactionNo: saved.TransactionNo,
		TotalAmount:   total,
		AmountPaid:    paid,
		SagaID:        saga.ID.String(),
	}, nil
}

// openSaga returns the session's open saga or journals a new one.
func (s *Service) openSaga(ctx context.Context, sessionID string) (*SaleSaga, error) {
	saga := &SaleSaga{ID: uuid.New(), SessionID: sessionID, Step: StepStarted}
	err := s.sagas.Create(ctx, saga)
	if err == nil {
		return saga, nil
	}
	if !errors.Is(err, ErrSagaOpen) {
		return nil, err
	}
	open, err := s.sagas.OpenBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, ErrSagaOpen
	}
	return open, nil
}

// resolveCustomer picks the existing customer, reuses one a prior saga attempt
// already created, or saves the inline form.
func (s *Service) resolveCustomer(ctx context.Context, api *shopapi.Client, saga *SaleSaga, req CheckoutRequest) (*shopapi.Customer, error) {
	if saga.CustomerID != nil {
		return &shopapi.Customer{ID: *saga.CustomerID}, nil
	}
	if req.CustomerID > 0 {
		return &shopapi.Customer{ID: req.CustomerID}, nil
	}
	saved, err := api.SaveCustomer(ctx, shopapi.Customer{
		Name:          req.NewCustomer.Name,
		VehicleNumber: req.NewCustomer.VehicleNumber,
		MobileNumber:  req.NewCustomer.MobileNumber,
		IsActive:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := s.sagas.SetCustomer(ctx, saga.ID, saved.ID); err != nil {
		s.logger.Warn("journal customer step", slog.Any("error", err))
	}
	return saved, nil
}

// saveWithFreshNumber claims the next receipt number and saves. When the
// backend rejects the number as already taken (another terminal won the race)
// the latest number is refetched and the save retried once.
func (s *Service) saveWithFreshNumber(ctx context.Context, api *shopapi.Client, txn shopapi.Transaction) (*shopapi.Transaction, error) {
	last, err := api.LatestTransactionNo(ctx)
	if err != nil {
		return nil, err
	}
	txn.TransactionNo = NextTransactionNo(last)

	saved, err := api.SaveTransaction(ctx, txn)
	if err == nil || !isDuplicateNumber(err) {
		return saved, err
	}

	s.logger.Warn("transaction number collision, retrying", slog.String("transactionNo", txn.TransactionNo))
	last, err = api.LatestTransactionNo(ctx)
	if err != nil {
		return nil, err
	}
	txn.TransactionNo = NextTransactionNo(last)
	return api.SaveTransaction(ctx, txn)
}

func isDuplicateNumber(err error) bool {
	if !errors.Is(err, shopapi.ErrRejected) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "already exists")
}

// PendingSales lists transactions awaiting final payment.
func (s *Service) PendingSales(ctx context.Context, sess *session.Session, pageNumber, pageSize int) (*shopapi.TransactionPage, error) {
	return s.bound(sess).TransactionsByStatus(ctx, pageNumber, pageSize, shopapi.StatusPending)
}

// Reopen loads a pending sale for reconciliation after verifying the
// supervisor PIN: the cart is rehydrated from the sale's active detail lines
// and the original transaction stashed for the diff at finalize time.
func (s *Service) Reopen(ctx context.Context, sess *session.Session, req ReopenRequest) (*Cart, *shopapi.Transaction, error) {
	if err := bcrypt.CompareHashAndPassword(s.pinHash, []byte(req.SupervisorPIN)); err != nil {
		return nil, nil, ErrInvalidPIN
	}

	page, err := s.bound(sess).TransactionsByTransactionNo(ctx, 1, 1, req.TransactionNo)
	if err != nil {
		return nil, nil, err
	}
	if len(page.Payload) == 0 {
		return nil, nil, fmt.Errorf("%w: transaction %s", ErrSaleNotFound, req.TransactionNo)
	}
	txn := page.Payload[0]
	if txn.Status != shopapi.StatusPending {
		return nil, nil, ErrNotPending
	}

	if err := s.till.SaveReopened(ctx, sess.ID, &txn); err != nil {
		return nil, nil, err
	}
	cart := CartFromDetails(txn.Details)
	if err := s.till.SaveCart(ctx, sess.ID, cart); err != nil {
		return nil, nil, err
	}
	return cart, &txn, nil
}

// Finalize collects the final payment on the reopened sale: the edited cart is
// diffed against the original detail lines, the remaining balance computed,
// and the merged update submitted as Completed.
func (s *Service) Finalize(ctx context.Context, sess *session.Session) (*FinalizeResult, error) {
	api := s.bound(sess)
	original, err := s.till.Reopened(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	cart, err := s.till.Cart(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, ErrEmptyCart
	}

	newTotal := cart.Total()
	var advance float64
	if original.AdvancePaymentAmount != nil {
		advance = *original.AdvancePaymentAmount
	}
	due := FinalAmountDue(newTotal, advance)
	now := time.Now()

	updated := *original
	updated.TotalAmount = newTotal
	updated.Status = shopapi.StatusCompleted
	updated.FinalPaymentAmount = &due
	updated.FinalPaymentDateTime = &now
	updated.Details = MergeDetails(original.Details, cart.Lines)

	saved, err := api.UpdateTransaction(ctx, updated)
	if err != nil {
		return nil, err
	}

	if err := s.till.ClearReopened(ctx, sess.ID); err != nil {
		s.logger.Warn("clear reopened sale", slog.Any("error", err))
	}
	if err := s.till.ClearCart(ctx, sess.ID); err != nil {
		s.logger.Warn("clear cart after finalize", slog.Any("error", err))
	}

	s.dispatchReceipt(ctx, api, ReceiptJob{Kind: ReceiptKindFinal, Transaction: *saved, AdvanceAmount: advance})

	return &FinalizeResult{
		Transaction:   saved,
		TotalAmount:   newTotal,
		AdvancePaid:   advance,
		AmountDue:     due,
		FinalizedAt:   now,
		TransactionNo: saved.TransactionNo,
	}, nil
}

func (s *Service) dispatchReceipt(ctx context.Context, api *shopapi.Client, job ReceiptJob) {
	if s.receipts == nil {
		return
	}
	job.Shop = s.shopDetails(ctx, api)
	if err := s.receipts.EnqueueReceipt(ctx, job); err != nil {
		s.logger.Warn("enqueue receipt", slog.String("transactionNo", job.Transaction.TransactionNo), slog.Any("error", err))
	}
}

// shopDetails returns the cached shop profile, refreshing it at most every
// shopCacheTTL. A fetch failure falls back to the last known profile.
func (s *Service) shopDetails(ctx context.Context, api *shopapi.Client) shopapi.ShopDetails {
	s.shopMu.Lock()
	defer s.shopMu.Unlock()
	if s.shopCached != nil && time.Since(s.shopFetchedAt) < shopCacheTTL {
		return *s.shopCached
	}
	details, err := api.GetShopDetails(ctx)
	if err != nil {
		s.logger.Warn("fetch shop details for receipt", slog.Any("error", err))
		if s.shopCached != nil {
			return *s.shopCached
		}
		return shopapi.ShopDetails{}
	}
	s.shopCached = details
	s.shopFetchedAt = time.Now()
	return *details
}

func (s *Service) journalError(ctx context.Context, sagaID uuid.UUID, cause error) {
	if err := s.sagas.SetError(ctx, sagaID, cause.Error()); err != nil {
		s.logger.Warn("journal saga error", slog.Any("error", err))
	}
}

func detailsFromCart(cart *Cart) []shopapi.TransactionDetail {
	details := make([]shopapi.TransactionDetail, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		details = append(details, shopapi.TransactionDetail{
			Service:     shopapi.Service{ID: line.ServiceID, Name: line.Name, Icon: line.Icon},
			Amount:      line.Price,
			Description: line.Description,
			IsActive:    1,
		})
	}
	return details
}
