package pos

import (
	"errors"
	"time"

	"github.com/zedx-auto/garagepos/internal/shopapi"
)

// Sentinel errors for the POS domain.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNoCustomer    = errors.New("customer selection required")
	ErrNoPendingSale = errors.New("no pending sale is open")
	ErrSaleNotFound  = errors.New("sale not found")
	ErrNotPending    = errors.New("transaction is not pending")
	ErrInvalidPIN    = errors.New("supervisor pin rejected")
)

// CartLine is one selected service with its per-sale description and price.
// Quantity is a display counter only: re-adding the same service bumps it, but
// the cart total sums one price per line regardless of quantity.
type CartLine struct {
	ServiceID   int64   `json:"serviceId"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Cart is the in-memory ordered list of selected services for one terminal.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// NewCustomerInput captures the inline new-customer form.
type NewCustomerInput struct {
	Name          string `json:"name" validate:"required,max=200"`
	VehicleNumber string `json:"vehicleNumber" validate:"required,max=50"`
	MobileNumber  string `json:"mobileNumber" validate:"required,len=10,numeric"`
}

// CheckoutRequest submits the two-step wizard: payment details plus either an
// existing customer id or the inline new-customer form.
type CheckoutRequest struct {
	PaymentMethodID int64             `json:"paymentMethodId" validate:"required,gt=0"`
	Advance         bool              `json:"advance"`
	AdvanceAmount   float64           `json:"advanceAmount" validate:"gte=0"`
	CustomerID      int64             `json:"customerId"`
	NewCustomer     *NewCustomerInput `json:"newCustomer,omitempty"`
}

// CheckoutResult reports a completed checkout.
type CheckoutResult struct {
	Transaction   *shopapi.Transaction `json:"transaction"`
	TransactionNo string               `json:"transactionNo"`
	TotalAmount   float64              `json:"totalAmount"`
	AmountPaid    float64              `json:"amountPaid"`
	SagaID        string               `json:"sagaId"`
}

// ReopenRequest reopens a pending sale for final payment.
type ReopenRequest struct {
	TransactionNo string `json:"transactionNo" validate:"required"`
	SupervisorPIN string `json:"supervisorPin" validate:"required"`
}

// FinalizeResult reports a finalized pending sale.
type FinalizeResult struct {
	Transaction   *shopapi.Transaction `json:"transaction"`
	TotalAmount   float64              `json:"totalAmount"`
	AdvancePaid   float64              `json:"advancePaid"`
	AmountDue     float64              `json:"amountDue"`
	FinalizedAt   time.Time            `json:"finalizedAt"`
	TransactionNo string               `json:"transactionNo"`
}
