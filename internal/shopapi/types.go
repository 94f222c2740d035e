package shopapi

import "time"

// Transaction statuses as stored upstream.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Customer is a shop customer record.
type Customer struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name"`
	VehicleNumber string `json:"vehicleNumber"`
	MobileNumber  string `json:"mobileNumber"`
	IsActive      bool   `json:"isActive"`
}

// Service is a catalog item offered in the POS grid. It carries no price;
// price and description are supplied per sale.
type Service struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	IsActive bool   `json:"isActive"`
}

// TransactionDetail is one service line item within a transaction. The ID only
// exists once persisted; reconciliation matches lines on Service.ID instead.
type TransactionDetail struct {
	ID          *int64  `json:"id,omitempty"`
	Service     Service `json:"serviceDto"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	IsActive    int     `json:"isActive"`
}

// Transaction is a sale, either Pending (advance collected) or Completed.
type Transaction struct {
	ID                     int64               `json:"id,omitempty"`
	TransactionNo          string              `json:"transactionNo"`
	Customer               *Customer           `json:"customerDto,omitempty"`
	PaymentMethod          *PaymentMethod      `json:"paymentMethodDto,omitempty"`
	TotalAmount            float64             `json:"totalAmount"`
	AdvancePaymentAmount   *float64            `json:"advancePaymentAmount,omitempty"`
	AdvancePaymentDateTime *time.Time          `json:"advancePaymentDateTime,omitempty"`
	FinalPaymentAmount     *float64            `json:"finalPaymentAmount,omitempty"`
	FinalPaymentDateTime   *time.Time          `json:"finalPaymentDateTime,omitempty"`
	Status                 string              `json:"status"`
	Details                []TransactionDetail `json:"transactionDetailsList"`
}

// ActiveDetails returns the detail lines not soft-deleted upstream.
func (t *Transaction) ActiveDetails() []TransactionDetail {
	active := make([]TransactionDetail, 0, len(t.Details))
	for _, d := range t.Details {
		if d.IsActive == 1 {
			active = append(active, d)
		}
	}
	return active
}

// PaymentMethod is a reference record (cash, card, ...).
type PaymentMethod struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// OutgoingPaymentCategory groups outgoing payments.
type OutgoingPaymentCategory struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// OutgoingPayment is an expense record.
type OutgoingPayment struct {
	ID          int64                    `json:"id,omitempty"`
	Category    *OutgoingPaymentCategory `json:"outgoingPaymentCategoryDto,omitempty"`
	Amount      float64                  `json:"amount"`
	Description string                   `json:"description"`
	DateTime    *time.Time               `json:"dateTime,omitempty"`
	IsActive    bool                     `json:"isActive"`
}

// ShopDetails holds the shop profile printed on receipts.
type ShopDetails struct {
	ID           int64  `json:"id,omitempty"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	MobileNumber string `json:"mobileNumber"`
	IsActive     bool   `json:"isActive"`
}

// User is an operator account record. Password is write-only; the upstream
// never echoes it back.
type User struct {
	ID          int64  `json:"id,omitempty"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Password    string `json:"password,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// CustomerPage is a paged customer listing.
type CustomerPage struct {
	Payload      []Customer `json:"payload"`
	TotalRecords int        `json:"totalRecords"`
}

// ServicePage is a paged service listing.
type ServicePage struct {
	Payload      []Service `json:"payload"`
	TotalRecords int       `json:"totalRecords"`
}

// TransactionPage is a paged transaction listing.
type TransactionPage struct {
	Payload      []Transaction `json:"payload"`
	TotalRecords int           `json:"totalRecords"`
}

// PaymentMethodPage is a paged payment method listing.
type PaymentMethodPage struct {
	Payload      []PaymentMethod `json:"payload"`
	TotalRecords int             `json:"totalRecords"`
}

// OutgoingPaymentPage is a paged outgoing payment listing.
type OutgoingPaymentPage struct {
	Payload      []OutgoingPayment `json:"payload"`
	TotalRecords int               `json:"totalRecords"`
}

// OutgoingPaymentCategoryPage is a paged category listing.
type OutgoingPaymentCategoryPage struct {
	Payload      []OutgoingPaymentCategory `json:"payload"`
	TotalRecords int                       `json:"totalRecords"`
}

// UserPage is a paged user listing.
type UserPage struct {
	Payload      []User `json:"payload"`
	TotalRecords int    `json:"totalRecords"`
}
