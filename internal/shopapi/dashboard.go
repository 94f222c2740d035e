package shopapi

import "context"

// TransactionTotals aggregates revenue figures as reported upstream.
type TransactionTotals struct {
	TotalAmount        float64 `json:"totalAmount"`
	TotalAdvanceAmount float64 `json:"totalAdvanceAmount"`
	TotalPendingAmount float64 `json:"totalPendingAmount"`
	TransactionCount   int     `json:"transactionCount"`
}

// OutgoingPaymentTotals aggregates expense figures as reported upstream.
type OutgoingPaymentTotals struct {
	TotalAmount  float64 `json:"totalAmount"`
	PaymentCount int     `json:"paymentCount"`
}

// DailyRevenuePoint is one day in the 30-day revenue series.
type DailyRevenuePoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// GetTransactionTotals fetches aggregate transaction figures.
func (c *Client) GetTransactionTotals(ctx context.Context) (*TransactionTotals, error) {
	var totals TransactionTotals
	if err := c.get(ctx, "/transaction/getTransactionTotals", nil, &totals, "failed to fetch transaction totals"); err != nil {
		return nil, err
	}
	return &totals, nil
}

// GetTodayTransactions fetches transactions recorded today.
func (c *Client) GetTodayTransactions(ctx context.Context) ([]Transaction, error) {
	var payload []Transaction
	if err := c.get(ctx, "/transaction/getAllToday", nil, &payload, "failed to fetch today's transactions"); err != nil {
		return nil, err
	}
	return payload, nil
}

// GetLast30DaysRevenue fetches the 30-day revenue series.
func (c *Client) GetLast30DaysRevenue(ctx context.Context) ([]DailyRevenuePoint, error) {
	var payload []DailyRevenuePoint
	if err := c.get(ctx, "/transaction/getLast30DaysData", nil, &payload, "failed to fetch revenue series"); err != nil {
		return nil, err
	}
	return payload, nil
}

// GetTodayOutgoingPayments fetches expenses recorded today.
func (c *Client) GetTodayOutgoingPayments(ctx context.Context) ([]OutgoingPayment, error) {
	var payload []OutgoingPayment
	if err := c.get(ctx, "/outgoingPayment/getAllToday", nil, &payload, "failed to fetch today's outgoing payments"); err != nil {
		return nil, err
	}
	return payload, nil
}

// GetOutgoingPaymentTotals fetches aggregate expense figures.
func (c *Client) GetOutgoingPaymentTotals(ctx context.Context) (*OutgoingPaymentTotals, error) {
	var totals OutgoingPaymentTotals
	if err := c.get(ctx, "/outgoingPayment/getTransactionTotals", nil, &totals, "failed to fetch outgoing payment totals"); err != nil {
		return nil, err
	}
	return &totals, nil
}
