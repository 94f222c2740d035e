package shopapi

import (
	"context"
	"fmt"
	"net/url"
)

// SaveTransaction creates a new transaction and returns the stored record.
func (c *Client) SaveTransaction(ctx context.Context, txn Transaction) (*Transaction, error) {
	var saved Transaction
	if err := c.post(ctx, "/transaction/save", txn, &saved, "failed to save transaction"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateTransaction updates an existing transaction, detail list included.
func (c *Client) UpdateTransaction(ctx context.Context, txn Transaction) (*Transaction, error) {
	var saved Transaction
	if err := c.put(ctx, "/transaction/update", nil, txn, &saved, "failed to update transaction"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListTransactions returns one page of transactions, newest first.
func (c *Client) ListTransactions(ctx context.Context, pageNumber, pageSize int) (*TransactionPage, error) {
	var page TransactionPage
	if err := c.get(ctx, "/transaction/getAllPage", pageQuery(pageNumber, pageSize), &page, "failed to fetch transactions"); err != nil {
		return nil, err
	}
	return &page, nil
}

// TransactionsByCustomer returns one page of a customer's transactions.
func (c *Client) TransactionsByCustomer(ctx context.Context, pageNumber, pageSize int, customerID int64) (*TransactionPage, error) {
	q := pageQuery(pageNumber, pageSize)
	q.Set("customerId", fmt.Sprintf("%d", customerID))
	var page TransactionPage
	if err := c.get(ctx, "/transaction/getAllPageByCustomer", q, &page, "failed to fetch customer transactions"); err != nil {
		return nil, err
	}
	return &page, nil
}

// TransactionsByStatus returns one page of transactions in the given status.
func (c *Client) TransactionsByStatus(ctx context.Context, pageNumber, pageSize int, status string) (*TransactionPage, error) {
	q := pageQuery(pageNumber, pageSize)
	q.Set("status", status)
	var page TransactionPage
	if err := c.get(ctx, "/transaction/getAllPageByStatus", q, &page, "failed to fetch transactions by status"); err != nil {
		return nil, err
	}
	return &page, nil
}

// TransactionsByTransactionNo returns one page matching a receipt number.
func (c *Client) TransactionsByTransactionNo(ctx context.Context, pageNumber, pageSize int, transactionNo string) (*TransactionPage, error) {
	q := pageQuery(pageNumber, pageSize)
	q.Set("transactionNo", transactionNo)
	var page TransactionPage
	if err := c.get(ctx, "/transaction/getAllPageByTransactionNo", q, &page, "failed to fetch transactions by number"); err != nil {
		return nil, err
	}
	return &page, nil
}

// LatestTransactionNo returns the most recent known transaction number, empty
// when no transaction exists yet.
func (c *Client) LatestTransactionNo(ctx context.Context) (string, error) {
	page, err := c.ListTransactions(ctx, 1, 1)
	if err != nil {
		return "", err
	}
	if len(page.Payload) == 0 {
		return "", nil
	}
	return page.Payload[0].TransactionNo, nil
}

// UpdateTransactionDetailStatus toggles a single detail line's active flag.
func (c *Client) UpdateTransactionDetailStatus(ctx context.Context, detailID int64, status bool) error {
	q := url.Values{}
	q.Set("transactionDetailsId", fmt.Sprintf("%d", detailID))
	q.Set("status", boolString(status))
	return c.put(ctx, "/transaction/updateTransactionDetailsStatus", q, nil, nil, "failed to update transaction detail status")
}
