package shopapi

import (
	"context"
	"fmt"
	"net/url"
)

// SavePaymentMethod creates a payment method.
func (c *Client) SavePaymentMethod(ctx context.Context, method PaymentMethod) (*PaymentMethod, error) {
	var saved PaymentMethod
	if err := c.post(ctx, "/paymentMethod/save", method, &saved, "failed to save payment method"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdatePaymentMethod updates a payment method.
func (c *Client) UpdatePaymentMethod(ctx context.Context, method PaymentMethod) (*PaymentMethod, error) {
	var saved PaymentMethod
	if err := c.post(ctx, "/paymentMethod/update", method, &saved, "failed to update payment method"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListPaymentMethods returns one page of payment methods.
func (c *Client) ListPaymentMethods(ctx context.Context, pageNumber, pageSize int, status bool) (*PaymentMethodPage, error) {
	q := pageQuery(pageNumber, pageSize)
	q.Set("status", boolString(status))
	var page PaymentMethodPage
	if err := c.get(ctx, "/paymentMethod/getAllPage", q, &page, "failed to fetch payment methods"); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePaymentMethodStatus toggles a payment method's active flag.
func (c *Client) UpdatePaymentMethodStatus(ctx context.Context, methodID int64, status bool) error {
	q := url.Values{}
	q.Set("paymentMethodId", fmt.Sprintf("%d", methodID))
	q.Set("status", boolString(status))
	return c.put(ctx, "/paymentMethod/updateStatus", q, nil, nil, "failed to update payment method status")
}

// SaveOutgoingPayment records an expense.
func (c *Client) SaveOutgoingPayment(ctx context.Context, payment OutgoingPayment) (*OutgoingPayment, error) {
	var saved OutgoingPayment
	if err := c.post(ctx, "/outgoingPayment/save", payment, &saved, "failed to save outgoing payment"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateOutgoingPayment updates an expense record.
func (c *Client) UpdateOutgoingPayment(ctx context.Context, payment OutgoingPayment) (*OutgoingPayment, error) {
	var saved OutgoingPayment
	if err := c.post(ctx, "/outgoingPayment/update", payment, &saved, "failed to update outgoing payment"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListOutgoingPayments returns one page of expense records.
func (c *Client) ListOutgoingPayments(ctx context.Context, pageNumber, pageSize int, status bool) (*OutgoingPaymentPage, error) {
	q := pageQuery(pageNumber, pageSize)
	q.Set("status", boolString(status))
	var page OutgoingPaymentPage
	if err := c.get(ctx, "/outgoingPayment/getAllPage", q, &page, "failed to fetch outgoing payments"); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateOutgoingPaymentStatus toggles an expense record's active flag.
func (c *Client) UpdateOutgoingPaymentStatus(ctx context.Context, paymentID int64, status bool) error {
	q := url.Values{}
	q.Set("outgoingPaymentId", fmt.Sprintf("%d", paymentID))
	q.Set("status", boolString(status))
	return c.put(ctx, "/outgoingPayment/updateStatus", q, nil, nil, "failed to update outgoing payment status")
}

// SaveOutgoingPaymentCategory creates an expense category.
func (c *Client) SaveOutgoingPaymentCategory(ctx context.Context, category OutgoingPaymentCategory) (*OutgoingPaymentCategory, error) {
	var saved OutgoingPaymentCategory
	if err := c.post(ctx, "/outgoingPaymentCategory/save", category, &saved, "failed to save outgoing payment category"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateOutgoingPaymentCategory updates an expense category.
func (c *Client) UpdateOutgoingPaymentCategory(ctx context.Context, category OutgoingPaymentCategory) (*OutgoingPaymentCategory, error) {
	var saved OutgoingPaymentCategory
	if err := c.post(ctx, "/outgoingPaymentCategory/update", category, &saved, "failed to update outgoing payment category"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListOutgoingPaymentCategories returns one page of expense categories.
func (c *Client) ListOutgoingPaymentCategories(ctx context.Context, pageNumber, pageSize int, status bool) (*OutgoingPaymentCategoryPage, error) {
	q := pageQuery(pageNumber, pageSize)
	q.Set("status", boolString(status))
	var page OutgoingPaymentCategoryPage
	if err := c.get(ctx, "/outgoingPaymentCategory/getAllPage", q, &page, "failed to fetch outgoing payment categories"); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateOutgoingPaymentCategoryStatus toggles an expense category's active flag.
func (c *Client) UpdateOutgoingPaymentCategoryStatus(ctx context.Context, categoryID int64, status bool) error {
	q := url.Values{}
	q.Set("outgoingPaymentCategoryId", fmt.Sprintf("%d", categoryID))
	q.Set("status", boolString(status))
	return c.put(ctx, "/outgoingPaymentCategory/updateStatus", q, nil, nil, "failed to update outgoing payment category status")
}
