package shopapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// SaveCustomer creates a new customer and returns the stored record.
func (c *Client) SaveCustomer(ctx context.Context, customer Customer) (*Customer, error) {
	var saved Customer
	if err := c.post(ctx, "/customer/save", customer, &saved, "failed to save customer"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateCustomer updates an existing customer.
func (c *Client) UpdateCustomer(ctx context.Context, customer Customer) (*Customer, error) {
	var saved Customer
	if err := c.post(ctx, "/customer/update", customer, &saved, "failed to update customer"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListCustomers returns one page of customers filtered by active status.
func (c *Client) ListCustomers(ctx context.Context, pageNumber, pageSize int, status bool) (*CustomerPage, error) {
	q := pageQuery(pageNumber, pageSize)
	q.Set("status", boolString(status))
	var page CustomerPage
	if err := c.get(ctx, "/customer/getAllPage", q, &page, "failed to fetch customers"); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) customersBy(ctx context.Context, path, field, value string) ([]Customer, error) {
	q := url.Values{}
	q.Set(field, value)
	var page CustomerPage
	if err := c.get(ctx, path, q, &page, "failed to search customers"); err != nil {
		return nil, err
	}
	return page.Payload, nil
}

// CustomersByMobileNumber searches customers by mobile number substring.
func (c *Client) CustomersByMobileNumber(ctx context.Context, mobileNumber string) ([]Customer, error) {
	return c.customersBy(ctx, "/customer/getAllByMobileNumber", "mobileNumber", mobileNumber)
}

// CustomersByVehicleNumber searches customers by vehicle number substring.
func (c *Client) CustomersByVehicleNumber(ctx context.Context, vehicleNumber string) ([]Customer, error) {
	return c.customersBy(ctx, "/customer/getAllByVehicleNumber", "vehicleNumber", vehicleNumber)
}

// CustomersByName searches customers by name substring.
func (c *Client) CustomersByName(ctx context.Context, name string) ([]Customer, error) {
	return c.customersBy(ctx, "/customer/getAllByName", "name", name)
}

// SearchCustomers fans the term out to the three substring endpoints and merges
// the results, de-duplicated by customer id. Order follows first appearance
// across mobile, vehicle, then name matches.
func (c *Client) SearchCustomers(ctx context.Context, term string) ([]Customer, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	byMobile, err := c.CustomersByMobileNumber(ctx, term)
	if err != nil {
		return nil, err
	}
	byVehicle, err := c.CustomersByVehicleNumber(ctx, term)
	if err != nil {
		return nil, err
	}
	byName, err := c.CustomersByName(ctx, term)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	merged := make([]Customer, 0, len(byMobile)+len(byVehicle)+len(byName))
	for _, group := range [][]Customer{byMobile, byVehicle, byName} {
		for _, customer := range group {
			if seen[customer.ID] {
				continue
			}
			seen[customer.ID] = true
			merged = append(merged, customer)
		}
	}
	return merged, nil
}

// UpdateCustomerStatus toggles a customer's active flag.
func (c *Client) UpdateCustomerStatus(ctx context.Context, customerID int64, status bool) error {
	q := url.Values{}
	q.Set("customerId", fmt.Sprintf("%d", customerID))
	q.Set("status", boolString(status))
	return c.put(ctx, "/customer/updateStatus", q, nil, nil, "failed to update customer status")
}
