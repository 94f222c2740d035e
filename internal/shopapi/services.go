package shopapi

import (
	"context"
	"fmt"
	"net/url"
)

// SaveService creates a new catalog service.
func (c *Client) SaveService(ctx context.Context, service Service) (*Service, error) {
	var saved Service
	if err := c.post(ctx, "/service/save", service, &saved, "failed to save service"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateService updates an existing catalog service.
func (c *Client) UpdateService(ctx context.Context, service Service) (*Service, error) {
	var saved Service
	if err := c.post(ctx, "/service/update", service, &saved, "failed to update service"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListServices returns one page of services filtered by active status.
func (c *Client) ListServices(ctx context.Context, pageNumber, pageSize int, status bool) (*ServicePage, error) {
	q := pageQuery(pageNumber, pageSize)
	q.Set("status", boolString(status))
	var page ServicePage
	if err := c.get(ctx, "/service/getAllPage", q, &page, "failed to fetch services"); err != nil {
		return nil, err
	}
	return &page, nil
}

// ServicesByName searches services by name substring.
func (c *Client) ServicesByName(ctx context.Context, name string) ([]Service, error) {
	q := url.Values{}
	q.Set("name", name)
	var page ServicePage
	if err := c.get(ctx, "/service/getAllByName", q, &page, "failed to search services"); err != nil {
		return nil, err
	}
	return page.Payload, nil
}

// UpdateServiceStatus toggles a service's active flag.
func (c *Client) UpdateServiceStatus(ctx context.Context, serviceID int64, status bool) error {
	q := url.Values{}
	q.Set("serviceId", fmt.Sprintf("%d", serviceID))
	q.Set("status", boolString(status))
	return c.put(ctx, "/service/updateStatus", q, nil, nil, "failed to update service status")
}
