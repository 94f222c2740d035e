package shopapi

import (
	"context"
	"fmt"
	"net/url"
)

// LoginResult is the upstream login payload.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"userDto"`
}

// Login exchanges operator credentials for a bearer token. This is the one
// call issued without a token bound to the client.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	// The login endpoint is the only unauthenticated call; bind a placeholder
	// token so the shared core does not short-circuit.
	bound := c
	if c.token == "" {
		bound = c.WithToken("anonymous")
	}
	body := map[string]string{"username": username, "password": password}
	var result LoginResult
	if err := bound.post(ctx, "/user/login", body, &result, "failed to sign in"); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetShopDetails returns the shop profile printed on receipts.
func (c *Client) GetShopDetails(ctx context.Context) (*ShopDetails, error) {
	var details ShopDetails
	if err := c.get(ctx, "/shopDetails/get", nil, &details, "failed to fetch shop details"); err != nil {
		return nil, err
	}
	return &details, nil
}

// SaveShopDetails creates the shop profile.
func (c *Client) SaveShopDetails(ctx context.Context, details ShopDetails) (*ShopDetails, error) {
	var saved ShopDetails
	if err := c.post(ctx, "/shopDetails/save", details, &saved, "failed to save shop details"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateShopDetails updates the shop profile.
func (c *Client) UpdateShopDetails(ctx context.Context, details ShopDetails) (*ShopDetails, error) {
	var saved ShopDetails
	if err := c.post(ctx, "/shopDetails/update", details, &saved, "failed to update shop details"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// SaveUser creates an operator account.
func (c *Client) SaveUser(ctx context.Context, user User) (*User, error) {
	var saved User
	if err := c.post(ctx, "/user/save", user, &saved, "failed to save user"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateUser updates an operator account.
func (c *Client) UpdateUser(ctx context.Context, user User) (*User, error) {
	var saved User
	if err := c.post(ctx, "/user/update", user, &saved, "failed to update user"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListUsers returns one page of operator accounts.
func (c *Client) ListUsers(ctx context.Context, pageNumber, pageSize int, status bool) (*UserPage, error) {
	q := pageQuery(pageNumber, pageSize)
	q.Set("status", boolString(status))
	var page UserPage
	if err := c.get(ctx, "/user/getAllPage", q, &page, "failed to fetch users"); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateUserStatus toggles an operator account's active flag.
func (c *Client) UpdateUserStatus(ctx context.Context, userID int64, status bool) error {
	q := url.Values{}
	q.Set("userId", fmt.Sprintf("%d", userID))
	q.Set("status", boolString(status))
	return c.put(ctx, "/user/updateStatus", q, nil, nil, "failed to update user status")
}
