package client

import (
	"context"
	"fmt"
	"net/http"
)

// SignInRequest represents a sign-in request. Remember asks for the long
// session duration.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// AuthResponse represents an authentication response. ExpiresAt is epoch
// milliseconds.
type AuthResponse struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expiresAt"`
}

// SignIn authenticates the admin and stores the token for subsequent
// requests.
func (c *Client) SignIn(ctx context.Context, email, password string, remember bool) (*AuthResponse, error) {
	req := SignInRequest{
		Email:    email,
		Password: password,
		Remember: remember,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/signin", req)
	if err != nil {
		return nil, fmt.Errorf("signin request failed: %w", err)
	}

	var result AuthResponse
	if err := decodeResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to decode signin response: %w", err)
	}

	c.SetAuthToken(result.Token)
	return &result, nil
}

// SignOut revokes the current token and clears it from the client.
func (c *Client) SignOut(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/signout", nil)
	if err != nil {
		return fmt.Errorf("signout request failed: %w", err)
	}
	if err := decodeResponse(resp, nil); err != nil {
		return err
	}

	c.authToken = ""
	return nil
}

// CurrentUser returns the email of the authenticated admin.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	var result map[string]string
	if err := decodeResponse(resp, &result); err != nil {
		return "", err
	}
	return result["email"], nil
}
