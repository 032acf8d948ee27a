package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Auth returns an auth client.
func (c *Client) Auth() *AuthClient {
	return &AuthClient{client: c}
}

// AuthClient handles GoTrue authentication operations.
type AuthClient struct {
	client *Client
}

// AuthResponse is the response from sign-up and sign-in.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// User represents a Supabase auth user.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Role         string         `json:"role"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
	AppMetadata  map[string]any `json:"app_metadata"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// SignUp creates a new user. Additional metadata (such as the intended
// staff role) is attached to the auth record.
func (a *AuthClient) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*AuthResponse, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}
	return a.post(ctx, "/auth/v1/signup", payload, "")
}

// SignIn signs in a user with email and password.
func (a *AuthClient) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	return a.post(ctx, "/auth/v1/token?grant_type=password", payload, "")
}

// SignOut revokes the session behind accessToken.
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	reqURL := a.client.baseURL + "/auth/v1/logout"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	a.client.setHeaders(ctx, req)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.client.do(req)
	if err != nil {
		return err
	}
	return resp.Error()
}

// GetUser gets the user behind accessToken.
func (a *AuthClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	reqURL := a.client.baseURL + "/auth/v1/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	a.client.setHeaders(ctx, req)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.client.do(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Error(); err != nil {
		return nil, err
	}

	var user User
	if err := resp.JSON(&user); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &user, nil
}

func (a *AuthClient) post(ctx context.Context, path string, payload any, token string) (*AuthResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.client.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	a.client.setHeaders(ctx, req)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.do(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Error(); err != nil {
		return nil, err
	}

	var authResp AuthResponse
	if err := resp.JSON(&authResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &authResp, nil
}
