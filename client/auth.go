package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lakehouselib/lakehouse"
)

// Authenticate logs in and stores the resulting session on the client.
// Every later call carries its access token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (Session, error) {
	if email == "" {
		return Session{}, fmt.Errorf("%w: %w", lakehouse.ErrInvalidInput, ErrEmailRequired)
	}
	if password == "" {
		return Session{}, fmt.Errorf("%w: %w", lakehouse.ErrInvalidInput, ErrPasswordRequired)
	}

	var resp lakehouse.Record
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return Session{}, fmt.Errorf("authenticate: %w", err)
	}

	session := Session{
		UserID:       resp.String("user_id"),
		UserRole:     resp.String("user_role"),
		UserEmail:    email,
		AccessToken:  resp.String("access_token"),
		RefreshToken: resp.String("refresh_token"),
		TokenType:    resp.String("token_type"),
	}
	if session.AccessToken == "" {
		return Session{}, fmt.Errorf("authenticate: %w: response has no access_token", lakehouse.ErrResponseParse)
	}

	c.session = session
	c.logger.Info("session authenticated", "user_id", session.UserID, "role", session.UserRole)
	return session, nil
}
