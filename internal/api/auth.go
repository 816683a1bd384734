package api

import (
	"context"
	"net/http"

	"github.com/blaemedia/alx-project-nexus/internal/models"
	"github.com/blaemedia/alx-project-nexus/internal/session"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RePassword string `json:"re_password"`
}

type ResetConfirmation struct {
	UID           string `json:"uid"`
	Token         string `json:"token"`
	NewPassword   string `json:"new_password"`
	ReNewPassword string `json:"re_new_password"`
}

// CreateToken exchanges credentials for an access/refresh pair.
func (c *Client) CreateToken(ctx context.Context, creds Credentials) (models.TokenPair, error) {
	var pair models.TokenPair
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/jwt/create/", body: creds}, &pair)
	return pair, err
}

// RefreshToken obtains a new access token. The refresh token in the answer is
// empty unless the backend rotates it.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/jwt/refresh/",
		body:   map[string]string{"refresh": refresh},
	}, &pair)
	return pair, err
}

func (c *Client) Register(ctx context.Context, reg Registration) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/users/", body: reg}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Me(ctx context.Context, sess *session.Session) (*models.User, error) {
	var u models.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/auth/users/me/", sess: sess, auth: true}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ResetPassword asks the backend to mail a reset link. Any 2xx is success.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/users/reset_password/",
		body:   map[string]string{"email": email},
	}, nil)
}

func (c *Client) ResetPasswordConfirm(ctx context.Context, in ResetConfirmation) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/users/reset_password_confirm/",
		body:   in,
	}, nil)
}
