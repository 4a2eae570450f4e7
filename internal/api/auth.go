package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// AuthService covers sign-up, sign-in and token rotation.
type AuthService struct {
	c *Client
}

// Signup registers a user. It does not sign in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (User, error) {
	var u User
	err := s.c.send(ctx, http.MethodPost, "/auth/signup", req, &u)
	return u, err
}

// Login signs in and stores the issued tokens. A response without an access
// token leaves the client signed out.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var tok TokenResponse
	req := LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := s.c.send(ctx, http.MethodPost, "/auth/login", req, &tok); err != nil {
		return TokenResponse{}, err
	}
	if tok.AccessToken == "" {
		return tok, s.c.tokens.Clear()
	}
	if err := s.c.tokens.SaveTokens(Tokens{Access: tok.AccessToken, Refresh: tok.RefreshToken}); err != nil {
		return TokenResponse{}, err
	}
	return tok, nil
}

// IsAuthenticated reports whether an access token is stored.
func (s *AuthService) IsAuthenticated() bool { return s.c.LoggedIn() }

// Logout revokes the refresh token server-side and always clears local tokens.
// A failed server call is logged, not returned.
func (s *AuthService) Logout(ctx context.Context) error {
	tok, err := s.c.tokens.Tokens()
	if err == nil && tok.Refresh != "" {
		body := map[string]string{"refreshToken": tok.Refresh}
		if err := s.c.send(ctx, http.MethodPost, "/auth/logout", body, nil); err != nil {
			s.c.log.Warn("server logout failed", zap.Error(err))
		}
	}
	return s.c.tokens.Clear()
}

// Refresh exchanges the stored refresh token for a new access token. The
// refresh token is replaced only when the server sends a new one.
func (s *AuthService) Refresh(ctx context.Context) (TokenResponse, error) {
	cur, err := s.c.tokens.Tokens()
	if err != nil {
		return TokenResponse{}, err
	}
	if cur.Refresh == "" {
		return TokenResponse{}, ErrNoRefreshToken
	}

	var tok TokenResponse
	body := map[string]string{"refreshToken": cur.Refresh}
	if err := s.c.send(ctx, http.MethodPost, "/auth/refresh", body, &tok); err != nil {
		return TokenResponse{}, err
	}
	if tok.AccessToken == "" {
		return tok, nil
	}
	next := Tokens{Access: tok.AccessToken, Refresh: cur.Refresh}
	if tok.RefreshToken != "" {
		next.Refresh = tok.RefreshToken
	}
	if err := s.c.tokens.SaveTokens(next); err != nil {
		return TokenResponse{}, err
	}
	return tok, nil
}

// CheckEmail asks whether an address is still free.
func (s *AuthService) CheckEmail(ctx context.Context, email string) (EmailAvailability, error) {
	var out EmailAvailability
	q := url.Values{"email": {strings.TrimSpace(email)}}
	err := s.c.get(ctx, "/auth/check-email", q, &out)
	return out, err
}
