package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const refreshTimeout = 10 * time.Second

// Paths that never carry a bearer token and never trigger a refresh.
var publicPaths = []string{"/auth/login", "/auth/signup", "/auth/refresh"}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// authTransport attaches the bearer token and recovers from expired access
// tokens. Concurrent 401s share a single refresh call.
type authTransport struct {
	base      http.RoundTripper
	tokens    TokenStore
	secure    bool
	refresh   func(context.Context) (TokenResponse, error)
	onExpired func()
	log       *zap.Logger

	group singleflight.Group
}

func (t *authTransport) next() http.RoundTripper {
	if t.base != nil {
		return t.base
	}
	return http.DefaultTransport
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.secure && req.URL.Scheme == "http" {
		req.URL.Scheme = "https"
		req.Host = ""
	}
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	if isPublic(req.URL.Path) {
		req.Header.Del("Authorization")
		return t.next().RoundTrip(req)
	}

	sent := t.accessToken()
	if sent != "" {
		req.Header.Set("Authorization", "Bearer "+sent)
	}
	resp, err := t.next().RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	// a body we cannot rewind cannot be replayed
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}

	access, err := t.renew(req.Context(), sent)
	if err != nil {
		discard(resp)
		return nil, err
	}

	retry, err := rewind(req, access)
	if err != nil {
		return resp, nil
	}
	discard(resp)
	t.log.Debug("retrying after token refresh",
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
	)
	return t.next().RoundTrip(retry)
}

func (t *authTransport) accessToken() string {
	tok, err := t.tokens.Tokens()
	if err != nil {
		t.log.Warn("read tokens", zap.Error(err))
		return ""
	}
	return tok.Access
}

// renew returns an access token to retry with. If another request already
// rotated the token after ours was sent, that token is used without a new
// refresh.
func (t *authTransport) renew(ctx context.Context, sent string) (string, error) {
	if cur := t.accessToken(); cur != "" && cur != sent {
		return cur, nil
	}
	ch := t.group.DoChan("refresh", func() (any, error) {
		if cur := t.accessToken(); cur != "" && cur != sent {
			return cur, nil
		}
		// detach so one caller's cancellation does not fail every waiter
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		tok, err := t.refresh(rctx)
		if err == nil && tok.AccessToken == "" {
			err = errors.New("refresh returned no access token")
		}
		if err != nil {
			t.expire(err)
			return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		t.log.Info("access token refreshed")
		return tok.AccessToken, nil
	})
	select {
	case <-ctx.Done():
		// the refresh keeps going for the other waiters
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			t.log.Debug("joined in-flight refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (t *authTransport) expire(cause error) {
	t.log.Warn("token refresh failed, clearing session", zap.Error(cause))
	if err := t.tokens.Clear(); err != nil {
		t.log.Error("clear tokens", zap.Error(err))
	}
	if t.onExpired != nil {
		t.onExpired()
	}
}

func rewind(req *http.Request, access string) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+access)
	return retry, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
