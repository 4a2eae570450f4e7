package api

import (
	"context"
	"net/http"
)

// UserService reads and edits the signed-in profile.
type UserService struct {
	c *Client
}

func (s *UserService) Me(ctx context.Context) (User, error) {
	var u User
	err := s.c.get(ctx, "/users/me", nil, &u)
	return u, err
}

func (s *UserService) UpdateMe(ctx context.Context, req UserUpdateRequest) (User, error) {
	var u User
	err := s.c.send(ctx, http.MethodPut, "/users/me", req, &u)
	return u, err
}
