package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"vaccinebooking/internal/domain"
	"vaccinebooking/internal/pkg/apperror"
)

type IdentityClient struct {
	c *Client
}

func NewIdentityClient(c *Client) *IdentityClient {
	return &IdentityClient{c: c}
}

// GetUser resolves a user id. A 404 becomes UserNotFound.
func (ic *IdentityClient) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var env envelope[*domain.User]
	err := ic.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", userID), nil, &env)
	if IsNotFound(err) {
		return nil, apperror.UserNotFound(fmt.Sprintf("user %d does not exist", userID))
	}
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, apperror.UserNotFound(fmt.Sprintf("user %d does not exist", userID))
	}
	if env.Data.ID == 0 {
		env.Data.ID = userID
	}
	return env.Data, nil
}

func (ic *IdentityClient) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var env envelope[*domain.User]
	err := ic.c.do(ctx, http.MethodGet, "/api/v1/users/email/"+url.PathEscape(email), nil, &env)
	if IsNotFound(err) || (err == nil && (env.Data == nil || env.Data.ID == 0)) {
		return nil, apperror.UserNotFound(fmt.Sprintf("no user with email %s", email))
	}
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}
