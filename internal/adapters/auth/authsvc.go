package auth

import (
	"context"
	"errors"
	"net/http"

	"pet-medical-records/internal/platform/httpclient"
	"pet-medical-records/internal/ports/auth"
)

var ErrInvalidToken = errors.New("invalid token")

// ServiceVerifier valida bearer tokens contra el servicio de auth por
// introspección HTTP. El core no firma ni parsea tokens.
type ServiceVerifier struct {
	client *httpclient.Client
}

func NewServiceVerifier(baseURL string) (*ServiceVerifier, error) {
	client, err := httpclient.NewWithBaseURL(baseURL, httpclient.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return &ServiceVerifier{client: client}, nil
}

type introspectResponse struct {
	Active   bool   `json:"active"`
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Language string `json:"language"`
}

func (v *ServiceVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	var resp introspectResponse
	err := v.client.DoJSON(ctx, http.MethodPost, "/auth/introspect", nil, map[string]string{
		"token": token,
	}, &resp)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized {
			return auth.Claims{}, ErrInvalidToken
		}
		return auth.Claims{}, err
	}
	if !resp.Active || resp.UserID == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	return auth.Claims{
		UserID:   resp.UserID,
		Email:    resp.Email,
		Role:     resp.Role,
		Language: resp.Language,
	}, nil
}
