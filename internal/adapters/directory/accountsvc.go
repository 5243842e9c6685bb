package directory

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"pet-medical-records/internal/domain/identity"
	"pet-medical-records/internal/platform/httpclient"
)

// AccountService resuelve identidades contra el servicio de cuentas.
// El core no guarda usuarios; email, rol e idioma viven del otro lado.
type AccountService struct {
	client *httpclient.Client
	apiKey string
}

func NewAccountService(baseURL, apiKey string) (*AccountService, error) {
	client, err := httpclient.NewWithBaseURL(baseURL, httpclient.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return &AccountService{client: client, apiKey: apiKey}, nil
}

type accountResponse struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

func (d *AccountService) GetByID(ctx context.Context, id string) (identity.Identity, error) {
	var headers map[string]string
	if d.apiKey != "" {
		headers = map[string]string{"X-API-Key": d.apiKey}
	}

	var resp accountResponse
	err := d.client.DoJSON(ctx, http.MethodGet, "/accounts/"+url.PathEscape(id), headers, nil, &resp)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return identity.Identity{}, ErrNotFound
		}
		return identity.Identity{}, err
	}

	return identity.Identity{
		ID:       resp.ID,
		Role:     identity.Role(resp.Role),
		Email:    resp.Email,
		Name:     resp.Name,
		Language: resp.Language,
	}, nil
}
