package notify

import (
	"context"
	"net/http"

	"pet-medical-records/internal/platform/httpclient"
	"pet-medical-records/internal/ports/notify"
)

// WebhookGateway entrega las notificaciones a un servicio externo de
// mensajería vía HTTP JSON. El servicio remoto resuelve templates,
// idioma y el envío real (email/push).
type WebhookGateway struct {
	client *httpclient.Client
	apiKey string
}

func NewWebhookGateway(baseURL, apiKey string) (*WebhookGateway, error) {
	client, err := httpclient.NewWithBaseURL(baseURL, httpclient.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return &WebhookGateway{client: client, apiKey: apiKey}, nil
}

type expiryPayload struct {
	RecipientEmail    string `json:"recipient_email"`
	RecipientLanguage string `json:"recipient_language,omitempty"`
	PetName           string `json:"pet_name"`
	ItemName          string `json:"item_name"`
	Kind              string `json:"kind"`
	ExpiresOn         string `json:"expires_on"` // YYYY-MM-DD
	Horizon           string `json:"horizon"`
}

type recordAddedPayload struct {
	RecipientEmail string `json:"recipient_email"`
	PetName        string `json:"pet_name"`
	ItemName       string `json:"item_name"`
	Kind           string `json:"kind"`
}

func (g *WebhookGateway) SendExpiryNotice(ctx context.Context, n notify.ExpiryNotice) error {
	return g.client.DoJSON(ctx, http.MethodPost, "/notifications/expiry", g.headers(), expiryPayload{
		RecipientEmail:    n.RecipientEmail,
		RecipientLanguage: n.RecipientLanguage,
		PetName:           n.PetName,
		ItemName:          n.ItemName,
		Kind:              string(n.Kind),
		ExpiresOn:         n.ExpiresOn.Format("2006-01-02"),
		Horizon:           n.Horizon,
	}, nil)
}

func (g *WebhookGateway) SendRecordAddedNotice(ctx context.Context, n notify.RecordAddedNotice) error {
	return g.client.DoJSON(ctx, http.MethodPost, "/notifications/record-added", g.headers(), recordAddedPayload{
		RecipientEmail: n.RecipientEmail,
		PetName:        n.PetName,
		ItemName:       n.ItemName,
		Kind:           string(n.Kind),
	}, nil)
}

func (g *WebhookGateway) headers() map[string]string {
	if g.apiKey == "" {
		return nil
	}
	return map[string]string{"X-API-Key": g.apiKey}
}
