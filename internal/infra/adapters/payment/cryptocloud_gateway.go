// File: internal/infra/adapters/payment/cryptocloud_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/SERG-KRUK/tgbot/internal/domain"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*CryptoCloudGateway)(nil)

// settlementCurrencies are the currencies an invoice may be settled in.
var settlementCurrencies = []string{"USDT_TRC20", "USDT_ERC20", "BTC"}

// CryptoCloudGateway implements adapter.PaymentGateway against the
// CryptoCloud v2 invoice API. Expected provider error responses come
// back as domain errors; only transport-level surprises wrap raw errors.
type CryptoCloudGateway struct {
	apiKey string
	shopID string
	base   string // e.g., https://api.cryptocloud.plus/v2
	client *http.Client
	log    *zerolog.Logger
}

func NewCryptoCloudGateway(apiKey, shopID, baseURL string, logger *zerolog.Logger) (*CryptoCloudGateway, error) {
	if apiKey == "" {
		return nil, errors.New("cryptocloud api key empty")
	}
	if shopID == "" {
		return nil, errors.New("cryptocloud shop id empty")
	}
	if baseURL == "" {
		baseURL = "https://api.cryptocloud.plus/v2"
	}
	l := logger.With().Str("component", "CryptoCloudGateway").Logger()
	return &CryptoCloudGateway{
		apiKey: apiKey,
		shopID: shopID,
		base:   baseURL,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    &l,
	}, nil
}

func (g *CryptoCloudGateway) Name() string { return "cryptocloud" }

// CreateInvoice calls /invoice/create and returns the provider invoice
// id and pay link.
func (g *CryptoCloudGateway) CreateInvoice(ctx context.Context, amountUSD float64, orderID string) (adapter.CreatedInvoice, error) {
	payload := map[string]any{
		"shop_id":  g.shopID,
		"amount":   fmt.Sprintf("%.2f", amountUSD),
		"currency": "USD",
		"order_id": orderID,
		"add_fields": map[string]any{
			"available_currencies": settlementCurrencies,
		},
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base+"/invoice/create", bytes.NewReader(b))
	if err != nil {
		return adapter.CreatedInvoice{}, err
	}
	req.Header.Set("Authorization", "Token "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return adapter.CreatedInvoice{}, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}
	defer resp.Body.Close()

	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Result  struct {
			UUID string `json:"uuid"`
			Link string `json:"link"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.CreatedInvoice{}, fmt.Errorf("%w: decode: %v", domain.ErrPaymentFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := out.Message
		if msg == "" {
			msg = "unknown error"
		}
		g.log.Warn().Int("http_status", resp.StatusCode).Str("message", msg).Msg("invoice create rejected")
		return adapter.CreatedInvoice{}, fmt.Errorf("%w: %s", domain.ErrPaymentFailed, msg)
	}
	if out.Status != "success" || out.Result.UUID == "" {
		g.log.Warn().Str("status", out.Status).Msg("invoice create failed")
		return adapter.CreatedInvoice{}, domain.ErrPaymentFailed
	}
	return adapter.CreatedInvoice{ID: out.Result.UUID, PayLink: out.Result.Link}, nil
}

// InvoiceStatus calls /invoice/info and returns the provider's literal
// status string. Any failure yields "error", which callers treat as
// not confirmed yet.
func (g *CryptoCloudGateway) InvoiceStatus(ctx context.Context, invoiceID string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.base+"/invoice/info?uuid="+invoiceID, nil)
	if err != nil {
		return "error"
	}
	req.Header.Set("Authorization", "Token "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn().Err(err).Str("invoice_id", invoiceID).Msg("invoice status request failed")
		return "error"
	}
	defer resp.Body.Close()

	var out struct {
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "error"
	}
	if out.Result.Status == "" {
		return "error"
	}
	return out.Result.Status
}
