package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cineseat/internal/shared/config"
)

// ProviderStatus is the provider's verdict on a payment intent.
type ProviderStatus string

const (
	ProviderSucceeded ProviderStatus = "SUCCEEDED"
	ProviderPending   ProviderStatus = "PENDING"
	ProviderFailed    ProviderStatus = "FAILED"
)

// PaymentProvider confirms whether an intent was actually paid. Finalize
// never trusts the caller; the provider is the source of truth.
type PaymentProvider interface {
	VerifyPayment(ctx context.Context, intent *PaymentIntent) (ProviderStatus, error)
}

// NewProvider selects the HTTP provider when a URL is configured, and the
// in-process development provider otherwise.
func NewProvider(cfg config.PaymentConfig) PaymentProvider {
	if cfg.ProviderURL == "" {
		return &devProvider{}
	}
	return &httpProvider{
		baseURL: strings.TrimRight(cfg.ProviderURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// httpProvider asks an external payment service for the intent status.
type httpProvider struct {
	baseURL string
	client  *http.Client
}

func (p *httpProvider) VerifyPayment(ctx context.Context, intent *PaymentIntent) (ProviderStatus, error) {
	url := fmt.Sprintf("%s/intents/%s", p.baseURL, intent.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProviderPending, fmt.Errorf("failed to build provider request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return ProviderPending, fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ProviderFailed, nil
	}
	if resp.StatusCode != http.StatusOK {
		return ProviderPending, fmt.Errorf("payment provider returned %d", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ProviderPending, fmt.Errorf("failed to decode provider response: %w", err)
	}

	switch strings.ToUpper(body.Status) {
	case "SUCCEEDED", "PAID", "COMPLETED":
		return ProviderSucceeded, nil
	case "FAILED", "CANCELLED", "DECLINED":
		return ProviderFailed, nil
	default:
		return ProviderPending, nil
	}
}

// devProvider confirms every intent. Development only.
type devProvider struct{}

func (devProvider) VerifyPayment(context.Context, *PaymentIntent) (ProviderStatus, error) {
	return ProviderSucceeded, nil
}
