package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-reservations/app/types"
)

type KhaltiConfig struct {
	SecretKey   string
	BaseURL     string
	WebsiteURL  string
	HTTPTimeout time.Duration
}

// KhaltiGateway implements the Khalti ePayment flow: initiate returns a pidx
// and a hosted payment URL, verification is a lookup on the pidx.
type KhaltiGateway struct {
	cfg    KhaltiConfig
	client *http.Client
}

func NewKhaltiGateway(cfg KhaltiConfig) *KhaltiGateway {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &KhaltiGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *KhaltiGateway) Code() int32 {
	return int32(types.GatewayTypeKhalti)
}

func (g *KhaltiGateway) BuildCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
	if strings.TrimSpace(g.cfg.SecretKey) == "" {
		return nil, errors.New("khalti secret key is not configured")
	}

	payload := map[string]interface{}{
		"return_url":          input.SuccessURL,
		"website_url":         g.cfg.WebsiteURL,
		"amount":              input.AmountCents,
		"purchase_order_id":   strconv.FormatUint(input.AttemptID, 10),
		"purchase_order_name": fmt.Sprintf("property-%d-advance", input.PropertyID),
	}

	body, err := g.postJSON(ctx, "/api/v2/epayment/initiate/", payload)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Pidx       string `json:"pidx"`
		PaymentURL string `json:"payment_url"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if strings.TrimSpace(parsed.Pidx) == "" || strings.TrimSpace(parsed.PaymentURL) == "" {
		return nil, errors.New("khalti initiate response missing pidx or payment_url")
	}

	return &CheckoutOutput{
		URL:        parsed.PaymentURL,
		Method:     http.MethodGet,
		GatewayRef: parsed.Pidx,
	}, nil
}

func (g *KhaltiGateway) VerifyPayment(ctx context.Context, input *VerifyInput) (*VerifyOutput, error) {
	pidx := strings.TrimSpace(input.GatewayRef)
	if pidx == "" {
		return nil, ErrVerificationFailed
	}

	body, err := g.postJSON(ctx, "/api/v2/epayment/lookup/", map[string]interface{}{"pidx": pidx})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
		TotalAmount   int64  `json:"total_amount"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	if parsed.TotalAmount > 0 && parsed.TotalAmount != input.AmountCents {
		return nil, fmt.Errorf("%w: amount mismatch, expected %d got %d", ErrVerificationFailed, input.AmountCents, parsed.TotalAmount)
	}

	result := &VerifyOutput{GatewayRef: pidx}
	if s := strings.TrimSpace(parsed.TransactionID); s != "" {
		result.GatewayRef = s
	}

	switch strings.ToLower(strings.TrimSpace(parsed.Status)) {
	case "completed":
		result.Status = int32(types.AttemptStatusPaid)
	case "pending", "initiated":
		result.Status = int32(types.AttemptStatusPending)
	case "expired":
		result.Status = int32(types.AttemptStatusExpired)
	case "user canceled", "refunded":
		result.Status = int32(types.AttemptStatusFailed)
	default:
		result.Status = int32(types.AttemptStatusPending)
	}

	return result, nil
}

func (g *KhaltiGateway) postJSON(ctx context.Context, path string, payload map[string]interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(g.cfg.BaseURL, "/")+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+g.cfg.SecretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("khalti request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	return body, nil
}
