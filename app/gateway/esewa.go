package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vibast-solutions/ms-go-reservations/app/types"
)

type EsewaConfig struct {
	ProductCode string
	SecretKey   string
	FormURL     string
	StatusURL   string
	HTTPTimeout time.Duration
}

// EsewaGateway implements the eSewa ePay v2 flow: the checkout is a signed
// form POST the buyer's browser submits directly, and verification is a
// server-side transaction status lookup keyed by our transaction UUID.
type EsewaGateway struct {
	cfg    EsewaConfig
	client *http.Client
}

func NewEsewaGateway(cfg EsewaConfig) *EsewaGateway {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &EsewaGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *EsewaGateway) Code() int32 {
	return int32(types.GatewayTypeEsewa)
}

func (g *EsewaGateway) BuildCheckout(_ context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
	if strings.TrimSpace(g.cfg.SecretKey) == "" {
		return nil, errors.New("esewa secret key is not configured")
	}
	if strings.TrimSpace(g.cfg.ProductCode) == "" {
		return nil, errors.New("esewa product code is not configured")
	}

	transactionUUID := fmt.Sprintf("%d-%s", input.AttemptID, uuid.NewString())
	totalAmount := formatEsewaAmount(input.AmountCents)

	fields := map[string]string{
		"amount":                  totalAmount,
		"tax_amount":              "0",
		"total_amount":            totalAmount,
		"transaction_uuid":        transactionUUID,
		"product_code":            g.cfg.ProductCode,
		"product_service_charge":  "0",
		"product_delivery_charge": "0",
		"success_url":             input.SuccessURL,
		"failure_url":             input.FailureURL,
		"signed_field_names":      "total_amount,transaction_uuid,product_code",
	}
	fields["signature"] = esewaSignature(totalAmount, transactionUUID, g.cfg.ProductCode, g.cfg.SecretKey)

	return &CheckoutOutput{
		URL:        g.cfg.FormURL,
		Method:     http.MethodPost,
		Fields:     fields,
		GatewayRef: transactionUUID,
	}, nil
}

func (g *EsewaGateway) VerifyPayment(ctx context.Context, input *VerifyInput) (*VerifyOutput, error) {
	transactionUUID := strings.TrimSpace(input.GatewayRef)
	if transactionUUID == "" {
		return nil, ErrVerificationFailed
	}

	query := url.Values{}
	query.Set("product_code", g.cfg.ProductCode)
	query.Set("total_amount", formatEsewaAmount(input.AmountCents))
	query.Set("transaction_uuid", transactionUUID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.StatusURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

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
		return nil, fmt.Errorf("esewa status check failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var payload struct {
		Status string `json:"status"`
		RefID  string `json:"ref_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	result := &VerifyOutput{GatewayRef: transactionUUID}
	if s := strings.TrimSpace(payload.RefID); s != "" {
		result.GatewayRef = s
	}

	switch strings.ToUpper(strings.TrimSpace(payload.Status)) {
	case "COMPLETE":
		result.Status = int32(types.AttemptStatusPaid)
	case "PENDING", "AMBIGUOUS", "NOT_FOUND":
		result.Status = int32(types.AttemptStatusPending)
	case "CANCELED", "FULL_REFUND", "PARTIAL_REFUND":
		result.Status = int32(types.AttemptStatusFailed)
	default:
		result.Status = int32(types.AttemptStatusPending)
	}

	return result, nil
}

// esewaSignature signs the fields named in signed_field_names, in order, as
// "k1=v1,k2=v2,...", HMAC-SHA256 base64 encoded.
func esewaSignature(totalAmount, transactionUUID, productCode, secret string) string {
	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s", totalAmount, transactionUUID, productCode)
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// formatEsewaAmount renders cents as major units, dropping the decimal part
// when it is zero ("200" rather than "200.00") to match what eSewa signs.
func formatEsewaAmount(amountCents int64) string {
	if amountCents%100 == 0 {
		return strconv.FormatInt(amountCents/100, 10)
	}
	return fmt.Sprintf("%d.%02d", amountCents/100, amountCents%100)
}
