package cryptomus

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crective/ggp-backend/pkg/config"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
)

const defaultBaseURL = "https://api.cryptomus.com/v1"

var (
	errMerchantRequired   = errors.New("cryptomus merchant id is required")
	errPaymentKeyRequired = errors.New("cryptomus payment key is required")
	errLoggerRequired     = errors.New("cryptomus logger is required")

	// ErrInsufficientFunds marks a payout the merchant balance cannot cover.
	// Callers treat it as a soft failure rather than a gateway outage.
	ErrInsufficientFunds = errors.New("cryptomus: insufficient merchant funds")
)

// Client exposes the Cryptomus payment and payout surface with request
// signing, logging, and domain error mapping in one place.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	merchantID      string
	paymentKey      string
	payoutKey       string
	callbackURL     string
	successURL      string
	returnURL       string
	paymentLifetime string
	logger          *logger.Logger
}

// NewClient validates the merchant credentials and builds the wrapper.
func NewClient(ctx context.Context, cfg config.CryptomusConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	merchantID := strings.TrimSpace(cfg.MerchantID)
	if merchantID == "" {
		return nil, errMerchantRequired
	}
	paymentKey := strings.TrimSpace(cfg.PaymentKey)
	if paymentKey == "" {
		return nil, errPaymentKeyRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	lifetime := strings.TrimSpace(cfg.PaymentLifetime)
	if lifetime == "" {
		lifetime = "43200"
	}

	c := &Client{
		httpClient:      &http.Client{Timeout: timeout},
		baseURL:         baseURL,
		merchantID:      merchantID,
		paymentKey:      paymentKey,
		payoutKey:       strings.TrimSpace(cfg.PayoutKey),
		callbackURL:     strings.TrimSpace(cfg.CallbackURL),
		successURL:      strings.TrimSpace(cfg.SuccessURL),
		returnURL:       strings.TrimSpace(cfg.ReturnURL),
		paymentLifetime: lifetime,
		logger:          logg,
	}

	logg.Info(ctx, "cryptomus client initialized")
	return c, nil
}

// Sign computes the Cryptomus request signature over a raw JSON payload:
// hex(md5(base64(payload) + apiKey)).
func Sign(payload []byte, apiKey string) string {
	encoded := base64.StdEncoding.EncodeToString(payload)
	sum := md5.Sum([]byte(encoded + apiKey))
	return hex.EncodeToString(sum[:])
}

// envelope is the provider's uniform response wrapper. A zero state means
// success; anything else carries a message or structured errors.
type envelope struct {
	State   int             `json:"state"`
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

func (c *Client) post(ctx context.Context, path, apiKey string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding gateway request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("merchant", c.merchantID)
	req.Header.Set("sign", Sign(payload, apiKey))

	c.log(ctx, "request", path, nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", path, err)
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, fmt.Sprintf("cryptomus %s failed", path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "reading gateway response")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, fmt.Sprintf("cryptomus %s returned malformed body", path))
	}

	if resp.StatusCode >= 300 || env.State != 0 {
		providerMsg := env.Message
		if providerMsg == "" && len(env.Errors) > 0 {
			providerMsg = string(env.Errors)
		}
		err := fmt.Errorf("cryptomus %s: state=%d status=%d message=%s", path, env.State, resp.StatusCode, providerMsg)
		if isInsufficientFunds(providerMsg) {
			err = fmt.Errorf("%w: %s", ErrInsufficientFunds, providerMsg)
		}
		c.log(ctx, "error", path, err)
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "payment gateway rejected the request").
			WithDetails(map[string]any{"provider_message": providerMsg})
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeGateway, err, fmt.Sprintf("cryptomus %s returned malformed result", path))
		}
	}

	c.log(ctx, "response", path, nil)
	return nil
}

func isInsufficientFunds(message string) bool {
	return strings.Contains(strings.ToLower(message), "insufficient")
}

func (c *Client) log(ctx context.Context, phase, path string, err error) {
	if c == nil || c.logger == nil {
		return
	}
	ctx = c.logger.WithFields(ctx, map[string]any{
		"gateway": "cryptomus",
		"path":    path,
		"phase":   phase,
	})
	if phase == "error" {
		c.logger.Error(ctx, "cryptomus call failed", err)
		return
	}
	c.logger.Info(ctx, "cryptomus "+phase)
}

// unixTime decodes the provider's epoch-second timestamps, which arrive as
// either a number or a numeric string depending on the endpoint.
type unixTime struct {
	time.Time
}

func (u *unixTime) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var secs int64
	if _, err := fmt.Sscanf(trimmed, "%d", &secs); err != nil {
		return fmt.Errorf("invalid unix timestamp %q", trimmed)
	}
	u.Time = time.Unix(secs, 0).UTC()
	return nil
}
