package mail

import (
	"bytes"
	"context"
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

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

var errAPIKeyRequired = errors.New("brevo api key is required")

// Sender delivers a single transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound transactional email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Client sends transactional email through Brevo's SMTP API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	fromEmail  string
	fromName   string
	logger     *logger.Logger
}

// NewClient validates the API key and builds the mail client.
func NewClient(cfg config.MailConfig, logg *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.BrevoAPIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   brevoEndpoint,
		apiKey:     apiKey,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		logger:     logg,
	}, nil
}

type brevoParty struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

// Send posts the message to Brevo. Callers treat failures as best effort;
// the error is returned for logging and the notification audit row only.
func (c *Client) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(brevoRequest{
		Sender:      brevoParty{Email: c.fromEmail, Name: c.fromName},
		To:          []brevoParty{{Email: msg.To, Name: msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding mail request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building mail request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mail provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("brevo status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if c.logger != nil {
			c.logger.Error(ctx, "mail send rejected", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mail provider rejected the message")
	}
	return nil
}
