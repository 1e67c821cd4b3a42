package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crective/ggp-backend/pkg/config"
	pkgerrors "github.com/crective/ggp-backend/pkg/errors"
	"github.com/crective/ggp-backend/pkg/logger"
)

func TestSendPostsBrevoPayload(t *testing.T) {
	var gotKey string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"messageId":"msg-1"}`)
	}))
	defer srv.Close()

	client, err := NewClient(config.MailConfig{
		BrevoAPIKey: "key-123",
		FromEmail:   "orders@ggp.example",
		FromName:    "GGP Orders",
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	client.endpoint = srv.URL

	if err := client.Send(context.Background(), Message{
		To:      "buyer@example.com",
		Subject: "Order received",
		HTML:    "<p>thanks</p>",
	}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotKey != "key-123" {
		t.Fatalf("expected api-key header, got %q", gotKey)
	}
	var sent map[string]any
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if sent["subject"] != "Order received" {
		t.Fatalf("unexpected subject %v", sent["subject"])
	}
}

func TestSendMapsRejectionToDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":"unauthorized"}`)
	}))
	defer srv.Close()

	client, err := NewClient(config.MailConfig{BrevoAPIKey: "bad"}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	client.endpoint = srv.URL

	sendErr := client.Send(context.Background(), Message{To: "x@example.com"})
	typed := pkgerrors.As(sendErr)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", sendErr)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(config.MailConfig{}, nil); err == nil {
		t.Fatal("expected missing api key error")
	}
}
