package cryptomus

import (
	"crypto/subtle"
	"encoding/json"
	"regexp"
)

// The provider signs the callback body with the sign field removed but the
// remaining bytes untouched, so the field has to be spliced out of the raw
// payload rather than re-marshalled.
var signFieldPattern = regexp.MustCompile(`,?\s*"sign"\s*:\s*"[0-9a-fA-F]*"`)

// ExtractWebhookSign pulls the sign field out of a raw callback body and
// returns the body with the field removed.
func ExtractWebhookSign(body []byte) (stripped []byte, sign string) {
	var probe struct {
		Sign string `json:"sign"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return body, ""
	}
	return signFieldPattern.ReplaceAll(body, nil), probe.Sign
}

// VerifyWebhookSign checks a callback signature against the payment API key.
// The body must be the raw request bytes as received.
func (c *Client) VerifyWebhookSign(body []byte) bool {
	return VerifyWebhookSign(body, c.paymentKey)
}

// VerifyWebhookSign is the key-explicit form used by webhook services that
// hold the key without a full client.
func VerifyWebhookSign(body []byte, apiKey string) bool {
	stripped, sign := ExtractWebhookSign(body)
	if sign == "" {
		return false
	}
	expected := Sign(stripped, apiKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(sign)) == 1
}
