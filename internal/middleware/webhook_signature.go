package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"vaccinebooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const HeaderRazorpaySignature = "X-Razorpay-Signature"

// WebhookSignature verifies the gateway's HMAC-SHA256 signature over the raw
// body. GET redirects carry no body and pass through; the payment is
// re-fetched from the gateway before anything changes anyway.
func WebhookSignature(secret string, log logrus.FieldLogger) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_BODY", "Could not read request body", nil)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		sig := c.GetHeader(HeaderRazorpaySignature)
		if sig == "" {
			logWebhookFailure(c, log, "missing_signature")
			response.Error(c, http.StatusUnauthorized, "SIGNATURE_MISSING", "Webhook signature is required", nil)
			c.Abort()
			return
		}

		mac := hmac.New(sha256.New, key)
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(expected), []byte(sig)) {
			logWebhookFailure(c, log, "invalid_signature")
			response.Error(c, http.StatusUnauthorized, "SIGNATURE_INVALID", "Webhook signature does not match", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func logWebhookFailure(c *gin.Context, log logrus.FieldLogger, reason string) {
	log.WithFields(logrus.Fields{
		"request_id": GetRequestID(c),
		"client_ip":  c.ClientIP(),
		"reason":     reason,
	}).Warn("webhook authentication failed")
}
