package httpserver

import (
	"errors"
	"io"
	"log"
	"net/http"

	"storefront/internal/domain"
	paymentsvc "storefront/internal/service/payment"
	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the gateway's payload signature.
const SignatureHeader = "Gateway-Signature"

const maxWebhookBody = 1 << 20

// webhookHandler feeds raw deliveries to the reconciler. Response codes
// drive the sender's retry behavior: 2xx acknowledges (including events we
// deliberately ignore), 4xx rejects for good, 5xx asks for redelivery.
func webhookHandler(svc *paymentsvc.Service, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		err = svc.Process(c.Request.Context(), payload, c.GetHeader(SignatureHeader))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"received": true})
		case errors.Is(err, domain.ErrBadSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		case errors.Is(err, paymentsvc.ErrMalformed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		default:
			logger.Printf("webhook: processing failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
	}
}
