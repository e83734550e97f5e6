package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"opolo-api/models"
	"opolo-api/service"

	"github.com/gin-gonic/gin"
)

const maxWebhookBytes = 1 << 20

// Registrations is what the HTTP layer needs from the registration service.
type Registrations interface {
	Initiate(ctx context.Context, in models.RegistrationInput) (string, error)
	Reconcile(ctx context.Context, raw []byte) error
	List(ctx context.Context, programType string) ([]models.Registration, error)
	Get(ctx context.Context, paymentID string) (*models.Registration, error)
}

type RegistrationHandler struct {
	svc     Registrations
	timeout time.Duration
}

// NewRegistrationHandler wires the registration endpoints. timeout bounds
// each request's store and gateway work on top of the client's own
// cancellation.
func NewRegistrationHandler(svc Registrations, timeout time.Duration) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, timeout: timeout}
}

func (h *RegistrationHandler) Register(r gin.IRouter) {
	r.POST("/api/initiate-payment", h.InitiatePayment)
	r.POST("/webhook/payment", h.PaymentWebhook)
	r.GET("/api/registrations", h.ListRegistrations)
	r.GET("/api/registrations/:paymentId", h.GetRegistration)
}

// InitiatePayment answers 200 with the payment URL or 500 on gateway and
// store failures. Unparseable or invalid forms get 400 instead of 500.
func (h *RegistrationHandler) InitiatePayment(c *gin.Context) {
	var input models.RegistrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid registration data"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	paymentURL, err := h.svc.Initiate(ctx, input)
	if err != nil {
		log.Printf("Initiate Payment Error: %v", err)
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid registration data"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Payment initiation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "paymentUrl": paymentURL})
}

// PaymentWebhook receives gateway notifications. The body is read raw and
// parsed by the service so malformed payloads get a 400 the gateway will not
// retry, while internal failures are still acknowledged with 200.
func (h *RegistrationHandler) PaymentWebhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		log.Printf("Webhook error: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	err = h.svc.Reconcile(ctx, raw)
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case errors.Is(err, service.ErrMalformedEvent), errors.Is(err, service.ErrUnresolvableIdentifier):
		log.Printf("Webhook rejected: %v", err)
		c.Status(http.StatusBadRequest)
	default:
		log.Printf("Webhook error: %v", err)
		c.Status(http.StatusInternalServerError)
	}
}

func (h *RegistrationHandler) ListRegistrations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	regs, err := h.svc.List(ctx, c.Query("programType"))
	if err != nil {
		log.Printf("Fetch registrations error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch registrations."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "registrations": regs})
}

// GetRegistration looks up one registration by gateway payment id.
func (h *RegistrationHandler) GetRegistration(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	reg, err := h.svc.Get(ctx, c.Param("paymentId"))
	if errors.Is(err, service.ErrRegistrationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Registration not found."})
		return
	}
	if err != nil {
		log.Printf("Fetch registration error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch registration."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "registration": reg})
}
