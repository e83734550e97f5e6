package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"opolo-api/database"
	"opolo-api/gateway"
	"opolo-api/models"

	"github.com/go-playground/validator/v10"
)

// Store persists registration records keyed by gateway payment id.
type Store interface {
	Insert(ctx context.Context, reg *models.Registration) error
	// MarkSettled must only change a record whose status is still pending
	// and report whether it did.
	MarkSettled(ctx context.Context, paymentID string, status models.RegistrationStatus, paidAt time.Time) (bool, error)
	List(ctx context.Context, programType string) ([]models.Registration, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Registration, error)
}

// Gateway creates payment intents on the remote payment service.
type Gateway interface {
	CreatePayment(ctx context.Context, in gateway.PaymentRequest) (*gateway.Payment, error)
}

type Options struct {
	CallbackURL string
	WebhookURL  string
	// StoreTimeout bounds each store call. Zero leaves only the caller's
	// deadline.
	StoreTimeout time.Duration
}

// RegistrationService drives the registration lifecycle: intake creates a
// pending record after the gateway accepts the payment, and webhook
// reconciliation moves it to success or failed exactly once.
type RegistrationService struct {
	store    Store
	gateway  Gateway
	opts     Options
	validate *validator.Validate
	now      func() time.Time
}

func NewRegistrationService(store Store, gw Gateway, opts Options) *RegistrationService {
	return &RegistrationService{
		store:    store,
		gateway:  gw,
		opts:     opts,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Initiate validates the form, creates the payment on the gateway, persists a
// pending registration and returns the URL the registrant must visit to pay.
// The URL is only returned once the record is stored.
func (s *RegistrationService) Initiate(ctx context.Context, in models.RegistrationInput) (string, error) {
	in = trimInput(in)
	if err := s.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}

	payment, err := s.gateway.CreatePayment(ctx, gateway.PaymentRequest{
		Amount:      in.Amount,
		Name:        in.Name,
		Email:       in.Email,
		Currency:    gateway.CurrencyNGN,
		Note:        "Payment for " + in.ProgramType,
		CallbackURL: s.opts.CallbackURL,
		WebhookURL:  s.opts.WebhookURL,
		Metadata: gateway.PaymentMetadata{
			Phone:       in.Phone,
			Location:    in.Location,
			ProgramType: in.ProgramType,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGateway, err)
	}

	reg := &models.Registration{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Location:    in.Location,
		ProgramType: in.ProgramType,
		Amount:      in.Amount,
		PaymentID:   payment.ID,
		Status:      models.StatusPending,
		CreatedAt:   s.now(),
	}
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.Insert(storeCtx, reg); err != nil {
		// The gateway intent exists with no local record; log it for manual settlement.
		logf(ctx, "RECONCILIATION DEBT: payment %s created on gateway but not stored (email=%s amount=%.2f program=%s): %v",
			payment.ID, in.Email, in.Amount, in.ProgramType, err)
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	logf(ctx, "Centiiv payment created: %s", payment.ID)
	return payment.Link, nil
}

// Reconcile applies a gateway webhook to the matching registration. Only
// ErrMalformedEvent and ErrUnresolvableIdentifier are returned; a missing
// record, a record that already settled, or a store failure are logged and
// acknowledged so the gateway does not keep redelivering.
func (s *RegistrationService) Reconcile(ctx context.Context, raw []byte) error {
	ev, err := ParsePaymentEvent(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	paymentID := ev.PaymentID()
	if paymentID == "" {
		return ErrUnresolvableIdentifier
	}

	status := NormalizeStatus(ev.StatusText())
	if !status.Terminal() {
		logf(ctx, "webhook %q for payment %s is not final, ignored", ev.StatusText(), paymentID)
		return nil
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	applied, err := s.store.MarkSettled(storeCtx, paymentID, status, s.now())
	if err != nil {
		logf(ctx, "webhook update error for payment %s: %v", paymentID, err)
		return nil
	}
	if !applied {
		logf(ctx, "webhook for payment %s ignored: no pending registration", paymentID)
		return nil
	}

	logf(ctx, "payment %s marked %s", paymentID, status)
	return nil
}

// List returns registrations newest first, optionally for one program type.
func (s *RegistrationService) List(ctx context.Context, programType string) ([]models.Registration, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	regs, err := s.store.List(storeCtx, strings.TrimSpace(programType))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return regs, nil
}

// Get returns the registration for one gateway payment id, so operators can
// check a payment reported by the gateway against the local record.
func (s *RegistrationService) Get(ctx context.Context, paymentID string) (*models.Registration, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, ErrRegistrationNotFound
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	reg, err := s.store.FindByPaymentID(storeCtx, paymentID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return reg, nil
}

func (s *RegistrationService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

func trimInput(in models.RegistrationInput) models.RegistrationInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Location = strings.TrimSpace(in.Location)
	in.ProgramType = strings.TrimSpace(in.ProgramType)
	return in
}

func logf(ctx context.Context, format string, args ...any) {
	if id := gateway.RequestIDFromContext(ctx); id != "" {
		format = "[" + id + "] " + format
	}
	log.Printf(format, args...)
}
