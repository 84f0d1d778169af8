package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dokta/models"
	"dokta/phone"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentRequest is one mobile-money charge.
type PaymentRequest struct {
	AppointmentID  string
	Amount         int
	Method         models.PaymentMethod
	Phone          string
	IdempotencyKey string
}

// PaymentResult is a settled charge.
type PaymentResult struct {
	Reference   string
	Method      models.PaymentMethod
	Amount      int
	ProcessedAt time.Time
}

// PaymentProcessor settles mobile-money charges.
type PaymentProcessor interface {
	Process(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// SimulatedProcessor stands in for the MTN and Orange gateways: it waits
// Delay and then reports success.
type SimulatedProcessor struct {
	Delay  time.Duration
	Logger *zap.Logger
}

func NewSimulatedProcessor(delay time.Duration, logger *zap.Logger) *SimulatedProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedProcessor{Delay: delay, Logger: logger}
}

func validatePayment(req PaymentRequest) error {
	if req.AppointmentID == "" {
		return fmt.Errorf("missing appointment id")
	}
	if req.Amount < 0 {
		return fmt.Errorf("negative amount %d", req.Amount)
	}
	if !req.Method.Valid() {
		return fmt.Errorf("unsupported payment method: %s", req.Method)
	}
	if !phone.Valid(req.Phone) {
		return phone.ErrInvalid
	}
	return nil
}

func (p *SimulatedProcessor) Process(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if err := validatePayment(req); err != nil {
		return nil, fmt.Errorf("invalid payment request: %w", err)
	}

	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
	}

	prefix := "MOMO"
	if req.Method == models.PaymentOrange {
		prefix = "OM"
	}
	res := &PaymentResult{
		Reference:   prefix + "-" + strings.ToUpper(uuid.New().String()[:8]),
		Method:      req.Method,
		Amount:      req.Amount,
		ProcessedAt: time.Now(),
	}
	p.Logger.Info("mobile money payment settled",
		zap.String("appointmentID", req.AppointmentID),
		zap.String("method", string(req.Method)),
		zap.Int("amount", req.Amount),
		zap.String("reference", res.Reference))
	return res, nil
}
