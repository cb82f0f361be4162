package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/finboard/internal/models"
	pkgerrors "github.com/honeynil/finboard/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type TransferRequest struct {
	FromAccount   string          `json:"from_account" validate:"required"`
	ToBeneficiary string          `json:"to_beneficiary" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	TransferDate  string          `json:"transfer_date" validate:"required,datetime=2006-01-02"`
	Remarks       string          `json:"remarks" validate:"max=200"`
}

var transferMessages = map[string]string{
	"FromAccount.required":   "Please select a source account.",
	"ToBeneficiary.required": "Please select a beneficiary or enter account details.",
	"TransferDate.required":  "A transfer date is required.",
	"TransferDate.datetime":  "Transfer date must be formatted YYYY-MM-DD.",
	"Remarks.max":            "Remarks cannot exceed 200 characters.",
}

type BillPaymentRequest struct {
	FromAccount string          `json:"from_account" validate:"required"`
	BillerID    string          `json:"biller_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
}

var billMessages = map[string]string{
	"FromAccount.required": "Please select a source account.",
	"BillerID.required":    "Please select a biller.",
	"PaymentDate.datetime": "Payment date must be formatted YYYY-MM-DD.",
}

type BeneficiaryRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Details string `json:"details" validate:"required,max=200"`
}

var beneficiaryMessages = map[string]string{
	"Name.required":    "Beneficiary name is required.",
	"Name.max":         "Beneficiary name cannot exceed 100 characters.",
	"Details.required": "Account details are required.",
	"Details.max":      "Account details cannot exceed 200 characters.",
}

func (s *dashboardService) SubmitTransfer(ctx context.Context, req TransferRequest) (*models.PaymentRecord, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "SubmitTransfer")
	defer span.End()

	verr := validateForm(req, transferMessages)
	checkAmount(verr, req.Amount)
	if err := verr.orNil(); err != nil {
		span.SetStatus(codes.Error, "invalid transfer")
		slog.Warn("transfer rejected", "from_account", req.FromAccount, "error", err)
		return nil, err
	}
	date, _ := time.Parse(models.DateLayout, req.TransferDate)

	from, err := s.repos.Accounts.GetByID(ctx, req.FromAccount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "source account lookup failed")
		return nil, err
	}
	to, err := s.findBeneficiary(ctx, req.ToBeneficiary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "beneficiary lookup failed")
		return nil, err
	}

	record := &models.PaymentRecord{
		ID:          uuid.NewString(),
		Date:        date,
		Kind:        models.PaymentTransfer,
		Description: "To " + to.Name,
		Amount:      req.Amount,
		Status:      "Pending",
	}
	if err := s.repos.Payments.Create(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record transfer failed")
		slog.Error("failed to record transfer", "from_account", from.ID, "error", err)
		return nil, fmt.Errorf("%w: failed to record transfer", pkgerrors.ErrInternal)
	}
	span.SetAttributes(attribute.String("payment_id", record.ID))

	s.notify(ctx, models.LevelSuccess, "Transfer Submitted!",
		fmt.Sprintf("Transfer of $%s from %s to %s scheduled for %s.",
			req.Amount.StringFixed(2), from.Name, to.Name, date.Format("January 2, 2006")))

	slog.Info("transfer submitted",
		"payment_id", record.ID,
		"from_account", from.ID,
		"beneficiary_id", to.ID,
		"amount", req.Amount.StringFixed(2))
	return record, nil
}

func (s *dashboardService) PayBill(ctx context.Context, req BillPaymentRequest) (*models.PaymentRecord, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "PayBill")
	defer span.End()

	verr := validateForm(req, billMessages)
	checkAmount(verr, req.Amount)
	if err := verr.orNil(); err != nil {
		span.SetStatus(codes.Error, "invalid bill payment")
		slog.Warn("bill payment rejected", "biller_id", req.BillerID, "error", err)
		return nil, err
	}

	date := s.opts.Now().UTC().Truncate(24 * time.Hour)
	if req.PaymentDate != "" {
		date, _ = time.Parse(models.DateLayout, req.PaymentDate)
	}

	if _, err := s.repos.Accounts.GetByID(ctx, req.FromAccount); err != nil {
		span.RecordError(err)
		return nil, err
	}
	biller, err := s.repos.Billers.GetByID(ctx, req.BillerID)
	if err != nil {
		span.RecordError(err)
		slog.Error("biller not found", "biller_id", req.BillerID, "error", err)
		return nil, err
	}

	record := &models.PaymentRecord{
		ID:          uuid.NewString(),
		Date:        date,
		Kind:        models.PaymentBill,
		Description: biller.Name,
		Amount:      req.Amount,
		Status:      "Pending",
	}
	if err := s.repos.Payments.Create(ctx, record); err != nil {
		span.RecordError(err)
		slog.Error("failed to record bill payment", "biller_id", biller.ID, "error", err)
		return nil, fmt.Errorf("%w: failed to record bill payment", pkgerrors.ErrInternal)
	}

	s.notify(ctx, models.LevelSuccess, "Bill Payment Scheduled",
		fmt.Sprintf("Payment of $%s to %s scheduled for %s.", req.Amount.StringFixed(2), biller.Name, date.Format("January 2, 2006")))
	slog.Info("bill payment submitted", "payment_id", record.ID, "biller_id", biller.ID)
	return record, nil
}

func (s *dashboardService) PaymentHistory(ctx context.Context) ([]models.PaymentRecord, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "PaymentHistory")
	defer span.End()

	history, err := s.repos.Payments.List(ctx)
	if err != nil {
		span.RecordError(err)
		slog.Error("failed to list payment history", "error", err)
		return nil, err
	}
	return history, nil
}

func (s *dashboardService) ListBillers(ctx context.Context) ([]models.Biller, error) {
	return s.repos.Billers.List(ctx)
}

func (s *dashboardService) ListBeneficiaries(ctx context.Context) ([]models.Beneficiary, error) {
	return s.repos.Beneficiaries.List(ctx)
}

func (s *dashboardService) findBeneficiary(ctx context.Context, id string) (*models.Beneficiary, error) {
	list, err := s.repos.Beneficiaries.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range list {
		if b.ID == id {
			return &b, nil
		}
	}
	slog.Error("beneficiary not found", "beneficiary_id", id)
	return nil, pkgerrors.ErrBeneficiaryNotFound
}

func (s *dashboardService) AddBeneficiary(ctx context.Context, req BeneficiaryRequest) (*models.Beneficiary, error) {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "AddBeneficiary")
	defer span.End()

	req.Name = strings.TrimSpace(req.Name)
	req.Details = strings.TrimSpace(req.Details)
	if err := validateForm(req, beneficiaryMessages).orNil(); err != nil {
		span.SetStatus(codes.Error, "invalid beneficiary")
		return nil, err
	}

	b := &models.Beneficiary{ID: uuid.NewString(), Name: req.Name, Details: req.Details}
	if err := s.repos.Beneficiaries.Create(ctx, b); err != nil {
		span.RecordError(err)
		slog.Error("failed to create beneficiary", "name", req.Name, "error", err)
		return nil, fmt.Errorf("%w: failed to create beneficiary", pkgerrors.ErrInternal)
	}

	s.notify(ctx, models.LevelSuccess, "Beneficiary Added", fmt.Sprintf("%s has been added to your beneficiaries.", b.Name))
	return b, nil
}

func (s *dashboardService) DeleteBeneficiary(ctx context.Context, id string) error {
	tracer := otel.Tracer("dashboard-service")
	ctx, span := tracer.Start(ctx, "DeleteBeneficiary")
	defer span.End()
	span.SetAttributes(attribute.String("beneficiary_id", id))

	if err := s.repos.Beneficiaries.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete beneficiary failed")
		if stderrors.Is(err, pkgerrors.ErrBeneficiaryNotFound) {
			return err
		}
		return fmt.Errorf("%w: failed to delete beneficiary", pkgerrors.ErrInternal)
	}

	s.notify(ctx, models.LevelInfo, "Beneficiary Removed", fmt.Sprintf("Beneficiary with ID %s has been removed.", id))
	return nil
}
