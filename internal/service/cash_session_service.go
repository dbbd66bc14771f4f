package service

import (
	"context"
	"strings"

	"pos-till/internal/apperror"
	"pos-till/internal/clock"
	"pos-till/internal/domain"
	"pos-till/internal/metrics"
	"pos-till/internal/repository"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionSummary is the live reconciliation of an open session.
type SessionSummary struct {
	Session    domain.CashSession    `json:"session"`
	CashSales  decimal.Decimal       `json:"cash_sales"`
	SalesCount int                   `json:"sales_count"`
	Income     decimal.Decimal       `json:"income"`
	Expense    decimal.Decimal       `json:"expense"`
	Expected   decimal.Decimal       `json:"expected_amount"`
	Movements  []domain.CashMovement `json:"movements"`
}

// SessionReader is the part of the session manager checkout depends on.
type SessionReader interface {
	Current(ctx context.Context, userID string) *domain.CashSession
	// Hold blocks open, close and movements for userID until release runs.
	Hold(userID string) (release func())
}

// CashSessionService manages the till lifecycle: open, movements, close.
type CashSessionService interface {
	SessionReader
	Open(ctx context.Context, op Operator, openingAmount decimal.Decimal) (*domain.CashSession, error)
	RecordMovement(ctx context.Context, op Operator, kind domain.MovementType, amount decimal.Decimal, description string) (*domain.CashMovement, error)
	Close(ctx context.Context, op Operator, closingAmount decimal.Decimal) (*domain.CashSession, error)
	ExpectedAmount(ctx context.Context, userID string) (decimal.Decimal, error)
	Summary(ctx context.Context, userID string) (*SessionSummary, error)
	Movements(ctx context.Context, userID string) ([]domain.CashMovement, error)
	History(ctx context.Context) []domain.CashSession
}

type cashSessionService struct {
	sessions repository.CashSessionRepository
	ledger   *SaleLedger
	clock    clock.Clock
	metrics  *metrics.TillMetrics
	logger   *zap.Logger
	locks    operatorLocks
}

func NewCashSessionService(
	sessions repository.CashSessionRepository,
	ledger *SaleLedger,
	clk clock.Clock,
	m *metrics.TillMetrics,
	logger *zap.Logger,
) CashSessionService {
	return &cashSessionService{
		sessions: sessions,
		ledger:   ledger,
		clock:    clk,
		metrics:  m,
		logger:   logger,
	}
}

func (s *cashSessionService) Current(ctx context.Context, userID string) *domain.CashSession {
	return s.sessions.Current(ctx, userID)
}

func (s *cashSessionService) Hold(userID string) func() {
	return s.locks.lock(userID)
}

// Open starts a session for op. At most one session per user may be open.
func (s *cashSessionService) Open(ctx context.Context, op Operator, openingAmount decimal.Decimal) (*domain.CashSession, error) {
	if err := op.validate(); err != nil {
		return nil, err
	}
	if openingAmount.IsNegative() {
		return nil, apperror.NewFieldValidation("opening_amount", "opening amount cannot be negative")
	}

	defer s.Hold(op.ID)()
	if existing := s.sessions.Current(ctx, op.ID); existing != nil {
		return nil, apperror.NewConflict("a cash session is already open")
	}

	session := &domain.CashSession{
		V:             domain.SchemaVersion,
		ID:            uuid.NewString(),
		UserID:        op.ID,
		UserName:      op.Name,
		OpenedAt:      s.clock.Now(),
		OpeningAmount: openingAmount,
		Status:        domain.SessionOpen,
	}
	s.sessions.SaveCurrent(ctx, session)
	s.metrics.SessionOpened()

	s.logger.Info("Cash session opened",
		zap.String("session_id", session.ID),
		zap.String("user_id", op.ID),
		zap.String("opening_amount", openingAmount.String()),
	)
	return session, nil
}

// RecordMovement appends a manual income or expense to the open session.
func (s *cashSessionService) RecordMovement(ctx context.Context, op Operator, kind domain.MovementType, amount decimal.Decimal, description string) (*domain.CashMovement, error) {
	if err := op.validate(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, apperror.NewFieldValidation("type", "movement type must be income or expense")
	}
	if !amount.IsPositive() {
		return nil, apperror.NewFieldValidation("amount", "amount must be greater than zero")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperror.NewFieldValidation("description", "description is required")
	}

	defer s.Hold(op.ID)()
	session := s.sessions.Current(ctx, op.ID)
	if session == nil {
		return nil, apperror.NewPrecondition("no open cash session")
	}

	now := s.clock.Now()
	movement := &domain.CashMovement{
		V:           domain.SchemaVersion,
		ID:          ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		SessionID:   session.ID,
		Type:        kind,
		Amount:      amount,
		Description: description,
		CreatedAt:   now,
		UserID:      op.ID,
		UserName:    op.Name,
	}
	s.sessions.AppendMovement(ctx, movement)
	s.metrics.CashMovement(string(kind))

	s.logger.Info("Cash movement recorded",
		zap.String("session_id", session.ID),
		zap.String("type", string(kind)),
		zap.String("amount", amount.String()),
	)
	return movement, nil
}

// Close reconciles and archives the open session. A non-zero difference is
// recorded, not rejected.
func (s *cashSessionService) Close(ctx context.Context, op Operator, closingAmount decimal.Decimal) (*domain.CashSession, error) {
	if err := op.validate(); err != nil {
		return nil, err
	}

	defer s.Hold(op.ID)()
	session := s.sessions.Current(ctx, op.ID)
	if session == nil {
		return nil, apperror.NewPrecondition("no open cash session")
	}
	if closingAmount.IsNegative() {
		return nil, apperror.NewFieldValidation("closing_amount", "closing amount cannot be negative")
	}

	summary := s.summarize(ctx, session)
	difference := closingAmount.Sub(summary.Expected)
	closedAt := s.clock.Now()

	closed := *session
	closed.Status = domain.SessionClosed
	closed.ClosedAt = &closedAt
	closed.ClosingAmount = &closingAmount
	closed.ExpectedAmount = &summary.Expected
	closed.Difference = &difference

	s.sessions.Archive(ctx, &closed)
	s.sessions.ClearCurrent(ctx, op.ID)
	s.metrics.SessionClosed(difference)

	logFn := s.logger.Info
	if !difference.IsZero() {
		logFn = s.logger.Warn
	}
	logFn("Cash session closed",
		zap.String("session_id", closed.ID),
		zap.String("expected", summary.Expected.String()),
		zap.String("closing", closingAmount.String()),
		zap.String("difference", difference.String()),
	)
	return &closed, nil
}

// ExpectedAmount derives the cash that should be in the drawer right now.
func (s *cashSessionService) ExpectedAmount(ctx context.Context, userID string) (decimal.Decimal, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.Expected, nil
}

func (s *cashSessionService) Summary(ctx context.Context, userID string) (*SessionSummary, error) {
	session := s.sessions.Current(ctx, userID)
	if session == nil {
		return nil, apperror.NewPrecondition("no open cash session")
	}
	return s.summarize(ctx, session), nil
}

func (s *cashSessionService) Movements(ctx context.Context, userID string) ([]domain.CashMovement, error) {
	session := s.sessions.Current(ctx, userID)
	if session == nil {
		return nil, apperror.NewPrecondition("no open cash session")
	}
	return s.sessions.Movements(ctx, session.ID), nil
}

func (s *cashSessionService) History(ctx context.Context) []domain.CashSession {
	return s.sessions.History(ctx)
}

// summarize computes opening + cash sales + income - expense for session.
func (s *cashSessionService) summarize(ctx context.Context, session *domain.CashSession) *SessionSummary {
	summary := &SessionSummary{
		Session:   *session,
		CashSales: decimal.Zero,
		Income:    decimal.Zero,
		Expense:   decimal.Zero,
	}

	for _, sale := range s.ledger.Query(ctx, func(sale domain.SaleRecord) bool {
		return sale.IsCash() && belongsToSession(sale, session)
	}) {
		summary.CashSales = summary.CashSales.Add(sale.Total)
		summary.SalesCount++
	}

	summary.Movements = s.sessions.Movements(ctx, session.ID)
	for _, m := range summary.Movements {
		switch m.Type {
		case domain.MovementIncome:
			summary.Income = summary.Income.Add(m.Amount)
		case domain.MovementExpense:
			summary.Expense = summary.Expense.Add(m.Amount)
		}
	}

	summary.Expected = session.OpeningAmount.
		Add(summary.CashSales).
		Add(summary.Income).
		Sub(summary.Expense)
	return summary
}

// belongsToSession matches by session id when the sale carries one, and
// otherwise by operator and a timestamp at or after the session opened.
func belongsToSession(sale domain.SaleRecord, session *domain.CashSession) bool {
	if sale.CashSessionID != "" {
		return sale.CashSessionID == session.ID
	}
	return sale.UserID == session.UserID && !sale.ClosedAt.Before(session.OpenedAt)
}
