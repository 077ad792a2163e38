// Package expense composes account validation, message parsing, and sheet
// sync into the record-an-expense use case.
package expense

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"gastobot/internal/models"
	"gastobot/internal/parser"
	"gastobot/internal/storage"
)

// SheetAppender persists one expense row in a remote spreadsheet.
type SheetAppender interface {
	AppendExpense(ctx context.Context, rec models.ExpenseRecord) error
}

// SheetFactory builds a sheet client from a user's refresh token and
// spreadsheet id. A fresh client is constructed per request.
type SheetFactory func(ctx context.Context, refreshToken, spreadsheetID string) (SheetAppender, error)

// Service is the expense orchestrator.
type Service struct {
	store    storage.AccountStore
	parser   *parser.Parser
	newSheet SheetFactory
	logger   *zap.Logger
}

// NewService wires the orchestrator's collaborators.
func NewService(store storage.AccountStore, p *parser.Parser, newSheet SheetFactory, logger *zap.Logger) *Service {
	return &Service{store: store, parser: p, newSheet: newSheet, logger: logger}
}

// RecordExpense handles one inbound message and always produces a reply.
// Validation precedes parsing; nothing is retried at this layer.
func (s *Service) RecordExpense(ctx context.Context, rawText, senderPhone string) string {
	account, err := s.store.FindByPhone(ctx, senderPhone)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			s.logger.Warn("unauthorized sender", zap.String("phone", senderPhone))
			return replyUnauthorized
		case errors.Is(err, storage.ErrUnavailable):
			s.logger.Error("account lookup unavailable", zap.String("phone", senderPhone), zap.Error(err))
			return replyStoreBusy
		default:
			s.logger.Error("account lookup failed", zap.String("phone", senderPhone), zap.Error(err))
			return replyStoreFailed
		}
	}
	if !account.IsActive {
		s.logger.Warn("inactive account", zap.Int64("account_id", account.ID))
		return replyInactive
	}
	if !account.Linked() {
		s.logger.Warn("incomplete sheet configuration", zap.Int64("account_id", account.ID))
		return replyIncomplete
	}

	rec, err := s.parser.Parse(rawText)
	if err != nil {
		return replyInvalidFormat
	}

	sheet, err := s.newSheet(ctx, account.RefreshToken, account.SheetID)
	if err != nil {
		s.logger.Error("sheet client construction failed", zap.Int64("account_id", account.ID), zap.Error(err))
		return replyConnectError
	}
	if err := sheet.AppendExpense(ctx, rec); err != nil {
		s.logger.Error("sheet append failed", zap.Int64("account_id", account.ID), zap.Error(err))
		return replySaveError
	}

	s.logger.Info("expense recorded",
		zap.Int64("account_id", account.ID),
		zap.String("category", rec.Category))
	return formatSuccess(rec)
}
