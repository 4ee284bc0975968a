package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/basetutor/internal/models"
)

// DefaultRecentLimit is the dashboard window used by RecentHistory when no
// positive limit is given.
const DefaultRecentLimit = 10

// HistoryRepository defines the persistence operations needed by the HistoryService.
type HistoryRepository interface {
	// InsertConversion appends an entry and returns its ID.
	InsertConversion(ctx context.Context, e models.ConversionEntry) (int64, error)
	// ListConversions returns entries most-recent-first, capped by a positive limit.
	ListConversions(ctx context.Context, username string, limit int) ([]models.ConversionEntry, error)
	// DeleteConversions removes every entry of the user.
	DeleteConversions(ctx context.Context, username string) (int64, error)
}

// HistoryService logs conversions performed by logged-in users.
type HistoryService struct {
	repo HistoryRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewHistoryService constructs a HistoryService with the provided HistoryRepository.
func NewHistoryService(repo HistoryRepository, log *zap.Logger) *HistoryService {
	return &HistoryService{repo: repo, log: log, now: time.Now}
}

// RecordConversion stores a conversion stamped with the current time. Both
// bases must be one of models.SupportedBases.
func (s *HistoryService) RecordConversion(
	ctx context.Context,
	username string,
	inputValue string,
	inputBase int,
	outputValue string,
	outputBase int,
) (models.ConversionEntry, error) {
	if username == "" || !models.ValidBase(inputBase) || !models.ValidBase(outputBase) {
		return models.ConversionEntry{}, models.ErrInvalidInput
	}

	e := models.ConversionEntry{
		Username:    username,
		InputValue:  inputValue,
		InputBase:   inputBase,
		OutputValue: outputValue,
		OutputBase:  outputBase,
		Timestamp:   s.now().UnixMilli(),
	}
	id, err := s.repo.InsertConversion(ctx, e)
	if err != nil {
		return models.ConversionEntry{}, classify(s.log, "RecordConversion", err)
	}
	e.ID = id
	return e, nil
}

// History returns every entry of the user, most-recent-first.
func (s *HistoryService) History(ctx context.Context, username string) ([]models.ConversionEntry, error) {
	entries, err := s.repo.ListConversions(ctx, username, 0)
	if err != nil {
		return nil, classify(s.log, "History", err)
	}
	return entries, nil
}

// RecentHistory returns at most limit entries, most-recent-first.
func (s *HistoryService) RecentHistory(ctx context.Context, username string, limit int) ([]models.ConversionEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	entries, err := s.repo.ListConversions(ctx, username, limit)
	if err != nil {
		return nil, classify(s.log, "RecentHistory", err)
	}
	return entries, nil
}

// ClearHistory irreversibly deletes the user's history and reports how many
// entries were removed.
func (s *HistoryService) ClearHistory(ctx context.Context, username string) (int64, error) {
	n, err := s.repo.DeleteConversions(ctx, username)
	if err != nil {
		return 0, classify(s.log, "ClearHistory", err)
	}
	s.log.Info("conversion history cleared", zap.String("username", username), zap.Int64("removed", n))
	return n, nil
}
