package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/middleware"
)

const writeTimeout = 2 * time.Second

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "audit").Logger()}
}

// RecordAccess stores an entry observed by the audit middleware. The write
// runs detached from the request, which has already been answered.
func (s *Service) RecordAccess(entry middleware.AuditEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.repo.Create(ctx, FromEntry(entry))
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Record, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
