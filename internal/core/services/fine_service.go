package services

import (
	"context"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
)

type FineService struct {
	repo ports.FineRepository
	opts options
}

var _ ports.FineService = (*FineService)(nil)

func NewFineService(repo ports.FineRepository, opts ...Option) *FineService {
	return &FineService{repo: repo, opts: buildOptions(opts)}
}

func (s *FineService) GetFine(ctx context.Context, id string) (*domain.Fine, error) {
	return s.repo.FindFine(ctx, id)
}

func (s *FineService) ListFines(ctx context.Context, userID string) ([]domain.FineDetails, error) {
	return s.repo.ListFines(ctx, userID)
}

// PayFine settles a pending fine in full.
func (s *FineService) PayFine(ctx context.Context, id string) (*domain.Fine, error) {
	fine, err := s.repo.FindFine(ctx, id)
	if err != nil {
		return nil, err
	}
	if fine.Status == domain.FinePaid {
		return nil, domain.ErrFineAlreadyPaid
	}

	paidAt := s.opts.now()
	if err := s.repo.PayFine(ctx, id, paidAt); err != nil {
		return nil, err
	}

	fine.Status = domain.FinePaid
	fine.PaymentDate = &paidAt
	s.opts.metrics.FinePaid()
	return fine, nil
}
