package service

import (
	"context"
	"time"

	"github.com/vyapardesk/vyapardesk/internal/clock"
	"github.com/vyapardesk/vyapardesk/internal/dashboard/domain"
	"github.com/vyapardesk/vyapardesk/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	installmentLookaheadDays = 30
	installmentLimit         = 20
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Stats{}, domain.ErrInvalidOrganization
	}

	now := s.clock.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	lookahead := now.AddDate(0, 0, installmentLookaheadDays)

	stats := domain.Stats{}
	var err error

	if stats.CustomerCount, err = s.repo.CustomerCount(ctx, s.db, orgID); err != nil {
		return domain.Stats{}, err
	}
	if stats.EmployeeCount, err = s.repo.EmployeeCount(ctx, s.db, orgID); err != nil {
		return domain.Stats{}, err
	}
	if stats.InvoiceCountMonth, err = s.repo.InvoiceCount(ctx, s.db, orgID, monthStart, monthEnd); err != nil {
		return domain.Stats{}, err
	}
	if stats.RevenueMonth, err = s.repo.Revenue(ctx, s.db, orgID, monthStart, monthEnd); err != nil {
		return domain.Stats{}, err
	}
	if stats.OutstandingBalance, err = s.repo.OutstandingBalance(ctx, s.db, orgID); err != nil {
		return domain.Stats{}, err
	}
	if stats.OpenQuotationCount, err = s.repo.OpenQuotationCount(ctx, s.db, orgID); err != nil {
		return domain.Stats{}, err
	}
	if stats.UpcomingInstallments, err = s.repo.UpcomingInstallments(ctx, s.db, orgID, now, lookahead, installmentLimit); err != nil {
		return domain.Stats{}, err
	}

	return stats, nil
}
