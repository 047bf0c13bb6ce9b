package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/vyapardesk/vyapardesk/internal/clock"
	"github.com/vyapardesk/vyapardesk/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Organization{}, domain.ErrInvalidName
	}
	state := strings.TrimSpace(req.State)
	if state == "" {
		return domain.Organization{}, domain.ErrInvalidState
	}

	code := slug.Make(name)
	existing, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Organization{}, err
	}
	if existing != nil {
		return domain.Organization{}, domain.ErrCodeTaken
	}

	now := s.clock.Now()
	org := domain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		Code:      code,
		State:     state,
		GSTIN:     strings.ToUpper(strings.TrimSpace(req.GSTIN)),
		Address:   strings.TrimSpace(req.Address),
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &org); err != nil {
		return domain.Organization{}, err
	}

	s.log.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("code", org.Code),
	)
	return org, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetOrganizationRequest) (domain.Organization, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Organization{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Organization{}, err
	}
	if item == nil {
		return domain.Organization{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Organization, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Organization{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Organization{}, err
	}
	if item == nil {
		return domain.Organization{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateOrganizationRequest) (domain.Organization, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Organization{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Organization{}, err
	}
	if item == nil {
		return domain.Organization{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Organization{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.State != nil {
		state := strings.TrimSpace(*req.State)
		if state == "" {
			return domain.Organization{}, domain.ErrInvalidState
		}
		item.State = state
	}
	if req.GSTIN != nil {
		item.GSTIN = strings.ToUpper(strings.TrimSpace(*req.GSTIN))
	}
	if req.Address != nil {
		item.Address = strings.TrimSpace(*req.Address)
	}
	item.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Organization{}, err
	}

	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
