package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vyapardesk/vyapardesk/internal/clock"
	"github.com/vyapardesk/vyapardesk/internal/employee/domain"
	"github.com/vyapardesk/vyapardesk/internal/orgcontext"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultSuggestLimit = 8
	maxSuggestLimit     = 25
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
		log:   p.Log.Named("employee.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEmployeeRequest) (domain.Employee, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Employee{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Employee{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Employee{}, domain.ErrInvalidEmail
	}

	if req.MonthlySalary.IsNegative() {
		return domain.Employee{}, domain.ErrInvalidSalary
	}

	now := s.clock.Now()
	employee := domain.Employee{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		Name:          name,
		Phone:         strings.TrimSpace(req.Phone),
		Email:         email,
		Role:          strings.TrimSpace(req.Role),
		JoinedAt:      req.JoinedAt,
		MonthlySalary: req.MonthlySalary.Round(2),
		Metadata:      datatypes.JSONMap{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &employee); err != nil {
		return domain.Employee{}, err
	}

	return employee, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEmployeeRequest) (domain.Employee, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Employee{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Employee{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Employee{}, err
	}
	if item == nil {
		return domain.Employee{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Employee{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Phone != nil {
		item.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.Contains(email, "@") {
			return domain.Employee{}, domain.ErrInvalidEmail
		}
		item.Email = email
	}
	if req.Role != nil {
		item.Role = strings.TrimSpace(*req.Role)
	}
	if req.JoinedAt != nil {
		item.JoinedAt = req.JoinedAt
	}
	if req.MonthlySalary != nil {
		if req.MonthlySalary.IsNegative() {
			return domain.Employee{}, domain.ErrInvalidSalary
		}
		item.MonthlySalary = req.MonthlySalary.Round(2)
	}
	item.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Employee{}, err
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEmployeeRequest) (domain.ListEmployeeResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListEmployeeResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListEmployeeFilter{
		Name:        strings.TrimSpace(req.Name),
		Role:        strings.TrimSpace(req.Role),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListEmployeeResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(employee *domain.Employee) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        employee.ID.String(),
			CreatedAt: employee.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	employees := make([]domain.Employee, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		employees = append(employees, *item)
	}

	resp := domain.ListEmployeeResponse{Employees: employees}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetEmployeeRequest) (domain.Employee, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Employee{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Employee{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Employee{}, err
	}
	if item == nil {
		return domain.Employee{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteEmployeeRequest) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, orgID, id)
}

func (s *Service) Suggest(ctx context.Context, req domain.SuggestRequest) (domain.SuggestResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.SuggestResponse{}, domain.ErrInvalidOrganization
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return domain.SuggestResponse{Seq: req.Seq, Suggestions: []domain.Employee{}}, nil
	}

	limit := int(req.Limit)
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	items, err := s.repo.Suggest(ctx, s.db, orgID, query, limit)
	if err != nil {
		return domain.SuggestResponse{}, err
	}

	suggestions := make([]domain.Employee, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		suggestions = append(suggestions, *item)
	}

	return domain.SuggestResponse{Seq: req.Seq, Suggestions: suggestions}, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, domain.ErrInvalidOrganization
	}
	return s.repo.Count(ctx, s.db, orgID)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
