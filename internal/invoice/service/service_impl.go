package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/vyapardesk/vyapardesk/internal/clock"
	"github.com/vyapardesk/vyapardesk/internal/config"
	customerdomain "github.com/vyapardesk/vyapardesk/internal/customer/domain"
	"github.com/vyapardesk/vyapardesk/internal/gst"
	"github.com/vyapardesk/vyapardesk/internal/invoice/domain"
	"github.com/vyapardesk/vyapardesk/internal/invoice/pricing"
	"github.com/vyapardesk/vyapardesk/internal/observability/metrics"
	"github.com/vyapardesk/vyapardesk/internal/orgcontext"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const invoiceDocType = "invoice"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Repo      domain.Repository
	Customers customerdomain.Service
	Finance   *config.FinanceConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	genID     *snowflake.Node
	repo      domain.Repository
	customers customerdomain.Service
	finance   *config.FinanceConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		clock:     p.Clock,
		genID:     p.GenID,
		repo:      p.Repo,
		customers: p.Customers,
		finance:   p.Finance,
		metrics:   p.Metrics,
	}
}

// document is the fully derived invoice body shared by Create, Update
// and Preview.
type document struct {
	taxEnabled bool
	bulk       *pricing.BulkOverride
	totals     pricing.Totals
	plan       pricing.PlanType
	down       decimal.Decimal
	remaining  decimal.Decimal
	schedule   []pricing.Installment
	items      []domain.InvoiceItem
}

type documentInput struct {
	originState      string
	taxEnabled       *bool
	items            []domain.ItemInput
	bulk             *domain.BulkInput
	paymentPlan      string
	downPayment      decimal.Decimal
	monthlyAmount    *decimal.Decimal
	emiStartDate     *time.Time
	installmentCount int
}

func (s *Service) buildDocument(in documentInput) (document, error) {
	finance := s.finance.Current()
	calc := gst.NewCalculator(finance.HomeState)

	taxEnabled := true
	if in.taxEnabled != nil {
		taxEnabled = *in.taxEnabled
	}

	var bulk *pricing.BulkOverride
	if in.bulk != nil {
		slab, err := gst.ParseSlab(in.bulk.SlabPercent)
		if err != nil {
			return document{}, err
		}
		if in.bulk.TotalPrice.LessThanOrEqual(decimal.Zero) {
			return document{}, domain.ErrInvalidItems
		}
		bulk = &pricing.BulkOverride{
			TotalPrice: in.bulk.TotalPrice,
			Slab:       slab,
			Inclusive:  in.bulk.TaxInclusive,
		}
	}

	lines := make([]pricing.LineInput, 0, len(in.items))
	items := make([]domain.InvoiceItem, 0, len(in.items))
	for i, item := range in.items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return document{}, domain.ErrInvalidItems
		}
		slab, err := gst.ParseSlab(item.SlabPercent)
		if err != nil {
			return document{}, err
		}
		if hsn := strings.TrimSpace(item.HSNCode); hsn != "" && gst.SlabMismatch(hsn, slab) {
			s.log.Warn("declared slab disagrees with HSN classification",
				zap.String("hsn_code", hsn),
				zap.Int64("slab_percent", slab.Percent()),
			)
		}
		lines = append(lines, pricing.LineInput{
			Quantity:  item.Quantity,
			UnitRate:  item.UnitRate,
			Slab:      slab,
			Inclusive: item.TaxInclusive,
		})
		line := calc.LineTax(item.UnitRate, item.Quantity, slab, item.TaxInclusive, taxEnabled, in.originState)
		items = append(items, domain.InvoiceItem{
			Position:       int64(i),
			Name:           name,
			Description:    strings.TrimSpace(item.Description),
			HSNCode:        strings.TrimSpace(item.HSNCode),
			Quantity:       item.Quantity,
			UnitRate:       item.UnitRate.Round(2),
			TaxSlabPercent: slab.Percent(),
			TaxInclusive:   item.TaxInclusive,
			BaseAmount:     line.Base,
			TaxAmount:      line.Tax,
			TotalAmount:    line.Total,
		})
	}

	if bulk == nil && len(items) == 0 {
		return document{}, domain.ErrInvalidItems
	}

	totals := pricing.Aggregate(calc, lines, bulk, in.originState, taxEnabled)

	planName := strings.TrimSpace(in.paymentPlan)
	if planName == "" {
		planName = string(pricing.PlanPending)
	}
	plan, err := pricing.ParsePlanType(planName)
	if err != nil {
		return document{}, err
	}

	down := in.downPayment
	if down.IsNegative() {
		return document{}, domain.ErrInvalidDownPayment
	}
	down = down.Round(2)

	remaining := pricing.RemainingBalance(totals.Grand, down)
	if plan == pricing.PlanPaid {
		down = totals.Grand
		remaining = decimal.Zero
	}

	var schedule []pricing.Installment
	if plan == pricing.PlanEMI {
		if in.monthlyAmount == nil || in.monthlyAmount.LessThanOrEqual(decimal.Zero) {
			return document{}, domain.ErrInvalidMonthlyAmount
		}
		monthly := in.monthlyAmount.Round(2)
		if monthly.LessThan(decimal.NewFromFloat(finance.MinMonthlyAmount)) {
			return document{}, domain.ErrInvalidMonthlyAmount
		}
		if in.emiStartDate == nil || in.emiStartDate.IsZero() {
			return document{}, domain.ErrInvalidEMIStart
		}
		// Totals are freshly derived here, so a caller-supplied count
		// below what the balance needs is stale; the schedule always
		// covers the full balance at the agreed monthly amount.
		count := in.installmentCount
		if derived := pricing.InstallmentCount(totals.Grand, down, monthly); count < derived {
			count = derived
		}
		if count > finance.MaxInstallmentCount {
			return document{}, domain.ErrInvalidInstallmentCount
		}
		schedule = pricing.BuildSchedule(plan, totals.Grand, down, monthly, *in.emiStartDate, count)
	}

	return document{
		taxEnabled: taxEnabled,
		bulk:       bulk,
		totals:     totals,
		plan:       plan,
		down:       down,
		remaining:  remaining,
		schedule:   schedule,
		items:      items,
	}, nil
}

// snapshot resolves the customer fields stored on the document. A
// customer id wins over free-form fields.
func (s *Service) snapshot(ctx context.Context, customerID, name, state, gstin string) (*snowflake.ID, string, string, string, error) {
	if strings.TrimSpace(customerID) != "" {
		customer, err := s.customers.GetByID(ctx, customerdomain.GetCustomerRequest{ID: customerID})
		if err != nil {
			return nil, "", "", "", domain.ErrInvalidCustomer
		}
		id := customer.ID
		return &id, customer.Name, customer.State, customer.GSTIN, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", "", "", domain.ErrInvalidCustomer
	}
	return nil, name, strings.TrimSpace(state), strings.ToUpper(strings.TrimSpace(gstin)), nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.InvoiceDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.InvoiceDetail{}, domain.ErrInvalidOrganization
	}

	customerID, customerName, customerState, customerGSTIN, err := s.snapshot(ctx, req.CustomerID, req.CustomerName, req.CustomerState, req.CustomerGSTIN)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	doc, err := s.buildDocument(documentInput{
		originState:      customerState,
		taxEnabled:       req.TaxEnabled,
		items:            req.Items,
		bulk:             req.Bulk,
		paymentPlan:      req.PaymentPlan,
		downPayment:      req.DownPayment,
		monthlyAmount:    req.MonthlyAmount,
		emiStartDate:     req.EMIStartDate,
		installmentCount: req.InstallmentCount,
	})
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	now := s.clock.Now()
	issuedAt := now
	if req.IssuedAt != nil && !req.IssuedAt.IsZero() {
		issuedAt = *req.IssuedAt
	}

	invoice := domain.Invoice{
		ID:               s.genID.Generate(),
		OrgID:            orgID,
		CustomerID:       customerID,
		CustomerName:     customerName,
		CustomerState:    customerState,
		CustomerGSTIN:    customerGSTIN,
		TaxEnabled:       doc.taxEnabled,
		Subtotal:         doc.totals.Subtotal,
		TaxAmount:        doc.totals.Tax,
		CGSTAmount:       doc.totals.Breakdown.CGST,
		SGSTAmount:       doc.totals.Breakdown.SGST,
		IGSTAmount:       doc.totals.Breakdown.IGST,
		GrandTotal:       doc.totals.Grand,
		PaymentPlan:      doc.plan,
		DownPayment:      doc.down,
		RemainingBalance: doc.remaining,
		MonthlyAmount:    req.MonthlyAmount,
		EMIStartDate:     req.EMIStartDate,
		InstallmentCount: int64(len(doc.schedule)),
		IssuedAt:         issuedAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if doc.bulk != nil {
		price := doc.bulk.TotalPrice.Round(2)
		percent := doc.bulk.Slab.Percent()
		invoice.BulkPrice = &price
		invoice.BulkSlabPercent = &percent
		invoice.BulkTaxInclusive = doc.bulk.Inclusive
	}

	items := doc.items
	for i := range items {
		items[i].ID = s.genID.Generate()
		items[i].InvoiceID = invoice.ID
	}

	installments := make([]domain.Installment, 0, len(doc.schedule))
	for _, entry := range doc.schedule {
		installments = append(installments, domain.Installment{
			ID:                s.genID.Generate(),
			InvoiceID:         invoice.ID,
			InstallmentNumber: int64(entry.Number),
			DueDate:           entry.DueDate,
			Amount:            entry.Amount,
			Paid:              entry.Paid,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := s.repo.NextDocumentNumber(ctx, tx, orgID, invoiceDocType)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = fmt.Sprintf("VD-INV-%d", number)

		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		return s.repo.InsertInstallments(ctx, tx, installments)
	})
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	s.metrics.InvoiceCreated(ctx, string(invoice.PaymentPlan))
	s.log.Info("invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("payment_plan", string(invoice.PaymentPlan)),
		zap.String("grand_total", invoice.GrandTotal.String()),
	)

	return domain.InvoiceDetail{Invoice: invoice, Items: items, Installments: installments}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (domain.InvoiceDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.InvoiceDetail{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	if existing == nil {
		return domain.InvoiceDetail{}, domain.ErrNotFound
	}

	customerID := existing.CustomerID
	customerName := existing.CustomerName
	customerState := existing.CustomerState
	customerGSTIN := existing.CustomerGSTIN
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, customerName, customerState, customerGSTIN, err = s.snapshot(ctx, req.CustomerID, "", "", "")
		if err != nil {
			return domain.InvoiceDetail{}, err
		}
	}

	doc, err := s.buildDocument(documentInput{
		originState:      customerState,
		taxEnabled:       req.TaxEnabled,
		items:            req.Items,
		bulk:             req.Bulk,
		paymentPlan:      req.PaymentPlan,
		downPayment:      req.DownPayment,
		monthlyAmount:    req.MonthlyAmount,
		emiStartDate:     req.EMIStartDate,
		installmentCount: req.InstallmentCount,
	})
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	now := s.clock.Now()
	invoice := *existing
	invoice.CustomerID = customerID
	invoice.CustomerName = customerName
	invoice.CustomerState = customerState
	invoice.CustomerGSTIN = customerGSTIN
	invoice.TaxEnabled = doc.taxEnabled
	invoice.BulkPrice = nil
	invoice.BulkSlabPercent = nil
	invoice.BulkTaxInclusive = false
	if doc.bulk != nil {
		price := doc.bulk.TotalPrice.Round(2)
		percent := doc.bulk.Slab.Percent()
		invoice.BulkPrice = &price
		invoice.BulkSlabPercent = &percent
		invoice.BulkTaxInclusive = doc.bulk.Inclusive
	}
	invoice.Subtotal = doc.totals.Subtotal
	invoice.TaxAmount = doc.totals.Tax
	invoice.CGSTAmount = doc.totals.Breakdown.CGST
	invoice.SGSTAmount = doc.totals.Breakdown.SGST
	invoice.IGSTAmount = doc.totals.Breakdown.IGST
	invoice.GrandTotal = doc.totals.Grand
	invoice.PaymentPlan = doc.plan
	invoice.DownPayment = doc.down
	invoice.RemainingBalance = doc.remaining
	invoice.MonthlyAmount = req.MonthlyAmount
	invoice.EMIStartDate = req.EMIStartDate
	invoice.InstallmentCount = int64(len(doc.schedule))
	if req.IssuedAt != nil && !req.IssuedAt.IsZero() {
		invoice.IssuedAt = *req.IssuedAt
	}
	invoice.UpdatedAt = now

	items := doc.items
	for i := range items {
		items[i].ID = s.genID.Generate()
		items[i].InvoiceID = invoice.ID
	}

	installments := make([]domain.Installment, 0, len(doc.schedule))
	for _, entry := range doc.schedule {
		installments = append(installments, domain.Installment{
			ID:                s.genID.Generate(),
			InvoiceID:         invoice.ID,
			InstallmentNumber: int64(entry.Number),
			DueDate:           entry.DueDate,
			Amount:            entry.Amount,
			Paid:              entry.Paid,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, &invoice); err != nil {
			return err
		}
		if err := s.repo.DeleteItems(ctx, tx, invoice.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteInstallments(ctx, tx, invoice.ID); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		return s.repo.InsertInstallments(ctx, tx, installments)
	})
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	return domain.InvoiceDetail{Invoice: invoice, Items: items, Installments: installments}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.InvoiceDetail{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	return s.loadDetail(ctx, orgID, id)
}

func (s *Service) loadDetail(ctx context.Context, orgID, id snowflake.ID) (domain.InvoiceDetail, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	if invoice == nil {
		return domain.InvoiceDetail{}, domain.ErrNotFound
	}

	items, err := s.repo.FindItems(ctx, s.db, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	installments, err := s.repo.FindInstallments(ctx, s.db, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	return domain.InvoiceDetail{Invoice: *invoice, Items: items, Installments: installments}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListInvoiceFilter{
		PaymentPlan: strings.TrimSpace(req.PaymentPlan),
		IssuedFrom:  req.IssuedFrom,
		IssuedTo:    req.IssuedTo,
	}
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidCustomer
		}
		filter.CustomerID = int64(customerID)
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
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteInvoiceRequest) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteItems(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteInstallments(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, orgID, id)
	})
}

// Preview runs the full pricing pipeline without persisting anything.
func (s *Service) Preview(ctx context.Context, req domain.PreviewInvoiceRequest) (domain.PreviewInvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.PreviewInvoiceResponse{}, domain.ErrInvalidOrganization
	}

	doc, err := s.buildDocument(documentInput{
		originState:      strings.TrimSpace(req.CustomerState),
		taxEnabled:       req.TaxEnabled,
		items:            req.Items,
		bulk:             req.Bulk,
		paymentPlan:      req.PaymentPlan,
		downPayment:      req.DownPayment,
		monthlyAmount:    req.MonthlyAmount,
		emiStartDate:     req.EMIStartDate,
		installmentCount: req.InstallmentCount,
	})
	if err != nil {
		return domain.PreviewInvoiceResponse{}, err
	}

	return domain.PreviewInvoiceResponse{
		Totals:           doc.totals,
		RemainingBalance: doc.remaining,
		Schedule:         doc.schedule,
	}, nil
}

func (s *Service) MarkInstallmentPaid(ctx context.Context, req domain.MarkInstallmentPaidRequest) (domain.InvoiceDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.InvoiceDetail{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.InvoiceID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	if invoice == nil {
		return domain.InvoiceDetail{}, domain.ErrNotFound
	}

	installment, err := s.repo.FindInstallment(ctx, s.db, id, req.Number)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	if installment == nil {
		return domain.InvoiceDetail{}, domain.ErrInstallmentNotFound
	}
	if installment.Paid {
		return domain.InvoiceDetail{}, domain.ErrInstallmentAlreadyPaid
	}

	now := s.clock.Now()
	remaining := invoice.RemainingBalance.Sub(installment.Amount).Round(2)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	invoice.RemainingBalance = remaining
	invoice.UpdatedAt = now

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.MarkInstallmentPaid(ctx, tx, id, req.Number, now); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, invoice)
	})
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	s.metrics.InstallmentPaid(ctx)

	return s.loadDetail(ctx, orgID, id)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
