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
	invoicedomain "github.com/vyapardesk/vyapardesk/internal/invoice/domain"
	"github.com/vyapardesk/vyapardesk/internal/invoice/pricing"
	"github.com/vyapardesk/vyapardesk/internal/observability/metrics"
	"github.com/vyapardesk/vyapardesk/internal/orgcontext"
	"github.com/vyapardesk/vyapardesk/internal/quotation/domain"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const quotationDocType = "quotation"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Repo      domain.Repository
	Customers customerdomain.Service
	Invoices  invoicedomain.Service
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
	invoices  invoicedomain.Service
	finance   *config.FinanceConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("quotation.service"),
		clock:     p.Clock,
		genID:     p.GenID,
		repo:      p.Repo,
		customers: p.Customers,
		invoices:  p.Invoices,
		finance:   p.Finance,
		metrics:   p.Metrics,
	}
}

type body struct {
	taxEnabled bool
	bulk       *pricing.BulkOverride
	totals     pricing.Totals
	items      []domain.QuotationItem
}

func (s *Service) buildBody(originState string, taxFlag *bool, inputs []invoicedomain.ItemInput, bulkInput *invoicedomain.BulkInput) (body, error) {
	finance := s.finance.Current()
	calc := gst.NewCalculator(finance.HomeState)

	taxEnabled := true
	if taxFlag != nil {
		taxEnabled = *taxFlag
	}

	var bulk *pricing.BulkOverride
	if bulkInput != nil {
		slab, err := gst.ParseSlab(bulkInput.SlabPercent)
		if err != nil {
			return body{}, err
		}
		if bulkInput.TotalPrice.LessThanOrEqual(decimal.Zero) {
			return body{}, domain.ErrInvalidItems
		}
		bulk = &pricing.BulkOverride{
			TotalPrice: bulkInput.TotalPrice,
			Slab:       slab,
			Inclusive:  bulkInput.TaxInclusive,
		}
	}

	lines := make([]pricing.LineInput, 0, len(inputs))
	items := make([]domain.QuotationItem, 0, len(inputs))
	for i, item := range inputs {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return body{}, domain.ErrInvalidItems
		}
		slab, err := gst.ParseSlab(item.SlabPercent)
		if err != nil {
			return body{}, err
		}
		lines = append(lines, pricing.LineInput{
			Quantity:  item.Quantity,
			UnitRate:  item.UnitRate,
			Slab:      slab,
			Inclusive: item.TaxInclusive,
		})
		line := calc.LineTax(item.UnitRate, item.Quantity, slab, item.TaxInclusive, taxEnabled, originState)
		items = append(items, domain.QuotationItem{
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
		return body{}, domain.ErrInvalidItems
	}

	return body{
		taxEnabled: taxEnabled,
		bulk:       bulk,
		totals:     pricing.Aggregate(calc, lines, bulk, originState, taxEnabled),
		items:      items,
	}, nil
}

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

func (s *Service) Create(ctx context.Context, req domain.CreateQuotationRequest) (domain.QuotationDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.QuotationDetail{}, domain.ErrInvalidOrganization
	}

	customerID, customerName, customerState, customerGSTIN, err := s.snapshot(ctx, req.CustomerID, req.CustomerName, req.CustomerState, req.CustomerGSTIN)
	if err != nil {
		return domain.QuotationDetail{}, err
	}

	doc, err := s.buildBody(customerState, req.TaxEnabled, req.Items, req.Bulk)
	if err != nil {
		return domain.QuotationDetail{}, err
	}

	now := s.clock.Now()
	quotation := domain.Quotation{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		CustomerID:    customerID,
		CustomerName:  customerName,
		CustomerState: customerState,
		CustomerGSTIN: customerGSTIN,
		TaxEnabled:    doc.taxEnabled,
		Subtotal:      doc.totals.Subtotal,
		TaxAmount:     doc.totals.Tax,
		CGSTAmount:    doc.totals.Breakdown.CGST,
		SGSTAmount:    doc.totals.Breakdown.SGST,
		IGSTAmount:    doc.totals.Breakdown.IGST,
		GrandTotal:    doc.totals.Grand,
		Status:        domain.StatusDraft,
		ValidUntil:    req.ValidUntil,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if doc.bulk != nil {
		price := doc.bulk.TotalPrice.Round(2)
		percent := doc.bulk.Slab.Percent()
		quotation.BulkPrice = &price
		quotation.BulkSlabPercent = &percent
		quotation.BulkTaxInclusive = doc.bulk.Inclusive
	}

	items := doc.items
	for i := range items {
		items[i].ID = s.genID.Generate()
		items[i].QuotationID = quotation.ID
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := s.repo.NextDocumentNumber(ctx, tx, orgID, quotationDocType)
		if err != nil {
			return err
		}
		quotation.QuotationNumber = fmt.Sprintf("VD-QTN-%d", number)

		if err := s.repo.Insert(ctx, tx, &quotation); err != nil {
			return err
		}
		return s.repo.InsertItems(ctx, tx, items)
	})
	if err != nil {
		return domain.QuotationDetail{}, err
	}

	return domain.QuotationDetail{Quotation: quotation, Items: items}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateQuotationRequest) (domain.QuotationDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.QuotationDetail{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.QuotationDetail{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.QuotationDetail{}, err
	}
	if existing == nil {
		return domain.QuotationDetail{}, domain.ErrNotFound
	}
	if existing.ConvertedInvoiceID != nil {
		return domain.QuotationDetail{}, domain.ErrAlreadyConverted
	}

	customerID := existing.CustomerID
	customerName := existing.CustomerName
	customerState := existing.CustomerState
	customerGSTIN := existing.CustomerGSTIN
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, customerName, customerState, customerGSTIN, err = s.snapshot(ctx, req.CustomerID, "", "", "")
		if err != nil {
			return domain.QuotationDetail{}, err
		}
	}

	doc, err := s.buildBody(customerState, req.TaxEnabled, req.Items, req.Bulk)
	if err != nil {
		return domain.QuotationDetail{}, err
	}

	quotation := *existing
	quotation.CustomerID = customerID
	quotation.CustomerName = customerName
	quotation.CustomerState = customerState
	quotation.CustomerGSTIN = customerGSTIN
	quotation.TaxEnabled = doc.taxEnabled
	quotation.BulkPrice = nil
	quotation.BulkSlabPercent = nil
	quotation.BulkTaxInclusive = false
	if doc.bulk != nil {
		price := doc.bulk.TotalPrice.Round(2)
		percent := doc.bulk.Slab.Percent()
		quotation.BulkPrice = &price
		quotation.BulkSlabPercent = &percent
		quotation.BulkTaxInclusive = doc.bulk.Inclusive
	}
	quotation.Subtotal = doc.totals.Subtotal
	quotation.TaxAmount = doc.totals.Tax
	quotation.CGSTAmount = doc.totals.Breakdown.CGST
	quotation.SGSTAmount = doc.totals.Breakdown.SGST
	quotation.IGSTAmount = doc.totals.Breakdown.IGST
	quotation.GrandTotal = doc.totals.Grand
	if req.ValidUntil != nil {
		quotation.ValidUntil = req.ValidUntil
	}
	quotation.UpdatedAt = s.clock.Now()

	items := doc.items
	for i := range items {
		items[i].ID = s.genID.Generate()
		items[i].QuotationID = quotation.ID
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, &quotation); err != nil {
			return err
		}
		if err := s.repo.DeleteItems(ctx, tx, quotation.ID); err != nil {
			return err
		}
		return s.repo.InsertItems(ctx, tx, items)
	})
	if err != nil {
		return domain.QuotationDetail{}, err
	}

	return domain.QuotationDetail{Quotation: quotation, Items: items}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetQuotationRequest) (domain.QuotationDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.QuotationDetail{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.QuotationDetail{}, err
	}

	return s.loadDetail(ctx, orgID, id)
}

func (s *Service) loadDetail(ctx context.Context, orgID, id snowflake.ID) (domain.QuotationDetail, error) {
	quotation, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.QuotationDetail{}, err
	}
	if quotation == nil {
		return domain.QuotationDetail{}, domain.ErrNotFound
	}

	items, err := s.repo.FindItems(ctx, s.db, id)
	if err != nil {
		return domain.QuotationDetail{}, err
	}

	return domain.QuotationDetail{Quotation: *quotation, Items: items}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListQuotationRequest) (domain.ListQuotationResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListQuotationResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListQuotationFilter{
		Status:      strings.TrimSpace(req.Status),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil {
			return domain.ListQuotationResponse{}, domain.ErrInvalidCustomer
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
		return domain.ListQuotationResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(quotation *domain.Quotation) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        quotation.ID.String(),
			CreatedAt: quotation.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	quotations := make([]domain.Quotation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		quotations = append(quotations, *item)
	}

	resp := domain.ListQuotationResponse{Quotations: quotations}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteQuotationRequest) error {
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
		return s.repo.Delete(ctx, tx, orgID, id)
	})
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.QuotationDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.QuotationDetail{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.QuotationDetail{}, err
	}

	status, err := domain.ParseStatus(strings.TrimSpace(req.Status))
	if err != nil {
		return domain.QuotationDetail{}, err
	}
	// ACCEPTED is only reachable through Convert.
	if status == domain.StatusAccepted {
		return domain.QuotationDetail{}, domain.ErrInvalidStatus
	}

	quotation, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.QuotationDetail{}, err
	}
	if quotation == nil {
		return domain.QuotationDetail{}, domain.ErrNotFound
	}
	if quotation.ConvertedInvoiceID != nil {
		return domain.QuotationDetail{}, domain.ErrAlreadyConverted
	}

	quotation.Status = status
	quotation.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, quotation); err != nil {
		return domain.QuotationDetail{}, err
	}

	return s.loadDetail(ctx, orgID, id)
}

// Convert issues an invoice from the quotation body and seals the
// quotation as accepted.
func (s *Service) Convert(ctx context.Context, req domain.ConvertRequest) (invoicedomain.InvoiceDetail, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return invoicedomain.InvoiceDetail{}, domain.ErrInvalidOrganization
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return invoicedomain.InvoiceDetail{}, err
	}

	detail, err := s.loadDetail(ctx, orgID, id)
	if err != nil {
		return invoicedomain.InvoiceDetail{}, err
	}
	quotation := detail.Quotation

	if quotation.ConvertedInvoiceID != nil || quotation.Status == domain.StatusAccepted {
		return invoicedomain.InvoiceDetail{}, domain.ErrAlreadyConverted
	}
	if quotation.Status == domain.StatusRejected {
		return invoicedomain.InvoiceDetail{}, domain.ErrInvalidStatus
	}
	if quotation.ValidUntil != nil && quotation.ValidUntil.Before(s.clock.Now()) {
		return invoicedomain.InvoiceDetail{}, domain.ErrExpired
	}

	create := invoicedomain.CreateInvoiceRequest{
		CustomerName:     quotation.CustomerName,
		CustomerState:    quotation.CustomerState,
		CustomerGSTIN:    quotation.CustomerGSTIN,
		TaxEnabled:       &quotation.TaxEnabled,
		PaymentPlan:      req.PaymentPlan,
		DownPayment:      req.DownPayment,
		MonthlyAmount:    req.MonthlyAmount,
		EMIStartDate:     req.EMIStartDate,
		InstallmentCount: req.InstallmentCount,
	}
	if quotation.CustomerID != nil {
		create.CustomerID = quotation.CustomerID.String()
	}
	if quotation.BulkPrice != nil && quotation.BulkSlabPercent != nil {
		create.Bulk = &invoicedomain.BulkInput{
			TotalPrice:   *quotation.BulkPrice,
			SlabPercent:  *quotation.BulkSlabPercent,
			TaxInclusive: quotation.BulkTaxInclusive,
		}
	}
	for _, item := range detail.Items {
		create.Items = append(create.Items, invoicedomain.ItemInput{
			Name:         item.Name,
			Description:  item.Description,
			HSNCode:      item.HSNCode,
			Quantity:     item.Quantity,
			UnitRate:     item.UnitRate,
			SlabPercent:  item.TaxSlabPercent,
			TaxInclusive: item.TaxInclusive,
		})
	}

	invoice, err := s.invoices.Create(ctx, create)
	if err != nil {
		return invoicedomain.InvoiceDetail{}, err
	}

	invoiceID := invoice.Invoice.ID
	quotation.Status = domain.StatusAccepted
	quotation.ConvertedInvoiceID = &invoiceID
	quotation.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &quotation); err != nil {
		// The invoice exists either way; surface the linkage failure.
		s.log.Error("quotation link after conversion failed",
			zap.String("quotation_number", quotation.QuotationNumber),
			zap.String("invoice_number", invoice.Invoice.InvoiceNumber),
			zap.Error(err),
		)
		return invoicedomain.InvoiceDetail{}, err
	}

	s.metrics.QuotationConverted(ctx)
	s.log.Info("quotation converted",
		zap.String("quotation_number", quotation.QuotationNumber),
		zap.String("invoice_number", invoice.Invoice.InvoiceNumber),
	)

	return invoice, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
