package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/vyapardesk/vyapardesk/internal/invoice/domain"
	organizationdomain "github.com/vyapardesk/vyapardesk/internal/organization/domain"
	"github.com/vyapardesk/vyapardesk/internal/orgcontext"
	"github.com/vyapardesk/vyapardesk/internal/providers/pdf"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
)

type itemPayload struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	HSNCode      string          `json:"hsn_code"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitRate     decimal.Decimal `json:"unit_rate"`
	SlabPercent  int64           `json:"slab_percent"`
	TaxInclusive bool            `json:"tax_inclusive"`
}

type bulkPayload struct {
	TotalPrice   decimal.Decimal `json:"total_price"`
	SlabPercent  int64           `json:"slab_percent"`
	TaxInclusive bool            `json:"tax_inclusive"`
}

type paymentTermsPayload struct {
	PaymentPlan      string           `json:"payment_plan"`
	DownPayment      decimal.Decimal  `json:"down_payment"`
	MonthlyAmount    *decimal.Decimal `json:"monthly_amount"`
	EMIStartDate     *time.Time       `json:"emi_start_date"`
	InstallmentCount int              `json:"installment_count"`
}

type createInvoiceRequest struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerState string `json:"customer_state"`
	CustomerGSTIN string `json:"customer_gstin"`
	TaxEnabled    *bool  `json:"tax_enabled"`
	paymentTermsPayload
	Items    []itemPayload `json:"items"`
	Bulk     *bulkPayload  `json:"bulk"`
	IssuedAt *time.Time    `json:"issued_at"`
}

type updateInvoiceRequest struct {
	CustomerID string `json:"customer_id"`
	TaxEnabled *bool  `json:"tax_enabled"`
	paymentTermsPayload
	Items    []itemPayload `json:"items"`
	Bulk     *bulkPayload  `json:"bulk"`
	IssuedAt *time.Time    `json:"issued_at"`
}

type previewInvoiceRequest struct {
	CustomerState string `json:"customer_state"`
	TaxEnabled    *bool  `json:"tax_enabled"`
	paymentTermsPayload
	Items []itemPayload `json:"items"`
	Bulk  *bulkPayload  `json:"bulk"`
}

func itemInputs(items []itemPayload) []invoicedomain.ItemInput {
	inputs := make([]invoicedomain.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, invoicedomain.ItemInput{
			Name:         strings.TrimSpace(item.Name),
			Description:  strings.TrimSpace(item.Description),
			HSNCode:      strings.TrimSpace(item.HSNCode),
			Quantity:     item.Quantity,
			UnitRate:     item.UnitRate,
			SlabPercent:  item.SlabPercent,
			TaxInclusive: item.TaxInclusive,
		})
	}
	return inputs
}

func bulkInput(bulk *bulkPayload) *invoicedomain.BulkInput {
	if bulk == nil {
		return nil
	}
	return &invoicedomain.BulkInput{
		TotalPrice:   bulk.TotalPrice,
		SlabPercent:  bulk.SlabPercent,
		TaxInclusive: bulk.TaxInclusive,
	}
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		CustomerID:       strings.TrimSpace(req.CustomerID),
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerState:    strings.TrimSpace(req.CustomerState),
		CustomerGSTIN:    strings.TrimSpace(req.CustomerGSTIN),
		TaxEnabled:       req.TaxEnabled,
		Items:            itemInputs(req.Items),
		Bulk:             bulkInput(req.Bulk),
		PaymentPlan:      strings.TrimSpace(req.PaymentPlan),
		DownPayment:      req.DownPayment,
		MonthlyAmount:    req.MonthlyAmount,
		EMIStartDate:     req.EMIStartDate,
		InstallmentCount: req.InstallmentCount,
		IssuedAt:         req.IssuedAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), invoicedomain.UpdateInvoiceRequest{
		ID:               strings.TrimSpace(c.Param("id")),
		CustomerID:       strings.TrimSpace(req.CustomerID),
		TaxEnabled:       req.TaxEnabled,
		Items:            itemInputs(req.Items),
		Bulk:             bulkInput(req.Bulk),
		PaymentPlan:      strings.TrimSpace(req.PaymentPlan),
		DownPayment:      req.DownPayment,
		MonthlyAmount:    req.MonthlyAmount,
		EMIStartDate:     req.EMIStartDate,
		InstallmentCount: req.InstallmentCount,
		IssuedAt:         req.IssuedAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID  string `form:"customer_id"`
		PaymentPlan string `form:"payment_plan"`
		IssuedFrom  string `form:"issued_from"`
		IssuedTo    string `form:"issued_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issuedFrom, err := parseOptionalTime(query.IssuedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("issued_from", "invalid_issued_from", "invalid issued_from"))
		return
	}

	issuedTo, err := parseOptionalTime(query.IssuedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("issued_to", "invalid_issued_to", "invalid issued_to"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		CustomerID:  strings.TrimSpace(query.CustomerID),
		PaymentPlan: strings.TrimSpace(query.PaymentPlan),
		IssuedFrom:  issuedFrom,
		IssuedTo:    issuedTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	err := s.invoiceSvc.Delete(c.Request.Context(), invoicedomain.DeleteInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "deleted"}})
}

func (s *Server) PreviewInvoice(c *gin.Context) {
	var req previewInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Preview(c.Request.Context(), invoicedomain.PreviewInvoiceRequest{
		CustomerState:    strings.TrimSpace(req.CustomerState),
		TaxEnabled:       req.TaxEnabled,
		Items:            itemInputs(req.Items),
		Bulk:             bulkInput(req.Bulk),
		PaymentPlan:      strings.TrimSpace(req.PaymentPlan),
		DownPayment:      req.DownPayment,
		MonthlyAmount:    req.MonthlyAmount,
		EMIStartDate:     req.EMIStartDate,
		InstallmentCount: req.InstallmentCount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PayInstallment(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		AbortWithError(c, newValidationError("number", "invalid_installment_number", "invalid installment number"))
		return
	}

	resp, err := s.invoiceSvc.MarkInstallmentPaid(c.Request.Context(), invoicedomain.MarkInstallmentPaidRequest{
		InvoiceID: strings.TrimSpace(c.Param("id")),
		Number:    number,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) InvoicePDF(c *gin.Context) {
	ctx := c.Request.Context()

	detail, err := s.invoiceSvc.GetByID(ctx, invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	org, err := s.documentOrganization(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc := pdf.InvoiceDocument{
		OrgName:    org.Name,
		OrgAddress: org.Address,
		OrgState:   org.State,
		OrgGSTIN:   org.GSTIN,

		InvoiceNumber: detail.Invoice.InvoiceNumber,
		IssueDate:     detail.Invoice.IssuedAt.Format(dateOnlyLayout),

		CustomerName:  detail.Invoice.CustomerName,
		CustomerState: detail.Invoice.CustomerState,
		CustomerGSTIN: detail.Invoice.CustomerGSTIN,

		Items: invoiceLineRows(detail.Items),

		Subtotal: pdfMoney(detail.Invoice.Subtotal),
		Tax:      pdfMoney(detail.Invoice.TaxAmount),
		Grand:    pdfMoney(detail.Invoice.GrandTotal),

		PaymentPlan: string(detail.Invoice.PaymentPlan),
	}

	if detail.Invoice.IGSTAmount.IsPositive() {
		doc.IGST = pdfMoney(detail.Invoice.IGSTAmount)
	} else {
		doc.CGST = pdfMoney(detail.Invoice.CGSTAmount)
		doc.SGST = pdfMoney(detail.Invoice.SGSTAmount)
	}

	if detail.Invoice.RemainingBalance.IsPositive() || detail.Invoice.DownPayment.IsPositive() {
		doc.DownPayment = pdfMoney(detail.Invoice.DownPayment)
		doc.RemainingBalance = pdfMoney(detail.Invoice.RemainingBalance)
	}

	for _, inst := range detail.Installments {
		status := "Due"
		if inst.Paid {
			status = "Paid"
		}
		doc.Installments = append(doc.Installments, pdf.InstallmentRow{
			Number:  strconv.FormatInt(inst.InstallmentNumber, 10),
			DueDate: inst.DueDate.Format(dateOnlyLayout),
			Amount:  pdfMoney(inst.Amount),
			Status:  status,
		})
	}

	reader, err := s.pdfProvider.RenderInvoice(ctx, doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writePDF(c, detail.Invoice.InvoiceNumber, reader)
}

// documentOrganization loads the caller's organization for the PDF
// letterhead.
func (s *Server) documentOrganization(c *gin.Context) (organizationdomain.Organization, error) {
	orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
	if !ok {
		return organizationdomain.Organization{}, ErrUnauthorized
	}
	return s.organizationSvc.GetByID(c.Request.Context(), organizationdomain.GetOrganizationRequest{
		ID: orgID.String(),
	})
}

func invoiceLineRows(items []invoicedomain.InvoiceItem) []pdf.LineRow {
	rows := make([]pdf.LineRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, pdf.LineRow{
			Name:     item.Name,
			HSNCode:  item.HSNCode,
			Quantity: item.Quantity.String(),
			UnitRate: pdfMoney(item.UnitRate),
			Slab:     strconv.FormatInt(item.TaxSlabPercent, 10) + "%",
			Amount:   pdfMoney(item.TotalAmount),
		})
	}
	return rows
}

func pdfMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func writePDF(c *gin.Context, name string, reader io.Reader) {
	data, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func isInvoiceValidationError(err error) bool {
	switch err {
	case invoicedomain.ErrInvalidOrganization,
		invoicedomain.ErrInvalidID,
		invoicedomain.ErrInvalidCustomer,
		invoicedomain.ErrInvalidItems,
		invoicedomain.ErrInvalidDownPayment,
		invoicedomain.ErrInvalidMonthlyAmount,
		invoicedomain.ErrInvalidEMIStart,
		invoicedomain.ErrInvalidInstallmentCount:
		return true
	default:
		return false
	}
}
