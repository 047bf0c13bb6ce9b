package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vyapardesk/vyapardesk/internal/providers/pdf"
	quotationdomain "github.com/vyapardesk/vyapardesk/internal/quotation/domain"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
)

type createQuotationRequest struct {
	CustomerID    string        `json:"customer_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerState string        `json:"customer_state"`
	CustomerGSTIN string        `json:"customer_gstin"`
	TaxEnabled    *bool         `json:"tax_enabled"`
	Items         []itemPayload `json:"items"`
	Bulk          *bulkPayload  `json:"bulk"`
	ValidUntil    *time.Time    `json:"valid_until"`
}

type updateQuotationRequest struct {
	CustomerID string        `json:"customer_id"`
	TaxEnabled *bool         `json:"tax_enabled"`
	Items      []itemPayload `json:"items"`
	Bulk       *bulkPayload  `json:"bulk"`
	ValidUntil *time.Time    `json:"valid_until"`
}

type updateQuotationStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) CreateQuotation(c *gin.Context) {
	var req createQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotationSvc.Create(c.Request.Context(), quotationdomain.CreateQuotationRequest{
		CustomerID:    strings.TrimSpace(req.CustomerID),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerState: strings.TrimSpace(req.CustomerState),
		CustomerGSTIN: strings.TrimSpace(req.CustomerGSTIN),
		TaxEnabled:    req.TaxEnabled,
		Items:         itemInputs(req.Items),
		Bulk:          bulkInput(req.Bulk),
		ValidUntil:    req.ValidUntil,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateQuotation(c *gin.Context) {
	var req updateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotationSvc.Update(c.Request.Context(), quotationdomain.UpdateQuotationRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		CustomerID: strings.TrimSpace(req.CustomerID),
		TaxEnabled: req.TaxEnabled,
		Items:      itemInputs(req.Items),
		Bulk:       bulkInput(req.Bulk),
		ValidUntil: req.ValidUntil,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListQuotations(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID  string `form:"customer_id"`
		Status      string `form:"status"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}

	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.quotationSvc.List(c.Request.Context(), quotationdomain.ListQuotationRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		CustomerID:  strings.TrimSpace(query.CustomerID),
		Status:      strings.TrimSpace(query.Status),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetQuotationByID(c *gin.Context) {
	resp, err := s.quotationSvc.GetByID(c.Request.Context(), quotationdomain.GetQuotationRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteQuotation(c *gin.Context) {
	err := s.quotationSvc.Delete(c.Request.Context(), quotationdomain.DeleteQuotationRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "deleted"}})
}

func (s *Server) UpdateQuotationStatus(c *gin.Context) {
	var req updateQuotationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotationSvc.UpdateStatus(c.Request.Context(), quotationdomain.UpdateStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ConvertQuotation accepts the quotation and issues the invoice with
// the payment terms supplied here.
func (s *Server) ConvertQuotation(c *gin.Context) {
	var req paymentTermsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotationSvc.Convert(c.Request.Context(), quotationdomain.ConvertRequest{
		ID:               strings.TrimSpace(c.Param("id")),
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

func (s *Server) QuotationPDF(c *gin.Context) {
	ctx := c.Request.Context()

	detail, err := s.quotationSvc.GetByID(ctx, quotationdomain.GetQuotationRequest{
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

	doc := pdf.QuotationDocument{
		OrgName:    org.Name,
		OrgAddress: org.Address,
		OrgGSTIN:   org.GSTIN,

		QuotationNumber: detail.Quotation.QuotationNumber,
		Date:            detail.Quotation.CreatedAt.Format(dateOnlyLayout),
		Status:          string(detail.Quotation.Status),

		CustomerName:  detail.Quotation.CustomerName,
		CustomerState: detail.Quotation.CustomerState,
		CustomerGSTIN: detail.Quotation.CustomerGSTIN,

		Items: quotationLineRows(detail.Items),

		Subtotal: pdfMoney(detail.Quotation.Subtotal),
		Tax:      pdfMoney(detail.Quotation.TaxAmount),
		Grand:    pdfMoney(detail.Quotation.GrandTotal),
	}

	if detail.Quotation.ValidUntil != nil {
		doc.ValidUntil = detail.Quotation.ValidUntil.Format(dateOnlyLayout)
	}

	if detail.Quotation.IGSTAmount.IsPositive() {
		doc.IGST = pdfMoney(detail.Quotation.IGSTAmount)
	} else {
		doc.CGST = pdfMoney(detail.Quotation.CGSTAmount)
		doc.SGST = pdfMoney(detail.Quotation.SGSTAmount)
	}

	reader, err := s.pdfProvider.RenderQuotation(ctx, doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	writePDF(c, detail.Quotation.QuotationNumber, reader)
}

func quotationLineRows(items []quotationdomain.QuotationItem) []pdf.LineRow {
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

func isQuotationValidationError(err error) bool {
	switch err {
	case quotationdomain.ErrInvalidOrganization,
		quotationdomain.ErrInvalidID,
		quotationdomain.ErrInvalidCustomer,
		quotationdomain.ErrInvalidItems,
		quotationdomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}
