package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	employeedomain "github.com/vyapardesk/vyapardesk/internal/employee/domain"
	"github.com/vyapardesk/vyapardesk/internal/ratelimit"
	"github.com/vyapardesk/vyapardesk/pkg/db/pagination"
)

type createEmployeeRequest struct {
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	Role          string          `json:"role"`
	JoinedAt      *time.Time      `json:"joined_at"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
}

type updateEmployeeRequest struct {
	Name          *string          `json:"name"`
	Phone         *string          `json:"phone"`
	Email         *string          `json:"email"`
	Role          *string          `json:"role"`
	JoinedAt      *time.Time       `json:"joined_at"`
	MonthlySalary *decimal.Decimal `json:"monthly_salary"`
}

func (s *Server) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employeeSvc.Create(c.Request.Context(), employeedomain.CreateEmployeeRequest{
		Name:          strings.TrimSpace(req.Name),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Role:          strings.TrimSpace(req.Role),
		JoinedAt:      req.JoinedAt,
		MonthlySalary: req.MonthlySalary,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateEmployee(c *gin.Context) {
	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employeeSvc.Update(c.Request.Context(), employeedomain.UpdateEmployeeRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Role:          req.Role,
		JoinedAt:      req.JoinedAt,
		MonthlySalary: req.MonthlySalary,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEmployees(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name        string `form:"name"`
		Role        string `form:"role"`
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

	resp, err := s.employeeSvc.List(c.Request.Context(), employeedomain.ListEmployeeRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		Name:        strings.TrimSpace(query.Name),
		Role:        strings.TrimSpace(query.Role),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEmployeeByID(c *gin.Context) {
	resp, err := s.employeeSvc.GetByID(c.Request.Context(), employeedomain.GetEmployeeRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteEmployee(c *gin.Context) {
	err := s.employeeSvc.Delete(c.Request.Context(), employeedomain.DeleteEmployeeRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "deleted"}})
}

func (s *Server) SuggestEmployees(c *gin.Context) {
	user, _ := s.currentUser(c)
	if user != nil && s.rateLimited(c, ratelimit.LimiterSuggest, user.ID.String()) {
		return
	}

	var query struct {
		Query string `form:"q"`
		Limit int32  `form:"limit"`
		Seq   int64  `form:"seq"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.employeeSvc.Suggest(c.Request.Context(), employeedomain.SuggestRequest{
		Query: query.Query,
		Limit: query.Limit,
		Seq:   query.Seq,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isEmployeeValidationError(err error) bool {
	switch err {
	case employeedomain.ErrInvalidOrganization,
		employeedomain.ErrInvalidName,
		employeedomain.ErrInvalidEmail,
		employeedomain.ErrInvalidSalary,
		employeedomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
