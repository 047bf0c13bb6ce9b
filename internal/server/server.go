package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vyapardesk/vyapardesk/internal/auth"
	authdomain "github.com/vyapardesk/vyapardesk/internal/auth/domain"
	"github.com/vyapardesk/vyapardesk/internal/auth/session"
	"github.com/vyapardesk/vyapardesk/internal/authorization"
	"github.com/vyapardesk/vyapardesk/internal/config"
	"github.com/vyapardesk/vyapardesk/internal/customer"
	customerdomain "github.com/vyapardesk/vyapardesk/internal/customer/domain"
	"github.com/vyapardesk/vyapardesk/internal/dashboard"
	dashboarddomain "github.com/vyapardesk/vyapardesk/internal/dashboard/domain"
	"github.com/vyapardesk/vyapardesk/internal/employee"
	employeedomain "github.com/vyapardesk/vyapardesk/internal/employee/domain"
	"github.com/vyapardesk/vyapardesk/internal/invoice"
	invoicedomain "github.com/vyapardesk/vyapardesk/internal/invoice/domain"
	"github.com/vyapardesk/vyapardesk/internal/observability"
	obslogger "github.com/vyapardesk/vyapardesk/internal/observability/logger"
	obsmetrics "github.com/vyapardesk/vyapardesk/internal/observability/metrics"
	obstracing "github.com/vyapardesk/vyapardesk/internal/observability/tracing"
	"github.com/vyapardesk/vyapardesk/internal/organization"
	organizationdomain "github.com/vyapardesk/vyapardesk/internal/organization/domain"
	"github.com/vyapardesk/vyapardesk/internal/providers/pdf"
	"github.com/vyapardesk/vyapardesk/internal/quotation"
	quotationdomain "github.com/vyapardesk/vyapardesk/internal/quotation/domain"
	"github.com/vyapardesk/vyapardesk/internal/ratelimit"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	organization.Module,
	customer.Module,
	employee.Module,
	invoice.Module,
	quotation.Module,
	dashboard.Module,
	pdf.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware())
	r.Use(obstracing.GinMiddleware(obsCfg.ServiceName))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	sessions        *session.Manager
	authSvc         authdomain.Service
	authzSvc        authorization.Service
	organizationSvc organizationdomain.Service
	customerSvc     customerdomain.Service
	employeeSvc     employeedomain.Service
	invoiceSvc      invoicedomain.Service
	quotationSvc    quotationdomain.Service
	dashboardSvc    dashboarddomain.Service
	pdfProvider     pdf.Provider
	limiter         *ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Sessions        *session.Manager
	AuthSvc         authdomain.Service
	AuthzSvc        authorization.Service
	OrganizationSvc organizationdomain.Service
	CustomerSvc     customerdomain.Service
	EmployeeSvc     employeedomain.Service
	InvoiceSvc      invoicedomain.Service
	QuotationSvc    quotationdomain.Service
	DashboardSvc    dashboarddomain.Service
	PDFProvider     pdf.Provider
	Limiter         *ratelimit.Limiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		sessions:        p.Sessions,
		authSvc:         p.AuthSvc,
		authzSvc:        p.AuthzSvc,
		organizationSvc: p.OrganizationSvc,
		customerSvc:     p.CustomerSvc,
		employeeSvc:     p.EmployeeSvc,
		invoiceSvc:      p.InvoiceSvc,
		quotationSvc:    p.QuotationSvc,
		dashboardSvc:    p.DashboardSvc,
		pdfProvider:     p.PDFProvider,
		limiter:         p.Limiter,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	api.GET("/permissions", s.ListPermissions)
	api.GET("/dashboard/stats", s.RequirePermission(authorization.ObjectDashboard, authorization.ActionView), s.DashboardStats)

	customers := api.Group("/customers")
	{
		customers.GET("", s.RequirePermission(authorization.ObjectCustomer, authorization.ActionView), s.ListCustomers)
		customers.GET("/suggest", s.RequirePermission(authorization.ObjectCustomer, authorization.ActionView), s.SuggestCustomers)
		customers.GET("/:id", s.RequirePermission(authorization.ObjectCustomer, authorization.ActionView), s.GetCustomerByID)
		customers.POST("", s.RequirePermission(authorization.ObjectCustomer, authorization.ActionCreate), s.CreateCustomer)
		customers.PATCH("/:id", s.RequirePermission(authorization.ObjectCustomer, authorization.ActionEdit), s.UpdateCustomer)
		customers.DELETE("/:id", s.RequirePermission(authorization.ObjectCustomer, authorization.ActionDelete), s.DeleteCustomer)
	}

	employees := api.Group("/employees")
	{
		employees.GET("", s.RequirePermission(authorization.ObjectEmployee, authorization.ActionView), s.ListEmployees)
		employees.GET("/suggest", s.RequirePermission(authorization.ObjectEmployee, authorization.ActionView), s.SuggestEmployees)
		employees.GET("/:id", s.RequirePermission(authorization.ObjectEmployee, authorization.ActionView), s.GetEmployeeByID)
		employees.POST("", s.RequirePermission(authorization.ObjectEmployee, authorization.ActionCreate), s.CreateEmployee)
		employees.PATCH("/:id", s.RequirePermission(authorization.ObjectEmployee, authorization.ActionEdit), s.UpdateEmployee)
		employees.DELETE("/:id", s.RequirePermission(authorization.ObjectEmployee, authorization.ActionDelete), s.DeleteEmployee)
	}

	invoices := api.Group("/invoices")
	{
		invoices.GET("", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionView), s.ListInvoices)
		invoices.GET("/:id", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoiceByID)
		invoices.GET("/:id/pdf", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionView), s.InvoicePDF)
		invoices.POST("", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionCreate), s.CreateInvoice)
		invoices.POST("/preview", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionView), s.PreviewInvoice)
		invoices.PUT("/:id", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionEdit), s.UpdateInvoice)
		invoices.DELETE("/:id", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionDelete), s.DeleteInvoice)
		invoices.POST("/:id/installments/:number/pay", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionInvoicePayInstallment), s.PayInstallment)
	}

	quotations := api.Group("/quotations")
	{
		quotations.GET("", s.RequirePermission(authorization.ObjectQuotation, authorization.ActionView), s.ListQuotations)
		quotations.GET("/:id", s.RequirePermission(authorization.ObjectQuotation, authorization.ActionView), s.GetQuotationByID)
		quotations.GET("/:id/pdf", s.RequirePermission(authorization.ObjectQuotation, authorization.ActionView), s.QuotationPDF)
		quotations.POST("", s.RequirePermission(authorization.ObjectQuotation, authorization.ActionCreate), s.CreateQuotation)
		quotations.PUT("/:id", s.RequirePermission(authorization.ObjectQuotation, authorization.ActionEdit), s.UpdateQuotation)
		quotations.DELETE("/:id", s.RequirePermission(authorization.ObjectQuotation, authorization.ActionDelete), s.DeleteQuotation)
		quotations.POST("/:id/status", s.RequirePermission(authorization.ObjectQuotation, authorization.ActionEdit), s.UpdateQuotationStatus)
		quotations.POST("/:id/convert", s.RequirePermission(authorization.ObjectQuotation, authorization.ActionQuotationConvert), s.ConvertQuotation)
	}
}
