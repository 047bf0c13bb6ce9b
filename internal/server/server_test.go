package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/vyapardesk/vyapardesk/internal/auth/domain"
	"github.com/vyapardesk/vyapardesk/internal/auth/session"
	"github.com/vyapardesk/vyapardesk/internal/config"
	customerdomain "github.com/vyapardesk/vyapardesk/internal/customer/domain"
)

type fakeAuthService struct {
	loginCalls int
	loginErr   error
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	_ = ctx
	_ = req
	return nil, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	f.loginCalls++
	_ = ctx
	_ = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authdomain.LoginResult{
		User: &authdomain.User{
			ID:       snowflake.ID(200),
			OrgID:    snowflake.ID(100),
			Username: "asha",
			Role:     "owner",
		},
		RawToken:  "session-token",
		SessionID: snowflake.ID(300),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	_ = ctx
	_ = rawToken
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, *authdomain.User, error) {
	_ = ctx
	_ = rawToken
	return nil, nil, authdomain.ErrInvalidSession
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, userID snowflake.ID, newPassword string) error {
	_ = ctx
	_ = userID
	_ = newPassword
	return nil
}

type fakeCustomerService struct {
	createErr   error
	createCalls int
}

func (f *fakeCustomerService) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (customerdomain.Customer, error) {
	f.createCalls++
	_ = ctx
	if f.createErr != nil {
		return customerdomain.Customer{}, f.createErr
	}
	return customerdomain.Customer{ID: snowflake.ID(1), Name: req.Name}, nil
}

func (f *fakeCustomerService) Update(ctx context.Context, req customerdomain.UpdateCustomerRequest) (customerdomain.Customer, error) {
	_ = ctx
	_ = req
	return customerdomain.Customer{}, nil
}

func (f *fakeCustomerService) List(ctx context.Context, req customerdomain.ListCustomerRequest) (customerdomain.ListCustomerResponse, error) {
	_ = ctx
	_ = req
	return customerdomain.ListCustomerResponse{}, nil
}

func (f *fakeCustomerService) GetByID(ctx context.Context, req customerdomain.GetCustomerRequest) (customerdomain.Customer, error) {
	_ = ctx
	_ = req
	return customerdomain.Customer{}, nil
}

func (f *fakeCustomerService) Delete(ctx context.Context, req customerdomain.DeleteCustomerRequest) error {
	_ = ctx
	_ = req
	return nil
}

func (f *fakeCustomerService) Suggest(ctx context.Context, req customerdomain.SuggestRequest) (customerdomain.SuggestResponse, error) {
	_ = ctx
	return customerdomain.SuggestResponse{Seq: req.Seq}, nil
}

func (f *fakeCustomerService) Count(ctx context.Context) (int64, error) {
	_ = ctx
	return 0, nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authSvc := &fakeAuthService{}
	srv := &Server{
		cfg:      config.Config{},
		sessions: session.NewManager(config.Config{}),
		authSvc:  authSvc,
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/auth/login", srv.Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"username":"asha","password":"correct horse"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if authSvc.loginCalls != 1 {
		t.Fatalf("expected 1 login call, got %d", authSvc.loginCalls)
	}

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if sessionCookie.Value != "session-token" {
		t.Fatalf("unexpected session cookie value %q", sessionCookie.Value)
	}
}

func TestLoginBadCredentialsReturns401(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		cfg:      config.Config{},
		sessions: session.NewManager(config.Config{}),
		authSvc:  &fakeAuthService{loginErr: authdomain.ErrInvalidCredentials},
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/auth/login", srv.Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"username":"asha","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestCreateCustomerValidationMapsTo400(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		customerSvc: &fakeCustomerService{createErr: customerdomain.ErrInvalidName},
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/customers", srv.CreateCustomer)

	req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewBufferString(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", body.Error.Type)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Code != "invalid_name" {
		t.Fatalf("unexpected error detail: %+v", body.Error.Errors)
	}
}

func TestDuplicateKeyMapsToConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		customerSvc: &fakeCustomerService{
			createErr: errors.New("UNIQUE constraint failed: customers.org_id, customers.phone"),
		},
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/customers", srv.CreateCustomer)

	req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewBufferString(`{"name":"Patel Electronics"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", resp.Code, resp.Body.String())
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Type != "conflict" {
		t.Fatalf("expected conflict, got %q", body.Error.Type)
	}
}

func TestAuthRequiredWithoutCookieReturns401(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		sessions: session.NewManager(config.Config{}),
		authSvc:  &fakeAuthService{},
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/ping", srv.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "pong"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestPayInstallmentRejectsBadNumber(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/invoices/:id/installments/:number/pay", srv.PayInstallment)

	req := httptest.NewRequest(http.MethodPost, "/api/invoices/42/installments/two/pay", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestSuggestCustomersEchoesSeq(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		customerSvc: &fakeCustomerService{},
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/customers/suggest", srv.SuggestCustomers)

	req := httptest.NewRequest(http.MethodGet, "/api/customers/suggest?q=Ra&seq=7", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Data customerdomain.SuggestResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.Seq != 7 {
		t.Fatalf("expected seq 7 echoed back, got %d", body.Data.Seq)
	}
}
