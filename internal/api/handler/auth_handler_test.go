package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carelink/auth-server/internal/api/middleware"
	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/core/ports"
)

type stubAuthService struct {
	registerFn  func(ctx context.Context, in ports.RegisterInput) (*domain.PublicAccount, error)
	loginFn     func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	authorizeFn func(ctx context.Context, token string) (*domain.Identity, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.PublicAccount, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Authorize(ctx context.Context, token string) (*domain.Identity, error) {
	return s.authorizeFn(ctx, token)
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withIdentity(c echo.Context, identity domain.Identity) {
	c.Set(middleware.IdentityKey, identity)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestAuthHandler_Check(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/v1/users/check", "")

	if err := NewAuthHandler(&stubAuthService{}).Check(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := decodeBody(t, rec)["message"]; got != "Auth server is up and running" {
		t.Fatalf("unexpected message %v", got)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.PublicAccount, error) {
			if in.Username != "a" || in.Email != "a@x.com" || in.Password != "secret" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.PublicAccount{ID: "acc-1", Username: in.Username, Email: in.Email}, nil
		},
	}
	body := `{"username":"a","email":"a@x.com","password":"secret","role":"admin"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/users", body)

	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	if resp["message"] != "User created" {
		t.Fatalf("unexpected message %v", resp["message"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	for _, forbidden := range []string{"password", "role", "token"} {
		if _, present := user[forbidden]; present {
			t.Fatalf("response leaked %q: %v", forbidden, user)
		}
	}
	if user["id"] != "acc-1" {
		t.Fatalf("unexpected user payload: %v", user)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.PublicAccount, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}

	tests := []struct {
		name string
		body string
		want []string
	}{
		{"all missing", `{}`, []string{"username is required", "email is required", "password is required"}},
		{"bad email", `{"username":"a","email":"nope","password":"p"}`, []string{"email must be a valid email"}},
		{"malformed json", `{"username":`, []string{"invalid request body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/api/v1/users", tt.body)

			err := NewAuthHandler(stub).Register(c)
			if domain.KindOf(err) != domain.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Fatalf("expected %q in %q", w, err.Error())
				}
			}
		})
	}
}

func TestAuthHandler_Register_JoinsFieldErrorsWithComma(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/api/v1/users", `{"email":"a@x.com"}`)

	err := NewAuthHandler(&stubAuthService{}).Register(c)
	if err == nil || err.Error() != "username is required, password is required" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.LoginResult, error) {
			return &ports.LoginResult{
				Account: &domain.Account{ID: "acc-1", Username: "a", Email: email, Role: domain.RolePatient},
				Token:   "signed.jwt.token",
			}, nil
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/login", `{"email":"a@x.com","password":"secret"}`)

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decodeBody(t, rec)
	if resp["message"] != "Login successful" {
		t.Fatalf("unexpected message %v", resp["message"])
	}
	user := resp["user"].(map[string]any)
	if user["token"] != "signed.jwt.token" || user["role"] != "patient" || user["id"] != "acc-1" {
		t.Fatalf("unexpected user payload: %v", user)
	}
	if _, present := user["password"]; present {
		t.Fatalf("password leaked: %v", user)
	}
}

func TestAuthHandler_Login_Failure(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/login", `{"email":"a@x.com","password":"bad"}`)

	err := NewAuthHandler(stub).Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("handler must leave rendering to the error handler")
	}
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/login", `not json`)

	if err := NewAuthHandler(&stubAuthService{}).Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Token(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/v1/users/token", "")
	withIdentity(c, domain.Identity{ID: "acc-1", Username: "a", Email: "a@x.com", Role: domain.RolePatient})

	if err := NewAuthHandler(&stubAuthService{}).Token(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decodeBody(t, rec)
	if resp["message"] != "Token is valid" {
		t.Fatalf("unexpected message %v", resp["message"])
	}
	user := resp["user"].(map[string]any)
	if user["id"] != "acc-1" || user["role"] != "patient" || user["username"] != "a" {
		t.Fatalf("unexpected identity: %v", user)
	}
}

func TestAuthHandler_Token_WithoutGate(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/v1/users/token", "")

	if err := NewAuthHandler(&stubAuthService{}).Token(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
