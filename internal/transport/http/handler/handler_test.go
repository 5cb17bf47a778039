package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-gin-shop-api/internal/core/mailer"
	"go-gin-shop-api/internal/domain"
	"go-gin-shop-api/internal/feature/product"
	"go-gin-shop-api/internal/feature/user"
	resp "go-gin-shop-api/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type mounter interface {
	MountAPI(public, authed *gin.RouterGroup)
}

// engine mounts m with both groups open; the gate has its own tests.
func engine(m mounter) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	m.MountAPI(api, api)
	return r
}

func do(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, resp.Body) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var b resp.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b), w.Body.String())
	return w, b
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type file struct {
	name string
	body []byte
}

func multipartReq(t *testing.T, path string, fields map[string]string, files ...file) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

type MockAccounts struct{ mock.Mock }

func (m *MockAccounts) SignUp(ctx context.Context, in user.SignUpInput) (*domain.User, string, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*domain.User)
	return u, args.String(1), args.Error(2)
}

func (m *MockAccounts) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*domain.User)
	return u, args.String(1), args.Error(2)
}

func (m *MockAccounts) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type MockProducts struct{ mock.Mock }

func (m *MockProducts) Create(ctx context.Context, in product.CreateInput) (*domain.Product, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *MockProducts) list(args mock.Arguments) ([]domain.Product, error) {
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockProducts) List(ctx context.Context) ([]domain.Product, error) {
	return m.list(m.Called(ctx))
}

func (m *MockProducts) Search(ctx context.Context, name string) ([]domain.Product, error) {
	return m.list(m.Called(ctx, name))
}

func (m *MockProducts) CreatedSince(ctx context.Context, since time.Time) ([]domain.Product, error) {
	return m.list(m.Called(ctx, since))
}

func (m *MockProducts) InStock(ctx context.Context) ([]domain.Product, error) {
	return m.list(m.Called(ctx))
}

func (m *MockProducts) Get(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *MockProducts) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	args := m.Called(ctx, id, patch)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *MockProducts) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockSender struct{ mock.Mock }

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}
