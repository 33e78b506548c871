package payment

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"servicehub/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateHold(ctx context.Context, amount int64, currency string, userID int64) (*Intent, error) {
	args := m.Called(ctx, amount, currency, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Intent), args.Error(1)
}

func (m *mockGateway) Capture(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

func (m *mockGateway) Release(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

func setupRouter(gw Gateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CtxUserID, int64(5))
		c.Next()
	})
	NewHandler(gw, "gbp", zap.NewNop(), nil).RegisterRoutes(r.Group("/api"))
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/create-payment-intent", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestCreatePaymentIntent_Success(t *testing.T) {
	gw := new(mockGateway)
	gw.On("CreateHold", mock.Anything, int64(2500), "gbp", int64(5)).
		Return(&Intent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil)

	rr := post(setupRouter(gw), `{"amount":2500}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"clientSecret":"pi_123_secret"`)
	assert.Contains(t, rr.Body.String(), `"paymentIntentId":"pi_123"`)
	gw.AssertExpectations(t)
}

func TestCreatePaymentIntent_InvalidAmount(t *testing.T) {
	gw := new(mockGateway)

	rr := post(setupRouter(gw), `{"amount":0}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	gw.AssertNotCalled(t, "CreateHold", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePaymentIntent_GatewayErrors(t *testing.T) {
	gw := new(mockGateway)
	gw.On("CreateHold", mock.Anything, int64(100), "gbp", int64(5)).Return(nil, errors.New("card_declined")).Once()
	gw.On("CreateHold", mock.Anything, int64(200), "gbp", int64(5)).Return(nil, ErrNotConfigured).Once()

	r := setupRouter(gw)
	rr := post(r, `{"amount":100}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "card_declined")

	rr = post(r, `{"amount":200}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestStripeGateway_Unconfigured(t *testing.T) {
	gw := NewStripeGateway("")
	ctx := context.Background()

	_, err := gw.CreateHold(ctx, 100, "gbp", 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, gw.Capture(ctx, "pi_1"), ErrNotConfigured)
	assert.ErrorIs(t, gw.Release(ctx, "pi_1"), ErrNotConfigured)
}
