package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"servicehub/internal/database"
	"servicehub/internal/domain/catalog"
	"servicehub/internal/domain/payment"
	"servicehub/internal/domain/upload"
	jwtsvc "servicehub/internal/pkg/jwt"
)

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateHold(ctx context.Context, amount int64, currency string, userID int64) (*payment.Intent, error) {
	args := m.Called(ctx, amount, currency, userID)
	intent, _ := args.Get(0).(*payment.Intent)
	return intent, args.Error(1)
}

func (m *mockGateway) Capture(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

func (m *mockGateway) Release(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type suite struct {
	t        *testing.T
	app      *App
	db       *gorm.DB
	payments *mockGateway
}

func setup(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := database.NewTestDB(t, Models()...)
	store, err := upload.NewCloudinaryStore("")
	require.NoError(t, err)

	payments := &mockGateway{}
	app, err := New(Options{
		AllowedOrigins:  []string{"*"},
		RateLimitPerMin: 10000,
		CatalogCacheTTL: time.Minute,
		PaymentCurrency: "gbp",
		ReminderWindow:  24 * time.Hour,
	}, Deps{
		DB:       db,
		JWT:      jwtsvc.New("test_secret_key_32_characters_min", 7*24*time.Hour),
		Payments: payments,
		Store:    store,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)

	return &suite{t: t, app: app, db: db, payments: payments}
}

func (s *suite) do(method, path string, body any, token string) (int, testResponse) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var resp testResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type loginData struct {
	Token string `json:"token"`
	User  struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func (s *suite) registerAndLogin(name, email string) loginData {
	s.t.Helper()
	code, resp := s.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name": name, "email": email, "phone_number": "+44 7700 900000", "password": "secret123",
	}, "")
	require.Equal(s.t, http.StatusCreated, code)
	require.True(s.t, resp.Success)

	code, resp = s.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": email, "password": "secret123",
	}, "")
	require.Equal(s.t, http.StatusOK, code)
	return decode[loginData](s.t, resp.Data)
}

func TestHealth(t *testing.T) {
	s := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setup(t)

	for _, path := range []string{"/api/bookings", "/api/chats", "/api/account/profile", "/api/providers?service_name=x"} {
		code, resp := s.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.False(t, resp.Success)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	s := setup(t)
	s.registerAndLogin("Alice", "alice@example.com")

	code, resp := s.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Other", "email": "alice@example.com", "password": "secret123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EMAIL_EXISTS", resp.Error.Code)
}

// TestMarketplaceFlow walks a client and a provider through search, a held
// payment, booking acceptance, chat and reminders.
func TestMarketplaceFlow(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	cat := catalog.Category{Name: "Home Repair"}
	require.NoError(t, s.db.Create(&cat).Error)
	svc := catalog.Service{CategoryID: cat.ID, Name: "Plumbing"}
	require.NoError(t, s.db.Create(&svc).Error)

	client := s.registerAndLogin("Alice Client", "alice@example.com")
	pro := s.registerAndLogin("Carla Plumber", "carla@example.com")
	assert.Equal(t, "user", client.User.Role)

	// Catalog is public.
	code, resp := s.do(http.MethodGet, "/api/servicesByCategory", nil, "")
	require.Equal(t, http.StatusOK, code)
	grouped := decode[[]catalog.CategoryWithServices](t, resp.Data)
	require.Len(t, grouped, 1)
	assert.Equal(t, "Plumbing", grouped[0].Services[0].Name)

	// The dashboard is closed until the user becomes a provider.
	code, _ = s.do(http.MethodGet, "/api/provider/dashboard", nil, pro.Token)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = s.do(http.MethodPost, "/api/becomeProvider", map[string]any{
		"services": []map[string]any{{
			"service_id": svc.ID,
			"experience": 4,
			"price":      40,
			"availability": []map[string]any{
				{"day": "Mon", "ranges": []map[string]string{{"start": "09:00", "end": "17:00"}}},
			},
		}},
	}, pro.Token)
	require.Equal(t, http.StatusOK, code, string(resp.Data))
	proToken := decode[struct {
		Token string `json:"token"`
	}](t, resp.Data).Token
	require.NotEmpty(t, proToken)

	code, resp = s.do(http.MethodGet, "/api/provider/services", nil, proToken)
	require.Equal(t, http.StatusOK, code)
	offerings := decode[struct {
		Services []struct {
			ID int64 `json:"id"`
		} `json:"services"`
	}](t, resp.Data).Services
	require.Len(t, offerings, 1)
	offeringID := offerings[0].ID

	code, resp = s.do(http.MethodGet, "/api/providers?service_name=plumbing", nil, client.Token)
	require.Equal(t, http.StatusOK, code)
	listings := decode[[]struct {
		ID int64 `json:"id"`
	}](t, resp.Data)
	require.Len(t, listings, 1)
	assert.Equal(t, pro.User.ID, listings[0].ID)

	// Hold the payment, then book.
	s.payments.On("CreateHold", mock.Anything, int64(4000), "gbp", client.User.ID).
		Return(&payment.Intent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil).Once()
	code, resp = s.do(http.MethodPost, "/api/payments/create-payment-intent", map[string]any{"amount": 4000}, client.Token)
	require.Equal(t, http.StatusOK, code)
	intent := decode[payment.CreateIntentResponse](t, resp.Data)
	assert.Equal(t, "pi_123", intent.PaymentIntentID)

	scheduled := time.Now().UTC().Add(2 * time.Hour).Truncate(time.Second)
	code, resp = s.do(http.MethodPost, "/api/bookings", map[string]any{
		"provider_id":         pro.User.ID,
		"provider_service_id": offeringID,
		"description":         "Leaking tap",
		"scheduled_at":        scheduled.Format(time.RFC3339),
		"payment_intent_id":   intent.PaymentIntentID,
	}, client.Token)
	require.Equal(t, http.StatusCreated, code, string(resp.Data))
	created := decode[struct {
		ID            int64  `json:"id"`
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}](t, resp.Data)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "held", created.PaymentStatus)

	code, resp = s.do(http.MethodGet, "/api/provider/dashboard", nil, proToken)
	require.Equal(t, http.StatusOK, code)
	dash := decode[struct {
		PendingRequests []struct {
			BookingID int64 `json:"booking_id"`
		} `json:"pendingRequests"`
	}](t, resp.Data)
	require.Len(t, dash.PendingRequests, 1)
	assert.Equal(t, created.ID, dash.PendingRequests[0].BookingID)

	// Only the provider can accept; the client sees 404.
	acceptPath := fmt.Sprintf("/api/bookings/%d/accept", created.ID)
	code, _ = s.do(http.MethodPut, acceptPath, nil, client.Token)
	assert.Equal(t, http.StatusNotFound, code)

	s.payments.On("Capture", mock.Anything, "pi_123").Return(nil).Once()
	code, resp = s.do(http.MethodPut, acceptPath, nil, proToken)
	require.Equal(t, http.StatusOK, code, string(resp.Data))

	// A second transition finds nothing pending.
	code, _ = s.do(http.MethodPut, fmt.Sprintf("/api/bookings/%d/decline", created.ID), nil, proToken)
	assert.Equal(t, http.StatusNotFound, code)
	s.payments.AssertExpectations(t)
	s.payments.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)

	code, resp = s.do(http.MethodGet, "/api/bookings", nil, client.Token)
	require.Equal(t, http.StatusOK, code)
	history := decode[[]struct {
		BookingID     int64   `json:"booking_id"`
		ProviderName  string  `json:"provider_name"`
		ServiceName   *string `json:"service_name"`
		Status        string  `json:"status"`
		PaymentStatus string  `json:"payment_status"`
	}](t, resp.Data)
	require.Len(t, history, 1)
	assert.Equal(t, "Carla Plumber", history[0].ProviderName)
	require.NotNil(t, history[0].ServiceName)
	assert.Equal(t, "Plumbing", *history[0].ServiceName)
	assert.Equal(t, "accepted", history[0].Status)
	assert.Equal(t, "captured", history[0].PaymentStatus)

	// Chat between the two.
	code, resp = s.do(http.MethodPost, "/api/chats/findOrCreateChat", map[string]any{"otherUserId": pro.User.ID}, client.Token)
	require.Equal(t, http.StatusOK, code)
	chatID := decode[struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	}](t, resp.Data).Chat.ID

	code, resp = s.do(http.MethodPost, "/api/chats/findOrCreateChat", map[string]any{"otherUserId": client.User.ID}, proToken)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), fmt.Sprintf(`"id":%d`, chatID))

	msgPath := fmt.Sprintf("/api/messages/%d", chatID)
	for i := 0; i < 2; i++ {
		code, _ = s.do(http.MethodPost, msgPath, map[string]any{"message": "See you soon", "clientId": "c-1"}, client.Token)
		require.Equal(t, http.StatusCreated, code)
	}

	sent, err := s.app.Reminders.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	code, resp = s.do(http.MethodGet, msgPath, nil, proToken)
	require.Equal(t, http.StatusOK, code)
	msgs := decode[[]struct {
		SenderID int64  `json:"sender_id"`
		Body     string `json:"message"`
		Type     string `json:"type"`
	}](t, resp.Data)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Type)
	assert.Equal(t, pro.User.ID, msgs[0].SenderID)
	assert.Contains(t, msgs[0].Body, "Plumbing")
	assert.Equal(t, "See you soon", msgs[1].Body)

	code, resp = s.do(http.MethodGet, "/api/chats?filter=client", nil, client.Token)
	require.Equal(t, http.StatusOK, code)
	threads := decode[[]struct {
		OtherUserID int64 `json:"otherUserId"`
		IsClient    bool  `json:"isClient"`
	}](t, resp.Data)
	require.Len(t, threads, 1)
	assert.Equal(t, pro.User.ID, threads[0].OtherUserID)
	assert.True(t, threads[0].IsClient)

	// Strangers cannot read the chat.
	stranger := s.registerAndLogin("Mallory", "mallory@example.com")
	code, _ = s.do(http.MethodGet, msgPath, nil, stranger.Token)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProfileUpdateReissuesToken(t *testing.T) {
	s := setup(t)
	u := s.registerAndLogin("Alice", "alice@example.com")

	code, resp := s.do(http.MethodPut, "/api/account/profile", map[string]any{"name": "Alice B"}, u.Token)
	require.Equal(t, http.StatusOK, code)
	out := decode[struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
		Token string `json:"token"`
	}](t, resp.Data)
	assert.Equal(t, "Alice B", out.User.Name)
	assert.NotEmpty(t, out.Token)

	code, resp = s.do(http.MethodGet, "/api/account/profile", nil, out.Token)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"name":"Alice B"`)
}
