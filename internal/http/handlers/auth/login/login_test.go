package login

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/CSES-Open-Source/tritonscript/internal/http/cookie"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
	authservice "github.com/CSES-Open-Source/tritonscript/internal/services/auth"
)

// MockService реализует интерфейс login.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, email, password string) (*authservice.TokenPair, *models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*authservice.TokenPair), args.Get(1).(*models.User), args.Error(2)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
		wantCookie     bool
	}{
		{
			name: "успешный вход",
			body: `{"email":"student@ucsd.edu","password":"password123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "student@ucsd.edu", "password123").
					Return(&authservice.TokenPair{AccessToken: "access-123", RefreshToken: "refresh-456"},
						&models.User{UID: "uid-1", Email: "student@ucsd.edu"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"access_token":"access-123"`,
			wantCookie:     true,
		},
		{
			name: "неверные учетные данные",
			body: `{"email":"student@ucsd.edu","password":"wrong"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "student@ucsd.edu", "wrong").
					Return(nil, nil, apperr.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid email or password"`,
		},
		{
			name: "несуществующий пользователь маскируется под неверный пароль",
			body: `{"email":"ghost@ucsd.edu","password":"password123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "ghost@ucsd.edu", "password123").
					Return(nil, nil, apperr.ErrNotFound)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid email or password"`,
		},
		{
			name: "заблокированный аккаунт",
			body: `{"email":"student@ucsd.edu","password":"password123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "student@ucsd.edu", "password123").
					Return(nil, nil, apperr.ErrAccountLocked)
			},
			expectedStatus: http.StatusLocked,
			expectedBody:   `"account temporarily locked`,
		},
		{
			name:           "некорректное тело запроса",
			body:           `{not json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid request body"`,
		},
		{
			name:           "отсутствует пароль",
			body:           `{"email":"student@ucsd.edu"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `required`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, 168*time.Hour)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			if tt.wantCookie {
				found := false
				for _, c := range w.Result().Cookies() {
					if c.Name == cookie.RefreshTokenName {
						found = true
						assert.Equal(t, "refresh-456", c.Value)
						assert.True(t, c.HttpOnly)
					}
				}
				assert.True(t, found, "refresh token cookie should be set")
			}

			mockService.AssertExpectations(t)
		})
	}
}
