package create

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/CSES-Open-Source/tritonscript/internal/http/middlewarectx"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userUID string, req models.DummyNote) (*models.Note, error) {
	args := m.Called(ctx, userUID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	validBody := `{"title":"Lecture 5","class_name":"CSE","class_number":"101",` +
		`"quarter":"Fall 2025","storage_key":"notes/uid-1/Fall-2025/x.pdf","file_size":2048}`

	tests := []struct {
		name           string
		userUID        string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное создание",
			userUID: "uid-1",
			body:    validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.Anything).
					Return(&models.Note{ID: 7, Title: "Lecture 5", CourseCode: "CSE101"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"course_code":"CSE101"`,
		},
		{
			name:    "чужой ключ хранилища",
			userUID: "uid-2",
			body:    validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-2", mock.Anything).
					Return(nil, apperr.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"storage key does not belong to user"`,
		},
		{
			name:    "повторная фиксация ключа",
			userUID: "uid-1",
			body:    validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1", mock.Anything).
					Return(nil, apperr.ErrConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"note already exists for this storage key"`,
		},
		{
			name:           "нет метаданных",
			userUID:        "uid-1",
			body:           `{"title":"Lecture 5"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `required`,
		},
		{
			name:           "нет пользователя в контексте",
			userUID:        "",
			body:           validBody,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(tt.body))
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				req = req.WithContext(ctx)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
