package services_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
	services "github.com/CSES-Open-Source/tritonscript/internal/services/profile"
)

// Мок для ProfileRepository
type ProfileRepoMock struct {
	mock.Mock
}

func (m *ProfileRepoMock) EnsureProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *ProfileRepoMock) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *ProfileRepoMock) UpdateSelectedCourses(ctx context.Context, userUID string, courses []string) (int, error) {
	args := m.Called(ctx, userUID, courses)
	return args.Int(0), args.Error(1)
}

func (m *ProfileRepoMock) UpdateRole(ctx context.Context, userUID, role string) (int, error) {
	args := m.Called(ctx, userUID, role)
	return args.Int(0), args.Error(1)
}

func (m *ProfileRepoMock) ListProfilesByRole(ctx context.Context, role string) ([]*models.Profile, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

// Мок для EventPublisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func newProfileService(repo *ProfileRepoMock, events *PublisherMock) *services.ProfileService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return services.NewProfileService(repo, events, logger)
}

func TestProfileService_SelectCourses(t *testing.T) {
	tests := []struct {
		name           string
		input          []string
		wantNormalized []string
	}{
		{
			name:           "нормализация регистра и пробелов",
			input:          []string{"cse 101", "Math 20C"},
			wantNormalized: []string{"CSE101", "MATH20C"},
		},
		{
			name:           "дубликаты убираются с сохранением порядка",
			input:          []string{"CSE101", "cse 101", "MATH20C", "CSE101"},
			wantNormalized: []string{"CSE101", "MATH20C"},
		},
		{
			name:           "пустые строки пропускаются",
			input:          []string{"", "  ", "CSE101"},
			wantNormalized: []string{"CSE101"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(ProfileRepoMock)
			expected := &models.Profile{UserUID: "uid-1", Role: models.RoleViewer, SelectedCourses: tt.wantNormalized}

			repo.On("UpdateSelectedCourses", mock.Anything, "uid-1", tt.wantNormalized).Return(1, nil).Once()
			repo.On("GetProfile", mock.Anything, "uid-1").Return(expected, nil).Once()

			svc := newProfileService(repo, new(PublisherMock))
			got, err := svc.SelectCourses(context.Background(), "uid-1", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNormalized, got.SelectedCourses)

			repo.AssertExpectations(t)
		})
	}
}

func TestProfileService_SelectCourses_ProfileMissing(t *testing.T) {
	repo := new(ProfileRepoMock)
	repo.On("UpdateSelectedCourses", mock.Anything, "uid-404", []string{"CSE101"}).Return(0, nil).Once()

	svc := newProfileService(repo, new(PublisherMock))
	_, err := svc.SelectCourses(context.Background(), "uid-404", []string{"CSE101"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	repo.AssertExpectations(t)
}

func TestProfileService_SetRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		setupMocks func(r *ProfileRepoMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name: "одобрение заявки",
			role: models.RoleScribe,
			setupMocks: func(r *ProfileRepoMock, p *PublisherMock) {
				r.On("UpdateRole", mock.Anything, "uid-1", models.RoleScribe).Return(1, nil).Once()
				p.On("Publish", "user.role_changed", mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "отклонение заявки",
			role: models.RoleRejected,
			setupMocks: func(r *ProfileRepoMock, p *PublisherMock) {
				r.On("UpdateRole", mock.Anything, "uid-1", models.RoleRejected).Return(1, nil).Once()
				p.On("Publish", "user.role_changed", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:       "неизвестная роль отклоняется",
			role:       "superuser",
			setupMocks: func(_ *ProfileRepoMock, _ *PublisherMock) {},
			wantErr:    apperr.ErrValidation,
		},
		{
			name: "несуществующий пользователь",
			role: models.RoleScribe,
			setupMocks: func(r *ProfileRepoMock, _ *PublisherMock) {
				r.On("UpdateRole", mock.Anything, "uid-1", models.RoleScribe).Return(0, nil).Once()
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(ProfileRepoMock)
			events := new(PublisherMock)
			tt.setupMocks(repo, events)

			svc := newProfileService(repo, events)
			err := svc.SetRole(context.Background(), "uid-1", tt.role)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			events.AssertExpectations(t)
		})
	}
}

func TestProfileService_ListPending(t *testing.T) {
	repo := new(ProfileRepoMock)
	repo.On("ListProfilesByRole", mock.Anything, models.RolePending).
		Return([]*models.Profile{{UserUID: "uid-1", Role: models.RolePending}}, nil).Once()

	svc := newProfileService(repo, new(PublisherMock))
	profiles, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	repo.AssertExpectations(t)
}
