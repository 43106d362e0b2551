package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CSES-Open-Source/tritonscript/internal/lib/apperr"
	customjwt "github.com/CSES-Open-Source/tritonscript/internal/lib/jwt"
	"github.com/CSES-Open-Source/tritonscript/internal/lib/password"
	"github.com/CSES-Open-Source/tritonscript/internal/models"
	services "github.com/CSES-Open-Source/tritonscript/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) IncrementLoginAttempts(ctx context.Context, userUID string, maxAttempts int, lockFor time.Duration) (int, error) {
	args := m.Called(ctx, userUID, maxAttempts, lockFor)
	return args.Int(0), args.Error(1)
}

func (m *UserRepoMock) ResetLoginAttempts(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func (m *UserRepoMock) SetRefreshToken(ctx context.Context, userUID, token string) error {
	args := m.Called(ctx, userUID, token)
	return args.Error(0)
}

func (m *UserRepoMock) RotateRefreshToken(ctx context.Context, userUID, oldToken, newToken string) (bool, error) {
	args := m.Called(ctx, userUID, oldToken, newToken)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepoMock) ClearRefreshToken(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func (m *UserRepoMock) EnsureProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func newMaker() customjwt.Maker {
	return customjwt.NewJWTMaker("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:  "успешная регистрация",
			email: "student@ucsd.edu",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "student@ucsd.edu" && user.PasswordHash != ""
				})).Return("uid-1", nil).Once()
				r.On("EnsureProfile", mock.Anything, "uid-1").
					Return(&models.Profile{UserUID: "uid-1", Role: models.RolePending}, nil).Once()
				r.On("SetRefreshToken", mock.Anything, "uid-1", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:  "почта приводится к нижнему регистру",
			email: "  Student@UCSD.edu ",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "student@ucsd.edu"
				})).Return("uid-1", nil).Once()
				r.On("EnsureProfile", mock.Anything, "uid-1").
					Return(&models.Profile{UserUID: "uid-1", Role: models.RolePending}, nil).Once()
				r.On("SetRefreshToken", mock.Anything, "uid-1", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:       "чужой почтовый домен отклоняется",
			email:      "student@gmail.com",
			setupMocks: func(_ *UserRepoMock) {},
			wantErr:    apperr.ErrValidation,
		},
		{
			name:  "занятая почта",
			email: "student@ucsd.edu",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).Return("", apperr.ErrConflict).Once()
			},
			wantErr: apperr.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)

			svc := services.NewAuthService(repo, newMaker(), "@ucsd.edu")
			pair, user, err := svc.Register(context.Background(), tt.email, "Test", "Student", "password123")

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, pair.AccessToken)
				assert.NotEmpty(t, pair.RefreshToken)
				assert.Equal(t, "uid-1", user.UID)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	lockUntil := time.Now().Add(time.Hour)
	expiredLock := time.Now().Add(-time.Minute)

	tests := []struct {
		name       string
		password   string
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:     "успешный вход",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "student@ucsd.edu").
					Return(&models.User{UID: "uid-1", Email: "student@ucsd.edu", PasswordHash: hashedPassword}, nil).Once()
				r.On("ResetLoginAttempts", mock.Anything, "uid-1").Return(nil).Once()
				r.On("EnsureProfile", mock.Anything, "uid-1").
					Return(&models.Profile{UserUID: "uid-1", Role: models.RoleViewer}, nil).Once()
				r.On("SetRefreshToken", mock.Anything, "uid-1", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:     "неверный пароль увеличивает счетчик",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "student@ucsd.edu").
					Return(&models.User{UID: "uid-1", Email: "student@ucsd.edu", PasswordHash: hashedPassword}, nil).Once()
				r.On("IncrementLoginAttempts", mock.Anything, "uid-1", 5, 2*time.Hour).Return(1, nil).Once()
			},
			wantErr: apperr.ErrInvalidCredentials,
		},
		{
			name:     "заблокированный аккаунт отклоняет даже верный пароль",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "student@ucsd.edu").
					Return(&models.User{UID: "uid-1", Email: "student@ucsd.edu",
						PasswordHash: hashedPassword, LoginAttempts: 5, LockUntil: &lockUntil}, nil).Once()
			},
			wantErr: apperr.ErrAccountLocked,
		},
		{
			name:     "верный пароль после истечения блокировки сбрасывает счетчик",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "student@ucsd.edu").
					Return(&models.User{UID: "uid-1", Email: "student@ucsd.edu",
						PasswordHash: hashedPassword, LoginAttempts: 5, LockUntil: &expiredLock}, nil).Once()
				r.On("ResetLoginAttempts", mock.Anything, "uid-1").Return(nil).Once()
				r.On("EnsureProfile", mock.Anything, "uid-1").
					Return(&models.Profile{UserUID: "uid-1", Role: models.RoleViewer}, nil).Once()
				r.On("SetRefreshToken", mock.Anything, "uid-1", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:     "несуществующий пользователь",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByEmail", mock.Anything, "student@ucsd.edu").
					Return(nil, apperr.ErrNotFound).Once()
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)

			svc := services.NewAuthService(repo, newMaker(), "@ucsd.edu")
			pair, user, err := svc.Login(context.Background(), "student@ucsd.edu", tt.password)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, pair.AccessToken)
				assert.Equal(t, "uid-1", user.UID)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	maker := newMaker()
	validRefresh, err := maker.GenerateRefreshToken("uid-1")
	require.NoError(t, err)

	t.Run("успешная ротация", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("RotateRefreshToken", mock.Anything, "uid-1", validRefresh, mock.Anything).Return(true, nil).Once()
		repo.On("GetUser", mock.Anything, "uid-1").
			Return(&models.User{UID: "uid-1", Email: "student@ucsd.edu"}, nil).Once()
		repo.On("EnsureProfile", mock.Anything, "uid-1").
			Return(&models.Profile{UserUID: "uid-1", Role: models.RoleScribe}, nil).Once()

		svc := services.NewAuthService(repo, maker, "@ucsd.edu")
		pair, err := svc.Refresh(context.Background(), validRefresh)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEqual(t, validRefresh, pair.RefreshToken)

		repo.AssertExpectations(t)
	})

	t.Run("устаревший токен отклоняется", func(t *testing.T) {
		// Compare-and-swap не прошел: в базе уже другой токен.
		repo := new(UserRepoMock)
		repo.On("RotateRefreshToken", mock.Anything, "uid-1", validRefresh, mock.Anything).Return(false, nil).Once()

		svc := services.NewAuthService(repo, maker, "@ucsd.edu")
		_, err := svc.Refresh(context.Background(), validRefresh)
		assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

		repo.AssertExpectations(t)
	})

	t.Run("мусорный токен отклоняется без обращения к базе", func(t *testing.T) {
		repo := new(UserRepoMock)

		svc := services.NewAuthService(repo, maker, "@ucsd.edu")
		_, err := svc.Refresh(context.Background(), "not-a-jwt")
		assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

		repo.AssertExpectations(t)
	})
}

func TestAuthService_Logout(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("ClearRefreshToken", mock.Anything, "uid-1").Return(nil).Once()

	svc := services.NewAuthService(repo, newMaker(), "@ucsd.edu")
	assert.NoError(t, svc.Logout(context.Background(), "uid-1"))

	repo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	maker := newMaker()
	svc := services.NewAuthService(new(UserRepoMock), maker, "@ucsd.edu")

	token, err := maker.GenerateAccessToken("uid-1", "student@ucsd.edu", "viewer")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserUID)
	assert.Equal(t, "viewer", claims.Role)

	_, err = svc.ValidateToken(context.Background(), "garbage")
	assert.Error(t, err)
}
