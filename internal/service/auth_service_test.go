package service

import (
	"context"
	"testing"

	"github.com/ALehav1/language-app-sub001/internal/config"
	"github.com/ALehav1/language-app-sub001/internal/model"
	"github.com/ALehav1/language-app-sub001/internal/repository/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDBAuth(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	return db
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", ExpiryHours: 72},
	}
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, _, _ string) error {
	m.sent = append(m.sent, to)
	return m.err
}

func Test_authService_Register(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBAuth(t)

	t.Run("creates user and sends welcome mail", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "a@example.com").
			Return(nil, model.ErrNotFound).Once()
		mockUserRepo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "a@example.com" && u.PasswordHash != "password123"
		})).Return(nil).Once()

		mailer := &recordingMailer{}
		svc := NewAuthService(db, mockUserRepo, mailer, authTestConfig())
		user, err := svc.Register(ctx, &model.RegisterRequest{
			Name: "Ana", Email: "a@example.com", Password: "password123",
		})

		require.NoError(t, err)
		assert.Equal(t, "Ana", user.Name)
		assert.Equal(t, []string{"a@example.com"}, mailer.sent)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "a@example.com").
			Return(&model.User{Email: "a@example.com"}, nil).Once()

		svc := NewAuthService(db, mockUserRepo, &recordingMailer{}, authTestConfig())
		_, err := svc.Register(ctx, &model.RegisterRequest{
			Name: "Ana", Email: "a@example.com", Password: "password123",
		})
		assert.ErrorIs(t, err, model.ErrConflict)
	})

	t.Run("mail failure does not fail registration", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, model.ErrNotFound).Once()
		mockUserRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		mailer := &recordingMailer{err: assert.AnError}
		svc := NewAuthService(db, mockUserRepo, mailer, authTestConfig())
		_, err := svc.Register(ctx, &model.RegisterRequest{
			Name: "Ana", Email: "b@example.com", Password: "password123",
		})
		assert.NoError(t, err)
	})
}

func Test_authService_Login(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBAuth(t)
	cfg := authTestConfig()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	userID := uuid.New()
	user := &model.User{UserID: userID, Email: "a@example.com", PasswordHash: string(hash)}

	t.Run("issues a JWT whose subject is the user id", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "a@example.com").
			Return(user, nil).Once()

		svc := NewAuthService(db, mockUserRepo, &recordingMailer{}, cfg)
		resp, err := svc.Login(ctx, &model.LoginRequest{Email: "a@example.com", Password: "password123"})

		require.NoError(t, err)
		token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
			return []byte(cfg.JWT.SecretKey), nil
		})
		require.NoError(t, err)
		sub, err := token.Claims.GetSubject()
		require.NoError(t, err)
		assert.Equal(t, userID.String(), sub)
	})

	t.Run("wrong password is forbidden", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "a@example.com").
			Return(user, nil).Once()

		svc := NewAuthService(db, mockUserRepo, &recordingMailer{}, cfg)
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "a@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("unknown email reads the same as a wrong password", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "nobody@example.com").
			Return(nil, model.ErrNotFound).Once()

		svc := NewAuthService(db, mockUserRepo, &recordingMailer{}, cfg)
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "password123"})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}
