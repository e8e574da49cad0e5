package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/users-backend/internal/models"
	"github.com/ignatzorin/users-backend/internal/pkg/apperror"
)

// mockFormatChecker имитирует внешний OTP-сервис.
type mockFormatChecker struct {
	valid bool
	err   error
}

func (m *mockFormatChecker) CheckFormat(ctx context.Context, code string) (bool, error) {
	return m.valid, m.err
}

// mockPasswordUpdater хранит одного пользователя и считает смены пароля.
type mockPasswordUpdater struct {
	user    *models.User
	updates int
}

func (m *mockPasswordUpdater) GetByIDAndEmail(ctx context.Context, id int64, email string) (*models.User, error) {
	if m.user != nil && m.user.ID == id && m.user.Email == email {
		return m.user, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockPasswordUpdater) UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error) {
	if m.user == nil || m.user.ID != id {
		return false, nil
	}
	m.user.PasswordHash = passwordHash
	m.updates++
	return true, nil
}

// mockOTPVerifier отвечает заранее заданным вердиктом.
type mockOTPVerifier struct {
	ok  bool
	err error
}

func (m *mockOTPVerifier) Verify(ctx context.Context, userID int64, email, code string) (bool, error) {
	return m.ok, m.err
}

func TestPasswordResetService_Validation(t *testing.T) {
	service := NewPasswordResetService(&mockFormatChecker{valid: true}, &mockOTPVerifier{ok: true}, &mockPasswordUpdater{})
	ctx := context.Background()

	cases := []struct {
		name string
		in   ResetInput
	}{
		{"нет id", ResetInput{Email: "a@b.com", OTP: "123456", NewPassword: "Password123"}},
		{"нет email", ResetInput{UserID: 1, OTP: "123456", NewPassword: "Password123"}},
		{"нет кода", ResetInput{UserID: 1, Email: "a@b.com", NewPassword: "Password123"}},
		{"слабый пароль", ResetInput{UserID: 1, Email: "a@b.com", OTP: "123456", NewPassword: "short"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := service.Reset(ctx, tc.in); !apperror.IsValidation(err) {
				t.Fatalf("ожидалась ошибка валидации, получили %v", err)
			}
		})
	}
}

func TestPasswordResetService_BadFormat(t *testing.T) {
	updater := &mockPasswordUpdater{user: &models.User{ID: 1, Email: "a@b.com"}}
	service := NewPasswordResetService(&mockFormatChecker{valid: false}, &mockOTPVerifier{ok: true}, updater)

	err := service.Reset(context.Background(), ResetInput{
		UserID:      1,
		Email:       "a@b.com",
		OTP:         "garbage",
		NewPassword: "Password123",
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("некорректный формат кода должен давать ошибку валидации, получили %v", err)
	}
	if updater.updates != 0 {
		t.Fatalf("пароль не должен меняться при отказе формата")
	}
}

func TestPasswordResetService_UserNotFound(t *testing.T) {
	updater := &mockPasswordUpdater{user: &models.User{ID: 1, Email: "a@b.com"}}
	service := NewPasswordResetService(&mockFormatChecker{valid: true}, &mockOTPVerifier{ok: true}, updater)

	err := service.Reset(context.Background(), ResetInput{
		UserID:      2,
		Email:       "a@b.com",
		OTP:         "123456",
		NewPassword: "Password123",
	})
	if !errors.Is(err, apperror.ErrUserNotFound) {
		t.Fatalf("ожидался ErrUserNotFound, получили %v", err)
	}
}

func TestPasswordResetService_InvalidOTP(t *testing.T) {
	updater := &mockPasswordUpdater{user: &models.User{ID: 1, Email: "a@b.com"}}
	service := NewPasswordResetService(&mockFormatChecker{valid: true}, &mockOTPVerifier{ok: false}, updater)

	err := service.Reset(context.Background(), ResetInput{
		UserID:      1,
		Email:       "a@b.com",
		OTP:         "123456",
		NewPassword: "Password123",
	})
	if !errors.Is(err, apperror.ErrOTPInvalid) {
		t.Fatalf("ожидался ErrOTPInvalid, получили %v", err)
	}
	if updater.updates != 0 {
		t.Fatalf("пароль не должен меняться при неверном коде")
	}
}

// Сквозной сценарий: запрос кода → сброс пароля → повтор с тем же кодом.
func TestPasswordResetService_EndToEnd(t *testing.T) {
	user := &models.User{ID: 7, Email: "a@b.com", AccountStatus: models.AccountStatusVerified}
	otps := newMockOTPRepository()
	users := &mockUserFinder{users: map[string]*models.User{user.Email: user}}
	otpService := NewOTPService(otps, users, &mockGateway{code: "482913"}, "http://localhost:3000/reset-password")

	updater := &mockPasswordUpdater{user: user}
	service := NewPasswordResetService(&mockFormatChecker{valid: true}, otpService, updater)
	ctx := context.Background()

	result, err := otpService.Request(ctx, user.Email)
	if err != nil {
		t.Fatalf("запрос кода должен пройти: %v", err)
	}

	in := ResetInput{
		UserID:      user.ID,
		Email:       user.Email,
		OTP:         result.OTP.Code,
		NewPassword: "NewPassword123",
	}
	if err := service.Reset(ctx, in); err != nil {
		t.Fatalf("сброс с верным кодом должен пройти: %v", err)
	}
	if updater.updates != 1 {
		t.Fatalf("ожидалась одна смена пароля, получили %d", updater.updates)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("NewPassword123")); err != nil {
		t.Fatalf("новый пароль должен храниться как bcrypt хэш")
	}

	// Код одноразовый: повторный сброс с ним не проходит.
	if err := service.Reset(ctx, in); !errors.Is(err, apperror.ErrOTPInvalid) {
		t.Fatalf("повторное использование кода должно вернуть ErrOTPInvalid, получили %v", err)
	}
	if updater.updates != 1 {
		t.Fatalf("повторный сброс не должен менять пароль, получили %d смен", updater.updates)
	}
}
