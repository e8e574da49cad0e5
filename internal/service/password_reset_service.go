package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/users-backend/internal/models"
	"github.com/ignatzorin/users-backend/internal/pkg/apperror"
	"github.com/ignatzorin/users-backend/internal/validation"
)

// FormatChecker — внешний OTP-сервис, судящий о корректности формата кода.
type FormatChecker interface {
	CheckFormat(ctx context.Context, code string) (bool, error)
}

// OTPVerifier проверяет принадлежность и срок жизни кода.
type OTPVerifier interface {
	Verify(ctx context.Context, userID int64, email, code string) (bool, error)
}

// PasswordUpdater — часть пользовательского репозитория для смены пароля.
type PasswordUpdater interface {
	GetByIDAndEmail(ctx context.Context, id int64, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error)
}

// PasswordResetService последовательно проходит цепочку проверок сброса:
// формат кода → существование пользователя → проверка кода → смена пароля.
// Каждый шаг обрывает цепочку при отказе; до последнего шага ни одной
// мутации пользователя не происходит, поэтому откатывать нечего.
type PasswordResetService struct {
	gateway FormatChecker
	otps    OTPVerifier
	users   PasswordUpdater
}

// NewPasswordResetService создаёт оркестратор сброса пароля.
func NewPasswordResetService(gateway FormatChecker, otps OTPVerifier, users PasswordUpdater) *PasswordResetService {
	return &PasswordResetService{
		gateway: gateway,
		otps:    otps,
		users:   users,
	}
}

// ResetInput содержит данные запроса на сброс пароля.
type ResetInput struct {
	UserID      int64
	Email       string
	OTP         string
	NewPassword string
}

// Reset выполняет сброс пароля по одноразовому коду.
func (s *PasswordResetService) Reset(ctx context.Context, in ResetInput) error {
	if in.UserID <= 0 {
		return apperror.New(apperror.ErrCodeValidation, "идентификатор пользователя обязателен")
	}
	if strings.TrimSpace(in.Email) == "" {
		return apperror.New(apperror.ErrCodeValidation, "email обязателен")
	}
	if strings.TrimSpace(in.OTP) == "" {
		return apperror.New(apperror.ErrCodeValidation, "одноразовый код обязателен")
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	ok, err := s.gateway.CheckFormat(ctx, in.OTP)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить формат кода")
	}
	if !ok {
		return apperror.New(apperror.ErrCodeValidation, "некорректный формат одноразового кода")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.users.GetByIDAndEmail(ctx, in.UserID, email)
	if err != nil {
		return err
	}

	verified, err := s.otps.Verify(ctx, user.ID, user.Email, in.OTP)
	if err != nil {
		return err
	}
	if !verified {
		return apperror.ErrOTPInvalid
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	updated, err := s.users.UpdatePassword(ctx, user.ID, string(passHash))
	if err != nil {
		return err
	}
	if !updated {
		return apperror.New(apperror.ErrCodeBadRequest, "не удалось обновить пароль")
	}

	return nil
}
