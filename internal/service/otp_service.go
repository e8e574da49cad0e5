package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/users-backend/internal/logger"
	"github.com/ignatzorin/users-backend/internal/models"
	"github.com/ignatzorin/users-backend/internal/pkg/apperror"
)

// OTPRepository описывает зависимости OTPService от слоя хранилища.
type OTPRepository interface {
	Insert(ctx context.Context, userID int64, code string) (*models.OTP, error)
	GetActive(ctx context.Context, userID int64) (*models.OTP, error)
	GetByUserAndCode(ctx context.Context, userID int64, code string) (*models.OTP, error)
	SetStatus(ctx context.Context, id int64, status models.OTPStatus) error
	ExpireOlderThan(ctx context.Context, userID int64, cutoff time.Time) error
}

// UserFinder — часть пользовательского репозитория, нужная OTP сценариям.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDAndEmail(ctx context.Context, id int64, email string) (*models.User, error)
}

// PasscodeGenerator — внешний OTP-сервис, выдающий значения кодов.
type PasscodeGenerator interface {
	GeneratePasscode(ctx context.Context) (string, error)
}

// OTPService реализует жизненный цикл одноразового кода:
// не более одного активного кода на пользователя, TTL 5 минут,
// терминальные статусы verified и expired.
type OTPService struct {
	otps         OTPRepository
	users        UserFinder
	gateway      PasscodeGenerator
	resetURLBase string
}

// NewOTPService создаёт OTP сервис.
func NewOTPService(otps OTPRepository, users UserFinder, gateway PasscodeGenerator, resetURLBase string) *OTPService {
	return &OTPService{
		otps:         otps,
		users:        users,
		gateway:      gateway,
		resetURLBase: resetURLBase,
	}
}

// OTPRequestResult — созданный код и ссылка на форму сброса пароля.
type OTPRequestResult struct {
	OTP *models.OTP `json:"otp"`
	URL string      `json:"url"`
}

// Request выдаёт новый одноразовый код для пользователя с данным email.
// Перед проверкой активного кода просроченные коды принудительно
// помечаются expired, чтобы инвариант "один активный код" не блокировал
// пользователя навсегда.
func (s *OTPService) Request(ctx context.Context, email string) (*OTPRequestResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "email обязателен")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// Eager sweep: всё старше TTL переходит в expired до проверки конфликта.
	cutoff := time.Now().Add(-models.OTPTTL)
	if err := s.otps.ExpireOlderThan(ctx, user.ID, cutoff); err != nil {
		return nil, err
	}

	if _, err := s.otps.GetActive(ctx, user.ID); err == nil {
		return nil, apperror.ErrActiveOTP
	} else if !errors.Is(err, apperror.ErrOTPNotFound) {
		return nil, err
	}

	code, err := s.gateway.GeneratePasscode(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить код у OTP-сервиса")
	}

	otp, err := s.otps.Insert(ctx, user.ID, code)
	if err != nil {
		return nil, err
	}

	if logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": user.ID,
			"otp_id":  otp.ID,
		}).Info("otp service: выдан новый одноразовый код")
	}

	return &OTPRequestResult{
		OTP: otp,
		URL: s.resetURL(user),
	}, nil
}

// Verify проверяет код для пары (id, email) и возвращает итог проверки.
// Ложь означает: пользователь не найден, код не найден или код просрочен.
// Просроченный код помечается expired как побочный эффект проверки.
func (s *OTPService) Verify(ctx context.Context, userID int64, email, code string) (bool, error) {
	user, err := s.users.GetByIDAndEmail(ctx, userID, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	otp, err := s.otps.GetByUserAndCode(ctx, user.ID, code)
	if err != nil {
		if errors.Is(err, apperror.ErrOTPNotFound) {
			return false, nil
		}
		return false, err
	}

	if otp.Expired(time.Now()) {
		if err := s.otps.SetStatus(ctx, otp.ID, models.OTPStatusExpired); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.otps.SetStatus(ctx, otp.ID, models.OTPStatusVerified); err != nil {
		return false, err
	}

	return true, nil
}

// resetURL собирает ссылку на форму сброса пароля для письма пользователю.
func (s *OTPService) resetURL(user *models.User) string {
	return fmt.Sprintf("%s?user_id=%d&email=%s", s.resetURLBase, user.ID, url.QueryEscape(user.Email))
}
