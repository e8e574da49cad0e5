package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/users-backend/internal/models"
	"github.com/ignatzorin/users-backend/internal/pkg/apperror"
	"github.com/ignatzorin/users-backend/internal/validation"
)

// Границы пагинации: размер страницы зажимается в [1, MaxPageSize].
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// UserRepository описывает зависимости UserService от слоя хранилища.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, int, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error)
	SoftDelete(ctx context.Context, id int64) error
	VerifyAccount(ctx context.Context, id int64) (bool, error)
}

// UserService инкапсулирует бизнес-логику управления пользователями.
type UserService struct {
	repo UserRepository
}

// NewUserService создаёт сервис пользователей.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// UserPage возвращает страницу пользователей с метаданными пагинации.
type UserPage struct {
	TotalItems  int
	TotalPages  int
	CurrentPage int
	PageSize    int
	Users       []models.User
}

// Register создаёт нового пользователя в статусе pending_validation.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	// Предварительная проверка email — только быстрый ответ пользователю.
	// Настоящую гонку двух регистраций решает уникальный индекс в базе.
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperror.ErrDuplicateEmail
	} else if !errors.Is(err, apperror.ErrUserNotFound) {
		return nil, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(passHash),
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		user.Phone = &phone
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail возвращает пользователя по email вместе с хэшем пароля.
// Единственный потребитель — внешний auth-сервис, маршрут закрыт сервисным токеном.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List возвращает страницу пользователей.
// Номер страницы и размер зажимаются в допустимые границы.
func (s *UserService) List(ctx context.Context, page, pageSize int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	offset := (page - 1) * pageSize
	users, total, err := s.repo.List(ctx, pageSize, offset)
	if err != nil {
		return nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize

	return &UserPage{
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		PageSize:    pageSize,
		Users:       users,
	}, nil
}

// Update применяет частичное обновление пользователя.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if patch.Name != nil {
		if err := validation.ValidateName(*patch.Name); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if patch.Phone != nil {
		trimmed := strings.TrimSpace(*patch.Phone)
		if trimmed != "" {
			if err := validation.ValidatePhone(trimmed); err != nil {
				return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
			}
		}
		// Пустая строка означает "очистить телефон": в базе станет NULL.
		patch.Phone = &trimmed
	}
	if patch.Email != nil {
		if err := validation.ValidateEmail(*patch.Email); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		normalized := strings.ToLower(strings.TrimSpace(*patch.Email))
		patch.Email = &normalized

		// Конфликт — любая другая неудалённая строка с этим email.
		if existing, err := s.repo.GetByEmail(ctx, normalized); err == nil && existing.ID != id {
			return nil, apperror.ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, apperror.ErrUserNotFound) {
			return nil, err
		}
	}

	return s.repo.Update(ctx, id, patch)
}

// Delete помечает пользователя удалённым.
// Удаление уже удалённого пользователя возвращает ErrUserNotFound, а не второй успех.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// VerifyAccount переводит аккаунт из pending_validation в verified
// и возвращает новый статус. Повторное подтверждение — ошибка.
func (s *UserService) VerifyAccount(ctx context.Context, id int64) (models.AccountStatus, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if user.AccountStatus != models.AccountStatusPending {
		return "", apperror.New(apperror.ErrCodeBadRequest, "аккаунт уже подтверждён или удалён")
	}

	ok, err := s.repo.VerifyAccount(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		// Статус успел измениться между чтением и обновлением.
		return "", apperror.New(apperror.ErrCodeBadRequest, "аккаунт уже подтверждён или удалён")
	}

	return models.AccountStatusVerified, nil
}
