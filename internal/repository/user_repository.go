package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/users-backend/internal/models"
	"github.com/ignatzorin/users-backend/internal/pkg/apperror"
)

const pqUniqueViolation = "23505"

// UserRepository отвечает за работу с таблицей users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя в статусе pending_validation.
// Уникальность email среди неудалённых строк гарантирует частичный
// уникальный индекс: его нарушение отображается в ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, account_status, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Phone,
	).Scan(&user.ID, &user.AccountStatus, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrDuplicateEmail
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: create")
	}

	return nil
}

// GetByID возвращает неудалённого пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, name, email, password_hash, phone, account_status, created_at, updated_at
		FROM users
		WHERE id = $1 AND account_status <> 'deleted'
	`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: get by id")
	}

	return &user, nil
}

// GetByEmail возвращает неудалённого пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, name, email, password_hash, phone, account_status, created_at, updated_at
		FROM users
		WHERE email = $1 AND account_status <> 'deleted'
	`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: get by email")
	}

	return &user, nil
}

// GetByIDAndEmail возвращает пользователя по паре (id, email).
// Используется только сценарием сброса пароля: проверка OTP привязывается
// к конкретному аккаунту, а не к id или email по отдельности.
func (r *UserRepository) GetByIDAndEmail(ctx context.Context, id int64, email string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, name, email, password_hash, phone, account_status, created_at, updated_at
		FROM users
		WHERE id = $1 AND email = $2 AND account_status <> 'deleted'
	`
	if err := r.db.GetContext(ctx, &user, query, id, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: get by id and email")
	}

	return &user, nil
}

// List возвращает страницу неудалённых пользователей и их общее количество.
// Сортировка — по дате создания, новые первыми.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM users WHERE account_status <> 'deleted'`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: count")
	}

	query := `
		SELECT id, name, email, password_hash, phone, account_status, created_at, updated_at
		FROM users
		WHERE account_status <> 'deleted'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: list")
	}

	return users, total, nil
}

// Update применяет частичное обновление и возвращает обновлённую строку.
// SET-список собирается из заполненных полей патча, значения всегда
// передаются параметрами.
func (r *UserRepository) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	// Пустой патч ничего не меняет: возвращаем текущее состояние.
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	setParts := []string{}
	args := []interface{}{}
	argNum := 1

	if patch.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", argNum))
		args = append(args, *patch.Name)
		argNum++
	}
	if patch.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", argNum))
		args = append(args, *patch.Email)
		argNum++
	}
	if patch.Phone != nil {
		setParts = append(setParts, fmt.Sprintf("phone = $%d", argNum))
		// Пустой телефон пишется как NULL, а не как пустая строка.
		if *patch.Phone == "" {
			args = append(args, nil)
		} else {
			args = append(args, *patch.Phone)
		}
		argNum++
	}

	setParts = append(setParts, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d AND account_status <> 'deleted'
		RETURNING id, name, email, password_hash, phone, account_status, created_at, updated_at
	`, strings.Join(setParts, ", "), argNum)
	args = append(args, id)

	var user models.User
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: update")
	}

	return &user, nil
}

// UpdatePassword сохраняет новый хэш пароля.
// Возвращает false, если пользователь не найден или удалён.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error) {
	query := `
		UPDATE users
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2 AND account_status <> 'deleted'
	`

	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: update password")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: update password rows affected")
	}

	return rowsAffected > 0, nil
}

// SoftDelete помечает пользователя удалённым.
// Повторное удаление не находит строку и возвращает ErrUserNotFound.
func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET account_status = 'deleted', updated_at = NOW()
		WHERE id = $1 AND account_status <> 'deleted'
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: soft delete")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: soft delete rows affected")
	}

	if rowsAffected == 0 {
		return apperror.ErrUserNotFound
	}

	return nil
}

// VerifyAccount переводит аккаунт из pending_validation в verified.
// Возвращает false, если аккаунт уже подтверждён или удалён.
func (r *UserRepository) VerifyAccount(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE users
		SET account_status = 'verified', updated_at = NOW()
		WHERE id = $1 AND account_status = 'pending_validation'
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: verify account")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperror.Wrap(err, apperror.ErrCodeDatabase, "user repository: verify account rows affected")
	}

	return rowsAffected > 0, nil
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникального индекса.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
