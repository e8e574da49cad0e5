package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/users-backend/internal/models"
	"github.com/ignatzorin/users-backend/internal/pkg/apperror"
)

// OTPRepository отвечает за работу с таблицей otps.
// Правила жизненного цикла кода (TTL, единственный активный код)
// применяет OTPService, репозиторий только ходит в базу.
type OTPRepository struct {
	db *sqlx.DB
}

// NewOTPRepository создаёт экземпляр репозитория.
func NewOTPRepository(db *sqlx.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Insert сохраняет новый код в статусе created.
func (r *OTPRepository) Insert(ctx context.Context, userID int64, code string) (*models.OTP, error) {
	var otp models.OTP
	query := `
		INSERT INTO otps (user_id, code)
		VALUES ($1, $2)
		RETURNING id, user_id, code, status, created_at
	`

	if err := r.db.GetContext(ctx, &otp, query, userID, code); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "otp repository: insert")
	}

	return &otp, nil
}

// GetActive возвращает последний код пользователя в статусе created.
func (r *OTPRepository) GetActive(ctx context.Context, userID int64) (*models.OTP, error) {
	var otp models.OTP
	query := `
		SELECT id, user_id, code, status, created_at
		FROM otps
		WHERE user_id = $1 AND status = 'created'
		ORDER BY created_at DESC
		LIMIT 1
	`

	if err := r.db.GetContext(ctx, &otp, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrOTPNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "otp repository: get active")
	}

	return &otp, nil
}

// GetByUserAndCode возвращает код пользователя с данным значением в статусе created.
func (r *OTPRepository) GetByUserAndCode(ctx context.Context, userID int64, code string) (*models.OTP, error) {
	var otp models.OTP
	query := `
		SELECT id, user_id, code, status, created_at
		FROM otps
		WHERE user_id = $1 AND code = $2 AND status = 'created'
		ORDER BY created_at DESC
		LIMIT 1
	`

	if err := r.db.GetContext(ctx, &otp, query, userID, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrOTPNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabase, "otp repository: get by user and code")
	}

	return &otp, nil
}

// SetStatus переводит код в новый статус.
func (r *OTPRepository) SetStatus(ctx context.Context, id int64, status models.OTPStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE otps SET status = $1 WHERE id = $2`, status, id); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabase, "otp repository: set status")
	}

	return nil
}

// ExpireOlderThan помечает просроченными все активные коды пользователя,
// созданные раньше cutoff.
func (r *OTPRepository) ExpireOlderThan(ctx context.Context, userID int64, cutoff time.Time) error {
	query := `
		UPDATE otps
		SET status = 'expired'
		WHERE user_id = $1 AND status = 'created' AND created_at < $2
	`

	if _, err := r.db.ExecContext(ctx, query, userID, cutoff); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabase, "otp repository: expire older than")
	}

	return nil
}
