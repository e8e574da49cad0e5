package models

import (
	"time"
)

// AccountStatus описывает статус жизненного цикла аккаунта.
type AccountStatus string

const (
	// AccountStatusPending — аккаунт создан, но ещё не подтверждён.
	AccountStatusPending AccountStatus = "pending_validation"
	// AccountStatusVerified — аккаунт подтверждён.
	AccountStatusVerified AccountStatus = "verified"
	// AccountStatusDeleted — аккаунт удалён (soft delete), строка остаётся в базе.
	AccountStatusDeleted AccountStatus = "deleted"
)

// User описывает сущность пользователя сервиса.
type User struct {
	ID            int64         `db:"id" json:"id"`
	Name          string        `db:"name" json:"name"`
	Email         string        `db:"email" json:"email"`
	PasswordHash  string        `db:"password_hash" json:"-"`
	Phone         *string       `db:"phone" json:"phone,omitempty"`
	AccountStatus AccountStatus `db:"account_status" json:"account_status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// UserPatch описывает частичное обновление пользователя.
// nil-поле означает "поле не трогаем": из патча собирается
// параметризованный UPDATE без конкатенации значений.
type UserPatch struct {
	Name  *string
	Email *string
	Phone *string
}

// IsEmpty возвращает true, если патч не содержит ни одного поля.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil
}
