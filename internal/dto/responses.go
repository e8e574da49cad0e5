package dto

import (
	"time"

	"github.com/ignatzorin/users-backend/internal/models"
)

// UserResponse — публичное представление пользователя, без хэша пароля.
type UserResponse struct {
	ID            int64                `json:"id"`
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	Phone         *string              `json:"phone,omitempty"`
	AccountStatus models.AccountStatus `json:"account_status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// NewUserResponse собирает публичное представление из модели.
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		AccountStatus: u.AccountStatus,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserWithCredentialsResponse — представление для доверенного auth-сервиса,
// включает хэш пароля. Отдаётся только с маршрута, закрытого сервисным токеном.
type UserWithCredentialsResponse struct {
	UserResponse
	PasswordHash string `json:"password_hash"`
}

// NewUserWithCredentialsResponse собирает представление с хэшем пароля.
func NewUserWithCredentialsResponse(u *models.User) UserWithCredentialsResponse {
	return UserWithCredentialsResponse{
		UserResponse: NewUserResponse(u),
		PasswordHash: u.PasswordHash,
	}
}

// UserPageResponse — страница пользователей с метаданными пагинации.
type UserPageResponse struct {
	TotalItems  int            `json:"totalItems"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	PageSize    int            `json:"pageSize"`
	Users       []UserResponse `json:"users"`
}

// AccountStatusResponse — тело ответа PATCH /users/:id/account_status.
type AccountStatusResponse struct {
	AccountStatus models.AccountStatus `json:"account_status"`
}
