package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/users-backend/internal/dto"
	"github.com/ignatzorin/users-backend/internal/http/response"
	"github.com/ignatzorin/users-backend/internal/models"
	"github.com/ignatzorin/users-backend/internal/service"
)

// UserHandler предоставляет HTTP слой для операций над пользователями.
type UserHandler struct {
	users *service.UserService
	reset *service.PasswordResetService
}

// NewUserHandler создаёт хэндлер.
func NewUserHandler(users *service.UserService, reset *service.PasswordResetService) *UserHandler {
	return &UserHandler{users: users, reset: reset}
}

// Register обрабатывает POST /users/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "пользователь зарегистрирован", dto.NewUserResponse(user))
}

// List обрабатывает GET /users?page&size.
func (h *UserHandler) List(c *gin.Context) {
	page, ok := parsePageParam(c, "page", 1)
	if !ok {
		return
	}
	size, ok := parsePageParam(c, "size", service.DefaultPageSize)
	if !ok {
		return
	}

	if page < 1 {
		response.BadRequest(c, "номер страницы должен быть не менее 1")
		return
	}
	if size < 1 || size > service.MaxPageSize {
		response.BadRequest(c, "размер страницы должен быть от 1 до 100")
		return
	}

	result, err := h.users.List(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	users := make([]dto.UserResponse, 0, len(result.Users))
	for i := range result.Users {
		users = append(users, dto.NewUserResponse(&result.Users[i]))
	}

	response.Success(c, "список пользователей", dto.UserPageResponse{
		TotalItems:  result.TotalItems,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
		PageSize:    result.PageSize,
		Users:       users,
	})
}

// GetByID обрабатывает GET /users/:id.
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "пользователь найден", dto.NewUserResponse(user))
}

// GetByEmail обрабатывает GET /users/email?value=…
// Ответ включает хэш пароля: маршрут закрыт сервисным токеном и
// предназначен только для внешнего auth-сервиса.
func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Query("value")
	if email == "" {
		response.BadRequest(c, "параметр value обязателен")
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "пользователь найден", dto.NewUserWithCredentialsResponse(user))
}

// Update обрабатывает PUT /users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, models.UserPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "пользователь обновлён", dto.NewUserResponse(user))
}

// Delete обрабатывает DELETE /users/:id (soft delete).
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "пользователь удалён", nil)
}

// ResetPassword обрабатывает PATCH /users/:id/password.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	err := h.reset.Reset(c.Request.Context(), service.ResetInput{
		UserID:      id,
		Email:       req.Email,
		OTP:         req.OTP,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "пароль обновлён", nil)
}

// VerifyAccount обрабатывает PATCH /users/:id/account_status.
func (h *UserHandler) VerifyAccount(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	status, err := h.users.VerifyAccount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "аккаунт подтверждён", dto.AccountStatusResponse{AccountStatus: status})
}

// parseIDParam извлекает идентификатор пользователя из пути.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "некорректный идентификатор пользователя")
		return 0, false
	}
	return id, true
}

// parsePageParam читает числовой query параметр пагинации.
func parsePageParam(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(c, "параметр "+key+" должен быть числом")
		return 0, false
	}
	return value, true
}
