package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/users-backend/internal/dto"
	"github.com/ignatzorin/users-backend/internal/http/response"
	"github.com/ignatzorin/users-backend/internal/service"
)

// OTPHandler предоставляет HTTP слой для выдачи одноразовых кодов.
type OTPHandler struct {
	otps *service.OTPService
}

// NewOTPHandler создаёт хэндлер.
func NewOTPHandler(otps *service.OTPService) *OTPHandler {
	return &OTPHandler{otps: otps}
}

// Request обрабатывает POST /auth/otp.
func (h *OTPHandler) Request(c *gin.Context) {
	var req dto.RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email обязателен")
		return
	}

	result, err := h.otps.Request(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "одноразовый код выдан", result)
}
