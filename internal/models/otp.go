package models

import (
	"time"
)

// OTPStatus описывает состояние одноразового кода.
type OTPStatus string

const (
	// OTPStatusCreated — код выдан и ещё не использован.
	OTPStatusCreated OTPStatus = "created"
	// OTPStatusVerified — код успешно использован. Терминальное состояние.
	OTPStatusVerified OTPStatus = "verified"
	// OTPStatusExpired — код просрочен. Терминальное состояние.
	OTPStatusExpired OTPStatus = "expired"
)

// OTPTTL — время жизни одноразового кода с момента создания.
const OTPTTL = 5 * time.Minute

// OTP описывает одноразовый код для сброса пароля.
// Значение кода генерирует внешний OTP-сервис, мы его только храним.
type OTP struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Code      string    `db:"code" json:"code"`
	Status    OTPStatus `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired возвращает true, если код старше OTPTTL на момент now.
func (o *OTP) Expired(now time.Time) bool {
	return now.Sub(o.CreatedAt) > OTPTTL
}
