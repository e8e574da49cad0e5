package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ignatzorin/users-backend/internal/models"
	"github.com/ignatzorin/users-backend/internal/pkg/apperror"
)

// mockOTPRepository реализует OTPRepository поверх карты в памяти.
type mockOTPRepository struct {
	otps   map[int64]*models.OTP
	nextID int64
}

func newMockOTPRepository() *mockOTPRepository {
	return &mockOTPRepository{
		otps:   make(map[int64]*models.OTP),
		nextID: 1,
	}
}

func (m *mockOTPRepository) Insert(ctx context.Context, userID int64, code string) (*models.OTP, error) {
	otp := &models.OTP{
		ID:        m.nextID,
		UserID:    userID,
		Code:      code,
		Status:    models.OTPStatusCreated,
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.otps[otp.ID] = otp
	return otp, nil
}

func (m *mockOTPRepository) GetActive(ctx context.Context, userID int64) (*models.OTP, error) {
	for _, otp := range m.otps {
		if otp.UserID == userID && otp.Status == models.OTPStatusCreated {
			return otp, nil
		}
	}
	return nil, apperror.ErrOTPNotFound
}

func (m *mockOTPRepository) GetByUserAndCode(ctx context.Context, userID int64, code string) (*models.OTP, error) {
	for _, otp := range m.otps {
		if otp.UserID == userID && otp.Code == code && otp.Status == models.OTPStatusCreated {
			return otp, nil
		}
	}
	return nil, apperror.ErrOTPNotFound
}

func (m *mockOTPRepository) SetStatus(ctx context.Context, id int64, status models.OTPStatus) error {
	if otp, ok := m.otps[id]; ok {
		otp.Status = status
	}
	return nil
}

func (m *mockOTPRepository) ExpireOlderThan(ctx context.Context, userID int64, cutoff time.Time) error {
	for _, otp := range m.otps {
		if otp.UserID == userID && otp.Status == models.OTPStatusCreated && otp.CreatedAt.Before(cutoff) {
			otp.Status = models.OTPStatusExpired
		}
	}
	return nil
}

// mockUserFinder отдаёт заранее заведённых пользователей.
type mockUserFinder struct {
	users map[string]*models.User
}

func (m *mockUserFinder) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockUserFinder) GetByIDAndEmail(ctx context.Context, id int64, email string) (*models.User, error) {
	if u, ok := m.users[email]; ok && u.ID == id {
		return u, nil
	}
	return nil, apperror.ErrUserNotFound
}

// mockGateway выдаёт фиксированный код.
type mockGateway struct {
	code string
	err  error
}

func (m *mockGateway) GeneratePasscode(ctx context.Context) (string, error) {
	return m.code, m.err
}

func newOTPFixture() (*OTPService, *mockOTPRepository, *models.User) {
	user := &models.User{ID: 7, Email: "a@b.com", AccountStatus: models.AccountStatusVerified}
	otps := newMockOTPRepository()
	users := &mockUserFinder{users: map[string]*models.User{user.Email: user}}
	service := NewOTPService(otps, users, &mockGateway{code: "482913"}, "http://localhost:3000/reset-password")
	return service, otps, user
}

func TestOTPService_RequestConflict(t *testing.T) {
	service, _, user := newOTPFixture()
	ctx := context.Background()

	result, err := service.Request(ctx, user.Email)
	if err != nil {
		t.Fatalf("первый запрос кода должен пройти: %v", err)
	}
	if result.OTP.Code != "482913" {
		t.Fatalf("код должен прийти из gateway, получили %q", result.OTP.Code)
	}
	if !strings.Contains(result.URL, "user_id=7") {
		t.Fatalf("ссылка должна содержать user_id, получили %q", result.URL)
	}

	// Пока код активен, второй выдать нельзя.
	if _, err := service.Request(ctx, user.Email); !errors.Is(err, apperror.ErrActiveOTP) {
		t.Fatalf("ожидался ErrActiveOTP, получили %v", err)
	}
}

func TestOTPService_RequestUnknownEmail(t *testing.T) {
	service, _, _ := newOTPFixture()

	if _, err := service.Request(context.Background(), "nobody@example.com"); !errors.Is(err, apperror.ErrUserNotFound) {
		t.Fatalf("ожидался ErrUserNotFound, получили %v", err)
	}
}

func TestOTPService_RequestAfterExpiry(t *testing.T) {
	service, otps, user := newOTPFixture()
	ctx := context.Background()

	if _, err := service.Request(ctx, user.Email); err != nil {
		t.Fatalf("первый запрос кода должен пройти: %v", err)
	}

	// Состариваем активный код: sweep должен убрать его с дороги.
	for _, otp := range otps.otps {
		otp.CreatedAt = time.Now().Add(-10 * time.Minute)
	}

	if _, err := service.Request(ctx, user.Email); err != nil {
		t.Fatalf("после протухания старого кода новый должен выдаваться: %v", err)
	}

	expired := 0
	for _, otp := range otps.otps {
		if otp.Status == models.OTPStatusExpired {
			expired++
		}
	}
	if expired != 1 {
		t.Fatalf("старый код должен быть помечен expired, получили %d", expired)
	}
}

func TestOTPService_VerifyLifecycle(t *testing.T) {
	service, otps, user := newOTPFixture()
	ctx := context.Background()

	result, err := service.Request(ctx, user.Email)
	if err != nil {
		t.Fatalf("запрос кода должен пройти: %v", err)
	}

	// Чужая пара (id, email) не проходит.
	if ok, err := service.Verify(ctx, 999, user.Email, result.OTP.Code); err != nil || ok {
		t.Fatalf("проверка с чужим id должна вернуть false, получили ok=%v err=%v", ok, err)
	}

	// Неверный код не проходит.
	if ok, err := service.Verify(ctx, user.ID, user.Email, "000000"); err != nil || ok {
		t.Fatalf("проверка с неверным кодом должна вернуть false, получили ok=%v err=%v", ok, err)
	}

	// Верный код проходит ровно один раз.
	if ok, err := service.Verify(ctx, user.ID, user.Email, result.OTP.Code); err != nil || !ok {
		t.Fatalf("проверка верного кода должна пройти, получили ok=%v err=%v", ok, err)
	}
	if otps.otps[result.OTP.ID].Status != models.OTPStatusVerified {
		t.Fatalf("использованный код должен быть verified")
	}
	if ok, _ := service.Verify(ctx, user.ID, user.Email, result.OTP.Code); ok {
		t.Fatalf("использованный код не должен проходить повторно")
	}
}

func TestOTPService_VerifyExpiredCode(t *testing.T) {
	service, otps, user := newOTPFixture()
	ctx := context.Background()

	result, err := service.Request(ctx, user.Email)
	if err != nil {
		t.Fatalf("запрос кода должен пройти: %v", err)
	}

	// Код старше 5 минут не проходит даже при совпадении значения
	// и как побочный эффект помечается expired.
	otps.otps[result.OTP.ID].CreatedAt = time.Now().Add(-6 * time.Minute)

	if ok, err := service.Verify(ctx, user.ID, user.Email, result.OTP.Code); err != nil || ok {
		t.Fatalf("просроченный код не должен проходить, получили ok=%v err=%v", ok, err)
	}
	if otps.otps[result.OTP.ID].Status != models.OTPStatusExpired {
		t.Fatalf("просроченный код должен быть помечен expired")
	}
}
