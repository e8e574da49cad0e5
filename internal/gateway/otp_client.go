package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OTPClient ходит во внешний OTP-сервис за генерацией и проверкой формата
// одноразовых кодов. Никакой политики отказоустойчивости у этой зависимости
// нет: ошибка транспорта отдаётся вызывающему как есть.
type OTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOTPClient создаёт экземпляр клиента.
func NewOTPClient(baseURL string, timeout time.Duration) *OTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &OTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type generateResponse struct {
	OTP string `json:"otp"`
}

type validateRequest struct {
	OTP string `json:"otp"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// GeneratePasscode запрашивает у OTP-сервиса новый одноразовый код.
func (c *OTPClient) GeneratePasscode(ctx context.Context) (string, error) {
	var out generateResponse
	if err := c.post(ctx, "otp/generate", nil, &out); err != nil {
		return "", fmt.Errorf("otp gateway: generate %w", err)
	}

	if out.OTP == "" {
		return "", fmt.Errorf("otp gateway: сервис вернул пустой код")
	}

	return out.OTP, nil
}

// CheckFormat спрашивает у OTP-сервиса, корректен ли формат кода.
func (c *OTPClient) CheckFormat(ctx context.Context, code string) (bool, error) {
	var out validateResponse
	if err := c.post(ctx, "otp/validate", validateRequest{OTP: code}, &out); err != nil {
		return false, fmt.Errorf("otp gateway: validate %w", err)
	}

	return out.Valid, nil
}

// post выполняет POST запрос к OTP-сервису и декодирует JSON ответ.
func (c *OTPClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("baseURL не задан")
	}

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	url := c.baseURL
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	url += path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errorBody)
		return fmt.Errorf("код ответа %d: %v", resp.StatusCode, errorBody)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
