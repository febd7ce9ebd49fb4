package hotelservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с HotelService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента HotelService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetHotelSettings получает часовой пояс и тариф отмены отеля
func (c *Client) GetHotelSettings(ctx context.Context, hotelID int64) (*HotelSettings, error) {
	url := fmt.Sprintf("%s/internal/hotels/%d/settings", c.baseURL, hotelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrHotelNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var settings HotelSettings
	if err := json.NewDecoder(resp.Body).Decode(&settings); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &settings, nil
}

// GetHotelSettingsWithGracefulDegradation получает настройки отеля с graceful degradation
// Отсутствие отеля пробрасывается как есть, любые другие сбои превращаются в ErrServiceDegraded
func (c *Client) GetHotelSettingsWithGracefulDegradation(ctx context.Context, hotelID int64) (*HotelSettings, error) {
	settings, err := c.GetHotelSettings(ctx, hotelID)
	if err != nil {
		if errors.Is(err, ErrHotelNotFound) {
			c.log.Warn("HotelService: hotel id=%d not found", hotelID)
			return nil, err
		}

		c.log.Error("HotelService unavailable, applying graceful degradation for hotel_id=%d: %v", hotelID, err)
		return nil, fmt.Errorf("%w: hotel_id=%d, error=%v", ErrServiceDegraded, hotelID, err)
	}

	return settings, nil
}
