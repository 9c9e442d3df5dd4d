package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// Client — HTTP-клиент коллектора: справочник пользователей и приём метрик.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FindActorsByNickname ищет пользователей по точному совпадению никнейма.
// Ноль результатов — не ошибка.
func (c *Client) FindActorsByNickname(ctx context.Context, nickname string) ([]domain.Actor, error) {
	u := fmt.Sprintf("%s/users/?nickname=%s", c.baseURL, url.QueryEscape(nickname))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("user lookup: HTTP %d", resp.StatusCode)
	}

	var actors []domain.Actor
	if err := json.NewDecoder(resp.Body).Decode(&actors); err != nil {
		return nil, fmt.Errorf("user lookup: decode: %w", err)
	}
	return actors, nil
}

// CreateActor регистрирует нового пользователя в справочнике.
func (c *Client) CreateActor(ctx context.Context, actor domain.Actor) (*domain.Actor, error) {
	body, err := json.Marshal(actor)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user create: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("user create: HTTP %d", resp.StatusCode)
	}

	var created domain.Actor
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("user create: decode: %w", err)
	}
	return &created, nil
}

// SubmitMetric отправляет запись метрики в коллектор.
// Trace-ID прокидывается в заголовке — по нему событие ищется в логах обеих сторон.
func (c *Client) SubmitMetric(ctx context.Context, m domain.MetricIn, traceID string) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/metrics/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("metric submit: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("metric submit: HTTP %d", resp.StatusCode)
	}
	return nil
}
