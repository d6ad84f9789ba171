package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ResponseError - web app ответил не "ok". Текст ответа и есть сообщение об ошибке.
type ResponseError struct {
	Body string
}

func (e *ResponseError) Error() string {
	if e.Body == "" {
		return "empty response"
	}
	return e.Body
}

// WebApp - клиент для web app поверх таблицы.
// Запросы не повторяются: каждый вызов - ровно один HTTP запрос с таймаутом.
type WebApp struct {
	endpoint string
	secret   string
	client   *http.Client
}

// NewWebApp - создание клиента
func NewWebApp(endpoint, secret string, timeout time.Duration) (*WebApp, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid web app url: %w", err)
	}
	return &WebApp{
		endpoint: endpoint,
		secret:   secret,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// fetchJSON - GET запрос с secret и action, ответ разбирается в out.
func (w *WebApp) fetchJSON(ctx context.Context, action string, out any) error {
	u, err := url.Parse(w.endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("secret", w.secret)
	q.Set("action", action)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", action, err)
	}
	return nil
}

// Players - список игроков
func (w *WebApp) Players(ctx context.Context) ([]string, error) {
	var raw []any
	if err := w.fetchJSON(ctx, "players", &raw); err != nil {
		return nil, err
	}
	players := make([]string, 0, len(raw))
	for _, v := range raw {
		players = append(players, cellString(v))
	}
	return players, nil
}

// Tracks - список трасс
func (w *WebApp) Tracks(ctx context.Context) ([]string, error) {
	var raw []any
	if err := w.fetchJSON(ctx, "tracks", &raw); err != nil {
		return nil, err
	}
	tracks := make([]string, 0, len(raw))
	for _, v := range raw {
		tracks = append(tracks, cellString(v))
	}
	return tracks, nil
}

// Leaderboard - сырые строки рейтинга вместе с заголовком
func (w *WebApp) Leaderboard(ctx context.Context) ([][]string, error) {
	var raw [][]any
	if err := w.fetchJSON(ctx, "leaderboard", &raw); err != nil {
		return nil, err
	}
	return toRows(raw), nil
}

type submitPayload struct {
	Secret string `json:"secret"`
	Race
}

// SubmitRace - POST с результатами. Успех только если тело ответа ровно "ok".
func (w *WebApp) SubmitRace(ctx context.Context, race Race) error {
	body, err := json.Marshal(submitPayload{Secret: w.secret, Race: race})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if string(text) != "ok" {
		return &ResponseError{Body: string(text)}
	}
	return nil
}
