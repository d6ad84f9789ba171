package storage

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
)

// Store - хранилище игроков, трасс и результатов гонок.
type Store interface {
	Players(ctx context.Context) ([]string, error)
	Tracks(ctx context.Context) ([]string, error)
	// Leaderboard возвращает сырые строки, первая строка - заголовок.
	Leaderboard(ctx context.Context) ([][]string, error)
	// SubmitRace добавляет гонку. Повторный вызов сохранит вторую гонку.
	SubmitRace(ctx context.Context, race Race) error
}

// Position - место на финише в том виде, как его ввел пользователь.
// Не число хранится как NaN и уходит в JSON как null.
type Position float64

// ParsePosition не возвращает ошибок: все, что не число, становится NaN.
func ParsePosition(text string) Position {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Position(math.NaN())
	}
	return Position(v)
}

func (p Position) IsNaN() bool {
	return math.IsNaN(float64(p))
}

func (p Position) String() string {
	if p.IsNaN() {
		return "NaN"
	}
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

func (p Position) MarshalJSON() ([]byte, error) {
	if p.IsNaN() || math.IsInf(float64(p), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}

// Race - результаты одной гонки. Positions[i] относится к Players[i].
type Race struct {
	Date      string     `json:"date"`
	Track     string     `json:"track"`
	Players   []string   `json:"players"`
	Positions []Position `json:"positions"`
}

// LeaderboardRow - строка рейтинга.
type LeaderboardRow struct {
	Player      string
	Points      string
	Races       string
	AvgPosition string
	// PointsValue - Points числом, NaN если не парсится.
	PointsValue float64
}

// result - место i-го игрока для записи в хранилище: nil, если места нет
// или оно не конечное число (так же, как в MarshalJSON).
func (r Race) result(i int) *float64 {
	if i >= len(r.Positions) || r.Positions[i].IsNaN() || math.IsInf(float64(r.Positions[i]), 0) {
		return nil
	}
	v := float64(r.Positions[i])
	return &v
}

// cellString приводит ячейку (JSON или Sheets) к строке.
func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	case json.Number:
		return c.String()
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func toRows(raw [][]any) [][]string {
	rows := make([][]string, 0, len(raw))
	for _, r := range raw {
		row := make([]string, len(r))
		for i, c := range r {
			row[i] = cellString(c)
		}
		rows = append(rows, row)
	}
	return rows
}

func toColumn(raw [][]any) []string {
	values := make([]string, 0, len(raw))
	for _, r := range raw {
		if len(r) == 0 {
			continue
		}
		if s := cellString(r[0]); s != "" {
			values = append(values, s)
		}
	}
	return values
}
