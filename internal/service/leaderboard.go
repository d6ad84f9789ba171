package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sashakosti/Go_Race_Bot/internal/storage"
)

// LeaderboardTitle - первая строка сообщения с рейтингом (Markdown).
const LeaderboardTitle = "🏆 *Leaderboard* 🏆"

// ParseLeaderboard отбрасывает ровно первую строку (заголовок) и сортирует остальное
// по возрастанию очков. Равные остаются в исходном порядке, пустая ячейка считается нулем,
// нечисловые очки уходят в конец.
func ParseLeaderboard(raw [][]string) []storage.LeaderboardRow {
	if len(raw) <= 1 {
		return []storage.LeaderboardRow{}
	}

	rows := make([]storage.LeaderboardRow, 0, len(raw)-1)
	for _, r := range raw[1:] {
		row := storage.LeaderboardRow{
			Player:      cell(r, 0),
			Points:      cell(r, 1),
			Races:       cell(r, 2),
			AvgPosition: cell(r, 3),
		}
		row.PointsValue = parsePoints(row.Points)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].PointsValue, rows[j].PointsValue
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a < b
	})
	return rows
}

// FormatLeaderboard - текст для чата.
func FormatLeaderboard(rows []storage.LeaderboardRow) string {
	var b strings.Builder
	b.WriteString(LeaderboardTitle)
	b.WriteString("\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "• %s — %s pts (races: %s, avg pos: %s)\n",
			EscapeMarkdown(r.Player), EscapeMarkdown(r.Points), EscapeMarkdown(r.Races), EscapeMarkdown(r.AvgPosition))
	}
	return b.String()
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown экранирует символы разметки Telegram Markdown, чтобы имена вроде
// max_power не ломали сообщение.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// parsePoints как Number() в таблице: пустая ячейка - 0, мусор - NaN.
func parsePoints(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
