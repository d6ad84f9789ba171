package web

import (
	htmlpkg "html"
	"strconv"
	"strings"

	"github.com/sashakosti/Go_Race_Bot/internal/storage"
)

const pageHead = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>`

// IndexPage generates the navigation page
func IndexPage() string {
	var b strings.Builder
	b.WriteString(pageHead)
	b.WriteString(`Race results</title></head><body><h1>Race results</h1><ul>`)
	b.WriteString(`<li><a href="/leaderboard">Leaderboard</a></li>`)
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

// LeaderboardPage generates HTML for the leaderboard table, rows already sorted
func LeaderboardPage(rows []storage.LeaderboardRow) string {
	var b strings.Builder
	b.WriteString(pageHead)
	b.WriteString(`Leaderboard</title></head><body><h1>🏆 Leaderboard</h1>`)
	b.WriteString(`<table class="leaderboard"><thead><tr><th>#</th><th>Player</th><th>Points</th><th>Races</th><th>Avg pos</th></tr></thead><tbody>`)
	for i, r := range rows {
		b.WriteString(`<tr><td>`)
		b.WriteString(strconv.Itoa(i + 1))
		for _, c := range []string{r.Player, r.Points, r.Races, r.AvgPosition} {
			b.WriteString(`</td><td>`)
			b.WriteString(htmlpkg.EscapeString(c))
		}
		b.WriteString(`</td></tr>`)
	}
	b.WriteString(`</tbody></table><p><a href="/">Back</a></p></body></html>`)
	return b.String()
}
