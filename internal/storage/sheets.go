package storage

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	playersRange     = "Players!A2:A"
	tracksRange      = "Tracks!A2:A"
	leaderboardRange = "Leaderboard!A1:D"
	racesRange       = "Races!A:D"
)

// Sheets - хранилище напрямую в Google Sheets через сервисный аккаунт.
// Гонка пишется строками [дата, трасса, игрок, место], по одной на игрока.
type Sheets struct {
	srv           *sheets.Service
	spreadsheetID string
	timeout       time.Duration
}

// NewSheets - клиент Sheets API с ключом сервисного аккаунта из credentialsFile.
func NewSheets(ctx context.Context, spreadsheetID, credentialsFile string, timeout time.Duration) (*Sheets, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &Sheets{srv: srv, spreadsheetID: spreadsheetID, timeout: timeout}, nil
}

func (s *Sheets) get(ctx context.Context, rng string) ([][]any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (s *Sheets) Players(ctx context.Context) ([]string, error) {
	values, err := s.get(ctx, playersRange)
	if err != nil {
		return nil, err
	}
	return toColumn(values), nil
}

func (s *Sheets) Tracks(ctx context.Context) ([]string, error) {
	values, err := s.get(ctx, tracksRange)
	if err != nil {
		return nil, err
	}
	return toColumn(values), nil
}

func (s *Sheets) Leaderboard(ctx context.Context) ([][]string, error) {
	values, err := s.get(ctx, leaderboardRange)
	if err != nil {
		return nil, err
	}
	return toRows(values), nil
}

func (s *Sheets) SubmitRace(ctx context.Context, race Race) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vr := &sheets.ValueRange{Values: raceRows(race)}
	_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, racesRange, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append race: %w", err)
	}
	return nil
}

// raceRows раскладывает гонку по строкам. Место NaN пишется пустой ячейкой.
func raceRows(race Race) [][]any {
	rows := make([][]any, 0, len(race.Players))
	for i, player := range race.Players {
		var position any = ""
		if v := race.result(i); v != nil {
			position = *v
		}
		rows = append(rows, []any{race.Date, race.Track, player, position})
	}
	return rows
}
