package storage

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Postgres - хранилище на Postgres, схема в schema.sql.
type Postgres struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewPostgres - Создание подключения
func NewPostgres(ctx context.Context, dsn string, timeout time.Duration) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return &Postgres{db: pool, timeout: timeout}, nil
}

// Ping - проверка подключения к DB
func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Migrate создает таблицы, если их еще нет.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Postgres) Close() {
	s.db.Close()
}

func (s *Postgres) names(ctx context.Context, query string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Players - Получение всех игроков
func (s *Postgres) Players(ctx context.Context) ([]string, error) {
	return s.names(ctx, `SELECT name FROM players ORDER BY sort_order, name`)
}

// Tracks - Получение всех трасс
func (s *Postgres) Tracks(ctx context.Context) ([]string, error) {
	return s.names(ctx, `SELECT name FROM tracks ORDER BY sort_order, name`)
}

// Leaderboard - рейтинг в том же виде, что отдает таблица: заголовок, потом строки.
// Очки - сумма мест, поэтому меньше значит лучше.
func (s *Postgres) Leaderboard(ctx context.Context) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.Query(ctx,
		`SELECT player,
		        COALESCE(SUM(position), 0)::text,
		        COUNT(DISTINCT race_id)::text,
		        COALESCE(ROUND(AVG(position)::numeric, 2), 0)::text
		 FROM race_results
		 GROUP BY player
		 ORDER BY player`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		var player, points, races, avg string
		if err := rows.Scan(&player, &points, &races, &avg); err != nil {
			return nil, err
		}
		result = append(result, []string{player, points, races, avg})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return withHeader(result), nil
}

var leaderboardHeader = []string{"Player", "Points", "Races", "Avg position"}

// withHeader ставит строку заголовка первой, как в листе Leaderboard.
func withHeader(rows [][]string) [][]string {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, append([]string(nil), leaderboardHeader...))
	return append(table, rows...)
}

// SubmitRace - Сохранение результатов гонки. Каждый вызов - новая гонка с новым id.
func (s *Postgres) SubmitRace(ctx context.Context, race Race) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	raceID := uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO races (id, race_date, track, created_at) VALUES ($1, $2, $3, NOW())`,
		raceID, race.Date, race.Track,
	)
	if err != nil {
		return fmt.Errorf("insert race: %w", err)
	}

	for i, player := range race.Players {
		_, err := tx.Exec(ctx,
			`INSERT INTO race_results (race_id, player, slot, position)
			 VALUES ($1, $2, $3, $4)`,
			raceID, player, i, race.result(i),
		)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", player, err)
		}
	}

	return tx.Commit(ctx)
}
