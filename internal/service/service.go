package service

import (
	"context"

	"github.com/sashakosti/Go_Race_Bot/internal/storage"
)

// RaceServiceInterface - то, что нужно боту и веб-странице от сервиса.
type RaceServiceInterface interface {
	GetPlayers(ctx context.Context) ([]string, error)
	GetTracks(ctx context.Context) ([]string, error)
	GetLeaderboard(ctx context.Context) ([]storage.LeaderboardRow, error)
	SubmitRace(ctx context.Context, race storage.Race) error
}

type RaceService struct {
	storage storage.Store
}

func New(store storage.Store) *RaceService {
	return &RaceService{storage: store}
}

// GetPlayers - список игроков для новой гонки
func (s *RaceService) GetPlayers(ctx context.Context) ([]string, error) {
	return s.storage.Players(ctx)
}

// GetTracks - список трасс для новой гонки
func (s *RaceService) GetTracks(ctx context.Context) ([]string, error) {
	return s.storage.Tracks(ctx)
}

// GetLeaderboard - получение текущего рейтинга. Без кеша, каждый раз из хранилища.
func (s *RaceService) GetLeaderboard(ctx context.Context) ([]storage.LeaderboardRow, error) {
	raw, err := s.storage.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	return ParseLeaderboard(raw), nil
}

// SubmitRace - Сохранение результатов гонки
func (s *RaceService) SubmitRace(ctx context.Context, race storage.Race) error {
	return s.storage.SubmitRace(ctx, race)
}
