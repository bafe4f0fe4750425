package scoreservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
)

// Service records and reads the granular scores of a round.
type Service interface {
	AddScore(ctx context.Context, req AddScoreRequest) (*ScoreResponse, error)
	UpdateScore(ctx context.Context, req UpdateScoreRequest) (*ScoreResponse, error)
	ListScores(ctx context.Context, roundID uuid.UUID) (*RoundScores, error)
	GetTotal(ctx context.Context, playerID, gameID uuid.UUID) (*PlayerTotal, error)
}

type AddScoreRequest struct {
	RoundID          uuid.UUID
	PlayerID         uuid.UUID
	Type             string
	Name             string
	Value            int
	RequestingUserID int64
}

// UpdateScoreRequest replaces the value of a score and, when Name is set,
// its name.
type UpdateScoreRequest struct {
	ScoreID          uuid.UUID
	Value            int
	Name             *string
	RequestingUserID int64
}

type ScoreView struct {
	ID        uuid.UUID `json:"id"`
	RoundID   uuid.UUID `json:"roundId"`
	PlayerID  uuid.UUID `json:"playerId"`
	Type      string    `json:"scoreType"`
	Name      string    `json:"scoreName"`
	Value     int       `json:"scoreValue"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewScoreView(s *scoredomain.Score) ScoreView {
	return ScoreView{
		ID:        s.ID,
		RoundID:   s.RoundID,
		PlayerID:  s.PlayerID,
		Type:      string(s.Type),
		Name:      s.Name,
		Value:     s.Value,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ScoreResponse is returned by the write operations. CanModify tells the
// requester whether further edits would be accepted.
type ScoreResponse struct {
	Score       ScoreView `json:"score"`
	GameID      uuid.UUID `json:"gameId"`
	RoundNumber int       `json:"roundNumber"`
	CanModify   bool      `json:"canModify"`
}

// GameRef identifies the game a listing belongs to.
type GameRef struct {
	ID       uuid.UUID `json:"id"`
	UserID   int64     `json:"userId"`
	GameType string    `json:"gameType"`
	Status   string    `json:"status"`
	Mission  *string   `json:"mission,omitempty"`
}

type RoundScores struct {
	RoundID     uuid.UUID   `json:"roundId"`
	RoundNumber int         `json:"roundNumber"`
	Game        GameRef     `json:"game"`
	Scores      []ScoreView `json:"scores"`
}

type PlayerTotal struct {
	PlayerID  uuid.UUID         `json:"playerId"`
	GameID    uuid.UUID         `json:"gameId"`
	Breakdown scoredomain.Total `json:"breakdown"`
}
