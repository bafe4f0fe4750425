package gamedb

import (
	"time"

	"github.com/google/uuid"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	"github.com/uptrace/bun"
)

// Game is the row stored in the games table.
type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	UserID        int64      `bun:"user_id,notnull"`
	OpponentID    *int64     `bun:"opponent_id"`
	GameType      string     `bun:"game_type,notnull"`
	PointsLimit   int        `bun:"points_limit,notnull"`
	Status        string     `bun:"status,notnull"`
	PlayerScore   *int       `bun:"player_score"`
	OpponentScore *int       `bun:"opponent_score"`
	Mission       *string    `bun:"mission"`
	Notes         string     `bun:"notes,notnull,default:''"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	StartedAt     *time.Time `bun:"started_at"`
	CompletedAt   *time.Time `bun:"completed_at"`
}

func fromDomain(g *gamedomain.Game) *Game {
	return &Game{
		ID:            g.ID,
		UserID:        g.UserID,
		OpponentID:    g.OpponentID,
		GameType:      string(g.GameType),
		PointsLimit:   int(g.PointsLimit),
		Status:        string(g.Status),
		PlayerScore:   g.PlayerScore,
		OpponentScore: g.OpponentScore,
		Mission:       g.Mission,
		Notes:         g.Notes,
		CreatedAt:     g.CreatedAt,
		StartedAt:     g.StartedAt,
		CompletedAt:   g.CompletedAt,
	}
}

func (m *Game) toDomain() *gamedomain.Game {
	return &gamedomain.Game{
		ID:            m.ID,
		UserID:        m.UserID,
		OpponentID:    m.OpponentID,
		GameType:      gamedomain.GameType(m.GameType),
		PointsLimit:   gamedomain.PointsLimit(m.PointsLimit),
		Status:        gamedomain.Status(m.Status),
		PlayerScore:   m.PlayerScore,
		OpponentScore: m.OpponentScore,
		Mission:       m.Mission,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		StartedAt:     m.StartedAt,
		CompletedAt:   m.CompletedAt,
	}
}
