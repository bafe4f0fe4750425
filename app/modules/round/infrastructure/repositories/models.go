package rounddb

import (
	"time"

	"github.com/google/uuid"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	"github.com/uptrace/bun"
)

// Round is the row stored in the rounds table.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	GameID        uuid.UUID `bun:"game_id,type:uuid,notnull"`
	Number        int       `bun:"number,notnull"`
	PlayerScore   int       `bun:"player_score,notnull,default:0"`
	OpponentScore int       `bun:"opponent_score,notnull,default:0"`
	IsCompleted   bool      `bun:"is_completed,notnull,default:false"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

func fromDomain(r *rounddomain.Round) *Round {
	return &Round{
		ID:            r.ID,
		GameID:        r.GameID,
		Number:        r.Number,
		PlayerScore:   r.PlayerScore,
		OpponentScore: r.OpponentScore,
		IsCompleted:   r.IsCompleted,
		CreatedAt:     r.CreatedAt,
	}
}

func (m *Round) toDomain() *rounddomain.Round {
	return &rounddomain.Round{
		ID:            m.ID,
		GameID:        m.GameID,
		Number:        m.Number,
		PlayerScore:   m.PlayerScore,
		OpponentScore: m.OpponentScore,
		IsCompleted:   m.IsCompleted,
		CreatedAt:     m.CreatedAt,
	}
}
