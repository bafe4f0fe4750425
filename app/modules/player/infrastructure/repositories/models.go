package playerdb

import (
	"time"

	"github.com/google/uuid"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	"github.com/uptrace/bun"
)

// Player is the row stored in the players table.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	GameID    uuid.UUID `bun:"game_id,type:uuid,notnull"`
	UserID    *int64    `bun:"user_id"`
	IsGuest   bool      `bun:"is_guest,notnull,default:false"`
	Pseudo    string    `bun:"pseudo,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

func fromDomain(p *playerdomain.Player) *Player {
	return &Player{
		ID:        p.ID,
		GameID:    p.GameID,
		UserID:    p.UserID,
		IsGuest:   p.IsGuest,
		Pseudo:    p.Pseudo,
		CreatedAt: p.CreatedAt,
	}
}

func (m *Player) toDomain() *playerdomain.Player {
	return &playerdomain.Player{
		ID:        m.ID,
		GameID:    m.GameID,
		UserID:    m.UserID,
		IsGuest:   m.IsGuest,
		Pseudo:    m.Pseudo,
		CreatedAt: m.CreatedAt,
	}
}
