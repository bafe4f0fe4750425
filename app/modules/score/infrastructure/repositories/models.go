package scoredb

import (
	"time"

	"github.com/google/uuid"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
	"github.com/uptrace/bun"
)

// Score is the row stored in the scores table.
type Score struct {
	bun.BaseModel `bun:"table:scores,alias:s"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	RoundID   uuid.UUID `bun:"round_id,type:uuid,notnull"`
	PlayerID  uuid.UUID `bun:"player_id,type:uuid,notnull"`
	Type      string    `bun:"score_type,notnull"`
	Name      string    `bun:"score_name,notnull"`
	Value     int       `bun:"score_value,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

func fromDomain(s *scoredomain.Score) *Score {
	return &Score{
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

func (m *Score) toDomain() *scoredomain.Score {
	return &scoredomain.Score{
		ID:        m.ID,
		RoundID:   m.RoundID,
		PlayerID:  m.PlayerID,
		Type:      scoredomain.Type(m.Type),
		Name:      m.Name,
		Value:     m.Value,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toDomainSlice(models []Score) []*scoredomain.Score {
	out := make([]*scoredomain.Score, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out
}
