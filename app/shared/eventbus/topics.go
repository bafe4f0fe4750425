package eventbus

import (
	"time"

	"github.com/google/uuid"
)

const (
	GameStatusChangedTopic = "game.status_changed.v1"
	PartieCreatedTopic     = "partie.created.v1"
	ScoreRecordedTopic     = "score.recorded.v1"
	ScoreUpdatedTopic      = "score.updated.v1"
)

type GameStatusChangedPayload struct {
	GameID     uuid.UUID `json:"game_id"`
	UserID     int64     `json:"user_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedAt  time.Time `json:"changed_at"`
}

type PartieCreatedPayload struct {
	GameID             uuid.UUID `json:"game_id"`
	UserID             int64     `json:"user_id"`
	Players            int       `json:"players"`
	Rounds             int       `json:"rounds"`
	Scores             int       `json:"scores"`
	TotalPlayerScore   int       `json:"total_player_score"`
	TotalOpponentScore int       `json:"total_opponent_score"`
}

type ScoreRecordedPayload struct {
	ScoreID  uuid.UUID `json:"score_id"`
	RoundID  uuid.UUID `json:"round_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Type     string    `json:"type"`
	Value    int       `json:"value"`
}
