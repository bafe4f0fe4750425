package partiedomain

import "github.com/google/uuid"

// Result aggregates everything one orchestration created.
type Result struct {
	PartieID uuid.UUID      `json:"partieId"`
	GameID   uuid.UUID      `json:"gameId"`
	Players  []PlayerResult `json:"players"`
	Rounds   []RoundResult  `json:"rounds"`
	Scores   []ScoreResult  `json:"scores"`
	Summary  Summary        `json:"summary"`
}

type PlayerResult struct {
	ID      uuid.UUID `json:"id"`
	Pseudo  string    `json:"pseudo"`
	IsGuest bool      `json:"isGuest"`
	UserID  *int64    `json:"userId,omitempty"`
}

type RoundResult struct {
	ID            uuid.UUID `json:"id"`
	GameID        uuid.UUID `json:"-"`
	RoundNumber   int       `json:"roundNumber"`
	PlayerScore   int       `json:"playerScore"`
	OpponentScore int       `json:"opponentScore"`
	IsCompleted   bool      `json:"isCompleted"`
}

type ScoreResult struct {
	ID         uuid.UUID `json:"id"`
	RoundID    uuid.UUID `json:"roundId"`
	PlayerID   uuid.UUID `json:"playerId"`
	ScoreType  string    `json:"scoreType"`
	ScoreName  string    `json:"scoreName"`
	ScoreValue int       `json:"scoreValue"`
}

// Summary totals are sums over the created rounds. Status is COMPLETED when
// rounds were created and PLANNED otherwise.
type Summary struct {
	TotalPlayerScore   int     `json:"totalPlayerScore"`
	TotalOpponentScore int     `json:"totalOpponentScore"`
	Status             string  `json:"status"`
	Mission            *string `json:"mission,omitempty"`
}

const (
	SummaryCompleted = "COMPLETED"
	SummaryPlanned   = "PLANNED"
)

// Summarize computes the summary of rounds.
func Summarize(rounds []RoundResult, mission *string) Summary {
	s := Summary{Status: SummaryPlanned, Mission: mission}
	for _, r := range rounds {
		s.TotalPlayerScore += r.PlayerScore
		s.TotalOpponentScore += r.OpponentScore
	}
	if len(rounds) > 0 {
		s.Status = SummaryCompleted
	}
	return s
}
