package rounddomain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
)

const (
	MaxRoundScore    = 100
	MaxRoundsPerGame = 10
)

var (
	ErrInvalidRoundNumber = apperrors.Validation("invalid_round_number", "round number must be a positive integer")
	ErrRoundScoreRange    = apperrors.Validation("round_score_out_of_range", fmt.Sprintf("round scores must be between 0 and %d", MaxRoundScore))
	ErrInvalidRoundCount  = apperrors.Validation("invalid_round_count", fmt.Sprintf("round count must be between 1 and %d", MaxRoundsPerGame))
	ErrDuplicateRound     = apperrors.Validation("duplicate_round_number", "round number already exists in this game")
	ErrRoundNotFound      = apperrors.NotFound("round_not_found", "round not found")
	ErrRoundNotInGame     = apperrors.BusinessRule("round_not_in_game", "round does not belong to this game")
)

// Round is one scoring phase of a game.
type Round struct {
	ID            uuid.UUID
	GameID        uuid.UUID
	Number        int
	PlayerScore   int
	OpponentScore int
	IsCompleted   bool
	CreatedAt     time.Time
}

// ValidateScore checks a single round score.
func ValidateScore(v int) error {
	if v < 0 || v > MaxRoundScore {
		return ErrRoundScoreRange.With("score", v)
	}
	return nil
}

// NewRound returns an empty, incomplete round.
func NewRound(id, gameID uuid.UUID, number int, now time.Time) (*Round, error) {
	if number <= 0 {
		return nil, ErrInvalidRoundNumber.With("round_number", number)
	}
	return &Round{
		ID:        id,
		GameID:    gameID,
		Number:    number,
		CreatedAt: now,
	}, nil
}

// EmptyRounds returns rounds 1..count, each empty.
func EmptyRounds(newID func() uuid.UUID, gameID uuid.UUID, count int, now time.Time) ([]*Round, error) {
	if count < 1 || count > MaxRoundsPerGame {
		return nil, ErrInvalidRoundCount.With("count", count)
	}
	rounds := make([]*Round, 0, count)
	for n := 1; n <= count; n++ {
		r, err := NewRound(newID(), gameID, n, now)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, nil
}

// Complete sets both scores and marks the round completed. Completing an
// already completed round with the same scores yields the same state.
func (r *Round) Complete(playerScore, opponentScore int) error {
	if err := ValidateScore(playerScore); err != nil {
		return err
	}
	if err := ValidateScore(opponentScore); err != nil {
		return err
	}
	r.PlayerScore = playerScore
	r.OpponentScore = opponentScore
	r.IsCompleted = true
	return nil
}

// UpdateScores edits both scores in place without touching completion. A
// missing score is written as 0.
func (r *Round) UpdateScores(playerScore, opponentScore *int) error {
	p, o := valueOrZero(playerScore), valueOrZero(opponentScore)
	if err := ValidateScore(p); err != nil {
		return err
	}
	if err := ValidateScore(o); err != nil {
		return err
	}
	r.PlayerScore = p
	r.OpponentScore = o
	return nil
}

// SetSlotScore writes score into the player slot when mainPlayer is true and
// into the opponent slot otherwise.
func (r *Round) SetSlotScore(mainPlayer bool, score int) error {
	if err := ValidateScore(score); err != nil {
		return err
	}
	if mainPlayer {
		r.PlayerScore = score
	} else {
		r.OpponentScore = score
	}
	return nil
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
