package scoredomain

import (
	"github.com/google/uuid"
)

// ResolveOpponent returns the one scoring player other than playerID.
// Zero candidates yield ErrOpponentNotFound and more than one yield
// ErrAmbiguousOpponent.
func ResolveOpponent(scoringPlayers []uuid.UUID, playerID uuid.UUID) (uuid.UUID, error) {
	var opponent uuid.UUID
	found := 0
	seen := make(map[uuid.UUID]struct{}, len(scoringPlayers))
	for _, id := range scoringPlayers {
		if id == playerID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		opponent = id
		found++
	}
	switch found {
	case 0:
		return uuid.Nil, ErrOpponentNotFound.With("player_id", playerID.String())
	case 1:
		return opponent, nil
	default:
		return uuid.Nil, ErrAmbiguousOpponent.With("player_id", playerID.String(), "scoring_players", found+1)
	}
}

// Deficit is the opponent's total minus the player's total over scores.
func Deficit(scores []*Score, playerID, opponentID uuid.UUID) int {
	var own, theirs int
	for _, s := range scores {
		switch s.PlayerID {
		case playerID:
			own += s.Value
		case opponentID:
			theirs += s.Value
		}
	}
	return theirs - own
}

// CheckChallengerDeficit enforces the minimum previous-round deficit.
func CheckChallengerDeficit(previousRound []*Score, playerID, opponentID uuid.UUID) error {
	deficit := Deficit(previousRound, playerID, opponentID)
	if deficit < MinChallengerDeficit {
		return ErrInsufficientDeficit.With(
			"player_id", playerID.String(),
			"deficit", deficit,
			"required", MinChallengerDeficit,
		)
	}
	return nil
}

// Total is a player's score breakdown across a game. Types outside the three
// named buckets only count toward Total.
type Total struct {
	Primary    int `json:"primary"`
	Secondary  int `json:"secondary"`
	Challenger int `json:"challenger"`
	Total      int `json:"total"`
}

func Sum(scores []*Score) Total {
	var t Total
	for _, s := range scores {
		switch s.Type {
		case TypePrimary:
			t.Primary += s.Value
		case TypeSecondary:
			t.Secondary += s.Value
		case TypeChallenger:
			t.Challenger += s.Value
		}
		t.Total += s.Value
	}
	return t
}
