package partiedomain

import (
	"github.com/google/uuid"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
)

var (
	ErrNoPlayersCreated    = apperrors.BusinessRule("no_players_created", "orchestration created no player")
	ErrRoundGameMismatch   = apperrors.BusinessRule("round_game_mismatch", "round does not belong to the created game")
	ErrScoreRoundMismatch  = apperrors.BusinessRule("score_round_mismatch", "score references a round not created in this orchestration")
	ErrScorePlayerMismatch = apperrors.BusinessRule("score_player_mismatch", "score references a player not created in this orchestration")
)

// CheckCrossReferences verifies that every created round belongs to gameID
// and that every score points at a created round and a created player.
func CheckCrossReferences(gameID uuid.UUID, players []PlayerResult, rounds []RoundResult, scores []ScoreResult) error {
	if len(players) == 0 {
		return ErrNoPlayersCreated.With("game_id", gameID.String())
	}

	playerIDs := make(map[uuid.UUID]struct{}, len(players))
	for _, p := range players {
		playerIDs[p.ID] = struct{}{}
	}
	roundIDs := make(map[uuid.UUID]struct{}, len(rounds))
	for _, r := range rounds {
		if r.GameID != gameID {
			return ErrRoundGameMismatch.With("round_id", r.ID.String(), "round_game_id", r.GameID.String(), "game_id", gameID.String())
		}
		roundIDs[r.ID] = struct{}{}
	}
	for _, s := range scores {
		if _, ok := roundIDs[s.RoundID]; !ok {
			return ErrScoreRoundMismatch.With("score_id", s.ID.String(), "round_id", s.RoundID.String())
		}
		if _, ok := playerIDs[s.PlayerID]; !ok {
			return ErrScorePlayerMismatch.With("score_id", s.ID.String(), "player_id", s.PlayerID.String())
		}
	}
	return nil
}
