package partiedomain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
)

const (
	MinScoreValue = -10
	MaxScoreValue = 15
)

var (
	ErrInvalidRequestingUser = apperrors.Validation("invalid_requesting_user_id", "requesting user id must be a positive integer")
	ErrPlayerCount           = apperrors.Validation("invalid_player_count", fmt.Sprintf("a partie needs between 1 and %d players", playerdomain.MaxPlayersPerGame))
	ErrRoundCount            = apperrors.Validation("invalid_round_count", fmt.Sprintf("a partie has at most %d rounds", rounddomain.MaxRoundsPerGame))
	ErrNonSequentialRounds   = apperrors.Validation("non_sequential_rounds", "round numbers must run from 1 without gaps")
	ErrInvalidPlayerRef      = apperrors.Validation("invalid_player_reference", "score player id must be the 1-based index of a listed player")
	ErrScoreValueRange       = apperrors.Validation("score_out_of_range", fmt.Sprintf("score value out of range: must be between %d and %d", MinScoreValue, MaxScoreValue))
)

// Command is a validated, normalized CreatePartieRequest.
type Command struct {
	UserID           int64
	GameType         gamedomain.GameType
	PointsLimit      gamedomain.PointsLimit
	Mission          *string
	OpponentID       *int64
	Players          []PlayerSpec
	Rounds           []RoundSpec
	RequestingUserID int64
}

type PlayerSpec struct {
	Pseudo string
	UserID *int64
}

type RoundSpec struct {
	Number        int
	PlayerScore   *int
	OpponentScore *int
	Scores        []ScoreSpec
}

// ScoreSpec points at its player by 0-based index into Command.Players.
type ScoreSpec struct {
	PlayerIndex int
	Type        scoredomain.Type
	Name        string
	Value       int
}

// HasRounds reports whether the command creates any round.
func (c *Command) HasRounds() bool { return len(c.Rounds) > 0 }

// Validate checks req and returns its normalized form. Nothing is persisted
// before this succeeds.
func Validate(req CreatePartieRequest) (*Command, error) {
	if req.UserID <= 0 {
		return nil, gamedomain.ErrInvalidUserID.With("user_id", req.UserID)
	}
	if req.RequestingUserID <= 0 {
		return nil, ErrInvalidRequestingUser.With("requesting_user_id", req.RequestingUserID)
	}
	if req.RequestingUserID != req.UserID {
		return nil, gamedomain.ErrRequesterNotUser.With("user_id", req.UserID, "requesting_user_id", req.RequestingUserID)
	}

	gameType, err := gamedomain.ParseGameType(req.GameType)
	if err != nil {
		return nil, err
	}
	points, err := gamedomain.ParsePointsLimit(req.PointsLimit)
	if err != nil {
		return nil, err
	}
	if req.OpponentID != nil && *req.OpponentID <= 0 {
		return nil, gamedomain.ErrInvalidOpponentID.With("opponent_id", *req.OpponentID)
	}

	cmd := &Command{
		UserID:           req.UserID,
		GameType:         gameType,
		PointsLimit:      points,
		OpponentID:       req.OpponentID,
		RequestingUserID: req.RequestingUserID,
	}
	if req.Mission != nil {
		mission := strings.TrimSpace(*req.Mission)
		if utf8.RuneCountInString(mission) > gamedomain.MaxMissionLength {
			return nil, gamedomain.ErrMissionTooLong
		}
		if mission != "" {
			cmd.Mission = &mission
		}
	}

	if cmd.Players, err = validatePlayers(req.Players); err != nil {
		return nil, err
	}
	if cmd.Rounds, err = validateRounds(req.Rounds, len(cmd.Players)); err != nil {
		return nil, err
	}
	return cmd, nil
}

func validatePlayers(in []PlayerInput) ([]PlayerSpec, error) {
	if len(in) == 0 || len(in) > playerdomain.MaxPlayersPerGame {
		return nil, ErrPlayerCount.With("players", len(in))
	}
	out := make([]PlayerSpec, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for i, p := range in {
		pseudo, err := playerdomain.NormalizePseudo(p.Pseudo)
		if err != nil {
			return nil, withIndex(err, "player_index", i+1)
		}
		key := strings.ToLower(pseudo)
		if _, dup := seen[key]; dup {
			return nil, playerdomain.DuplicatePseudo(pseudo)
		}
		seen[key] = struct{}{}
		if p.UserID != nil && *p.UserID <= 0 {
			return nil, playerdomain.ErrInvalidUserID.With("player_index", i+1, "user_id", *p.UserID)
		}
		out = append(out, PlayerSpec{Pseudo: pseudo, UserID: p.UserID})
	}
	return out, nil
}

func validateRounds(in []RoundInput, players int) ([]RoundSpec, error) {
	if len(in) > rounddomain.MaxRoundsPerGame {
		return nil, ErrRoundCount.With("rounds", len(in))
	}
	out := make([]RoundSpec, 0, len(in))
	seen := make(map[int]struct{}, len(in))
	for _, r := range in {
		if r.RoundNumber <= 0 {
			return nil, rounddomain.ErrInvalidRoundNumber.With("round_number", r.RoundNumber)
		}
		if _, dup := seen[r.RoundNumber]; dup {
			return nil, rounddomain.ErrDuplicateRound.With("round_number", r.RoundNumber)
		}
		seen[r.RoundNumber] = struct{}{}

		for _, s := range []*int{r.PlayerScore, r.OpponentScore} {
			if s == nil {
				continue
			}
			if err := rounddomain.ValidateScore(*s); err != nil {
				return nil, withIndex(err, "round_number", r.RoundNumber)
			}
		}

		scores, err := validateScores(r, players)
		if err != nil {
			return nil, err
		}
		out = append(out, RoundSpec{
			Number:        r.RoundNumber,
			PlayerScore:   r.PlayerScore,
			OpponentScore: r.OpponentScore,
			Scores:        scores,
		})
	}
	for n := 1; n <= len(in); n++ {
		if _, ok := seen[n]; !ok {
			return nil, ErrNonSequentialRounds.With("missing_round_number", n)
		}
	}
	return out, nil
}

func validateScores(r RoundInput, players int) ([]ScoreSpec, error) {
	out := make([]ScoreSpec, 0, len(r.Scores))
	for _, s := range r.Scores {
		idx, err := strconv.Atoi(strings.TrimSpace(s.PlayerID))
		if err != nil || idx < 1 || idx > players {
			return nil, ErrInvalidPlayerRef.With("round_number", r.RoundNumber, "player_id", s.PlayerID)
		}
		t, err := scoredomain.ParseType(s.ScoreType)
		if err != nil {
			return nil, withIndex(err, "round_number", r.RoundNumber)
		}
		name, err := scoredomain.ValidateName(t, s.ScoreName)
		if err != nil {
			return nil, withIndex(err, "round_number", r.RoundNumber)
		}
		if s.ScoreValue < MinScoreValue || s.ScoreValue > MaxScoreValue {
			return nil, ErrScoreValueRange.With("round_number", r.RoundNumber, "value", s.ScoreValue)
		}
		out = append(out, ScoreSpec{PlayerIndex: idx - 1, Type: t, Name: name, Value: s.ScoreValue})
	}
	return out, nil
}

func withIndex(err error, key string, value any) error {
	if e, ok := apperrors.As(err); ok {
		return e.With(key, value)
	}
	return err
}
