package gamedomain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
)

type GameType string

const (
	GameTypeMatchedPlay GameType = "MATCHED_PLAY"
	GameTypeNarrative   GameType = "NARRATIVE"
	GameTypeOpenPlay    GameType = "OPEN_PLAY"
)

var GameTypes = []GameType{GameTypeMatchedPlay, GameTypeNarrative, GameTypeOpenPlay}

// ParseGameType accepts only the exact enum spelling.
func ParseGameType(s string) (GameType, error) {
	t := GameType(s)
	if !slices.Contains(GameTypes, t) {
		return "", ErrInvalidGameType.With("game_type", s)
	}
	return t, nil
}

type PointsLimit int

var PointsLimits = []PointsLimit{500, 1000, 1500, 2000, 3000}

func ParsePointsLimit(n int) (PointsLimit, error) {
	p := PointsLimit(n)
	if !slices.Contains(PointsLimits, p) {
		return 0, ErrInvalidPointsLimit.With("points_limit", n)
	}
	return p, nil
}

type Status string

const (
	StatusPlanned    Status = "PLANNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

const MaxMissionLength = 200

var (
	ErrInvalidGameType    = apperrors.Validation("invalid_game_type", fmt.Sprintf("game type must be one of %v", GameTypes))
	ErrInvalidPointsLimit = apperrors.Validation("invalid_points_limit", fmt.Sprintf("points limit must be one of %v", PointsLimits))
	ErrInvalidUserID      = apperrors.Validation("invalid_user_id", "user id must be a positive integer")
	ErrInvalidOpponentID  = apperrors.Validation("invalid_opponent_id", "opponent id must be a positive integer")
	ErrMissionTooLong     = apperrors.Validation("mission_too_long", fmt.Sprintf("mission must be at most %d characters", MaxMissionLength))
	ErrNegativeScore      = apperrors.Validation("negative_score", "final scores must not be negative")

	ErrNotPlanned       = apperrors.BusinessRule("game_not_planned", "game must be PLANNED to start")
	ErrNotInProgress    = apperrors.BusinessRule("game_not_in_progress", "game must be IN_PROGRESS")
	ErrCannotCancel     = apperrors.BusinessRule("game_not_cancellable", "only PLANNED or IN_PROGRESS games can be cancelled")
	ErrGameClosed       = apperrors.BusinessRule("game_closed", "game is already completed or cancelled")
	ErrGameNotFound     = apperrors.NotFound("game_not_found", "game not found")
	ErrNotOwner         = apperrors.Authorization("not_game_owner", "only the game owner may do this")
	ErrUnauthorized     = apperrors.Authorization("unauthorized_access", "unauthorized access")
	ErrRequesterNotUser = apperrors.Authorization("requester_mismatch", "requesting user must be the owning user")
)

// Game is the aggregate root of one match.
type Game struct {
	ID            uuid.UUID
	UserID        int64
	OpponentID    *int64
	GameType      GameType
	PointsLimit   PointsLimit
	Status        Status
	PlayerScore   *int
	OpponentScore *int
	Mission       *string
	Notes         string
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// New returns a PLANNED game.
func New(id uuid.UUID, userID int64, gameType GameType, pointsLimit PointsLimit, now time.Time) (*Game, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if _, err := ParseGameType(string(gameType)); err != nil {
		return nil, err
	}
	if _, err := ParsePointsLimit(int(pointsLimit)); err != nil {
		return nil, err
	}
	return &Game{
		ID:          id,
		UserID:      userID,
		GameType:    gameType,
		PointsLimit: pointsLimit,
		Status:      StatusPlanned,
		CreatedAt:   now,
	}, nil
}

func (g *Game) IsOwner(userID int64) bool { return g.UserID == userID }

func (g *Game) IsInProgress() bool { return g.Status == StatusInProgress }

// IsClosed reports whether the game reached a terminal status.
func (g *Game) IsClosed() bool {
	return g.Status == StatusCompleted || g.Status == StatusCancelled
}

// Start moves a PLANNED game to IN_PROGRESS. A nil mission keeps the current one.
func (g *Game) Start(mission *string, now time.Time) error {
	if g.Status != StatusPlanned {
		return ErrNotPlanned.With("game_id", g.ID.String(), "status", string(g.Status))
	}
	if mission != nil {
		if err := g.SetMission(*mission); err != nil {
			return err
		}
	}
	g.Status = StatusInProgress
	g.StartedAt = &now
	return nil
}

// Complete records the final scores of an IN_PROGRESS game.
func (g *Game) Complete(playerScore, opponentScore int, now time.Time) error {
	if g.Status != StatusInProgress {
		return ErrNotInProgress.With("game_id", g.ID.String(), "status", string(g.Status))
	}
	if playerScore < 0 || opponentScore < 0 {
		return ErrNegativeScore
	}
	g.PlayerScore = &playerScore
	g.OpponentScore = &opponentScore
	g.Status = StatusCompleted
	g.CompletedAt = &now
	return nil
}

func (g *Game) Cancel() error {
	if g.Status != StatusPlanned && g.Status != StatusInProgress {
		return ErrCannotCancel.With("game_id", g.ID.String(), "status", string(g.Status))
	}
	g.Status = StatusCancelled
	return nil
}

func (g *Game) SetOpponent(userID int64) error {
	if userID <= 0 {
		return ErrInvalidOpponentID.With("opponent_id", userID)
	}
	g.OpponentID = &userID
	return nil
}

// SetMission trims mission; a blank mission clears it.
func (g *Game) SetMission(mission string) error {
	mission = strings.TrimSpace(mission)
	if len([]rune(mission)) > MaxMissionLength {
		return ErrMissionTooLong
	}
	if mission == "" {
		g.Mission = nil
		return nil
	}
	g.Mission = &mission
	return nil
}

func (g *Game) UpdateNotes(notes string) {
	g.Notes = notes
}
