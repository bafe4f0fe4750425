package playerdomain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
)

const (
	MaxPlayersPerGame = 4
	MaxPseudoLength   = 50
)

var (
	ErrPseudoRequired  = apperrors.Validation("pseudo_required", "Pseudo is required")
	ErrPseudoTooLong   = apperrors.Validation("pseudo_too_long", fmt.Sprintf("Pseudo must be at most %d characters", MaxPseudoLength))
	ErrInvalidUserID   = apperrors.Validation("invalid_player_user_id", "player user id must be a positive integer")
	ErrDuplicatePseudo = apperrors.Validation("duplicate_pseudo", "Duplicate pseudo")
	ErrUserAlreadyIn   = apperrors.Validation("user_already_in_game", "user already plays in this game")
	ErrTooManyPlayers  = apperrors.BusinessRule("too_many_players", fmt.Sprintf("a game has at most %d players", MaxPlayersPerGame))
	ErrPlayerNotFound  = apperrors.NotFound("player_not_found", "player not found")
	ErrPlayerNotInGame = apperrors.BusinessRule("player_not_in_game", "player does not belong to this game")
)

// Player is a participant of one game: either a registered user or a guest.
type Player struct {
	ID        uuid.UUID
	GameID    uuid.UUID
	UserID    *int64
	IsGuest   bool
	Pseudo    string
	CreatedAt time.Time
}

// NormalizePseudo trims pseudo and checks its length.
func NormalizePseudo(pseudo string) (string, error) {
	pseudo = strings.TrimSpace(pseudo)
	if pseudo == "" {
		return "", ErrPseudoRequired
	}
	if utf8.RuneCountInString(pseudo) > MaxPseudoLength {
		return "", ErrPseudoTooLong.With("pseudo", pseudo)
	}
	return pseudo, nil
}

// SamePseudo compares pseudos case-insensitively.
func SamePseudo(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// DuplicatePseudo builds the error reported when pseudo is already taken.
func DuplicatePseudo(pseudo string) error {
	e := ErrDuplicatePseudo.With("pseudo", pseudo)
	e.Message = "Duplicate pseudo: " + pseudo
	return e
}

// New builds a player. A nil userID makes the player a guest.
func New(id, gameID uuid.UUID, pseudo string, userID *int64, now time.Time) (*Player, error) {
	pseudo, err := NormalizePseudo(pseudo)
	if err != nil {
		return nil, err
	}
	if userID != nil && *userID <= 0 {
		return nil, ErrInvalidUserID.With("user_id", *userID)
	}
	return &Player{
		ID:        id,
		GameID:    gameID,
		UserID:    userID,
		IsGuest:   userID == nil,
		Pseudo:    pseudo,
		CreatedAt: now,
	}, nil
}

// IsUser reports whether the player is the registered user userID.
func (p *Player) IsUser(userID int64) bool {
	return p.UserID != nil && *p.UserID == userID
}
