package scoredomain

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
)

type Type string

const (
	TypePrimary    Type = "PRIMARY"
	TypeSecondary  Type = "SECONDARY"
	TypeChallenger Type = "CHALLENGER"
	TypeBonus      Type = "BONUS"
	TypePenalty    Type = "PENALTY"
	TypeObjective  Type = "OBJECTIVE"
)

var Types = []Type{TypePrimary, TypeSecondary, TypeChallenger, TypeBonus, TypePenalty, TypeObjective}

// RecordableTypes are the types the score recording service accepts.
var RecordableTypes = []Type{TypePrimary, TypeSecondary, TypeChallenger}

const (
	MinValue               = 0
	MaxValue               = 15
	MinPenaltyValue        = -15
	MinSecondaryNameLength = 3
	MinChallengerDeficit   = 6
)

var (
	ErrInvalidType           = apperrors.Validation("invalid_score_type", fmt.Sprintf("score type must be one of %v", Types))
	ErrInvalidTypeForService = apperrors.Validation("invalid_type_for_service", fmt.Sprintf("invalid type for service: must be one of %v", RecordableTypes))
	ErrValueOutOfRange       = apperrors.Validation("score_out_of_range", fmt.Sprintf("score value out of range: must be between %d and %d", MinValue, MaxValue))
	ErrNameRequired          = apperrors.Validation("score_name_required", "score name required")
	ErrSecondaryNameTooShort = apperrors.Validation("secondary_name_too_short", fmt.Sprintf("SECONDARY score name must be at least %d characters", MinSecondaryNameLength))

	ErrChallengerFirstRound = apperrors.BusinessRule("challenger_first_round", "challenger forbidden in first round")
	ErrChallengerExists     = apperrors.BusinessRule("challenger_already_exists", "challenger already exists in round")
	ErrInsufficientDeficit  = apperrors.BusinessRule("insufficient_deficit", "insufficient deficit for challenger")
	ErrOpponentNotFound     = apperrors.BusinessRule("opponent_not_found", "opponent not found for challenger")
	ErrAmbiguousOpponent    = apperrors.BusinessRule("challenger_ambiguous_opponent", "challenger requires exactly one scoring opponent")
	ErrDuplicateScore       = apperrors.BusinessRule("duplicate_score", "a score with this type and name already exists for the player in this round")
	ErrScoreNotFound        = apperrors.NotFound("score_not_found", "score not found")
)

// Score is one named, typed point entry of a player in a round.
type Score struct {
	ID        uuid.UUID
	RoundID   uuid.UUID
	PlayerID  uuid.UUID
	Type      Type
	Name      string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ParseType(s string) (Type, error) {
	t := Type(s)
	if !slices.Contains(Types, t) {
		return "", ErrInvalidType.With("score_type", s)
	}
	return t, nil
}

// IsRecordable reports whether the recording service accepts t.
func IsRecordable(t Type) bool {
	return slices.Contains(RecordableTypes, t)
}

// ValueRange returns the inclusive bounds a stored score of type t may take.
func ValueRange(t Type) (lo, hi int) {
	if t == TypePenalty {
		return MinPenaltyValue, MaxValue
	}
	return MinValue, MaxValue
}

// ValidateValue checks v against the range of t.
func ValidateValue(t Type, v int) error {
	lo, hi := ValueRange(t)
	if v < lo || v > hi {
		e := ErrValueOutOfRange.With("score_type", string(t), "value", v)
		e.Message = fmt.Sprintf("score value out of range: must be between %d and %d", lo, hi)
		return e
	}
	return nil
}

// ValidateName trims name and applies the per-type length rules.
func ValidateName(t Type, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired.With("score_type", string(t))
	}
	if t == TypeSecondary && utf8.RuneCountInString(name) < MinSecondaryNameLength {
		return "", ErrSecondaryNameTooShort.With("score_name", name)
	}
	return name, nil
}

// New builds a score after validating it against the entity rules.
func New(id, roundID, playerID uuid.UUID, t Type, name string, value int, now time.Time) (*Score, error) {
	if _, err := ParseType(string(t)); err != nil {
		return nil, err
	}
	name, err := ValidateName(t, name)
	if err != nil {
		return nil, err
	}
	if err := ValidateValue(t, value); err != nil {
		return nil, err
	}
	return &Score{
		ID:        id,
		RoundID:   roundID,
		PlayerID:  playerID,
		Type:      t,
		Name:      name,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update replaces the value and, when given, the name. The type never changes.
func (s *Score) Update(value int, name *string, now time.Time) error {
	if err := ValidateValue(s.Type, value); err != nil {
		return err
	}
	newName := s.Name
	if name != nil {
		n, err := ValidateName(s.Type, *name)
		if err != nil {
			return err
		}
		newName = n
	}
	s.Value = value
	s.Name = newName
	s.UpdatedAt = now
	return nil
}
