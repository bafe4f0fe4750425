package partiedomain

// CreatePartieRequest is the flat descriptor of a complete match.
type CreatePartieRequest struct {
	UserID           int64         `json:"userId"`
	GameType         string        `json:"gameType"`
	PointsLimit      int           `json:"pointsLimit"`
	Mission          *string       `json:"mission,omitempty"`
	OpponentID       *int64        `json:"opponentId,omitempty"`
	Players          []PlayerInput `json:"players"`
	Rounds           []RoundInput  `json:"rounds,omitempty"`
	RequestingUserID int64         `json:"requestingUserId"`
}

type PlayerInput struct {
	Pseudo string `json:"pseudo"`
	UserID *int64 `json:"userId,omitempty"`
}

// RoundInput describes one round. The round is created completed when both
// scores are present.
type RoundInput struct {
	RoundNumber   int          `json:"roundNumber"`
	PlayerScore   *int         `json:"playerScore,omitempty"`
	OpponentScore *int         `json:"opponentScore,omitempty"`
	Scores        []ScoreInput `json:"scores,omitempty"`
}

// ScoreInput references its player by 1-based position in Players, as a
// string ("1".."N").
type ScoreInput struct {
	PlayerID   string `json:"playerId"`
	ScoreType  string `json:"scoreType"`
	ScoreName  string `json:"scoreName"`
	ScoreValue int    `json:"scoreValue"`
}
