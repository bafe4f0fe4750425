package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	partiedomain "github.com/tabletop-ledger/partie/app/modules/partie/domain"
)

var (
	gameTypes    = []string{"MATCHED_PLAY", "NARRATIVE", "OPEN_PLAY"}
	pointsLimits = []int{500, 1000, 1500, 2000, 3000}
	missions     = []string{"Take and Hold", "Supply Drop", "Purge the Foe", "Scorched Earth", "Sites of Power"}
)

// TestDataGenerator builds valid partie requests from a seeded faker, so a
// failing case can be replayed from its seed.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a generator. Without a seed the current time
// is used.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

func (g *TestDataGenerator) Seed() int64 { return g.seed }

// GeneratePartieRequest returns a valid request with the given number of
// players and rounds. Rounds carry both scores and one PRIMARY entry per
// player, which the score service always accepts.
func (g *TestDataGenerator) GeneratePartieRequest(userID int64, players, rounds int) partiedomain.CreatePartieRequest {
	req := partiedomain.CreatePartieRequest{
		UserID:           userID,
		GameType:         g.faker.RandomString(gameTypes),
		PointsLimit:      pointsLimits[g.faker.Number(0, len(pointsLimits)-1)],
		RequestingUserID: userID,
	}
	if g.faker.Bool() {
		m := g.faker.RandomString(missions)
		req.Mission = &m
	}

	for i := 0; i < players; i++ {
		p := partiedomain.PlayerInput{Pseudo: fmt.Sprintf("%s%d", g.faker.FirstName(), i+1)}
		if i == 0 {
			uid := userID
			p.UserID = &uid
		}
		req.Players = append(req.Players, p)
	}

	for n := 1; n <= rounds; n++ {
		ps, os := g.faker.Number(0, 100), g.faker.Number(0, 100)
		r := partiedomain.RoundInput{RoundNumber: n, PlayerScore: &ps, OpponentScore: &os}
		for i := 0; i < players; i++ {
			r.Scores = append(r.Scores, partiedomain.ScoreInput{
				PlayerID:   fmt.Sprint(i + 1),
				ScoreType:  "PRIMARY",
				ScoreName:  "Primary",
				ScoreValue: g.faker.Number(0, 15),
			})
		}
		req.Rounds = append(req.Rounds, r)
	}
	return req
}

// Shape picks a player count in [1,4] and a round count in [0,10].
func (g *TestDataGenerator) Shape() (players, rounds int) {
	return g.faker.Number(1, 4), g.faker.Number(0, 10)
}
