package exportservice

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	gamedb "github.com/tabletop-ledger/partie/app/modules/game/infrastructure/repositories"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	playerdb "github.com/tabletop-ledger/partie/app/modules/player/infrastructure/repositories"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	rounddb "github.com/tabletop-ledger/partie/app/modules/round/infrastructure/repositories"
	scoredomain "github.com/tabletop-ledger/partie/app/modules/score/domain"
	scoredb "github.com/tabletop-ledger/partie/app/modules/score/infrastructure/repositories"
	"github.com/tabletop-ledger/partie/app/shared/memdb"
	"github.com/tabletop-ledger/partie/app/shared/metrics"
	"github.com/xuri/excelize/v2"
)

type fixture struct {
	svc     *ExportService
	game    *gamedomain.Game
	games   *gamedb.Memory
	players *playerdb.Memory
	rounds  *rounddb.Memory
	scores  *scoredb.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memdb.NewStore()
	fx := &fixture{
		games:   gamedb.NewMemory(store),
		players: playerdb.NewMemory(store),
		rounds:  rounddb.NewMemory(store),
	}
	fx.scores = scoredb.NewMemory(store, fx.rounds)
	fx.svc = NewExportService(fx.games, fx.players, fx.rounds, fx.scores, slog.Default(), metrics.NewNoop(), nil, store)

	game, err := gamedomain.New(uuid.New(), 1, gamedomain.GameTypeNarrative, 1000, time.Now())
	require.NoError(t, err)
	require.NoError(t, game.SetMission("Scorched Earth"))
	require.NoError(t, game.Start(nil, time.Now()))
	_, err = fx.games.Save(context.Background(), nil, game)
	require.NoError(t, err)
	fx.game = game
	return fx
}

func (fx *fixture) withRounds(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	uid := int64(1)
	main, err := playerdomain.New(uuid.New(), fx.game.ID, "Warlord", &uid, time.Now())
	require.NoError(t, err)
	guest, err := playerdomain.New(uuid.New(), fx.game.ID, "Guest", nil, time.Now())
	require.NoError(t, err)
	for _, p := range []*playerdomain.Player{main, guest} {
		_, err := fx.players.Save(ctx, nil, p)
		require.NoError(t, err)
	}

	for i, scores := range [][2]int{{15, 12}, {18, 14}} {
		r, err := rounddomain.NewRound(uuid.New(), fx.game.ID, i+1, time.Now())
		require.NoError(t, err)
		require.NoError(t, r.Complete(scores[0], scores[1]))
		_, err = fx.rounds.Save(ctx, nil, r)
		require.NoError(t, err)

		s, err := scoredomain.New(uuid.New(), r.ID, main.ID, scoredomain.TypePrimary, "Primary", 10, time.Now())
		require.NoError(t, err)
		_, err = fx.scores.Save(ctx, nil, s)
		require.NoError(t, err)
		s, err = scoredomain.New(uuid.New(), r.ID, guest.ID, scoredomain.TypeSecondary, "Assassinate", 4, time.Now())
		require.NoError(t, err)
		_, err = fx.scores.Save(ctx, nil, s)
		require.NoError(t, err)
	}
}

func TestExportService_ScoreSheet(t *testing.T) {
	fx := newFixture(t)
	fx.withRounds(t)

	data, err := fx.svc.ScoreSheet(context.Background(), fx.game.ID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetRounds, SheetScores}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	values := map[string]string{}
	for _, row := range summary {
		require.Len(t, row, 2)
		values[row[0]] = row[1]
	}
	assert.Equal(t, "NARRATIVE", values["Type"])
	assert.Equal(t, "Scorched Earth", values["Mission"])
	assert.Equal(t, "33", values["Total player score"])
	assert.Equal(t, "26", values["Total opponent score"])
	assert.Equal(t, "Warlord", values["Player 1"])

	rounds, err := f.GetRows(SheetRounds)
	require.NoError(t, err)
	require.Len(t, rounds, 3)
	assert.Equal(t, []string{"Round", "Player score", "Opponent score", "Completed"}, rounds[0])
	assert.Equal(t, []string{"1", "15", "12"}, rounds[1][:3])
	assert.Equal(t, []string{"2", "18", "14"}, rounds[2][:3])

	scores, err := f.GetRows(SheetScores)
	require.NoError(t, err)
	require.Len(t, scores, 5)
	assert.Equal(t, []string{"1", "Guest", "SECONDARY", "Assassinate", "4"}, scores[2])
}

func TestExportService_ProgressionChart(t *testing.T) {
	t.Run("rounds", func(t *testing.T) {
		fx := newFixture(t)
		fx.withRounds(t)

		data, err := fx.svc.ProgressionChart(context.Background(), fx.game.ID)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 800, img.Bounds().Dx())
		assert.Equal(t, 400, img.Bounds().Dy())
	})

	t.Run("placeholder without rounds", func(t *testing.T) {
		fx := newFixture(t)

		data, err := fx.svc.ProgressionChart(context.Background(), fx.game.ID)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 400, img.Bounds().Dx())
	})
}

func TestExportService_UnknownGame(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.ScoreSheet(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gamedomain.ErrGameNotFound)

	_, err = fx.svc.ProgressionChart(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gamedomain.ErrGameNotFound)
}
