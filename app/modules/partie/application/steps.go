package partieservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gameservice "github.com/tabletop-ledger/partie/app/modules/game/application"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	partiedomain "github.com/tabletop-ledger/partie/app/modules/partie/domain"
	playerservice "github.com/tabletop-ledger/partie/app/modules/player/application"
	roundservice "github.com/tabletop-ledger/partie/app/modules/round/application"
	scoreservice "github.com/tabletop-ledger/partie/app/modules/score/application"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
	"go.opentelemetry.io/otel/codes"
)

const (
	StepCreatePartie            = "create_partie"
	StepCreatePlayers           = "create_players"
	StepStartGame               = "start_game"
	StepCreateRoundsAndScores   = "create_rounds_and_scores"
	StepValidateCrossReferences = "validate_cross_references"
)

// StepRecord is the outcome of one step.
type StepRecord struct {
	Name     string
	Success  bool
	Started  time.Time
	Duration time.Duration
	Error    string
}

type history []StepRecord

func (h history) attrs() []any {
	out := make([]any, 0, len(h))
	for i, r := range h {
		fields := []any{
			slog.String("name", r.Name),
			slog.Bool("success", r.Success),
			slog.Duration("duration", r.Duration),
		}
		if r.Error != "" {
			fields = append(fields, slog.String("error", r.Error))
		}
		out = append(out, slog.Group(fmt.Sprint(i+1), fields...))
	}
	return out
}

type step struct {
	name string
	run  func(ctx context.Context) error
	skip bool
}

// saga holds the state of one orchestration. A fresh one is built per call.
type saga struct {
	o   *Orchestrator
	cmd *partiedomain.Command

	game    *gamedomain.Game
	players []partiedomain.PlayerResult
	rounds  []partiedomain.RoundResult
	scores  []partiedomain.ScoreResult

	history    history
	failedStep string
}

func newSaga(o *Orchestrator, cmd *partiedomain.Command) *saga {
	return &saga{o: o, cmd: cmd}
}

func (s *saga) steps() []step {
	return []step{
		{name: StepCreatePartie, run: s.createPartie},
		{name: StepCreatePlayers, run: s.createPlayers},
		{name: StepStartGame, run: s.startGame, skip: !s.cmd.HasRounds()},
		{name: StepCreateRoundsAndScores, run: s.createRoundsAndScores, skip: !s.cmd.HasRounds()},
		{name: StepValidateCrossReferences, run: s.validateCrossReferences, skip: !s.o.opts.ValidateCrossReferences},
	}
}

func (s *saga) execute(ctx context.Context) error {
	for _, st := range s.steps() {
		if st.skip {
			continue
		}
		if err := s.runStep(ctx, st); err != nil {
			s.failedStep = st.name
			return err
		}
	}
	return nil
}

// runStep runs one step under its own span and records its outcome.
func (s *saga) runStep(ctx context.Context, st step) error {
	ctx, span := s.o.tracer.Start(ctx, "PartieOrchestrator."+st.name)
	defer span.End()

	rec := StepRecord{Name: st.name, Started: time.Now()}
	err := st.run(ctx)
	rec.Duration = time.Since(rec.Started)
	rec.Success = err == nil
	if err != nil {
		rec.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.history = append(s.history, rec)
	s.o.metrics.RecordStep(ctx, st.name, rec.Success, rec.Duration)
	return err
}

func (s *saga) counts() []any {
	return []any{
		"players_created", len(s.players),
		"rounds_created", len(s.rounds),
		"scores_created", len(s.scores),
	}
}

// coordination wraps a collaborator failure, keeping its message.
func (s *saga) coordination(step, target string, cause error, kv ...any) error {
	kv = append(kv, s.counts()...)
	return apperrors.Coordination(step, sourceName, target, cause.Error(), cause, kv...)
}

func (s *saga) createPartie(ctx context.Context) error {
	game, err := s.o.games.CreateGame(ctx, gameservice.CreateGameRequest{
		UserID:           s.cmd.UserID,
		GameType:         string(s.cmd.GameType),
		PointsLimit:      int(s.cmd.PointsLimit),
		OpponentID:       s.cmd.OpponentID,
		Mission:          s.cmd.Mission,
		RequestingUserID: s.cmd.RequestingUserID,
	})
	if err != nil {
		return s.coordination(StepCreatePartie, gameTarget, err)
	}
	s.game = game
	return nil
}

func (s *saga) createPlayers(ctx context.Context) error {
	for _, p := range s.cmd.Players {
		player, err := s.o.players.AddPlayer(ctx, playerservice.AddPlayerRequest{
			GameID:           s.game.ID,
			Pseudo:           p.Pseudo,
			UserID:           p.UserID,
			RequestingUserID: s.cmd.RequestingUserID,
		})
		if err != nil {
			return s.coordination(StepCreatePlayers, playerTarget, err, "pseudo", p.Pseudo)
		}
		s.players = append(s.players, partiedomain.PlayerResult{
			ID:      player.ID,
			Pseudo:  player.Pseudo,
			IsGuest: player.IsGuest,
			UserID:  player.UserID,
		})
	}
	return nil
}

func (s *saga) startGame(ctx context.Context) error {
	game, err := s.o.games.StartGame(ctx, s.game.ID, nil, s.cmd.RequestingUserID)
	if err != nil {
		return s.coordination(StepStartGame, gameTarget, err)
	}
	s.game = game
	return nil
}

func (s *saga) createRoundsAndScores(ctx context.Context) error {
	for _, r := range s.cmd.Rounds {
		req := roundservice.CreateRoundRequest{
			GameID:           s.game.ID,
			Number:           r.Number,
			RequestingUserID: s.cmd.RequestingUserID,
		}
		if r.PlayerScore != nil && r.OpponentScore != nil {
			req.PlayerScore, req.OpponentScore = r.PlayerScore, r.OpponentScore
		}
		round, err := s.o.rounds.CreateRound(ctx, req)
		if err != nil {
			return s.coordination(StepCreateRoundsAndScores, roundTarget, err, "round_number", r.Number)
		}
		s.rounds = append(s.rounds, partiedomain.RoundResult{
			ID:            round.ID,
			GameID:        round.GameID,
			RoundNumber:   round.Number,
			PlayerScore:   round.PlayerScore,
			OpponentScore: round.OpponentScore,
			IsCompleted:   round.IsCompleted,
		})

		for _, sc := range r.Scores {
			playerID := s.playerAt(sc.PlayerIndex)
			resp, err := s.o.scores.AddScore(ctx, scoreservice.AddScoreRequest{
				RoundID:          round.ID,
				PlayerID:         playerID,
				Type:             string(sc.Type),
				Name:             sc.Name,
				Value:            sc.Value,
				RequestingUserID: s.cmd.RequestingUserID,
			})
			if err != nil {
				return s.coordination(StepCreateRoundsAndScores, scoreTarget, err, "round_number", r.Number, "player_index", sc.PlayerIndex+1)
			}
			s.scores = append(s.scores, partiedomain.ScoreResult{
				ID:         resp.Score.ID,
				RoundID:    resp.Score.RoundID,
				PlayerID:   resp.Score.PlayerID,
				ScoreType:  resp.Score.Type,
				ScoreName:  resp.Score.Name,
				ScoreValue: resp.Score.Value,
			})
		}
	}
	return nil
}

// playerAt maps a validated 0-based player index to the created player.
func (s *saga) playerAt(index int) uuid.UUID {
	if index < 0 || index >= len(s.players) {
		return uuid.Nil
	}
	return s.players[index].ID
}

func (s *saga) validateCrossReferences(context.Context) error {
	return partiedomain.CheckCrossReferences(s.game.ID, s.players, s.rounds, s.scores)
}

func (s *saga) result() *partiedomain.Result {
	mission := s.cmd.Mission
	if s.game != nil && s.game.Mission != nil {
		mission = s.game.Mission
	}
	players := s.players
	if players == nil {
		players = []partiedomain.PlayerResult{}
	}
	rounds := s.rounds
	if rounds == nil {
		rounds = []partiedomain.RoundResult{}
	}
	scores := s.scores
	if scores == nil {
		scores = []partiedomain.ScoreResult{}
	}
	return &partiedomain.Result{
		PartieID: s.game.ID,
		GameID:   s.game.ID,
		Players:  players,
		Rounds:   rounds,
		Scores:   scores,
		Summary:  partiedomain.Summarize(rounds, mission),
	}
}
