package partieservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gameservice "github.com/tabletop-ledger/partie/app/modules/game/application"
	gamedomain "github.com/tabletop-ledger/partie/app/modules/game/domain"
	partiedomain "github.com/tabletop-ledger/partie/app/modules/partie/domain"
	playerservice "github.com/tabletop-ledger/partie/app/modules/player/application"
	playerdomain "github.com/tabletop-ledger/partie/app/modules/player/domain"
	roundservice "github.com/tabletop-ledger/partie/app/modules/round/application"
	rounddomain "github.com/tabletop-ledger/partie/app/modules/round/domain"
	scoreservice "github.com/tabletop-ledger/partie/app/modules/score/application"
	"github.com/tabletop-ledger/partie/app/shared/apperrors"
	"github.com/tabletop-ledger/partie/app/shared/eventbus"
	"github.com/tabletop-ledger/partie/app/shared/metrics"
	"github.com/tabletop-ledger/partie/app/shared/observability/attr"
	"github.com/tabletop-ledger/partie/app/shared/txn"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Collaborator names carried by coordination errors.
const (
	sourceName   = "PartieOrchestrator"
	gameTarget   = "GameService"
	playerTarget = "PlayerService"
	roundTarget  = "RoundService"
	scoreTarget  = "ScoreService"
)

// GameCreator is the part of the game service the orchestrator drives.
type GameCreator interface {
	CreateGame(ctx context.Context, req gameservice.CreateGameRequest) (*gamedomain.Game, error)
	StartGame(ctx context.Context, gameID uuid.UUID, mission *string, requestingUserID int64) (*gamedomain.Game, error)
}

type PlayerAdder interface {
	AddPlayer(ctx context.Context, req playerservice.AddPlayerRequest) (*playerdomain.Player, error)
}

type RoundCreator interface {
	CreateRound(ctx context.Context, req roundservice.CreateRoundRequest) (*rounddomain.Round, error)
}

type ScoreRecorder interface {
	AddScore(ctx context.Context, req scoreservice.AddScoreRequest) (*scoreservice.ScoreResponse, error)
}

// Options tunes an Orchestrator. TransactionTimeout is advisory and only
// logged; MaxRetries is carried for operators and never acted upon.
type Options struct {
	TransactionTimeout      time.Duration
	MaxRetries              int
	ValidateCrossReferences bool
}

func DefaultOptions() Options {
	return Options{
		TransactionTimeout:      30 * time.Second,
		MaxRetries:              0,
		ValidateCrossReferences: true,
	}
}

// Orchestrator creates a game with its players, rounds and scores as one
// unit of work. It performs no compensation of its own: every step runs
// inside the transaction opened through tx, and any failure rolls all of
// them back.
type Orchestrator struct {
	games     GameCreator
	players   PlayerAdder
	rounds    RoundCreator
	scores    ScoreRecorder
	tx        txn.Transactor
	publisher eventbus.Publisher
	logger    *slog.Logger
	metrics   metrics.OperationMetrics
	tracer    trace.Tracer
	opts      Options
}

func NewOrchestrator(
	games GameCreator,
	players PlayerAdder,
	rounds RoundCreator,
	scores ScoreRecorder,
	tx txn.Transactor,
	publisher eventbus.Publisher,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	opts Options,
) *Orchestrator {
	if tx == nil {
		tx = txn.Passthrough{}
	}
	if publisher == nil {
		publisher = eventbus.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("partie")
	}
	return &Orchestrator{
		games:     games,
		players:   players,
		rounds:    rounds,
		scores:    scores,
		tx:        tx,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		tracer:    tracer,
		opts:      opts,
	}
}

// CreatePartie validates req, then runs the creation steps in order. Input
// errors are returned before anything is written. Step failures come back
// as coordination or business-rule errors; anything else is reported as a
// transaction error, or a timeout when ctx expired.
func (o *Orchestrator) CreatePartie(ctx context.Context, req partiedomain.CreatePartieRequest) (*partiedomain.Result, error) {
	ctx, span := o.tracer.Start(ctx, "PartieOrchestrator.CreatePartie", trace.WithAttributes(
		attribute.Int64("user_id", req.UserID),
		attribute.Int("players", len(req.Players)),
		attribute.Int("rounds", len(req.Rounds)),
	))
	defer span.End()

	o.metrics.RecordOperationAttempt(ctx, "CreatePartie", sourceName)
	start := time.Now()
	defer func() {
		o.metrics.RecordOperationDuration(ctx, "CreatePartie", sourceName, time.Since(start))
	}()

	cmd, err := partiedomain.Validate(req)
	if err != nil {
		o.logger.WarnContext(ctx, "Partie request rejected",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("user_id", req.UserID),
			attr.Error(err),
		)
		o.metrics.RecordOperationFailure(ctx, "CreatePartie", sourceName)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	run := newSaga(o, cmd)
	err = o.tx.RunInTx(ctx, func(ctx context.Context, _ bun.IDB) error {
		return run.execute(ctx)
	})
	o.logHistory(ctx, run, err, time.Since(start))

	if err != nil {
		err = o.classify(ctx, run, err)
		o.metrics.RecordOperationFailure(ctx, "CreatePartie", sourceName)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result := run.result()
	o.publishCreated(ctx, cmd, result)
	o.metrics.RecordOperationSuccess(ctx, "CreatePartie", sourceName)
	span.SetAttributes(attribute.String("game_id", result.GameID.String()))
	return result, nil
}

// classify maps a failed run to the error returned to the caller.
func (o *Orchestrator) classify(ctx context.Context, run *saga, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.Timeout("orchestration_timeout", "orchestration deadline exceeded", err, "step", run.failedStep)
	}
	if appErr, ok := apperrors.As(err); ok {
		switch appErr.Kind {
		case apperrors.KindCoordination, apperrors.KindBusinessRule, apperrors.KindTransaction:
			return err
		}
	}
	return apperrors.Transaction(run.failedStep, true, err, run.counts()...)
}

func (o *Orchestrator) publishCreated(ctx context.Context, cmd *partiedomain.Command, result *partiedomain.Result) {
	payload := eventbus.PartieCreatedPayload{
		GameID:             result.GameID,
		UserID:             cmd.UserID,
		Players:            len(result.Players),
		Rounds:             len(result.Rounds),
		Scores:             len(result.Scores),
		TotalPlayerScore:   result.Summary.TotalPlayerScore,
		TotalOpponentScore: result.Summary.TotalOpponentScore,
	}
	txn.AfterCommit(ctx, func(ctx context.Context) {
		if err := o.publisher.PublishJSON(ctx, eventbus.PartieCreatedTopic, payload); err != nil {
			o.logger.WarnContext(ctx, "Failed to publish partie created",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("game_id", result.GameID),
				attr.Error(err),
			)
		}
	})
}

func (o *Orchestrator) logHistory(ctx context.Context, run *saga, err error, elapsed time.Duration) {
	attrs := []any{
		attr.ExtractCorrelationID(ctx),
		attr.Bool("success", err == nil),
		attr.Duration("duration", elapsed),
		attr.Duration("transaction_timeout", o.opts.TransactionTimeout),
		attr.Int("max_retries", o.opts.MaxRetries),
		slog.Group("steps", run.history.attrs()...),
	}
	if run.game != nil {
		attrs = append(attrs, attr.UUID("game_id", run.game.ID))
	}
	if err != nil {
		attrs = append(attrs, attr.String("failed_step", run.failedStep), attr.Error(err))
		o.logger.ErrorContext(ctx, "Partie orchestration failed", attrs...)
		return
	}
	if o.opts.TransactionTimeout > 0 && elapsed > o.opts.TransactionTimeout {
		o.logger.WarnContext(ctx, "Partie orchestration exceeded advisory transaction timeout", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "Partie orchestration completed", attrs...)
}
