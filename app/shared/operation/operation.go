// Package operation holds the telemetry and transaction wrappers every
// application service runs its operations through.
package operation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabletop-ledger/partie/app/shared/metrics"
	"github.com/tabletop-ledger/partie/app/shared/observability/attr"
	"github.com/tabletop-ledger/partie/app/shared/results"
	"github.com/tabletop-ledger/partie/app/shared/txn"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Runner carries the collaborators shared by the operations of one service.
type Runner struct {
	service string
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	tracer  trace.Tracer
	tx      txn.Transactor
}

// NewRunner builds a Runner. Nil collaborators fall back to harmless defaults.
func NewRunner(service string, logger *slog.Logger, m metrics.OperationMetrics, tracer trace.Tracer, tx txn.Transactor) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	if tx == nil {
		tx = txn.Passthrough{}
	}
	return &Runner{
		service: service,
		logger:  logger,
		metrics: m,
		tracer:  tracer,
		tx:      tx,
	}
}

func (r *Runner) Logger() *slog.Logger { return r.logger }

func (r *Runner) Tracer() trace.Tracer { return r.tracer }

func (r *Runner) Transactor() txn.Transactor { return r.tx }

// Func is the signature of a wrapped operation.
type Func[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// TxFunc is the signature of an operation body that runs inside a transaction.
type TxFunc[S any, F any] func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error)

// WithTelemetry wraps op with a span, metrics, logging and panic recovery.
func WithTelemetry[S any, F any](
	r *Runner,
	ctx context.Context,
	operationName string,
	identifier string,
	op Func[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.Start(ctx, r.service+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("service", r.service),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	r.metrics.RecordOperationAttempt(ctx, operationName, r.service)

	startTime := time.Now()
	defer func() {
		r.metrics.RecordOperationDuration(ctx, operationName, r.service, time.Since(startTime))
	}()

	r.logger.InfoContext(ctx, operationName+" triggered",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, rec)
			r.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			r.metrics.RecordOperationFailure(ctx, operationName, r.service)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		r.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		r.metrics.RecordOperationFailure(ctx, operationName, r.service)
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	if result.IsFailure() {
		r.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
		r.metrics.RecordOperationFailure(ctx, operationName, r.service)
		return result, nil
	}

	r.logger.InfoContext(ctx, operationName+" completed successfully",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)
	r.metrics.RecordOperationSuccess(ctx, operationName, r.service)

	return result, nil
}

// errFailureResult makes the transactor discard the writes of an operation
// that ended with a failure result. RunInTx never returns it.
var errFailureResult = errors.New("operation returned a failure result")

// RunInTx runs fn inside the runner's transactional scope, joining one that
// is already open on ctx. A failure result rolls the scope back like an
// error does; a joined scope is left to its owner.
func RunInTx[S any, F any](r *Runner, ctx context.Context, fn TxFunc[S, F]) (results.OperationResult[S, F], error) {
	var result results.OperationResult[S, F]
	err := r.tx.RunInTx(ctx, func(ctx context.Context, db bun.IDB) error {
		var txErr error
		result, txErr = fn(ctx, db)
		if txErr != nil {
			return txErr
		}
		if result.IsFailure() {
			return errFailureResult
		}
		return nil
	})
	if errors.Is(err, errFailureResult) {
		return result, nil
	}
	return result, err
}

// Execute runs fn transactionally under telemetry and collapses the two
// result channels into a single error, the way public service methods
// expose them.
func Execute[S any](r *Runner, ctx context.Context, operationName, identifier string, fn TxFunc[S, error]) (S, error) {
	result, err := WithTelemetry(r, ctx, operationName, identifier, func(ctx context.Context) (results.OperationResult[S, error], error) {
		return RunInTx(r, ctx, fn)
	})
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}
