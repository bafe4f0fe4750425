package partiehandlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	partiedomain "github.com/tabletop-ledger/partie/app/modules/partie/domain"
	"github.com/tabletop-ledger/partie/app/shared/httpx"
	"github.com/tabletop-ledger/partie/app/shared/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// Creator runs a partie orchestration.
type Creator interface {
	CreatePartie(ctx context.Context, req partiedomain.CreatePartieRequest) (*partiedomain.Result, error)
}

type PartieHandlers struct {
	orchestrator Creator
	logger       *slog.Logger
	tracer       trace.Tracer
}

func NewPartieHandlers(orchestrator Creator, logger *slog.Logger, tracer trace.Tracer) *PartieHandlers {
	return &PartieHandlers{orchestrator: orchestrator, logger: logger, tracer: tracer}
}

func (h *PartieHandlers) Routes(r chi.Router) {
	r.Post("/api/parties", h.HandleCreatePartie)
}

// HandleCreatePartie creates a whole match in one request. The requesting
// user is always the authenticated one; userId defaults to it when omitted.
func (h *PartieHandlers) HandleCreatePartie(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PartieHandlers.HandleCreatePartie")
	defer span.End()

	requester, ok := httpx.Requester(w, r)
	if !ok {
		return
	}
	var req partiedomain.CreatePartieRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	req.RequestingUserID = requester
	if req.UserID == 0 {
		req.UserID = requester
	}

	result, err := h.orchestrator.CreatePartie(ctx, req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "Partie created",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("game_id", result.GameID),
		attr.Int("players", len(result.Players)),
		attr.Int("rounds", len(result.Rounds)),
	)
	httpx.WriteJSON(w, http.StatusCreated, result)
}
