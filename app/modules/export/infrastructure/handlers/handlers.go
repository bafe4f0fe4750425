package exporthandlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	exportservice "github.com/tabletop-ledger/partie/app/modules/export/application"
	"github.com/tabletop-ledger/partie/app/shared/httpx"
	"go.opentelemetry.io/otel/trace"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePNG  = "image/png"
)

type ExportHandlers struct {
	service exportservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewExportHandlers(service exportservice.Service, logger *slog.Logger, tracer trace.Tracer) *ExportHandlers {
	return &ExportHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

func (h *ExportHandlers) Routes(r chi.Router) {
	r.Get("/api/games/{gameID}/export.xlsx", h.HandleScoreSheet)
	r.Get("/api/games/{gameID}/chart.png", h.HandleProgressionChart)
}

func (h *ExportHandlers) HandleScoreSheet(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ExportHandlers.HandleScoreSheet")
	defer span.End()

	gameID, err := httpx.UUIDParam(r, "gameID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	data, err := h.service.ScoreSheet(ctx, gameID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="partie-`+gameID.String()+`.xlsx"`)
	writeFile(w, ContentTypeXLSX, data)
}

func (h *ExportHandlers) HandleProgressionChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ExportHandlers.HandleProgressionChart")
	defer span.End()

	gameID, err := httpx.UUIDParam(r, "gameID")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	data, err := h.service.ProgressionChart(ctx, gameID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	writeFile(w, ContentTypePNG, data)
}

func writeFile(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
