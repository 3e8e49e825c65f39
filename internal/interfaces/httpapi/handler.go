package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/moimsport/matchfeed/internal/platform/logging"
	"github.com/moimsport/matchfeed/internal/usecase"
)

type Handler struct {
	queryService *usecase.MatchQueryService
	syncService  *usecase.SyncService
	logger       *logging.Logger
	validator    *validator.Validate
}

func NewHandler(
	queryService *usecase.MatchQueryService,
	syncService *usecase.SyncService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		queryService: queryService,
		syncService:  syncService,
		logger:       logger,
		validator:    validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	values := r.URL.Query()
	result, err := h.queryService.Search(ctx, usecase.SearchParams{
		Sort:        values.Get("sort"),
		DateFrom:    values.Get("date_from"),
		DateTo:      values.Get("date_to"),
		Team:        values.Get("team"),
		Home:        values.Get("home"),
		Away:        values.Get("away"),
		Venue:       values.Get("venue"),
		Category:    values.Get("category"),
		Competition: values.Get("competition"),
		Page:        values.Get("page"),
		PageSize:    values.Get("page_size"),
		All:         values.Get("all"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	rows := make([]matchDTO, 0, len(result.Matches))
	for _, m := range result.Matches {
		rows = append(rows, matchToDTO(m))
	}

	writeSuccess(ctx, w, http.StatusOK, matchListDTO{
		Rows:      rows,
		Total:     result.Total,
		SortField: result.SortField,
		SortDir:   result.SortDir,
		Filters:   result.Filters,
	})
}

func (h *Handler) GetMatchByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchByID")
	defer span.End()

	matchID := r.PathValue("matchID")
	row, err := h.queryService.GetByID(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(row))
}

type syncJobRequest struct {
	Competitions []string `json:"competitions" validate:"omitempty,max=50,dive,alphanum,min=2,max=6"`
}

func (h *Handler) RunSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncJob")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeSyncJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	result := h.syncService.RunPassFor(ctx, req.Competitions)
	if !result.Started {
		h.logger.WarnContext(ctx, "sync job trigger skipped, pass already running")
	}

	writeSuccess(ctx, w, http.StatusOK, syncPassDTO{
		Started:        result.Started,
		TotalInserted:  result.TotalInserted,
		InsertedByCode: result.InsertedByCode,
		FailedCodes:    result.FailedCodes,
	})
}

func decodeSyncJobRequest(r *http.Request) (syncJobRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req syncJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return syncJobRequest{}, nil
		}
		return syncJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
