package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"checkout/internal/checkout/models"
	"checkout/internal/checkout/service"
	"checkout/internal/checkout/validation"
	"checkout/internal/checkout/view"
	"checkout/internal/platform/metrics"
	"checkout/internal/platform/middleware"
	dErrors "checkout/pkg/domain-errors"
	"checkout/pkg/platform/httputil"
)

const maxRequestBody = 64 << 10

// Service defines the interface for checkout operations.
type Service interface {
	Start(ctx context.Context) (*service.Result, error)
	Get(ctx context.Context, id models.SessionID) (*service.Result, error)
	Edit(ctx context.Context, id models.SessionID, edits []models.FieldEdit) (*service.Result, error)
	Submit(ctx context.Context, id models.SessionID) (*service.Result, error)
	Previous(ctx context.Context, id models.SessionID) (*service.Result, error)
	Reset(ctx context.Context, id models.SessionID) (*service.Result, error)
	Delete(ctx context.Context, id models.SessionID) error
}

// Handler serves the checkout wizard over HTTP. Every successful response
// is the rendered page for the session's current step.
type Handler struct {
	logger         *slog.Logger
	checkout       Service
	metrics        *metrics.Metrics
	requestTimeout time.Duration
	startLimit     func(http.Handler) http.Handler
}

// New creates a new checkout Handler.
func New(checkout Service, logger *slog.Logger, metrics *metrics.Metrics, requestTimeout time.Duration) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Handler{
		logger:         logger,
		checkout:       checkout,
		metrics:        metrics,
		requestTimeout: requestTimeout,
	}
}

// LimitStarts guards session creation with mw. Other routes are not
// throttled since they only touch an existing session.
func (h *Handler) LimitStarts(mw func(http.Handler) http.Handler) {
	h.startLimit = mw
}

// Register registers the checkout routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	checkoutRouter := chi.NewRouter()
	checkoutRouter.Use(middleware.Recovery(h.logger))
	checkoutRouter.Use(middleware.RequestID)
	checkoutRouter.Use(middleware.Logger(h.logger))
	checkoutRouter.Use(middleware.Timeout(h.requestTimeout))
	checkoutRouter.Use(middleware.ContentTypeJSON)
	checkoutRouter.Use(middleware.LatencyMiddleware(h.metrics))

	if h.startLimit != nil {
		checkoutRouter.With(h.startLimit).Post("/sessions", h.handleStart)
	} else {
		checkoutRouter.Post("/sessions", h.handleStart)
	}
	checkoutRouter.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Delete("/", h.handleDelete)
		r.Patch("/fields", h.handleEditFields)
		r.Post("/submit", h.handleSubmit)
		r.Post("/previous", h.handlePrevious)
		r.Post("/reset", h.handleReset)
	})

	r.Mount("/checkout", checkoutRouter)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	res, err := h.checkout.Start(r.Context())
	if err != nil {
		h.writeError(w, r, "failed to start checkout", err)
		return
	}
	h.writePage(w, http.StatusCreated, res)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	res, err := h.checkout.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "failed to load checkout", err)
		return
	}
	h.writePage(w, http.StatusOK, res)
}

func (h *Handler) handleEditFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req EditFieldsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid edit fields request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.writeError(w, r, "invalid edit fields request", err)
		return
	}
	edits, err := req.ToEdits()
	if err != nil {
		h.writeError(w, r, "invalid edit fields request", err)
		return
	}

	res, err := h.checkout.Edit(ctx, id, edits)
	if err != nil {
		h.writeError(w, r, "failed to edit checkout fields", err)
		return
	}
	h.writePage(w, http.StatusOK, res)
}

// rejectedPage is the 422 body of a failed submit: the error envelope plus
// the current step re-rendered with its field errors.
type rejectedPage struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	view.Page
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	res, err := h.checkout.Submit(ctx, id)
	if err == nil {
		h.writePage(w, http.StatusOK, res)
		return
	}
	if !dErrors.Is(err, dErrors.CodeValidation) {
		h.writeError(w, r, "failed to submit checkout step", err)
		return
	}

	// A rejected submit leaves the session untouched, so the stored state
	// is the form the errors belong to.
	current, getErr := h.checkout.Get(ctx, id)
	if getErr != nil {
		h.writeError(w, r, "failed to submit checkout step", getErr)
		return
	}
	h.logger.WarnContext(ctx, "checkout step rejected",
		"request_id", middleware.GetRequestID(ctx),
		"step", current.Session.Wizard.Step.String(),
	)
	body := rejectedPage{
		Error: string(dErrors.CodeValidation),
		Page: view.Render(view.Input{
			Session: current.Session,
			Errors:  validation.ErrorSet(dErrors.FieldsOf(err)),
		}),
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		body.ErrorDescription = de.Message
	}
	httputil.WriteJSON(w, http.StatusUnprocessableEntity, body)
}

func (h *Handler) handlePrevious(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to go back", h.checkout.Previous)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "failed to reset checkout", h.checkout.Reset)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.checkout.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, "failed to delete checkout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	failure string,
	op func(context.Context, models.SessionID) (*service.Result, error),
) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	res, err := op(r.Context(), id)
	if err != nil {
		h.writeError(w, r, failure, err)
		return
	}
	h.writePage(w, http.StatusOK, res)
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (models.SessionID, bool) {
	id, err := models.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session id"))
		return models.SessionID{}, false
	}
	return id, true
}

func (h *Handler) writePage(w http.ResponseWriter, status int, res *service.Result) {
	page := view.Render(view.Input{Session: res.Session, StepChanged: res.StepChanged})
	httputil.WriteJSON(w, status, page)
}

// writeError logs client errors at warn and everything else at error,
// then translates err to its HTTP response.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	attrs := []any{
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeNotFound, dErrors.CodeInvalidState:
		h.logger.WarnContext(ctx, msg, attrs...)
	default:
		h.logger.ErrorContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
