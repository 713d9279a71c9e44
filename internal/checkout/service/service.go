// Package service hosts checkout wizards server-side. Each session owns one
// wizard; every mutation loads the session, dispatches one intent on its
// controller and saves the result while holding the session's lock.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"checkout/internal/audit"
	"checkout/internal/checkout/metrics"
	"checkout/internal/checkout/models"
	"checkout/internal/checkout/pricing"
	"checkout/internal/checkout/view"
	"checkout/internal/checkout/wizard"
	dErrors "checkout/pkg/domain-errors"
	"checkout/pkg/platform/sentinel"
	"checkout/pkg/requestcontext"
)

// DefaultSessionTTL applies when no TTL option is given.
const DefaultSessionTTL = 30 * time.Minute

var tracer = otel.Tracer("checkout/internal/checkout/service")

// Store persists sessions. Find and Delete return sentinel.ErrNotFound for
// missing or expired sessions.
type Store interface {
	Save(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id models.SessionID) (*models.Session, error)
	Delete(ctx context.Context, id models.SessionID) error
}

// AuditPublisher records checkout events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Result is the session after an operation, and whether the operation
// moved the wizard to another step.
type Result struct {
	Session     *models.Session
	StepChanged bool
}

type Service struct {
	store        Store
	tx           SessionTx
	auditor      AuditPublisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	orderNumbers view.OrderNumberSource
	ttl          time.Duration
	txTimeout    time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

// WithOrderNumbers overrides the source of display order numbers.
func WithOrderNumbers(src view.OrderNumberSource) Option {
	return func(s *Service) {
		s.orderNumbers = src
	}
}

// WithSessionTTL sets the idle lifetime of a session. Every mutation
// extends it.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithTxTimeout bounds how long a mutation waits for the session lock.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.txTimeout = d
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		logger:       slog.Default(),
		orderNumbers: view.RandomOrderNumbers{},
		ttl:          DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tx = newShardedSessionTx(store, s.txTimeout)
	return s
}

// Start creates a session on the shipping step with an empty draft.
func (s *Service) Start(ctx context.Context) (_ *Result, err error) {
	ctx, span := tracer.Start(ctx, "checkout.Start")
	defer func() { endSpan(span, err) }()

	now := requestcontext.Now(ctx)
	ctrl := wizard.New()
	session := &models.Session{
		ID:        models.NewSessionID(),
		Wizard:    ctrl.State(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	span.SetAttributes(attribute.String("checkout.session_id", session.ID.String()))
	ctx = requestcontext.WithSessionID(ctx, session.ID.String())

	if err := s.store.Save(ctx, session); err != nil {
		return nil, translateStoreError(err)
	}

	s.metrics.IncrementSessionsStarted()
	s.emit(ctx, audit.Event{Action: audit.ActionCheckoutStarted})
	s.logger.InfoContext(ctx, "checkout session started",
		"session_id", session.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &Result{Session: session}, nil
}

// Get returns the session without touching it.
func (s *Service) Get(ctx context.Context, id models.SessionID) (_ *Result, err error) {
	ctx, span := startSpan(ctx, "checkout.Get", id)
	defer func() { endSpan(span, err) }()

	session, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return &Result{Session: session}, nil
}

// Edit applies field edits to the form on the current step.
func (s *Service) Edit(ctx context.Context, id models.SessionID, edits []models.FieldEdit) (_ *Result, err error) {
	ctx, span := startSpan(ctx, "checkout.Edit", id)
	defer func() { endSpan(span, err) }()

	if len(edits) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one edit is required")
	}
	res, _, err := s.dispatch(ctx, id, wizard.EditFields{Edits: edits})
	return res, err
}

// Submit completes the current step. A rejected submit returns a
// validation error carrying the offending fields and leaves the session
// unchanged.
func (s *Service) Submit(ctx context.Context, id models.SessionID) (_ *Result, err error) {
	ctx, span := startSpan(ctx, "checkout.Submit", id)
	defer func() { endSpan(span, err) }()

	res, out, err := s.dispatch(ctx, id, wizard.Submit{})
	if err != nil {
		return nil, err
	}

	switch {
	case out.Rejected():
		fields := out.Errors.Fields()
		s.metrics.ObserveValidationFailure(out.From, fields)
		s.emit(ctx, audit.Event{
			Action:   audit.ActionStepRejected,
			FromStep: int(out.From),
			ToStep:   int(out.To),
			Fields:   fields,
		})
		s.logger.InfoContext(ctx, "checkout step rejected",
			"session_id", id.String(),
			"step", out.From.String(),
			"fields", fields,
		)
		return nil, dErrors.NewValidation("please correct the highlighted fields", out.Errors)
	case out.To == models.StepConfirmation:
		session := res.Session
		if b, perr := pricing.Compute(session.Wizard.Draft.Shipping.Price); perr == nil {
			s.metrics.ObserveOrderPlaced(b.Total.InexactFloat64())
		}
		s.emit(ctx, audit.Event{
			Action:      audit.ActionOrderPlaced,
			FromStep:    int(out.From),
			ToStep:      int(out.To),
			OrderNumber: session.OrderNumber,
		})
		s.logger.InfoContext(ctx, "checkout order placed",
			"session_id", id.String(),
			"order_number", session.OrderNumber,
		)
	default:
		s.emit(ctx, audit.Event{
			Action:   audit.ActionStepAdvanced,
			FromStep: int(out.From),
			ToStep:   int(out.To),
		})
	}
	return res, nil
}

// Previous goes back one step. It is a no-op on the shipping and
// confirmation steps.
func (s *Service) Previous(ctx context.Context, id models.SessionID) (_ *Result, err error) {
	ctx, span := startSpan(ctx, "checkout.Previous", id)
	defer func() { endSpan(span, err) }()

	res, out, err := s.dispatch(ctx, id, wizard.Previous{})
	if err != nil {
		return nil, err
	}
	if out.Moved() {
		s.emit(ctx, audit.Event{
			Action:   audit.ActionStepRetreated,
			FromStep: int(out.From),
			ToStep:   int(out.To),
		})
	}
	return res, nil
}

// Reset starts the session over with an empty draft on the shipping step.
func (s *Service) Reset(ctx context.Context, id models.SessionID) (_ *Result, err error) {
	ctx, span := startSpan(ctx, "checkout.Reset", id)
	defer func() { endSpan(span, err) }()

	res, out, err := s.dispatch(ctx, id, wizard.Reset{})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{
		Action:   audit.ActionCheckoutReset,
		FromStep: int(out.From),
		ToStep:   int(out.To),
	})
	return res, nil
}

// Delete abandons the session.
func (s *Service) Delete(ctx context.Context, id models.SessionID) (err error) {
	ctx, span := startSpan(ctx, "checkout.Delete", id)
	defer func() { endSpan(span, err) }()

	err = s.tx.RunInTx(ctx, id, func(store Store) error {
		return store.Delete(ctx, id)
	})
	if err != nil {
		return translateError(err)
	}
	s.emit(ctx, audit.Event{Action: audit.ActionCheckoutDeleted})
	return nil
}

// dispatch runs one intent against the stored session. Rejected submits
// are not saved since they change nothing.
func (s *Service) dispatch(ctx context.Context, id models.SessionID, in wizard.Intent) (*Result, wizard.Outcome, error) {
	var (
		res *Result
		out wizard.Outcome
	)
	err := s.tx.RunInTx(ctx, id, func(store Store) error {
		session, err := store.Find(ctx, id)
		if err != nil {
			return err
		}
		stepChanged := false
		ctrl, err := wizard.Restore(session.Wizard, wizard.WithStepChangeHook(func(from, to models.Step) {
			stepChanged = true
			s.logger.DebugContext(ctx, "checkout step changed",
				"from", from.String(),
				"to", to.String(),
			)
		}))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "stored checkout state is invalid")
		}

		out, err = ctrl.Dispatch(in)
		if err != nil {
			return err
		}
		if out.Rejected() {
			return nil
		}

		if out.To == models.StepConfirmation && out.Moved() {
			session.OrderNumber = s.orderNumbers.Next()
		}
		if _, ok := in.(wizard.Reset); ok {
			session.OrderNumber = 0
		}
		now := requestcontext.Now(ctx)
		session.Wizard = ctrl.State()
		session.UpdatedAt = now
		session.ExpiresAt = now.Add(s.ttl)
		if err := store.Save(ctx, session); err != nil {
			return err
		}
		res = &Result{Session: session, StepChanged: stepChanged}
		return nil
	})
	if err != nil {
		return nil, wizard.Outcome{}, translateError(err)
	}
	s.metrics.ObserveTransition(out.From, out.To)
	return res, out, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", string(event.Action),
			"session_id", requestcontext.SessionID(ctx),
		)
	}
}

func translateError(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, wizard.ErrEditNotAllowed), errors.Is(err, wizard.ErrSubmitNotAllowed):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, err.Error())
	case errors.Is(err, wizard.ErrUnknownIntent):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "unsupported action")
	default:
		return translateStoreError(err)
	}
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "checkout session not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access checkout session")
	}
}

// startSpan also scopes ctx to the session so audit events pick it up.
func startSpan(ctx context.Context, name string, id models.SessionID) (context.Context, trace.Span) {
	ctx = requestcontext.WithSessionID(ctx, id.String())
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("checkout.session_id", id.String()),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
