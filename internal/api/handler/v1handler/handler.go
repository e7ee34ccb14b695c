// Package v1handler implements the v1 HTTP API: run submission and
// inspection, trained policies and the barangay catalogue.
package v1handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"wastepolicy/internal/runner"
	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/serrors"
)

const instrumentation = "wastepolicy/internal/api/handler/v1handler"

// Deps are the services backing the API.
type Deps struct {
	Runner   runner.Runner
	Profiles []domain.BarangayProfile
}

type Handler struct {
	deps Deps

	tracer     trace.Tracer
	operations metric.Int64Counter
}

// New creates a handler instrumented with the global OpenTelemetry providers.
func New(deps Deps) *Handler {
	operations, err := otel.Meter(instrumentation).Int64Counter("wastepolicy.api.operations",
		metric.WithDescription("Number of v1 API operations by name and status code."))
	if err != nil {
		operations = noop.Int64Counter{}
	}

	return &Handler{
		deps:       deps,
		tracer:     otel.Tracer(instrumentation),
		operations: operations,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string
	Message string
}

func (r ErrorResponse) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(r.Code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(r.Message) })
	})
}

// ErrorStatusCode pairs an ErrorResponse with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

// NewError maps err to its HTTP representation. Internal failures are
// logged and never leak their cause.
func (h Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	kind := serrors.KindOf(err)
	res := &ErrorStatusCode{
		StatusCode: serrors.HTTPStatus(err),
		Response:   ErrorResponse{Code: kind.Error()},
	}

	var serr *serrors.Error
	hasMsg := errors.As(err, &serr) && serr.Message() != ""
	switch {
	case errors.Is(kind, serrors.ErrInternal):
		logger.Error(ctx, "request failed", zap.Error(err))
		res.Response.Message = "internal error"
	case hasMsg:
		logger.Debug(ctx, "request rejected", zap.Error(err))
		res.Response.Message = serr.Message()
	case errors.Is(kind, serrors.ErrNotFound):
		res.Response.Message = "resource not found"
	default:
		res.Response.Message = kind.Error()
	}

	return res
}

// response is what an operation answers with. A nil body sends no content.
type response struct {
	status int
	body   func(e *jx.Encoder)
}

func ok(body func(e *jx.Encoder)) response { return response{status: http.StatusOK, body: body} }

type operation func(ctx context.Context, r *http.Request) (response, error)

// op authenticates, traces and counts a single API operation.
func (h Handler) op(name string, sec *SecHandler, fn operation) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), name, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		ctx = logger.WithFields(ctx, zap.String("operation", name))

		var res response
		ctx, err := sec.HandleBearerAuth(ctx, name, bearer(r))
		if err == nil {
			res, err = fn(ctx, r)
		}
		if err != nil {
			e := h.NewError(ctx, err)
			span.SetStatus(codes.Error, e.Response.Message)
			res = response{status: e.StatusCode, body: e.Response.encode}
		}

		h.operations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", name),
			attribute.Int("code", res.status),
		))
		write(ctx, w, res)
	})
}

func write(ctx context.Context, w http.ResponseWriter, res response) {
	if res.body == nil {
		w.WriteHeader(res.status)

		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	res.body(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.status)
	if _, err := e.WriteTo(w); err != nil {
		logger.Debug(ctx, "could not write response", zap.Error(err))
	}
}

// Routes returns the v1 API mux. Paths are relative to the /v1 prefix.
func (h Handler) Routes(sec *SecHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("POST /runs", h.op("createRun", sec, h.CreateRun))
	mux.Handle("GET /runs", h.op("listRuns", sec, h.ListRuns))
	mux.Handle("GET /runs/{id}", h.op("getRun", sec, h.GetRun))
	mux.Handle("DELETE /runs/{id}", h.op("deleteRun", sec, h.DeleteRun))
	mux.Handle("GET /policies", h.op("listPolicies", sec, h.ListPolicies))
	mux.Handle("GET /policies/{id}", h.op("getPolicy", sec, h.GetPolicy))
	mux.Handle("POST /policies/{id}/act", h.op("actPolicy", sec, h.Act))
	mux.Handle("GET /barangays", h.op("listBarangays", sec, h.ListBarangays))

	return mux
}
