package v1handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/serrors"
	"wastepolicy/pkg/storage"
)

// DefaultLimit is the page size used when a list request does not set one.
const DefaultLimit = 20

// MaxLimit bounds the page size of list requests.
const MaxLimit = 100

func pathRunID(r *http.Request) (domain.RunID, error) {
	id, err := domain.ParseRunID(r.PathValue("id"))
	if err != nil {
		return id, serrors.Wrap(serrors.ErrBadRequest, err, "invalid run id")
	}

	return id, nil
}

func pageLimit(r *http.Request) (uint, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return DefaultLimit, nil
	}
	limit, err := strconv.ParseUint(s, 10, 32)
	if err != nil || limit == 0 || limit > MaxLimit {
		return 0, serrors.With(serrors.ErrBadRequest, "limit must be between 1 and %d", MaxLimit)
	}

	return uint(limit), nil
}

// CreateRun stores a run and schedules its execution.
func (h Handler) CreateRun(ctx context.Context, r *http.Request) (response, error) {
	d, err := readBody(r)
	if err != nil {
		return response{}, err
	}
	req, err := DecodeCreateRunRequest(d)
	if err != nil {
		return response{}, err
	}

	run, err := h.deps.Runner.Enqueue(ctx, GetUserIDFromContext(ctx), req.Kind, req.Params)
	if err != nil {
		return response{}, err //nolint: wrapcheck
	}

	return response{
		status: http.StatusAccepted,
		body:   func(e *jx.Encoder) { encodeRun(ctx, e, run) },
	}, nil
}

// ListRuns returns a page of the caller's runs, optionally narrowed by kind
// and status.
func (h Handler) ListRuns(ctx context.Context, r *http.Request) (response, error) {
	q := r.URL.Query()
	filter := storage.RunFilter{
		Kind:   domain.RunKind(q.Get("kind")),
		Status: domain.RunStatus(q.Get("status")),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return response{}, serrors.With(serrors.ErrBadRequest, "unknown run kind %q", filter.Kind)
	}
	switch filter.Status {
	case "", domain.RunStatusPending, domain.RunStatusRunning, domain.RunStatusCompleted, domain.RunStatusFailed:
	default:
		return response{}, serrors.With(serrors.ErrBadRequest, "unknown run status %q", filter.Status)
	}
	limit, err := pageLimit(r)
	if err != nil {
		return response{}, err
	}

	runs, nextCursor, err := h.deps.Runner.UserRuns(ctx, GetUserIDFromContext(ctx), filter, q.Get("cursor"), limit)
	if err != nil {
		return response{}, err //nolint: wrapcheck
	}

	return ok(func(e *jx.Encoder) {
		encodePage(e, len(runs), func(e *jx.Encoder, i int) { encodeRun(ctx, e, &runs[i]) }, nextCursor)
	}), nil
}

// GetRun returns a run with its result once completed.
func (h Handler) GetRun(ctx context.Context, r *http.Request) (response, error) {
	id, err := pathRunID(r)
	if err != nil {
		return response{}, err
	}

	run, err := h.deps.Runner.Result(ctx, GetUserIDFromContext(ctx), id)
	if err != nil {
		return response{}, err //nolint: wrapcheck
	}

	return ok(func(e *jx.Encoder) { encodeRun(ctx, e, run) }), nil
}

// DeleteRun deletes a run by ID.
func (h Handler) DeleteRun(ctx context.Context, r *http.Request) (response, error) {
	id, err := pathRunID(r)
	if err != nil {
		return response{}, err
	}

	if err := h.deps.Runner.Delete(ctx, GetUserIDFromContext(ctx), id); err != nil {
		return response{}, err //nolint: wrapcheck
	}

	return response{status: http.StatusNoContent}, nil
}
