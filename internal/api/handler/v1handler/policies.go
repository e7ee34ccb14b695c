package v1handler

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/serrors"
)

func pathPolicyID(r *http.Request) (domain.PolicyID, error) {
	id, err := domain.ParsePolicyID(r.PathValue("id"))
	if err != nil {
		return id, serrors.Wrap(serrors.ErrBadRequest, err, "invalid policy id")
	}

	return id, nil
}

// ListPolicies returns a page of the caller's trained policies.
func (h Handler) ListPolicies(ctx context.Context, r *http.Request) (response, error) {
	limit, err := pageLimit(r)
	if err != nil {
		return response{}, err
	}

	policies, nextCursor, err := h.deps.Runner.UserPolicies(ctx,
		GetUserIDFromContext(ctx),
		r.URL.Query().Get("cursor"),
		limit)
	if err != nil {
		return response{}, err //nolint: wrapcheck
	}

	return ok(func(e *jx.Encoder) {
		encodePage(e, len(policies), func(e *jx.Encoder, i int) { encodePolicy(e, &policies[i]) }, nextCursor)
	}), nil
}

// GetPolicy returns the metadata of a policy. The learner itself is not exposed.
func (h Handler) GetPolicy(ctx context.Context, r *http.Request) (response, error) {
	id, err := pathPolicyID(r)
	if err != nil {
		return response{}, err
	}

	policy, err := h.deps.Runner.Policy(ctx, GetUserIDFromContext(ctx), id)
	if err != nil {
		return response{}, err //nolint: wrapcheck
	}

	return ok(func(e *jx.Encoder) { encodePolicy(e, policy) }), nil
}

// Act returns the levers a policy picks for the posted observation.
func (h Handler) Act(ctx context.Context, r *http.Request) (response, error) {
	id, err := pathPolicyID(r)
	if err != nil {
		return response{}, err
	}
	d, err := readBody(r)
	if err != nil {
		return response{}, err
	}
	obs, err := DecodeObservation(d)
	if err != nil {
		return response{}, err
	}

	action, err := h.deps.Runner.Act(ctx, GetUserIDFromContext(ctx), id, obs)
	if err != nil {
		return response{}, err //nolint: wrapcheck
	}

	return ok(func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("quarter", func(e *jx.Encoder) { e.Int(obs.Quarter) })
			e.Field("levers", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for i := range obs.Barangays {
						encodeLevers(e, action.For(i))
					}
				})
			})
		})
	}), nil
}

// ListBarangays returns the barangays runs can select.
func (h Handler) ListBarangays(_ context.Context, _ *http.Request) (response, error) {
	return ok(func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("items", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, p := range h.deps.Profiles {
						encodeProfile(e, p)
					}
				})
			})
		})
	}), nil
}
