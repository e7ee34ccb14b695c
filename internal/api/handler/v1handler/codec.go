package v1handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"wastepolicy/pkg/domain"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/policyenv"
	"wastepolicy/pkg/serrors"
)

// maxBodyBytes bounds request bodies; observations of every barangay fit easily.
const maxBodyBytes = 1 << 20

// CreateRunRequest is the body of POST /v1/runs.
type CreateRunRequest struct {
	Kind   domain.RunKind
	Params domain.RunParams
}

func readBody(r *http.Request) (*jx.Decoder, error) {
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body")
	}
	if len(data) == 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "request body is required")
	}

	return jx.DecodeBytes(data), nil
}

func badBody(err error) error {
	return serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
}

func unknownField(key []byte) error {
	return errors.Wrap(errors.New(string(key)), "unknown field")
}

// DecodeCreateRunRequest reads a CreateRunRequest, rejecting unknown fields.
func DecodeCreateRunRequest(d *jx.Decoder) (CreateRunRequest, error) {
	var req CreateRunRequest
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "kind":
			s, err := d.Str()
			req.Kind = domain.RunKind(s)

			return err //nolint: wrapcheck
		case "params":
			return decodeParams(d, &req.Params)
		default:
			return unknownField(key)
		}
	})
	if err != nil {
		return req, badBody(err)
	}
	if req.Kind == "" {
		return req, serrors.With(serrors.ErrBadRequest, "kind is required")
	}

	return req, nil
}

func decodeInts(d *jx.Decoder) ([]int, error) {
	var out []int
	err := d.Arr(func(d *jx.Decoder) error {
		v, err := d.Int()
		out = append(out, v)

		return err //nolint: wrapcheck
	})

	return out, err //nolint: wrapcheck
}

//nolint: cyclop
func decodeParams(d *jx.Decoder, p *domain.RunParams) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error { //nolint: wrapcheck
		var err error
		switch string(key) {
		case "seed":
			p.Seed, err = d.Int64()
		case "barangays":
			p.Barangays, err = decodeInts(d)
		case "ticks":
			p.Ticks, err = d.Int()
		case "quarters":
			p.Quarters, err = d.Int()
		case "ticksPerQuarter":
			p.TicksPerQuarter, err = d.Int()
		case "levers":
			var l domain.Levers
			err = decodeLevers(d, &l)
			p.Levers = &l
		case "episodes":
			p.Episodes, err = d.Int()
		case "policyId":
			var s string
			if s, err = d.Str(); err == nil {
				var id domain.PolicyID
				if id, err = domain.ParsePolicyID(s); err == nil {
					p.PolicyID = &id
				}
			}
		case "generations":
			p.Generations, err = d.Int()
		case "population":
			p.Population, err = d.Int()
		case "samples":
			p.Samples, err = d.Int()
		default:
			err = unknownField(key)
		}

		if err != nil {
			return errors.Wrapf(err, "params.%s", key)
		}

		return nil
	})
}

func decodeLevers(d *jx.Decoder, l *domain.Levers) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error { //nolint: wrapcheck
		var err error
		switch string(key) {
		case "fine":
			l.Fine, err = d.Float64()
		case "incentive":
			l.Incentive, err = d.Float64()
		case "iec":
			l.IEC, err = d.Float64()
		default:
			err = unknownField(key)
		}

		return err
	})
}

// DecodeObservation reads the observation a policy is asked to act on.
func DecodeObservation(d *jx.Decoder) (policyenv.Observation, error) {
	var obs policyenv.Observation
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "quarter":
			obs.Quarter, err = d.Int()
		case "meanCompliance":
			obs.MeanCompliance, err = d.Float64()
		case "totalImproper":
			obs.TotalImproper, err = d.Int()
		case "improperRate":
			obs.ImproperRate, err = d.Float64()
		case "quarterCollections":
			obs.QuarterCollections, err = d.Int()
		case "barangays":
			err = d.Arr(func(d *jx.Decoder) error {
				var b policyenv.BarangayObservation
				if err := decodeBarangayObservation(d, &b); err != nil {
					return err
				}
				obs.Barangays = append(obs.Barangays, b)

				return nil
			})
		default:
			err = unknownField(key)
		}

		if err != nil {
			return errors.Wrap(err, string(key))
		}

		return nil
	})
	if err != nil {
		return obs, badBody(err)
	}

	return obs, nil
}

func decodeBarangayObservation(d *jx.Decoder, b *policyenv.BarangayObservation) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error { //nolint: wrapcheck
		var err error
		switch string(key) {
		case "id":
			b.ID, err = d.Int()
		case "name":
			b.Name, err = d.Str()
		case "compliance":
			b.Compliance, err = d.Float64()
		case "improper":
			b.Improper, err = d.Int()
		case "improperRate":
			b.ImproperRate, err = d.Float64()
		case "collections":
			b.Collections, err = d.Int()
		case "levers":
			err = decodeLevers(d, &b.Levers)
		default:
			err = unknownField(key)
		}

		return err
	})
}

func encodeTime(e *jx.Encoder, name string, t time.Time) {
	if t.IsZero() {
		return
	}
	e.Field(name, func(e *jx.Encoder) { e.Str(t.UTC().Format(time.RFC3339Nano)) })
}

// encodeJSON writes a value whose layout is defined by its json tags. A value
// that cannot be marshalled (e.g. a NaN metric) is written as null.
func encodeJSON(ctx context.Context, e *jx.Encoder, name string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Debug(ctx, "could not encode field", zap.String("field", name), zap.Error(err))
		e.Field(name, func(e *jx.Encoder) { e.Null() })

		return
	}
	e.Field(name, func(e *jx.Encoder) { e.Raw(raw) })
}

func encodeRun(ctx context.Context, e *jx.Encoder, run *domain.Run) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(run.ID.String()) })
		e.Field("kind", func(e *jx.Encoder) { e.Str(string(run.Kind)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(run.Status)) })
		encodeJSON(ctx, e, "params", run.Params)
		if run.Status == domain.RunStatusCompleted {
			encodeJSON(ctx, e, "result", run.Result)
		}
		e.Field("attempts", func(e *jx.Encoder) { e.UInt(run.Attempts) })
		if run.LastError != "" {
			e.Field("lastError", func(e *jx.Encoder) { e.Str(run.LastError) })
		}
		encodeTime(e, "createdAt", run.CreatedAt)
		encodeTime(e, "updatedAt", run.UpdatedAt)
	})
}

func encodePolicy(e *jx.Encoder, p *domain.Policy) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID.String()) })
		e.Field("runId", func(e *jx.Encoder) { e.Str(p.RunID.String()) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("algorithm", func(e *jx.Encoder) { e.Str(p.Algorithm) })
		encodeTime(e, "createdAt", p.CreatedAt)
	})
}

func encodeLevers(e *jx.Encoder, l domain.Levers) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("fine", func(e *jx.Encoder) { e.Float64(l.Fine) })
		e.Field("incentive", func(e *jx.Encoder) { e.Float64(l.Incentive) })
		e.Field("iec", func(e *jx.Encoder) { e.Float64(l.IEC) })
	})
}

func encodeProfile(e *jx.Encoder, p domain.BarangayProfile) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("urban", func(e *jx.Encoder) { e.Bool(p.Urban) })
		e.Field("households", func(e *jx.Encoder) { e.Int(p.Households) })
		e.Field("officials", func(e *jx.Encoder) { e.Int(p.Officials) })
		e.Field("vehicles", func(e *jx.Encoder) { e.Int(p.Vehicles) })
		e.Field("initialCompliance", func(e *jx.Encoder) { e.Float64(p.InitialCompliance) })
	})
}

// encodePage writes {"items": [...], "nextCursor": ...}.
func encodePage(e *jx.Encoder, n int, item func(e *jx.Encoder, i int), nextCursor string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range n {
					item(e, i)
				}
			})
		})
		e.Field("nextCursor", func(e *jx.Encoder) {
			if nextCursor == "" {
				e.Null()

				return
			}
			e.Str(nextCursor)
		})
	})
}
