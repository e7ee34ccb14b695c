package v1handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"wastepolicy/internal/api/handler/v1handler"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/serrors"
)

func TestMain(m *testing.M) {
	_ = logger.Setup(logger.DevelopmentEnvironment, "")
	m.Run()
}

func TestNewError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    serrors.Kind
		message string
		logged  bool
	}{
		{
			name:    "plain error hides its cause",
			err:     errors.New("pq: relation runs does not exist"),
			status:  http.StatusInternalServerError,
			code:    serrors.ErrInternal,
			message: "internal error",
			logged:  true,
		},
		{
			name:    "internal kind with message",
			err:     serrors.With(serrors.ErrInternal, "policy table corrupt"),
			status:  http.StatusInternalServerError,
			code:    serrors.ErrInternal,
			message: "internal error",
			logged:  true,
		},
		{
			name:    "bare not found",
			err:     serrors.ErrNotFound,
			status:  http.StatusNotFound,
			code:    serrors.ErrNotFound,
			message: "resource not found",
		},
		{
			name:    "bad request message",
			err:     serrors.With(serrors.ErrBadRequest, "quarters must be between 1 and 40"),
			status:  http.StatusBadRequest,
			code:    serrors.ErrBadRequest,
			message: "quarters must be between 1 and 40",
		},
		{
			name:    "message wins over cause",
			err:     serrors.Wrap(serrors.ErrUnauthorized, errors.New("token is expired"), "invalid token"),
			status:  http.StatusUnauthorized,
			code:    serrors.ErrUnauthorized,
			message: "invalid token",
		},
		{
			name:    "wrapped by caller",
			err:     fmt.Errorf("act: %w", serrors.With(serrors.ErrConflict, "stored policy cannot be loaded")),
			status:  http.StatusConflict,
			code:    serrors.ErrConflict,
			message: "stored policy cannot be loaded",
		},
		{
			name:    "kind without message",
			err:     serrors.KindOnly(serrors.ErrUnavailable),
			status:  http.StatusServiceUnavailable,
			code:    serrors.ErrUnavailable,
			message: serrors.ErrUnavailable.Error(),
		},
	}

	h := v1handler.New(v1handler.Deps{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			ctx := logger.WithLogger(context.Background(), zap.New(core))

			res := h.NewError(ctx, tt.err)
			require.Equal(t, tt.status, res.StatusCode)
			require.Equal(t, tt.code.Error(), res.Response.Code)
			require.Equal(t, tt.message, res.Response.Message)
			require.Equal(t, tt.logged, logs.Len() == 1)
		})
	}
}
