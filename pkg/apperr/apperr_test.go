package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   codes.Code
		label  string
	}{
		{"validation", Validation("cart is empty"), http.StatusBadRequest, codes.InvalidArgument, "VALIDATION_ERROR"},
		{"not found", NotFound("order not found"), http.StatusNotFound, codes.NotFound, "NOT_FOUND"},
		{"authentication", Authentication("signature mismatch"), http.StatusUnauthorized, codes.Unauthenticated, "AUTHENTICATION_ERROR"},
		{"authorization", Authorization("admin only"), http.StatusForbidden, codes.PermissionDenied, "AUTHORIZATION_ERROR"},
		{"conflict", Conflict("cannot cancel at this stage"), http.StatusConflict, codes.FailedPrecondition, "CONFLICT"},
		{"transient", Transient("storage timeout"), http.StatusServiceUnavailable, codes.Unavailable, "TRANSIENT_ERROR"},
		{"deadline", fmt.Errorf("failed to find order: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, codes.Unavailable, "TRANSIENT_ERROR"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, codes.Internal, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, GRPCCode(tt.err))
			assert.Equal(t, tt.label, KindOf(tt.err).String())
			assert.Equal(t, KindOf(tt.err), FromGRPCCode(GRPCCode(tt.err)))
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("failed to checkout: %w", NotFound("product %s not found", "abc"))

	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Retryable(err))
	assert.Equal(t, "product abc not found", Message(err))
}

func TestMessageHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("mongo: connection string leaked")))
	assert.Equal(t, "internal error", Message(Wrap(KindInternal, errors.New("x"), "decode order")))
	assert.Equal(t, "temporarily unavailable, retry later", Message(context.DeadlineExceeded))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(KindConflict, nil, "unused"))
}
