package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid", InvalidInput("lp", "missing positionId"), http.StatusBadRequest},
		{"not found", NotFound("meta", "pool not found for this positionId"), http.StatusNotFound},
		{"upstream", Upstream("pool", errors.New("HTTP 502")), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("resolve: %w", NotFound("meta", "x")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestUpstreamKeepsExistingKind(t *testing.T) {
	nf := NotFound("meta", "gone")
	assert.Same(t, nf, Upstream("outer", nf))
	assert.Nil(t, Upstream("outer", nil))

	cause := errors.New("dial tcp: refused")
	err := Upstream("hyperliquid allMids", cause)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "hyperliquid allMids: dial tcp: refused", err.Error())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "missing wallet", Message(InvalidInput("hl", "missing wallet")))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
