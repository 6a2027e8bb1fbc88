package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/provider"
	"github.com/jmylchreest/tabcanvas/pkg/httpclient"
)

func TestAPIError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.ValidationError{Field: "color", Message: "bad"}, http.StatusUnprocessableEntity},
		{"unknown source", fmt.Errorf("%w: flickr", provider.ErrUnknownSource), http.StatusBadRequest},
		{"missing image", models.ErrLocalImageNotFound, http.StatusNotFound},
		{"too large", models.ErrImageTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported", models.ErrUnsupportedImageType, http.StatusUnsupportedMediaType},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"no image", models.ErrNoValidImage, http.StatusBadGateway},
		{"circuit open", httpclient.ErrCircuitOpen, http.StatusBadGateway},
		{"upstream 500", &httpclient.StatusError{StatusCode: http.StatusInternalServerError}, http.StatusBadGateway},
		{"upstream rate limit", fmt.Errorf("%w: %w", httpclient.ErrMaxRetries,
			&httpclient.StatusError{StatusCode: http.StatusTooManyRequests}), http.StatusTooManyRequests},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var se huma.StatusError
			require.ErrorAs(t, apiError(context.Background(), tt.err, "failed"), &se)
			assert.Equal(t, tt.want, se.GetStatus())
		})
	}
}
