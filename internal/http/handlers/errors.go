// Package handlers provides the tabcanvas HTTP API handlers.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/observability"
	"github.com/jmylchreest/tabcanvas/internal/provider"
	"github.com/jmylchreest/tabcanvas/pkg/httpclient"
)

// apiError maps service errors onto HTTP problem responses. msg is used for
// the response title of unexpected failures.
func apiError(ctx context.Context, err error, msg string) error {
	var statusErr *httpclient.StatusError
	switch {
	case errors.Is(err, models.ErrValidation):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, provider.ErrUnknownSource):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, models.ErrProfileNotFound), errors.Is(err, models.ErrLocalImageNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, models.ErrImageTooLarge):
		return huma.Error413RequestEntityTooLarge(err.Error())
	case errors.Is(err, models.ErrUnsupportedImageType):
		return huma.Error415UnsupportedMediaType(err.Error())
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests:
		return huma.Error429TooManyRequests("image provider rate limit reached")
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout("image provider timed out")
	case errors.Is(err, models.ErrNoValidImage),
		errors.Is(err, httpclient.ErrCircuitOpen),
		errors.Is(err, httpclient.ErrMaxRetries),
		errors.As(err, &statusErr):
		return huma.Error502BadGateway(err.Error())
	}

	observability.LoggerFromContext(ctx).ErrorContext(ctx, msg, slog.String("error", err.Error()))
	return huma.Error500InternalServerError(msg)
}
