// Package api exposes the directory operations as synchronous request/response calls.
//
// Handler produces transport neutral responses which are served over HTTP by Router
// and through API Gateway by the Lambda adapter.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/directory/internal/directory"
	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Directory is the set of operations served by the API.
type Directory interface {
	CreateOrganization(ctx context.Context, raw map[string]any) (*models.Organization, error)
	UpdateOrganization(ctx context.Context, raw map[string]any) (*models.Organization, error)
	GetOrganization(ctx context.Context, orgID string) (*models.Organization, error)
	CreateUser(ctx context.Context, raw map[string]any) (*models.User, error)
	UpdateUser(ctx context.Context, raw map[string]any) (*models.User, error)
	GetUser(ctx context.Context, orgID, userID string) (*models.User, error)
}

var _ Directory = (*directory.Service)(nil)

// Response is a status code and a JSON serializable body.
type Response struct {
	StatusCode int
	Body       any
}

// ErrorBody is the body of every failed response.
type ErrorBody struct {
	Message string `json:"message"`
}

var errMalformedBody = errors.New("request body is not a JSON object")

// Handler maps directory results onto responses.
type Handler struct {
	dir Directory
}

// NewHandler creates a Handler.
func NewHandler(dir Directory) *Handler {
	return &Handler{dir: dir}
}

// CreateOrganization handles a {name, description} body.
func (h *Handler) CreateOrganization(ctx context.Context, body []byte) Response {
	return h.invoke(ctx, "create_organization", func(ctx context.Context) (any, error) {
		raw, err := parseBody(body)
		if err != nil {
			return nil, err
		}
		return h.dir.CreateOrganization(ctx, raw)
	})
}

// UpdateOrganization handles a {orgId, name?, description?} body.
func (h *Handler) UpdateOrganization(ctx context.Context, body []byte) Response {
	return h.invoke(ctx, "update_organization", func(ctx context.Context) (any, error) {
		raw, err := parseBody(body)
		if err != nil {
			return nil, err
		}
		return h.dir.UpdateOrganization(ctx, raw)
	})
}

// GetOrganization returns a single organization.
func (h *Handler) GetOrganization(ctx context.Context, orgID string) Response {
	return h.invoke(ctx, "get_organization", func(ctx context.Context) (any, error) {
		return h.dir.GetOrganization(ctx, orgID)
	})
}

// CreateUser handles a {name, email} body for the organization in the path. The path
// organization replaces any orgId in the body.
func (h *Handler) CreateUser(ctx context.Context, orgID string, body []byte) Response {
	return h.invoke(ctx, "create_user", func(ctx context.Context) (any, error) {
		raw, err := parseBody(body)
		if err != nil {
			return nil, err
		}
		raw["orgId"] = orgID
		return h.dir.CreateUser(ctx, raw)
	})
}

// UpdateUser handles a {userId, name?, email?} body for the organization in the path.
func (h *Handler) UpdateUser(ctx context.Context, orgID string, body []byte) Response {
	return h.invoke(ctx, "update_user", func(ctx context.Context) (any, error) {
		raw, err := parseBody(body)
		if err != nil {
			return nil, err
		}
		raw["orgId"] = orgID
		return h.dir.UpdateUser(ctx, raw)
	})
}

// GetUser returns a single user of the organization.
func (h *Handler) GetUser(ctx context.Context, orgID, userID string) Response {
	return h.invoke(ctx, "get_user", func(ctx context.Context) (any, error) {
		return h.dir.GetUser(ctx, orgID, userID)
	})
}

func (h *Handler) invoke(ctx context.Context, operation string, fn func(ctx context.Context) (any, error)) Response {
	started := time.Now()

	ctx, span := telemetry.Tracer().Start(ctx, "api."+operation, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	result, err := fn(ctx)

	resp := Response{StatusCode: http.StatusOK, Body: result}
	if err != nil {
		derr := directory.AsError(err)
		resp = Response{StatusCode: derr.StatusCode(), Body: ErrorBody{Message: derr.Message}}

		event := zerolog.Ctx(ctx).Warn()
		if derr.Kind == directory.KindUnexpected {
			event = zerolog.Ctx(ctx).Error()
		}
		event.Err(err).
			Str("operation", operation).
			Str("kind", derr.Kind.String()).
			Int("status_code", resp.StatusCode).
			Msg("request rejected")

		span.SetAttributes(attribute.String("directory.error_kind", derr.Kind.String()))
		if derr.Kind == directory.KindUnexpected {
			span.RecordError(err)
			span.SetStatus(codes.Error, derr.Message)
		}
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", strconv.Itoa(resp.StatusCode)),
	)
	telemetry.GetMetrics().RequestsTotal.Add(ctx, 1, attrs)
	telemetry.GetMetrics().RequestDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)

	return resp
}

// parseBody decodes a JSON object. Anything else is reported as malformed.
func parseBody(body []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(body), &raw); err != nil {
		return nil, directory.Malformed(err)
	}
	if raw == nil {
		return nil, directory.Malformed(errMalformedBody)
	}
	return raw, nil
}
