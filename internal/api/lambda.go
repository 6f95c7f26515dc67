package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/directory/internal/directory"
)

// MsgRouteNotFound is returned for API Gateway routes the handler does not serve.
const MsgRouteNotFound = "Route not found"

// LambdaHandler adapts Handler to API Gateway proxy integrations.
// Requests are routed on the resource template and method, so the stage's
// resources must match the HTTP routes served by Router.
type LambdaHandler struct {
	handler *Handler
	logger  zerolog.Logger
}

// NewLambdaHandler creates a LambdaHandler.
func NewLambdaHandler(h *Handler, logger zerolog.Logger) *LambdaHandler {
	return &LambdaHandler{handler: h, logger: logger}
}

// Handle serves one API Gateway proxy request. Directory failures are reported in the
// response, never as an invocation error.
func (l *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = l.logger.With().
		Str("method", req.HTTPMethod).
		Str("resource", req.Resource).
		Str("request_id", req.RequestContext.RequestID).
		Logger().WithContext(ctx)

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return toProxyResponse(Response{StatusCode: http.StatusBadRequest, Body: ErrorBody{Message: directory.MsgInvalidJSON}})
		}
		body = decoded
	}

	orgID := req.PathParameters["orgId"]

	var resp Response
	switch req.HTTPMethod + " " + req.Resource {
	case "POST /organizations":
		resp = l.handler.CreateOrganization(ctx, body)
	case "PUT /organizations":
		resp = l.handler.UpdateOrganization(ctx, body)
	case "GET /organizations/{orgId}":
		resp = l.handler.GetOrganization(ctx, orgID)
	case "POST /organizations/{orgId}/users":
		resp = l.handler.CreateUser(ctx, orgID, body)
	case "PUT /organizations/{orgId}/users":
		resp = l.handler.UpdateUser(ctx, orgID, body)
	case "GET /organizations/{orgId}/users/{userId}":
		resp = l.handler.GetUser(ctx, orgID, req.PathParameters["userId"])
	default:
		zerolog.Ctx(ctx).Warn().Msg("route not found")
		resp = Response{StatusCode: http.StatusNotFound, Body: ErrorBody{Message: MsgRouteNotFound}}
	}

	return toProxyResponse(resp)
}

func toProxyResponse(resp Response) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(resp.Body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}
