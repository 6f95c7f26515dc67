package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/directory/internal/directory"
	"github.com/wolfeidau/directory/internal/models"
	"github.com/wolfeidau/directory/internal/store"
	"github.com/wolfeidau/directory/internal/store/memory"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	svc := directory.NewService(store.Stores{
		Organizations: memory.NewOrganizationStore(),
		Users:         memory.NewUserStore(),
	})

	return NewRouter(NewHandler(svc), RouterConfig{Logger: zerolog.Nop()})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRouter_EndToEnd(t *testing.T) {
	h := newTestRouter(t)

	w := do(t, h, http.MethodPost, "/organizations", `{"name":"Acme","description":"desc"}`)
	require.Equal(t, http.StatusOK, w.Code)
	acme := decode[models.Organization](t, w)
	require.NotEmpty(t, acme.OrgID)
	require.Equal(t, "Acme", acme.Name)
	require.Equal(t, "desc", acme.Description)

	w = do(t, h, http.MethodPost, "/organizations", `{"name":"Globex","description":"other"}`)
	require.Equal(t, http.StatusOK, w.Code)
	globex := decode[models.Organization](t, w)

	w = do(t, h, http.MethodPost, "/organizations/"+acme.OrgID+"/users", `{"name":"Bob","email":"bob@x.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	bob := decode[models.User](t, w)
	require.NotEmpty(t, bob.UserID)
	require.Equal(t, acme.OrgID, bob.OrgID)
	require.Equal(t, "bob@x.com", bob.Email)

	w = do(t, h, http.MethodPut, "/organizations/"+globex.OrgID+"/users", `{"userId":"`+bob.UserID+`","name":"Robert"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"message":"User does not belong to the specified organization"}`, w.Body.String())

	w = do(t, h, http.MethodPut, "/organizations", `{"orgId":"`+acme.OrgID+`","name":"Acme"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, acme, decode[models.Organization](t, w))

	w = do(t, h, http.MethodGet, "/organizations/"+acme.OrgID+"/users/"+bob.UserID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, bob, decode[models.User](t, w))

	w = do(t, h, http.MethodGet, "/organizations/"+acme.OrgID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, acme, decode[models.Organization](t, w))
}

func TestRouter_Errors(t *testing.T) {
	h := newTestRouter(t)

	w := do(t, h, http.MethodPost, "/organizations", `{"name":"Acme","description":"desc"}`)
	require.Equal(t, http.StatusOK, w.Code)
	acme := decode[models.Organization](t, w)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		status   int
		expected string
	}{
		{
			name:     "malformed body",
			method:   http.MethodPost,
			path:     "/organizations",
			body:     `{"name":`,
			status:   http.StatusBadRequest,
			expected: `{"message":"Invalid Json body"}`,
		},
		{
			name:     "body is not an object",
			method:   http.MethodPost,
			path:     "/organizations",
			body:     `null`,
			status:   http.StatusBadRequest,
			expected: `{"message":"Invalid Json body"}`,
		},
		{
			name:     "validation",
			method:   http.MethodPost,
			path:     "/organizations",
			body:     `{}`,
			status:   http.StatusBadRequest,
			expected: `{"message":"Name is required Description is required"}`,
		},
		{
			name:     "duplicate name",
			method:   http.MethodPost,
			path:     "/organizations",
			body:     `{"name":"Acme","description":"again"}`,
			status:   http.StatusBadRequest,
			expected: `{"message":"Organization with this name already exists"}`,
		},
		{
			name:     "empty organization update",
			method:   http.MethodPut,
			path:     "/organizations",
			body:     `{"orgId":"` + acme.OrgID + `"}`,
			status:   http.StatusBadRequest,
			expected: `{"message":"At least one of name or description must be provided"}`,
		},
		{
			name:     "update missing organization",
			method:   http.MethodPut,
			path:     "/organizations",
			body:     `{"orgId":"nope","name":"x"}`,
			status:   http.StatusNotFound,
			expected: `{"message":"Organization not found"}`,
		},
		{
			name:     "user in missing organization",
			method:   http.MethodPost,
			path:     "/organizations/nope/users",
			body:     `{"name":"Bob","email":"bob@x.com"}`,
			status:   http.StatusBadRequest,
			expected: `{"message":"Organization not found"}`,
		},
		{
			name:     "path organization overrides body",
			method:   http.MethodPost,
			path:     "/organizations/nope/users",
			body:     `{"orgId":"` + acme.OrgID + `","name":"Bob","email":"bob@x.com"}`,
			status:   http.StatusBadRequest,
			expected: `{"message":"Organization not found"}`,
		},
		{
			name:     "update missing user",
			method:   http.MethodPut,
			path:     "/organizations/" + acme.OrgID + "/users",
			body:     `{"userId":"nope","name":"x"}`,
			status:   http.StatusNotFound,
			expected: `{"message":"User not found"}`,
		},
		{
			name:     "get missing organization",
			method:   http.MethodGet,
			path:     "/organizations/nope",
			status:   http.StatusNotFound,
			expected: `{"message":"Organization not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code)
			require.JSONEq(t, tt.expected, w.Body.String())
		})
	}
}

func TestRouter_Health(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

// brokenDirectory fails every call with an unclassified error.
type brokenDirectory struct {
	Directory
}

func (brokenDirectory) GetOrganization(ctx context.Context, orgID string) (*models.Organization, error) {
	return nil, errors.New("connection refused")
}

func TestRouter_UnexpectedError(t *testing.T) {
	h := NewRouter(NewHandler(brokenDirectory{}), RouterConfig{Logger: zerolog.Nop()})

	w := do(t, h, http.MethodGet, "/organizations/org-1", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"message":"connection refused"}`, w.Body.String())
}
