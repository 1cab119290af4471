package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bulkdelete/internal/sandbox/handler"
	"bulkdelete/internal/sandbox/model"
	"bulkdelete/internal/sandbox/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey = "sandbox-key"
	testToken  = "sandbox-token"
)

type MockResourceService struct {
	mock.Mock
}

func (m *MockResourceService) SeedResources(ctx context.Context, req model.SeedResourcesReq) (*model.SeedResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SeedResult), args.Error(1)
}

func (m *MockResourceService) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Resource), args.Error(1)
}

func (m *MockResourceService) DeleteResource(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func SetupServer(svc service.ResourceService) *echo.Echo {
	e := echo.New()
	RegisterRoutes(e, handler.NewResourceHandler(svc), AuthConfig{APIKey: testAPIKey, BearerToken: testToken})
	return e
}

func PerformRequest(e *echo.Echo, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var bodyReader *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = strings.NewReader(string(b))
	} else {
		bodyReader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func authHeaders() map[string]string {
	return map[string]string{
		handler.HeaderAPIKey:     testAPIKey,
		echo.HeaderAuthorization: "Bearer " + testToken,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorDetail {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	e := SetupServer(new(MockResourceService))
	rec := PerformRequest(e, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no headers", nil},
		{"missing api key", map[string]string{echo.HeaderAuthorization: "Bearer " + testToken}},
		{"missing bearer token", map[string]string{handler.HeaderAPIKey: testAPIKey}},
		{"wrong api key", map[string]string{handler.HeaderAPIKey: "nope", echo.HeaderAuthorization: "Bearer " + testToken}},
		{"wrong token", map[string]string{handler.HeaderAPIKey: testAPIKey, echo.HeaderAuthorization: "Bearer expired"}},
		{"basic scheme", map[string]string{handler.HeaderAPIKey: testAPIKey, echo.HeaderAuthorization: "Basic " + testToken}},
	}
	for _, tt := range tests {
		t.Run(tt.name+" returns 401", func(t *testing.T) {
			mockSvc := new(MockResourceService)
			e := SetupServer(mockSvc)

			rec := PerformRequest(e, http.MethodDelete, "/api/v1/resources/r1", nil, tt.headers)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			detail := decodeError(t, rec)
			assert.Equal(t, "unauthorized", detail.Code)
			assert.NotEmpty(t, detail.RequestID)
			assert.Equal(t, detail.RequestID, rec.Header().Get(echo.HeaderXRequestID))
			mockSvc.AssertNotCalled(t, "DeleteResource", mock.Anything, mock.Anything)
		})
	}

	t.Run("bearer scheme is case-insensitive", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		mockSvc.On("DeleteResource", mock.Anything, "r1").Return(nil)
		e := SetupServer(mockSvc)

		headers := map[string]string{handler.HeaderAPIKey: testAPIKey, echo.HeaderAuthorization: "bearer " + testToken}
		rec := PerformRequest(e, http.MethodDelete, "/api/v1/resources/r1", nil, headers)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("request id is echoed back", func(t *testing.T) {
		e := SetupServer(new(MockResourceService))
		rec := PerformRequest(e, http.MethodDelete, "/api/v1/resources/r1", nil, map[string]string{echo.HeaderXRequestID: "req-42"})
		assert.Equal(t, "req-42", rec.Header().Get(echo.HeaderXRequestID))
		assert.Equal(t, "req-42", decodeError(t, rec).RequestID)
	})
}

func TestDeleteResource(t *testing.T) {
	t.Run("delete success and return 200", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		mockSvc.On("DeleteResource", mock.Anything, "r1").Return(nil)
		e := SetupServer(mockSvc)

		rec := PerformRequest(e, http.MethodDelete, "/api/v1/resources/r1", nil, authHeaders())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"deleted"}`, rec.Body.String())
		mockSvc.AssertExpectations(t)
	})

	t.Run("escaped id is unescaped before lookup", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		mockSvc.On("DeleteResource", mock.Anything, "a/b c").Return(nil)
		e := SetupServer(mockSvc)

		rec := PerformRequest(e, http.MethodDelete, "/api/v1/resources/a%2Fb%20c", nil, authHeaders())
		assert.Equal(t, http.StatusOK, rec.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("already deleted returns 404", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		mockSvc.On("DeleteResource", mock.Anything, "gone").Return(service.ErrNotFound)
		e := SetupServer(mockSvc)

		rec := PerformRequest(e, http.MethodDelete, "/api/v1/resources/gone", nil, authHeaders())
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", decodeError(t, rec).Code)
	})

	t.Run("locked returns 409", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		mockSvc.On("DeleteResource", mock.Anything, "keep").Return(service.ErrConflict)
		e := SetupServer(mockSvc)

		rec := PerformRequest(e, http.MethodDelete, "/api/v1/resources/keep", nil, authHeaders())
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "conflict", decodeError(t, rec).Code)
	})

	t.Run("unexpected error returns 500", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		mockSvc.On("DeleteResource", mock.Anything, "r1").Return(assert.AnError)
		e := SetupServer(mockSvc)

		rec := PerformRequest(e, http.MethodDelete, "/api/v1/resources/r1", nil, authHeaders())
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal_error", decodeError(t, rec).Code)
	})
}

func TestGetResource(t *testing.T) {
	t.Run("found returns 200", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		mockSvc.On("GetResource", mock.Anything, "r1").Return(&model.Resource{ResourceID: "r1"}, nil)
		e := SetupServer(mockSvc)

		rec := PerformRequest(e, http.MethodGet, "/api/v1/resources/r1", nil, authHeaders())
		assert.Equal(t, http.StatusOK, rec.Code)

		var res model.Resource
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "r1", res.ResourceID)
	})

	t.Run("missing returns 404", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		mockSvc.On("GetResource", mock.Anything, "r9").Return(nil, service.ErrNotFound)
		e := SetupServer(mockSvc)

		rec := PerformRequest(e, http.MethodGet, "/api/v1/resources/r9", nil, authHeaders())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPostResources(t *testing.T) {
	t.Run("seed success and return 201", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		mockSvc.On("SeedResources", mock.Anything, mock.MatchedBy(func(req model.SeedResourcesReq) bool {
			return len(req.IDs) == 2 && req.IDs[0] == "a1" && req.IDs[1] == "b2" && len(req.LockedIDs) == 1
		})).Return(&model.SeedResult{Created: 3, Total: 3}, nil)
		e := SetupServer(mockSvc)

		payload := map[string]interface{}{
			"ids":        []string{" a1", "b2", "a1", ""},
			"locked_ids": []string{"l1"},
		}
		rec := PerformRequest(e, http.MethodPost, "/api/v1/resources", payload, authHeaders())
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"created":3,"total":3}`, rec.Body.String())
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing ids returns 400", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		e := SetupServer(mockSvc)

		rec := PerformRequest(e, http.MethodPost, "/api/v1/resources", map[string]interface{}{"ids": []string{" "}}, authHeaders())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "ids is required", decodeError(t, rec).Message)
		mockSvc.AssertNotCalled(t, "SeedResources", mock.Anything, mock.Anything)
	})

	t.Run("id too long returns 400", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		e := SetupServer(mockSvc)

		payload := map[string]interface{}{"ids": []string{strings.Repeat("x", 513)}}
		rec := PerformRequest(e, http.MethodPost, "/api/v1/resources", payload, authHeaders())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "'max' tag")
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		mockSvc := new(MockResourceService)
		e := SetupServer(mockSvc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/resources", strings.NewReader(`{"ids":`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		for k, v := range authHeaders() {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid body", decodeError(t, rec).Message)
	})
}
