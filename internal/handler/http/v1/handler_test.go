package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/safe_route_system/internal/auth"
	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/internal/service"
	"github.com/shenikar/safe_route_system/internal/service/mocks"
	"github.com/shenikar/safe_route_system/pkg/e"
	"github.com/shenikar/safe_route_system/pkg/ors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testServices struct {
	users      *mocks.MockUserService
	reports    *mocks.MockReportService
	validation *mocks.MockValidationService
	routes     *mocks.MockRouteService
	tokens     *auth.TokenManager
}

// newTestHandler создает Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*testServices, *gin.Engine) {
	ctrl := gomock.NewController(t)
	svc := &testServices{
		users:      mocks.NewMockUserService(ctrl),
		reports:    mocks.NewMockReportService(ctrl),
		validation: mocks.NewMockValidationService(ctrl),
		routes:     mocks.NewMockRouteService(ctrl),
		tokens:     auth.NewTokenManager("test-secret", time.Hour),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	handler := NewHandler(Services{
		Users:      svc.users,
		Reports:    svc.reports,
		Validation: svc.validation,
		Routes:     svc.routes,
	}, svc.tokens, logger)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return svc, router
}

// bearer выпускает токен и возвращает заголовок авторизации
func (s *testServices) bearer(t *testing.T, userID uuid.UUID) map[string]string {
	t.Helper()
	token, err := s.tokens.Issue(userID)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func TestRegisterUser_Success(t *testing.T) {
	svc, router := newTestHandler(t)
	userID := uuid.New()

	svc.users.EXPECT().Register(gomock.Any()).Return(&models.User{ID: userID, Score: models.InitialScore}, nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/users", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp RegisterUserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, userID, resp.ID)
	assert.Equal(t, models.InitialScore, resp.Score)

	verified, err := svc.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, verified)
}

func TestGetCurrentUser(t *testing.T) {
	svc, router := newTestHandler(t)
	userID := uuid.New()

	svc.users.EXPECT().GetUser(gomock.Any(), userID).Return(&models.User{ID: userID, Score: 70}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/users/me", nil, svc.bearer(t, userID))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 70, resp.Score)
}

func TestAuthMiddleware_RejectsMissingAndForeignTokens(t *testing.T) {
	svc, router := newTestHandler(t)
	foreign := auth.NewTokenManager("other-secret", time.Hour)
	token, err := foreign.Issue(uuid.New())
	require.NoError(t, err)

	svc.reports.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	body := CreatePositionRequest{Origin: "-3.71,-38.51", Classification: "pothole"}

	w := makeRequest(router, "POST", "/api/v1/positions", jsonBody(t, body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "bearer token required")

	w = makeRequest(router, "POST", "/api/v1/positions", jsonBody(t, body), map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestCreatePosition_Success(t *testing.T) {
	svc, router := newTestHandler(t)
	userID := uuid.New()
	reportID := uuid.New()

	svc.reports.EXPECT().
		CreateReport(gomock.Any(), service.CreateReportInput{
			CreatorID:      userID,
			Origin:         "-3.71,-38.51",
			Classification: models.Flooding,
		}).
		Return(&models.HazardReport{ID: reportID, CreatorID: userID, IsValid: false}, nil).
		Times(1)

	body := CreatePositionRequest{Origin: "-3.71,-38.51", Classification: "flooding"}
	w := makeRequest(router, "POST", "/api/v1/positions", jsonBody(t, body), svc.bearer(t, userID))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp CreatePositionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, reportID, resp.ID)
	assert.False(t, resp.IsValid)
}

func TestCreatePosition_WithDescription(t *testing.T) {
	svc, router := newTestHandler(t)
	userID := uuid.New()

	svc.reports.EXPECT().
		CreateReport(gomock.Any(), service.CreateReportInput{
			CreatorID:      userID,
			Origin:         "-3.71,-38.51",
			Classification: models.Pothole,
			Description:    "Deep pothole in the right lane",
		}).
		Return(&models.HazardReport{ID: uuid.New(), CreatorID: userID}, nil).
		Times(1)

	body := CreatePositionRequest{Origin: "-3.71,-38.51", Classification: "pothole", Description: "Deep pothole in the right lane"}
	w := makeRequest(router, "POST", "/api/v1/positions", jsonBody(t, body), svc.bearer(t, userID))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreatePosition_DescriptionTooLong(t *testing.T) {
	svc, router := newTestHandler(t)

	svc.reports.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Times(0)

	body := CreatePositionRequest{Origin: "-3.71,-38.51", Classification: "pothole", Description: strings.Repeat("a", 501)}
	w := makeRequest(router, "POST", "/api/v1/positions", jsonBody(t, body), svc.bearer(t, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "'Description' failed on the 'max' tag")
}

func TestCreatePosition_ValidationError(t *testing.T) {
	svc, router := newTestHandler(t)

	svc.reports.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	body := CreatePositionRequest{Origin: "-3.71,-38.51", Classification: "earthquake"}
	w := makeRequest(router, "POST", "/api/v1/positions", jsonBody(t, body), svc.bearer(t, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Classification' failed on the 'oneof' tag")
}

func TestCreatePosition_InvalidJSON(t *testing.T) {
	svc, router := newTestHandler(t)

	svc.reports.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/positions", bytes.NewBufferString(`{"origin": "1,2"`), svc.bearer(t, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestCreatePosition_ServiceErrors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "invalid coordinates", err: fmt.Errorf("service: %w", e.ErrInvalidCoordinates), wantStatus: http.StatusBadRequest, wantBody: "invalid coordinates"},
		{name: "unknown creator", err: fmt.Errorf("service: %w", e.ErrNotFound), wantStatus: http.StatusNotFound, wantBody: "not found"},
		{name: "storage failure", err: errors.New("connection refused"), wantStatus: http.StatusInternalServerError, wantBody: "internal server error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, router := newTestHandler(t)
			svc.reports.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)

			body := CreatePositionRequest{Origin: "-3.71,-38.51", Classification: "pothole"}
			w := makeRequest(router, "POST", "/api/v1/positions", jsonBody(t, body), svc.bearer(t, uuid.New()))

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestListPositions_GeoJSON(t *testing.T) {
	svc, router := newTestHandler(t)
	reportID := uuid.New()
	creatorID := uuid.New()

	svc.reports.EXPECT().ListReports(gomock.Any()).Return([]*models.HazardReport{{
		ID:             reportID,
		CreatorID:      creatorID,
		Classification: models.Assault,
		Description:    "Poorly lit underpass",
		Latitude:       -3.71,
		Longitude:      -38.51,
		IsValid:        true,
		CreatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/positions", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), creatorID.String())

	var resp struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string     `json:"type"`
				Coordinates [2]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "FeatureCollection", resp.Type)
	require.Len(t, resp.Features, 1)
	assert.Equal(t, "Point", resp.Features[0].Geometry.Type)
	assert.Equal(t, [2]float64{-38.51, -3.71}, resp.Features[0].Geometry.Coordinates)
	assert.Equal(t, reportID.String(), resp.Features[0].Properties["id"])
	assert.Equal(t, "assault", resp.Features[0].Properties["classification"])
	assert.Equal(t, "Poorly lit underpass", resp.Features[0].Properties["description"])
	assert.Equal(t, true, resp.Features[0].Properties["is_valid"])
	assert.Equal(t, "2024-05-01T12:00:00Z", resp.Features[0].Properties["created_at"])
}

func TestListPositions_Empty(t *testing.T) {
	svc, router := newTestHandler(t)

	svc.reports.EXPECT().ListReports(gomock.Any()).Return([]*models.HazardReport{}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/positions", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, w.Body.String())
}

func TestGetPosition(t *testing.T) {
	svc, router := newTestHandler(t)
	reportID := uuid.New()

	svc.reports.EXPECT().GetReport(gomock.Any(), reportID).
		Return(&models.HazardReport{ID: reportID, Classification: models.Closure, Latitude: 1, Longitude: 2}, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/positions/%s", reportID.String()), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"classification":"closure"`)
	assert.NotContains(t, w.Body.String(), `"description"`)
}

func TestGetPosition_InvalidID(t *testing.T) {
	svc, router := newTestHandler(t)

	svc.reports.EXPECT().GetReport(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "GET", "/api/v1/positions/invalid-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid report ID")
}

func TestGetPosition_NotFound(t *testing.T) {
	svc, router := newTestHandler(t)
	reportID := uuid.New()

	svc.reports.EXPECT().GetReport(gomock.Any(), reportID).Return(nil, fmt.Errorf("service: %w", e.ErrNotFound)).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/positions/%s", reportID.String()), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidatePosition_Success(t *testing.T) {
	svc, router := newTestHandler(t)
	voterID := uuid.New()
	reportID := uuid.New()

	svc.validation.EXPECT().
		CastVote(gomock.Any(), models.Vote{ReportID: reportID, VoterID: voterID, Approve: false}).
		Return(&models.VoteResult{ReportID: reportID, Outcome: models.OutcomeRetracted, NewScore: 40}, nil).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/validate",
		bytes.NewBufferString(fmt.Sprintf(`{"report_id":"%s","approve":false}`, reportID)), svc.bearer(t, voterID))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, reportID, resp.ReportID)
	assert.Equal(t, string(models.OutcomeRetracted), resp.Outcome)
	assert.Equal(t, 40, resp.CreatorScore)
}

func TestValidatePosition_MissingApprove(t *testing.T) {
	svc, router := newTestHandler(t)

	svc.validation.EXPECT().CastVote(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/validate",
		bytes.NewBufferString(fmt.Sprintf(`{"report_id":"%s"}`, uuid.New())), svc.bearer(t, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Approve' failed on the 'required' tag")
}

func TestValidatePosition_InvalidReportID(t *testing.T) {
	svc, router := newTestHandler(t)

	svc.validation.EXPECT().CastVote(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/validate",
		bytes.NewBufferString(`{"report_id":"42","approve":true}`), svc.bearer(t, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "'uuid' tag")
}

func TestValidatePosition_ServiceErrors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "self validation", err: e.ErrSelfValidation, wantStatus: http.StatusForbidden},
		{name: "already resolved", err: e.ErrAlreadyResolved, wantStatus: http.StatusConflict},
		{name: "not found", err: e.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "internal", err: e.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, router := newTestHandler(t)
			svc.validation.EXPECT().CastVote(gomock.Any(), gomock.Any()).
				Return(nil, fmt.Errorf("service: could not cast vote: %w", tc.err)).Times(1)

			w := makeRequest(router, "POST", "/api/v1/validate",
				bytes.NewBufferString(fmt.Sprintf(`{"report_id":"%s","approve":true}`, uuid.New())), svc.bearer(t, uuid.New()))

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestPlanRoute_Success(t *testing.T) {
	svc, router := newTestHandler(t)
	engineResponse := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[-38.5,-3.7],[-38.52,-3.72]]}}]}`

	svc.routes.EXPECT().
		PlanRoute(gomock.Any(), service.RouteRequest{Origin: "-3.7,-38.5", Destination: "-3.72,-38.52", Profile: "walking"}).
		Return(&service.Route{Profile: ors.FootWalking, AvoidedZones: 1, Result: json.RawMessage(engineResponse)}, nil).
		Times(1)

	body := RouteRequest{Origin: "-3.7,-38.5", Destination: "-3.72,-38.52", Profile: "walking"}
	w := makeRequest(router, "POST", "/api/v1/route", jsonBody(t, body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, engineResponse, w.Body.String())
	assert.Equal(t, "foot-walking", w.Header().Get("X-Route-Profile"))
	assert.Equal(t, "1", w.Header().Get("X-Avoided-Zones"))
}

func TestPlanRoute_MissingDestination(t *testing.T) {
	svc, router := newTestHandler(t)

	svc.routes.EXPECT().PlanRoute(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/route", jsonBody(t, RouteRequest{Origin: "-3.7,-38.5"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "'Destination' failed on the 'required' tag")
}

func TestPlanRoute_ServiceErrors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid profile", err: e.ErrInvalidProfile, wantStatus: http.StatusBadRequest},
		{name: "invalid coordinates", err: e.ErrInvalidCoordinates, wantStatus: http.StatusBadRequest},
		{name: "routing unavailable", err: e.ErrRoutingUnavailable, wantStatus: http.StatusBadGateway},
		{name: "deadline", err: e.ErrDeadline, wantStatus: http.StatusGatewayTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, router := newTestHandler(t)
			svc.routes.EXPECT().PlanRoute(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("service: %w", tc.err)).Times(1)

			body := RouteRequest{Origin: "-3.7,-38.5", Destination: "-3.72,-38.52"}
			w := makeRequest(router, "POST", "/api/v1/route", jsonBody(t, body))

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	_, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
