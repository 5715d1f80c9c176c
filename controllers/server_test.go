package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dripmateapi/dbhelper"
	"dripmateapi/llm"
	"dripmateapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	e        *echo.Echo
	db       *gorm.DB
	enqueuer *test.EnqueuerMock
	tmpDir   string
}

func newTestServer(t *testing.T, providers ...llm.Provider) testServer {
	t.Helper()
	db := dbhelper.SetupTestDB()
	t.Cleanup(dbhelper.SetupCleaner(db))

	tmpDir := t.TempDir()
	enqueuer := &test.EnqueuerMock{}
	e := SetupServer(
		db,
		test.TestConfig(tmpDir),
		llm.NewStaticRegistry(llm.KindOllama, providers...),
		test.AWSProviderMock{},
		test.URLCacheMock{},
		enqueuer,
		zap.NewNop(),
	)
	return testServer{e: e, db: db, enqueuer: enqueuer, tmpDir: tmpDir}
}

func (s testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), target), rec.Body.String())
}

func TestHealthAndInfo(t *testing.T) {
	s := newTestServer(t)

	rec := s.serve(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())

	rec = s.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	payload := map[string]interface{}{}
	decodeBody(t, rec, &payload)
	assert.Equal(t, "ollama", payload["default_provider"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/profile/me", "/wardrobe", "/favorites"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := s.serve(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
	req := test.NewJSONRequest(http.MethodPost, "/chat", map[string]interface{}{"item": "tee", "vibe": "casual"})
	req.Header.Set("Authorization", "Bearer "+test.GenerateUserToken("999999"))
	rec := s.serve(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBannedUserIsLocked(t *testing.T) {
	s := newTestServer(t)
	user := test.FakeUser(s.db)
	s.db.Model(user).Update("banned", true)

	rec := s.serve(test.NewJSONAuthRequest(http.MethodGet, "/profile/me", UIntToStr(user.ID), ""))
	assert.Equal(t, http.StatusLocked, rec.Code)
}
