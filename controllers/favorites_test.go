package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"dripmateapi/models"
	"dripmateapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoritesLifecycle(t *testing.T) {
	s := newTestServer(t)
	user := test.FakeUser(s.db)
	uid := UIntToStr(user.ID)

	rec := s.serve(test.NewJSONAuthRequestRaw(http.MethodPost, "/favorites", uid, `{
		"title": "Weekend",
		"source_item": "black hoodie",
		"vibe": "streetwear",
		"payload": {"id": 1, "top": {"name": "white tee", "reason": "contrast"}}
	}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created FavoriteOut
	decodeBody(t, rec, &created)
	assert.Equal(t, "Weekend", *created.Title)
	assert.JSONEq(t, `{"id": 1, "top": {"name": "white tee", "reason": "contrast"}}`, string(created.Payload))

	var stored models.FavoriteOutfit
	require.NoError(t, s.db.First(&stored, created.ID).Error)
	assert.JSONEq(t, string(created.Payload), stored.Payload)

	rec = s.serve(test.NewJSONAuthRequest(http.MethodGet, "/favorites", uid, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []FavoriteOut
	decodeBody(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	other := test.FakeUserV2(s.db, "Other", "other@example.com")
	target := fmt.Sprintf("/favorites/%d", created.ID)
	rec = s.serve(test.NewJSONAuthRequest(http.MethodDelete, target, UIntToStr(other.ID), ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.serve(test.NewJSONAuthRequest(http.MethodDelete, target, uid, ""))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.serve(test.NewJSONAuthRequest(http.MethodGet, "/favorites", uid, ""))
	listed = nil
	decodeBody(t, rec, &listed)
	assert.Empty(t, listed)
}

func TestCreateFavoriteRequiresPayload(t *testing.T) {
	s := newTestServer(t)
	user := test.FakeUser(s.db)

	for _, body := range []string{`{"title": "x"}`, `{"payload": null}`} {
		rec := s.serve(test.NewJSONAuthRequestRaw(http.MethodPost, "/favorites", UIntToStr(user.ID), body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}
