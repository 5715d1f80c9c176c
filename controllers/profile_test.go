package controllers

import (
	"net/http"
	"testing"

	"dripmateapi/models"
	"dripmateapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileOk(t *testing.T) {
	s := newTestServer(t)
	user := test.FakeUser(s.db)
	s.db.Create(&models.WardrobeItem{OwnerID: user.ID, Category: models.CategoryClothing, Name: "white tee"})
	s.db.Create(&models.WardrobeItem{OwnerID: user.ID, Category: models.CategoryFootwear, Name: "loafers"})
	s.db.Create(&models.FavoriteOutfit{UserAccountID: user.ID, Payload: `{"id": 1}`})

	other := test.FakeUserV2(s.db, "Other", "other@example.com")
	s.db.Create(&models.WardrobeItem{OwnerID: other.ID, Category: models.CategoryClothing, Name: "not mine"})

	rec := s.serve(test.NewJSONAuthRequest(http.MethodGet, "/profile/me", UIntToStr(user.ID), ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var out models.UserProfileOut
	decodeBody(t, rec, &out)
	assert.Equal(t, user.Name, out.Name)
	assert.Equal(t, user.Email, out.Email)
	assert.Equal(t, "male", out.Gender)
	assert.Equal(t, "25-34", *out.AgeGroup)
	assert.Nil(t, out.SkinColour)
	assert.EqualValues(t, 2, out.WardrobeCount)
	assert.EqualValues(t, 1, out.FavoritesCount)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	user := test.FakeUser(s.db)

	rec := s.serve(test.NewJSONAuthRequest(http.MethodPatch, "/profile/me", UIntToStr(user.ID), map[string]string{
		"gender":      "female",
		"skin_colour": "olive",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out models.UserProfileOut
	decodeBody(t, rec, &out)
	assert.Equal(t, "female", out.Gender)
	assert.Equal(t, "olive", *out.SkinColour)
	assert.Equal(t, "25-34", *out.AgeGroup)

	var stored models.UserAccount
	require.NoError(t, s.db.First(&stored, user.ID).Error)
	assert.Equal(t, "female", stored.Gender)
	assert.Equal(t, "olive", *stored.SkinColour)
}

func TestRegisterPushToken(t *testing.T) {
	s := newTestServer(t)
	user := test.FakeUser(s.db)

	body := map[string]string{"token": "device-token-1", "platform": "ios"}
	for i := 0; i < 2; i++ {
		rec := s.serve(test.NewJSONAuthRequest(http.MethodPost, "/profile/push-token", UIntToStr(user.ID), body))
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	var count int64
	s.db.Model(&models.UserPushToken{}).Where("token = ? AND user_account_id = ?", "device-token-1", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	rec := s.serve(test.NewJSONAuthRequest(http.MethodPost, "/profile/push-token", UIntToStr(user.ID), map[string]string{
		"token":    "device-token-2",
		"platform": "windows",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
