package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"dripmateapi/models"
	"dripmateapi/tasks"
	"dripmateapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateAndListWardrobe(t *testing.T) {
	s := newTestServer(t)
	user := test.FakeUser(s.db)
	uid := UIntToStr(user.ID)

	rec := s.serve(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe", uid, map[string]interface{}{
		"category": "clothing",
		"name":     " white tee ",
		"color":    "white",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.WardrobeItemOut
	decodeBody(t, rec, &created)
	assert.Equal(t, "white tee", created.Name)
	assert.Equal(t, "white", *created.Color)
	assert.Nil(t, created.ImageReadURL)

	rec = s.serve(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe", uid, map[string]interface{}{
		"category":  "footwear",
		"name":      "loafers",
		"image_url": "wardrobe/1/loafers.jpg",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.serve(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe", uid, map[string]interface{}{
		"category":  "accessory",
		"name":      "cap",
		"image_url": "https://cdn.example.com/cap.png",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.serve(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe", uid, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.WardrobeItemOut
	decodeBody(t, rec, &items)
	require.Len(t, items, 3)

	byName := map[string]models.WardrobeItemOut{}
	for _, item := range items {
		byName[item.Name] = item
	}
	assert.Equal(t, "https://cached.example.com/wardrobe/1/loafers.jpg", *byName["loafers"].ImageReadURL)
	assert.Equal(t, "https://cdn.example.com/cap.png", *byName["cap"].ImageReadURL)
	assert.Nil(t, byName["white tee"].ImageReadURL)

	rec = s.serve(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe?category=footwear", uid, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	items = nil
	decodeBody(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "loafers", items[0].Name)

	rec = s.serve(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe/grouped", uid, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	var grouped models.WardrobeGroupedOut
	decodeBody(t, rec, &grouped)
	assert.Len(t, grouped.Clothing, 1)
	assert.Len(t, grouped.Footwear, 1)
	assert.Len(t, grouped.Accessories, 1)
}

func TestCreateWardrobeValidation(t *testing.T) {
	s := newTestServer(t)
	user := test.FakeUser(s.db)

	for _, body := range []map[string]interface{}{
		{"category": "hat", "name": "fedora"},
		{"category": "clothing"},
		{"category": "clothing", "name": strings.Repeat("x", 201)},
	} {
		rec := s.serve(test.NewJSONAuthRequest(http.MethodPost, "/wardrobe", UIntToStr(user.ID), body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, fmt.Sprint(body))
	}

	rec := s.serve(test.NewJSONAuthRequest(http.MethodGet, "/wardrobe?category=hat", UIntToStr(user.ID), ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteWardrobeItem(t *testing.T) {
	s := newTestServer(t)
	user := test.FakeUser(s.db)
	other := test.FakeUserV2(s.db, "Other", "other@example.com")

	item := models.WardrobeItem{OwnerID: user.ID, Category: models.CategoryClothing, Name: "shirt"}
	require.NoError(t, s.db.Create(&item).Error)
	target := fmt.Sprintf("/wardrobe/%d", item.ID)

	rec := s.serve(test.NewJSONAuthRequest(http.MethodPatch, target, UIntToStr(user.ID), map[string]string{
		"name":  "linen shirt",
		"style": "minimal",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.WardrobeItemOut
	decodeBody(t, rec, &updated)
	assert.Equal(t, "linen shirt", updated.Name)
	assert.Equal(t, "minimal", *updated.Style)
	assert.Equal(t, models.CategoryClothing, updated.Category)

	// other users can neither see nor touch the item
	rec = s.serve(test.NewJSONAuthRequest(http.MethodPatch, target, UIntToStr(other.ID), map[string]string{"name": "stolen"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.serve(test.NewJSONAuthRequest(http.MethodDelete, target, UIntToStr(other.ID), ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.serve(test.NewJSONAuthRequest(http.MethodDelete, "/wardrobe/abc", UIntToStr(user.ID), ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.serve(test.NewJSONAuthRequest(http.MethodDelete, target, UIntToStr(user.ID), ""))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	s.db.Model(&models.WardrobeItem{}).Where("id = ?", item.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestUploadWardrobeItemImage(t *testing.T) {
	s := newTestServer(t)
	user := test.FakeUser(s.db)

	item := models.WardrobeItem{OwnerID: user.ID, Category: models.CategoryClothing, Name: "hoodie"}
	require.NoError(t, s.db.Create(&item).Error)
	target := fmt.Sprintf("/wardrobe/%d/image", item.ID)

	rec := s.serve(test.NewJSONAuthRequest(http.MethodPost, target, UIntToStr(user.ID), map[string]string{"file_name": "IMG_001.JPEG"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out models.WardrobeImageUploadOut
	decodeBody(t, rec, &out)
	assert.Equal(t, item.ID, out.ItemID)
	assert.True(t, strings.HasPrefix(out.ImageKey, fmt.Sprintf("wardrobe/%d/", user.ID)), out.ImageKey)
	assert.True(t, strings.HasSuffix(out.ImageKey, ".jpg"), out.ImageKey)
	assert.Equal(t, "https://fakebucketurl.com/"+out.ImageKey, out.UploadURL)

	var stored models.WardrobeItem
	require.NoError(t, s.db.First(&stored, item.ID).Error)
	assert.Equal(t, out.ImageKey, *stored.ImageURL)
	assert.Equal(t, "uploaded", stored.ImageStatus)
	assert.Equal(t, "pending", stored.ProcessingStatus)

	require.Len(t, s.enqueuer.Tasks, 1)
	assert.Equal(t, tasks.TypeWardrobeAnalysis, s.enqueuer.Tasks[0].Type())
	assert.JSONEq(t, fmt.Sprintf(`{"item_id": %d}`, item.ID), string(s.enqueuer.Tasks[0].Payload()))

	rec = s.serve(test.NewJSONAuthRequest(http.MethodPost, target, UIntToStr(user.ID), map[string]string{"file_name": "notes.pdf"}))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Len(t, s.enqueuer.Tasks, 1)
}

func TestPopulatePresignedImagesFallsBackWhenCacheFails(t *testing.T) {
	controller := WardrobeController{
		AWSService: test.AWSProviderMock{},
		URLCache:   test.URLCacheMock{Err: errors.New("cache down")},
		BucketName: "dripmate-test",
		Logger:     zap.NewNop(),
	}
	key := "wardrobe/1/a.png"
	out := controller.populatePresignedImages(context.Background(), []models.WardrobeItem{
		{Name: "a", ImageURL: &key},
		{Name: "b"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Name)
	assert.Equal(t, "https://fakebucketurl.com/read/wardrobe/1/a.png", *out[0].ImageReadURL)
	assert.Nil(t, out[1].ImageReadURL)
}
