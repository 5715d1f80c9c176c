package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"dripmateapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FavoritesController struct {
	Logger *zap.Logger
}

type FavoriteOut struct {
	ID         uint            `json:"id"`
	Title      *string         `json:"title"`
	SourceItem *string         `json:"source_item"`
	Vibe       *string         `json:"vibe"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  string          `json:"created_at"`
}

func (controller *FavoritesController) FavoritesRoutes(g *echo.Group) {
	g.GET("", controller.ListFavorites)
	g.POST("", controller.CreateFavorite)
	g.DELETE("/:id", controller.DeleteFavorite)
}

func favoriteOut(favorite models.FavoriteOutfit) FavoriteOut {
	payload := json.RawMessage(favorite.Payload)
	if !json.Valid(payload) {
		// stored before payloads were validated
		payload, _ = json.Marshal(favorite.Payload)
	}
	return FavoriteOut{
		ID:         favorite.ID,
		Title:      favorite.Title,
		SourceItem: favorite.SourceItem,
		Vibe:       favorite.Vibe,
		Payload:    payload,
		CreatedAt:  favorite.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (controller *FavoritesController) ListFavorites(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var favorites []models.FavoriteOutfit
	if err := db.Where("user_account_id = ?", user.ID).Order("created_at desc").Find(&favorites).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to fetch favorites"))
	}

	response := make([]FavoriteOut, 0, len(favorites))
	for _, favorite := range favorites {
		response = append(response, favoriteOut(favorite))
	}
	return c.JSON(http.StatusOK, response)
}

func (controller *FavoritesController) CreateFavorite(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var req models.FavoriteIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}
	if len(req.Payload) == 0 || string(req.Payload) == "null" {
		return c.JSON(http.StatusBadRequest, errorJSON("Payload is required"))
	}

	favorite := models.FavoriteOutfit{
		UserAccountID: user.ID,
		Title:         req.Title,
		SourceItem:    req.SourceItem,
		Vibe:          req.Vibe,
		Payload:       string(req.Payload),
	}
	if err := db.Create(&favorite).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to save favorite"))
	}
	controller.Logger.Info("favorite saved", zap.Uint("user_id", user.ID), zap.Uint("favorite_id", favorite.ID))
	return c.JSON(http.StatusCreated, favoriteOut(favorite))
}

func (controller *FavoritesController) DeleteFavorite(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid favorite id"))
	}
	var favorite models.FavoriteOutfit
	result := db.Where("id = ? AND user_account_id = ?", id, user.ID).Take(&favorite)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, errorJSON("Favorite not found"))
	}
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to fetch favorite"))
	}
	if err := db.Delete(&favorite).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to delete favorite"))
	}
	return c.NoContent(http.StatusNoContent)
}
