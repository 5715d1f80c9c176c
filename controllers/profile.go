package controllers

import (
	"net/http"

	"dripmateapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProfileController struct {
	Logger *zap.Logger
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("/me", controller.GetProfile)
	g.PATCH("/me", controller.UpdateProfile)
	g.POST("/push-token", controller.RegisterPushToken)
}

func (controller *ProfileController) GetProfile(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	out := models.UserProfileOut{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Gender:     user.Gender,
		AgeGroup:   user.AgeGroup,
		SkinColour: user.SkinColour,
	}
	if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ?", user.ID).Count(&out.WardrobeCount).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to load profile"))
	}
	if err := db.Model(&models.FavoriteOutfit{}).Where("user_account_id = ?", user.ID).Count(&out.FavoritesCount).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to load profile"))
	}
	return c.JSON(http.StatusOK, out)
}

func (controller *ProfileController) UpdateProfile(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var req models.ProfileUpdateIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.AgeGroup != nil {
		updates["age_group"] = *req.AgeGroup
	}
	if req.SkinColour != nil {
		updates["skin_colour"] = *req.SkinColour
	}
	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, errorJSON("Failed to update profile"))
		}
		controller.Logger.Info("profile updated", zap.Uint("user_id", user.ID), zap.Int("fields", len(updates)))
		if err := db.Take(&user, user.ID).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, errorJSON("Failed to load profile"))
		}
	}

	c.Set("currentUser", user)
	return controller.GetProfile(c)
}

func (controller *ProfileController) RegisterPushToken(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var req models.UserPushIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}

	pushData := models.UserPushToken{
		Platform:      models.Platform(req.Platform),
		Token:         req.Token,
		UserAccountID: user.ID,
		Active:        true,
	}
	// same device can sign in to different accounts and still receive pushes
	result := db.Where("token = ? and user_account_id = ?", req.Token, user.ID).FirstOrCreate(&pushData)
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to register push token"))
	}
	if !pushData.Active {
		db.Model(&pushData).Update("active", true)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "registered",
		"push_id": pushData.ID,
	})
}
