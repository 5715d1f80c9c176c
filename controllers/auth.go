package controllers

import (
	"errors"
	"net/http"
	"strings"

	"dripmateapi/config"
	"dripmateapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	Config *config.Config
	Logger *zap.Logger
}

func (controller *AuthController) AuthRoutes(g *echo.Group) {
	g.POST("/signup", controller.SignUp)
	g.POST("/login", controller.Login)
}

func (controller *AuthController) SignUp(c echo.Context) error {
	db := c.Get("__db").(*gorm.DB)
	var req models.SignUpIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}

	var existing int64
	if err := db.Model(&models.UserAccount{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to register, please try again"))
	}
	if existing > 0 {
		return c.JSON(http.StatusBadRequest, errorJSON("Email already registered"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to register, please try again"))
	}

	user := models.UserAccount{
		Name:       req.Name,
		Email:      req.Email,
		Password:   string(hash),
		Gender:     req.Gender,
		AgeGroup:   req.AgeGroup,
		SkinColour: req.SkinColour,
		Platform:   models.Platform(req.Platform),
		LastIp:     c.RealIP(),
	}
	if err := db.Create(&user).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to register, please try again"))
	}
	controller.Logger.Info("user signed up", zap.Uint("user_id", user.ID))

	return controller.respondWithToken(c, user)
}

func (controller *AuthController) Login(c echo.Context) error {
	db := c.Get("__db").(*gorm.DB)
	var req models.LoginIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}

	var user models.UserAccount
	result := db.Where("email = ?", req.Email).Take(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusUnauthorized, errorJSON("Incorrect email or password"))
	}
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to login, please try again"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, errorJSON("Incorrect email or password"))
	}
	if user.Banned {
		return c.JSON(http.StatusLocked, errorJSON("Account is locked"))
	}

	db.Model(&user).Update("last_ip", c.RealIP())
	return controller.respondWithToken(c, user)
}

func (controller *AuthController) respondWithToken(c echo.Context, user models.UserAccount) error {
	token, err := GenerateUserToken(UIntToStr(user.ID), controller.Config.Auth.JWTSecret, controller.Config.Auth.TokenExpiryHrs)
	if err != nil {
		controller.Logger.Error("failed to sign user token", zap.Uint("user_id", user.ID), zap.Error(err))
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to issue token"))
	}
	return c.JSON(http.StatusOK, models.TokenOut{AccessToken: token, TokenType: "bearer"})
}
