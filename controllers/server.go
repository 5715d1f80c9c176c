package controllers

import (
	"net/http"

	"dripmateapi/config"
	"dripmateapi/llm"
	"dripmateapi/models"
	"dripmateapi/services"

	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("item_category", models.ValidateItemCategory)
	return &CustomValidator{validator: v}
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func SetupServer(
	db *gorm.DB,
	cfg *config.Config,
	registry *llm.Registry,
	awsService services.AWSServiceProvider,
	urlCache services.URLCacheServiceProvider,
	enqueuer TaskEnqueuer,
	logger *zap.Logger,
) *echo.Echo {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if cfg.Server.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.RateLimit))))
	}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"message":          "Welcome to DripMate API!",
			"default_provider": registry.Default(),
			"version":          "2.0.0",
			"features":         []string{"Auth", "Wardrobe", "Favorites", "AI Outfit Suggestions", "Image Analysis"},
		})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	protected := []echo.MiddlewareFunc{echojwt.JWT([]byte(cfg.Auth.JWTSecret)), UserMiddleware}

	authController := AuthController{Config: cfg, Logger: logger}
	authController.AuthRoutes(e.Group("/auth"))

	profileController := ProfileController{Logger: logger}
	profileController.ProfileRoutes(e.Group("/profile", protected...))

	wardrobeController := WardrobeController{
		AWSService: awsService,
		URLCache:   urlCache,
		Enqueuer:   enqueuer,
		BucketName: cfg.Storage.BucketName,
		Logger:     logger,
	}
	wardrobeController.WardrobeRoutes(e.Group("/wardrobe", protected...))

	favoritesController := FavoritesController{Logger: logger}
	favoritesController.FavoritesRoutes(e.Group("/favorites", protected...))

	stylistController := StylistController{
		Registry: registry,
		TmpDir:   cfg.Uploads.TmpDir,
		Logger:   logger,
	}
	e.POST("/chat", stylistController.Chat, protected...)
	e.POST("/upload-image", stylistController.UploadImage, protected...)
	e.GET("/models", stylistController.Models)

	return e
}
