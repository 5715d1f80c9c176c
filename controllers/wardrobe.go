package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dripmateapi/models"
	"dripmateapi/services"
	"dripmateapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	presignWorkers    = 8
	uploadGracePeriod = 30 * time.Second
)

type WardrobeController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	// nil disables background analysis
	Enqueuer   TaskEnqueuer
	BucketName string
	Logger     *zap.Logger
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.GET("", controller.ListItems)
	g.GET("/grouped", controller.ListGrouped)
	g.POST("", controller.CreateItem)
	g.PATCH("/:id", controller.UpdateItem)
	g.DELETE("/:id", controller.DeleteItem)
	g.POST("/:id/image", controller.UploadItemImage)
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	query := db.Where("owner_id = ?", user.ID)
	if category := c.QueryParam("category"); category != "" {
		if !models.ValidateItemCategoryRaw(category) {
			return c.JSON(http.StatusBadRequest, errorJSON("Unknown category"))
		}
		query = query.Where("category = ?", category)
	}

	var items []models.WardrobeItem
	if err := query.Order("created_at desc").Find(&items).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to fetch wardrobe"))
	}
	return c.JSON(http.StatusOK, controller.populatePresignedImages(c.Request().Context(), items))
}

func (controller *WardrobeController) ListGrouped(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ?", user.ID).Order("created_at desc").Find(&items).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to fetch wardrobe"))
	}

	response := models.WardrobeGroupedOut{
		Clothing:    []models.WardrobeItemOut{},
		Footwear:    []models.WardrobeItemOut{},
		Accessories: []models.WardrobeItemOut{},
	}
	for _, item := range controller.populatePresignedImages(c.Request().Context(), items) {
		switch item.Category {
		case models.CategoryClothing:
			response.Clothing = append(response.Clothing, item)
		case models.CategoryFootwear:
			response.Footwear = append(response.Footwear, item)
		case models.CategoryAccessory:
			response.Accessories = append(response.Accessories, item)
		}
	}
	return c.JSON(http.StatusOK, response)
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var req models.WardrobeItemIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}

	item := models.WardrobeItem{
		OwnerID:  user.ID,
		Category: models.ItemCategory(req.Category),
		Name:     strings.TrimSpace(req.Name),
		Color:    req.Color,
		Season:   req.Season,
		Pattern:  req.Pattern,
		Style:    req.Style,
		Notes:    req.Notes,
		ImageURL: req.ImageURL,
	}
	if item.ImageURL != nil && *item.ImageURL != "" {
		item.ImageStatus = "uploaded"
	}
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to save wardrobe item"))
	}
	controller.Logger.Info("wardrobe item created", zap.Uint("user_id", user.ID), zap.Uint("item_id", item.ID))

	out := controller.populatePresignedImages(c.Request().Context(), []models.WardrobeItem{item})
	return c.JSON(http.StatusCreated, out[0])
}

func (controller *WardrobeController) UpdateItem(c echo.Context) error {
	db := c.Get("__db").(*gorm.DB)
	item, status, err := controller.ownedItem(c)
	if err != nil {
		return c.JSON(status, errorJSON(err.Error()))
	}

	var req models.WardrobeItemUpdateIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}

	if req.Category != nil {
		item.Category = models.ItemCategory(*req.Category)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		item.Color = req.Color
	}
	if req.Season != nil {
		item.Season = req.Season
	}
	if req.Pattern != nil {
		item.Pattern = req.Pattern
	}
	if req.Style != nil {
		item.Style = req.Style
	}
	if req.Notes != nil {
		item.Notes = req.Notes
	}
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to update wardrobe item"))
	}

	out := controller.populatePresignedImages(c.Request().Context(), []models.WardrobeItem{item})
	return c.JSON(http.StatusOK, out[0])
}

func (controller *WardrobeController) DeleteItem(c echo.Context) error {
	db := c.Get("__db").(*gorm.DB)
	item, status, err := controller.ownedItem(c)
	if err != nil {
		return c.JSON(status, errorJSON(err.Error()))
	}
	if err := db.Delete(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to delete wardrobe item"))
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadItemImage hands out a presigned PUT link for the item photo and
// queues the analysis that fills in the item attributes.
func (controller *WardrobeController) UploadItemImage(c echo.Context) error {
	db := c.Get("__db").(*gorm.DB)
	user := c.Get("currentUser").(models.UserAccount)
	item, status, err := controller.ownedItem(c)
	if err != nil {
		return c.JSON(status, errorJSON(err.Error()))
	}

	var req models.WardrobeImageUploadIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}
	mediaType, ok := services.MediaTypeForExtension(filepath.Ext(req.FileName))
	if !ok {
		return c.JSON(http.StatusUnsupportedMediaType, errorJSON("Only JPEG, PNG and WEBP images are supported"))
	}
	ext, _ := services.ImageExtension(mediaType)

	imageKey := fmt.Sprintf("wardrobe/%d/%s%s", user.ID, uuid.NewString(), ext)
	uploadURL, err := controller.AWSService.PresignLink(c.Request().Context(), controller.BucketName, imageKey)
	if err != nil {
		controller.Logger.Error("unable to presign upload", zap.Uint("item_id", item.ID), zap.Error(err))
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Error while preparing image upload"))
	}

	item.ImageURL = &imageKey
	item.ImageStatus = "uploaded"
	if controller.Enqueuer != nil {
		item.ProcessingStatus = "pending"
		item.ProcessRetryTimes = 0
		item.ProcessErrorMessage = nil
	}
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, errorJSON("Failed to update wardrobe item"))
	}

	if controller.Enqueuer != nil {
		task, err := tasks.NewWardrobeAnalysisTask(item.ID)
		if err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, errorJSON("Sorry, could not process the image, please try again"))
		}
		// the client uploads after this response, give it time before the worker reads
		info, err := controller.Enqueuer.Enqueue(task, asynq.MaxRetry(3), asynq.Queue(tasks.QueueWardrobe), asynq.ProcessIn(uploadGracePeriod))
		if err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, errorJSON("Sorry, could not process the image, please try again"))
		}
		controller.Logger.Info("wardrobe analysis queued", zap.Uint("item_id", item.ID), zap.String("task_id", info.ID))
	}

	return c.JSON(http.StatusOK, models.WardrobeImageUploadOut{
		ItemID:    item.ID,
		UploadURL: uploadURL,
		ImageKey:  imageKey,
	})
}

func (controller *WardrobeController) ownedItem(c echo.Context) (models.WardrobeItem, int, error) {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var item models.WardrobeItem
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return item, http.StatusBadRequest, errors.New("Invalid item id")
	}
	result := db.Where("id = ? AND owner_id = ?", id, user.ID).Take(&item)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return item, http.StatusNotFound, errors.New("Item not found")
	}
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return item, http.StatusInternalServerError, errors.New("Failed to fetch wardrobe item")
	}
	return item, http.StatusOK, nil
}

// populatePresignedImages resolves read links concurrently. A failing cache
// falls back to presigning directly, and a failing presign only leaves the
// link empty.
func (controller *WardrobeController) populatePresignedImages(ctx context.Context, items []models.WardrobeItem) []models.WardrobeItemOut {
	out := make([]models.WardrobeItemOut, len(items))
	p := pool.New().WithMaxGoroutines(presignWorkers)
	for i, item := range items {
		out[i].WardrobeItem = item
		if item.ImageURL == nil || *item.ImageURL == "" {
			continue
		}
		objectKey := *item.ImageURL
		if strings.HasPrefix(objectKey, "http://") || strings.HasPrefix(objectKey, "https://") {
			out[i].ImageReadURL = &objectKey
			continue
		}

		p.Go(func() {
			url, err := controller.URLCache.GetReadURL(ctx, objectKey)
			if err != nil {
				controller.Logger.Warn("url cache failed, presigning directly", zap.String("key", objectKey), zap.Error(err))
				sentry.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("failure_type", "cache_system")
					scope.SetExtra("objectKey", objectKey)
					sentry.CaptureException(err)
				})

				url, err = controller.AWSService.GetPresignedR2FileReadURL(ctx, controller.BucketName, objectKey)
				if err != nil {
					controller.Logger.Error("presign fallback failed", zap.String("key", objectKey), zap.Error(err))
					sentry.CaptureException(err)
					return
				}
			}
			out[i].ImageReadURL = &url
		})
	}
	p.Wait()
	return out
}
