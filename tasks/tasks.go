package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"dripmateapi/llm"
	"dripmateapi/models"
	"dripmateapi/services"
	"dripmateapi/stylist"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	TypeWardrobeAnalysis = "wardrobe:analyze"
	QueueWardrobe        = "wardrobe"

	maxProcessRetries = 3
)

type WardrobeAnalysisPayload struct {
	ItemID uint `json:"item_id"`
}

func NewWardrobeAnalysisTask(itemID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(WardrobeAnalysisPayload{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWardrobeAnalysis, payload), nil
}

// WardrobeAnalysisDeps is everything the analysis worker touches.
type WardrobeAnalysisDeps struct {
	DB          *gorm.DB
	Analyzer    *stylist.VisionAnalyzer
	AWSService  services.AWSServiceProvider
	BucketName  string
	TmpDir      string
	FirebaseApp *firebase.App
	Logger      *zap.Logger
}

// HandleWardrobeAnalysisTask downloads the item photo, runs the image
// analysis and fills the attributes the user left empty.
func HandleWardrobeAnalysisTask(ctx context.Context, t *asynq.Task, deps WardrobeAnalysisDeps) error {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	db := deps.DB

	var payload WardrobeAnalysisPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	logger = logger.With(zap.Uint("item_id", payload.ItemID))

	var item models.WardrobeItem
	result := db.Where("id = ?", payload.ItemID).Take(&item)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		// deleted before the worker picked it up
		logger.Info("wardrobe item is gone, skipping analysis")
		return nil
	}
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return result.Error
	}
	if item.ImageURL == nil || *item.ImageURL == "" {
		saveWardrobeProcessingFail(db, item, "Item has no image to analyze", false)
		return nil
	}

	db.Model(&item).Update("processing_status", "analyzing")

	imageKey := *item.ImageURL
	readURL := imageKey
	if !strings.HasPrefix(imageKey, "http://") && !strings.HasPrefix(imageKey, "https://") {
		var err error
		readURL, err = deps.AWSService.GetPresignedR2FileReadURL(ctx, deps.BucketName, imageKey)
		if err != nil {
			logger.Error("failed to presign image read", zap.String("key", imageKey), zap.Error(err))
			sentry.CaptureException(err)
			saveWardrobeProcessingFail(db, item, "Failed to access the image, retrying", true)
			return err
		}
	}

	content, err := services.ReadFileFromUrl(ctx, readURL)
	if err != nil {
		logger.Error("failed to download image", zap.Error(err))
		saveWardrobeProcessingFail(db, item, "Failed to download the image, retrying", true)
		return err
	}

	ext := strings.ToLower(filepath.Ext(strings.SplitN(imageKey, "?", 2)[0]))
	if ext == "" {
		ext = ".jpg"
	}
	mediaType, ok := services.MediaTypeForExtension(ext)
	if !ok {
		mediaType = "image/jpeg"
	}
	path, cleanup, err := services.SaveUploadToTemp(deps.TmpDir, bytes.NewReader(content), ext)
	defer cleanup()
	if err != nil {
		sentry.CaptureException(err)
		return err
	}

	detected := deps.Analyzer.Analyze(ctx, llm.Image{Path: path, MIMEType: mediaType}, "")
	if detected.Name == nil && detected.Category == nil {
		logger.Warn("wardrobe analysis returned nothing", zap.String("reason", detected.Description))
		saveWardrobeProcessingFail(db, item, detected.Description, true)
		return fmt.Errorf("[Wardrobe %v] %s", item.ID, detected.Description)
	}

	fillEmpty(&item.Color, detected.Color)
	fillEmpty(&item.Pattern, detected.Pattern)
	fillEmpty(&item.Style, detected.Style)
	fillEmpty(&item.Season, detected.Season)
	if item.Notes == nil && detected.Description != "" {
		item.Notes = services.StrPointer(detected.Description)
	}
	item.ProcessingStatus = "completed"
	item.ProcessErrorMessage = nil
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}
	logger.Info("wardrobe item analyzed")

	services.SendNotification(ctx, deps.FirebaseApp, db, logger, item.OwnerID,
		"Your item is ready",
		fmt.Sprintf("We finished tagging your %s", item.Name),
		map[string]string{"wardrobe_item_id": fmt.Sprint(item.ID)},
	)
	return nil
}

func fillEmpty(field **string, value *string) {
	if value == nil || *value == "" {
		return
	}
	if *field == nil || **field == "" {
		v := *value
		*field = &v
	}
}

func saveWardrobeProcessingFail(db *gorm.DB, item models.WardrobeItem, msg string, shouldRetry bool) error {
	item.ProcessRetryTimes = item.ProcessRetryTimes + 1
	item.ProcessErrorMessage = &msg
	item.ProcessingStatus = "pending"
	if !shouldRetry || item.ProcessRetryTimes >= maxProcessRetries {
		item.ProcessingStatus = "failed"
	}
	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Wardrobe %v] Error on saving item for failed status", item.ID))
		return tx.Error
	}
	return nil
}
