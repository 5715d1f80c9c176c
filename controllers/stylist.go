package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"dripmateapi/llm"
	"dripmateapi/models"
	"dripmateapi/services"
	"dripmateapi/stylist"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StylistController exposes the outfit suggestion and image flows.
type StylistController struct {
	Registry *llm.Registry
	TmpDir   string
	Logger   *zap.Logger
}

type uploadImageFailure struct {
	Error        string                 `json:"error"`
	DetectedItem *stylist.DetectedItem  `json:"detected_item"`
	Outfits      []stylist.VisionOutfit `json:"outfits"`
}

func (controller *StylistController) resolveProvider(name string) (llm.Provider, int, error) {
	var kind llm.ProviderKind
	if strings.TrimSpace(name) != "" {
		parsed, err := llm.ParseProviderKind(name)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		kind = parsed
	}
	provider, err := controller.Registry.Resolve(kind)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return provider, http.StatusOK, nil
}

func (controller *StylistController) Chat(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var req models.ChatIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON(err.Error()))
	}
	provider, status, err := controller.resolveProvider(req.AIProvider)
	if err != nil {
		return c.JSON(status, errorJSON(err.Error()))
	}

	suggestion := stylist.SuggestionRequest{
		Item:     strings.TrimSpace(req.Item),
		Vibe:     strings.TrimSpace(req.Vibe),
		Gender:   profileValue(req.Gender, &user.Gender),
		AgeGroup: profileValue(req.AgeGroup, user.AgeGroup),
		SkinTone: profileValue(req.SkinColour, user.SkinColour),
		NumIdeas: 1,
		Details:  req.MoreDetails,
		Layering: stylist.ParseLayering(req.LayeringPreference),
		Schema:   stylist.ParseSchema(req.Schema),
		Model:    req.Model,
	}
	if req.NumIdeas != nil {
		suggestion.NumIdeas = *req.NumIdeas
	}

	if req.UseWardrobeOnly {
		var items []models.WardrobeItem
		if err := db.Where("owner_id = ?", user.ID).Order("created_at asc").Find(&items).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, errorJSON("Failed to load wardrobe"))
		}
		constraint := &stylist.WardrobeConstraint{}
		for _, item := range items {
			switch item.Category {
			case models.CategoryClothing:
				constraint.Clothing = append(constraint.Clothing, item.Name)
			case models.CategoryAccessory:
				constraint.Accessories = append(constraint.Accessories, item.Name)
			case models.CategoryFootwear:
				constraint.Footwear = append(constraint.Footwear, item.Name)
			}
		}
		suggestion.Wardrobe = constraint
	}

	result := stylist.NewSuggester(provider, controller.Logger).Suggest(c.Request().Context(), suggestion)
	if result.Failed() {
		controller.Logger.Warn("outfit suggestion failed",
			zap.Uint("user_id", user.ID),
			zap.String("provider", provider.Kind().String()),
			zap.String("kind", string(result.Failure.Kind)),
		)
		return c.JSON(http.StatusInternalServerError, errorJSON(result.Failure.Message))
	}
	return c.JSON(http.StatusOK, result)
}

// UploadImage accepts one photo, describes it and builds outfits around it.
// The photo only lives in a per-request temp dir.
func (controller *StylistController) UploadImage(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("An image file is required"))
	}
	ext, ok := services.ImageExtension(fileHeader.Header.Get(echo.HeaderContentType))
	if !ok {
		return c.JSON(http.StatusUnsupportedMediaType, errorJSON("Only JPEG, PNG and WEBP images are supported"))
	}
	mediaType, _ := services.MediaTypeForExtension(ext)

	provider, status, err := controller.resolveProvider(c.FormValue("ai_provider"))
	if err != nil {
		if status == http.StatusBadRequest {
			return c.JSON(status, errorJSON(err.Error()))
		}
		return c.JSON(status, uploadImageFailure{Error: err.Error(), Outfits: []stylist.VisionOutfit{}})
	}

	var wardrobe []stylist.WardrobeDescriptor
	if useWardrobe, _ := strconv.ParseBool(c.FormValue("use_wardrobe")); useWardrobe {
		var items []models.WardrobeItem
		if err := db.Where("owner_id = ?", user.ID).Order("created_at asc").Find(&items).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, uploadImageFailure{Error: "Failed to load wardrobe", Outfits: []stylist.VisionOutfit{}})
		}
		for _, item := range items {
			descriptor := stylist.WardrobeDescriptor{ID: item.ID, Category: string(item.Category), Name: item.Name}
			if item.Color != nil {
				descriptor.Color = *item.Color
			}
			wardrobe = append(wardrobe, descriptor)
		}
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("Could not read the uploaded file"))
	}
	defer src.Close()

	path, cleanup, err := services.SaveUploadToTemp(controller.TmpDir, src, ext)
	defer cleanup()
	if err != nil {
		controller.Logger.Error("failed to store upload", zap.Error(err))
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, uploadImageFailure{Error: "Failed to store the uploaded image", Outfits: []stylist.VisionOutfit{}})
	}

	result := stylist.NewVisionAnalyzer(provider, controller.Logger).OutfitsFromImage(c.Request().Context(), stylist.ImageRequest{
		Image:    llm.Image{Path: path, MIMEType: mediaType},
		Prompt:   strings.TrimSpace(c.FormValue("prompt")),
		Wardrobe: wardrobe,
		Model:    c.FormValue("model"),
	})
	if result.Failed() {
		controller.Logger.Warn("image outfit suggestion failed",
			zap.Uint("user_id", user.ID),
			zap.String("provider", provider.Kind().String()),
			zap.String("kind", string(result.Failure.Kind)),
		)
		return c.JSON(http.StatusInternalServerError, uploadImageFailure{
			Error:        result.Failure.Message,
			DetectedItem: &result.DetectedItem,
			Outfits:      []stylist.VisionOutfit{},
		})
	}
	return c.JSON(http.StatusOK, result)
}

func (controller *StylistController) Models(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"default_provider": controller.Registry.Default(),
		"providers":        controller.Registry.Describe(),
	})
}

// profileValue prefers the request value and falls back to the stored
// profile attribute.
func profileValue(requested *string, stored *string) string {
	if requested != nil && strings.TrimSpace(*requested) != "" {
		return strings.TrimSpace(*requested)
	}
	if stored != nil {
		return strings.TrimSpace(*stored)
	}
	return ""
}
