package models

import (
	"github.com/go-playground/validator"
)

type ItemCategory string

const (
	CategoryClothing  ItemCategory = "clothing"
	CategoryFootwear  ItemCategory = "footwear"
	CategoryAccessory ItemCategory = "accessory"
)

var ItemCategories = []ItemCategory{CategoryClothing, CategoryFootwear, CategoryAccessory}

func (c *ItemCategory) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*c = ItemCategory(v)
	case []byte:
		*c = ItemCategory(v)
	}
	return nil
}

func (c ItemCategory) Value() string {
	return string(c)
}

func ValidateItemCategory(fl validator.FieldLevel) bool {
	return ValidateItemCategoryRaw(fl.Field().String())
}

func ValidateItemCategoryRaw(value string) bool {
	for _, c := range ItemCategories {
		if string(c) == value {
			return true
		}
	}
	return false
}

type WardrobeItem struct {
	JsonModel
	Owner    UserAccount  `json:"-"`
	OwnerID  uint         `gorm:"index" json:"-"`
	Category ItemCategory `gorm:"type:varchar(20);not null" json:"category"`
	Name     string       `gorm:"type:varchar(200);not null" json:"name"`
	Color    *string      `gorm:"type:varchar(100)" json:"color"`
	Season   *string      `gorm:"type:varchar(50)" json:"season"` // summer, winter, all-season
	Pattern  *string      `gorm:"type:varchar(50)" json:"pattern"`
	Style    *string      `gorm:"type:varchar(50)" json:"style"`
	Notes    *string      `gorm:"type:varchar(500)" json:"notes"`
	// object key in the bucket or an external URL
	ImageURL *string `gorm:"type:varchar(500)" json:"image_url"`

	ImageStatus         string  `gorm:"default:none" json:"image_status"`      // none, draft, uploaded
	ProcessingStatus    string  `gorm:"default:idle" json:"processing_status"` // idle, analyzing, completed, failed
	ProcessRetryTimes   int     `json:"process_retry_times"`
	ProcessErrorMessage *string `json:"process_error_message"`
}

type WardrobeItemIn struct {
	Category string  `json:"category" validate:"required,item_category"`
	Name     string  `json:"name" validate:"required,max=200"`
	Color    *string `json:"color" validate:"omitempty,max=100"`
	Season   *string `json:"season" validate:"omitempty,max=50"`
	Pattern  *string `json:"pattern" validate:"omitempty,max=50"`
	Style    *string `json:"style" validate:"omitempty,max=50"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=500"`
	Notes    *string `json:"notes" validate:"omitempty,max=500"`
}

type WardrobeItemUpdateIn struct {
	Category *string `json:"category" validate:"omitempty,item_category"`
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Color    *string `json:"color" validate:"omitempty,max=100"`
	Season   *string `json:"season" validate:"omitempty,max=50"`
	Pattern  *string `json:"pattern" validate:"omitempty,max=50"`
	Style    *string `json:"style" validate:"omitempty,max=50"`
	Notes    *string `json:"notes" validate:"omitempty,max=500"`
}

type WardrobeImageUploadIn struct {
	FileName string `json:"file_name" validate:"required"`
}

type WardrobeImageUploadOut struct {
	ItemID    uint   `json:"item_id"`
	UploadURL string `json:"upload_url"`
	ImageKey  string `json:"image_key"`
}

// WardrobeItemOut carries a short-lived read link when the image lives in
// the bucket.
type WardrobeItemOut struct {
	WardrobeItem
	ImageReadURL *string `json:"image_read_url"`
}

type WardrobeGroupedOut struct {
	Clothing    []WardrobeItemOut `json:"clothing"`
	Footwear    []WardrobeItemOut `json:"footwear"`
	Accessories []WardrobeItemOut `json:"accessories"`
}
