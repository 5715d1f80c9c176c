package models

import "encoding/json"

type FavoriteOutfit struct {
	JsonModel
	UserAccountID uint        `gorm:"index" json:"-"`
	UserAccount   UserAccount `json:"-"`
	Title         *string     `gorm:"type:varchar(200)" json:"title"`
	SourceItem    *string     `gorm:"type:varchar(200)" json:"source_item"`
	Vibe          *string     `gorm:"type:varchar(100)" json:"vibe"`
	// single outfit as JSON text
	Payload string `gorm:"type:text;not null" json:"payload"`
}

type FavoriteIn struct {
	Title      *string         `json:"title" validate:"omitempty,max=200"`
	SourceItem *string         `json:"source_item" validate:"omitempty,max=200"`
	Vibe       *string         `json:"vibe" validate:"omitempty,max=100"`
	Payload    json.RawMessage `json:"payload" validate:"required"`
}
