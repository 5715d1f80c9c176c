package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SignUpIn struct {
	Name       string  `json:"name" validate:"required,max=100"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6"`
	Gender     string  `json:"gender" validate:"required"`
	AgeGroup   *string `json:"age_group"`
	SkinColour *string `json:"skin_colour"`
	Platform   string  `json:"platform" validate:"omitempty,platform"`
}

type LoginIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenOut struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ProfileUpdateIn struct {
	Name       *string `json:"name" validate:"omitempty,max=100"`
	Gender     *string `json:"gender"`
	AgeGroup   *string `json:"age_group"`
	SkinColour *string `json:"skin_colour"`
}

type UserProfileOut struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Gender         string  `json:"gender"`
	AgeGroup       *string `json:"age_group"`
	SkinColour     *string `json:"skin_colour"`
	WardrobeCount  int64   `json:"wardrobe_count"`
	FavoritesCount int64   `json:"favorites_count"`
}
