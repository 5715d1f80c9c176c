package models

type ChatIn struct {
	Item string `json:"item" validate:"required"`
	Vibe string `json:"vibe" validate:"required"`

	// filled from the profile when empty
	Gender     *string `json:"gender"`
	AgeGroup   *string `json:"age_group"`
	SkinColour *string `json:"skin_colour"`

	NumIdeas           *int   `json:"num_ideas" validate:"omitempty,min=1,max=3"`
	MoreDetails        string `json:"more_details"`
	LayeringPreference string `json:"layering_preference"`
	UseWardrobeOnly    bool   `json:"use_wardrobe_only"`
	// typed (default) or classic
	Schema string `json:"schema" validate:"omitempty,oneof=typed classic"`

	AIProvider string `json:"ai_provider"`
	Model      string `json:"model"`
}
