package stylist

import (
	"strings"
)

type Layering string

const (
	LayeringSuggest Layering = "suggest"
	LayeringForbid  Layering = "forbid"
	LayeringAuto    Layering = "auto"
)

// ParseLayering accepts both the enum values and the labels used by the web
// client ("Suggest Layers", "No Layers", "AI Decides"). Anything else is auto.
func ParseLayering(value string) Layering {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "suggest", "suggest layers":
		return LayeringSuggest
	case "forbid", "no layers", "none":
		return LayeringForbid
	}
	return LayeringAuto
}

type Schema string

const (
	// top, bottom, layer, footwear
	SchemaTyped Schema = "typed"
	// item1, item2, footwear
	SchemaClassic Schema = "classic"
)

func ParseSchema(value string) Schema {
	if strings.EqualFold(strings.TrimSpace(value), string(SchemaClassic)) {
		return SchemaClassic
	}
	return SchemaTyped
}

type WardrobeDescriptor struct {
	ID       uint   `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
}

// WardrobeConstraint limits suggestions to the user's own items. Either the
// categorized name lists or the flat Items list is used, Items first.
type WardrobeConstraint struct {
	Clothing    []string
	Accessories []string
	Footwear    []string
	Items       []WardrobeDescriptor
}

type SuggestionRequest struct {
	Item     string
	Vibe     string
	Gender   string
	AgeGroup string
	SkinTone string
	NumIdeas int
	Details  string
	Layering Layering
	Wardrobe *WardrobeConstraint
	Schema   Schema
	Model    string
}

type OutfitPiece struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Outfit struct {
	ID       int          `json:"id"`
	Top      *OutfitPiece `json:"top,omitempty"`
	Bottom   *OutfitPiece `json:"bottom,omitempty"`
	Layer    *OutfitPiece `json:"layer,omitempty"`
	Item1    *OutfitPiece `json:"item1,omitempty"`
	Item2    *OutfitPiece `json:"item2,omitempty"`
	Footwear *OutfitPiece `json:"footwear,omitempty"`
}

type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureMalformed FailureKind = "malformed"
	FailureEmpty     FailureKind = "empty"
)

type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Failure) Error() string {
	return f.Message
}

type State string

const (
	StateBuilding    State = "building"
	StateInvoking    State = "invoking"
	StateRecovering  State = "recovering"
	StateNormalizing State = "normalizing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

type SuggestionResult struct {
	Outfits []Outfit `json:"outfits"`
	Failure *Failure `json:"-"`
	State   State    `json:"-"`
}

func (r SuggestionResult) Failed() bool {
	return r.Failure != nil
}

type DetectedItem struct {
	Category    *string `json:"category"`
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Pattern     *string `json:"pattern"`
	Style       *string `json:"style"`
	Season      *string `json:"season"`
	Description string  `json:"description"`
}

type VisionPiece struct {
	Name string `json:"name"`
	ID   *uint  `json:"id"`
}

type VisionOutfit struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Item1       *VisionPiece  `json:"item1,omitempty"`
	Item2       *VisionPiece  `json:"item2,omitempty"`
	Footwear    *VisionPiece  `json:"footwear,omitempty"`
	Accessories []VisionPiece `json:"accessories"`
	Reason      string        `json:"reason"`
}

type ImageSuggestionResult struct {
	DetectedItem DetectedItem   `json:"detected_item"`
	Outfits      []VisionOutfit `json:"outfits"`
	Failure      *Failure       `json:"-"`
	State        State          `json:"-"`
}

func (r ImageSuggestionResult) Failed() bool {
	return r.Failure != nil
}
