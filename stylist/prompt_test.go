package stylist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSuggestionPromptOmitsAbsentAttributes(t *testing.T) {
	prompt := BuildSuggestionPrompt(SuggestionRequest{
		Item:     "black hoodie",
		Vibe:     "streetwear",
		NumIdeas: 2,
	})

	assert.Contains(t, prompt, "You are 'DripMate,' a world-class AI fashion stylist.")
	assert.Contains(t, prompt, "- Base Item: black hoodie")
	assert.Contains(t, prompt, "- Desired Vibe: streetwear")
	assert.Contains(t, prompt, "Generate exactly 2 distinct outfit idea(s).")

	for _, absent := range []string{"USER PROFILE", "Gender", "Age Group", "Skin Tone", "Additional Details", "WARDROBE CONSTRAINT", "None", "<nil>"} {
		assert.NotContains(t, prompt, absent)
	}
}

func TestBuildSuggestionPromptOrder(t *testing.T) {
	prompt := BuildSuggestionPrompt(SuggestionRequest{
		Item:     "blue jeans",
		Vibe:     "smart casual",
		Gender:   "female",
		AgeGroup: "25-34",
		SkinTone: "olive",
		NumIdeas: 1,
		Details:  "office friendly",
		Layering: LayeringForbid,
		Wardrobe: &WardrobeConstraint{Clothing: []string{"white tee", " "}, Footwear: []string{"loafers"}},
	})

	ordered := []string{
		"You are 'DripMate,'",
		"**CRITICAL RULE 1:**",
		"NO jackets, coats, hoodies, or sweaters.",
		"**USER PROFILE:**",
		"- Gender: female",
		"- Age Group: 25-34",
		"- Skin Tone: olive. Suggest complementary colors.",
		"- Base Item: blue jeans",
		"- Desired Vibe: smart casual",
		"- Additional Details: office friendly",
		"**WARDROBE CONSTRAINT:**",
		"- CLOTHING: white tee",
		"- ACCESSORIES: (none)",
		"- FOOTWEAR: loafers",
		"DO NOT invent items",
		"**YOUR TASK:**",
		"NO trailing commas",
		"**JSON FORMAT:**",
		`"top": {"name": "...", "reason": "..."}`,
	}
	last := -1
	for _, fragment := range ordered {
		idx := strings.Index(prompt, fragment)
		if assert.NotEqual(t, -1, idx, fragment) {
			assert.Greater(t, idx, last, fragment)
			last = idx
		}
	}
}

func TestBuildSuggestionPromptLayering(t *testing.T) {
	suggest := BuildSuggestionPrompt(SuggestionRequest{Item: "tee", Vibe: "casual", Layering: LayeringSuggest})
	auto := BuildSuggestionPrompt(SuggestionRequest{Item: "tee", Vibe: "casual"})

	assert.Contains(t, suggest, "The user WANTS a layering piece")
	assert.NotContains(t, suggest, "Use your judgment")
	assert.Contains(t, auto, "Use your judgment")
}

func TestBuildSuggestionPromptClassicSchemaAndDescriptors(t *testing.T) {
	prompt := BuildSuggestionPrompt(SuggestionRequest{
		Item:   "white shirt",
		Vibe:   "minimal",
		Schema: SchemaClassic,
		Wardrobe: &WardrobeConstraint{Items: []WardrobeDescriptor{
			{ID: 4, Category: "clothing", Name: "grey chinos", Color: "grey"},
			{ID: 5, Category: "footwear", Name: "white sneakers"},
		}},
		NumIdeas: 9,
	})

	assert.Contains(t, prompt, "- clothing: grey chinos (grey)")
	assert.Contains(t, prompt, "- footwear: white sneakers")
	assert.Contains(t, prompt, `"item1": {"name": "...", "reason": "..."}`)
	assert.NotContains(t, prompt, `"top"`)
	assert.Contains(t, prompt, "Generate exactly 3 distinct outfit idea(s).")
}

func TestBuildVisionOutfitPrompt(t *testing.T) {
	name := "black hoodie"
	prompt := BuildVisionOutfitPrompt(DetectedItem{Name: &name, Description: "A cozy hoodie."}, "for a concert", []WardrobeDescriptor{
		{ID: 7, Category: "clothing", Name: "cargo pants", Color: "olive"},
	})

	assert.Contains(t, prompt, "suggest 3 complete outfit combinations. for a concert")
	assert.Contains(t, prompt, "Detected: black hoodie - A cozy hoodie.")
	assert.Contains(t, prompt, "- clothing: cargo pants (olive) [id 7]")
	assert.Contains(t, prompt, "Include the detected item in EVERY outfit")

	bare := BuildVisionOutfitPrompt(DetectedItem{Description: "Analysis failed: timeout"}, "", nil)
	assert.Contains(t, bare, "Detected: unknown - Analysis failed: timeout")
	assert.NotContains(t, bare, "User's wardrobe")
}

func TestParseLayeringAndSchema(t *testing.T) {
	assert.Equal(t, LayeringSuggest, ParseLayering("Suggest Layers"))
	assert.Equal(t, LayeringForbid, ParseLayering("No Layers"))
	assert.Equal(t, LayeringAuto, ParseLayering("AI Decides"))
	assert.Equal(t, LayeringAuto, ParseLayering(""))
	assert.Equal(t, SchemaClassic, ParseSchema("Classic"))
	assert.Equal(t, SchemaTyped, ParseSchema(""))
}
