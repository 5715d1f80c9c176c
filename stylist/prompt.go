package stylist

import (
	"fmt"
	"strings"
)

const typedOutputExample = `{
  "outfits": [
    {
      "id": 1,
      "top": {"name": "...", "reason": "..."},
      "bottom": {"name": "...", "reason": "..."},
      "layer": {"name": "...", "reason": "..."},
      "footwear": {"name": "...", "reason": "..."}
    }
  ]
}`

const classicOutputExample = `{
  "outfits": [
    {
      "id": 1,
      "item1": {"name": "...", "reason": "..."},
      "item2": {"name": "...", "reason": "..."},
      "footwear": {"name": "...", "reason": "..."}
    }
  ]
}`

// BuildSuggestionPrompt renders the chat prompt. Optional attributes that are
// empty are left out entirely.
func BuildSuggestionPrompt(req SuggestionRequest) string {
	parts := []string{
		"You are 'DripMate,' a world-class AI fashion stylist.",
		"You MUST follow all rules and user constraints precisely.",
		"\n**CRITICAL RULE 1:** The user provides ONE base item. You suggest OTHER pieces that complement it to complete the outfit.",
		"DO NOT suggest another item of the same type or category as the base item.",
		"\n**CRITICAL RULE 2 (LAYERING):**",
	}

	switch req.Layering {
	case LayeringSuggest:
		parts = append(parts, "- The user WANTS a layering piece (jacket, coat, hoodie, sweater, etc.).")
	case LayeringForbid:
		parts = append(parts, "- The user DOES NOT want any layering pieces. NO jackets, coats, hoodies, or sweaters.")
	default:
		parts = append(parts, "- Use your judgment. Suggest layers only if practical and enhances the vibe.")
	}

	var profile []string
	if v := strings.TrimSpace(req.Gender); v != "" {
		profile = append(profile, fmt.Sprintf("- Gender: %s", v))
	}
	if v := strings.TrimSpace(req.AgeGroup); v != "" {
		profile = append(profile, fmt.Sprintf("- Age Group: %s", v))
	}
	if v := strings.TrimSpace(req.SkinTone); v != "" {
		profile = append(profile, fmt.Sprintf("- Skin Tone: %s. Suggest complementary colors.", v))
	}
	if len(profile) > 0 {
		parts = append(parts, "\n**USER PROFILE:**")
		parts = append(parts, profile...)
	}

	parts = append(parts,
		"\n**USER REQUEST:**",
		fmt.Sprintf("- Base Item: %s", strings.TrimSpace(req.Item)),
		fmt.Sprintf("- Desired Vibe: %s", strings.TrimSpace(req.Vibe)),
	)
	if v := strings.TrimSpace(req.Details); v != "" {
		parts = append(parts, fmt.Sprintf("- Additional Details: %s", v))
	}

	if req.Wardrobe != nil {
		parts = append(parts, wardrobeSection(req.Wardrobe)...)
	}

	schema := req.Schema
	if schema == "" {
		schema = SchemaTyped
	}
	parts = append(parts,
		"\n**YOUR TASK:**",
		fmt.Sprintf("Generate exactly %d distinct outfit idea(s).", clampIdeas(req.NumIdeas)),
	)
	if schema == SchemaClassic {
		parts = append(parts, "For each outfit, suggest: 'item1', 'item2', and 'footwear'.")
	} else {
		parts = append(parts,
			"For each outfit, fill the slots 'top', 'bottom', 'layer' and 'footwear'.",
			"Leave out a slot (or set it to null) when it does not apply, including the slot the base item already covers.",
		)
	}
	parts = append(parts,
		"Each item needs 'name' and 'reason'.",
		"Return ONLY valid JSON. NO markdown, NO code fences, NO comments, NO trailing commas, NO text before or after the JSON.",
		"\n**JSON FORMAT:**",
	)
	if schema == SchemaClassic {
		parts = append(parts, classicOutputExample)
	} else {
		parts = append(parts, typedOutputExample)
	}

	return strings.Join(parts, "\n")
}

func wardrobeSection(w *WardrobeConstraint) []string {
	section := []string{
		"\n**WARDROBE CONSTRAINT:**",
		"You MUST ONLY use items from these lists:",
	}
	if len(w.Items) > 0 {
		for _, item := range w.Items {
			section = append(section, descriptorLine(item))
		}
	} else {
		section = append(section,
			fmt.Sprintf("- CLOTHING: %s", joinOrNone(w.Clothing)),
			fmt.Sprintf("- ACCESSORIES: %s", joinOrNone(w.Accessories)),
			fmt.Sprintf("- FOOTWEAR: %s", joinOrNone(w.Footwear)),
		)
	}
	return append(section,
		"DO NOT invent items that are not in these lists.",
		"If a list is empty, do your best with the available categories.",
	)
}

func descriptorLine(item WardrobeDescriptor) string {
	category := item.Category
	if category == "" {
		category = "item"
	}
	if item.Color == "" {
		return fmt.Sprintf("- %s: %s", category, item.Name)
	}
	return fmt.Sprintf("- %s: %s (%s)", category, item.Name, item.Color)
}

func joinOrNone(values []string) string {
	names := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			names = append(names, v)
		}
	}
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func clampIdeas(n int) int {
	if n < 1 {
		return 1
	}
	if n > 3 {
		return 3
	}
	return n
}

// BuildAnalysisPrompt asks a vision model for a structured description of a
// single clothing item.
func BuildAnalysisPrompt() string {
	return `Analyze this clothing item and provide a JSON response:
{
  "category": "clothing|footwear|accessory",
  "name": "specific item name (e.g., 'black hoodie', 'blue jeans')",
  "color": "dominant color (e.g., 'black', 'blue', 'white')",
  "pattern": "pattern type (e.g., 'striped', 'plain', 'floral') or null",
  "style": "style (e.g., 'casual', 'formal', 'streetwear') or null",
  "season": "best season (e.g., 'summer', 'winter', 'all-season') or null",
  "description": "brief 1-2 sentence description"
}

Return ONLY valid JSON, no markdown.`
}

// BuildVisionOutfitPrompt builds the second vision phase prompt around the
// detected item.
func BuildVisionOutfitPrompt(item DetectedItem, userPrompt string, wardrobe []WardrobeDescriptor) string {
	var b strings.Builder
	b.WriteString("Based on this clothing item, suggest 3 complete outfit combinations.")
	if v := strings.TrimSpace(userPrompt); v != "" {
		b.WriteString(" ")
		b.WriteString(v)
	}

	name := "unknown"
	if item.Name != nil && *item.Name != "" {
		name = *item.Name
	}
	fmt.Fprintf(&b, "\n\nDetected: %s - %s", name, item.Description)

	if len(wardrobe) > 0 {
		b.WriteString("\n\nUser's wardrobe:")
		for _, w := range wardrobe {
			b.WriteString("\n")
			if w.ID != 0 {
				fmt.Fprintf(&b, "%s [id %d]", descriptorLine(w), w.ID)
			} else {
				b.WriteString(descriptorLine(w))
			}
		}
		b.WriteString("\n\nSuggest outfits using these items when possible and set \"id\" to the wardrobe id of every item you use.")
	}

	b.WriteString(`

Provide JSON format:
{
  "outfits": [
    {
      "name": "outfit name",
      "item1": {"name": "top/shirt", "id": null},
      "item2": {"name": "bottom/pants", "id": null},
      "footwear": {"name": "shoes", "id": null},
      "accessories": [{"name": "accessory", "id": null}],
      "reason": "why this works"
    }
  ]
}

Rules:
1. Include the detected item in EVERY outfit
2. Make suggestions practical and stylish
3. Return ONLY valid JSON, no markdown`)

	return b.String()
}
