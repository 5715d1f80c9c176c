package stylist

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

type Category string

const (
	CategoryTop      Category = "top"
	CategoryBottom   Category = "bottom"
	CategoryLayer    Category = "layer"
	CategoryFootwear Category = "footwear"
)

type categoryRule struct {
	category Category
	keywords []string
}

// Evaluated top to bottom, first hit wins. Keywords match at the start of a
// word, so "harvest" is not a vest and "jean jacket" falls through to layer.
var categoryRules = []categoryRule{
	{CategoryBottom, []string{"jeans", "pant", "trouser", "chino", "shorts", "skirt", "legging", "jogger", "slack", "cargo"}},
	{CategoryFootwear, []string{"sneaker", "shoe", "boot", "loafer", "sandal", "heel", "trainer", "slipper", "oxfords", "mule", "flip-flop", "clog"}},
	{CategoryLayer, []string{"jacket", "coat", "hoodie", "sweater", "cardigan", "blazer", "parka", "vest", "overshirt", "windbreaker", "puffer", "fleece", "pullover", "bomber"}},
}

// GuessCategory infers a coarse category from an item name by keyword
// matching. Unknown names are tops.
func GuessCategory(name string) Category {
	folder := cases.Fold()
	folded := folder.String(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if hasWordPrefix(folded, folder.String(kw)) {
				return rule.category
			}
		}
	}
	return CategoryTop
}

// hasWordPrefix reports whether kw occurs in s at a word start.
func hasWordPrefix(s, kw string) bool {
	for offset := 0; offset <= len(s); {
		idx := strings.Index(s[offset:], kw)
		if idx < 0 {
			return false
		}
		start := offset + idx
		if start == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(s[:start])
		if !unicode.IsLetter(prev) {
			return true
		}
		offset = start + 1
	}
	return false
}

type NormalizeOptions struct {
	Schema Schema
	// BaseItem enables the category post-processing for the typed schema.
	BaseItem string
}

// NormalizeOutfits maps a recovered JSON value onto the outfit schema. It
// never fails: anything it does not understand is dropped.
func NormalizeOutfits(data any, opts NormalizeOptions) []Outfit {
	entries, ok := outfitEntries(data)
	if !ok {
		return []Outfit{}
	}

	baseIsBottom := opts.BaseItem != "" && GuessCategory(opts.BaseItem) == CategoryBottom

	outfits := make([]Outfit, 0, len(entries))
	for i, entry := range entries {
		obj, isObj := entry.(map[string]any)
		if !isObj {
			continue
		}

		outfit := Outfit{ID: coerceID(obj["id"], i+1)}
		if opts.Schema == SchemaClassic {
			outfit.Item1 = coercePiece(obj, "item1")
			outfit.Item2 = coercePiece(obj, "item2")
			outfit.Footwear = coercePiece(obj, "footwear")
		} else {
			outfit.Top = coercePiece(obj, "top")
			outfit.Bottom = coercePiece(obj, "bottom")
			outfit.Layer = coercePiece(obj, "layer", "outer_layer", "outer-layer")
			outfit.Footwear = coercePiece(obj, "footwear")
			reclassifyLegacy(&outfit, obj)
			if baseIsBottom {
				outfit.Bottom = nil
			}
		}
		outfits = append(outfits, outfit)
	}
	return outfits
}

// reclassifyLegacy moves item1/item2 pieces into typed slots that are still
// empty.
func reclassifyLegacy(outfit *Outfit, obj map[string]any) {
	for _, key := range []string{"item1", "item2"} {
		piece := coercePiece(obj, key)
		if piece == nil || piece.Name == "" {
			continue
		}
		var slot **OutfitPiece
		switch GuessCategory(piece.Name) {
		case CategoryBottom:
			slot = &outfit.Bottom
		case CategoryFootwear:
			slot = &outfit.Footwear
		case CategoryLayer:
			slot = &outfit.Layer
		default:
			slot = &outfit.Top
		}
		if *slot == nil {
			*slot = piece
		}
	}
}

func outfitEntries(data any) ([]any, bool) {
	root, ok := data.(map[string]any)
	if !ok {
		return nil, false
	}
	entries, ok := root["outfits"].([]any)
	return entries, ok
}

// coercePiece reads the first present key. Objects keep name and reason, a
// bare string becomes the name, null or absent stays absent.
func coercePiece(obj map[string]any, keys ...string) *OutfitPiece {
	for _, key := range keys {
		raw, present := obj[key]
		if !present || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case map[string]any:
			return &OutfitPiece{Name: stringify(v["name"]), Reason: stringify(v["reason"])}
		case string:
			return &OutfitPiece{Name: v}
		default:
			return &OutfitPiece{}
		}
	}
	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

func coerceID(v any, fallback int) int {
	if n, ok := coerceInt(v); ok {
		return n
	}
	return fallback
}

// fitsInt rejects NaN, infinities and values int cannot hold.
func fitsInt(f float64) bool {
	return f >= math.MinInt && f < math.MaxInt
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil && fitsInt(f) {
			return int(f), true
		}
	case float64:
		if fitsInt(t) {
			return int(t), true
		}
	case int:
		return t, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// NormalizeVisionOutfits is the vision schema counterpart of
// NormalizeOutfits.
func NormalizeVisionOutfits(data any) []VisionOutfit {
	entries, ok := outfitEntries(data)
	if !ok {
		return []VisionOutfit{}
	}

	outfits := make([]VisionOutfit, 0, len(entries))
	for i, entry := range entries {
		obj, isObj := entry.(map[string]any)
		if !isObj {
			continue
		}
		outfits = append(outfits, VisionOutfit{
			ID:          coerceID(obj["id"], i+1),
			Name:        stringify(obj["name"]),
			Item1:       coerceVisionPiece(obj["item1"]),
			Item2:       coerceVisionPiece(obj["item2"]),
			Footwear:    coerceVisionPiece(obj["footwear"]),
			Accessories: coerceAccessories(obj["accessories"]),
			Reason:      stringify(obj["reason"]),
		})
	}
	return outfits
}

func coerceVisionPiece(raw any) *VisionPiece {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		piece := &VisionPiece{Name: stringify(v["name"])}
		if n, ok := coerceInt(v["id"]); ok && n > 0 {
			id := uint(n)
			piece.ID = &id
		}
		return piece
	case string:
		return &VisionPiece{Name: v}
	}
	return &VisionPiece{}
}

// coerceAccessories accepts a list or a single piece. Pieces named "none"
// are dropped.
func coerceAccessories(raw any) []VisionPiece {
	accessories := []VisionPiece{}
	var candidates []any
	switch v := raw.(type) {
	case []any:
		candidates = v
	case nil:
		return accessories
	default:
		candidates = []any{v}
	}
	for _, c := range candidates {
		piece := coerceVisionPiece(c)
		if piece == nil {
			continue
		}
		name := strings.TrimSpace(piece.Name)
		if name == "" || strings.EqualFold(name, "none") {
			continue
		}
		accessories = append(accessories, *piece)
	}
	return accessories
}
