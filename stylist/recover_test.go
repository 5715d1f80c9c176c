package stylist

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverIdempotentOnValidJSON(t *testing.T) {
	valid := `{"outfits":[{"id":1,"top":{"name":"white tee","reason":"clean"}}],"note":[1,2.5,"x"]}`

	direct, err := Recover(valid)
	require.NoError(t, err)
	repaired, err := Recover(RepairJSON(valid))
	require.NoError(t, err)

	assert.Equal(t, direct, repaired)
}

func TestRecoverRepairsCommonDefects(t *testing.T) {
	expected := map[string]any{"a": json.Number("1"), "b": []any{"x", "y"}}

	cases := map[string]string{
		"fenced":          "```json\n{\"a\": 1, \"b\": [\"x\", \"y\"]}\n```",
		"trailing commas": `{"a":1,"b":["x","y",],}`,
		"leading prose":   `Here is your outfit: {"a": 1, "b": ["x", "y"]}`,
		"trailing prose":  `{"a": 1, "b": ["x", "y"]} Enjoy!`,
		"comments": `{
  // the count
  "a": 1,
  /* the list */ "b": ["x", "y"]
}`,
		"unlabeled fence": "Sure!\n```\n{\"a\": 1, \"b\": [\"x\", \"y\"]}\n```\nHope that helps!",
		"upper label":     "```JSON\n{\"a\": 1, \"b\": [\"x\", \"y\"]}\n```",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			value, err := Recover(raw)
			require.NoError(t, err)
			assert.Equal(t, expected, value)
		})
	}
}

func TestRecoverSkipsNonJSONFence(t *testing.T) {
	raw := "```python\nprint('hi')\n```\nand the data:\n```json\n{\"ok\": true}\n```"

	value, err := Recover(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, value)
}

func TestRecoverFailure(t *testing.T) {
	for _, raw := range []string{"", "no json here", `{"a": }`, "{ broken"} {
		value, err := Recover(raw)
		assert.Nil(t, value, raw)

		var recErr *RecoveryError
		require.True(t, errors.As(err, &recErr), raw)
		assert.Equal(t, raw, recErr.Raw)
	}
}

func TestRepairJSONKeepsURLs(t *testing.T) {
	raw := `{"link": "https://example.com/a", "n": 2,}`
	assert.Equal(t, `{"link": "https://example.com/a", "n": 2}`, RepairJSON(raw))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("  {\"a\":1}  "))
	// trailing commas are left alone
	assert.Equal(t, `{"a":1,}`, StripFences("```json{\"a\":1,}```"))
}
