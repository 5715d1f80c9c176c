package stylist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	lineCommentRe   = regexp.MustCompile(`(?m)^\s*//.*$`)
	blockCommentRe  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

var errTrailingData = errors.New("unexpected data after top-level value")

// RecoveryError is returned when model output could not be parsed even after
// the repair pipeline ran.
type RecoveryError struct {
	Raw   string
	Cause error
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("could not parse model output as JSON: %v", e.Cause)
}

func (e *RecoveryError) Unwrap() error {
	return e.Cause
}

// Recover parses raw model text. A strict parse is tried first; when it fails
// the text goes through RepairJSON and is parsed one more time. Numbers are
// decoded as json.Number.
func Recover(raw string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = &RecoveryError{Raw: raw, Cause: fmt.Errorf("panic during recovery: %v", r)}
		}
	}()

	if value, err = decodeStrict(raw); err == nil {
		return value, nil
	}

	repaired := RepairJSON(raw)
	value, err = decodeStrict(repaired)
	if err != nil {
		return nil, &RecoveryError{Raw: raw, Cause: err}
	}
	return value, nil
}

// RepairJSON applies the deterministic cleanup steps: pick a clean fenced
// block, otherwise slice from the first '{' to the last '}', then strip
// comments and trailing commas.
func RepairJSON(raw string) string {
	text := strings.TrimSpace(raw)

	if block, ok := pickFencedBlock(text); ok {
		text = block
	} else if !(strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}")) {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start != -1 && end > start {
			text = text[start : end+1]
		}
	}

	text = lineCommentRe.ReplaceAllString(text, "")
	text = blockCommentRe.ReplaceAllString(text, "")
	text = trailingCommaRe.ReplaceAllString(text, "$1")

	return strings.TrimSpace(text)
}

func pickFencedBlock(text string) (string, bool) {
	if !strings.Contains(text, "```") {
		return "", false
	}
	segments := strings.Split(text, "```")
	// odd indexes are inside a fence
	for i := 1; i < len(segments); i += 2 {
		block := strings.TrimSpace(segments[i])
		if len(block) >= 4 && strings.EqualFold(block[:4], "json") {
			block = strings.TrimSpace(block[4:])
		}
		if strings.HasPrefix(block, "{") && strings.HasSuffix(block, "}") {
			return block, true
		}
	}
	return "", false
}

// StripFences removes a surrounding markdown fence and nothing else. Used by
// the vision flow, which does not run the comment and comma repair.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func decodeStrict(text string) (any, error) {
	dec := json.NewDecoder(bytes.NewBufferString(text))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errTrailingData
	}
	return value, nil
}
