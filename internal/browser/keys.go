package browser

import (
	"fmt"
	"strings"
)

// KeyStep is one unit of a typed sequence: either literal text or a single
// named key press.
type KeyStep struct {
	Text string
	Key  string
}

var specialKeys = map[string]string{
	"enter":     "Enter",
	"tab":       "Tab",
	"esc":       "Escape",
	"backspace": "Backspace",
	"del":       "Delete",
	"selectall": "ControlOrMeta+a",
	"{":         "",
}

// ParseKeys splits text such as "test@example.com{enter}" into steps.
// "{{}" types a literal "{". Unknown or unterminated braces are errors.
func ParseKeys(text string) ([]KeyStep, error) {
	var steps []KeyStep
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			steps = append(steps, KeyStep{Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		if text[i] != '{' {
			lit.WriteByte(text[i])
			i++
			continue
		}
		end := strings.IndexByte(text[i+1:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unterminated key sequence at offset %d in %q", i, text)
		}
		name := text[i+1 : i+1+end]
		key, ok := specialKeys[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown key {%s} in %q", name, text)
		}
		if name == "{" {
			lit.WriteByte('{')
		} else {
			flush()
			steps = append(steps, KeyStep{Key: key})
		}
		i += end + 2
	}
	flush()
	return steps, nil
}
