package placeholders

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a placeholder value. Most fields hold plain text; select fields
// may carry their options, in which case the value is stored as an object
// {"options": [...], "selected": "..."}. An object read with a "value" key
// instead of "selected" is written back the same way.
type Value struct {
	Text    string
	Options []string

	object   bool
	valueKey string
}

const (
	keySelected = "selected"
	keyValue    = "value"
)

// TextValue returns a plain string value
func TextValue(s string) Value {
	return Value{Text: s}
}

// Rendered is the text substituted into the document. A select without a
// choice falls back to its first option.
func (v Value) Rendered() string {
	if v.Text == "" && len(v.Options) > 0 {
		return v.Options[0]
	}
	return v.Text
}

type valueObject struct {
	Options  []string `json:"options"`
	Selected *string  `json:"selected"`
	Value    *string  `json:"value"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.object && len(v.Options) == 0 {
		return json.Marshal(v.Text)
	}
	options := v.Options
	if options == nil {
		options = []string{}
	}
	key := v.valueKey
	if key == "" {
		key = keySelected
	}
	return json.Marshal(map[string]interface{}{"options": options, key: v.Text})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value{Text: s}
	case '{':
		var obj valueObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("invalid select value: %w", err)
		}
		*v = Value{Options: obj.Options, object: true, valueKey: keySelected}
		switch {
		case obj.Selected != nil:
			v.Text = *obj.Selected
		case obj.Value != nil:
			v.Text = *obj.Value
			v.valueKey = keyValue
		}
	case '[':
		// a bare list is read as the options of a select
		var options []string
		if err := json.Unmarshal(data, &options); err != nil {
			return fmt.Errorf("invalid options list: %w", err)
		}
		*v = Value{Options: options, object: true}
	default:
		// numbers and booleans are kept as their literal text
		*v = Value{Text: string(data)}
	}
	return nil
}
