package placeholders

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/tidwall/gjson"
)

// FieldType selects how a placeholder is edited
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeSelect   FieldType = "select"
	TypeDate     FieldType = "date"
	TypeTextarea FieldType = "textarea"
	TypeBullets  FieldType = "bullets"
)

const (
	// InputDateLayout is the layout of HTML date inputs
	InputDateLayout = "2006-01-02"
	// StoredDateLayout is how date placeholders are saved and rendered
	StoredDateLayout = "02.January.2006"
)

var ErrInvalidSchema = errors.New("invalid placeholder schema")

// Field is one entry of the placeholder schema
type Field struct {
	Type    FieldType `json:"type"`
	Label   string    `json:"label,omitempty"`
	Value   Value     `json:"value"`
	Options []string  `json:"options,omitempty"`
}

// DisplayLabel returns the label, or the key capitalised when none is set
func (f *Field) DisplayLabel(key string) string {
	if f.Label != "" {
		return f.Label
	}
	return capitalize(key)
}

// Choices returns the select options wherever the schema put them
func (f *Field) Choices() []string {
	if len(f.Value.Options) > 0 {
		return f.Value.Options
	}
	return f.Options
}

// IsInline reports whether the field belongs to the two-column first pass
func (f *Field) IsInline() bool {
	switch f.Type {
	case TypeText, TypeSelect, TypeDate:
		return true
	default:
		return false
	}
}

// IsBullet reports whether the field belongs to the bullet pass
func (f *Field) IsBullet() bool {
	return f.Type == TypeTextarea || f.Type == TypeBullets
}

// Schema is an ordered set of placeholder fields. Key order follows the
// JSON document and is kept on write.
type Schema struct {
	keys   []string
	fields map[string]*Field
}

// NewSchema creates an empty schema
func NewSchema() *Schema {
	return &Schema{fields: make(map[string]*Field)}
}

// Set adds or replaces a field, appending new keys at the end
func (s *Schema) Set(key string, field Field) {
	if s.fields == nil {
		s.fields = make(map[string]*Field)
	}
	if _, exists := s.fields[key]; !exists {
		s.keys = append(s.keys, key)
	}
	f := field
	s.fields[key] = &f
}

// Get returns the field for key
func (s *Schema) Get(key string) (*Field, bool) {
	f, ok := s.fields[key]
	return f, ok
}

// Keys returns field keys in document order
func (s *Schema) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Len returns the number of fields
func (s *Schema) Len() int {
	return len(s.keys)
}

// Parse decodes a placeholder JSON document, keeping key order
func Parse(data []byte) (*Schema, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidSchema)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidSchema)
	}

	schema := NewSchema()
	var parseErr error
	root.ForEach(func(key, value gjson.Result) bool {
		var field Field
		if err := json.Unmarshal([]byte(value.Raw), &field); err != nil {
			parseErr = fmt.Errorf("%w: field %q: %v", ErrInvalidSchema, key.String(), err)
			return false
		}
		if field.Type == "" {
			field.Type = TypeText
		}
		schema.Set(key.String(), field)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return schema, nil
}

// MarshalJSON writes fields in document order
func (s *Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.fields[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON lets a Schema be the target of ReadJSON
func (s *Schema) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// Apply copies submitted form values into the schema. Keys absent from the
// schema are ignored. Date values arrive as YYYY-MM-DD and are stored as
// 02.January.2006; an unparseable date becomes today.
func (s *Schema) Apply(values map[string]string, now time.Time) {
	for _, key := range s.keys {
		submitted, ok := values[key]
		if !ok {
			continue
		}
		field := s.fields[key]

		switch field.Type {
		case TypeDate:
			field.Value.Text = FormatStoredDate(submitted, now)
		case TypeSelect:
			field.Value.Text = strings.TrimSpace(submitted)
		default:
			field.Value.Text = submitted
		}
	}
}

// Mapping returns key -> rendered text for document substitution
func (s *Schema) Mapping() map[string]string {
	out := make(map[string]string, len(s.keys))
	for _, key := range s.keys {
		out[key] = s.fields[key].Value.Rendered()
	}
	return out
}

// FormatStoredDate converts a date input value into the stored layout
func FormatStoredDate(input string, now time.Time) string {
	return ParseDate(input, now).Format(StoredDateLayout)
}

// ParseDate reads a date value in either input or stored layout, falling
// back to today's date
func ParseDate(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range []string{InputDateLayout, StoredDateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
