package placeholders

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `{
  "Company": {"type": "text", "label": "Company name", "value": "Acme"},
  "Role": {"type": "select", "label": "Role", "value": {"options": ["Backend Engineer", "Cloud Engineer"]}},
  "date": {"type": "date", "value": "2026-10-01"},
  "Hiring": {"type": "text", "value": ""},
  "Bullet1": {"type": "bullets", "label": "First bullet", "value": "Built **APIs** in Go"},
  "Summary": {"type": "textarea", "value": "Hello"}
}`

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestParse_KeepsDocumentOrder(t *testing.T) {
	schema, err := Parse([]byte(sampleSchema))
	require.NoError(t, err)

	assert.Equal(t, []string{"Company", "Role", "date", "Hiring", "Bullet1", "Summary"}, schema.Keys())

	role, ok := schema.Get("Role")
	require.True(t, ok)
	assert.Equal(t, TypeSelect, role.Type)
	assert.Equal(t, []string{"Backend Engineer", "Cloud Engineer"}, role.Choices())
	assert.Equal(t, "Backend Engineer", role.Value.Rendered())
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = Parse([]byte(`{"a": `))
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = Parse([]byte(`{"a": {"type": "select", "value": {"options": "nope"}}}`))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestApply(t *testing.T) {
	schema, err := Parse([]byte(sampleSchema))
	require.NoError(t, err)

	schema.Apply(map[string]string{
		"Company": "Globex",
		"Role":    "Cloud Engineer",
		"date":    "2026-10-18",
		"Bullet1": "Shipped **Terraform** modules",
		"Unknown": "ignored",
	}, now)

	mapping := schema.Mapping()
	assert.Equal(t, "Globex", mapping["Company"])
	assert.Equal(t, "Cloud Engineer", mapping["Role"])
	assert.Equal(t, "18.October.2026", mapping["date"])
	assert.Equal(t, "Shipped **Terraform** modules", mapping["Bullet1"])
	assert.Equal(t, "Hello", mapping["Summary"])
	assert.NotContains(t, mapping, "Unknown")
}

func TestApply_BadDateBecomesToday(t *testing.T) {
	schema := NewSchema()
	schema.Set("date", Field{Type: TypeDate})

	schema.Apply(map[string]string{"date": "someday"}, now)
	assert.Equal(t, "19.October.2026", schema.Mapping()["date"])
}

func TestMarshal_PreservesOrderAndSelectShape(t *testing.T) {
	schema, err := Parse([]byte(sampleSchema))
	require.NoError(t, err)
	schema.Apply(map[string]string{"Role": "Cloud Engineer"}, now)

	data, err := json.MarshalIndent(schema, "", "  ")
	require.NoError(t, err)

	reparsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, schema.Keys(), reparsed.Keys())

	role, _ := reparsed.Get("Role")
	assert.Equal(t, "Cloud Engineer", role.Value.Text)
	assert.Equal(t, []string{"Backend Engineer", "Cloud Engineer"}, role.Choices())

	company, _ := reparsed.Get("Company")
	assert.Equal(t, "Acme", company.Value.Text)

	var generic map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, "Acme", generic["Company"]["value"])
	assert.IsType(t, map[string]interface{}{}, generic["Role"]["value"])
}

func TestValue_UnmarshalVariants(t *testing.T) {
	tests := []struct {
		raw     string
		text    string
		options []string
	}{
		{`"plain"`, "plain", nil},
		{`null`, "", nil},
		{`42`, "42", nil},
		{`{"options": ["a", "b"], "selected": "b"}`, "b", []string{"a", "b"}},
		{`{"options": ["a"], "value": "a"}`, "a", []string{"a"}},
		{`["x", "y"]`, "", []string{"x", "y"}},
	}

	for _, tt := range tests {
		var v Value
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &v), tt.raw)
		assert.Equal(t, tt.text, v.Text, tt.raw)
		assert.Equal(t, tt.options, v.Options, tt.raw)
	}
}

func TestValue_MarshalKeepsSelectionKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"options": ["X", "Y"], "value": "X"}`, `{"options":["X","Y"],"value":"Y"}`},
		{`{"options": ["X", "Y"], "selected": "X"}`, `{"options":["X","Y"],"selected":"Y"}`},
		{`{"options": ["X", "Y"]}`, `{"options":["X","Y"],"selected":"Y"}`},
		{`["X", "Y"]`, `{"options":["X","Y"],"selected":"Y"}`},
	}

	for _, tt := range tests {
		var v Value
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &v), tt.raw)
		v.Text = "Y"

		data, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(data), tt.raw)
	}
}

func TestSchema_RoundTripKeepsValueKey(t *testing.T) {
	schema, err := Parse([]byte(`{"Role": {"type": "select", "value": {"options": ["X", "Y"], "value": "X"}}}`))
	require.NoError(t, err)

	schema.Apply(map[string]string{"Role": "Y"}, time.Now())
	data, err := json.Marshal(schema)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"value":"Y"`)
	assert.NotContains(t, string(data), `"selected"`)
}

func TestDisplayLabel(t *testing.T) {
	f := &Field{}
	assert.Equal(t, "Company", f.DisplayLabel("company"))
	assert.Equal(t, "Hiringmanager", f.DisplayLabel("hiringManager"))

	f.Label = "Hiring manager"
	assert.Equal(t, "Hiring manager", f.DisplayLabel("hiringManager"))
}
