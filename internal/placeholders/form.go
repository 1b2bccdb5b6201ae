package placeholders

import "time"

// InputField is a text, select or date input in the two-column section
type InputField struct {
	Key     string
	Label   string
	Type    FieldType
	Value   string
	Options []string
	// DateValue is the YYYY-MM-DD form of a date field
	DateValue string
}

// BulletField is a textarea with a category picker and bank browser
type BulletField struct {
	Key        string
	Label      string
	Value      string
	Categories []string
	Category   string
	// BankBullets lists the saved bullets of Category
	BankBullets []string
}

// Form is the view model of a placeholder schema
type Form struct {
	Left    []InputField
	Right   []InputField
	Bullets []BulletField
}

// BuildForm lays the schema out in two passes: inline fields alternate
// between the left and right columns, then bullet fields follow. chosen maps
// a bullet key to the category currently selected for it.
func BuildForm(schema *Schema, bank map[string][]string, categories []string, chosen map[string]string, now time.Time) Form {
	var form Form

	left := true
	for _, key := range schema.keys {
		field := schema.fields[key]
		if !field.IsInline() {
			continue
		}

		input := InputField{
			Key:     key,
			Label:   field.DisplayLabel(key),
			Type:    field.Type,
			Value:   field.Value.Text,
			Options: field.Choices(),
		}
		switch field.Type {
		case TypeDate:
			input.DateValue = ParseDate(field.Value.Text, now).Format(InputDateLayout)
		case TypeSelect:
			input.Value = field.Value.Rendered()
			if input.Value == "" && len(input.Options) > 0 {
				input.Value = input.Options[0]
			}
		}

		if left {
			form.Left = append(form.Left, input)
		} else {
			form.Right = append(form.Right, input)
		}
		left = !left
	}

	for _, key := range schema.keys {
		field := schema.fields[key]
		if !field.IsBullet() {
			continue
		}

		bf := BulletField{
			Key:        key,
			Label:      field.DisplayLabel(key),
			Value:      field.Value.Text,
			Categories: categories,
		}
		if category, ok := chosen[key]; ok && containsString(categories, category) {
			bf.Category = category
			bf.BankBullets = bank[category]
		}
		form.Bullets = append(form.Bullets, bf)
	}

	return form
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
