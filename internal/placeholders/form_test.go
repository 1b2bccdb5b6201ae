package placeholders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildForm(t *testing.T) {
	schema, err := Parse([]byte(sampleSchema))
	require.NoError(t, err)

	bank := map[string][]string{
		"Backend": {"Built **APIs** in Go", "Ran Postgres at scale"},
		"Cloud":   {"Moved workloads to AWS"},
	}
	categories := []string{"Frontend", "Backend", "DevOps", "Cloud", "Metrics", "Database"}

	form := BuildForm(schema, bank, categories, map[string]string{"Bullet1": "Backend", "Summary": "Gardening"}, now)

	// inline fields alternate left/right in document order
	require.Len(t, form.Left, 2)
	require.Len(t, form.Right, 2)
	assert.Equal(t, "Company", form.Left[0].Key)
	assert.Equal(t, "Company name", form.Left[0].Label)
	assert.Equal(t, "Role", form.Right[0].Key)
	assert.Equal(t, "Backend Engineer", form.Right[0].Value)
	assert.Equal(t, "date", form.Left[1].Key)
	assert.Equal(t, "2026-10-01", form.Left[1].DateValue)
	assert.Equal(t, "Hiring", form.Right[1].Key)

	require.Len(t, form.Bullets, 2)
	assert.Equal(t, "Bullet1", form.Bullets[0].Key)
	assert.Equal(t, "Backend", form.Bullets[0].Category)
	assert.Equal(t, bank["Backend"], form.Bullets[0].BankBullets)
	assert.Equal(t, categories, form.Bullets[0].Categories)

	// unknown category is ignored
	assert.Equal(t, "Summary", form.Bullets[1].Key)
	assert.Empty(t, form.Bullets[1].Category)
	assert.Nil(t, form.Bullets[1].BankBullets)
}

func TestBuildForm_StoredDateAndFallback(t *testing.T) {
	schema := NewSchema()
	schema.Set("saved", Field{Type: TypeDate, Value: TextValue("05.March.2026")})
	schema.Set("broken", Field{Type: TypeDate, Value: TextValue("whenever")})

	form := BuildForm(schema, nil, nil, nil, now)

	assert.Equal(t, "2026-03-05", form.Left[0].DateValue)
	assert.Equal(t, "2026-10-19", form.Right[0].DateValue)
}
