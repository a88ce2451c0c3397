package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createRequest struct {
	Title      string   `validate:"required"`
	CategoryID string   `validate:"omitempty,uuid"`
	Image      string   `validate:"omitempty,url"`
	Price      float64  `validate:"gte=0"`
	Stock      int      `validate:"gte=0,lte=100000"`
	Tags       []string `validate:"dive,min=1"`
}

// fieldsOf asserts err is a *ValidationError and returns its field map.
func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Valid(t *testing.T) {
	req := createRequest{
		Title:      "Galaxy S24",
		CategoryID: "550e8400-e29b-41d4-a716-446655440000",
		Image:      "https://cdn.example.com/s24.webp",
		Price:      999.99,
		Stock:      12,
		Tags:       []string{"phones"},
	}
	assert.NoError(t, Validate(req))
}

func TestValidate_MissingRequired(t *testing.T) {
	fields := fieldsOf(t, Validate(createRequest{Price: 10}))
	assert.Equal(t, "is required", fields["Title"])
}

func TestValidate_BadUUID(t *testing.T) {
	req := createRequest{Title: "x", CategoryID: "phones"}
	fields := fieldsOf(t, Validate(req))
	assert.Equal(t, "must be a valid UUID", fields["CategoryID"])
}

func TestValidate_BadURL(t *testing.T) {
	req := createRequest{Title: "x", Image: "not a url"}
	fields := fieldsOf(t, Validate(req))
	assert.Equal(t, "must be a valid URL", fields["Image"])
}

func TestValidate_RangeBounds(t *testing.T) {
	req := createRequest{Title: "x", Price: -1, Stock: 200000}
	fields := fieldsOf(t, Validate(req))
	assert.Contains(t, fields["Price"], "greater than or equal to 0")
	assert.Contains(t, fields["Stock"], "less than or equal to 100000")
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	req := createRequest{CategoryID: "nope", Price: -5}
	fields := fieldsOf(t, Validate(req))
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "Title")
	assert.Contains(t, fields, "CategoryID")
	assert.Contains(t, fields, "Price")
}

func TestValidationError_Message(t *testing.T) {
	err := Validate(createRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Title' is required")
}

func TestValidate_StringLengths(t *testing.T) {
	var req struct {
		Slug string `validate:"min=3,max=64"`
	}
	req.Slug = "ab"
	fields := fieldsOf(t, Validate(req))
	assert.Contains(t, fields["Slug"], "at least 3")
}

func TestValidate_OneOf(t *testing.T) {
	var req struct {
		Sort string `validate:"oneof=created_at price title"`
	}
	req.Sort = "stock"
	fields := fieldsOf(t, Validate(req))
	assert.Contains(t, fields["Sort"], "must be one of")
}
