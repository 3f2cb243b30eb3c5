package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name string `validate:"required"`
	Sort string `validate:"omitempty,oneof=name price createdAt popularity"`
	Page int    `validate:"gte=0,lte=1000"`
}

func TestValidate_Success(t *testing.T) {
	s := testStruct{Name: "laptops", Sort: "price", Page: 2}
	err := Validate(s)
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	s := testStruct{Page: 1}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Name")
	assert.Equal(t, "is required", fields["Name"])
}

func TestValidate_OutOfRange(t *testing.T) {
	s := testStruct{Name: "laptops", Page: 2000}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Page")
	assert.Contains(t, fields["Page"], "1000")
}

func TestValidate_OneOf(t *testing.T) {
	s := testStruct{Name: "laptops", Sort: "rating"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields["Sort"], "one of")
}

func TestValidate_MultipleErrors(t *testing.T) {
	s := testStruct{Sort: "rating", Page: -1}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "Sort")
	assert.Contains(t, fields, "Page")
}

func TestValidationError_ErrorString(t *testing.T) {
	s := testStruct{}
	err := Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Name'")
	assert.Contains(t, err.Error(), "is required")
}

type minMaxStruct struct {
	Short string `validate:"min=3"`
	Long  string `validate:"max=5"`
}

func TestValidate_MinMax(t *testing.T) {
	s := minMaxStruct{Short: "ab", Long: "toolongstring"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields["Short"], "at least 3")
	assert.Contains(t, fields["Long"], "at most 5")
}

type priceWindow struct {
	MinPrice float64 `validate:"gte=0"`
	MaxPrice float64 `validate:"omitempty,gtefield=MinPrice"`
}

func TestValidate_GteField(t *testing.T) {
	s := priceWindow{MinPrice: 500, MaxPrice: 100}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields["MaxPrice"], "MinPrice")
}
