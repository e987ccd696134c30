package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingInput struct {
	BusinessName string `json:"businessName" validate:"required,min=2"`
	Address      string `json:"address" validate:"required,min=5"`
	Website      string `json:"website" validate:"omitempty,url"`
	MondayOpen   string `json:"mondayOpen" validate:"omitempty,clock"`
	Mode         string `json:"mode" validate:"omitempty,oneof=strict legacy-fallback"`
	Internal     string `json:"-" validate:"max=3"`
	NoTag        string `validate:"max=3"`
}

func validInput() listingInput {
	return listingInput{
		BusinessName: "Acme Corp",
		Address:      "1 Main St, Springfield",
		Website:      "https://acme.example.com",
		MondayOpen:   "09:00",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validInput()))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	in := validInput()
	in.BusinessName = "A"

	fields := fieldsOf(t, Validate(in))
	assert.Equal(t, "must be at least 2 characters", fields["businessName"])
	assert.NotContains(t, fields, "BusinessName")
}

func TestValidate_FallsBackToStructFieldName(t *testing.T) {
	in := validInput()
	in.NoTag = "toolong"

	fields := fieldsOf(t, Validate(in))
	assert.Contains(t, fields, "NoTag")
}

func TestValidate_MultipleErrors(t *testing.T) {
	in := listingInput{}

	err := Validate(in)
	fields := fieldsOf(t, err)
	assert.Equal(t, "is required", fields["businessName"])
	assert.Equal(t, "is required", fields["address"])

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"address", "businessName"}, valErr.FieldNames())
}

func TestValidate_URLWithoutScheme(t *testing.T) {
	in := validInput()
	in.Website = "example.com"

	fields := fieldsOf(t, Validate(in))
	assert.Equal(t, "must be a valid URL", fields["website"])
}

func TestValidate_EmptyURLAllowed(t *testing.T) {
	in := validInput()
	in.Website = ""
	assert.NoError(t, Validate(in))
}

func TestValidate_TimeOfDay(t *testing.T) {
	for _, good := range []string{"00:00", "09:00", "23:59"} {
		in := validInput()
		in.MondayOpen = good
		assert.NoError(t, Validate(in), good)
	}
	for _, bad := range []string{"9:00", "09:5", "24:00", "09:60", " 09:00", "nine"} {
		in := validInput()
		in.MondayOpen = bad
		fields := fieldsOf(t, Validate(in))
		assert.Equal(t, "must be a time of day in HH:MM format", fields["mondayOpen"], bad)
	}
}

func TestValidate_OneOf(t *testing.T) {
	in := validInput()
	in.Mode = "sometimes"

	fields := fieldsOf(t, Validate(in))
	assert.Contains(t, fields["mode"], "one of")
}

func TestValidationError_ErrorString(t *testing.T) {
	in := validInput()
	in.Address = "1"

	err := Validate(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'address'")
	assert.Contains(t, err.Error(), "at least 5")
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"businessName":"Acme Corp","address":"1 Main St, Springfield"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var in listingInput
	require.NoError(t, DecodeAndValidate(req, &in))
	assert.Equal(t, "Acme Corp", in.BusinessName)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var in listingInput
	err := DecodeAndValidate(req, &in)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
