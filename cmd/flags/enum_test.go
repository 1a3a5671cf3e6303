package flags

import (
	"testing"

	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
)

func TestEnumValue(t *testing.T) {
	var dest string
	f := EnumValue{
		Name:        "format",
		Usage:       "Output format",
		Destination: &dest,
		Enum:        []string{"text", "json"},
		Value:       "text",
	}.GenericFlag()
	assert.Equal(t, "text", f.Value.String())
	assert.Equal(t, "Output format (one of: text, json)", f.Usage)

	require.NoError(t, f.Value.Set("json"))
	assert.Equal(t, "json", dest)
	assert.Equal(t, "json", f.Value.String())

	assert.ErrorContains(t, "allowed values are text, json", f.Value.Set("xml"))
	assert.Equal(t, "json", dest)
}

func TestEnumValue_CaseInsensitive(t *testing.T) {
	var dest string
	f := EnumValue{
		Name:        "format",
		Destination: &dest,
		Enum:        []string{"text", "fluentd"},
		Value:       "text",
	}.GenericFlag()
	require.NoError(t, f.Value.Set(" FluentD"))
	assert.Equal(t, "fluentd", dest)
}
