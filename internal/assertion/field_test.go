package assertion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = `{"coord": {"lon": -0.1257}, "weather": [{"id": 801}], "name": "London", "rain": {"1h": 0.2}, "cod": "404", "flag": true, "gone": null}`

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		wantErr bool
	}{
		{name: "int", field: Field{Path: "weather.0.id", Equals: 801}},
		{name: "float from yaml or json", field: Field{Path: "weather.0.id", Equals: float64(801)}},
		{name: "negative float", field: Field{Path: "coord.lon", Equals: -0.1257}},
		{name: "string", field: Field{Path: "name", Equals: "London"}},
		{name: "digit key", field: Field{Path: "rain.1h", Equals: 0.2}},
		{name: "bool", field: Field{Path: "flag", Equals: true}},
		{name: "null", field: Field{Path: "gone", Equals: nil}},
		{name: "string code is not a number", field: Field{Path: "cod", Equals: 404}, wantErr: true},
		{name: "wrong value", field: Field{Path: "name", Equals: "Paris"}, wantErr: true},
		{name: "absent", field: Field{Path: "weather.1.id", Equals: 801}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check([]byte(body), tt.field)
			if tt.wantErr {
				var fieldErr *FieldError
				require.True(t, errors.As(err, &fieldErr))
				assert.Equal(t, tt.field.Path, fieldErr.Path)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheck_ReportsExpectedAndActual(t *testing.T) {
	err := Check([]byte(body),
		Field{Path: "name", Equals: "Paris"},
		Field{Path: "weather.0.id", Equals: 800},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field name: expected Paris, got "London"`)
	assert.Contains(t, err.Error(), "field weather.0.id: expected 800, got 801")
}

func TestCheck_InvalidBody(t *testing.T) {
	assert.Error(t, Check([]byte(`{"name": `), Field{Path: "name", Equals: "x"}))
}
