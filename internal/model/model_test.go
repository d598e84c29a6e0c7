package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const londonBody = `{
  "coord": {"lon": -0.1257, "lat": 51.5085},
  "weather": [{"id": 801, "main": "Clouds", "description": "few clouds", "icon": "02d"}],
  "base": "stations",
  "main": {"temp": 284.2, "feels_like": 283.5, "temp_min": 282.9, "temp_max": 285.4, "pressure": 1012, "humidity": 81, "sea_level": 1012},
  "visibility": 10000,
  "wind": {"speed": 4.63, "deg": 240, "gust": 8.1},
  "rain": {"1h": 0.25},
  "clouds": {"all": 20},
  "dt": 1700000000,
  "sys": {"type": 2, "id": 2075535, "country": "GB", "sunrise": 1699945171, "sunset": 1699977936},
  "timezone": 0,
  "id": 2643743,
  "name": "London",
  "cod": 200
}`

func TestDecodeWeather(t *testing.T) {
	w, err := DecodeWeather([]byte(londonBody))
	require.NoError(t, err)

	require.NotNil(t, w.FirstCondition())
	assert.Equal(t, 801, *w.FirstCondition().ID)
	assert.Equal(t, 2643743, *w.ID)
	assert.Equal(t, "London", *w.Name)
	assert.Equal(t, -0.1257, *w.Coord.Lon)
	assert.Equal(t, 0.25, *w.Rain.OneHour)
	assert.Equal(t, 0, *w.Timezone)
	assert.Equal(t, "GB", *w.Sys.Country)
	assert.Equal(t, 200, *w.Cod)
}

func TestDecodeWeather_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "full body", body: londonBody},
		{name: "empty condition list", body: `{"weather": [], "name": "London"}`},
		{name: "absent condition list", body: `{"name": "London"}`},
		{name: "null condition list", body: `{"weather": null, "id": 2643743}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := DecodeWeather([]byte(tt.body))
			require.NoError(t, err)

			encoded, err := json.Marshal(first)
			require.NoError(t, err)

			second, err := DecodeWeather(encoded)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.Equal(t, first.Weather == nil, second.Weather == nil, "empty and absent lists stay distinct")
			assert.NotContains(t, string(encoded), "gust", "undeclared fields are not carried over")
		})
	}
}

func TestDecodeWeather_UnknownFields(t *testing.T) {
	bodies := []string{
		`{"name": "London", "future_field": {"nested": [1, 2, 3]}}`,
		`{"name": "London", "alerts": [], "x-trace": "abc", "1d": 4}`,
		`{"unexpected": null}`,
	}
	for _, body := range bodies {
		_, err := DecodeWeather([]byte(body))
		assert.NoError(t, err, body)
	}
}

func TestDecodeWeather_MissingFields(t *testing.T) {
	w, err := DecodeWeather([]byte(`{"id": 2643743}`))
	require.NoError(t, err)

	assert.Nil(t, w.Coord)
	assert.Nil(t, w.Rain)
	assert.Nil(t, w.Name)
	assert.Nil(t, w.FirstCondition())

	w, err = DecodeWeather([]byte(`{"weather": []}`))
	require.NoError(t, err)
	assert.Nil(t, w.FirstCondition())

	var nilResponse *WeatherResponse
	assert.Nil(t, nilResponse.FirstCondition())
}

func TestDecodeWeather_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"name": `},
		{name: "wrong primitive type", body: `{"id": "2643743"}`},
		{name: "wrong nested type", body: `{"coord": {"lon": "west"}}`},
		{name: "object instead of list", body: `{"weather": {"id": 801}}`},
		{name: "not an object", body: `[1, 2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeWeather([]byte(tt.body))
			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, "weather response", decodeErr.Model)
		})
	}
}

func TestDecodeErrorResponse(t *testing.T) {
	e, err := DecodeErrorResponse([]byte(`{"cod": "400", "message": "Nothing to geocode", "parameters": ["q"]}`))
	require.NoError(t, err)
	assert.Equal(t, "400", e.Code())
	assert.Equal(t, "Nothing to geocode", e.Text())

	tests := []struct {
		name string
		body string
	}{
		{name: "missing cod", body: `{"message": "city not found"}`},
		{name: "missing message", body: `{"cod": "404"}`},
		{name: "numeric cod", body: `{"cod": 404, "message": "city not found"}`},
		{name: "malformed", body: `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeErrorResponse([]byte(tt.body))
			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, "error response", decodeErr.Model)
		})
	}

	var nilResponse *ErrorResponse
	assert.Empty(t, nilResponse.Code())
	assert.Empty(t, nilResponse.Text())
}
