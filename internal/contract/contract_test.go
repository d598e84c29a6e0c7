package contract

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackaged(t *testing.T) {
	c, err := Packaged()
	require.NoError(t, err)

	ops := c.Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, "GET", ops[0].Method)
	assert.Equal(t, "/weather", ops[0].Path)
	assert.Len(t, ops[0].Parameters, 9)
	assert.Contains(t, ops[0].Responses, 200)
	assert.Contains(t, ops[0].Responses, 404)
	assert.Equal(t, []string{"application/json"}, ops[0].Responses[400].ContentTypes)
}

func TestContract_CheckRequest(t *testing.T) {
	c, err := Packaged()
	require.NoError(t, err)

	tests := []struct {
		name     string
		method   string
		path     string
		query    url.Values
		problems []string
	}{
		{
			name:   "all declared",
			method: "GET", path: "weather",
			query: url.Values{"q": {"London"}, "units": {"standard"}, "appid": {"key"}},
		},
		{
			name:   "undeclared parameter",
			method: "get", path: "/weather/",
			query:    url.Values{"city": {"London"}, "appid": {"key"}},
			problems: []string{`query parameter "city" is not declared`},
		},
		{
			name:   "missing credential",
			method: "GET", path: "weather",
			query:    url.Values{"q": {"London"}},
			problems: []string{`required query parameter "appid" is missing`},
		},
		{
			name:   "unknown path",
			method: "GET", path: "forecast",
			problems: []string{"path is not declared"},
		},
		{
			name:   "unknown method",
			method: "POST", path: "weather",
			problems: []string{"method is not declared"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.CheckRequest(tt.method, tt.path, tt.query)
			if len(tt.problems) == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *ViolationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.problems, verr.Problems)
		})
	}
}

func TestContract_CheckResponse(t *testing.T) {
	c, err := Packaged()
	require.NoError(t, err)

	assert.NoError(t, c.CheckResponse("GET", "weather", 200, "application/json; charset=utf-8"))
	assert.NoError(t, c.CheckResponse("GET", "weather", 404, "application/json"))
	assert.Error(t, c.CheckResponse("GET", "weather", 500, "application/json"))
	assert.Error(t, c.CheckResponse("GET", "weather", 200, "text/xml"))
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load([]byte("openapi: [not"))
	assert.Error(t, err)

	_, err = Load([]byte("openapi: 3.0.3\npaths: {}\n"))
	assert.Error(t, err, "info is required")
}
