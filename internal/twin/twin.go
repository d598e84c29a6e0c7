// Package twin emulates the current weather endpoint of the weather service
// so contract scenarios can run without network access or an API key.
package twin

import (
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// Config holds the twin settings
type Config struct {
	// APIKey is the credential the twin accepts in the appid parameter
	APIKey string

	// Latency is added before every response
	Latency time.Duration

	Logger zerolog.Logger
}

type city struct {
	id      int
	name    string
	zip     string
	lat     float64
	lon     float64
	fixture string
}

var cities = []city{
	{id: 2643743, name: "London", zip: "SW1A", lat: 51.5085, lon: -0.1257, fixture: "london.json"},
	{id: 2172797, name: "Cairns", zip: "4870", lat: -16.9167, lon: 145.7667, fixture: "cairns.json"},
	{id: 1851632, name: "Shuzenji", zip: "410-2407", lat: 35, lon: 139, fixture: "shuzenji.json"},
}

// Twin serves the emulated endpoint
type Twin struct {
	config Config
	router *chi.Mux
}

// New creates a twin and registers its routes
func New(cfg Config) *Twin {
	t := &Twin{config: cfg, router: chi.NewRouter()}

	t.router.Use(chimw.Recoverer)
	t.router.Use(t.logRequests)
	t.router.Use(t.simulateLatency)
	t.router.Get("/weather", t.handleWeather)
	t.router.Get("/data/2.5/weather", t.handleWeather)

	return t
}

// ServeHTTP implements http.Handler
func (t *Twin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.router.ServeHTTP(w, r)
}

func (t *Twin) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		t.config.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("twin request")
	})
}

func (t *Twin) simulateLatency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.config.Latency > 0 {
			select {
			case <-time.After(t.config.Latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (t *Twin) handleWeather(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if t.config.APIKey != "" && query.Get("appid") != t.config.APIKey {
		writeError(w, http.StatusUnauthorized, "Invalid API key. Please see https://openweathermap.org/faq#error401 for more info.")
		return
	}

	c, status, message := lookup(query.Get("q"), query.Get("id"), query.Get("lat"), query.Get("lon"), query.Get("zip"))
	if c == nil {
		writeError(w, status, message)
		return
	}

	body, err := render(*c, query.Get("units"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if query.Get("mode") == "xml" {
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `<current><city id="%d" name="%s"></city></current>`, c.id, c.name)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// lookup resolves a city the way the service does: a city name wins over a
// city id, which wins over coordinates, which win over a zip code.
func lookup(q, id, lat, lon, zip string) (*city, int, string) {
	switch {
	case q != "":
		name := strings.TrimSpace(strings.SplitN(q, ",", 2)[0])
		for i := range cities {
			if strings.EqualFold(cities[i].name, name) {
				return &cities[i], http.StatusOK, ""
			}
		}
		return nil, http.StatusNotFound, "city not found"

	case id != "":
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, http.StatusBadRequest, id + " is not a city ID"
		}
		for i := range cities {
			if cities[i].id == n {
				return &cities[i], http.StatusOK, ""
			}
		}
		return nil, http.StatusNotFound, "city not found"

	case lat != "" && lon != "":
		la, err := strconv.ParseFloat(lat, 64)
		if err != nil || la < -90 || la > 90 {
			return nil, http.StatusBadRequest, "wrong latitude"
		}
		lo, err := strconv.ParseFloat(lon, 64)
		if err != nil || lo < -180 || lo > 180 {
			return nil, http.StatusBadRequest, "wrong longitude"
		}
		return nearest(la, lo), http.StatusOK, ""

	case zip != "":
		code := strings.TrimSpace(strings.SplitN(zip, ",", 2)[0])
		for i := range cities {
			if strings.EqualFold(cities[i].zip, code) {
				return &cities[i], http.StatusOK, ""
			}
		}
		return nil, http.StatusNotFound, "city not found"
	}

	return nil, http.StatusBadRequest, "Nothing to geocode"
}

func nearest(lat, lon float64) *city {
	best := &cities[0]
	bestDist := math.Inf(1)
	for i := range cities {
		d := math.Hypot(cities[i].lat-lat, cities[i].lon-lon)
		if d < bestDist {
			best, bestDist = &cities[i], d
		}
	}
	return best
}

// render loads the fixture of c and converts temperatures and wind speed to
// the requested units. Unknown units fall back to standard (Kelvin).
func render(c city, units string) ([]byte, error) {
	raw, err := fixtures.ReadFile("fixtures/" + c.fixture)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", c.fixture, err)
	}
	if units != "metric" && units != "imperial" {
		return raw, nil
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", c.fixture, err)
	}

	if m, ok := body["main"].(map[string]any); ok {
		for _, key := range []string{"temp", "feels_like", "temp_min", "temp_max"} {
			if k, ok := m[key].(float64); ok {
				m[key] = convertTemperature(k, units)
			}
		}
	}
	if units == "imperial" {
		if wind, ok := body["wind"].(map[string]any); ok {
			for _, key := range []string{"speed", "gust"} {
				if v, ok := wind[key].(float64); ok {
					wind[key] = round2(v * 2.23694)
				}
			}
		}
	}

	return json.Marshal(body)
}

func convertTemperature(kelvin float64, units string) float64 {
	celsius := kelvin - 273.15
	if units == "imperial" {
		return round2(celsius*9/5 + 32)
	}
	return round2(celsius)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"cod":     strconv.Itoa(status),
		"message": message,
	})
}
