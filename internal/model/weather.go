// Package model holds the typed bodies returned by the weather service.
//
// Every field is optional: absent keys decode to nil and unknown keys are
// dropped, so the models keep decoding when the service adds fields.
package model

// WeatherResponse is the body of a successful current weather lookup.
// Weather keeps an empty list distinct from an absent one when re-encoded.
type WeatherResponse struct {
	Coord      *Coord      `json:"coord,omitempty"`
	Weather    []Condition `json:"weather"`
	Base       *string     `json:"base,omitempty"`
	Main       *Main       `json:"main,omitempty"`
	Visibility *int        `json:"visibility,omitempty"`
	Wind       *Wind       `json:"wind,omitempty"`
	Rain       *Rain       `json:"rain,omitempty"`
	Clouds     *Clouds     `json:"clouds,omitempty"`
	Dt         *int64      `json:"dt,omitempty"`
	Sys        *Sys        `json:"sys,omitempty"`
	Timezone   *int        `json:"timezone,omitempty"`
	ID         *int        `json:"id,omitempty"`
	Name       *string     `json:"name,omitempty"`
	Cod        *int        `json:"cod,omitempty"`
}

// Coord is a geographic position
type Coord struct {
	Lon *float64 `json:"lon,omitempty"`
	Lat *float64 `json:"lat,omitempty"`
}

// Condition is one entry of the weather condition list
type Condition struct {
	ID          *int    `json:"id,omitempty"`
	Main        *string `json:"main,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// Main holds the temperature and atmospheric measurements
type Main struct {
	Temp      *float64 `json:"temp,omitempty"`
	FeelsLike *float64 `json:"feels_like,omitempty"`
	TempMin   *float64 `json:"temp_min,omitempty"`
	TempMax   *float64 `json:"temp_max,omitempty"`
	Pressure  *int     `json:"pressure,omitempty"`
	Humidity  *int     `json:"humidity,omitempty"`
}

// Wind holds wind speed and direction
type Wind struct {
	Speed *float64 `json:"speed,omitempty"`
	Deg   *int     `json:"deg,omitempty"`
}

// Rain holds precipitation volumes. The service keys them by period
// ("1h"), which is not a Go identifier, hence the explicit mapping.
type Rain struct {
	OneHour *float64 `json:"1h,omitempty"`
}

// Clouds holds the cloud cover percentage
type Clouds struct {
	All *int `json:"all,omitempty"`
}

// Sys holds the system metadata of the observation
type Sys struct {
	Type    *int    `json:"type,omitempty"`
	ID      *int    `json:"id,omitempty"`
	Country *string `json:"country,omitempty"`
	Sunrise *int64  `json:"sunrise,omitempty"`
	Sunset  *int64  `json:"sunset,omitempty"`
}

// FirstCondition returns the first weather condition or nil when the list is empty
func (w *WeatherResponse) FirstCondition() *Condition {
	if w == nil || len(w.Weather) == 0 {
		return nil
	}
	return &w.Weather[0]
}

// ErrorResponse is the body the service returns for rejected lookups.
// Cod is the string form of the HTTP status.
type ErrorResponse struct {
	Cod     *string `json:"cod,omitempty"`
	Message *string `json:"message,omitempty"`
}

// Code returns the error code or "" when absent
func (e *ErrorResponse) Code() string {
	if e == nil || e.Cod == nil {
		return ""
	}
	return *e.Cod
}

// Text returns the error message or "" when absent
func (e *ErrorResponse) Text() string {
	if e == nil || e.Message == nil {
		return ""
	}
	return *e.Message
}
