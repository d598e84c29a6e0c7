package spec

import (
	"fmt"
	"strings"
)

// LogDetail selects which part of a request or response is logged. Status,
// headers and body are independent parts; LogAll logs every part.
type LogDetail int

const (
	LogNone LogDetail = iota
	LogStatus
	LogHeaders
	LogBody
	LogAll
)

var logDetailNames = map[LogDetail]string{
	LogNone:    "none",
	LogStatus:  "status",
	LogHeaders: "headers",
	LogBody:    "body",
	LogAll:     "all",
}

// String returns the config name of the log detail
func (d LogDetail) String() string {
	if name, ok := logDetailNames[d]; ok {
		return name
	}
	return fmt.Sprintf("LogDetail(%d)", int(d))
}

// Includes reports whether d logs the part named by other
func (d LogDetail) Includes(other LogDetail) bool {
	if other == LogNone {
		return false
	}
	return d == LogAll || d == other
}

// ParseLogDetail parses a config value such as "all" or "headers"
func ParseLogDetail(s string) (LogDetail, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LogAll, nil
	}
	for detail, name := range logDetailNames {
		if name == s {
			return detail, nil
		}
	}
	return LogNone, fmt.Errorf("unknown log detail: %q", s)
}
