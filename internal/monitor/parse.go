package monitor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|[0-9]+\.?[0-9]*(?:[eE][+-]?[0-9]+)?|\.[0-9]+(?:[eE][+-]?[0-9]+)?)`)

// parseFloat reads the longest numeric prefix of value, ignoring leading
// whitespace and any trailing garbage ("5m" is 5). It returns NaN when no
// number is found. Parsing never depends on locale.
func parseFloat(value string) float64 {
	trimmed := strings.TrimLeft(value, " \t\n\r\v\f")
	match := floatPrefix.FindString(trimmed)
	if match == "" {
		return math.NaN()
	}
	switch match {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		// out of range values still carry a sign and magnitude
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}
