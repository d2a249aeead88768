package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	digitsOnly        = regexp.MustCompile(`^[0-9]*$`)
	includesValidPort = regexp.MustCompile(`[^:]+:[0-9]{1,5}$`)
)

var ErrUnknownMonitorType = errors.New("unknown monitor type")

// Validator reports whether a field is invalid. It receives every field
// because some rules depend on others (timeout is bounded by schedule).
type Validator func(fields MonitorFields) bool

type Validation map[ConfigKey]Validator

// compose merges tables left to right; on a key collision the later table wins.
func compose(tables ...Validation) Validation {
	merged := Validation{}
	for _, table := range tables {
		for key, validator := range table {
			merged[key] = validator
		}
	}
	return merged
}

var validateCommon = Validation{
	KeySchedule: func(f MonitorFields) bool {
		parsed := parseFloat(f.Schedule.Number)
		return math.IsNaN(parsed) || parsed == 0 || f.Schedule.Unit == "" || parsed < 1
	},
	KeyTimeout: func(f MonitorFields) bool {
		// browser monitors have no timeout
		if f.MonitorType == Browser {
			return false
		}
		if f.Timeout == "" {
			return true
		}
		timeout := parseFloat(f.Timeout)
		if math.IsNaN(timeout) || timeout < 0 {
			return true
		}
		return exceedsSchedule(timeout, f.Schedule)
	},
}

var validateHTTP = compose(Validation{
	KeyResponseStatusCheck: func(f MonitorFields) bool {
		for _, code := range f.ResponseStatusCheck {
			if !digitsOnly.MatchString(code) {
				return true
			}
		}
		return false
	},
	KeyResponseHeadersCheck: func(f MonitorFields) bool {
		return invalidHeaders(f.ResponseHeadersCheck)
	},
	KeyRequestHeadersCheck: func(f MonitorFields) bool {
		return invalidHeaders(f.RequestHeadersCheck)
	},
	KeyMaxRedirects: func(f MonitorFields) bool {
		return (f.MaxRedirects != "" && !digitsOnly.MatchString(f.MaxRedirects)) || parseFloat(f.MaxRedirects) < 0
	},
	KeyURLs: func(f MonitorFields) bool {
		return f.URLs == ""
	},
}, validateCommon)

var validateTCP = compose(Validation{
	KeyHosts: func(f MonitorFields) bool {
		return f.Hosts == "" || !includesValidPort.MatchString(f.Hosts)
	},
}, validateCommon)

var validateICMP = compose(Validation{
	KeyHosts: func(f MonitorFields) bool {
		return f.Hosts == ""
	},
	KeyWait: func(f MonitorFields) bool {
		if f.Wait == "" || digitsOnly.MatchString(f.Wait) {
			return false
		}
		wait := parseFloat(f.Wait)
		return math.IsNaN(wait) || wait < 0
	},
}, validateCommon)

var validateBrowser = compose(validateCommon, Validation{
	KeySourceInline: func(f MonitorFields) bool {
		return f.SourceInline == ""
	},
	KeyDownloadSpeed: func(f MonitorFields) bool {
		return invalidThrottle(f.DownloadSpeed, false)
	},
	KeyUploadSpeed: func(f MonitorFields) bool {
		return invalidThrottle(f.UploadSpeed, false)
	},
	KeyLatency: func(f MonitorFields) bool {
		return invalidThrottle(f.Latency, true)
	},
	KeyPlaywrightOptions: func(f MonitorFields) bool {
		return f.PlaywrightOptions != "" && !validJSONObject(f.PlaywrightOptions)
	},
	KeyParams: func(f MonitorFields) bool {
		return f.Params != "" && !validJSONObject(f.Params)
	},
})

// Validate holds one validation table per monitor type.
var Validate = map[DataStream]Validation{
	HTTP:    validateHTTP,
	TCP:     validateTCP,
	ICMP:    validateICMP,
	Browser: validateBrowser,
}

// InvalidFields runs every rule of the monitor type's table and returns the
// keys whose rule failed, sorted.
func InvalidFields(monitorType DataStream, fields MonitorFields) ([]ConfigKey, error) {
	table, ok := Validate[monitorType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMonitorType, monitorType)
	}
	if fields.MonitorType == "" {
		fields.MonitorType = monitorType
	}
	invalid := []ConfigKey{}
	for key, validator := range table {
		if validator(fields) {
			invalid = append(invalid, key)
		}
	}
	sort.Slice(invalid, func(i, j int) bool { return invalid[i] < invalid[j] })
	return invalid, nil
}

func IsValid(monitorType DataStream, fields MonitorFields) (bool, error) {
	invalid, err := InvalidFields(monitorType, fields)
	if err != nil {
		return false, err
	}
	return len(invalid) == 0, nil
}

func scheduleSeconds(schedule Schedule) float64 {
	number := parseFloat(schedule.Number)
	if schedule.Unit == ScheduleMinutes {
		return number * 60
	}
	return number
}

// exceedsSchedule is false when the schedule itself is unparseable; the
// schedule rule reports that case.
func exceedsSchedule(timeout float64, schedule Schedule) bool {
	seconds := scheduleSeconds(schedule)
	if math.IsNaN(seconds) {
		return false
	}
	return timeout > seconds
}

func invalidHeaders(headers map[string]string) bool {
	for key := range headers {
		if key != "" && strings.ContainsFunc(key, unicode.IsSpace) {
			return true
		}
	}
	return false
}

func invalidThrottle(speed string, allowZero bool) bool {
	if speed == "" {
		return false
	}
	value := parseFloat(speed)
	if math.IsNaN(value) {
		return true
	}
	if allowZero {
		return value < 0
	}
	return value <= 0
}

// validJSONObject accepts objects and arrays; scalars and null are rejected.
func validJSONObject(value string) bool {
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		return false
	}
	switch decoded.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
