package monitor

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validHTTP() MonitorFields {
	return MonitorFields{
		Schedule:    Schedule{Number: "1", Unit: ScheduleMinutes},
		Timeout:     "30",
		MonitorType: HTTP,
		URLs:        "https://example.com",
	}
}

func TestScheduleRule(t *testing.T) {
	rule := Validate[HTTP][KeySchedule]
	tests := []struct {
		name     string
		schedule Schedule
		invalid  bool
	}{
		{name: "zero", schedule: Schedule{Number: "0", Unit: "minutes"}, invalid: true},
		{name: "one second", schedule: Schedule{Number: "1", Unit: "seconds"}, invalid: false},
		{name: "not a number", schedule: Schedule{Number: "abc", Unit: "minutes"}, invalid: true},
		{name: "missing unit", schedule: Schedule{Number: "3"}, invalid: true},
		{name: "fraction below one", schedule: Schedule{Number: "0.5", Unit: ScheduleMinutes}, invalid: true},
		{name: "numeric prefix", schedule: Schedule{Number: "10abc", Unit: ScheduleMinutes}, invalid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.invalid, rule(MonitorFields{Schedule: tt.schedule}))
		})
	}
}

func TestTimeoutRule(t *testing.T) {
	tests := []struct {
		name     string
		ds       DataStream
		timeout  string
		schedule Schedule
		invalid  bool
	}{
		{name: "exceeds one minute", ds: HTTP, timeout: "65", schedule: Schedule{Number: "1", Unit: ScheduleMinutes}, invalid: true},
		{name: "within one minute", ds: HTTP, timeout: "30", schedule: Schedule{Number: "1", Unit: ScheduleMinutes}, invalid: false},
		{name: "equal to schedule", ds: TCP, timeout: "60", schedule: Schedule{Number: "1", Unit: ScheduleMinutes}, invalid: false},
		{name: "seconds schedule", ds: ICMP, timeout: "20", schedule: Schedule{Number: "10", Unit: ScheduleSeconds}, invalid: true},
		{name: "missing", ds: HTTP, timeout: "", schedule: Schedule{Number: "1", Unit: ScheduleMinutes}, invalid: true},
		{name: "negative", ds: HTTP, timeout: "-1", schedule: Schedule{Number: "1", Unit: ScheduleMinutes}, invalid: true},
		{name: "not a number", ds: HTTP, timeout: "soon", schedule: Schedule{Number: "1", Unit: ScheduleMinutes}, invalid: true},
		{name: "unparseable schedule", ds: HTTP, timeout: "5", schedule: Schedule{Number: "x", Unit: ScheduleMinutes}, invalid: false},
		{name: "browser ignores timeout", ds: Browser, timeout: "9999", schedule: Schedule{Number: "1", Unit: ScheduleMinutes}, invalid: false},
		{name: "browser ignores missing timeout", ds: Browser, timeout: "", schedule: Schedule{Number: "1", Unit: ScheduleMinutes}, invalid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := MonitorFields{MonitorType: tt.ds, Timeout: tt.timeout, Schedule: tt.schedule}
			assert.Equal(t, tt.invalid, Validate[tt.ds][KeyTimeout](fields))
		})
	}
}

func TestHTTPRules(t *testing.T) {
	table := Validate[HTTP]

	assert.False(t, table[KeyResponseStatusCheck](MonitorFields{ResponseStatusCheck: []string{"200", "301"}}))
	assert.True(t, table[KeyResponseStatusCheck](MonitorFields{ResponseStatusCheck: []string{"200", "2xx"}}))
	assert.False(t, table[KeyResponseStatusCheck](MonitorFields{}))

	assert.False(t, table[KeyRequestHeadersCheck](MonitorFields{RequestHeadersCheck: map[string]string{"Content-Type": "application/json"}}))
	assert.True(t, table[KeyRequestHeadersCheck](MonitorFields{RequestHeadersCheck: map[string]string{"Content Type": "x"}}))
	assert.True(t, table[KeyResponseHeadersCheck](MonitorFields{ResponseHeadersCheck: map[string]string{"X-Trace\t": "1"}}))
	assert.False(t, table[KeyResponseHeadersCheck](MonitorFields{ResponseHeadersCheck: map[string]string{"": "ignored"}}))

	assert.False(t, table[KeyMaxRedirects](MonitorFields{MaxRedirects: "3"}))
	assert.False(t, table[KeyMaxRedirects](MonitorFields{}))
	assert.True(t, table[KeyMaxRedirects](MonitorFields{MaxRedirects: "-1"}))
	assert.True(t, table[KeyMaxRedirects](MonitorFields{MaxRedirects: "two"}))

	assert.True(t, table[KeyURLs](MonitorFields{}))
	assert.False(t, table[KeyURLs](MonitorFields{URLs: "https://elastic.co"}))
}

func TestTCPHosts(t *testing.T) {
	rule := Validate[TCP][KeyHosts]
	assert.False(t, rule(MonitorFields{Hosts: "example.com:8080"}))
	assert.True(t, rule(MonitorFields{Hosts: "example.com"}))
	assert.True(t, rule(MonitorFields{Hosts: "example.com:123456"}))
	assert.True(t, rule(MonitorFields{Hosts: ""}))
	assert.False(t, rule(MonitorFields{Hosts: "10.0.0.1:22"}))
}

func TestICMPRules(t *testing.T) {
	table := Validate[ICMP]
	assert.True(t, table[KeyHosts](MonitorFields{}))
	assert.False(t, table[KeyHosts](MonitorFields{Hosts: "8.8.8.8"}))

	assert.False(t, table[KeyWait](MonitorFields{}))
	assert.False(t, table[KeyWait](MonitorFields{Wait: "1"}))
	assert.False(t, table[KeyWait](MonitorFields{Wait: "1.5"}))
	assert.True(t, table[KeyWait](MonitorFields{Wait: "-1"}))
	assert.True(t, table[KeyWait](MonitorFields{Wait: "later"}))
}

func TestBrowserRules(t *testing.T) {
	table := Validate[Browser]

	assert.True(t, table[KeySourceInline](MonitorFields{}))
	assert.False(t, table[KeySourceInline](MonitorFields{SourceInline: "step('go', () => {})"}))

	assert.True(t, table[KeyDownloadSpeed](MonitorFields{DownloadSpeed: "0"}))
	assert.False(t, table[KeyDownloadSpeed](MonitorFields{DownloadSpeed: ""}))
	assert.False(t, table[KeyDownloadSpeed](MonitorFields{DownloadSpeed: "5"}))
	assert.True(t, table[KeyUploadSpeed](MonitorFields{UploadSpeed: "fast"}))
	assert.True(t, table[KeyUploadSpeed](MonitorFields{UploadSpeed: "-3"}))

	assert.False(t, table[KeyLatency](MonitorFields{Latency: "0"}))
	assert.False(t, table[KeyLatency](MonitorFields{Latency: ""}))
	assert.True(t, table[KeyLatency](MonitorFields{Latency: "-1"}))

	assert.False(t, table[KeyPlaywrightOptions](MonitorFields{PlaywrightOptions: `{"a":1}`}))
	assert.True(t, table[KeyPlaywrightOptions](MonitorFields{PlaywrightOptions: "not json"}))
	assert.True(t, table[KeyPlaywrightOptions](MonitorFields{PlaywrightOptions: "null"}))
	assert.True(t, table[KeyPlaywrightOptions](MonitorFields{PlaywrightOptions: "42"}))
	assert.False(t, table[KeyPlaywrightOptions](MonitorFields{}))
	assert.False(t, table[KeyParams](MonitorFields{Params: `{"username":"elastic"}`}))
	assert.True(t, table[KeyParams](MonitorFields{Params: `{"username":`}))

	assert.False(t, table[KeyPlaywrightOptions](MonitorFields{PlaywrightOptions: "[1,2]"}))
	assert.False(t, table[KeyParams](MonitorFields{Params: "[]"}))
	assert.True(t, table[KeyParams](MonitorFields{Params: `"text"`}))
}

func TestTablesShareCommonRules(t *testing.T) {
	for ds, table := range Validate {
		_, hasSchedule := table[KeySchedule]
		_, hasTimeout := table[KeyTimeout]
		assert.True(t, hasSchedule, "schedule rule missing for %s", ds)
		assert.True(t, hasTimeout, "timeout rule missing for %s", ds)
	}
	_, tcpHasURLs := Validate[TCP][KeyURLs]
	assert.False(t, tcpHasURLs)
}

func TestComposeLaterTableWins(t *testing.T) {
	always := func(MonitorFields) bool { return true }
	never := func(MonitorFields) bool { return false }
	merged := compose(Validation{KeyHosts: always}, Validation{KeyHosts: never, KeyWait: always})
	assert.Len(t, merged, 2)
	assert.False(t, merged[KeyHosts](MonitorFields{}))
}

func TestInvalidFields(t *testing.T) {
	invalid, err := InvalidFields(HTTP, validHTTP())
	require.NoError(t, err)
	assert.Empty(t, invalid)

	fields := validHTTP()
	fields.Timeout = "65"
	fields.URLs = ""
	invalid, err = InvalidFields(HTTP, fields)
	require.NoError(t, err)
	assert.Equal(t, []ConfigKey{KeyTimeout, KeyURLs}, invalid)
}

func TestInvalidFieldsDefaultsMonitorType(t *testing.T) {
	fields := MonitorFields{Schedule: Schedule{Number: "10", Unit: ScheduleMinutes}, SourceInline: "step()"}
	ok, err := IsValid(Browser, fields)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnknownMonitorType(t *testing.T) {
	_, err := InvalidFields("grpc", MonitorFields{})
	assert.True(t, errors.Is(err, ErrUnknownMonitorType))

	_, err = ParseDataStream("GRPC")
	assert.ErrorIs(t, err, ErrUnknownMonitorType)

	ds, err := ParseDataStream(" Browser ")
	require.NoError(t, err)
	assert.Equal(t, Browser, ds)
}

func TestMonitorFieldsDecodeConfigKeys(t *testing.T) {
	payload := `{"schedule":{"number":"3","unit":"m"},"timeout":"16","type":"http","urls":"https://a.b","check.response.status":["200"],"check.request.headers":{"Accept":"*/*"}}`
	var fields MonitorFields
	require.NoError(t, json.Unmarshal([]byte(payload), &fields))
	assert.Equal(t, "3", fields.Schedule.Number)
	assert.Equal(t, []string{"200"}, fields.ResponseStatusCheck)
	assert.Equal(t, "*/*", fields.RequestHeadersCheck["Accept"])
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "1", want: 1},
		{in: "  2.5", want: 2.5},
		{in: "3abc", want: 3},
		{in: ".5", want: 0.5},
		{in: "-4", want: -4},
		{in: "1e3", want: 1000},
		{in: "1e", want: 1},
		{in: "Infinity", want: math.Inf(1)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseFloat(tt.in), tt.in)
	}
	assert.True(t, math.IsNaN(parseFloat("")))
	assert.True(t, math.IsNaN(parseFloat("abc")))
	assert.True(t, math.IsNaN(parseFloat(",5")))
}
