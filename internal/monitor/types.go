package monitor

import (
	"fmt"
	"strings"
)

// DataStream is the monitor type; it selects the validation table.
type DataStream string

const (
	HTTP    DataStream = "http"
	TCP     DataStream = "tcp"
	ICMP    DataStream = "icmp"
	Browser DataStream = "browser"
)

func ParseDataStream(value string) (DataStream, error) {
	ds := DataStream(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := Validate[ds]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMonitorType, value)
	}
	return ds, nil
}

type ScheduleUnit string

const (
	ScheduleMinutes ScheduleUnit = "m"
	ScheduleSeconds ScheduleUnit = "s"
)

type ConfigKey string

const (
	KeySchedule             ConfigKey = "schedule"
	KeyTimeout              ConfigKey = "timeout"
	KeyMonitorType          ConfigKey = "type"
	KeyURLs                 ConfigKey = "urls"
	KeyHosts                ConfigKey = "hosts"
	KeyMaxRedirects         ConfigKey = "max_redirects"
	KeyWait                 ConfigKey = "wait"
	KeyResponseStatusCheck  ConfigKey = "check.response.status"
	KeyResponseHeadersCheck ConfigKey = "check.response.headers"
	KeyRequestHeadersCheck  ConfigKey = "check.request.headers"
	KeySourceInline         ConfigKey = "source.inline.script"
	KeyDownloadSpeed        ConfigKey = "throttling.download_speed"
	KeyUploadSpeed          ConfigKey = "throttling.upload_speed"
	KeyLatency              ConfigKey = "throttling.latency"
	KeyPlaywrightOptions    ConfigKey = "playwright_options"
	KeyParams               ConfigKey = "params"
)

type Schedule struct {
	Number string       `json:"number"`
	Unit   ScheduleUnit `json:"unit"`
}

// MonitorFields is the full set of configuration values of one monitor.
// Empty strings mean the field is absent.
type MonitorFields struct {
	Schedule             Schedule          `json:"schedule"`
	Timeout              string            `json:"timeout"`
	MonitorType          DataStream        `json:"type"`
	URLs                 string            `json:"urls"`
	Hosts                string            `json:"hosts"`
	MaxRedirects         string            `json:"max_redirects"`
	Wait                 string            `json:"wait"`
	ResponseStatusCheck  []string          `json:"check.response.status"`
	ResponseHeadersCheck map[string]string `json:"check.response.headers"`
	RequestHeadersCheck  map[string]string `json:"check.request.headers"`
	SourceInline         string            `json:"source.inline.script"`
	DownloadSpeed        string            `json:"throttling.download_speed"`
	UploadSpeed          string            `json:"throttling.upload_speed"`
	Latency              string            `json:"throttling.latency"`
	PlaywrightOptions    string            `json:"playwright_options"`
	Params               string            `json:"params"`
}
