package slo

import "math"

const (
	IndicatorKQLCustom               = "sli.kql.custom"
	IndicatorAPMTransactionDuration  = "sli.apm.transactionDuration"
	IndicatorAPMTransactionErrorRate = "sli.apm.transactionErrorRate"
)

type FieldState struct {
	Invalid bool   `json:"invalid"`
	Error   string `json:"error,omitempty"`
}

// FormAccessor is a read-only view over SLO form state.
type FormAccessor interface {
	GetFieldState(name string) FieldState
	GetValues(name string) any
	Watch(name string) any
}

type Sections struct {
	Indicator   bool `json:"isIndicatorSectionValid"`
	Objective   bool `json:"isObjectiveSectionValid"`
	Description bool `json:"isDescriptionSectionValid"`
}

var (
	kqlFields = []string{
		"indicator.params.index",
		"indicator.params.filter",
		"indicator.params.good",
		"indicator.params.total",
		"indicator.params.timestampField",
	}
	kqlRequired = []string{
		"indicator.params.index",
		"indicator.params.timestampField",
	}
	apmDurationFields = []string{
		"indicator.params.service",
		"indicator.params.environment",
		"indicator.params.transactionType",
		"indicator.params.transactionName",
		"indicator.params.threshold",
	}
	apmErrorRateFields = []string{
		"indicator.params.service",
		"indicator.params.environment",
		"indicator.params.transactionType",
		"indicator.params.transactionName",
	}
	apmErrorRateOptional = []string{
		"indicator.params.index",
		"indicator.params.goodStatusCodes",
	}
	objectiveFields = []string{
		"budgetingMethod",
		"timeWindow.duration",
		"objective.target",
		"objective.timesliceTarget",
		"objective.timesliceWindow",
	}
)

// SectionValidity reports which sections of the SLO form can be submitted.
func SectionValidity(form FormAccessor) Sections {
	return Sections{
		Indicator:   indicatorValid(form),
		Objective:   every(objectiveFields, func(field string) bool { return form.GetFieldState(field).Error == "" }),
		Description: !form.GetFieldState("name").Invalid && !isEmptyString(form.GetValues("name")) && !form.GetFieldState("description").Invalid,
	}
}

func indicatorValid(form FormAccessor) bool {
	notInvalid := func(field string) bool { return !form.GetFieldState(field).Invalid }
	filled := func(field string) bool { return notInvalid(field) && !isEmptyString(form.GetValues(field)) }

	indicatorType, _ := form.Watch("indicator.type").(string)
	switch indicatorType {
	case IndicatorKQLCustom:
		return every(kqlFields, notInvalid) &&
			every(kqlRequired, func(field string) bool { return truthy(form.GetValues(field)) })
	case IndicatorAPMTransactionDuration:
		return every(apmDurationFields, filled) && notInvalid("indicator.params.index")
	case IndicatorAPMTransactionErrorRate:
		return every(apmErrorRateFields, filled) && every(apmErrorRateOptional, notInvalid)
	default:
		return false
	}
}

func every(fields []string, ok func(string) bool) bool {
	for _, field := range fields {
		if !ok(field) {
			return false
		}
	}
	return true
}

// isEmptyString matches only the empty string; a missing value is not empty.
func isEmptyString(value any) bool {
	s, ok := value.(string)
	return ok && s == ""
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	default:
		return true
	}
}
