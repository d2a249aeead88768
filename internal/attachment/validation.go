package attachment

import (
	"fmt"
	"strings"
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
	Hint    string `json:"hint,omitempty"`
}

// RequestError reports structurally malformed attachment requests.
type RequestError struct {
	Code    string
	Message string
	Details []ErrorDetail
}

func (e *RequestError) Error() string {
	return e.Message
}

// ValidateRequests checks the shape of every request in the batch. It does not
// consult quotas.
func ValidateRequests(requests []Request) *RequestError {
	var details []ErrorDetail
	if len(requests) == 0 {
		details = append(details, ErrorDetail{Field: "attachments", Problem: "missing", Hint: "Provide at least one attachment"})
	}
	for i, req := range requests {
		details = append(details, validateRequest(req, i)...)
	}
	if len(details) > 0 {
		return &RequestError{Code: "ATTACHMENT_INVALID", Message: "attachment request failed validation", Details: details}
	}
	return nil
}

func validateRequest(req Request, index int) []ErrorDetail {
	field := func(name string) string {
		return fmt.Sprintf("attachments[%d].%s", index, name)
	}
	var details []ErrorDetail
	if strings.TrimSpace(req.Owner) == "" {
		details = append(details, ErrorDetail{Field: field("owner"), Problem: "missing"})
	}
	switch req.Type {
	case TypeUser:
		if strings.TrimSpace(req.Comment) == "" {
			details = append(details, ErrorDetail{Field: field("comment"), Problem: "missing"})
		}
	case TypeAlert:
		if len(req.AlertID) == 0 {
			details = append(details, ErrorDetail{Field: field("alertId"), Problem: "missing"})
		}
		for _, id := range req.AlertID {
			if strings.TrimSpace(id) == "" {
				details = append(details, ErrorDetail{Field: field("alertId"), Problem: "empty id"})
				break
			}
		}
		if len(req.Index) != len(req.AlertID) {
			details = append(details, ErrorDetail{Field: field("index"), Problem: "length mismatch", Hint: "Provide one index per alert id"})
		}
	case TypeActions:
		if strings.TrimSpace(req.Comment) == "" {
			details = append(details, ErrorDetail{Field: field("comment"), Problem: "missing"})
		}
		if len(req.Actions) == 0 {
			details = append(details, ErrorDetail{Field: field("actions"), Problem: "missing"})
		}
	case TypeExternalReference:
		if strings.TrimSpace(req.ExternalReferenceID) == "" {
			details = append(details, ErrorDetail{Field: field("externalReferenceId"), Problem: "missing"})
		}
		if strings.TrimSpace(req.ExternalReferenceAttachmentTypeID) == "" {
			details = append(details, ErrorDetail{Field: field("externalReferenceAttachmentTypeId"), Problem: "missing"})
		}
		if req.ExternalReferenceStorage == nil || strings.TrimSpace(req.ExternalReferenceStorage.Type) == "" {
			details = append(details, ErrorDetail{Field: field("externalReferenceStorage.type"), Problem: "missing"})
		}
	case TypePersistableState:
		if strings.TrimSpace(req.PersistableStateAttachmentTypeID) == "" {
			details = append(details, ErrorDetail{Field: field("persistableStateAttachmentTypeId"), Problem: "missing"})
		}
	default:
		details = append(details, ErrorDetail{Field: field("type"), Problem: "unsupported", Hint: "Use user, alert, actions, externalReference, or persistableState"})
	}
	return details
}
