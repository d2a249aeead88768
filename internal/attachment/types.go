package attachment

import (
	"encoding/json"
	"errors"
	"strings"
)

// Type is the discriminator of a case attachment request.
type Type string

const (
	TypeUser              Type = "user"
	TypeAlert             Type = "alert"
	TypeActions           Type = "actions"
	TypeExternalReference Type = "externalReference"
	TypePersistableState  Type = "persistableState"
)

// FileAttachmentTypeID marks external references that point at uploaded files.
const FileAttachmentTypeID = ".files"

// Kind groups attachment requests by the quota that applies to them.
type Kind string

const (
	KindAlert Kind = "alert"
	KindFile  Kind = "file"
	KindOther Kind = "other"
)

func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindAlert:
		return KindAlert, nil
	case KindFile:
		return KindFile, nil
	default:
		return "", errors.New("kind must be alert or file")
	}
}

// StringList decodes either a single JSON string or an array of strings.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*s = values
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*s = StringList{value}
	return nil
}

type RuleRef struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type ExternalReferenceStorage struct {
	Type   string `json:"type"`
	SOType string `json:"soType,omitempty"`
}

// Request is one attachment to add to a case. Which fields are populated
// depends on Type.
type Request struct {
	Type  Type   `json:"type"`
	Owner string `json:"owner"`

	Comment string `json:"comment,omitempty"`

	AlertID StringList `json:"alertId,omitempty"`
	Index   StringList `json:"index,omitempty"`
	Rule    *RuleRef   `json:"rule,omitempty"`

	Actions json.RawMessage `json:"actions,omitempty"`

	ExternalReferenceID               string                    `json:"externalReferenceId,omitempty"`
	ExternalReferenceStorage          *ExternalReferenceStorage `json:"externalReferenceStorage,omitempty"`
	ExternalReferenceAttachmentTypeID string                    `json:"externalReferenceAttachmentTypeId,omitempty"`
	ExternalReferenceMetadata         json.RawMessage           `json:"externalReferenceMetadata,omitempty"`

	PersistableStateAttachmentTypeID string          `json:"persistableStateAttachmentTypeId,omitempty"`
	PersistableStateAttachmentState  json.RawMessage `json:"persistableStateAttachmentState,omitempty"`
}

func (r Request) IsAlert() bool {
	return r.Type == TypeAlert
}

func (r Request) IsFile() bool {
	return r.Type == TypeExternalReference && r.ExternalReferenceAttachmentTypeID == FileAttachmentTypeID
}

// AlertIDs returns the alert ids referenced by an alert request.
func (r Request) AlertIDs() []string {
	if !r.IsAlert() {
		return nil
	}
	return r.AlertID
}

func (r Request) Kind() Kind {
	switch {
	case r.IsAlert():
		return KindAlert
	case r.IsFile():
		return KindFile
	default:
		return KindOther
	}
}
