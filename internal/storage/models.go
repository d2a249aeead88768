package storage

import (
	"encoding/json"
	"time"
)

type AttachmentRecord struct {
	ID                      string          `json:"id"`
	CaseID                  string          `json:"caseId"`
	Type                    string          `json:"type"`
	ExternalReferenceTypeID *string         `json:"externalReferenceAttachmentTypeId,omitempty"`
	Owner                   string          `json:"owner"`
	Payload                 json.RawMessage `json:"payload"`
	CreatedAt               time.Time       `json:"createdAt"`
}
