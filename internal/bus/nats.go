package bus

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
)

const (
	SubjectAttachmentsAdded    = "case.attachments.added"
	SubjectAttachmentsRejected = "case.attachments.rejected"
)

type Publisher struct {
	Conn *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("caseguard"))
	if err != nil {
		return nil, err
	}
	return &Publisher{Conn: conn}, nil
}

func (p *Publisher) Close() {
	if p.Conn != nil {
		p.Conn.Drain()
		p.Conn.Close()
	}
}

func (p *Publisher) Publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Conn.Publish(subject, data)
}

// AttachmentsAdded is published after a batch is stored.
type AttachmentsAdded struct {
	CaseID        string   `json:"caseId"`
	AttachmentIDs []string `json:"attachmentIds"`
	Alerts        int      `json:"alerts"`
	Files         int      `json:"files"`
}

// AttachmentsRejected is published when a batch hits a case quota.
type AttachmentsRejected struct {
	CaseID  string `json:"caseId"`
	Kind    string `json:"kind"`
	Limit   int    `json:"limit"`
	Message string `json:"message"`
}
