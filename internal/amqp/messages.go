package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finbot/internal/core"
)

// EventReportCreated is the event name carried by ReportCreatedMessage.
const EventReportCreated = "report.created"

// ReportCreatedMessage announces a finished analysis. It carries the full
// report summary so consumers never need to call back.
type ReportCreatedMessage struct {
	Event     string      `json:"event"`
	Report    core.Report `json:"report"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewReportCreatedMessage wraps r in a message stamped with the current time.
func NewReportCreatedMessage(r core.Report) *ReportCreatedMessage {
	return &ReportCreatedMessage{
		Event:     EventReportCreated,
		Report:    r,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportCreatedMessageFromJSON decodes and checks a message body.
func ReportCreatedMessageFromJSON(data []byte) (*ReportCreatedMessage, error) {
	var msg ReportCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event != EventReportCreated {
		return nil, fmt.Errorf("unexpected event %q", msg.Event)
	}
	if msg.Report.ID == "" {
		return nil, errors.New("report without id")
	}
	return &msg, nil
}
