// Package websocket defines the messages of the admin live result feed.
package websocket

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError         Event = "error"
	EventSnapshot      Event = "results.snapshot"
	EventResultCreated Event = "result.created"
	EventPong          Event = "pong"
)

// SnapshotEvent is sent once after connecting.
type SnapshotEvent struct {
	Event   Event              `json:"event"`
	ExamID  uuid.UUID          `json:"examId"`
	Stats   *model.ResultStats `json:"stats"`
	Results []model.ExamResult `json:"results"`
}

// ResultCreatedEvent carries a model.ResultEvent exactly as published.
type ResultCreatedEvent struct {
	Event  Event           `json:"event"`
	Result json.RawMessage `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
