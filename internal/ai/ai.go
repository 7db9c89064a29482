// Package ai talks to a hosted chat-completions model for the study assistant
// and the timetable photo import.
package ai

import (
	"context"

	"github.com/pkg/errors"
)

// FallbackReply is returned instead of an error when the assistant cannot answer.
const FallbackReply = "I couldn't connect to the assistant right now. Please try again."

var ErrDisabled = errors.New("ai: no API key configured")

type Mode string

const (
	ModeStudent Mode = "student"
	ModeTeacher Mode = "teacher"
)

type Turn struct {
	Role string `json:"role" validate:"required,oneof=user model"`
	Text string `json:"text"`
}

type Attachment struct {
	MimeType string `json:"mimeType" validate:"required"`
	Data     string `json:"base64data" validate:"required,base64"`
}

type Request struct {
	History []Turn      `json:"history" validate:"dive"`
	Message string      `json:"message" validate:"required"`
	File    *Attachment `json:"file,omitempty"`
	Mode    Mode        `json:"mode" validate:"omitempty,oneof=student teacher"`
}

// TextService never fails; callers get FallbackReply on any error.
type TextService interface {
	Reply(ctx context.Context, req Request) string
}

type ParsedPeriod struct {
	Day         string `json:"day"`
	PeriodIndex int    `json:"periodIndex"`
	Subject     string `json:"subject"`
	Teacher     string `json:"teacher"`
	Room        string `json:"room"`
}

// ScheduleParser extracts timetable slots from a photo. Unlike TextService it
// returns errors to the caller.
type ScheduleParser interface {
	Parse(ctx context.Context, image, mimeType string) ([]ParsedPeriod, error)
}
