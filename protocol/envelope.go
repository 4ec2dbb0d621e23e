// Package protocol implements the sidecar wire format: a tagged-union
// envelope encoded as one JSON object per line, exchanged over a
// subprocess's stdin/stdout.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/agentbackplane/abp/contract"
)

// Tag discriminates the Envelope tagged union.
type Tag string

const (
	TagHello Tag = "hello"
	TagRun   Tag = "run"
	TagEvent Tag = "event"
	TagFinal Tag = "final"
	TagFatal Tag = "fatal"
)

type (
	// HelloPayload is sent once by a sidecar as its first envelope.
	HelloPayload struct {
		ContractVersion string                      `json:"contract_version"`
		Backend         contract.BackendIdentity    `json:"backend"`
		Capabilities    contract.CapabilityManifest `json:"capabilities"`
		Mode            string                      `json:"mode,omitempty"`
	}

	// RunPayload dispatches a work order to a running sidecar.
	RunPayload struct {
		ID        string             `json:"id"`
		WorkOrder contract.WorkOrder `json:"work_order"`
	}

	// EventPayload carries one trace event for an in-flight run.
	EventPayload struct {
		RefID string              `json:"ref_id"`
		Event contract.AgentEvent `json:"event"`
	}

	// FinalPayload carries the terminal receipt for a run.
	FinalPayload struct {
		RefID   string           `json:"ref_id"`
		Receipt contract.Receipt `json:"receipt"`
	}

	// FatalPayload reports an unrecoverable error, optionally scoped to a run.
	FatalPayload struct {
		RefID     string `json:"ref_id,omitempty"`
		Error     string `json:"error"`
		ErrorCode string `json:"error_code,omitempty"`
	}

	// Envelope is one line of the sidecar wire protocol. Exactly one of the
	// typed payload fields is populated, matching Tag.
	Envelope struct {
		Tag   Tag           `json:"t"`
		Hello *HelloPayload `json:"hello,omitempty"`
		Run   *RunPayload   `json:"run,omitempty"`
		Event *EventPayload `json:"event,omitempty"`
		Final *FinalPayload `json:"final,omitempty"`
		Fatal *FatalPayload `json:"fatal,omitempty"`
	}
)

// Hello builds a hello Envelope.
func Hello(p HelloPayload) Envelope { return Envelope{Tag: TagHello, Hello: &p} }

// Run builds a run Envelope.
func Run(p RunPayload) Envelope { return Envelope{Tag: TagRun, Run: &p} }

// Event builds an event Envelope.
func Event(p EventPayload) Envelope { return Envelope{Tag: TagEvent, Event: &p} }

// Final builds a final Envelope.
func Final(p FinalPayload) Envelope { return Envelope{Tag: TagFinal, Final: &p} }

// Fatal builds a fatal Envelope.
func Fatal(p FatalPayload) Envelope { return Envelope{Tag: TagFatal, Fatal: &p} }

// ErrUnknownTag is returned by Decode when a line's "t" field is not one of
// the known tags.
type ErrUnknownTag struct{ Tag string }

func (e *ErrUnknownTag) Error() string {
	return fmt.Sprintf("protocol: unknown envelope tag %q", e.Tag)
}

// rawEnvelope mirrors Envelope's wire shape but with payloads left as
// json.RawMessage, so Decode can validate the tag before committing to a
// concrete payload type and report unknown tags distinctly from malformed
// JSON.
type rawEnvelope struct {
	Tag   Tag             `json:"t"`
	Hello json.RawMessage `json:"hello,omitempty"`
	Run   json.RawMessage `json:"run,omitempty"`
	Event json.RawMessage `json:"event,omitempty"`
	Final json.RawMessage `json:"final,omitempty"`
	Fatal json.RawMessage `json:"fatal,omitempty"`
}

// Decode parses a single envelope from its JSON line form. Unknown fields
// within a known tag's payload are ignored; an unrecognized tag returns
// *ErrUnknownTag.
func Decode(line []byte) (Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(line, &raw); err != nil {
		return Envelope{}, fmt.Errorf("protocol: decode envelope: %w", err)
	}

	env := Envelope{Tag: raw.Tag}
	switch raw.Tag {
	case TagHello:
		var p HelloPayload
		if err := json.Unmarshal(raw.Hello, &p); err != nil {
			return Envelope{}, fmt.Errorf("protocol: decode hello payload: %w", err)
		}
		env.Hello = &p
	case TagRun:
		var p RunPayload
		if err := json.Unmarshal(raw.Run, &p); err != nil {
			return Envelope{}, fmt.Errorf("protocol: decode run payload: %w", err)
		}
		env.Run = &p
	case TagEvent:
		var p EventPayload
		if err := json.Unmarshal(raw.Event, &p); err != nil {
			return Envelope{}, fmt.Errorf("protocol: decode event payload: %w", err)
		}
		env.Event = &p
	case TagFinal:
		var p FinalPayload
		if err := json.Unmarshal(raw.Final, &p); err != nil {
			return Envelope{}, fmt.Errorf("protocol: decode final payload: %w", err)
		}
		env.Final = &p
	case TagFatal:
		var p FatalPayload
		if err := json.Unmarshal(raw.Fatal, &p); err != nil {
			return Envelope{}, fmt.Errorf("protocol: decode fatal payload: %w", err)
		}
		env.Fatal = &p
	default:
		return Envelope{}, &ErrUnknownTag{Tag: string(raw.Tag)}
	}
	return env, nil
}

// Encode serializes env as a single JSON line without a trailing newline.
func Encode(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode envelope: %w", err)
	}
	return data, nil
}
