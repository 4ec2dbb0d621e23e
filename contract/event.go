package contract

import "time"

// EventKind discriminates the AgentEvent tagged union.
type EventKind string

const (
	EventRunStarted       EventKind = "run_started"
	EventRunCompleted     EventKind = "run_completed"
	EventAssistantDelta   EventKind = "assistant_delta"
	EventAssistantMessage EventKind = "assistant_message"
	EventToolCall         EventKind = "tool_call"
	EventToolResult       EventKind = "tool_result"
	EventFileChanged      EventKind = "file_changed"
	EventCommandExecuted  EventKind = "command_executed"
	EventWarning          EventKind = "warning"
	EventError            EventKind = "error"
)

type (
	// ToolCallData is the payload for an EventToolCall event.
	ToolCallData struct {
		ToolName        string `json:"tool_name"`
		ToolUseID       string `json:"tool_use_id,omitempty"`
		ParentToolUseID string `json:"parent_tool_use_id,omitempty"`
		Input           any    `json:"input"`
	}

	// ToolResultData is the payload for an EventToolResult event.
	ToolResultData struct {
		ToolName  string `json:"tool_name"`
		ToolUseID string `json:"tool_use_id,omitempty"`
		Output    any    `json:"output"`
		IsError   bool   `json:"is_error"`
	}

	// FileChangedData is the payload for an EventFileChanged event.
	FileChangedData struct {
		Path    string `json:"path"`
		Summary string `json:"summary"`
	}

	// CommandExecutedData is the payload for an EventCommandExecuted event.
	CommandExecutedData struct {
		Command      string  `json:"command"`
		ExitCode     *int    `json:"exit_code,omitempty"`
		OutputPreview string `json:"output_preview,omitempty"`
	}

	// WarningData is the payload for an EventWarning event.
	WarningData struct {
		Message string `json:"message"`
	}

	// ErrorData is the payload for an EventError event.
	ErrorData struct {
		Message   string `json:"message"`
		ErrorCode string `json:"error_code,omitempty"`
	}

	// AgentEvent is one entry in a backend's trace. Exactly one of the typed
	// payload fields is populated, matching Kind. Ext carries free-form
	// passthrough metadata that never affects canonicalization or hashing.
	AgentEvent struct {
		Timestamp time.Time `json:"ts"`
		Kind      EventKind `json:"kind"`

		AssistantDelta   string               `json:"assistant_delta,omitempty"`
		AssistantMessage string               `json:"assistant_message,omitempty"`
		ToolCall         *ToolCallData        `json:"tool_call,omitempty"`
		ToolResult       *ToolResultData      `json:"tool_result,omitempty"`
		FileChanged      *FileChangedData     `json:"file_changed,omitempty"`
		CommandExecuted  *CommandExecutedData `json:"command_executed,omitempty"`
		Warning          *WarningData         `json:"warning,omitempty"`
		Error            *ErrorData           `json:"error,omitempty"`

		Ext map[string]any `json:"ext,omitempty"`
	}
)

// WithoutExt returns a shallow copy of e with Ext cleared, used when hashing
// a receipt trace so passthrough metadata never perturbs the digest.
func (e AgentEvent) WithoutExt() AgentEvent {
	e.Ext = nil
	return e
}

func newEvent(kind EventKind) AgentEvent {
	return AgentEvent{Timestamp: time.Now().UTC(), Kind: kind}
}

// RunStartedEvent builds a run_started AgentEvent.
func RunStartedEvent() AgentEvent { return newEvent(EventRunStarted) }

// RunCompletedEvent builds a run_completed AgentEvent.
func RunCompletedEvent() AgentEvent { return newEvent(EventRunCompleted) }

// AssistantDeltaEvent builds an assistant_delta AgentEvent.
func AssistantDeltaEvent(text string) AgentEvent {
	e := newEvent(EventAssistantDelta)
	e.AssistantDelta = text
	return e
}

// AssistantMessageEvent builds an assistant_message AgentEvent.
func AssistantMessageEvent(text string) AgentEvent {
	e := newEvent(EventAssistantMessage)
	e.AssistantMessage = text
	return e
}

// ToolCallEvent builds a tool_call AgentEvent.
func ToolCallEvent(data ToolCallData) AgentEvent {
	e := newEvent(EventToolCall)
	e.ToolCall = &data
	return e
}

// ToolResultEvent builds a tool_result AgentEvent.
func ToolResultEvent(data ToolResultData) AgentEvent {
	e := newEvent(EventToolResult)
	e.ToolResult = &data
	return e
}

// FileChangedEvent builds a file_changed AgentEvent.
func FileChangedEvent(path, summary string) AgentEvent {
	e := newEvent(EventFileChanged)
	e.FileChanged = &FileChangedData{Path: path, Summary: summary}
	return e
}

// CommandExecutedEvent builds a command_executed AgentEvent.
func CommandExecutedEvent(data CommandExecutedData) AgentEvent {
	e := newEvent(EventCommandExecuted)
	e.CommandExecuted = &data
	return e
}

// WarningEvent builds a warning AgentEvent.
func WarningEvent(message string) AgentEvent {
	e := newEvent(EventWarning)
	e.Warning = &WarningData{Message: message}
	return e
}

// ErrorEvent builds an error AgentEvent.
func ErrorEvent(message, code string) AgentEvent {
	e := newEvent(EventError)
	e.Error = &ErrorData{Message: message, ErrorCode: code}
	return e
}
