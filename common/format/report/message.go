package report

import (
	"fmt"
	"time"
)

const (
	ClientName    = "crashes-go"
	ClientVersion = "1.2.0"
	ClientUrl     = "https://github.com/iqoption/yabs"

	NotSupplied = "Not supplied"
)

type Frame struct {
	MethodName string `json:"methodName"`
	FileName   string `json:"fileName,omitempty"`
	LineNumber int    `json:"lineNumber,omitempty"`
}

type ErrorDetail struct {
	ClassName  string       `json:"className"`
	Message    string       `json:"message"`
	StackTrace []Frame      `json:"stackTrace"`
	InnerError *ErrorDetail `json:"innerError"`
}

type Environment struct {
	ProcessorCount       int                    `json:"processorCount"`
	Cpu                  string                 `json:"cpu"`
	Architecture         string                 `json:"architecture"`
	OSVersion            string                 `json:"osVersion"`
	DeviceModel          string                 `json:"deviceModel"`
	DeviceType           string                 `json:"deviceType"`
	SystemMemorySize     int                    `json:"systemMemorySize"` // MB
	Locale               string                 `json:"locale"`
	UtcOffset            float64                `json:"utcOffset"` // hours
	WindowBoundsWidth    int                    `json:"windowBoundsWidth"`
	WindowBoundsHeight   int                    `json:"windowBoundsHeight"`
	RefreshRate          int                    `json:"resolutionRefreshRate"`
	Orientation          string                 `json:"screenOrientation"`
	Fullscreen           bool                   `json:"isFullScreen"`
	GraphicsCapabilities map[string]interface{} `json:"graphicsCapabilities,omitempty"`
}

type ClientInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	ClientUrl string `json:"clientUrl"`
}

type Identifier struct {
	Identifier string `json:"identifier"`
}

type Details struct {
	MachineName    string                 `json:"machineName"`
	Version        string                 `json:"version"`
	Error          ErrorDetail            `json:"error"`
	Environment    Environment            `json:"environment"`
	Client         ClientInfo             `json:"client"`
	Tags           []string               `json:"tags,omitempty"`
	UserCustomData map[string]interface{} `json:"userCustomData,omitempty"`
	User           *Identifier            `json:"user,omitempty"`
}

// Message is the root document posted to the entries endpoint.
type Message struct {
	OccurredOn time.Time `json:"occurredOn"`
	Details    Details   `json:"details"`
}

// DefaultClient identifies this SDK in every report.
func DefaultClient() ClientInfo {
	return ClientInfo{
		Name:      ClientName,
		Version:   ClientVersion,
		ClientUrl: ClientUrl,
	}
}

func NewIdentifier(user string) *Identifier {
	return &Identifier{Identifier: user}
}

// Signature renders the top frame of the error as "method (file:line)".
// Messages without frames fall back to the error message.
func (m *Message) Signature() string {
	frames := m.Details.Error.StackTrace
	if len(frames) == 0 {
		return m.Details.Error.Message
	}
	return frames[0].String()
}

func (f Frame) String() string {
	if f.FileName == "" {
		return f.MethodName
	}
	return fmt.Sprintf("%s (%s:%d)", f.MethodName, f.FileName, f.LineNumber)
}

// Depth counts the errors in the inner error chain, the root included.
func (e *ErrorDetail) Depth() int {
	n := 0
	for cur := e; cur != nil; cur = cur.InnerError {
		n++
	}
	return n
}
