package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleMessage() Message {
	return Message{
		OccurredOn: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Details: Details{
			MachineName: "pc-01",
			Version:     "1.0.0",
			Error: ErrorDetail{
				ClassName:  "LogEntry",
				Message:    "boom",
				StackTrace: []Frame{{MethodName: "Foo.Bar", FileName: "Foo.cs", LineNumber: 12}},
			},
			Client: DefaultClient(),
		},
	}
}

func TestMessageJSON(t *testing.T) {
	t.Run("tags and custom data survive encoding", func(t *testing.T) {
		msg := sampleMessage()
		msg.Details.Tags = []string{"a", "b"}
		msg.Details.UserCustomData = map[string]interface{}{"x": 1}

		data, err := json.Marshal(&msg)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var decoded struct {
			Details struct {
				Tags           []string               `json:"tags"`
				UserCustomData map[string]interface{} `json:"userCustomData"`
			} `json:"details"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(decoded.Details.Tags) != 2 || decoded.Details.Tags[0] != "a" || decoded.Details.Tags[1] != "b" {
			t.Fatalf("unexpected tags %v", decoded.Details.Tags)
		}
		if decoded.Details.UserCustomData["x"] != float64(1) {
			t.Fatalf("unexpected custom data %v", decoded.Details.UserCustomData)
		}
	})

	t.Run("empty optional sections are omitted", func(t *testing.T) {
		msg := sampleMessage()
		msg.Details.Tags = []string{}
		msg.Details.UserCustomData = map[string]interface{}{}

		data, err := json.Marshal(&msg)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var raw map[string]map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		for _, key := range []string{"tags", "userCustomData", "user"} {
			if _, ok := raw["details"][key]; ok {
				t.Errorf("expected %q to be omitted, got %s", key, raw["details"][key])
			}
		}
		if string(raw["details"]["error"]) == "" {
			t.Fatal("expected error section")
		}
	})

	t.Run("wire field names", func(t *testing.T) {
		msg := sampleMessage()
		msg.Details.User = NewIdentifier("player-7")

		data, err := json.Marshal(&msg)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body := string(data)
		for _, want := range []string{
			`"occurredOn":"2024-03-01T12:30:00Z"`,
			`"machineName":"pc-01"`,
			`"className":"LogEntry"`,
			`"stackTrace":[{"methodName":"Foo.Bar","fileName":"Foo.cs","lineNumber":12}]`,
			`"innerError":null`,
			`"clientUrl":"` + ClientUrl + `"`,
			`"user":{"identifier":"player-7"}`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("expected payload to contain %s\n%s", want, body)
			}
		}
	})
}

func TestSignature(t *testing.T) {
	msg := sampleMessage()
	if got := msg.Signature(); got != "Foo.Bar (Foo.cs:12)" {
		t.Fatalf("unexpected signature %q", got)
	}

	msg.Details.Error.StackTrace = []Frame{{MethodName: "Main"}}
	if got := msg.Signature(); got != "Main" {
		t.Fatalf("unexpected signature %q", got)
	}

	msg.Details.Error.StackTrace = nil
	if got := msg.Signature(); got != "boom" {
		t.Fatalf("unexpected signature %q", got)
	}
}

func TestErrorDetailDepth(t *testing.T) {
	e := &ErrorDetail{InnerError: &ErrorDetail{InnerError: &ErrorDetail{}}}
	if e.Depth() != 3 {
		t.Fatalf("expected depth 3, got %d", e.Depth())
	}
}
