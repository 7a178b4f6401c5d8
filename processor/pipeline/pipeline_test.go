package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"crashes/common/format/report"
)

func entryWith(frames ...report.Frame) *report.Entry {
	e := &report.Entry{}
	e.Message.Details.Error = report.ErrorDetail{
		ClassName:  "LogEntry",
		Message:    "NullRef at Foo.Bar",
		StackTrace: frames,
	}
	return e
}

func TestSignatureAndSource(t *testing.T) {
	e := entryWith(
		report.Frame{MethodName: "Foo.Bar", FileName: "Foo.cs", LineNumber: 12},
		report.Frame{MethodName: "Main"},
	)
	Run(e, &SignatureAndSource{})

	if e.Signature != "Foo.Bar" || e.Source != "Foo.cs:12" {
		t.Errorf("unexpected signature %q source %q", e.Signature, e.Source)
	}

	empty := entryWith()
	Run(empty, &SignatureAndSource{})
	if empty.Signature != "NullRef at Foo.Bar" || empty.Source != "" {
		t.Errorf("expected message signature, got %q %q", empty.Signature, empty.Source)
	}
}

func TestSignatureIsTruncated(t *testing.T) {
	long := strings.Repeat("Ж", MaxSignatureLength+10)

	e := entryWith(report.Frame{MethodName: long, FileName: "Foo.cs", LineNumber: 1})
	Run(e, &SignatureAndSource{})
	if utf8.RuneCountInString(e.Signature) != MaxSignatureLength || e.Source != "Foo.cs:1" {
		t.Errorf("unexpected signature length %d source %q", utf8.RuneCountInString(e.Signature), e.Source)
	}

	noFrames := entryWith()
	noFrames.Message.Details.Error.Message = long
	Run(noFrames, &SignatureAndSource{})
	if noFrames.Signature != strings.Repeat("Ж", MaxSignatureLength) {
		t.Errorf("unexpected message signature length %d", utf8.RuneCountInString(noFrames.Signature))
	}
}

func TestRxSkipsFrames(t *testing.T) {
	stages := []Stage{NewRx([]string{`^UnityEngine\.`, `^crashes/`, `(`}), &SignatureAndSource{}}

	t.Run("first frame not skipped", func(t *testing.T) {
		e := entryWith(
			report.Frame{MethodName: "UnityEngine.Debug.LogError"},
			report.Frame{MethodName: "crashes/reporter/hook.dispatchHook.Fire"},
			report.Frame{MethodName: "Game.Player.Shoot", FileName: "Player.cs", LineNumber: 40},
		)
		Run(e, stages...)
		if e.Signature != "Game.Player.Shoot" || e.Source != "Player.cs:40" {
			t.Errorf("unexpected signature %q source %q", e.Signature, e.Source)
		}
	})

	t.Run("all frames skipped", func(t *testing.T) {
		e := entryWith(report.Frame{MethodName: "UnityEngine.Debug.LogError"})
		Run(e, stages...)
		if e.Signature != "UnityEngine.Debug.LogError" {
			t.Errorf("unexpected signature %q", e.Signature)
		}
	})

	t.Run("no frames falls through", func(t *testing.T) {
		e := entryWith()
		Run(e, stages...)
		if e.Signature != "NullRef at Foo.Bar" {
			t.Errorf("unexpected signature %q", e.Signature)
		}
	})
}

func TestNewRxIgnoresInvalidExpressions(t *testing.T) {
	rx := NewRx([]string{`(`, `^a`})
	if len(rx.Regexps) != 1 {
		t.Fatalf("expected one compiled expression, got %d", len(rx.Regexps))
	}
}
