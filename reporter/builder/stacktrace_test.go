package builder

import (
	"reflect"
	"testing"

	"github.com/go-errors/errors"

	"crashes/common/format/report"
)

func TestParseStackTrace(t *testing.T) {
	tests := []struct {
		name  string
		trace string
		want  []report.Frame
	}{
		{
			name:  "plain frames",
			trace: "at Foo.Bar()\nat Main()",
			want:  []report.Frame{{MethodName: "Foo.Bar"}, {MethodName: "Main"}},
		},
		{
			name: "unity frames",
			trace: "PlayerController.Update () (at Assets/Scripts/PlayerController.cs:42)\n" +
				"UnityEngine.Debug:LogException(Exception)\n",
			want: []report.Frame{
				{MethodName: "PlayerController.Update", FileName: "Assets/Scripts/PlayerController.cs", LineNumber: 42},
				{MethodName: "UnityEngine.Debug:LogException"},
			},
		},
		{
			name:  "dotnet frames",
			trace: `   at Game.Loader.Load(String path) in C:\src\Loader.cs:line 17`,
			want:  []report.Frame{{MethodName: "Game.Loader.Load", FileName: `C:\src\Loader.cs`, LineNumber: 17}},
		},
		{
			name:  "unknown file",
			trace: "Foo.Bar () (at <filename unknown>:0)",
			want:  []report.Frame{{MethodName: "Foo.Bar"}},
		},
		{
			name:  "unparseable lines keep raw text",
			trace: "NullReferenceException: Object reference not set\r\n\n  --- end of inner stack ---  ",
			want: []report.Frame{
				{MethodName: "NullReferenceException: Object reference not set"},
				{MethodName: "--- end of inner stack ---"},
			},
		},
		{
			name:  "empty trace",
			trace: "",
			want:  []report.Frame{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStackTrace(tt.trace)
			if got == nil {
				t.Fatal("expected non-nil frames")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d frames, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("frame %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestFormatStackRoundTrip(t *testing.T) {
	stack := []errors.StackFrame{
		{File: "/src/game/player.go", LineNumber: 40, Package: "game", Name: "(*Player).Shoot"},
		{File: "/go/logrus/entry.go", LineNumber: 10, Package: "github.com/sirupsen/logrus", Name: "(*Entry).Error"},
		{File: "/src/game/main.go", LineNumber: 7, Package: "main", Name: "main"},
	}

	text := FormatStack(stack, "github.com/sirupsen/logrus")
	frames := ParseStackTrace(text)

	want := []report.Frame{
		{MethodName: "game.*Player.Shoot", FileName: "/src/game/player.go", LineNumber: 40},
		{MethodName: "main.main", FileName: "/src/game/main.go", LineNumber: 7},
	}
	if !reflect.DeepEqual(frames, want) {
		t.Fatalf("unexpected frames %+v", frames)
	}
}
