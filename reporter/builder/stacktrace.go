package builder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-errors/errors"

	"crashes/common/format/report"
	"crashes/common/utils"
)

// Unity:  Namespace.Type:Method (args) (at Assets/File.cs:12)
// .NET:   at Namespace.Type.Method(args) in C:\File.cs:line 12
// plain:  at Foo.Bar()
var frameRx = regexp.MustCompile(`^(?:at\s+)?([^\s()][^()]*?)\s*\(([^()]*)\)` +
	`(?:\s+\(at\s+(.+):(\d+)\)|\s+in\s+(.+):line\s+(\d+))?$`)

// ParseStackTrace turns a raw stack trace into frames, one per non-blank line.
// Lines that do not look like a frame keep the raw text as the method name.
func ParseStackTrace(stackTrace string) []report.Frame {
	frames := []report.Frame{}
	for _, line := range utils.Lines(stackTrace) {
		frames = append(frames, parseFrame(line))
	}
	return frames
}

func parseFrame(line string) report.Frame {
	match := frameRx.FindStringSubmatch(line)
	if match == nil {
		return report.Frame{MethodName: line}
	}

	frame := report.Frame{MethodName: match[1]}
	file, number := match[3], match[4]
	if file == "" {
		file, number = match[5], match[6]
	}
	if file != "" && file != "<filename unknown>" {
		frame.FileName = file
		if n, err := strconv.Atoi(number); err == nil {
			frame.LineNumber = n
		}
	}
	return frame
}

var frameNameCleaner = strings.NewReplacer("(", "", ")", "")

// FormatStack renders Go frames as .NET style trace lines that ParseStackTrace reads back.
// Frames of packages starting with one of skipPackages are left out.
func FormatStack(stack []errors.StackFrame, skipPackages ...string) string {
	var b strings.Builder
	for _, f := range stack {
		if skipped(f.Package, skipPackages) {
			continue
		}
		name := frameNameCleaner.Replace(f.Name)
		if f.Package != "" {
			name = f.Package + "." + name
		}
		fmt.Fprintf(&b, "at %s() in %s:line %d\n", name, f.File, f.LineNumber)
	}
	return b.String()
}

func skipped(pkg string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(pkg, prefix) {
			return true
		}
	}
	return false
}
