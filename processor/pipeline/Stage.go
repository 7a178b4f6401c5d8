// Package pipeline contains objects for processing by a conveyor
package pipeline

import (
	"fmt"

	"crashes/common/format/report"
	"crashes/common/utils"
)

// MaxSignatureLength limits the indexed signature, in runes.
const MaxSignatureLength = 256

// Pipeline stage
type Stage interface {
	//Process the entry
	//If return true then pipeline stop
	Process(entry *report.Entry) bool
}

// Run passes entry through stages until one of them stops the pipeline.
func Run(entry *report.Entry, stages ...Stage) {
	for _, stage := range stages {
		if stage.Process(entry) {
			return
		}
	}
}

type SignatureAndSource struct {
	Stage
}

func (m *SignatureAndSource) Process(entry *report.Entry) bool {
	frames := entry.Frames()
	if len(frames) > 0 {
		apply(entry, frames[0])
	} else {
		entry.Signature = utils.Truncate(entry.Message.Signature(), MaxSignatureLength)
	}

	return false
}

func apply(entry *report.Entry, frame report.Frame) {
	entry.Signature = utils.Truncate(frame.MethodName, MaxSignatureLength)
	entry.Source = ""
	if frame.FileName != "" {
		entry.Source = fmt.Sprintf("%s:%d", frame.FileName,
			frame.LineNumber)
	}
}
