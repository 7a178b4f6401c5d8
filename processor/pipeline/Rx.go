package pipeline

import (
	"regexp"

	log "github.com/sirupsen/logrus"

	"crashes/common/format/report"
)

// Regular Expression Descent
type Rx struct {
	Stage
	Regexps []*regexp.Regexp
}

func (r *Rx) Process(entry *report.Entry) bool {
	if len(r.Regexps) == 0 {
		// to next stage
		return false
	}

	frames := entry.Frames()
	if len(frames) == 0 {
		// go to next stage
		return false
	}

	for _, frame := range frames {
		isMatch := false
		for _, rx := range r.Regexps {
			isMatch = rx.MatchString(frame.MethodName) || isMatch
			if isMatch {
				break
			}
		}
		if !isMatch {
			apply(entry, frame)
			return true
		}
	}

	apply(entry, frames[0])
	return true
}

func NewRx(regs []string) *Rx {
	var rxSlice []*regexp.Regexp
	for _, reg := range regs {
		rx, err := regexp.Compile(reg)
		log.WithField("regexp", reg).
			Debug("Rx stage: compile regexp")
		if err == nil {
			rxSlice = append(rxSlice, rx)
		} else {
			log.WithError(err).
				Error("Can't compile regular expression")
		}
	}

	return &Rx{
		Regexps: rxSlice,
	}
}
