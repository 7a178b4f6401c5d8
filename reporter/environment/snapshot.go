// Package environment reads a best-effort snapshot of the host for a crash report.
package environment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"

	"crashes/common/format/report"
)

// Clock interface allows for deterministic testing
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

type snapshot struct {
	env         report.Environment
	failed      []string
	unavailable []string
}

// read runs one guarded field query. A failing or panicking query only marks the field.
func (s *snapshot) read(field string, query func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.failed = append(s.failed, fmt.Sprintf("%s (panic: %v)", field, r))
		}
	}()
	err := query()
	switch {
	case err == nil:
	case errors.Is(err, ErrUnavailable):
		s.unavailable = append(s.unavailable, field)
	default:
		s.failed = append(s.failed, fmt.Sprintf("%s (%v)", field, err))
	}
}

func readInto[T any](s *snapshot, field string, dst *T, query func() (T, error)) {
	s.read(field, func() error {
		v, err := query()
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
}

// Capture queries every field of the host independently. Fields that can not be read are
// left at their zero value and reported together in a single warning.
func Capture(host Host, clock Clock, logger log.FieldLogger) report.Environment {
	if host == nil {
		host = RuntimeHost{}
	}
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}

	s := &snapshot{}
	e := &s.env

	_, offset := clock.Now().Zone()
	e.UtcOffset = float64(offset) / 3600

	readInto(s, "processorCount", &e.ProcessorCount, host.ProcessorCount)
	readInto(s, "cpu", &e.Cpu, host.ProcessorType)
	readInto(s, "architecture", &e.Architecture, host.Architecture)
	readInto(s, "osVersion", &e.OSVersion, host.OperatingSystem)
	readInto(s, "deviceModel", &e.DeviceModel, host.DeviceModel)
	readInto(s, "deviceType", &e.DeviceType, host.DeviceType)
	readInto(s, "systemMemorySize", &e.SystemMemorySize, host.SystemMemorySize)
	s.read("resolution", func() error {
		w, h, err := host.Resolution()
		if err != nil {
			return err
		}
		e.WindowBoundsWidth, e.WindowBoundsHeight = w, h
		return nil
	})
	readInto(s, "refreshRate", &e.RefreshRate, host.RefreshRate)
	readInto(s, "orientation", &e.Orientation, host.Orientation)
	readInto(s, "fullscreen", &e.Fullscreen, host.Fullscreen)
	readInto(s, "locale", &e.Locale, host.Locale)
	s.read("graphicsCapabilities", func() error {
		caps, err := host.GraphicsCapabilities()
		if err != nil {
			return err
		}
		if len(caps) > 0 {
			e.GraphicsCapabilities = make(map[string]interface{}, len(caps))
			for k, v := range caps {
				e.GraphicsCapabilities[k] = v
			}
		}
		return nil
	})

	switch {
	case len(s.failed) > 0:
		sort.Strings(s.failed)
		logger.WithFields(log.Fields{
			"failed":      strings.Join(s.failed, ", "),
			"unavailable": strings.Join(s.unavailable, ", "),
		}).Warn("Error getting environment info")
	case len(s.unavailable) > 0:
		logger.WithField("unavailable", strings.Join(s.unavailable, ", ")).
			Debug("Environment info is partial")
	}

	return s.env
}
