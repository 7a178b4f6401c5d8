package environment

import (
	"os"
	"runtime"
	"strings"

	"github.com/go-errors/errors"
)

// ErrUnavailable is returned by a Host for facts it can not provide on this platform.
var ErrUnavailable = errors.New("not available on this host")

// Host is the read-only query surface of the embedding application.
// Every method may fail independently.
type Host interface {
	ProcessorCount() (int, error)
	ProcessorType() (string, error)
	Architecture() (string, error)
	OperatingSystem() (string, error)
	DeviceModel() (string, error)
	DeviceType() (string, error)
	DeviceName() (string, error)
	SystemMemorySize() (int, error)
	Resolution() (width, height int, err error)
	RefreshRate() (int, error)
	Orientation() (string, error)
	Fullscreen() (bool, error)
	Locale() (string, error)
	GraphicsCapabilities() (map[string]interface{}, error)
}

// RuntimeHost answers from the Go runtime and the operating system.
// Display and graphics facts belong to the embedding engine and are unavailable here.
type RuntimeHost struct{}

func (RuntimeHost) ProcessorCount() (int, error) {
	return runtime.NumCPU(), nil
}

func (RuntimeHost) ProcessorType() (string, error) {
	return processorType()
}

func (RuntimeHost) Architecture() (string, error) {
	return runtime.GOARCH, nil
}

func (RuntimeHost) OperatingSystem() (string, error) {
	return operatingSystem()
}

func (RuntimeHost) DeviceModel() (string, error) {
	return deviceModel()
}

func (RuntimeHost) DeviceType() (string, error) {
	switch runtime.GOOS {
	case "android", "ios":
		return "Handheld", nil
	case "js", "wasip1":
		return "Unknown", nil
	}
	return "Desktop", nil
}

func (RuntimeHost) DeviceName() (string, error) {
	return os.Hostname()
}

func (RuntimeHost) SystemMemorySize() (int, error) {
	return systemMemoryMB()
}

func (RuntimeHost) Resolution() (int, int, error) {
	return 0, 0, ErrUnavailable
}

func (RuntimeHost) RefreshRate() (int, error) {
	return 0, ErrUnavailable
}

func (RuntimeHost) Orientation() (string, error) {
	return "", ErrUnavailable
}

func (RuntimeHost) Fullscreen() (bool, error) {
	return false, ErrUnavailable
}

func (RuntimeHost) Locale() (string, error) {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if value := os.Getenv(key); value != "" {
			// en_US.UTF-8 -> en-US
			value = strings.SplitN(value, ".", 2)[0]
			return strings.ReplaceAll(value, "_", "-"), nil
		}
	}
	return "", ErrUnavailable
}

func (RuntimeHost) GraphicsCapabilities() (map[string]interface{}, error) {
	return nil, ErrUnavailable
}
