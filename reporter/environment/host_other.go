//go:build !linux

package environment

import "runtime"

func operatingSystem() (string, error) {
	return runtime.GOOS, nil
}

func deviceModel() (string, error) {
	return "", ErrUnavailable
}

func systemMemoryMB() (int, error) {
	return 0, ErrUnavailable
}

func processorType() (string, error) {
	return "", ErrUnavailable
}
