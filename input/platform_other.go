//go:build !linux && !windows

package input

import "fmt"

func newPlatformSource(cfg Config) (Source, error) {
	return nil, fmt.Errorf("no system keyboard capture on this platform, use %q", KindStdin)
}

func defaultKind() string {
	return KindStdin
}
