package resource

import (
	"fmt"
	"os"

	stdnet "buoy/std/net"
)

// Load returns the markup behind target, which is either a local file
// path or an HTTP(S) URL.
func Load(target string) (string, error) {
	if stdnet.IsNetworkURL(target) {
		body, _, err := stdnet.Fetch(target)
		if err != nil {
			return "", err
		}
		return string(body), nil
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", target, err)
	}
	return string(data), nil
}
