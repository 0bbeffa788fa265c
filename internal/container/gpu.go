package container

import (
	"strings"

	"github.com/docker/docker/api/types/container"

	"github.com/dockrun/dockrun/internal/errdefs"
)

// ParseGPURequest translates the GPU request string into Docker device
// requests. "all" requests every GPU; "device=<id>[,<id>...]" requests the
// listed devices. The empty string requests nothing.
func ParseGPURequest(s string) ([]container.DeviceRequest, error) {
	switch {
	case s == "":
		return nil, nil
	case s == "all":
		return []container.DeviceRequest{{
			Count:        -1,
			Capabilities: [][]string{{"gpu"}},
		}}, nil
	case strings.HasPrefix(s, "device="):
		ids := strings.Split(strings.TrimPrefix(s, "device="), ",")
		for _, id := range ids {
			if id == "" {
				return nil, errdefs.Configf("gpu request %q lists an empty device id", s)
			}
		}
		return []container.DeviceRequest{{
			DeviceIDs:    ids,
			Capabilities: [][]string{{"gpu"}},
		}}, nil
	}
	return nil, errdefs.Configf("gpu request %q is not \"all\" or \"device=<id>[,<id>...]\"", s)
}
