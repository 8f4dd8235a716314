// Package config loads the navigation waypoint list the controller
// preloads at session setup (spec §6.3).
package config

import (
	"log"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/tailu123/x30ctl/protocol"
)

// defaultWaypoints is the built-in two-point fallback used when the
// config file is absent or unreadable (spec §6.3).
var defaultWaypoints = []protocol.NavigationPoint{
	{MapID: 1, Value: 1, PosX: 0, PosY: 0, PosZ: 0, AngleYaw: 0, PointInfo: 1, Gait: 1, Speed: 1, Manner: 1, ObsMode: 1, NavMode: 1, Terrain: 1, Posture: 1},
	{MapID: 1, Value: 2, PosX: 1, PosY: 1, PosZ: 0, AngleYaw: 0, PointInfo: 1, Gait: 1, Speed: 1, Manner: 1, ObsMode: 1, NavMode: 1, Terrain: 1, Posture: 1},
}

// DefaultPath resolves <exe-dir>/../config/default_params.json (spec
// §6.3). Falls back to a relative path if the executable's own path
// can't be determined.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("config", "default_params.json")
	}
	return filepath.Join(filepath.Dir(exe), "..", "config", "default_params.json")
}

// LoadWaypoints reads the waypoint array at path. Any failure to read
// or decode it — file absent, unreadable, malformed JSON — falls back
// to the built-in two-point default rather than erroring, per spec
// §6.3.
func LoadWaypoints(path string) []protocol.NavigationPoint {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config: %s unreadable (%v), using built-in waypoints", path, err)
		return defaultWaypoints
	}

	var points []protocol.NavigationPoint
	if err := jsoniter.Unmarshal(data, &points); err != nil {
		log.Printf("config: %s malformed (%v), using built-in waypoints", path, err)
		return defaultWaypoints
	}

	return points
}
