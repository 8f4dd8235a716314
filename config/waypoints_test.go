package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWaypointsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waypoints.json")
	require.NoError(t, writeFile(path, `[{"MapID":1,"Value":5,"PosX":1.5,"PosY":2.5,"PosZ":0,"AngleYaw":90,"PointInfo":1,"Gait":1,"Speed":1,"Manner":1,"ObsMode":1,"NavMode":1,"Terrain":1,"Posture":1}]`))

	points := LoadWaypoints(path)
	require.Len(t, points, 1)
	assert.Equal(t, 5, points[0].Value)
	assert.Equal(t, 1.5, points[0].PosX)
}

func TestLoadWaypointsMissingFileFallsBack(t *testing.T) {
	points := LoadWaypoints(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, defaultWaypoints, points)
}

func TestLoadWaypointsMalformedJSONFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waypoints.json")
	require.NoError(t, writeFile(path, `not json`))

	points := LoadWaypoints(path)
	assert.Equal(t, defaultWaypoints, points)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
