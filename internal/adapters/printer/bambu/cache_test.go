package bambu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSettings = `<?xml version="1.0" encoding="UTF-8"?>
<config>
  <object id="2">
    <metadata key="name" value="shark.stl"/>
  </object>
  <plate>
    <metadata key="plater_id" value="1"/>
    <metadata key="gcode_file" value="Metadata/plate_1.gcode"/>
  </plate>
</config>`

func writeJob(t *testing.T, root, job string, thumbnail bool, settings string) {
	t.Helper()
	dir := filepath.Join(root, job, "Metadata")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if thumbnail {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "plate_1.png"), []byte("png"), 0o644))
	}
	if settings != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "model_settings.config"), []byte(settings), 0o644))
	}
}

func TestCache_JobNamesAndAvailability(t *testing.T) {
	root := t.TempDir()
	writeJob(t, root, "Shark Toy", true, sampleSettings)
	writeJob(t, root, "Benchy", true, "")
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), nil, 0o644))

	cache := NewCache(root)

	names, err := cache.JobNames()
	require.NoError(t, err)
	require.Equal(t, []string{"Benchy", "Shark Toy"}, names)

	require.True(t, cache.Available("Shark Toy"))
	require.False(t, cache.Available("Benchy"))
	require.False(t, cache.Available("Missing"))
}

func TestCache_JobNames_MissingRoot(t *testing.T) {
	names, err := NewCache(filepath.Join(t.TempDir(), "nope")).JobNames()
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestCache_GcodeFile(t *testing.T) {
	root := t.TempDir()
	writeJob(t, root, "Shark Toy", true, sampleSettings)
	writeJob(t, root, "Empty", true, `<config><plate><metadata key="plater_id" value="1"/></plate></config>`)
	writeJob(t, root, "Broken", true, `<config><plate>`)

	cache := NewCache(root)

	gcode, err := cache.GcodeFile("Shark Toy")
	require.NoError(t, err)
	require.Equal(t, "Metadata/plate_1.gcode", gcode)

	_, err = cache.GcodeFile("Empty")
	require.ErrorIs(t, err, ErrNoGcode)

	_, err = cache.GcodeFile("Broken")
	require.Error(t, err)

	_, err = cache.GcodeFile("Missing")
	require.ErrorIs(t, err, ErrJobNotCached)
}

func TestCache_Resolve(t *testing.T) {
	root := t.TempDir()
	writeJob(t, root, "Shark Toy", true, sampleSettings)
	writeJob(t, root, "cube", true, sampleSettings)

	cache := NewCache(root)

	name, err := cache.Resolve("shark_toy")
	require.NoError(t, err)
	require.Equal(t, "Shark Toy", name)

	name, err = cache.Resolve("cube")
	require.NoError(t, err)
	require.Equal(t, "cube", name)

	_, err = cache.Resolve("whale")
	require.ErrorIs(t, err, ErrJobNotCached)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Shark Toy":        "shark_toy",
		"  Benchy (v2)!! ": "benchy_v2",
		"plate-1.final":    "plate_1_final",
		"cube":             "cube",
	}
	for in, want := range tests {
		require.Equal(t, want, slugify(in), in)
	}
}
