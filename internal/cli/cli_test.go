package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/prism/internal/lab"
	"github.com/jmylchreest/prism/internal/mood"
)

type testEnv struct {
	configDir string
	cacheDir  string
	imageDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		configDir: filepath.Join(root, "config"),
		cacheDir:  filepath.Join(root, "cache"),
		imageDir:  filepath.Join(root, "walls"),
	}
	require.NoError(t, os.MkdirAll(env.imageDir, 0o755))
	return env
}

// writeImage writes a 100x100 PNG that is mostly grey with a band of accent.
func (e *testEnv) writeImage(t *testing.T, name string, accent color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := range 100 {
		for x := range 100 {
			c := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
			if x < 20 {
				c = accent
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(e.imageDir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", e.configDir, "--cache-dir", e.cacheDir}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := newTestEnv(t).run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "prism version "), out)
}

func TestGenerateCommand(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "generate", "--format", "hex", "#1E4D6B")
	require.NoError(t, err)
	assert.Contains(t, out, "anchor=#1e4d6b\n")
	assert.Contains(t, out, "bar_bg=rgba(30, 77, 107, 0.85)\n")
	assert.True(t, strings.HasPrefix(out, "bg=#"), "fixed roles come first")

	out, _, err = env.run(t, "generate", "--format", "json", "--mood", "pastel", "e07848")
	require.NoError(t, err)
	var p mood.Palette
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	require.NoError(t, p.Validate())

	out, _, err = env.run(t, "generate", "--no-colour", "--trace", "--audit", "#e07848")
	require.NoError(t, err)
	assert.Contains(t, out, "hero iterations")
	assert.Contains(t, out, "CONTRAST")
	assert.NotContains(t, out, "\033[")

	_, _, err = env.run(t, "generate", "not-a-colour")
	assert.Error(t, err)

	_, _, err = env.run(t, "generate", "--format", "yaml", "#e07848")
	assert.Error(t, err)
}

func TestSetCommandCachesAndWritesCurrentPalette(t *testing.T) {
	env := newTestEnv(t)
	img := env.writeImage(t, "sea.png", color.NRGBA{R: 30, G: 77, B: 107, A: 255})
	extra := filepath.Join(t.TempDir(), "out", "palette.json")

	_, errOut, err := env.run(t, "set", "--mood", "deep", "--output", extra, img)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Applied deep mood")
	assert.Contains(t, errOut, "(generated,")

	current, err := os.ReadFile(filepath.Join(env.cacheDir, "palette.json"))
	require.NoError(t, err)
	var p mood.Palette
	require.NoError(t, json.Unmarshal(current, &p))
	require.NoError(t, p.Validate())

	copied, err := os.ReadFile(extra)
	require.NoError(t, err)
	assert.JSONEq(t, string(current), string(copied))

	out, errOut, err := env.run(t, "set", "--mood", "deep", "--print", "--format", "hex", img)
	require.NoError(t, err)
	assert.Contains(t, errOut, "(cached,")
	assert.Contains(t, out, "anchor="+p.Get(mood.RoleAnchor))

	_, errOut, err = env.run(t, "--quiet", "set", img)
	require.NoError(t, err)
	assert.NotContains(t, errOut, "Applied")
}

func TestSetCommandDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.writeImage(t, "only.png", color.NRGBA{R: 200, G: 40, B: 40, A: 255})

	_, errOut, err := env.run(t, "set", env.imageDir)
	require.NoError(t, err)
	assert.Contains(t, errOut, "only.png")
}

func TestExtractCommand(t *testing.T) {
	env := newTestEnv(t)
	grey := env.writeImage(t, "fog.png", color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	out, _, err := env.run(t, "extract", "--format", "hex", grey)
	require.NoError(t, err)
	assert.Equal(t, "#808080\n", out)

	out, _, err = env.run(t, "extract", "--format", "hex", "--mood", "pastel", grey)
	require.NoError(t, err)
	assert.Equal(t, "#d4a5a5\n", out)

	broken := filepath.Join(env.imageDir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("nope"), 0o644))
	out, _, err = env.run(t, "extract", "--format", "hex", broken)
	assert.Error(t, err)
	assert.Equal(t, "#000000\n", out)
}

func TestCompareCommand(t *testing.T) {
	env := newTestEnv(t)
	img := env.writeImage(t, "sunset.png", color.NRGBA{R: 224, G: 120, B: 72, A: 255})

	out, _, err := env.run(t, "compare", "--no-colour", img)
	require.NoError(t, err)
	for _, name := range mood.Names(mood.Builtin()) {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "contrast")
}

func TestPrecacheAndCacheCommands(t *testing.T) {
	env := newTestEnv(t)
	env.writeImage(t, "a.png", color.NRGBA{R: 30, G: 77, B: 107, A: 255})
	env.writeImage(t, "b.png", color.NRGBA{R: 224, G: 120, B: 72, A: 255})
	moods := len(mood.Builtin())

	_, _, err := env.run(t, "-w", "2", "precache", env.imageDir)
	require.NoError(t, err)

	out, _, err := env.run(t, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("%d palettes for 2 images", 2*moods))

	out, _, err = env.run(t, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.cacheDir, "palettes")+"\n", out)

	archive := filepath.Join(t.TempDir(), "palettes.tar.xz")
	_, errOut, err := env.run(t, "cache", "export", archive)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Exported")

	_, _, err = env.run(t, "cache", "purge")
	require.NoError(t, err)
	out, _, err = env.run(t, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0 palettes for 0 images")

	_, errOut, err = env.run(t, "cache", "import", archive)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Imported")
	out, _, err = env.run(t, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("%d palettes for 2 images", 2*moods))
}

func TestPrecacheCommandReportsFailures(t *testing.T) {
	env := newTestEnv(t)
	env.writeImage(t, "ok.png", color.NRGBA{R: 30, G: 77, B: 107, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(env.imageDir, "broken.png"), []byte("nope"), 0o644))

	out, _, err := env.run(t, "precache", "--format", "json", env.imageDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 images failed")

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Contains(t, items[0]["image"], "broken.png")
	assert.NotEmpty(t, items[0]["error"])
	assert.Nil(t, items[1]["error"])
}

func TestLabCommand(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "lab", "--only", "adaptive,deep", "--format", "json")
	require.NoError(t, err)
	var mx lab.Matrix
	require.NoError(t, json.Unmarshal([]byte(out), &mx))
	assert.Equal(t, []string{"adaptive", "deep"}, mx.Moods)
	assert.Len(t, mx.Cells, 2*len(lab.References()))

	out, _, err = env.run(t, "lab", "--no-colour")
	require.NoError(t, err)
	assert.Contains(t, out, "Storm Gray")
	assert.Contains(t, out, "pass,")

	_, _, err = env.run(t, "lab", "--only", "missing")
	assert.Error(t, err)
}

func TestMoodsCommandWithFile(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "moods.yaml"), []byte(`active_mood: dusk
moods:
  dusk:
    fallback_anchor: "#2e3a5c"
    hero:
      algo: anchor
`), 0o644))

	out, _, err := env.run(t, "moods")
	require.NoError(t, err)
	assert.Contains(t, out, "moods.yaml")
	assert.Contains(t, out, "dusk *")
	assert.Contains(t, out, "anchor")
	assert.NotContains(t, out, "pastel")

	out, _, err = env.run(t, "generate", "--format", "hex", "#e07848")
	require.NoError(t, err)
	assert.Contains(t, out, "ui_prim=#e07848\n", "the dusk hero is the anchor itself")
}

func TestVerboseAndQuietConflict(t *testing.T) {
	_, _, err := newTestEnv(t).run(t, "-v", "-q", "version")
	assert.Error(t, err)
}
