package backwards

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/JukeboxMC/JBackwards/internal/bedrocktest"
	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
	pversion "github.com/JukeboxMC/JBackwards/pkg/version"
)

func TestVersionCommand(t *testing.T) {
	app := App()

	// Verify version is set correctly
	assert.Equal(t, pversion.String(), app.Version, "App version should match version package")

	help, err := app.ToMarkdown()
	require.NoError(t, err, "Should be able to generate help text")
	assert.Contains(t, help, "verify")
	assert.Contains(t, help, "translate")

	flags := make(map[string]bool)
	for _, flag := range app.Flags {
		for _, name := range flag.Names() {
			if flags[name] {
				t.Errorf("Flag conflict detected: %s", name)
			}
			flags[name] = true
		}
	}
	for _, name := range []string{"verbosity", "v", "config", "c", "debug", "d"} {
		assert.True(t, flags[name], "flag %s should exist", name)
	}

	// -v is verbosity, -V is the version
	assert.Contains(t, help, "-V")
	assert.Contains(t, help, "--version")
}

// run runs the app against the bundled data of a test fixture.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	fx := bedrocktest.New(version.Default)
	for name, f := range fx.FS {
		p := filepath.Join(dir, "data", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, f.Data, 0644))
	}
	cfg := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("dataDir: "+filepath.Join(dir, "data")+"\n"), 0644))

	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"backwards", "--config", cfg}, args...))
	return out.String(), err
}

func TestVerify(t *testing.T) {
	out, err := run(t, "verify")
	require.NoError(t, err)
	for _, d := range version.Default.Supported() {
		assert.Contains(t, out, d.Version)
	}
	assert.Contains(t, out, "canonical")
	assert.Contains(t, out, "PLACEHOLDER")
}

func TestTranslateItem(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	d := version.Bedrock_1_20_10
	legacy := fx.LegacyItem(d, bedrocktest.DiamondSword)

	out, err := run(t, "translate", "item", "--target", d.Version, "316")
	require.NoError(t, err)
	assert.Equal(t, "316 minecraft:diamond_sword -> "+itoa(legacy)+" minecraft:diamond_sword\n", out)

	out, err = run(t, "translate", "item", "--target", d.Version, "--reverse", itoa(legacy))
	require.NoError(t, err)
	assert.Equal(t, itoa(legacy)+" minecraft:diamond_sword -> 316 minecraft:diamond_sword\n", out)
}

func TestTranslateMiss(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	d := version.Bedrock_1_20_40
	stone := fx.LegacyItem(d, bedrocktest.Stone)

	out, err := run(t, "translate", "item", "--target", d.Version, itoa(bedrocktest.NewItem))
	require.NoError(t, err)
	assert.Equal(t, itoa(bedrocktest.NewItem)+" minecraft:new_item -> "+itoa(stone)+" minecraft:stone (no mapping, placeholder)\n", out)
}

func TestTranslateBlock(t *testing.T) {
	fx := bedrocktest.New(version.Default)
	d := version.Bedrock_1_20_10
	stone := fx.LegacyBlock(d, bedrocktest.BlockStone)

	out, err := run(t, "translate", "block", "--target", d.Version, "--reverse", itoa(int32(stone)))
	require.NoError(t, err)
	assert.Equal(t, itoa(int32(stone))+" -> 1 minecraft:stone\n", out)

	out, err = run(t, "translate", "block", "--target", d.Version, "2")
	require.NoError(t, err)
	assert.Contains(t, out, "minecraft:chest map[facing_direction:2]")
}

func TestTranslateErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"canonical target": {"translate", "item", "--target", version.Default.Canonical().Version, "1"},
		"unknown target":   {"translate", "item", "--target", "1.2.3", "1"},
		"no id":            {"translate", "block", "--target", "1.20.10"},
		"invalid id":       {"translate", "block", "--target", "1.20.10", "stone"},
		"negative block":   {"translate", "block", "--target", "1.20.10", "-1"},
	} {
		_, err := run(t, args...)
		assert.Error(t, err, name)
	}
}

func TestConfigCommand(t *testing.T) {
	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "dataDir: data")
	assert.Contains(t, out, "compression: flate")
}

func itoa(i int32) string {
	return strconv.Itoa(int(i))
}
