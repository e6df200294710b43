package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Infineon/mtb-manifest-checker/pkg/exitcode"
)

func TestValidateBoardSucceeds(t *testing.T) {
	h := newHarness(t)
	h.lister.listings["https://example/org/bsp1"] = bsp1Listing
	input := h.write(t, "manifests/boards.xml", boardsXML)

	stdout, stderr, code := execute(t, "board", input, "out/boards.xml")
	require.Equal(t, exitcode.Success, code, "stdout=%s stderr=%s", stdout, stderr)

	assert.Equal(t, "BSP1 https://example/org/bsp1\n", h.read(t, "out/asset_cache.txt"))
	assert.Contains(t, h.read(t, "out/boards.xml"), "<id>BSP1</id>")
	assert.NotContains(t, stdout, "FATAL ERROR")
	assert.Equal(t, "cli", h.backend)
}

func TestValidateDependencyUnknownDependee(t *testing.T) {
	h := newHarness(t)
	h.write(t, "out/asset_cache.txt", "app https://example/org/app\n")
	h.lister.listings["https://example/org/app"] = "aaaa\trefs/heads/master\n"
	input := h.write(t, "deps.xml", `<dependencies>
  <depender>
    <id>app</id>
    <versions>
      <version>
        <commit>master</commit>
        <dependees><dependee><id>ghost</id><commit>v1</commit></dependee></dependees>
      </version>
    </versions>
  </depender>
</dependencies>`)

	stdout, _, code := execute(t, "dependency", input, "out/deps.xml")
	assert.Equal(t, exitcode.ValidationFailure, code)
	assert.Contains(t, stdout, "FATAL ERROR: 'ghost' has not been processed yet; cannot determine its URL!\n")
	assert.Contains(t, stdout, "   ... perhaps seed the 'out/asset_cache.txt' file ...\n")
	assert.Contains(t, stdout, "FATAL ERROR: failed to process the dependency manifest deps.xml\n")

	// cache is flushed even on failure
	assert.Equal(t, "app https://example/org/app\n", h.read(t, "out/asset_cache.txt"))
}

func TestValidateSuperUnreachable(t *testing.T) {
	h := newHarness(t)
	raw := "https://example/org/mtb-bsp-manifest/raw/v2.X/mtb-bsp-manifest.xml"
	h.fetcher.AddResponse(raw, 404)
	input := h.write(t, "super.xml", `<super-manifest><board-manifest-list>
<board-manifest><uri>`+raw+`</uri></board-manifest>
</board-manifest-list></super-manifest>`)

	stdout, _, code := execute(t, "super", input, "out/super.xml")
	assert.Equal(t, exitcode.ValidationFailure, code)
	assert.Contains(t, stdout, "FATAL ERROR: cannot access: "+raw)
	assert.Zero(t, h.lister.calls)
}

func TestValidateAppMirrorFallback(t *testing.T) {
	h := newHarness(t)
	commit := "0123456789abcdef0123456789abcdef01234567"
	h.lister.listings["https://example/org/hello"] = "ffff\trefs/heads/master\n"
	h.prober.objects["https://example/org/hello@"+commit] = true
	input := h.write(t, "apps.xml", `<apps><app><id>hello</id><uri>https://example/org/hello</uri>
<versions><version><commit>`+commit+`</commit></version></versions></app></apps>`)

	_, _, code := execute(t, "--report", "out/report.yaml", "app", input, "out/apps.xml")
	require.Equal(t, exitcode.Success, code)

	var report sessionReport
	require.NoError(t, yaml.Unmarshal([]byte(h.read(t, "out/report.yaml")), &report))
	assert.Equal(t, 1, report.Git.MirrorProbes)
	assert.Equal(t, 1, report.Git.MirrorHits)
	require.Len(t, report.Manifests, 1)
	assert.EqualValues(t, "done", report.Manifests[0].Status)
}

func TestValidateUnknownType(t *testing.T) {
	newHarness(t)
	stdout, _, code := execute(t, "widget", "in.xml", "out/out.xml")
	assert.Equal(t, exitcode.ValidationFailure, code)
	assert.Equal(t, "FATAL ERROR: unknown manifest type: widget\n", stdout)
}

func TestValidateUsageErrors(t *testing.T) {
	newHarness(t)

	_, stderr, code := execute(t, "board", "only-input.xml")
	assert.Equal(t, exitcode.ConfigError, code)
	assert.Contains(t, stderr, "accepts 3 arg(s)")

	_, _, code = execute(t, "--no-such-flag", "board", "a", "b")
	assert.Equal(t, exitcode.ConfigError, code)
}

func TestValidateInvalidConfig(t *testing.T) {
	h := newHarness(t)
	h.write(t, ".validate-assets.yaml", "git:\n  backend: svn\n")
	input := h.write(t, "boards.xml", boardsXML)

	stdout, _, code := execute(t, "board", input, "out/boards.xml")
	assert.Equal(t, exitcode.ConfigError, code)
	assert.Contains(t, stdout, "configuration validation failed")
}

func TestValidateFlagsOverrideConfig(t *testing.T) {
	h := newHarness(t)
	h.write(t, ".validate-assets.yaml", "asset_cache: from-config.txt\n")
	h.lister.listings["https://example/org/bsp1"] = bsp1Listing
	input := h.write(t, "boards.xml", boardsXML)

	_, _, code := execute(t, "--asset-cache", "cache/assets.txt", "--git-backend", "gogit", "board", input, "out/boards.xml")
	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "gogit", h.backend)
	assert.True(t, strings.HasPrefix(h.read(t, "cache/assets.txt"), "BSP1 "))
}

func TestMarkdownReport(t *testing.T) {
	h := newHarness(t)
	h.lister.listings["https://example/org/bsp1"] = bsp1Listing
	input := h.write(t, "boards.xml", boardsXML)

	_, _, code := execute(t, "--report", "out/report.md", "board", input, "out/boards.xml")
	require.Equal(t, exitcode.Success, code)

	md := h.read(t, "out/report.md")
	assert.Contains(t, md, "# validate-assets session report")
	assert.Contains(t, md, "| board | `boards.xml` | `out/boards.xml` | 1 | 1 | done |")
	assert.Contains(t, md, "| git ls-remote | 1 | 0 |")
}

func TestInitializeLogger(t *testing.T) {
	for _, level := range []string{"info", "debug", "invalid"} {
		cmd := &cobra.Command{}
		cmd.Flags().String("log-level", level, "")
		cmd.Flags().Bool("json", false, "")
		cmd.Flags().Bool("no-color", true, "")
		assert.NoError(t, initializeLogger(cmd))
	}
}
