package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Infineon/mtb-manifest-checker/pkg/config"
	"github.com/Infineon/mtb-manifest-checker/pkg/gitref"
	"github.com/Infineon/mtb-manifest-checker/pkg/remote"
	"github.com/Infineon/mtb-manifest-checker/pkg/uri"
)

type fakeLister struct {
	listings map[string]string
	calls    int
}

func (f *fakeLister) ListRemote(_ context.Context, repo string) (string, error) {
	f.calls++
	l, ok := f.listings[repo]
	if !ok {
		return "", &gitref.SubprocessError{Op: "ls-remote", Command: []string{"git", "ls-remote", repo}, Stderr: "not found"}
	}
	return l, nil
}

type fakeProber struct {
	objects map[string]bool // "<repo>@<ref>"
}

func (f *fakeProber) ProbeMirror(_ context.Context, repo uri.RepoURI, ref string) (bool, error) {
	return f.objects[repo.String()+"@"+ref], nil
}

// harness runs command trees in a temp working directory against fake git
// and HTTP backends.
type harness struct {
	dir     string
	lister  *fakeLister
	prober  *fakeProber
	fetcher *remote.MockHTTPFetcher
	backend string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		dir:     t.TempDir(),
		lister:  &fakeLister{listings: map[string]string{}},
		prober:  &fakeProber{objects: map[string]bool{}},
		fetcher: remote.NewMockHTTPFetcher(),
	}
	t.Chdir(h.dir)

	origStrategies, origFetcher := newStrategies, newFetcher
	newStrategies = func(backend, _ string, _ *gitref.Scratch) (gitref.RemoteLister, gitref.MirrorProber, error) {
		h.backend = backend
		return h.lister, h.prober, nil
	}
	newFetcher = func(*config.Config) remote.HTTPFetcher { return h.fetcher }
	t.Cleanup(func() {
		newStrategies, newFetcher = origStrategies, origFetcher
	})
	return h
}

func (h *harness) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return name
}

func (h *harness) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	require.NoError(t, err)
	return string(data)
}

// execute runs a fresh command tree and returns stdout, stderr and the exit code.
func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	root := newRootCommand()
	registerSubcommands(root)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	code := run(context.Background(), root, append([]string{"--log-level", "error"}, args...))
	return stdout.String(), stderr.String(), code
}

const boardsXML = `<boards>
  <board>
    <id>BSP1</id>
    <board_uri>https://example/org/bsp1</board_uri>
    <versions><version><commit>v1.0.0</commit></version></versions>
  </board>
</boards>
`

const bsp1Listing = "1111111111111111111111111111111111111111\tHEAD\n" +
	"2222222222222222222222222222222222222222\trefs/tags/v1.0.0\n"
