package gitref

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Infineon/mtb-manifest-checker/pkg/uri"
)

// createSourceRepo builds a repository with one commit on master, a
// lightweight tag v1.0.0 and a branch release-v1. Local transports shell out
// to git-upload-pack, so the test is skipped without a git executable.
func createSourceRepo(t *testing.T) (string, plumbing.Hash) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available, skipping integration test")
	}

	path := filepath.Join(t.TempDir(), "mtb-example-hello")
	repo, err := git.PlainInit(path, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(path, "README.md"), []byte("hello\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	hash, err := wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	_, err = repo.CreateTag("v1.0.0", hash, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference("refs/heads/release-v1", hash)))

	return path, hash
}

func TestGoGitLister_ListsLikeLsRemote(t *testing.T) {
	path, hash := createSourceRepo(t)

	listing, err := GoGitLister{}.ListRemote(context.Background(), path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(listing), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines, hash.String()+"\trefs/heads/master")
	assert.Contains(t, lines, hash.String()+"\trefs/heads/release-v1")
	assert.Contains(t, lines, hash.String()+"\trefs/tags/v1.0.0")
}

func TestGoGitLister_UnreachableRepo(t *testing.T) {
	_, err := GoGitLister{}.ListRemote(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	var serr *SubprocessError
	assert.ErrorAs(t, err, &serr)
}

func TestGoGitProber_FindsCommitInMirror(t *testing.T) {
	path, hash := createSourceRepo(t)
	repoURI, err := uri.ParseRepoURI(path)
	require.NoError(t, err)

	scratchRoot := filepath.Join(t.TempDir(), "tmp")
	p := &GoGitProber{Scratch: NewScratch(scratchRoot)}

	found, err := p.ProbeMirror(context.Background(), repoURI, hash.String())
	require.NoError(t, err)
	assert.True(t, found)

	found, err = p.ProbeMirror(context.Background(), repoURI, "v1.0.0")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = p.ProbeMirror(context.Background(), repoURI, strings.Repeat("0", 40))
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoDirExists(t, filepath.Join(scratchRoot, repoURI.RepoName), "scratch directory must be removed")
}

func TestResolver_GoGitBackendEndToEnd(t *testing.T) {
	path, hash := createSourceRepo(t)
	lister, prober, err := NewStrategies(BackendGoGit, "", NewScratch(filepath.Join(t.TempDir(), "tmp")))
	require.NoError(t, err)
	r := NewResolver(lister, prober)
	ctx := context.Background()

	res, err := r.CheckRef(ctx, path, "v1.0.0")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, KindTag, res.Kind)

	res, err = r.CheckRef(ctx, path, "release-v1")
	require.NoError(t, err)
	assert.Equal(t, KindBranch, res.Kind)

	// a bare hash never appears as its own line in ls-remote output, so it
	// goes through the mirror
	res, err = r.CheckRef(ctx, path, hash.String())
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, SourceMirror, res.Source)

	res, err = r.CheckRef(ctx, path, "v0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Found)

	assert.Equal(t, 1, r.ListingCalls(path))
}

func TestResolver_CLIBackendEndToEnd(t *testing.T) {
	path, hash := createSourceRepo(t)
	lister, prober, err := NewStrategies(BackendCLI, "git", NewScratch(filepath.Join(t.TempDir(), "tmp")))
	require.NoError(t, err)
	r := NewResolver(lister, prober)
	ctx := context.Background()

	res, err := r.CheckRef(ctx, path, "v1.0.0")
	require.NoError(t, err)
	assert.True(t, res.Found)

	res, err = r.CheckRef(ctx, path, hash.String())
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, SourceMirror, res.Source)

	res, err = r.CheckRef(ctx, path, "does-not-exist")
	require.NoError(t, err)
	assert.False(t, res.Found)
}
