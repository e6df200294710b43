package gitref

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/Infineon/mtb-manifest-checker/pkg/logger"
	"github.com/Infineon/mtb-manifest-checker/pkg/uri"
)

// GoGitLister lists remote refs in-process with go-git, producing the same
// "<hash>\t<refname>" layout as git ls-remote.
type GoGitLister struct{}

func (GoGitLister) ListRemote(ctx context.Context, repo string) (string, error) {
	logger.Info(fmt.Sprintf("++ git ls-remote %s [go-git]", repo))
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{repo},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return "", &SubprocessError{Op: "ls-remote", Wrapped: err}
	}
	return formatListing(refs), nil
}

// formatListing renders refs like git ls-remote: HEAD first, then by name.
// Symbolic refs are resolved against the other advertised refs.
func formatListing(refs []*plumbing.Reference) string {
	byName := make(map[plumbing.ReferenceName]plumbing.Hash, len(refs))
	for _, ref := range refs {
		if ref.Type() == plumbing.HashReference {
			byName[ref.Name()] = ref.Hash()
		}
	}

	type row struct {
		name string
		hash plumbing.Hash
	}
	rows := make([]row, 0, len(refs))
	for _, ref := range refs {
		hash := ref.Hash()
		if ref.Type() == plumbing.SymbolicReference {
			target, ok := byName[ref.Target()]
			if !ok {
				continue
			}
			hash = target
		}
		rows = append(rows, row{name: ref.Name().String(), hash: hash})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].name == "HEAD" || rows[j].name == "HEAD" {
			return rows[i].name == "HEAD" && rows[j].name != "HEAD"
		}
		return rows[i].name < rows[j].name
	})

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(r.hash.String())
		b.WriteByte('\t')
		b.WriteString(r.name)
		b.WriteByte('\n')
	}
	return b.String()
}

// GoGitProber clones a bare mirror with go-git into a scratch directory and
// resolves the ref against it.
type GoGitProber struct {
	Scratch *Scratch
}

func (p *GoGitProber) ProbeMirror(ctx context.Context, repo uri.RepoURI, ref string) (bool, error) {
	dir, err := p.Scratch.Prepare(repo.RepoName)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := p.Scratch.Cleanup(dir); cerr != nil {
			logger.Warn("failed to remove scratch directory", logger.String("path", dir), logger.Err(cerr))
		}
	}()

	logger.Info(fmt.Sprintf("++ git clone --no-progress --mirror %s [go-git]", repo.String()))
	fs := osfs.New(filepath.Join(dir, repo.RepoName+".git"))
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	mirror, err := git.CloneContext(ctx, storage, nil, &git.CloneOptions{
		URL:    repo.String(),
		Mirror: true,
		Tags:   git.AllTags,
	})
	if err != nil {
		return false, &SubprocessError{Op: "clone", Wrapped: err}
	}

	logger.Info(fmt.Sprintf("++ git cat-file -t %s [go-git]", ref))
	if _, err := mirror.ResolveRevision(plumbing.Revision(ref)); err == nil {
		return true, nil
	}
	// cat-file also accepts non-commit objects (trees, blobs, annotated tags)
	if isFullHash(ref) {
		if _, err := mirror.Storer.EncodedObject(plumbing.AnyObject, plumbing.NewHash(ref)); err == nil {
			return true, nil
		}
	}
	return false, nil
}

func isFullHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
