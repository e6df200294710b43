package gitref

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Infineon/mtb-manifest-checker/pkg/logger"
	"github.com/Infineon/mtb-manifest-checker/pkg/uri"
)

// RemoteLister returns the raw reference listing of a remote repository, one
// "<hash>\t<refname>" per line.
type RemoteLister interface {
	ListRemote(ctx context.Context, repo string) (string, error)
}

// MirrorProber clones repo as a bare mirror and reports whether ref names an
// object in it.
type MirrorProber interface {
	ProbeMirror(ctx context.Context, repo uri.RepoURI, ref string) (bool, error)
}

// RefKind classifies the listing line that satisfied a lookup.
type RefKind string

const (
	KindBranch RefKind = "branch"
	KindTag    RefKind = "tag"
	KindCommit RefKind = "commit"
	KindMirror RefKind = "mirror"
)

// Source tells where a positive answer came from.
type Source string

const (
	SourceListing Source = "listing"
	SourceCache   Source = "cache"
	SourceMirror  Source = "mirror"
)

// Resolution is the outcome of a reference lookup. Found=false is a normal
// negative answer, not an error.
type Resolution struct {
	Found  bool
	Line   string
	Kind   RefKind
	Source Source
}

// Stats reports how often the network was consulted.
type Stats struct {
	Listings     int // remote listing invocations
	CacheHits    int // lookups answered from a cached listing
	MirrorProbes int
	MirrorHits   int
}

// Resolver checks refs against remote repositories, caching one listing per
// repository for its lifetime. It is not safe for concurrent use.
type Resolver struct {
	lister   RemoteLister
	prober   MirrorProber
	listings map[string]string
	calls    map[string]int
	stats    Stats
}

// NewResolver creates a Resolver using the given strategies.
func NewResolver(lister RemoteLister, prober MirrorProber) *Resolver {
	return &Resolver{
		lister:   lister,
		prober:   prober,
		listings: make(map[string]string),
		calls:    make(map[string]int),
	}
}

// CheckRef reports whether ref exists as a branch, tag or commit in repo.
func (r *Resolver) CheckRef(ctx context.Context, repo, ref string) (Resolution, error) {
	repo = strings.TrimSpace(repo)
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Resolution{}, fmt.Errorf("empty git reference for %s", repo)
	}

	listing, cached := r.listings[repo]
	source := SourceCache
	if cached {
		r.stats.CacheHits++
		logger.Info(fmt.Sprintf("++ git ls-remote %s [cached]", repo))
	} else {
		source = SourceListing
		r.stats.Listings++
		r.calls[repo]++
		out, err := r.lister.ListRemote(ctx, repo)
		if err != nil {
			logger.Warn(fmt.Sprintf("cannot access '%s'", repo), logger.Err(err))
		} else {
			listing = out
			r.listings[repo] = out
		}
	}

	if line, kind := ScanListing(listing, ref); line != "" {
		logger.Info(line)
		return Resolution{Found: true, Line: line, Kind: kind, Source: source}, nil
	}

	return r.probeMirror(ctx, repo, ref)
}

func (r *Resolver) probeMirror(ctx context.Context, repo, ref string) (Resolution, error) {
	parsed, err := uri.ParseRepoURI(repo)
	if err != nil {
		return Resolution{}, err
	}

	r.stats.MirrorProbes++
	found, err := r.prober.ProbeMirror(ctx, parsed, ref)
	if err != nil {
		var serr *SubprocessError
		if errors.As(err, &serr) {
			logger.Warn(fmt.Sprintf("cannot find '%s' in bare repo", ref), logger.Err(err))
		} else {
			logger.Warn(fmt.Sprintf("bare mirror check failed for '%s'", repo), logger.Err(err))
		}
		return Resolution{}, nil
	}
	if !found {
		return Resolution{}, nil
	}

	r.stats.MirrorHits++
	line := ref + "\t" + ref
	r.listings[repo] = r.listings[repo] + line + "\n"
	logger.Info(fmt.Sprintf("found %s in the bare repo", ref))
	return Resolution{Found: true, Line: line, Kind: KindMirror, Source: SourceMirror}, nil
}

// Listing returns the cached listing for repo.
func (r *Resolver) Listing(repo string) (string, bool) {
	l, ok := r.listings[repo]
	return l, ok
}

// ListingCalls returns how many times the remote listing was requested for repo.
func (r *Resolver) ListingCalls(repo string) int {
	return r.calls[repo]
}

// Stats returns lookup statistics.
func (r *Resolver) Stats() Stats {
	return r.stats
}

// ScanListing finds the line in listing that names ref as a branch, a tag, a
// commit hash, or a synthetic mirror entry. When several lines qualify the last
// one wins.
func ScanListing(listing, ref string) (string, RefKind) {
	if listing == "" || ref == "" {
		return "", ""
	}
	q := regexp.QuoteMeta(ref)
	patterns := []struct {
		re   *regexp.Regexp
		kind RefKind
	}{
		{regexp.MustCompile(`^[0-9a-f]*\trefs/heads/` + q + `$`), KindBranch},
		{regexp.MustCompile(`^[0-9a-f]*\trefs/tags/` + q + `$`), KindTag},
		{regexp.MustCompile(`^[0-9a-f]*\t` + q + `$`), KindCommit},
		{regexp.MustCompile(`^` + q + `\t` + q + `$`), KindMirror},
	}

	var match string
	var kind RefKind
	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasSuffix(line, ref) {
			continue
		}
		for _, p := range patterns {
			if p.re.MatchString(line) {
				match, kind = line, p.kind
			}
		}
	}
	return match, kind
}
