package manifest

import (
	"context"

	"github.com/Infineon/mtb-manifest-checker/pkg/assetcache"
	"github.com/Infineon/mtb-manifest-checker/pkg/gitref"
)

// RefResolver answers whether a ref exists in a repository.
type RefResolver interface {
	CheckRef(ctx context.Context, repo, ref string) (gitref.Resolution, error)
}

// ReachabilityChecker answers whether a URL can be fetched.
type ReachabilityChecker interface {
	CheckReachable(ctx context.Context, url string) bool
}

// Status is the outcome of one manifest run.
type Status string

const (
	StatusDone   Status = "done"
	StatusFailed Status = "failed"
)

// Record summarizes one processed manifest.
type Record struct {
	Type        Type   `json:"type" yaml:"type"`
	Input       string `json:"input" yaml:"input"`
	Output      string `json:"output" yaml:"output"`
	Entries     int    `json:"entries" yaml:"entries"`
	RefsChecked int    `json:"refs_checked" yaml:"refs_checked"`
	Status      Status `json:"status" yaml:"status"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Session is the state shared by every manifest validated in one run. It is
// not safe for concurrent use.
type Session struct {
	Assets *assetcache.Cache
	Refs   RefResolver
	Remote ReachabilityChecker

	// CachePath is the asset cache file named in lookup hints.
	CachePath string

	records []Record
}

// NewSession wires the caches and checkers used by the processors.
func NewSession(assets *assetcache.Cache, refs RefResolver, remote ReachabilityChecker) *Session {
	if assets == nil {
		assets = assetcache.New()
	}
	return &Session{
		Assets:    assets,
		Refs:      refs,
		Remote:    remote,
		CachePath: assetcache.DefaultPath,
	}
}

// Records returns one entry per Process call, in call order.
func (s *Session) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
