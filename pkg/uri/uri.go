// Package uri decomposes the two URI shapes found in SDK manifests: plain git
// repository URIs and "raw file inside a git ref" URIs.
package uri

import (
	"fmt"
	"regexp"
	"strings"
)

// repoPattern matches <base>/<name>[.git], e.g.
// https://github.com/Infineon/mtb-example-btsdk-empty.git
var repoPattern = regexp.MustCompile(`^(.*)/([^./]+)(\.git)?$`)

// rawPattern matches <server>/<namespace>/<name>/raw/<ref>/<filename>, e.g.
// https://github.com/Infineon/mtb-mw-manifest/raw/v2.X/mtb-mw-manifest.xml
var rawPattern = regexp.MustCompile(`^((.*)/([^/]+)/([^/]+))/raw/([^/]+)/(.+)$`)

// ParseError reports a URI that does not have the expected shape.
type ParseError struct {
	Kind   string // "repository" or "raw"
	URI    string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unable to parse the Git %s URI %q: %s", e.Kind, e.URI, e.Reason)
	}
	return fmt.Sprintf("unable to parse the Git %s URI %q", e.Kind, e.URI)
}

// RepoURI is a git repository location split into base and repository name.
type RepoURI struct {
	BaseURI  string
	RepoName string
}

// String returns the canonical form without a .git suffix.
func (r RepoURI) String() string {
	return r.BaseURI + "/" + r.RepoName
}

// ParseRepoURI splits s into base URI and repository name. A trailing ".git"
// is stripped from the name.
func ParseRepoURI(s string) (RepoURI, error) {
	s = strings.TrimSpace(s)
	m := repoPattern.FindStringSubmatch(s)
	if m == nil {
		return RepoURI{}, &ParseError{Kind: "repository", URI: s}
	}
	return RepoURI{BaseURI: m[1], RepoName: m[2]}, nil
}

// RawURI is a URI pointing at a single file inside a git ref.
type RawURI struct {
	Repo      string // Server/Namespace/RepoName
	Server    string
	Namespace string
	RepoName  string
	Ref       string
	Filename  string
}

// ParseRawURI decomposes s into its repository, ref and filename parts.
// A filename containing a path separator still parses; use Validate to
// reject it.
func ParseRawURI(s string) (RawURI, error) {
	s = strings.TrimSpace(s)
	m := rawPattern.FindStringSubmatch(s)
	if m == nil {
		return RawURI{}, &ParseError{Kind: "raw", URI: s}
	}
	return RawURI{
		Repo:      m[1],
		Server:    m[2],
		Namespace: m[3],
		RepoName:  m[4],
		Ref:       m[5],
		Filename:  m[6],
	}, nil
}

// Validate rejects a filename segment containing "/", which means the ref
// itself contained a separator (e.g. a "release/v1" branch) and was split in
// the wrong place.
func (r RawURI) Validate() error {
	if strings.Contains(r.Filename, "/") {
		return &ParseError{
			Kind:   "raw",
			URI:    r.String(),
			Reason: fmt.Sprintf("invalid 'ref' detected (filename %q contains '/')", r.Filename),
		}
	}
	return nil
}

// String reassembles the raw URI.
func (r RawURI) String() string {
	return r.Repo + "/raw/" + r.Ref + "/" + r.Filename
}
