// Package gitref verifies that a branch, tag or commit exists in a remote git
// repository.
//
// # Strategies
//
// A Resolver first consults the remote reference listing (the equivalent of
// "git ls-remote <repo>"), which is fetched once per repository and cached as
// raw text. When the listing has no matching line, the Resolver falls back to
// cloning the repository as a bare mirror into a scratch directory and asking
// whether the ref names an object there. A hit in the mirror is appended to the
// cached listing as a synthetic "<ref>\t<ref>" line so later lookups of the same
// ref take the fast path.
//
// # Backends
//
// Both strategies are injected through small interfaces:
//
//   - RemoteLister: CLILister (git executable) or GoGitLister (go-git)
//   - MirrorProber: CLIProber (git executable) or GoGitProber (go-git + go-billy)
//
// Tests substitute fakes for either.
//
// # Failure semantics
//
// A failing git invocation is a SubprocessError. It is logged and treated as
// "not found" for that step only. CheckRef returns Found=false with a nil error
// when neither strategy locates the ref; a non-nil error is reserved for input
// that cannot be processed at all (an unparseable repository URI).
package gitref
