package gitref

import "fmt"

// Backend names accepted by NewStrategies.
const (
	BackendCLI   = "cli"
	BackendGoGit = "gogit"
)

// NewStrategies returns the lister/prober pair for backend. gitExe is only
// used by the cli backend.
func NewStrategies(backend, gitExe string, scratch *Scratch) (RemoteLister, MirrorProber, error) {
	switch backend {
	case "", BackendCLI:
		return &CLILister{Git: gitExe}, &CLIProber{Git: gitExe, Scratch: scratch}, nil
	case BackendGoGit:
		return GoGitLister{}, &GoGitProber{Scratch: scratch}, nil
	default:
		return nil, nil, fmt.Errorf("unknown git backend %q (expected %s or %s)", backend, BackendCLI, BackendGoGit)
	}
}
