package gitref

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Infineon/mtb-manifest-checker/pkg/logger"
	"github.com/Infineon/mtb-manifest-checker/pkg/uri"
)

// CLILister lists remote refs with "git ls-remote".
type CLILister struct {
	Git string // executable, defaults to "git"
}

func (l *CLILister) ListRemote(ctx context.Context, repo string) (string, error) {
	out, err := runGit(ctx, gitBinary(l.Git), "", "ls-remote", repo)
	if err != nil {
		err.Op = "ls-remote"
		return "", err
	}
	return string(out), nil
}

// CLIProber clones a bare mirror with the git executable and queries the
// object type of the ref with "git cat-file -t".
type CLIProber struct {
	Git     string
	Scratch *Scratch
}

func (p *CLIProber) ProbeMirror(ctx context.Context, repo uri.RepoURI, ref string) (bool, error) {
	dir, err := p.Scratch.Prepare(repo.RepoName)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := p.Scratch.Cleanup(dir); cerr != nil {
			logger.Warn("failed to remove scratch directory", logger.String("path", dir), logger.Err(cerr))
		}
	}()

	git := gitBinary(p.Git)
	mirror := repo.RepoName + ".git"
	if _, serr := runGit(ctx, git, dir, "clone", "--no-progress", "--mirror", repo.String(), mirror); serr != nil {
		serr.Op = "clone"
		return false, serr
	}

	out, serr := runGit(ctx, git, filepath.Join(dir, mirror), "cat-file", "-t", ref)
	if serr != nil {
		serr.Op = "cat-file"
		return false, serr
	}
	logger.Debug("bare mirror object type", logger.String("ref", ref), logger.String("type", strings.TrimSpace(string(out))))
	return true, nil
}

func gitBinary(git string) string {
	if git == "" {
		return "git"
	}
	return git
}

// runGit executes git with args in dir, echoing the command line. stderr is
// captured for the error rather than passed through.
func runGit(ctx context.Context, git, dir string, args ...string) ([]byte, *SubprocessError) {
	argv := append([]string{git}, args...)
	logger.Info("++ " + strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, git, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = fmt.Errorf("exit status %d", exitErr.ExitCode())
		}
		return nil, &SubprocessError{Command: argv, Stderr: stderr.String(), Wrapped: err}
	}
	return out, nil
}
