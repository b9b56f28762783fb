// Package git implements driven.GitTransport by shelling out to the git
// executable, the same binary faculty already authenticate with.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
)

// Ensure ShellTransport implements the interface.
var _ driven.GitTransport = (*ShellTransport)(nil)

// ShellTransport runs git as a subprocess. SSH authentication rides on the
// user's normal agent and known_hosts setup unless an explicit key file is
// configured.
type ShellTransport struct {
	sshKeyFile string
}

// NewShellTransport creates a transport. sshKeyFile may be empty, in which
// case git's default SSH authentication applies.
func NewShellTransport(sshKeyFile string) *ShellTransport {
	return &ShellTransport{sshKeyFile: sshKeyFile}
}

// IsRepo reports whether path holds a non-bare git repository.
func (t *ShellTransport) IsRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

// HeadHash returns the HEAD commit hash of the repository at path.
func (t *ShellTransport) HeadHash(ctx context.Context, path string) (string, error) {
	if !t.IsRepo(path) {
		return "", fmt.Errorf("%s: %w", path, domain.ErrNotRepository)
	}

	cmd := exec.CommandContext(ctx, "git", "-C", path, "rev-parse", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse in %s: %w", path, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Clone creates a fresh local copy of url at path.
func (t *ShellTransport) Clone(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, "git", "clone", url, path)
	t.configureAuth(cmd)
	return t.runCommand(cmd, "clone")
}

// Pull updates the existing local copy at path from url. Pulling from the
// explicit URL rather than a configured remote keeps the local copy honest
// even if its origin was edited by hand.
func (t *ShellTransport) Pull(ctx context.Context, path, url string) error {
	cmd := exec.CommandContext(ctx, "git", "-C", path, "pull", url)
	t.configureAuth(cmd)
	return t.runCommand(cmd, "pull")
}

// configureAuth points git at the configured SSH key, if any. The path is
// shell-quoted to prevent injection via crafted filenames.
func (t *ShellTransport) configureAuth(cmd *exec.Cmd) {
	if t.sshKeyFile == "" {
		return
	}
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	sshCmd := fmt.Sprintf("ssh -i %s -o StrictHostKeyChecking=accept-new -F /dev/null", shellQuote(t.sshKeyFile))
	cmd.Env = append(cmd.Env, "GIT_SSH_COMMAND="+sshCmd)
}

// runCommand executes git and folds stderr into the error on failure.
func (t *ShellTransport) runCommand(cmd *exec.Cmd, op string) error {
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", op, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// shellQuote wraps s in single quotes, escaping any embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
