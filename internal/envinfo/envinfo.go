// Package envinfo captures host and version-control metadata for run logs.
// Every lookup is best-effort: a missing git binary or a non-repo working
// directory records null rather than failing the run.
package envinfo

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Info is a snapshot of the execution environment.
type Info struct {
	GoVersion string  `json:"go_version"`
	Platform  string  `json:"platform"`
	Hostname  string  `json:"hostname"`
	User      string  `json:"user"`
	GitHead   *string `json:"git_head"`
}

// Capture collects the environment snapshot for the current process.
func Capture() Info {
	hostname, _ := os.Hostname()
	return Info{
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Hostname:  hostname,
		User:      os.Getenv("USER"),
		GitHead:   gitHead(),
	}
}

// gitHead resolves the current HEAD commit, or nil when git is unavailable
// or the working directory is not a repository.
func gitHead() *string {
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return nil
	}
	head := strings.TrimSpace(string(out))
	if head == "" {
		return nil
	}
	return &head
}
