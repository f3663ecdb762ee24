package helpers

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// getenv is replaced in tests.
var getenv = os.Getenv

// isRunningInCI checks if we're running in a CI/CD environment
func isRunningInCI() bool {
	// Check standard CI environment variable
	if getenv("CI") != "" {
		return true
	}

	// Check for common CI/CD environment variables
	ciVars := []string{
		"JENKINS_HOME",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"CIRCLECI",
		"TRAVIS",
		"BUILDKITE",
		"DRONE",
		"TF_BUILD",               // Azure DevOps
		"APPVEYOR",               // AppVeyor
		"BAMBOO_BUILD",           // Atlassian Bamboo
		"BITBUCKET_COMMIT",       // Bitbucket Pipelines
		"CODEBUILD_BUILD_ID",     // AWS CodeBuild
		"TEAMCITY_VERSION",       // TeamCity
		"CONTINUOUS_INTEGRATION", // Generic CI flag
	}

	for _, v := range ciVars {
		if getenv(v) != "" {
			return true
		}
	}
	return false
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ShouldUseColor determines if colored output should be used on w
func ShouldUseColor(w io.Writer) bool {
	// Check NO_COLOR environment variable
	if getenv("NO_COLOR") != "" {
		return false
	}

	// Check if the output is a terminal
	if !IsTerminal(w) {
		return false
	}

	// Check if running in CI (most CI environments don't handle colors well)
	if isRunningInCI() {
		return false
	}

	// Check TERM environment variable
	term := getenv("TERM")
	if term == "dumb" || term == "" {
		return false
	}

	return true
}
