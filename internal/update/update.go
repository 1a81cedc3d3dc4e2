package update

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/go-version"

	"github.com/satishbabariya/querykit/internal/ui"
)

// latestKnown is the newest release this build is aware of. Release
// automation overrides it via -ldflags.
var latestKnown = "0.1.0"

// Status describes how the running version relates to the latest release.
type Status struct {
	Current  string
	Latest   string
	Outdated bool
}

// Check compares two version strings.
func Check(currentVersion, latestVersion string) (*Status, error) {
	current, err := version.NewVersion(currentVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid version format: %w", err)
	}
	latest, err := version.NewVersion(latestVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid latest version format: %w", err)
	}
	return &Status{
		Current:  current.String(),
		Latest:   latest.String(),
		Outdated: current.LessThan(latest),
	}, nil
}

// CheckForUpdates prints a notice when a newer release exists.
func CheckForUpdates(currentVersion string) error {
	status, err := Check(currentVersion, latestKnown)
	if err != nil {
		return err
	}
	if status.Outdated {
		ui.PrintWarning("A new version is available!")
		fmt.Printf("Current version: %s\n", status.Current)
		fmt.Printf("Latest version:  %s\n", status.Latest)
		fmt.Printf("\nUpdate with: go install github.com/satishbabariya/querykit/cmd/querykit@latest\n")
	}
	return nil
}

// DownloadURL returns the release asset URL for the current platform.
func DownloadURL(v string) string {
	return fmt.Sprintf("https://github.com/satishbabariya/querykit/releases/download/v%s/querykit-%s-%s",
		v, runtime.GOOS, runtime.GOARCH)
}
