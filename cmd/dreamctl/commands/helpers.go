package commands

import (
	"github.com/thoreinstein/dreamctl/internal/descriptor"
	"github.com/thoreinstein/dreamctl/internal/dist"
	"github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/internal/paths"
	"github.com/thoreinstein/dreamctl/pkg/fileutil"
)

// resolveRoot picks the dream repository root: the --root flag wins, then
// the configured dream_root, then upward discovery from the working
// directory.
func resolveRoot() (string, error) {
	start := rootFlag
	if start == "" && cfg != nil && cfg.DreamRoot != "" {
		start = cfg.DreamRoot
	}

	root, err := paths.FindDreamRoot(start)
	if err != nil {
		return "", errors.NewUserError(err,
			"Run dreamctl inside a dream repository or pass --root")
	}
	return root, nil
}

// parseMode returns the configured descriptor parse mode.
func parseMode() descriptor.Mode {
	if cfg == nil {
		return descriptor.ModeStrict
	}
	return cfg.Mode()
}

// loadDist loads one distribution from the resolved dream root.
func loadDist(name string) (*dist.Dist, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}

	d, err := dist.FromName(name, root, fileutil.NewOSStore(), parseMode())
	if err != nil {
		var notFound *errors.DistributionNotFoundError
		if errors.As(err, &notFound) {
			return nil, errors.NewUserError(err,
				"Run 'dreamctl dist list' to see available distributions")
		}
		return nil, err
	}
	return d, nil
}

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
