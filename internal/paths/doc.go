// Package paths resolves the filesystem locations dreamctl works with: the
// dream repository root that holds assistant_dists, and the user-level
// directories (XDG config home) where the tool's own configuration lives.
package paths
