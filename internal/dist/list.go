package dist

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
)

// List enumerates the distributions under a dream root: every directory in
// assistant_dists holding a pipeline descriptor, sorted by name.
func List(root string) ([]string, error) {
	distsDir := filepath.Join(root, DistsDirName)
	entries, err := os.ReadDir(distsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "listing %s", distsDir)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pipelinePath := filepath.Join(distsDir, entry.Name(), descriptor.PipelineFileName)
		if _, err := os.Stat(pipelinePath); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
