package dist

import (
	"path"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	dreamerrors "github.com/thoreinstein/dreamctl/internal/errors"
	"github.com/thoreinstein/dreamctl/internal/render"
)

// SaveOptions controls Save behavior.
type SaveOptions struct {
	// Overwrite permits writing into an existing distribution directory.
	Overwrite bool

	// WriteServiceConfigs also regenerates service.yml and environment.yml
	// for every service loaded from a config directory.
	WriteServiceConfigs bool
}

// stagedFile is one fully rendered output awaiting its write.
type stagedFile struct {
	path string
	data []byte
}

// Save renders every enabled descriptor and writes the results atomically.
// All rendering happens before the first write, so a render failure leaves
// the directory untouched. Each file write is atomic on its own; when a
// write fails mid-sequence the error lists the files already written.
func (d *Dist) Save(opts SaveOptions) error {
	if !opts.Overwrite && d.store.Exists(d.FilePath(descriptor.KindPipeline)) {
		return &dreamerrors.AlreadyExistsError{Path: d.Path()}
	}

	staged, err := d.stage(opts)
	if err != nil {
		return err
	}

	var written []string
	for _, f := range staged {
		if err := d.store.Write(f.path, f.data); err != nil {
			return errors.Wrapf(err, "writing %s (already written: %v)", f.path, written)
		}
		written = append(written, f.path)
	}
	return nil
}

// stage renders every output file in memory.
func (d *Dist) stage(opts SaveOptions) ([]stagedFile, error) {
	var staged []stagedFile

	pipelineData, err := render.Pipeline(d.GeneratePipelineConf())
	if err != nil {
		return nil, err
	}
	staged = append(staged, stagedFile{d.FilePath(descriptor.KindPipeline), pipelineData})

	for _, kind := range d.EnabledKinds() {
		file, err := d.GenerateCompose(kind)
		if err != nil {
			return nil, err
		}
		data, err := render.Compose(file)
		if err != nil {
			return nil, err
		}
		staged = append(staged, stagedFile{d.FilePath(kind), data})
	}

	if opts.WriteServiceConfigs {
		for _, container := range d.order {
			entry := d.services[container]
			if entry.orphaned || entry.svc.ConfigDir == "" {
				continue
			}
			cfgData, err := render.ServiceConfig(entry.svc.Config())
			if err != nil {
				return nil, err
			}
			staged = append(staged, stagedFile{
				path.Join(entry.svc.ConfigDir, descriptor.ServiceConfigFileName),
				cfgData,
			})

			if len(entry.svc.Environment) > 0 {
				envData, err := render.Environment(entry.svc.Environment)
				if err != nil {
					return nil, err
				}
				staged = append(staged, stagedFile{
					path.Join(entry.svc.ConfigDir, descriptor.EnvironmentFileName),
					envData,
				})
			}
		}
	}

	return staged, nil
}
