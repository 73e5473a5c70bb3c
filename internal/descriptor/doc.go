// Package descriptor defines the wire schemas of the distribution descriptor
// files and the parsers that turn raw text into validated records.
//
// Seven descriptor kinds are understood: the pipeline descriptor
// (pipeline_conf.json), the four docker-compose variants
// (docker-compose.override.yml, dev.yml, proxy.yml, local.yml), component
// cards (component.yml) and service configs (service.yml).
//
// Parsing runs in one of two modes. Strict mode rejects unknown keys and is
// used for round-trip fidelity of files this tool itself generates. Lenient
// mode permits extra vendor keys in externally-authored files. See [Mode].
//
// The pipeline descriptor's stage-group maps preserve key insertion order
// end to end ([Services]): insertion order is execution order in the
// rendered output, so an ordinary Go map would destroy it.
package descriptor
