package driver

// StageTiming records one pipeline stage's wall-clock duration and the
// artifact it produced, for the build manifest.
type StageTiming struct {
	Name       string `yaml:"name"`
	DurationMS int64  `yaml:"duration_ms"`
	Artifact   string `yaml:"artifact,omitempty"`
}

// Manifest is the YAML sidecar written alongside a compile's artifacts:
// stage timings, artifact paths, and the final exit status.
type Manifest struct {
	Input    string        `yaml:"input"`
	Stages   []StageTiming `yaml:"stages"`
	ExitCode int           `yaml:"exit_code"`
	Error    string        `yaml:"error,omitempty"`
}

func (m *Manifest) record(name string, durationMS int64, artifact string) {
	m.Stages = append(m.Stages, StageTiming{Name: name, DurationMS: durationMS, Artifact: artifact})
}
