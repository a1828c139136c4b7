package manager

import (
	"os"

	"github.com/YPSH-DGC/YPMS/internal/errs"
)

// ListSources returns the configured source name -> config URL mapping,
// for the "ypms sources list" CLI surface (spec.md §6).
func (m *Manager) ListSources() map[string]string { return m.sources.all() }

// ListEnvs enumerates environment IDs present under envs/, paired with
// their absolute directory path, for the "ypms envs" CLI surface.
// An environment that has never been materialized (EnsureEnvDir never
// called) simply does not appear.
func (m *Manager) ListEnvs() (map[string]string, error) {
	entries, err := os.ReadDir(m.cfg.EnvsDir)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindFilesystem, err, "reading environments directory %s", m.cfg.EnvsDir)
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		out[e.Name()] = m.cfg.EnvDir(e.Name())
	}
	return out, nil
}
