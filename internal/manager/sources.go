package manager

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/YPSH-DGC/YPMS/internal/config"
	"github.com/YPSH-DGC/YPMS/internal/errs"
)

// sourcesMap persists sources.json: a flat mapping of source name to its
// repo descriptor config URL, per spec.md §6.
type sourcesMap struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

func loadSourcesMap(path string) (*sourcesMap, error) {
	sm := &sourcesMap{path: path, data: map[string]string{}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		sm.data[config.DefaultSourceName] = config.DefaultSourceConfigURL
		if err := sm.save(); err != nil {
			return nil, err
		}
		return sm, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindFilesystem, err, "reading sources.json at %s", path)
	}
	if err := json.Unmarshal(raw, &sm.data); err != nil {
		return nil, errs.Wrap(errs.KindDecode, err, "parsing sources.json at %s", path)
	}
	return sm, nil
}

func (sm *sourcesMap) save() error {
	data, err := json.MarshalIndent(sm.data, "", "  ")
	if err != nil {
		return errs.Wrap(errs.KindDecode, err, "encoding sources.json")
	}

	dir := filepath.Dir(sm.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.KindFilesystem, err, "creating sources directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".sources-*.json.tmp")
	if err != nil {
		return errs.Wrap(errs.KindFilesystem, err, "creating temp sources file")
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errs.Wrap(errs.KindFilesystem, err, "writing temp sources file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errs.Wrap(errs.KindFilesystem, err, "closing temp sources file")
	}
	if err := os.Rename(tmpPath, sm.path); err != nil {
		os.Remove(tmpPath)
		return errs.Wrap(errs.KindFilesystem, err, "renaming temp sources file into place")
	}
	return nil
}

func (sm *sourcesMap) has(name string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	_, ok := sm.data[name]
	return ok
}

func (sm *sourcesMap) get(name string) (string, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	url, ok := sm.data[name]
	return url, ok
}

func (sm *sourcesMap) set(name, url string) error {
	sm.mu.Lock()
	sm.data[name] = url
	sm.mu.Unlock()
	return sm.save()
}

func (sm *sourcesMap) remove(name string) error {
	sm.mu.Lock()
	delete(sm.data, name)
	sm.mu.Unlock()
	return sm.save()
}

// all returns a snapshot copy of the name -> config URL mapping.
func (sm *sourcesMap) all() map[string]string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	out := make(map[string]string, len(sm.data))
	for name, url := range sm.data {
		out[name] = url
	}
	return out
}

func (sm *sourcesMap) names() []string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	out := make([]string, 0, len(sm.data))
	for name := range sm.data {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// defaultName selects the default source, per spec.md §4.5: prefer
// DefaultSourceName if present, else the lexicographically smallest
// configured name; error if empty.
func (sm *sourcesMap) defaultName() (string, error) {
	names := sm.names()
	if len(names) == 0 {
		return "", errs.New(errs.KindNotConfigured, "no sources are configured")
	}
	for _, n := range names {
		if n == config.DefaultSourceName {
			return n, nil
		}
	}
	return names[0], nil
}
