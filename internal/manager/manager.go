// Package manager implements the manager façade of spec.md §4.5: the
// top-level operations (list, info, install, run, refresh, upgrade,
// autoremove) wired against the source resolver, guide engine, installed
// ledger, and planner.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/YPSH-DGC/YPMS/internal/config"
	"github.com/YPSH-DGC/YPMS/internal/errs"
	"github.com/YPSH-DGC/YPMS/internal/guide"
	"github.com/YPSH-DGC/YPMS/internal/httpcache"
	"github.com/YPSH-DGC/YPMS/internal/ledger"
	"github.com/YPSH-DGC/YPMS/internal/log"
	"github.com/YPSH-DGC/YPMS/internal/source"
)

var errGuideNotDefined = errors.New("guide not defined")

// Confirmer presents an install/uninstall plan to the operator and returns
// whether to proceed. AssumeYes callers never invoke it.
type Confirmer interface {
	Confirm(prompt string) bool
}

// autoConfirm always proceeds; used when assume_yes is set or no
// interactive Confirmer was wired.
type autoConfirm struct{}

func (autoConfirm) Confirm(string) bool { return true }

// Manager owns the sources map, the source resolver cache, and the ledger
// for the life of a command, per spec.md §4.3 (Ownership/lifecycle).
type Manager struct {
	cfg     *config.Config
	cache   *httpcache.Cache
	sources *sourcesMap
	ledger  *ledger.Ledger
	engine  *guide.Engine
	logger  log.Logger
	confirm Confirmer

	resolvers map[string]*source.Source
}

// New initializes the manager against cfg, creating directories and
// seeding sources.json/installed.json if absent, per spec.md §4.5.
func New(cfg *config.Config) (*Manager, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, errs.Wrap(errs.KindFilesystem, err, "initializing ypms directories")
	}

	cache := httpcache.New(cfg.CacheDir())

	sm, err := loadSourcesMap(cfg.SourcesPath())
	if err != nil {
		return nil, err
	}

	led, err := ledger.Load(cfg.InstalledPath())
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:       cfg,
		cache:     cache,
		sources:   sm,
		ledger:    led,
		engine:    guide.NewEngine(cache),
		logger:    log.Default(),
		confirm:   autoConfirm{},
		resolvers: map[string]*source.Source{},
	}, nil
}

// SetConfirmer installs an interactive confirmation hook for install/update
// plans. Without one, the manager behaves as though assume_yes were always
// set.
func (m *Manager) SetConfirmer(c Confirmer) { m.confirm = c }

func (m *Manager) resolverFor(ctx context.Context, name string, forceRefresh bool) (*source.Source, error) {
	if forceRefresh {
		delete(m.resolvers, name)
	}
	if src, ok := m.resolvers[name]; ok {
		return src, nil
	}

	url, ok := m.sources.get(name)
	if !ok {
		return nil, errs.New(errs.KindNotConfigured, "unknown source %q", name)
	}

	src, err := source.New(ctx, name, url, m.cache, forceRefresh)
	if err != nil {
		return nil, err
	}
	m.resolvers[name] = src
	return src, nil
}

// resolveSourceName implements spec.md §4.5's default-source selection:
// an explicit name wins, then the ref's own source qualifier, then the
// configured default.
func (m *Manager) resolveSourceName(refSource, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if refSource != "" {
		return refSource, nil
	}
	return m.sources.defaultName()
}

func guideNotDefinedErr(guideName, packageRef string) error {
	return errs.Wrap(errs.KindDecode, errGuideNotDefined, "guide %q not defined for %s", guideName, packageRef)
}

func isGuideNotDefined(err error) bool {
	return errors.Is(err, errGuideNotDefined)
}

func fmtRef(source, packageRef, version string) string {
	return fmt.Sprintf("%s:%s@%s", source, packageRef, version)
}
