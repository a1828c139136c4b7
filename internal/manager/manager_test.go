package manager

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YPSH-DGC/YPMS/internal/config"
	"github.com/YPSH-DGC/YPMS/internal/depref"
)

// newTestManager starts an httptest server whose routes are produced by
// routesFn once the server's own URL is known (needed because release URL
// templates embedded in fixture package-info documents must be absolute).
func newTestManager(t *testing.T, routesFn func(baseURL string) map[string]string) *Manager {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		routes := routesFn(srv.URL)
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &config.Config{YpmsDir: t.TempDir(), EnvsDir: t.TempDir()}
	require.NoError(t, cfg.EnsureDirectories())

	m, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, m.sources.remove(config.DefaultSourceName))
	require.NoError(t, m.sources.set("test", srv.URL+"/ypms.json"))

	return m
}

func repoDescriptorJSON(baseURL string) string {
	return fmt.Sprintf(`{
  "ypms.repo.id": "test-repo",
  "ypms.repo.name": "Test Repo",
  "ypms.repo.desc": "fixture",
  "ypms.repo.url": %q,
  "ypms.repo.path.index": "/index.json",
  "ypms.repo.path.package": "/pkg/{USER_ID}/{PACKAGE_ID}.json"
}`, baseURL)
}

func packageInfoJSON(id, releaseURLTemplate, defaultTag string) string {
	return fmt.Sprintf(`{
  "package.id": %q,
  "package.release.url": %q,
  "package.release.default": %q,
  "package.release.list": ["v1"]
}`, id, releaseURLTemplate, defaultTag)
}

const noneStepGuide = `{"steps": [{"type": "none"}]}`

func releaseInfoJSON(installGuide, uninstallGuide, updateGuide, depends string) string {
	guides := "{"
	first := true
	add := func(name, body string) string {
		if body == "" {
			return ""
		}
		sep := ""
		if !first {
			sep = ","
		}
		first = false
		return sep + fmt.Sprintf("%q: %s", name, body)
	}
	guides += add("install", installGuide)
	guides += add("uninstall", uninstallGuide)
	guides += add("update", updateGuide)
	guides += "}"

	dependsField := "[]"
	if depends != "" {
		dependsField = depends
	}
	return fmt.Sprintf(`{"release.guides": %s, "release.depends": %s}`, guides, dependsField)
}

func TestInstallFreshPackageMarksLedgerExplicit(t *testing.T) {
	m := newTestManager(t, func(base string) map[string]string {
		return map[string]string{
			"/ypms.json":           repoDescriptorJSON(base),
			"/index.json":          `{"packages": ["alice/app"]}`,
			"/pkg/alice/app.json":  packageInfoJSON("alice/app", base+"/release/app/{RELEASE_ID}.json", "v1"),
			"/release/app/v1.json": releaseInfoJSON(noneStepGuide, noneStepGuide, "", ""),
		}
	})

	ref := depref.Ref{User: "alice", Package: "app"}
	_, err := m.Install(context.Background(), ref, "", "", "test", true, true, false)
	require.NoError(t, err)

	require.True(t, m.ledger.IsInstalled(config.DefaultEnvID, "test", ref))
	rec, ok := m.ledger.Get(config.DefaultEnvID, "test", ref)
	require.True(t, ok)
	require.Equal(t, "v1", rec.Version)
	require.True(t, rec.Explicit)
}

func TestInstallWithDependencyInstallsBoth(t *testing.T) {
	m := newTestManager(t, func(base string) map[string]string {
		return map[string]string{
			"/ypms.json":           repoDescriptorJSON(base),
			"/index.json":          `{"packages": ["alice/app", "bob/lib"]}`,
			"/pkg/alice/app.json":  packageInfoJSON("alice/app", base+"/release/app/{RELEASE_ID}.json", "v1"),
			"/release/app/v1.json": releaseInfoJSON(noneStepGuide, noneStepGuide, "", `["bob/lib"]`),
			"/pkg/bob/lib.json":    packageInfoJSON("bob/lib", base+"/release/lib/{RELEASE_ID}.json", "v2"),
			"/release/lib/v2.json": releaseInfoJSON(noneStepGuide, noneStepGuide, "", ""),
		}
	})

	ref := depref.Ref{User: "alice", Package: "app"}
	_, err := m.Install(context.Background(), ref, "", "", "test", true, true, false)
	require.NoError(t, err)

	require.True(t, m.ledger.IsInstalled(config.DefaultEnvID, "test", ref))
	require.True(t, m.ledger.IsInstalled(config.DefaultEnvID, "test", depref.Ref{User: "bob", Package: "lib"}))

	depRec, ok := m.ledger.Get(config.DefaultEnvID, "test", depref.Ref{User: "bob", Package: "lib"})
	require.True(t, ok)
	require.False(t, depRec.Explicit)
}

func TestRunUninstallNoOpWhenNotInstalled(t *testing.T) {
	m := newTestManager(t, func(base string) map[string]string {
		return map[string]string{
			"/ypms.json":  repoDescriptorJSON(base),
			"/index.json": `{"packages": []}`,
		}
	})

	err := m.Run(context.Background(), depref.Ref{User: "alice", Package: "app"}, "uninstall", "", "", "test", false, true)
	require.NoError(t, err)
}

func TestRunUninstallBlocksOnDependentsUnlessForced(t *testing.T) {
	m := newTestManager(t, func(base string) map[string]string {
		return map[string]string{
			"/ypms.json":           repoDescriptorJSON(base),
			"/index.json":          `{"packages": ["alice/app", "bob/lib"]}`,
			"/pkg/alice/app.json":  packageInfoJSON("alice/app", base+"/release/app/{RELEASE_ID}.json", "v1"),
			"/release/app/v1.json": releaseInfoJSON(noneStepGuide, noneStepGuide, "", `["bob/lib"]`),
			"/pkg/bob/lib.json":    packageInfoJSON("bob/lib", base+"/release/lib/{RELEASE_ID}.json", "v2"),
			"/release/lib/v2.json": releaseInfoJSON(noneStepGuide, noneStepGuide, "", ""),
		}
	})

	ref := depref.Ref{User: "alice", Package: "app"}
	_, err := m.Install(context.Background(), ref, "", "", "test", true, true, false)
	require.NoError(t, err)

	libRef := depref.Ref{User: "bob", Package: "lib"}
	err = m.Run(context.Background(), libRef, "uninstall", "", "", "test", false, true)
	require.Error(t, err)

	require.True(t, m.ledger.IsInstalled(config.DefaultEnvID, "test", libRef))

	err = m.Run(context.Background(), libRef, "uninstall", "", "", "test", true, true)
	require.NoError(t, err)
	require.False(t, m.ledger.IsInstalled(config.DefaultEnvID, "test", libRef))
}

func TestRunUnknownGuideNameReportsNotDefined(t *testing.T) {
	m := newTestManager(t, func(base string) map[string]string {
		return map[string]string{
			"/ypms.json":           repoDescriptorJSON(base),
			"/index.json":          `{"packages": ["alice/app"]}`,
			"/pkg/alice/app.json":  packageInfoJSON("alice/app", base+"/release/app/{RELEASE_ID}.json", "v1"),
			"/release/app/v1.json": releaseInfoJSON(noneStepGuide, noneStepGuide, "", ""),
		}
	})

	ref := depref.Ref{User: "alice", Package: "app"}
	err := m.Run(context.Background(), ref, "configure", "", "", "test", false, true)
	require.Error(t, err)
	require.True(t, isGuideNotDefined(err))
}

func TestUpgradeSkipsPackagesWithoutUpdateGuide(t *testing.T) {
	m := newTestManager(t, func(base string) map[string]string {
		return map[string]string{
			"/ypms.json":           repoDescriptorJSON(base),
			"/index.json":          `{"packages": ["alice/app"]}`,
			"/pkg/alice/app.json":  packageInfoJSON("alice/app", base+"/release/app/{RELEASE_ID}.json", "v1"),
			"/release/app/v1.json": releaseInfoJSON(noneStepGuide, noneStepGuide, "", ""),
		}
	})

	ref := depref.Ref{User: "alice", Package: "app"}
	_, err := m.Install(context.Background(), ref, "", "", "test", true, true, false)
	require.NoError(t, err)

	failures, err := m.Upgrade(context.Background(), "", false)
	require.NoError(t, err)
	require.Empty(t, failures)
}

func TestAutoremoveSkipsExplicitPackages(t *testing.T) {
	m := newTestManager(t, func(base string) map[string]string {
		return map[string]string{
			"/ypms.json":           repoDescriptorJSON(base),
			"/index.json":          `{"packages": ["alice/app"]}`,
			"/pkg/alice/app.json":  packageInfoJSON("alice/app", base+"/release/app/{RELEASE_ID}.json", "v1"),
			"/release/app/v1.json": releaseInfoJSON(noneStepGuide, noneStepGuide, "", ""),
		}
	})

	ref := depref.Ref{User: "alice", Package: "app"}
	_, err := m.Install(context.Background(), ref, "", "", "test", true, true, false)
	require.NoError(t, err)

	failures, err := m.Autoremove(context.Background(), "", false)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.True(t, m.ledger.IsInstalled(config.DefaultEnvID, "test", ref))
}

func TestPackageInfoAnnotatedAddsSourceAndRef(t *testing.T) {
	m := newTestManager(t, func(base string) map[string]string {
		return map[string]string{
			"/ypms.json":          repoDescriptorJSON(base),
			"/pkg/alice/app.json": packageInfoJSON("alice/app", base+"/release/app/{RELEASE_ID}.json", "v1"),
		}
	})

	info, err := m.PackageInfoAnnotated(context.Background(), depref.Ref{User: "alice", Package: "app"}, "test")
	require.NoError(t, err)
	require.Equal(t, "test", info.Get("_source").String())
	require.Equal(t, "alice/app", info.Get("_package_ref").String())
}
