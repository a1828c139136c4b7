package guide

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/YPSH-DGC/YPMS/internal/depref"
	"github.com/YPSH-DGC/YPMS/internal/httpcache"
)

type fakeEffects struct {
	installed  map[string]bool
	installs   []depref.Ref
	uninstalls []depref.Ref
	sources    map[string]string
	uninstallErr error
}

func newFakeEffects() *fakeEffects {
	return &fakeEffects{installed: map[string]bool{}, sources: map[string]string{}}
}

func (f *fakeEffects) IsInstalled(envID string, ref depref.Ref) bool {
	return f.installed[ref.PackageRef()]
}

func (f *fakeEffects) InstallPackage(ctx context.Context, ref depref.Ref, envID string, explicit bool) error {
	f.installs = append(f.installs, ref)
	f.installed[ref.PackageRef()] = true
	return nil
}

func (f *fakeEffects) UninstallPackage(ctx context.Context, ref depref.Ref, envID string, force bool) error {
	if f.uninstallErr != nil {
		return f.uninstallErr
	}
	f.uninstalls = append(f.uninstalls, ref)
	return nil
}

func (f *fakeEffects) HasSource(name string) bool {
	_, ok := f.sources[name]
	return ok
}

func (f *fakeEffects) AddSource(name, url string) error {
	f.sources[name] = url
	return nil
}

func (f *fakeEffects) RemoveSource(name string) error {
	delete(f.sources, name)
	return nil
}

func testContext(envDir string) Context {
	return Context{
		EnvDir:     envDir,
		OS:         "linux",
		Arch:       "x86_64",
		PackageRef: "alice/tool",
		SourceName: "yopr",
		ReleaseID:  "v1",
	}
}

func TestParseGuideSingleStep(t *testing.T) {
	doc := gjson.Parse(`{"type":"none"}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)
	require.Len(t, g.Steps, 1)
	assert.Equal(t, TypeNone, g.Steps[0].Type)
}

func TestParseGuideStepsContainer(t *testing.T) {
	doc := gjson.Parse(`{"steps":[{"type":"none"},{"type":"shell","content":"echo hi"}]}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)
	require.Len(t, g.Steps, 2)
}

func TestExecuteNoStepMatchesPlatform(t *testing.T) {
	doc := gjson.Parse(`{"when":{"os":["windows"]},"type":"none"}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	e := NewEngine(httpcache.New(t.TempDir()))
	_, err = e.Execute(context.Background(), g, testContext(t.TempDir()), newFakeEffects(), "default", false)
	require.Error(t, err)
}

func TestExecutePlatformGatingPicksMatchingStep(t *testing.T) {
	doc := gjson.Parse(`{"steps":[
		{"when":{"os":["darwin"]},"type":"shell","content":"echo mac"},
		{"when":{"os":["linux"]},"type":"shell","content":"echo nix > {YPMS_ENV_DIR}/marker"}
	]}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	dir := t.TempDir()
	e := NewEngine(httpcache.New(t.TempDir()))
	_, err = e.Execute(context.Background(), g, testContext(dir), newFakeEffects(), "default", false)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "marker"))
	require.NoError(t, err)
	assert.Equal(t, "nix", strings.TrimSpace(string(data)))
}

func TestExecuteRemoveFileMissingOK(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "gone.txt")

	doc := gjson.Parse(`{"type":"remove-file","content":{"path":"` + target + `"}}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	e := NewEngine(httpcache.New(t.TempDir()))
	result, err := e.Execute(context.Background(), g, testContext(dir), newFakeEffects(), "default", false)
	require.NoError(t, err)
	assert.Equal(t, "removed=0", result)
}

func TestExecuteRemoveFileMissingNotOK(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "gone.txt")

	doc := gjson.Parse(`{"type":"remove-file","content":{"path":"` + target + `","missing_ok":false}}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	e := NewEngine(httpcache.New(t.TempDir()))
	_, err = e.Execute(context.Background(), g, testContext(dir), newFakeEffects(), "default", false)
	require.Error(t, err)
}

func TestExecuteShellCheckFailureAborts(t *testing.T) {
	doc := gjson.Parse(`{"type":"shell","content":{"cmd":"exit 3","check":true}}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	e := NewEngine(httpcache.New(t.TempDir()))
	_, err = e.Execute(context.Background(), g, testContext(t.TempDir()), newFakeEffects(), "default", false)
	require.Error(t, err)
}

func TestExecuteShellNoCheckReturnsExitCode(t *testing.T) {
	doc := gjson.Parse(`{"type":"shell","content":{"cmd":"exit 3","check":false}}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	e := NewEngine(httpcache.New(t.TempDir()))
	result, err := e.Execute(context.Background(), g, testContext(t.TempDir()), newFakeEffects(), "default", false)
	require.NoError(t, err)
	assert.Equal(t, "3", result)
}

func TestExecuteInstallPackageSkipsAlreadyInstalled(t *testing.T) {
	doc := gjson.Parse(`{"type":"install-package","content":"alice/dep"}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	effects := newFakeEffects()
	effects.installed["alice/dep"] = true

	e := NewEngine(httpcache.New(t.TempDir()))
	_, err = e.Execute(context.Background(), g, testContext(t.TempDir()), effects, "default", false)
	require.NoError(t, err)
	assert.Empty(t, effects.installs)
}

func TestExecuteInstallPackageRecursesForMissing(t *testing.T) {
	doc := gjson.Parse(`{"type":"install-package","content":["alice/dep@v2"]}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	effects := newFakeEffects()
	e := NewEngine(httpcache.New(t.TempDir()))
	_, err = e.Execute(context.Background(), g, testContext(t.TempDir()), effects, "default", false)
	require.NoError(t, err)
	require.Len(t, effects.installs, 1)
	assert.Equal(t, "alice/dep", effects.installs[0].PackageRef())
	assert.Equal(t, "v2", effects.installs[0].Version)
}

func TestExecuteAddRepoSkipsExisting(t *testing.T) {
	doc := gjson.Parse(`{"type":"add-repo","content":{"name":"yopr","url":"https://example.test"}}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	effects := newFakeEffects()
	effects.sources["yopr"] = "https://already.test"

	e := NewEngine(httpcache.New(t.TempDir()))
	_, err = e.Execute(context.Background(), g, testContext(t.TempDir()), effects, "default", false)
	require.NoError(t, err)
	assert.Equal(t, "https://already.test", effects.sources["yopr"])
}

func TestExecuteAddRepoStringForm(t *testing.T) {
	doc := gjson.Parse(`{"type":"add-repo","content":"extra https://extra.test"}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	effects := newFakeEffects()
	e := NewEngine(httpcache.New(t.TempDir()))
	_, err = e.Execute(context.Background(), g, testContext(t.TempDir()), effects, "default", false)
	require.NoError(t, err)
	assert.Equal(t, "https://extra.test", effects.sources["extra"])
}

func TestExecuteRemoveRepoSkipsAbsent(t *testing.T) {
	doc := gjson.Parse(`{"type":"remove-repo","content":"nope"}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	effects := newFakeEffects()
	e := NewEngine(httpcache.New(t.TempDir()))
	_, err = e.Execute(context.Background(), g, testContext(t.TempDir()), effects, "default", false)
	require.NoError(t, err)
}

func TestExecutePythonStepIsRejected(t *testing.T) {
	doc := gjson.Parse(`{"type":"python","content":"print(1)"}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	e := NewEngine(httpcache.New(t.TempDir()))
	_, err = e.Execute(context.Background(), g, testContext(t.TempDir()), newFakeEffects(), "default", false)
	require.Error(t, err)
}

type fakePrompter struct{ answer string }

func (f fakePrompter) Confirm(url string) (string, error) { return f.answer, nil }

func TestExecuteLicenseAgreementAcceptance(t *testing.T) {
	doc := gjson.Parse(`{"type":"license-agreement-url","content":"https://license.test"}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	e := NewEngine(httpcache.New(t.TempDir()))
	e.Prompt = fakePrompter{answer: "a"}
	_, err = e.Execute(context.Background(), g, testContext(t.TempDir()), newFakeEffects(), "default", false)
	require.NoError(t, err)
}

func TestExecuteLicenseAgreementRejection(t *testing.T) {
	doc := gjson.Parse(`{"type":"license-agreement-url","content":"https://license.test"}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	e := NewEngine(httpcache.New(t.TempDir()))
	e.Prompt = fakePrompter{answer: "n"}
	_, err = e.Execute(context.Background(), g, testContext(t.TempDir()), newFakeEffects(), "default", false)
	require.Error(t, err)
}

func TestScanAddRepoNames(t *testing.T) {
	doc := gjson.Parse(`{"steps":[
		{"type":"add-repo","content":{"name":"one","url":"https://one.test"}},
		{"type":"shell","content":"echo hi"},
		{"type":"add-repo","content":"two https://two.test"}
	]}`)
	g, err := ParseGuide(doc)
	require.NoError(t, err)

	names := ScanAddRepoNames(g)
	assert.ElementsMatch(t, []string{"one", "two"}, names)
}
