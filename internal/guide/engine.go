package guide

import (
	"context"

	"github.com/google/uuid"

	"github.com/YPSH-DGC/YPMS/internal/errs"
	"github.com/YPSH-DGC/YPMS/internal/httpcache"
	"github.com/YPSH-DGC/YPMS/internal/log"
)

// Engine executes guides against an environment directory, per spec.md
// §4.4. It holds no state between steps other than the accumulating
// last-result string returned from Execute.
type Engine struct {
	Cache  *httpcache.Cache
	Logger log.Logger
	Prompt Prompter
}

// NewEngine builds an Engine wired to cache for downloads and to the
// process's standard streams for interactive steps.
func NewEngine(cache *httpcache.Cache) *Engine {
	return &Engine{
		Cache:  cache,
		Logger: log.Default(),
		Prompt: NewStdioPrompter(),
	}
}

func (e *Engine) observer() httpcache.Observer {
	logger := e.Logger
	if logger == nil {
		logger = log.Default()
	}
	return httpcache.LoggingObserver{Logger: logger}
}

// Execute runs g's steps in declaration order against pkgCtx, skipping any
// step whose "when" does not match the host. It returns the last_result of
// the last step that actually ran. If no step's "when" matched, the call
// fails with a platform-match error and performs no side effects.
func (e *Engine) Execute(ctx context.Context, g Guide, pkgCtx Context, effects Effects, envID string, force bool) (string, error) {
	runID := uuid.NewString()
	logger := e.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("run_id", runID, "package", pkgCtx.PackageRef)

	vars := pkgCtx.Vars()
	matched := false
	lastResult := ""

	for i, step := range g.Steps {
		if !step.When.Matches(pkgCtx.OS, pkgCtx.Arch) {
			continue
		}
		matched = true

		if step.Type == TypeNone {
			continue
		}

		logger.Debug("executing guide step", "index", i, "type", step.Type)
		result, err := e.dispatch(ctx, step, vars, effects, envID, force)
		if err != nil {
			logger.Debug("guide step failed", "index", i, "type", step.Type, "error", err)
			return lastResult, err
		}
		lastResult = result
	}

	if !matched {
		return "", errs.New(errs.KindPlatformMatch, "no guide step matched current platform/arch")
	}
	return lastResult, nil
}

func (e *Engine) dispatch(ctx context.Context, step Step, vars map[string]string, effects Effects, envID string, force bool) (string, error) {
	switch step.Type {
	case TypeDownloadFile, TypeDownloadOnly:
		return e.runDownload(ctx, step.Content, vars)
	case TypeRemoveFile:
		return e.runRemoveFile(step.Content, vars)
	case TypeShell:
		return e.runShell(ctx, step.Content, vars)
	case TypePython:
		return e.runPython()
	case TypeLicenseAgreeURL:
		return e.runLicenseAgreement(step.Content, vars)
	case TypeInstallPackage:
		return e.runInstallPackage(ctx, step.Content, effects, envID)
	case TypeUninstallPackage:
		return e.runUninstallPackage(ctx, step.Content, effects, envID, force)
	case TypeAddRepo:
		return e.runAddRepo(step.Content, effects)
	case TypeRemoveRepo:
		return e.runRemoveRepo(step.Content, effects)
	default:
		return "", errs.New(errs.KindValidation, "unknown guide step type %q", step.Type)
	}
}
