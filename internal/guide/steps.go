package guide

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/YPSH-DGC/YPMS/internal/depref"
	"github.com/YPSH-DGC/YPMS/internal/errs"
)

func (e *Engine) runDownload(ctx context.Context, content gjson.Result, vars map[string]string) (string, error) {
	url := Expand(content.Get("url").String(), vars)
	dest := Expand(content.Get("dest").String(), vars)
	if url == "" || dest == "" {
		return "", errs.New(errs.KindValidation, "download step content requires \"url\" and \"dest\"")
	}

	if err := e.Cache.DownloadFile(ctx, url, dest, e.observer()); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return dest, nil
	}
	return abs, nil
}

func (e *Engine) runRemoveFile(content gjson.Result, vars map[string]string) (string, error) {
	paths, missingOK, err := parseRemoveFileContent(content, vars)
	if err != nil {
		return "", err
	}

	removed := 0
	for _, path := range paths {
		if _, statErr := os.Lstat(path); statErr != nil {
			if os.IsNotExist(statErr) {
				if missingOK {
					continue
				}
				return "", errs.Wrap(errs.KindFilesystem, statErr, "path %q does not exist", path)
			}
			return "", errs.Wrap(errs.KindFilesystem, statErr, "stat %q", path)
		}
		if err := os.RemoveAll(path); err != nil {
			return "", errs.Wrap(errs.KindFilesystem, err, "remove %q", path)
		}
		removed++
	}
	return fmt.Sprintf("removed=%d", removed), nil
}

func parseRemoveFileContent(content gjson.Result, vars map[string]string) (paths []string, missingOK bool, err error) {
	missingOK = true

	switch {
	case content.Type == gjson.String:
		paths = []string{Expand(content.String(), vars)}
	case content.IsArray():
		for _, item := range content.Array() {
			paths = append(paths, Expand(item.String(), vars))
		}
	default:
		if p := content.Get("path"); p.Exists() {
			paths = []string{Expand(p.String(), vars)}
		} else if ps := content.Get("paths"); ps.Exists() {
			for _, item := range ps.Array() {
				paths = append(paths, Expand(item.String(), vars))
			}
		} else {
			return nil, false, errs.New(errs.KindValidation, "remove-file step content requires \"path\" or \"paths\"")
		}
		if mo := content.Get("missing_ok"); mo.Exists() {
			missingOK = mo.Bool()
		}
	}
	return paths, missingOK, nil
}

type shellInvocation struct {
	argv     []string
	useShell bool
}

func parseShellContent(content gjson.Result) (invocations []shellInvocation, cwd string, env map[string]string, check bool, err error) {
	check = true

	switch {
	case content.Type == gjson.String:
		return []shellInvocation{{argv: []string{content.String()}, useShell: true}}, "", nil, true, nil

	case content.IsArray():
		for _, item := range content.Array() {
			invocations = append(invocations, shellInvocation{argv: []string{item.String()}, useShell: true})
		}
		return invocations, "", nil, true, nil

	default:
		cwd = content.Get("cwd").String()
		if envField := content.Get("env"); envField.Exists() {
			env = map[string]string{}
			envField.ForEach(func(k, v gjson.Result) bool {
				env[k.String()] = v.String()
				return true
			})
		}

		cmdField := content.Get("cmd")
		defaultShell := false
		switch {
		case cmdField.Type == gjson.String:
			invocations = []shellInvocation{{argv: []string{cmdField.String()}}}
			defaultShell = true
		case cmdField.IsArray():
			arr := cmdField.Array()
			if len(arr) > 0 && arr[0].IsArray() {
				for _, sub := range arr {
					var argv []string
					for _, a := range sub.Array() {
						argv = append(argv, a.String())
					}
					invocations = append(invocations, shellInvocation{argv: argv})
				}
			} else {
				var argv []string
				for _, a := range arr {
					argv = append(argv, a.String())
				}
				invocations = []shellInvocation{{argv: argv}}
			}
		default:
			return nil, "", nil, false, errs.New(errs.KindValidation, "shell step content requires \"cmd\"")
		}

		useShell := defaultShell
		if shellField := content.Get("shell"); shellField.Exists() {
			useShell = shellField.Bool()
		}
		for i := range invocations {
			invocations[i].useShell = useShell
		}

		if checkField := content.Get("check"); checkField.Exists() {
			check = checkField.Bool()
		}
		return invocations, cwd, env, check, nil
	}
}

func (e *Engine) runShell(ctx context.Context, content gjson.Result, vars map[string]string) (string, error) {
	invocations, cwd, userEnv, check, err := parseShellContent(content)
	if err != nil {
		return "", err
	}

	cwd = Expand(cwd, vars)
	if cwd == "" {
		cwd = vars["YPMS_ENV_DIR"]
	}

	procEnv := os.Environ()
	for k, v := range vars {
		procEnv = append(procEnv, k+"="+v)
	}
	for k, v := range userEnv {
		procEnv = append(procEnv, k+"="+Expand(v, vars))
	}

	lastResult := ""
	for _, inv := range invocations {
		argv := make([]string, len(inv.argv))
		for i, a := range inv.argv {
			argv[i] = Expand(a, vars)
		}

		var cmd *exec.Cmd
		if inv.useShell {
			cmd = exec.CommandContext(ctx, "sh", "-c", strings.Join(argv, " "))
		} else {
			if len(argv) == 0 {
				return "", errs.New(errs.KindValidation, "shell step has an empty command")
			}
			cmd = exec.CommandContext(ctx, argv[0], argv[1:]...)
		}
		cmd.Dir = cwd
		cmd.Env = procEnv
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		runErr := cmd.Run()
		if runErr != nil {
			if exitErr, ok := runErr.(*exec.ExitError); ok {
				if check {
					return "", errs.Wrap(errs.KindProcess, runErr, "command exited %d", exitErr.ExitCode())
				}
				lastResult = fmt.Sprintf("%d", exitErr.ExitCode())
				continue
			}
			return "", errs.Wrap(errs.KindProcess, runErr, "failed to run command")
		}
		lastResult = ""
	}
	return lastResult, nil
}

func (e *Engine) runPython() (string, error) {
	return "", errs.New(errs.KindValidation, "python step is not supported; use a shell step with an explicit interpreter")
}

func (e *Engine) runLicenseAgreement(content gjson.Result, vars map[string]string) (string, error) {
	url := Expand(content.String(), vars)
	if url == "" {
		return "", errs.New(errs.KindValidation, "license-agreement-url step requires a URL")
	}
	answer, err := e.Prompt.Confirm(url)
	if err != nil {
		return "", errs.Wrap(errs.KindValidation, err, "reading license agreement response")
	}
	if strings.TrimSpace(answer) != "a" {
		return "", errs.New(errs.KindValidation, "license agreement was not accepted")
	}
	return "", nil
}

func parseDepEntries(content gjson.Result) ([]depref.Ref, error) {
	var refs []depref.Ref
	if content.IsArray() {
		for _, item := range content.Array() {
			ref, err := depref.ParseDepEntry(item)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return refs, nil
	}
	ref, err := depref.ParseDepEntry(content)
	if err != nil {
		return nil, err
	}
	return []depref.Ref{ref}, nil
}

func (e *Engine) runInstallPackage(ctx context.Context, content gjson.Result, effects Effects, envID string) (string, error) {
	refs, err := parseDepEntries(content)
	if err != nil {
		return "", err
	}
	for _, ref := range refs {
		if effects.IsInstalled(envID, ref) {
			continue
		}
		if err := effects.InstallPackage(ctx, ref, envID, false); err != nil {
			return "", err
		}
	}
	return "", nil
}

func (e *Engine) runUninstallPackage(ctx context.Context, content gjson.Result, effects Effects, envID string, force bool) (string, error) {
	refs, err := parseDepEntries(content)
	if err != nil {
		return "", err
	}
	for _, ref := range refs {
		if err := effects.UninstallPackage(ctx, ref, envID, force); err != nil {
			return "", err
		}
	}
	return "", nil
}

type repoEntry struct {
	name string
	url  string
}

func parseAddRepoContent(content gjson.Result) ([]repoEntry, error) {
	switch {
	case content.Type == gjson.String:
		parts := strings.SplitN(strings.TrimSpace(content.String()), " ", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, errs.New(errs.KindValidation, "add-repo string content must be \"NAME URL\"")
		}
		return []repoEntry{{name: parts[0], url: parts[1]}}, nil

	case content.IsArray():
		var entries []repoEntry
		for _, item := range content.Array() {
			name := item.Get("name").String()
			url := item.Get("url").String()
			if name == "" || url == "" {
				return nil, errs.New(errs.KindValidation, "add-repo entry requires \"name\" and \"url\"")
			}
			entries = append(entries, repoEntry{name: name, url: url})
		}
		return entries, nil

	case content.Get("name").Exists() && content.Get("url").Exists():
		return []repoEntry{{name: content.Get("name").String(), url: content.Get("url").String()}}, nil

	case content.IsObject():
		var entries []repoEntry
		content.ForEach(func(k, v gjson.Result) bool {
			entries = append(entries, repoEntry{name: k.String(), url: v.String()})
			return true
		})
		return entries, nil

	default:
		return nil, errs.New(errs.KindValidation, "unrecognized add-repo content shape")
	}
}

func (e *Engine) runAddRepo(content gjson.Result, effects Effects) (string, error) {
	entries, err := parseAddRepoContent(content)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if effects.HasSource(entry.name) {
			continue
		}
		if err := effects.AddSource(entry.name, entry.url); err != nil {
			return "", err
		}
	}
	return "", nil
}

func parseRemoveRepoContent(content gjson.Result) ([]string, error) {
	switch {
	case content.Type == gjson.String:
		return []string{content.String()}, nil
	case content.IsArray():
		var names []string
		for _, item := range content.Array() {
			names = append(names, item.String())
		}
		return names, nil
	default:
		if name := content.Get("name"); name.Exists() {
			return []string{name.String()}, nil
		}
		if names := content.Get("names"); names.Exists() {
			var out []string
			for _, item := range names.Array() {
				out = append(out, item.String())
			}
			return out, nil
		}
		return nil, errs.New(errs.KindValidation, "remove-repo step content requires \"name\" or \"names\"")
	}
}

func (e *Engine) runRemoveRepo(content gjson.Result, effects Effects) (string, error) {
	names, err := parseRemoveRepoContent(content)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if !effects.HasSource(name) {
			continue
		}
		if err := effects.RemoveSource(name); err != nil {
			return "", err
		}
	}
	return "", nil
}
