package guide

import (
	"github.com/tidwall/gjson"

	"github.com/YPSH-DGC/YPMS/internal/errs"
	"github.com/YPSH-DGC/YPMS/internal/platform"
)

// Step types recognized by the engine, per spec.md §4.4.
const (
	TypeDownloadFile     = "download-file"
	TypeDownloadOnly     = "download-only"
	TypeRemoveFile       = "remove-file"
	TypeShell            = "shell"
	TypePython           = "python"
	TypeLicenseAgreeURL  = "license-agreement-url"
	TypeInstallPackage   = "install-package"
	TypeUninstallPackage = "uninstall-package"
	TypeAddRepo          = "add-repo"
	TypeRemoveRepo       = "remove-repo"
	TypeNone             = "none"
)

// When gates a step to a subset of host OS/arch tags. A nil list on either
// axis means "no restriction on that axis".
type When struct {
	OS   []string
	Arch []string
}

// Matches reports whether the host OS/arch satisfy this When, per spec.md
// §4.4: "executed iff both lists, if present, contain the host tag".
func (w *When) Matches(hostOS, hostArch string) bool {
	if w == nil {
		return true
	}
	if len(w.OS) > 0 && !containsNormalized(w.OS, hostOS, platform.NormalizeOS) {
		return false
	}
	if len(w.Arch) > 0 && !containsNormalized(w.Arch, hostArch, platform.NormalizeArch) {
		return false
	}
	return true
}

func containsNormalized(list []string, want string, normalize func(string) string) bool {
	want = normalize(want)
	for _, item := range list {
		if normalize(item) == want {
			return true
		}
	}
	return false
}

// Step is one typed unit of work inside a guide.
type Step struct {
	Type    string
	Content gjson.Result
	When    *When
}

// Guide is the normalized, ordered list of steps parsed from a guide object.
type Guide struct {
	Steps []Step
}

// ParseGuide normalizes a guide document — either a single-step object
// {type, content, when?} or a container {steps: [...]} — into a Guide, per
// spec.md §3 ("Guide object").
func ParseGuide(doc gjson.Result) (Guide, error) {
	if stepsField := doc.Get("steps"); stepsField.Exists() {
		if !stepsField.IsArray() {
			return Guide{}, errs.New(errs.KindDecode, "guide \"steps\" must be an array")
		}
		steps := make([]Step, 0, len(stepsField.Array()))
		for _, raw := range stepsField.Array() {
			step, err := parseStep(raw)
			if err != nil {
				return Guide{}, err
			}
			steps = append(steps, step)
		}
		return Guide{Steps: steps}, nil
	}

	step, err := parseStep(doc)
	if err != nil {
		return Guide{}, err
	}
	return Guide{Steps: []Step{step}}, nil
}

func parseStep(raw gjson.Result) (Step, error) {
	stepType := raw.Get("type").String()
	if stepType == "" {
		return Step{}, errs.New(errs.KindDecode, "guide step missing \"type\"")
	}

	step := Step{
		Type:    stepType,
		Content: raw.Get("content"),
	}

	if whenField := raw.Get("when"); whenField.Exists() {
		when := &When{}
		if osField := whenField.Get("os"); osField.Exists() {
			for _, v := range osField.Array() {
				when.OS = append(when.OS, v.String())
			}
		}
		if archField := whenField.Get("arch"); archField.Exists() {
			for _, v := range archField.Array() {
				when.Arch = append(when.Arch, v.String())
			}
		}
		step.When = when
	}

	return step, nil
}
