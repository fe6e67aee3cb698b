package manifest

import (
	"fmt"
	"regexp"
)

// namePattern is the project-name validator from spec.md §6/§8 property 2.
var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// semverPattern is a minimal major.minor.patch check; it does not attempt
// full SemVer 2.0 pre-release/build-metadata parsing.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+`)

// ValidationError is a single field-level manifest problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one validation pass, so
// callers can report all of them instead of stopping at the first.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d manifest errors:", len(e))
	for _, fe := range e {
		msg += "\n  - " + fe.Error()
	}
	return msg
}

// ValidName reports whether s is a valid project or component name.
func ValidName(s string) bool {
	return namePattern.MatchString(s)
}

// Validate checks a parsed manifest for semantic errors: missing
// project.name, invalid name format, malformed version, an oauth table
// missing when access_control is private, and unknown access_control
// values. Component name uniqueness is guaranteed structurally by the
// decoder (manifest.Component is a map), so it is not re-checked here.
func Validate(m *Manifest) ValidationErrors {
	var errs ValidationErrors

	if m.Project.Name == "" {
		errs = append(errs, ValidationError{Field: "project.name", Message: "is required"})
	} else if !ValidName(m.Project.Name) {
		errs = append(errs, ValidationError{
			Field:   "project.name",
			Message: fmt.Sprintf("%q is not a valid name (must match %s)", m.Project.Name, namePattern.String()),
		})
	}

	if m.Project.Version != "" && !semverPattern.MatchString(m.Project.Version) {
		errs = append(errs, ValidationError{
			Field:   "project.version",
			Message: fmt.Sprintf("%q is not a valid semantic version", m.Project.Version),
		})
	}

	switch m.Project.AccessControl {
	case "", AccessPublic:
	case AccessPrivate:
		if m.OAuth == nil || m.OAuth.Issuer == "" {
			errs = append(errs, ValidationError{
				Field:   "oauth.issuer",
				Message: "is required when access_control = \"private\"",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "project.access_control",
			Message: fmt.Sprintf("must be \"public\" or \"private\", got %q", m.Project.AccessControl),
		})
	}

	for name, comp := range m.Component {
		if !comp.IsRegistry() && comp.Wasm == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("component.%s.wasm", name),
				Message: "is required for locally built components",
			})
		}
		if comp.IsRegistry() && (comp.Source.Registry == "" || comp.Source.Package == "" || comp.Source.Version == "") {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("component.%s.source", name),
				Message: "registry source requires registry, package, and version",
			})
		}
	}

	return errs
}
