// Package manifest parses and validates the project manifest (ftl.toml)
// and transpiles it into the runtime manifest (spin.toml) consumed by the
// WASM host.
package manifest

// Manifest is the parsed project manifest (ftl.toml).
type Manifest struct {
	Project    ProjectSpec             `toml:"project"`
	OAuth      *OAuthConfig            `toml:"oauth,omitempty"`
	Component  map[string]ComponentSpec `toml:"component,omitempty"`
	Variables  map[string]VariableSpec `toml:"variables,omitempty"`
}

// ProjectSpec is the `[project]` table.
type ProjectSpec struct {
	Name         string `toml:"name"`
	Version      string `toml:"version,omitempty"`
	AccessControl string `toml:"access_control,omitempty"`
}

// OAuthConfig is the `[oauth]` table, required when
// ProjectSpec.AccessControl is "private".
type OAuthConfig struct {
	Issuer   string `toml:"issuer"`
	Audience string `toml:"audience,omitempty"`
}

// ComponentSpec is one `[component.<name>]` table. A component is either
// locally built (Path/Wasm/Build populated) or registry-sourced (Source
// populated); exactly one of the two applies.
type ComponentSpec struct {
	Path                 string          `toml:"path,omitempty"`
	Wasm                 string          `toml:"wasm,omitempty"`
	Source               *RegistrySource `toml:"source,omitempty"`
	AllowedOutboundHosts []string        `toml:"allowed_outbound_hosts,omitempty"`
	Build                *BuildConfig    `toml:"build,omitempty"`
	Deploy               *DeployConfig   `toml:"deploy,omitempty"`
}

// RegistrySource names a component fetched from an OCI registry rather
// than built locally. It supplements the distilled spec with the
// registry-vs-local distinction original_source's `validation.Component`
// type makes explicit.
type RegistrySource struct {
	Registry string `toml:"registry"`
	Package  string `toml:"package"`
	Version  string `toml:"version"`
}

// IsRegistry reports whether a component is registry-sourced rather than
// locally built.
func (c ComponentSpec) IsRegistry() bool {
	return c.Source != nil
}

// BuildConfig is a component's `[component.<name>.build]` table.
type BuildConfig struct {
	Command string `toml:"command"`
	Workdir string `toml:"workdir,omitempty"`
}

// DeployConfig is a component's `[component.<name>.deploy]` table.
type DeployConfig struct {
	Name    string `toml:"name,omitempty"`
	Profile string `toml:"profile,omitempty"`
}

// VariableSpec is one entry of the `[variables]` table.
type VariableSpec struct {
	Required bool    `toml:"required,omitempty"`
	Default  *string `toml:"default,omitempty"`
}

// DeployProfile enumerates the supported build profiles.
const (
	ProfileDebug   = "debug"
	ProfileRelease = "release"
)

// AccessControl enumerates the supported access modes.
const (
	AccessPublic  = "public"
	AccessPrivate = "private"
)

// Profile returns the component's resolved deploy profile, defaulting to
// release per spec.md §3.
func (c ComponentSpec) Profile() string {
	if c.Deploy != nil && c.Deploy.Profile != "" {
		return c.Deploy.Profile
	}
	return ProfileRelease
}

// DeployName returns the component's resolved deployment name, defaulting
// to its manifest key when no override is set. The manifest key itself is
// not stored on ComponentSpec, so callers pass it in.
func (c ComponentSpec) DeployName(manifestName string) string {
	if c.Deploy != nil && c.Deploy.Name != "" {
		return c.Deploy.Name
	}
	return manifestName
}
