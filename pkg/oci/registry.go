// Package oci provides read-only inspection of WASM components stored in
// OCI registries, following the CNCF TAG Runtime WASM OCI Artifact
// specification. Pushing components to a registry is handled by the
// external wkg tool (see internal/deploy); this package never writes to a
// registry — FTL does not implement the OCI wire protocol itself.
package oci

import (
	"fmt"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

// ComponentInfo describes a published WASM component image.
type ComponentInfo struct {
	Digest    string
	MediaType string
	Size      int64
}

// Inspect resolves registry/package:version to its manifest digest and size
// without downloading the layer content.
func Inspect(registry, packageName, version string) (*ComponentInfo, error) {
	ref := fmt.Sprintf("%s/%s:%s", registry, packageName, version)

	tag, err := name.ParseReference(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid reference %s: %w", ref, err)
	}

	desc, err := remote.Get(tag, remote.WithAuthFromKeychain(authn.DefaultKeychain))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", ref, err)
	}

	return &ComponentInfo{
		Digest:    desc.Digest.String(),
		MediaType: string(desc.MediaType),
		Size:      desc.Size,
	}, nil
}
