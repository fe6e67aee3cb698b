// Package oci provides read-only inspection of WASM components published to
// an OCI registry, following the CNCF TAG Runtime WASM OCI Artifact
// specification used by wkg and the Spin framework. Pushing components is
// handled by the external wkg binary, not by this package.
//
// Example usage:
//
//	info, err := oci.Inspect("ghcr.io", "acme/add", "1.0.0")
package oci
