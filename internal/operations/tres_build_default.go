//go:build !devbuild

package operations

// tresUpdateEnabled gates TRES updates outside developer builds
// (spec.md §4.I "TRES update is disabled outside developer builds").
const tresUpdateEnabled = false
