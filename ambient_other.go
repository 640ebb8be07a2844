//go:build !linux && !darwin

package blockfs

// AmbientRequestContext falls back to the superuser identity on
// platforms without a unix uid/gid concept wired up (see
// ambient_linux.go/ambient_darwin.go for the real implementations).
func AmbientRequestContext() RequestContext {
	return RequestContext{}
}
