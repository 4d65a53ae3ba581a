package pagecache

// Version constants.
const (
	Major = 0
	Minor = 1
	Patch = 0
)

// Version returns the version string of this package.
func Version() string {
	return "pagecache 0.1.0"
}
