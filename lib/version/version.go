package version

import "fmt"

var (
	Version             string // set by hand at each release, following SemVer
	GitCommit, GitState string // overwritten by the build system
	BuildDate           string // overwritten by the build system
)

func ToDetailVersion() string {
	return fmt.Sprintf("version=%s git=%s build=%s", Version, GitCommit, BuildDate)
}
