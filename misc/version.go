// Package misc keeps build time information.
package misc

// Set with -ldflags "-X karm/misc.version=... -X karm/misc.gitHash=..."
var (
	appName = "karm"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
