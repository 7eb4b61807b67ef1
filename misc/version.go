// Package misc keeps build time information about the program.
package misc

import "strings"

// set by the linker
var (
	version = "dev"
	gitHash = "unknown"
	appName = "fxcss"
)

func GetVersion() string {
	return strings.TrimPrefix(version, "v")
}

func GetGitHash() string {
	return gitHash
}

func GetAppName() string {
	return appName
}
