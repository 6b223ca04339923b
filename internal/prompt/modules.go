package prompt

import (
	"strings"

	"golang.org/x/mod/semver"
)

// moduleVersion turns the version part of a module name ("ABAQUS/2021.1")
// into a canonical semver string ("v2021.1.0"). Unparsable versions give "".
func moduleVersion(module string) string {
	version := module
	if idx := strings.LastIndex(module, "/"); idx >= 0 {
		version = module[idx+1:]
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return semver.Canonical(version)
}

// NewestModule returns the module with the highest version, which is offered
// as the default answer. Modules without a parsable version sort first; for
// an empty list it returns "".
func NewestModule(modules []string) string {
	newest := ""
	newestVersion := ""
	for _, m := range modules {
		v := moduleVersion(m)
		if newest == "" || compareVersions(v, newestVersion) > 0 {
			newest, newestVersion = m, v
		}
	}
	return newest
}

// compareVersions compares canonical versions; "" is older than anything.
func compareVersions(v1, v2 string) int {
	switch {
	case v1 == "" && v2 == "":
		return 0
	case v1 == "":
		return -1
	case v2 == "":
		return 1
	}
	return semver.Compare(v1, v2)
}
