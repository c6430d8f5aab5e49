/*
 * Copyright (C) 2023 by Jason Figge
 */

package buildinfo

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Set with -ldflags "-X raycaster/internal/buildinfo.Version=... -X raycaster/internal/buildinfo.Commit=...".
var (
	Version = "dev"
	Commit  = "unknown"
)

// Short prefers the release version, then the commit.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Title is the window title for a build.
func Title(name string) string {
	return fmt.Sprintf("%s %s", name, Short())
}

// Fields tags the startup log with the build.
func Fields() logrus.Fields {
	return logrus.Fields{"version": Version, "commit": Commit}
}
