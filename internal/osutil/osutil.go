// Package osutil holds platform names and process exit codes.
package osutil

const (
	Windows = "windows"
	Darwin  = "darwin"
)

type exitCode int

const (
	ExitOK    exitCode = 0
	ExitError exitCode = 1
)

// Int returns the code as passed to os.Exit.
func (c exitCode) Int() int {
	return int(c)
}
