package app

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/itimeapp/itime/internal/config"
	"github.com/itimeapp/itime/internal/osutil"
	"github.com/itimeapp/itime/internal/pathutil"
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

func editorCommand() string {
	defaultEditor := "nano"

	if runtime.GOOS == osutil.Windows {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	return firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)
}

// editConfigAction opens the config file in the user's default text editor.
// The file is created with defaults first so there is something to edit.
func editConfigAction(ctx *cli.Context) error {
	path := pathutil.ConfigFilePath()

	if _, err := config.New(config.WithViperConfig(path)); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx.Context, editorCommand(), path)

	cmd.Stderr = config.Stderr
	cmd.Stdin = config.Stdin
	cmd.Stdout = config.Stdout

	if err := cmd.Run(); err != nil {
		return err
	}

	// surface mistakes made while editing
	_, err := config.New(config.WithViperConfig(path))

	return err
}
