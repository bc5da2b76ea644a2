// Package static embeds static files into the binary and copies them to the
// filesystem
package static

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	filesDir = "files"
	iconName = "itime.svg"
	dirPerm  = 0o755
	filePerm = 0o644
)

//go:embed files/*
var embeddedFiles embed.FS

// Install copies the embedded files into dataDir, leaving existing files
// untouched, and returns the path of the notification icon.
func Install(dataDir string) (string, error) {
	err := fs.WalkDir(
		embeddedFiles,
		filesDir,
		func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			b, err := embeddedFiles.ReadFile(p)
			if err != nil {
				return err
			}

			stripped := strings.TrimPrefix(p, filesDir+"/")
			destPath := filepath.Join(dataDir, filepath.FromSlash(stripped))

			// Only write if file does not already exist
			if _, err := os.Stat(destPath); os.IsNotExist(err) {
				if err := os.MkdirAll(filepath.Dir(destPath), dirPerm); err != nil {
					return err
				}

				if err := os.WriteFile(destPath, b, filePerm); err != nil {
					return err
				}
			}

			return nil
		},
	)
	if err != nil {
		return "", err
	}

	return filepath.Join(dataDir, iconName), nil
}

// Icon returns the embedded notification icon.
func Icon() ([]byte, error) {
	return embeddedFiles.ReadFile(path.Join(filesDir, iconName))
}
