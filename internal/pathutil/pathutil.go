// Package pathutil manages application file paths and locations
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// Paths holds all application path configurations.
type Paths struct {
	appDir         string
	configFileName string
	dbFileName     string
	stateFileName  string
	logFileName    string

	// Computed absolute paths
	configFilePath string
	dbFilePath     string
	stateFilePath  string
	logFilePath    string
	calendarDir    string
	dataDir        string
}

var (
	paths *Paths
	once  sync.Once
)

// Initialize must be called once at program startup.
func Initialize() error {
	var initErr error

	once.Do(func() {
		paths = &Paths{
			appDir:         "itime",
			configFileName: "config.yml",
			dbFileName:     "itime.db",
			stateFileName:  "state.db",
			logFileName:    "itime.log",
		}

		paths.applyEnvironmentOverrides()
		initErr = paths.computePaths()
	})

	return initErr
}

// Must panics if paths haven't been initialized.
func Must() *Paths {
	if paths == nil {
		panic("pathutil.Initialize() must be called before accessing paths")
	}

	return paths
}

func ConfigFilePath() string {
	return Must().configFilePath
}

func DBFilePath() string {
	return Must().dbFilePath
}

// StateFilePath is the bolt database holding the active-record pointer.
func StateFilePath() string {
	return Must().stateFilePath
}

func LogFilePath() string {
	return Must().logFilePath
}

// DataDir is the application directory under XDG_DATA_HOME.
func DataDir() string {
	return Must().dataDir
}

func CalendarDir() string {
	return Must().calendarDir
}

func (p *Paths) applyEnvironmentOverrides() {
	env := strings.TrimSpace(os.Getenv("ITIME_ENV"))
	if env != "" {
		p.configFileName = fmt.Sprintf("config_%s.yml", env)
		p.dbFileName = fmt.Sprintf("itime_%s.db", env)
		p.stateFileName = fmt.Sprintf("state_%s.db", env)
		p.logFileName = fmt.Sprintf("itime_%s.log", env)
	}
}

func (p *Paths) computePaths() error {
	var err error

	p.configFilePath, err = xdg.ConfigFile(
		filepath.Join(p.appDir, p.configFileName),
	)
	if err != nil {
		return err
	}

	// xdg creates the parent directories of a data file
	p.dbFilePath, err = xdg.DataFile(filepath.Join(p.appDir, p.dbFileName))
	if err != nil {
		return err
	}

	dataDir := filepath.Dir(p.dbFilePath)

	p.dataDir = dataDir
	p.stateFilePath = filepath.Join(dataDir, p.stateFileName)
	p.logFilePath = filepath.Join(dataDir, "log", p.logFileName)
	p.calendarDir = filepath.Join(dataDir, "calendars")

	return nil
}

// StripExtension returns the input file name without its extension.
func StripExtension(fileName string) string {
	return fileName[:len(fileName)-len(filepath.Ext(fileName))]
}
