package main

import (
	"os"

	"github.com/itimeapp/itime/app"
	"github.com/itimeapp/itime/internal/osutil"
	"github.com/itimeapp/itime/report"
)

func run(args []string) error {
	return app.Get().Run(args)
}

func main() {
	err := run(os.Args)
	if err != nil {
		report.Error(err)
		os.Exit(osutil.ExitError.Int())
	}
}
