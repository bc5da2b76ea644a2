// Package app assembles the itime command-line application.
package app

import (
	"github.com/urfave/cli/v2"

	"github.com/itimeapp/itime/internal/config"
)

// Get retrieves the itime app instance.
func Get() *cli.App {
	return &cli.App{
		Name: "itime",
		Usage: `
		iTime is a time tracker for the command-line. Start a session for an 
		event type, switch or stop it whenever you like, and pick up where you 
		left off if the program is interrupted.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Open the live timer (default)",
				Action: withServices(runAction),
			},
			{
				Name:      "start",
				Usage:     "Start a session, stopping the running one",
				ArgsUsage: "[event type]",
				Action:    withServices(startAction),
			},
			{
				Name:   "stop",
				Usage:  "Stop the running session",
				Action: withServices(stopAction),
			},
			{
				Name:      "switch",
				Usage:     "Stop the running session and start another",
				ArgsUsage: "<event type>",
				Action:    withServices(switchAction),
			},
			{
				Name:   "status",
				Usage:  "Print the running session",
				Flags:  []cli.Flag{jsonFlag},
				Action: withServices(statusAction),
			},
			{
				Name:   "list",
				Usage:  "List sessions. Defaults to a period of 7 days",
				Flags:  append(filterFlags(), jsonFlag),
				Action: withServices(listAction),
			},
			{
				Name:   "stats",
				Usage:  "Summarise counted time by category and event type. Defaults to a period of 7 days",
				Flags:  []cli.Flag{sinceFlag, untilFlag, periodFlag, jsonFlag},
				Action: withServices(statsAction),
			},
			{
				Name:   "delete",
				Usage:  "Delete finished sessions",
				Flags:  filterFlags(),
				Action: withServices(deleteAction),
			},
			{
				Name:  "category",
				Usage: "Manage categories",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List categories",
						Flags:  []cli.Flag{jsonFlag},
						Action: withServices(categoryListAction),
					},
					{
						Name:      "add",
						Usage:     "Add a category",
						ArgsUsage: "<name>",
						Flags:     []cli.Flag{colorFlag, iconFlag},
						Action:    withServices(categoryAddAction),
					},
					{
						Name:      "delete",
						Usage:     "Delete a category with its event types and sessions",
						ArgsUsage: "<name>",
						Action:    withServices(categoryDeleteAction),
					},
				},
			},
			{
				Name:  "type",
				Usage: "Manage event types",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List event types",
						Flags:  []cli.Flag{jsonFlag},
						Action: withServices(typeListAction),
					},
					{
						Name:      "add",
						Usage:     "Add an event type",
						ArgsUsage: "<name>",
						Flags:     []cli.Flag{categoryFlag, colorFlag},
						Action:    withServices(typeAddAction),
					},
					{
						Name:      "delete",
						Usage:     "Delete an event type with its sessions",
						ArgsUsage: "<name>",
						Action:    withServices(typeDeleteAction),
					},
				},
			},
			{
				Name:   "calendars",
				Usage:  "List the calendars sessions can be copied to",
				Action: calendarsAction,
			},
			{
				Name:  "config",
				Usage: "Show or change settings",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the effective settings",
						Flags:  []cli.Flag{jsonFlag},
						Action: configShowAction,
					},
					{
						Name:      "set",
						Usage:     "Change a setting",
						ArgsUsage: "<key> <value>",
						Action:    configSetAction,
					},
					{
						Name:   "edit",
						Usage:  "Edit the configuration file",
						Action: editConfigAction,
					},
				},
			},
		},
		Flags: []cli.Flag{
			minValidFlag,
			calendarFlag,
			disableNotificationFlag,
			noColorFlag,
		},
		Action: withServices(runAction),
		Before: beforeAction,
		After:  afterAction,
	}
}
