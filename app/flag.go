package app

import "github.com/urfave/cli/v2"

var (
	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable reminders and the notification shown when a session is completed",
	}

	minValidFlag = &cli.StringFlag{
		Name:    "min-valid",
		Aliases: []string{"m"},
		Usage:   "Shortest session that counts (e.g. 5m). Shorter sessions are kept but not counted",
	}

	calendarFlag = &cli.StringFlag{
		Name:    "calendar",
		Aliases: []string{"c"},
		Usage:   "Copy completed sessions into the named calendar",
	}

	sinceFlag = &cli.StringFlag{
		Name:    "since",
		Aliases: []string{"s"},
		Usage:   "Only include sessions started after this time (e.g. '2 days ago', '2025-01-06 09:00')",
	}

	untilFlag = &cli.StringFlag{
		Name:    "until",
		Aliases: []string{"u"},
		Usage:   "Only include sessions started before this time",
	}

	periodFlag = &cli.StringFlag{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "Specify a time period. Options: all-time, today, yesterday, 7days, 14days, 30days, 90days (default: 7days)",
	}

	typeFlag = &cli.StringFlag{
		Name:    "type",
		Aliases: []string{"t"},
		Usage:   "Only include sessions of this event type",
	}

	limitFlag = &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of sessions to show",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print output in JSON format",
	}

	colorFlag = &cli.StringFlag{
		Name:  "color",
		Usage: "Hex colour code (e.g. #FF0000)",
	}

	iconFlag = &cli.StringFlag{
		Name:  "icon",
		Usage: "Icon name shown next to the category",
	}

	categoryFlag = &cli.StringFlag{
		Name:    "category",
		Aliases: []string{"c"},
		Usage:   "Category the event type belongs to",
	}
)

func filterFlags() []cli.Flag {
	return []cli.Flag{sinceFlag, untilFlag, periodFlag, typeFlag, limitFlag}
}
