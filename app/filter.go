package app

import (
	"slices"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
	"github.com/urfave/cli/v2"

	"github.com/itimeapp/itime/internal/apperr"
	"github.com/itimeapp/itime/internal/timeutil"
	"github.com/itimeapp/itime/store"
)

const defaultPeriod = timeutil.Period7Days

var (
	errInvalidDateRange = &apperr.Error{
		Message: "the start time must be earlier than the end time",
	}

	errInvalidPeriod = &apperr.Error{
		Message: "please provide a valid time period, got %q",
	}

	errInvalidDate = &apperr.Error{
		Message: "unable to understand the date %q",
	}
)

// filterOptions are the raw record filters given on the command line.
type filterOptions struct {
	Period string
	Since  string
	Until  string
	Limit  int
}

func filterFromContext(ctx *cli.Context) filterOptions {
	return filterOptions{
		Period: ctx.String("period"),
		Since:  ctx.String("since"),
		Until:  ctx.String("until"),
		Limit:  ctx.Int("limit"),
	}
}

// recordQuery turns filter options into a store query. --since and
// --until take precedence over --period.
func recordQuery(opts filterOptions, now time.Time) (store.RecordQuery, error) {
	q := store.RecordQuery{
		Sort:  store.SortStartDesc,
		Limit: opts.Limit,
	}

	since, until := strings.TrimSpace(opts.Since), strings.TrimSpace(opts.Until)

	if since == "" && until == "" {
		period := timeutil.Period(strings.TrimSpace(opts.Period))
		if period == "" {
			period = defaultPeriod
		}

		if !slices.Contains(timeutil.PeriodCollection, period) {
			return q, errInvalidPeriod.Fmt(period)
		}

		q.Since, q.Until = period.Bounds(now)

		return q, nil
	}

	var err error

	if since != "" {
		q.Since, err = parseDate(since, now)
		if err != nil {
			return q, err
		}
	}

	q.Until = now

	if until != "" {
		q.Until, err = parseDate(until, now)
		if err != nil {
			return q, err
		}
	}

	if !q.Since.IsZero() && !q.Since.Before(q.Until) {
		return q, errInvalidDateRange
	}

	return q, nil
}

func parseDate(s string, now time.Time) (time.Time, error) {
	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}

	d, err := dateparser.Parse(cfg, s)
	if err != nil {
		return time.Time{}, errInvalidDate.Fmt(s).Wrap(err)
	}

	if d.Time.IsZero() {
		return time.Time{}, errInvalidDate.Fmt(s)
	}

	return d.Time, nil
}
