// Package google implements the shared-calendar provider on top of the
// Google Calendar API, authenticating as a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/flumphworks/flumphbot/internal"
)

const (
	defaultSleep      = 5 * time.Second
	defaultMaxResults = 100
)

type Client struct {
	svc        *calendar.Service
	calendarID string

	Verbose bool
}

func NewClient(ctx context.Context, credJSON []byte, calendarID string) (*Client, error) {
	jwtCfg, err := google.JWTConfigFromJSON(credJSON, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("google: creating calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		calendarID: calendarID,
	}, nil
}

func (c *Client) Events(ctx context.Context, from, to time.Time) ([]*internal.CalendarEvent, error) {
	c.logf("checking for events between %s and %s", from.Format(internal.DateFormat), to.Format(internal.DateFormat))

	call := c.svc.Events.
		List(c.calendarID).
		Context(ctx).
		ShowDeleted(false).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(defaultMaxResults).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339))

	var (
		events        []*internal.CalendarEvent
		nextPageToken string
	)
	for {
		res, err := call.PageToken(nextPageToken).Do()
		if err != nil {
			if shouldRetry(err) {
				time.Sleep(defaultSleep)
				continue
			}
			return nil, fmt.Errorf("google: listing events: %w", err)
		}

		for _, item := range res.Items {
			events = append(events, newEvent(item))
		}
		nextPageToken = res.NextPageToken
		if nextPageToken == "" {
			break
		}
	}
	return events, nil
}

func (c *Client) Event(ctx context.Context, id string) (*internal.CalendarEvent, error) {
	gevent, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google: getting event %s: %w", id, err)
	}
	return newEvent(gevent), nil
}

func (c *Client) CreateEvent(ctx context.Context, req *internal.CalendarEvent) (*internal.CalendarEvent, error) {
	msg := fmt.Sprintf("creating event: %q on %s... ", req.Summary, req.StartsAt)
	defer func() {
		c.logf(msg)
	}()

	for {
		gevent, err := c.svc.Events.Insert(c.calendarID, newGoogleEvent(req)).Context(ctx).Do()
		if err == nil {
			msg += "✅"
			return newEvent(gevent), nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		msg += "❌"
		return nil, err
	}
}

// UpdateEventStatus flips an event's busy/free flag, leaving everything else
// untouched.
func (c *Client) UpdateEventStatus(ctx context.Context, id string, status internal.EventStatus) error {
	msg := fmt.Sprintf("updating event %s status to %s... ", id, status)
	defer func() {
		c.logf(msg)
	}()

	for {
		_, err := c.svc.Events.
			Patch(c.calendarID, id, &calendar.Event{Transparency: status.String()}).
			Context(ctx).
			Do()
		if err == nil {
			msg += "✅"
			return nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		msg += "❌"
		return err
	}
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	msg := fmt.Sprintf("deleting event %s... ", id)
	defer func() {
		c.logf(msg)
	}()

	for {
		err := c.svc.Events.Delete(c.calendarID, id).Context(ctx).Do()
		if err == nil || alreadyDeleted(err) {
			msg += "✅"
			return nil
		}
		if shouldRetry(err) {
			time.Sleep(defaultSleep)
			continue
		}
		msg += "❌"
		return err
	}
}

func (c *Client) logf(format string, a ...any) {
	if c.Verbose {
		internal.Logf(os.Stdout, "google:", format, a...)
	}
}

func shouldRetry(err error) bool {
	return errIsReason(err, "rateLimitExceeded")
}

func alreadyDeleted(err error) bool {
	return errIsReason(err, "deleted")
}

func errIsReason(err error, reason string) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}

	for _, err := range gErr.Errors {
		switch err.Reason {
		case reason:
			return true
		}
	}
	return false
}
