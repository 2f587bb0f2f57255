package google

import (
	"context"
	"fmt"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/taskplan/pkg/auth"
	"github.com/harrisonrobin/taskplan/pkg/colors"
	"github.com/harrisonrobin/taskplan/pkg/index"
)

// NewClient authenticates and resolves calendarName to its calendar ID.
func NewClient(ctx context.Context, calendarName string, idx *index.EventIndex, cache *colors.ColorCache) (*CalendarClient, error) {
	client, err := auth.GetClient(ctx, auth.Scopes)
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	calendarID, err := FindCalendarID(srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID, idx, cache), nil
}

// FindCalendarID looks a calendar up by its display name.
func FindCalendarID(srv *calendar.Service, calendarName string) (string, error) {
	calendarList, err := srv.CalendarList.List().Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", calendarName)
}
