package google

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harrisonrobin/taskplan/pkg/colors"
	"github.com/harrisonrobin/taskplan/pkg/index"
	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/harrisonrobin/taskplan/pkg/util"
)

// CalendarClient writes planned blocks to one Google calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	colors     *colors.ColorCache
}

// PushResult summarizes one PushPlan call.
type PushResult struct {
	Created int
	Deleted int
	Failed  int
}

// NewCalendarClient creates a new Google Calendar client.
// idx and cache may be nil.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex, cache *colors.ColorCache) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx, colors: cache}
}

// InsertBlock creates the calendar event for one block and records it in the index.
func (c *CalendarClient) InsertBlock(block model.Block) (*calendar.Event, error) {
	colorID := ""
	if c.colors != nil {
		colorID = c.colors.GetColorID(block.Tag)
	}
	event, err := util.ConvertBlockToCalendarEvent(&block, colorID)
	if err != nil {
		return nil, err
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Do()
	if err != nil {
		return nil, fmt.Errorf("could not insert block for task %s: %w", block.TaskID, err)
	}
	if c.index != nil {
		c.index.Set(created.Id, block.TaskID)
	}
	return created, nil
}

// DeleteEvent deletes an event from the calendar. Events that are already gone count as deleted.
func (c *CalendarClient) DeleteEvent(eventID string) error {
	err := c.srv.Events.Delete(c.calendarID, eventID).Do()
	if isGone(err) {
		err = nil
	}
	if err == nil && c.index != nil {
		c.index.Remove(eventID)
	}
	return err
}

// ClearPushed deletes every event recorded by earlier pushes.
func (c *CalendarClient) ClearPushed() (int, error) {
	if c.index == nil {
		return 0, nil
	}
	deleted := 0
	var errs []error
	for _, id := range c.index.EventIDs() {
		if err := c.DeleteEvent(id); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}

// PushPlan replaces previously pushed blocks with the given plan.
// Individual insert failures are logged and counted rather than aborting the push.
func (c *CalendarClient) PushPlan(blocks []model.Block) (PushResult, error) {
	var res PushResult

	deleted, err := c.ClearPushed()
	res.Deleted = deleted
	if err != nil {
		return res, fmt.Errorf("could not clear previously pushed events: %w", err)
	}

	for _, b := range blocks {
		if _, err := c.InsertBlock(b); err != nil {
			log.Printf("Error pushing block %q at %s: %v", b.Title, b.Start.Format(time.RFC3339), err)
			res.Failed++
			continue
		}
		res.Created++
	}
	return res, nil
}

// ListEvents fetches events from the calendar starting at timeMin.
func (c *CalendarClient) ListEvents(timeMin time.Time) ([]*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return events.Items, nil
}

// ListPlannedEvents returns the events starting at timeMin that were created by a push.
func (c *CalendarClient) ListPlannedEvents(timeMin time.Time) ([]*calendar.Event, error) {
	events, err := c.ListEvents(timeMin)
	if err != nil {
		return nil, err
	}
	var planned []*calendar.Event
	for _, e := range events {
		if _, ok := util.GetTaskIDFromEvent(e); ok {
			planned = append(planned, e)
		}
	}
	return planned, nil
}

func isGone(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone
	}
	return false
}
