package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/taskplan/pkg/colors"
	"github.com/harrisonrobin/taskplan/pkg/index"
	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/harrisonrobin/taskplan/pkg/util"
)

// fakeCalendar is a minimal in-memory stand-in for the Calendar API.
type fakeCalendar struct {
	mu      sync.Mutex
	events  map[string]*calendar.Event
	deleted []string
	nextID  int
	failOn  string
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/users/me/calendarList"):
		json.NewEncoder(w).Encode(&calendar.CalendarList{Items: []*calendar.CalendarListEntry{
			{Id: "primary-id", Summary: "Personal"},
			{Id: "plan-id", Summary: "Study Plan"},
		}})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/events"):
		var e calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if f.failOn != "" && e.Summary == f.failOn {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"code":400,"message":"invalid event"}}`)
			return
		}
		f.nextID++
		e.Id = fmt.Sprintf("evt-%d", f.nextID)
		f.events[e.Id] = &e
		json.NewEncoder(w).Encode(&e)
	case r.Method == http.MethodDelete:
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		if _, ok := f.events[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":404,"message":"Not Found"}}`)
			return
		}
		delete(f.events, id)
		f.deleted = append(f.deleted, id)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/events"):
		list := &calendar.Events{}
		for _, e := range f.events {
			list.Items = append(list.Items, e)
		}
		json.NewEncoder(w).Encode(list)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeCalendar) (*CalendarClient, *index.EventIndex) {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	srv, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(ts.Client()),
		option.WithEndpoint(ts.URL+"/"),
	)
	if err != nil {
		t.Fatalf("calendar.NewService failed: %v", err)
	}

	dir := t.TempDir()
	idx, err := index.NewEventIndexAt(filepath.Join(dir, "events.json"))
	if err != nil {
		t.Fatalf("NewEventIndexAt failed: %v", err)
	}
	cache, err := colors.NewColorCacheAt(filepath.Join(dir, "tag_colors.json"))
	if err != nil {
		t.Fatalf("NewColorCacheAt failed: %v", err)
	}

	id, err := FindCalendarID(srv, "Study Plan")
	if err != nil {
		t.Fatalf("FindCalendarID failed: %v", err)
	}
	return NewCalendarClient(srv, id, idx, cache), idx
}

func testBlocks() []model.Block {
	start := time.Date(2025, 9, 29, 16, 0, 0, 0, time.UTC)
	return []model.Block{
		{TaskID: "t1", Title: "[CS61] Submit Lab 5", Tag: "CS61", Start: start, End: start.Add(50 * time.Minute)},
		{TaskID: "t1", Title: "[CS61] Submit Lab 5", Tag: "CS61", Start: start.Add(time.Hour), End: start.Add(110 * time.Minute)},
		{TaskID: "t2", Title: "Read chapter 7", Start: start.Add(2 * time.Hour), End: start.Add(170 * time.Minute)},
	}
}

func TestPushPlanReplacesPreviousPush(t *testing.T) {
	fake := &fakeCalendar{events: map[string]*calendar.Event{}}
	client, idx := newTestClient(t, fake)

	res, err := client.PushPlan(testBlocks())
	if err != nil {
		t.Fatalf("PushPlan failed: %v", err)
	}
	if res.Created != 3 || res.Deleted != 0 || res.Failed != 0 {
		t.Errorf("Unexpected first push result: %+v", res)
	}
	if idx.Len() != 3 {
		t.Fatalf("Expected 3 indexed events, got %d", idx.Len())
	}

	first := fake.events["evt-1"]
	if first.ColorId == "" || first.ColorId != fake.events["evt-2"].ColorId {
		t.Errorf("Expected both CS61 blocks to share a color, got %q and %q", first.ColorId, fake.events["evt-2"].ColorId)
	}
	if fake.events["evt-3"].ColorId != colors.NoTagColor {
		t.Errorf("Expected untagged block to use %s, got %s", colors.NoTagColor, fake.events["evt-3"].ColorId)
	}
	if id, _ := util.GetTaskIDFromEvent(first); id != "t1" {
		t.Errorf("Expected task id t1, got %q", id)
	}

	res, err = client.PushPlan(testBlocks()[:1])
	if err != nil {
		t.Fatalf("second PushPlan failed: %v", err)
	}
	if res.Created != 1 || res.Deleted != 3 {
		t.Errorf("Unexpected second push result: %+v", res)
	}
	if len(fake.events) != 1 || idx.Len() != 1 {
		t.Errorf("Expected exactly one live event, got %d (index %d)", len(fake.events), idx.Len())
	}
}

func TestPushPlanCountsFailures(t *testing.T) {
	fake := &fakeCalendar{events: map[string]*calendar.Event{}, failOn: "Read chapter 7"}
	client, _ := newTestClient(t, fake)

	res, err := client.PushPlan(testBlocks())
	if err != nil {
		t.Fatalf("PushPlan failed: %v", err)
	}
	if res.Created != 2 || res.Failed != 1 {
		t.Errorf("Expected 2 created and 1 failed, got %+v", res)
	}
}

func TestDeleteEventAlreadyGone(t *testing.T) {
	fake := &fakeCalendar{events: map[string]*calendar.Event{}}
	client, idx := newTestClient(t, fake)

	idx.Set("evt-missing", "t9")
	if err := client.DeleteEvent("evt-missing"); err != nil {
		t.Fatalf("Expected missing event to count as deleted, got %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Expected index entry removed, got %d entries", idx.Len())
	}
}

func TestListPlannedEvents(t *testing.T) {
	fake := &fakeCalendar{events: map[string]*calendar.Event{
		"manual": {Id: "manual", Summary: "Dentist"},
	}}
	client, _ := newTestClient(t, fake)

	if _, err := client.PushPlan(testBlocks()[2:]); err != nil {
		t.Fatalf("PushPlan failed: %v", err)
	}
	planned, err := client.ListPlannedEvents(time.Date(2025, 9, 29, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListPlannedEvents failed: %v", err)
	}
	if len(planned) != 1 || planned[0].Summary != "Read chapter 7" {
		t.Errorf("Expected only the pushed block, got %d events", len(planned))
	}
}

func TestFindCalendarIDMissing(t *testing.T) {
	fake := &fakeCalendar{events: map[string]*calendar.Event{}}
	client, _ := newTestClient(t, fake)

	if _, err := FindCalendarID(client.srv, "Nope"); err == nil {
		t.Error("Expected error for unknown calendar name")
	}
}
