package colors

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/harrisonrobin/taskplan/pkg/config"
)

// TagState tracks the calendar color assigned to one task tag.
type TagState struct {
	ColorID      string    `json:"color_id"`
	Blocks       int       `json:"blocks"`
	LastModified time.Time `json:"last_modified"`
}

// ColorCache hands out Google Calendar color IDs per tag, recycling the
// least recently used color once all eleven are taken.
type ColorCache struct {
	Path  string
	Tags  map[string]*TagState `json:"tags"`
	now   func() time.Time
	dirty bool
}

const (
	cacheFile = "tag_colors.json"

	// NoTagColor is Google's graphite, used for untagged work.
	NoTagColor = "8"
	maxColors  = 11
)

func NewColorCache() (*ColorCache, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return NewColorCacheAt(filepath.Join(dir, cacheFile))
}

func NewColorCacheAt(path string) (*ColorCache, error) {
	cache := &ColorCache{
		Path: path,
		Tags: make(map[string]*TagState),
		now:  time.Now,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cache.Load(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func (c *ColorCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&c.Tags); err != nil {
		return err
	}
	if c.Tags == nil {
		c.Tags = make(map[string]*TagState)
	}
	return nil
}

func (c *ColorCache) Save() error {
	if !c.dirty {
		return nil
	}
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.Printf("Error creating color cache directory: %v", err)
		return err
	}

	f, err := os.Create(c.Path)
	if err != nil {
		log.Printf("Error creating color cache file: %v", err)
		return err
	}
	defer f.Close()
	err = json.NewEncoder(f).Encode(c.Tags)
	if err == nil {
		c.dirty = false
	}
	return err
}

// GetColorID returns the color for a tag, assigning or recycling one as needed.
func (c *ColorCache) GetColorID(tag string) string {
	if tag == "" {
		return NoTagColor
	}

	if state, exists := c.Tags[tag]; exists {
		state.LastModified = c.now()
		state.Blocks++
		c.dirty = true
		return state.ColorID
	}

	return c.assignColor(tag)
}

func (c *ColorCache) assignColor(tag string) string {
	used := make(map[string]bool)
	for _, s := range c.Tags {
		used[s.ColorID] = true
	}

	for i := 1; i <= maxColors; i++ {
		id := strconv.Itoa(i)
		if id == NoTagColor || used[id] {
			continue
		}
		return c.claim(tag, id)
	}

	// Full: evict the least recently used tag.
	var oldest string
	var oldestTime time.Time
	for t, s := range c.Tags {
		if oldest == "" || s.LastModified.Before(oldestTime) {
			oldest, oldestTime = t, s.LastModified
		}
	}
	if oldest == "" {
		return "1"
	}
	recycled := c.Tags[oldest].ColorID
	delete(c.Tags, oldest)
	return c.claim(tag, recycled)
}

func (c *ColorCache) claim(tag, colorID string) string {
	c.Tags[tag] = &TagState{
		ColorID:      colorID,
		Blocks:       1,
		LastModified: c.now(),
	}
	c.dirty = true
	return colorID
}
