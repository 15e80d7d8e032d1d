package main

import (
	"database/sql/driver"
	"fmt"
	"time"
)

type user struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash []byte `json:"-"`
}

type crop struct {
	ID                  int          `json:"id"`
	UserID              int          `json:"userId"`
	Name                string       `json:"name"`
	Quantity            int          `json:"quantity"`
	PlantedDate         calendarDate `json:"plantedDate"`
	ExpectedHarvestDate calendarDate `json:"expectedHarvestDate"`
	Status              string       `json:"status"`
}

type inventoryItem struct {
	ID       int    `json:"id"`
	UserID   int    `json:"userId"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

type task struct {
	ID          int          `json:"id"`
	UserID      int          `json:"userId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     calendarDate `json:"dueDate"`
	Priority    string       `json:"priority"`
	Completed   bool         `json:"completed"`
}

// Statuses and priorities the client picks from. The server stores whatever
// it is given; these are not enforced on the wire.
const (
	cropStatusGrowing   = "Growing"
	cropStatusReady     = "Ready"
	cropStatusHarvested = "Harvested"
	cropStatusProblem   = "Problem"

	taskPriorityLow    = "Low"
	taskPriorityMedium = "Medium"
	taskPriorityHigh   = "High"
	taskPriorityUrgent = "Urgent"
)

type cropDraft struct {
	Name                string       `json:"name"`
	Quantity            int          `json:"quantity"`
	PlantedDate         calendarDate `json:"plantedDate"`
	ExpectedHarvestDate calendarDate `json:"expectedHarvestDate"`
	Status              string       `json:"status"`
}

type inventoryDraft struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

type taskDraft struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     calendarDate `json:"dueDate"`
	Priority    string       `json:"priority"`
	Completed   bool         `json:"completed"`
}

const calendarDateLayout = "2006-01-02"

// calendarDate is a day-precision date. It marshals as "2006-01-02" and
// accepts either that layout or a full RFC 3339 timestamp, which is what the
// browser client sends from its date pickers.
type calendarDate struct {
	time.Time
}

func (d calendarDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(calendarDateLayout) + `"`), nil
}

func (d *calendarDate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	s = s[1 : len(s)-1]
	t, err := time.Parse(calendarDateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return fmt.Errorf("invalid date %q: must be YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

func (d calendarDate) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *calendarDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into calendarDate", src)
	}
}

func (d *calendarDate) scanString(s string) error {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05",
		calendarDateLayout,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("cannot scan %q into calendarDate", s)
}

func newCalendarDate(year int, month time.Month, day int) calendarDate {
	return calendarDate{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}
