package model

import (
	"fmt"
	"time"

	"shop-backend/internal/config"
)

const DateLayout = "2006-01-02"

// Interval is a half-open [Start, End) time span.
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, t ServiceType) Interval {
	return Interval{Start: start, End: start.Add(t.Duration())}
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Slot is one bookable start time.
type Slot struct {
	Datetime  time.Time `json:"datetime"`
	Time      string    `json:"time"`
	Available bool      `json:"available"`
	Duration  int       `json:"duration"`
}

type BusinessHours struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

type AvailableSlotsResponse struct {
	Date          string        `json:"date"`
	Type          ServiceType   `json:"type"`
	Slots         []Slot        `json:"slots"`
	BusinessHours BusinessHours `json:"businessHours"`
}

// Calendar holds the business-hours rules used for slot generation and booking checks.
type Calendar struct {
	loc       *time.Location
	openHour  int
	closeHour int
	minNotice time.Duration
	step      time.Duration
}

func NewCalendar(cfg config.BookingConfig) (*Calendar, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load booking timezone: %w", err)
	}
	step := time.Duration(cfg.SlotIntervalM) * time.Minute
	if step <= 0 {
		step = time.Hour
	}
	return &Calendar{
		loc:       loc,
		openHour:  cfg.OpenHour,
		closeHour: cfg.CloseHour,
		minNotice: cfg.MinNotice,
		step:      step,
	}, nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func (c *Calendar) BusinessHours() BusinessHours {
	return BusinessHours{
		Start:    fmt.Sprintf("%02d:00", c.openHour),
		End:      fmt.Sprintf("%02d:00", c.closeHour),
		Timezone: c.loc.String(),
	}
}

// ParseDay parses YYYY-MM-DD as local midnight.
func (c *Calendar) ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, c.loc)
}

// DayOf truncates t to local midnight.
func (c *Calendar) DayOf(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// businessWindow returns the open and closing instants of day in wall-clock time.
func (c *Calendar) businessWindow(day time.Time) (open, closing time.Time) {
	y, m, d := day.In(c.loc).Date()
	return time.Date(y, m, d, c.openHour, 0, 0, 0, c.loc), time.Date(y, m, d, c.closeHour, 0, 0, 0, c.loc)
}

// BookingWindow is the scheduled_date range whose bookings can overlap a slot on day.
func (c *Calendar) BookingWindow(day time.Time) (from, to time.Time) {
	day = c.DayOf(day)
	return day.Add(-MaxDuration), day.AddDate(0, 0, 1)
}

// AvailableSlots lists the free start times of day for t, ascending.
// A start is dropped when it is inside the notice window or overlaps a booking.
func (c *Calendar) AvailableSlots(day time.Time, t ServiceType, booked []Interval, now time.Time) []Slot {
	open, closing := c.businessWindow(day)
	earliest := now.Add(c.minNotice)

	slots := []Slot{}
	for start := open; start.Before(closing); start = start.Add(c.step) {
		if start.Before(earliest) {
			continue
		}
		if overlapsAny(NewInterval(start, t), booked) {
			continue
		}
		slots = append(slots, Slot{
			Datetime:  start,
			Time:      start.Format("15:04"),
			Available: true,
			Duration:  int(t.Duration() / time.Minute),
		})
	}
	return slots
}

// ValidateStart checks a requested start against business hours, notice and existing bookings.
// Starts need not fall on the slot grid.
func (c *Calendar) ValidateStart(start time.Time, t ServiceType, booked []Interval, now time.Time) error {
	open, closing := c.businessWindow(start)

	if start.Before(open) || !start.Before(closing) {
		hours := c.BusinessHours()
		return ErrOutsideBusinessHours.WithDetails(map[string]interface{}{
			"businessHours": hours,
		})
	}
	if start.Before(now.Add(c.minNotice)) {
		return ErrInsufficientNotice.WithDetails(map[string]interface{}{
			"earliest": now.Add(c.minNotice).In(c.loc).Format(time.RFC3339),
		})
	}
	if overlapsAny(NewInterval(start, t), booked) {
		return ErrSlotUnavailable.WithDetails(map[string]interface{}{
			"scheduledDate": start.In(c.loc).Format(time.RFC3339),
		})
	}
	return nil
}

func overlapsAny(slot Interval, booked []Interval) bool {
	for _, b := range booked {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}
