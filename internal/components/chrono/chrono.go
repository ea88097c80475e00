package chrono

import (
	"time"
	_ "time/tzdata"
)

// Admissions are published by Moscow universities, so "today" is a Moscow day.
const DefaultLocation = "Europe/Moscow"

// API is the interface that anything depending on the system clock should use.
//
// note: fault injection point
type API interface {
	Now() time.Time
	Location() *time.Location
}

type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl() (StandardImpl, error) {
	location, err := time.LoadLocation(DefaultLocation)
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: location}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// Fixed is an API that always returns the same instant, for tests.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time {
	return f.At
}

func (f Fixed) Location() *time.Location {
	return f.At.Location()
}

// Day formats the calendar day of t in the clock's location, the key results
// are stored under.
func Day(clock API, t time.Time) string {
	return t.In(clock.Location()).Format(time.DateOnly)
}
