package utils

import "time"

// Clock abstracts time.Now so services can be pinned to a fixed time in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used outside of tests.
type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock always reports FixedNow.
type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}
