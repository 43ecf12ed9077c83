package service

import "errors"

// ErrInvalidCapacity is returned when a mass is created with fewer than
// one seat.
var ErrInvalidCapacity = errors.New("capacity must be at least 1")

// ErrInvalidSchedule is returned when a mass date or time does not match
// the expected wall-clock layouts.
var ErrInvalidSchedule = errors.New("date must be formatted as 2006-01-02 and time as 15:04")

// ErrEnrollmentDenied is the single outward-facing enrollment failure.
// Whether the mass was full, the volunteer was already enrolled, or the
// mass did not exist is deliberately not distinguished, so a caller
// cannot learn seat-race details from the error.
var ErrEnrollmentDenied = errors.New("could not enroll: mass may be full or volunteer already enrolled")
