// Package timer turns a textual timer specification into a live countdown.
//
// # Timer Specifications
//
// A specification is either a minute count ("05", "90") or a wall-clock end
// time ("HH:MM"). Anything containing a colon is treated as an end time.
//
// Malformed input never fails: non-numeric minute counts resolve to zero
// minutes and non-numeric clock components resolve to zero. ResolveDetailed
// reports when such a substitution happened.
//
// # End Times
//
// An end time is placed on the current calendar day in the location of the
// supplied "now". If that instant is already in the past it moves to the same
// wall-clock time on the next calendar day, which is not always 24 hours later
// across a DST change.
//
// # Countdown
//
// A Countdown derives whole remaining seconds from the fixed target on every
// tick. Once it reaches zero it latches: later ticks keep reporting "00:00"
// and the ended state, even if the clock moves backwards.
package timer
