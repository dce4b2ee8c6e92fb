// Package calendar wraps the Google Calendar API behind two small
// interfaces: a day-window event lister for the read path and an event
// inserter for the write path.
//
// Reads authenticate with an API key and only reach calendars that are
// publicly readable or shared with the key's project; writes use the
// per-user OAuth token source. Every provider call carries a bounded
// timeout, and a deadline hit is reported as a timeout rather than a
// generic provider failure.
package calendar
