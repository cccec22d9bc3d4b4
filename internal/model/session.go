package model

import "time"

// Session represents a scheduled screening of a film in a hall.  The
// engine reads sessions for pricing and availability and advances
// their status by wall-clock time; catalog maintenance of films and
// halls lives outside this service.
//
// Fields:
//  ID         – primary key identifier.
//  FilmID     – film being screened.
//  CinemaID   – cinema hosting the screening (denormalized for
//               contract settlement queries).
//  HallID     – hall where the screening takes place.
//  StartsAt   – when the screening begins.
//  EndsAt     – when the screening ends (must be after StartsAt).
//  PriceCents – per-seat ticket price in minor units.
//  Status     – SCHEDULED, ONGOING, COMPLETED or CANCELLED.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Session struct {
    ID         uint64        // sessions.id
    FilmID     uint64        // sessions.film_id
    CinemaID   uint64        // sessions.cinema_id
    HallID     uint64        // sessions.hall_id
    StartsAt   time.Time     // sessions.starts_at
    EndsAt     time.Time     // sessions.ends_at
    PriceCents int64         // sessions.price_cents
    Status     SessionStatus // sessions.status
    CreatedAt  time.Time     // sessions.created_at
    UpdatedAt  time.Time     // sessions.updated_at
}

// Bookable reports whether new reservations may still be taken for the
// session at the given instant.  A session whose start has passed, or
// which is not in SCHEDULED state, rejects new tickets.
func (s *Session) Bookable(now time.Time) bool {
    return s.Status == SessionScheduled && now.Before(s.StartsAt)
}
