package model

import "time"

// RentalContract is a film/distributor/cinema revenue-share agreement.
// When its rental window closes the scheduler computes the ticket
// revenue attributable to the window, writes one PENDING settlement
// record and moves the contract to PENDING.
type RentalContract struct {
    ID                 uint64         // rental_contracts.id
    FilmID             uint64         // rental_contracts.film_id
    DistributorID      uint64         // rental_contracts.distributor_id
    CinemaID           uint64         // rental_contracts.cinema_id
    StartDate          time.Time      // rental_contracts.start_date
    EndDate            time.Time      // rental_contracts.end_date
    DistributorPercent int64          // rental_contracts.distributor_percent
    Status             ContractStatus // rental_contracts.status
    CreatedAt          time.Time      // rental_contracts.created_at
    UpdatedAt          time.Time      // rental_contracts.updated_at
}

// WindowClosed reports whether the contract's rental window has ended.
func (c *RentalContract) WindowClosed(now time.Time) bool {
    return now.After(c.EndDate)
}

// PaymentHistory is one settlement record raised against a rental
// contract.  The scheduler writes it in PENDING state; downstream
// financial bookkeeping advances it from there.
type PaymentHistory struct {
    ID          uint64        // payment_history.id
    ContractID  uint64        // payment_history.contract_id
    AmountCents int64         // payment_history.amount_cents
    Status      PaymentStatus // payment_history.status
    CreatedAt   time.Time     // payment_history.created_at
}
