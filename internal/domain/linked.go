package domain

// QuoteRef is the slice of a quote the support service needs for display.
type QuoteRef struct {
	ID     string
	Number string
}

// ReservationRef is the slice of a reservation the support service needs for display.
type ReservationRef struct {
	ID     string
	Number string
}
