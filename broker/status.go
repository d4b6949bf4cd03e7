package broker

// OrderStatus is the broker-reported order state. Values outside the
// constants below (accepted, pending_new, ...) are carried through verbatim
// and treated as still pending.
type OrderStatus string

const (
	StatusNew             OrderStatus = "new"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCanceled        OrderStatus = "canceled"
	StatusRejected        OrderStatus = "rejected"
	StatusExpired         OrderStatus = "expired"
	// StatusUnknown stands in for a status we could not fetch or parse.
	// It is never terminal: an unreadable status must not end a wait early
	// and must never be mistaken for a fill.
	StatusUnknown OrderStatus = "unknown"
)

// Terminal reports whether no further transitions are expected.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusRejected, StatusExpired:
		return true
	}
	return false
}
