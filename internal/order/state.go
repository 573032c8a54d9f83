package order

// statusRank orders the fulfilment pipeline; cancelled sits outside it.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
	StatusCancelled:  -1,
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next. Forward
// moves may skip steps; any open order may be cancelled.
func (s Status) CanTransition(next Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok || s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return to > from
}
