package lists

type Status string

const (
	StatusIdea      Status = "idea"
	StatusSelected  Status = "selected"
	StatusPurchased Status = "purchased"
	StatusReceived  Status = "received"
)

func (s Status) Valid() bool {
	switch s {
	case StatusIdea, StatusSelected, StatusPurchased, StatusReceived:
		return true
	}
	return false
}

// Successor returns the next status in the lifecycle. The second return
// is false for the terminal status.
func (s Status) Successor() (Status, bool) {
	switch s {
	case StatusIdea:
		return StatusSelected, true
	case StatusSelected:
		return StatusPurchased, true
	case StatusPurchased:
		return StatusReceived, true
	}
	return "", false
}

// Purchased reports whether the status counts as purchased spend rather
// than planned spend.
func (s Status) Purchased() bool {
	return s == StatusPurchased || s == StatusReceived
}

// Transition validates a requested status change. Repeating the current
// status is a valid no-op; otherwise only the immediate successor is
// allowed. Skips and backward moves fail.
func Transition(current, requested Status) (Status, error) {
	if !current.Valid() || !requested.Valid() {
		return "", &TransitionError{Current: current, Requested: requested}
	}
	if requested == current {
		return current, nil
	}
	if next, ok := current.Successor(); ok && requested == next {
		return requested, nil
	}
	return "", &TransitionError{Current: current, Requested: requested}
}
