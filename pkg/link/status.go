package link

import "fmt"

// Status is a snapshot of a SharedLink.
type Status struct {
	State State
	// Err is why the link is closed; set only for StateClosed.
	Err error
	// Name and Description identify the application writing the segment;
	// set only for StateInUse.
	Name        string
	Description string
}

func (s Status) String() string {
	switch s.State {
	case StateClosed:
		if s.Err != nil {
			return fmt.Sprintf("closed: %v", s.Err)
		}
		return "closed"
	case StateInUse:
		return fmt.Sprintf("in use by %q (%s)", s.Name, s.Description)
	default:
		return s.State.String()
	}
}
