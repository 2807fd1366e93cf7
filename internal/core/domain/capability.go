package domain

// Capability describes one extraction strategy known to the registry and
// whether it could be registered on this host.
type Capability struct {
	Kind     Kind
	Strategy string
	Method   Method

	// Priority is the 1-based position in the kind's cascade.
	// Zero for unavailable strategies.
	Priority int

	Available bool

	// Reason explains why an unavailable strategy was skipped.
	Reason string
}
