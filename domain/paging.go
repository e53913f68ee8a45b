package domain

// Window is a deterministic slice over an id-ordered result set.
// Invariants: Offset = page * Limit, Limit > 0, SinceId is an exclusive
// lower bound and MaxId an inclusive upper bound (0 means unbounded).
type Window struct {
	SinceId int64
	MaxId   int64
	Offset  int
	Limit   int
}

// Admit reports whether the given id falls inside the window bounds.
func (w Window) Admit(id int64) bool {
	if id <= w.SinceId {
		return false
	}
	if w.MaxId != 0 && id > w.MaxId {
		return false
	}
	return true
}
