package core

// DBOrdering is a single sort key applied by repositories.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings drops orderings on fields that are not in allowed.
func AllowedOrderings(orderings []DBOrdering, allowed ...string) []DBOrdering {
	if len(orderings) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		set[f] = true
	}
	kept := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if set[ord.Field] {
			kept = append(kept, ord)
		}
	}
	return kept
}
