package rules

import "robkit/internal/response"

// Predicate decides whether a rule applies.
type Predicate func(a response.Answers) bool

// In matches when question q was answered from g.
func In(q string, g response.Group) Predicate {
	return func(a response.Answers) bool { return a.In(q, g) }
}

// Is matches when question q was answered exactly r.
func Is(q string, r response.Response) Predicate {
	return func(a response.Answers) bool { return a.Is(q, r) }
}

// AllOf matches when every p matches.
func AllOf(ps ...Predicate) Predicate {
	return func(a response.Answers) bool {
		for _, p := range ps {
			if !p(a) {
				return false
			}
		}
		return true
	}
}

// AnyOf matches when at least one p matches.
func AnyOf(ps ...Predicate) Predicate {
	return func(a response.Answers) bool {
		for _, p := range ps {
			if p(a) {
				return true
			}
		}
		return false
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(a response.Answers) bool { return !p(a) }
}

// Always matches everything.
func Always(response.Answers) bool { return true }
