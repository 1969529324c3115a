// Package response defines the canonical answer tokens for signalling
// questions and normalizes raw answers into them.
package response

import "strings"

// Response is a canonical answer token.
type Response string

const (
	Yes             Response = "Y"
	ProbablyYes     Response = "PY"
	ProbablyNo      Response = "PN"
	No              Response = "N"
	NoInformation   Response = "NI"
	NotApplicable   Response = "NA"
	StrongNo        Response = "SN"
	WeakNo          Response = "WN"
	StrongYes       Response = "SY"
	WeakYes         Response = "WY"
	VeryProbablyYes Response = "VPY"
)

// Group is an ordered set of tokens. It is used both as a question's
// alphabet and as the operand of rule predicates.
type Group []Response

// Has reports whether r is a member of g.
func (g Group) Has(r Response) bool {
	for _, m := range g {
		if m == r {
			return true
		}
	}
	return false
}

// With returns a new group holding g followed by extra.
func (g Group) With(extra ...Response) Group {
	out := make(Group, 0, len(g)+len(extra))
	out = append(out, g...)
	return append(out, extra...)
}

func (g Group) String() string {
	parts := make([]string, len(g))
	for i, r := range g {
		parts[i] = string(r)
	}
	return strings.Join(parts, "/")
}

// Predicate groups.
var (
	YesPY   = Group{Yes, ProbablyYes}
	NoPN    = Group{No, ProbablyNo}
	YesPYNI = Group{Yes, ProbablyYes, NoInformation}
	NoPNNI  = Group{No, ProbablyNo, NoInformation}
	NI      = Group{NoInformation}
	NA      = Group{NotApplicable}
)

// Alphabets.
var (
	// Core is accepted by every question.
	Core = Group{Yes, ProbablyYes, ProbablyNo, No, NoInformation}
	// CoreNA adds NotApplicable for conditionally asked questions.
	CoreNA = Core.With(NotApplicable)
	// GradedYes distinguishes strong and weak affirmatives.
	GradedYes = Core.With(StrongYes, WeakYes)
	// GradedNo distinguishes strong and weak negatives.
	GradedNo = Core.With(StrongNo, WeakNo)
	// Controlled is the alphabet of the confounder-control question.
	Controlled = Core.With(StrongNo, WeakNo, VeryProbablyYes)
)

// Question is a single closed-response signalling question.
type Question struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Alphabet Group  `json:"alphabet" yaml:"alphabet"`
}

// Accepts reports whether r is in the question's alphabet.
func (q Question) Accepts(r Response) bool {
	return q.Alphabet.Has(r)
}

// Answers maps question IDs to canonical tokens.
type Answers map[string]Response

// In reports whether question q was answered with a token from g.
func (a Answers) In(q string, g Group) bool {
	r, ok := a[q]
	return ok && g.Has(r)
}

// Is reports whether question q was answered exactly r.
func (a Answers) Is(q string, r Response) bool {
	got, ok := a[q]
	return ok && got == r
}

// Count returns how many of qs were answered with a token from g.
func (a Answers) Count(g Group, qs ...string) int {
	n := 0
	for _, q := range qs {
		if a.In(q, g) {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of a.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
