package session

// Partial holds the fields one envelope contributes to the session it is
// merged into. Nil fields leave the target unchanged.
type Partial struct {
	Strategy    *string
	Consultants map[Role]any
	Verdict     *Verdict
}

// Empty reports whether the partial changes nothing.
func (p Partial) Empty() bool {
	return p.Strategy == nil && len(p.Consultants) == 0 && p.Verdict == nil
}

// SetStrategy sets the strategy narrative.
func (p *Partial) SetStrategy(strategy string) {
	p.Strategy = &strategy
}

// SetFinding records a consultant finding for role.
func (p *Partial) SetFinding(role Role, finding any) {
	if p.Consultants == nil {
		p.Consultants = make(map[Role]any)
	}
	p.Consultants[role] = finding
}

// SetVerdict sets the terminal verdict.
func (p *Partial) SetVerdict(v Verdict) {
	p.Verdict = &v
}

// Patch is the classifier's decision for one envelope: either a new session
// to append, or a partial to merge into the most recent session.
type Patch struct {
	New   *Session
	Merge *Partial
}

// NewSessionPatch wraps a session to be appended.
func NewSessionPatch(s Session) Patch {
	return Patch{New: &s}
}

// MergePatch wraps a partial to be merged into the last session.
func MergePatch(p Partial) Patch {
	return Patch{Merge: &p}
}

// IsNew reports whether the patch opens a new session.
func (p Patch) IsNew() bool {
	return p.New != nil
}
