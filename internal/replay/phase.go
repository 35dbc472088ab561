package replay

// Phase tracks whether live play has begun. It only ever moves forward.
type Phase struct {
	live bool
}

// Live reports whether the match has officially started.
func (p *Phase) Live() bool {
	return p.live
}

// Begin marks the match as started. It reports whether this call changed
// the phase.
func (p *Phase) Begin() bool {
	if p.live {
		return false
	}
	p.live = true
	return true
}
