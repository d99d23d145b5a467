package policydoc

import "strings"

// Allows reports whether the statement grants access.
func (s Statement) Allows() bool { return strings.EqualFold(s.Effect, "Allow") }

// Denies reports whether the statement refuses access.
func (s Statement) Denies() bool { return strings.EqualFold(s.Effect, "Deny") }

// Conditional reports whether the statement carries any condition block.
func (s Statement) Conditional() bool {
	for _, block := range s.Condition {
		if len(block) > 0 {
			return true
		}
	}
	return false
}

// ConditionValues returns the values bound to key under operator. Operator
// and key are matched case-insensitively, as AWS does.
func (s Statement) ConditionValues(operator, key string) (StringList, bool) {
	for op, block := range s.Condition {
		if !strings.EqualFold(op, operator) {
			continue
		}
		for k, v := range block {
			if strings.EqualFold(k, key) {
				return v, true
			}
		}
	}
	return nil, false
}

// PublicPrincipal reports whether the statement applies to everyone.
func (s Statement) PublicPrincipal() bool { return s.Principal.Public() }

// WildcardResource reports whether Resource contains "*".
func (s Statement) WildcardResource() bool { return s.Resource.Contains("*") }

// MatchesAction reports whether the statement's Action covers action, either
// literally or through a "*" or "service:*" pattern.
func (s Statement) MatchesAction(action string) bool {
	service, _, _ := strings.Cut(action, ":")
	for _, a := range s.Action {
		switch {
		case a == "*":
			return true
		case strings.EqualFold(a, action):
			return true
		case strings.EqualFold(a, service+":*"):
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Document-level predicates
// ---------------------------------------------------------------------------

// DeniesInsecureTransport reports whether some Deny statement applies when
// aws:SecureTransport is false.
func (d *Document) DeniesInsecureTransport() bool {
	if d == nil {
		return false
	}
	for _, st := range d.Statement {
		if !st.Denies() {
			continue
		}
		if v, ok := st.ConditionValues("Bool", "aws:SecureTransport"); ok && v.ContainsFold("false") {
			return true
		}
	}
	return false
}

// PubliclyAccessible reports whether some Allow statement grants access to
// every principal without any condition.
func (d *Document) PubliclyAccessible() bool {
	if d == nil {
		return false
	}
	for _, st := range d.Statement {
		if st.Allows() && st.PublicPrincipal() && !st.Conditional() {
			return true
		}
	}
	return false
}

// AllowsWildcardResource reports whether some Allow statement targets "*".
func (d *Document) AllowsWildcardResource() bool {
	if d == nil {
		return false
	}
	for _, st := range d.Statement {
		if st.Allows() && st.WildcardResource() {
			return true
		}
	}
	return false
}

// AllowsUnconditionally reports whether some unconditional Allow statement
// grants action on every resource.
func (d *Document) AllowsUnconditionally(action string) bool {
	if d == nil {
		return false
	}
	for _, st := range d.Statement {
		if st.Allows() && st.MatchesAction(action) && st.WildcardResource() && !st.Conditional() {
			return true
		}
	}
	return false
}
