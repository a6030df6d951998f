package entities

import "fmt"

// DelayKind represents the shape of a supplier replenishment delay.
type DelayKind int

const (
	DelayKindFixed DelayKind = iota
	DelayKindConditional
	DelayKindInvalid
)

// String method for DelayKind enum
func (k DelayKind) String() string {
	switch k {
	case DelayKindFixed:
		return "Fixed"
	case DelayKindConditional:
		return "Conditional"
	case DelayKindInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// DelayInfo is the parsed form of a replenishment-delay string. For
// DelayKindInvalid, Weeks is zero and Condition is empty.
type DelayInfo struct {
	Kind      DelayKind
	Weeks     int
	Condition string
	RawText   string
}

// String renders the delay the way the supplier quoted it.
func (d DelayInfo) String() string {
	switch d.Kind {
	case DelayKindFixed:
		return fmt.Sprintf("%d weeks", d.Weeks)
	case DelayKindConditional:
		return fmt.Sprintf("%d weeks after %s", d.Weeks, d.Condition)
	default:
		return fmt.Sprintf("invalid delay: %s", d.RawText)
	}
}
