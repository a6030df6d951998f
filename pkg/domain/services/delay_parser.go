package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

// DelayParser interprets supplier replenishment-delay strings. The grammar
// accepts English and French spellings since the master data mixes both:
// "3 weeks" / "3 semaines" and "2 weeks after proof approval" /
// "2 semaines après validation bat".
type DelayParser struct {
	fixedPattern       *regexp.Regexp
	conditionalPattern *regexp.Regexp
}

// NewDelayParser creates a delay parser with the default grammar.
func NewDelayParser() *DelayParser {
	return &DelayParser{
		fixedPattern: regexp.MustCompile(`(?i)^(\d+)\s+(?:weeks?|semaines?)$`),
		conditionalPattern: regexp.MustCompile(
			`(?i)^(\d+)\s+(?:weeks?|semaines?)\s+(?:after|après|apres)\s+(.+)$`,
		),
	}
}

// Parse interprets a delay string. Unrecognized text yields DelayKindInvalid
// with zero weeks; Parse never returns an error.
func (p *DelayParser) Parse(text string) entities.DelayInfo {
	trimmed := strings.TrimSpace(text)

	if m := p.fixedPattern.FindStringSubmatch(trimmed); m != nil {
		weeks, err := strconv.Atoi(m[1])
		if err == nil {
			return entities.DelayInfo{
				Kind:    entities.DelayKindFixed,
				Weeks:   weeks,
				RawText: trimmed,
			}
		}
	}

	if m := p.conditionalPattern.FindStringSubmatch(trimmed); m != nil {
		weeks, err := strconv.Atoi(m[1])
		if err == nil {
			return entities.DelayInfo{
				Kind:      entities.DelayKindConditional,
				Weeks:     weeks,
				Condition: strings.TrimSpace(m[2]),
				RawText:   trimmed,
			}
		}
	}

	return entities.DelayInfo{
		Kind:    entities.DelayKindInvalid,
		RawText: trimmed,
	}
}

// ProjectDelivery computes the projected delivery date for a parsed delay.
// Fixed delays always yield a date. Conditional delays yield one only when
// the condition is already satisfied; otherwise the projection is pending.
// Invalid delays never yield a date. The returned status string is suitable
// for user-facing output. Pure function, never errors.
func (p *DelayParser) ProjectDelivery(
	delay entities.DelayInfo,
	orderDate time.Time,
	conditionSatisfied bool,
) (*time.Time, string) {
	switch delay.Kind {
	case entities.DelayKindFixed:
		date := orderDate.AddDate(0, 0, delay.Weeks*7)
		return &date, fmt.Sprintf("estimated delivery %s", date.Format("02/01/2006"))

	case entities.DelayKindConditional:
		if conditionSatisfied {
			date := orderDate.AddDate(0, 0, delay.Weeks*7)
			return &date, fmt.Sprintf("estimated delivery %s (condition satisfied)", date.Format("02/01/2006"))
		}
		return nil, fmt.Sprintf("pending condition: %s", delay.Condition)

	default:
		return nil, fmt.Sprintf("invalid delay: %s", delay.RawText)
	}
}
