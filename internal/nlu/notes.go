package nlu

import (
	"fmt"
	"strings"
)

// EncodeNotes renders a result's slots as the semicolon-delimited
// key=value token format the persistence layer stores, e.g.
// "item=oats; meal_time=lunch; portion_g=245".
func EncodeNotes(r *ParseResult) string {
	pairs := r.Slots.Pairs()
	parts := make([]string, 0, len(pairs)+3)
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%s", p.Key, p.Value))
	}
	if is, ok := r.Slots.(*IntakeSlots); ok && is.Secondary != nil {
		parts = append(parts,
			fmt.Sprintf("secondary_intent=%s", is.Secondary.Intent),
			fmt.Sprintf("secondary_item=%s", is.Secondary.Item))
	}
	if r.Meta.TimeInferred {
		parts = append(parts, "time_inferred=true")
	}
	return strings.Join(parts, "; ")
}
