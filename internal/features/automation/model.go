package automation

import (
	"time"

	"go-taller/pkg/condition"
)

// Hook is an operator-defined script that runs when a workflow event fires.
// Typical use: ping the waiting-room display when an express order finishes,
// or flag quality control for warranty work. An optional filter narrows the
// hook to matching events without touching the script.
type Hook struct {
	ID        string               `json:"id" bson:"id"`
	Name      string               `json:"name" bson:"name"`
	Event     string               `json:"event" bson:"event"` // workflow.EventType value
	Filter    *condition.RuleGroup `json:"filter,omitempty" bson:"filter,omitempty"`
	Script    string               `json:"script" bson:"script"`
	Enabled   bool                 `json:"enabled" bson:"enabled"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}
