package diag

import (
	"fmt"
	"strings"
)

// ConfigError is a fatal data or authoring error: cyclic dependencies, a
// malformed requirement expression, a specific-team reference pointing at a
// deleted or inactive team. It identifies the offending object so the data
// can be fixed without re-running the solver blindly.
type ConfigError struct {
	Code        Code
	TemplateID  string
	TemplateIDs []string
	ZoneID      string
	ItemID      string
	TeamID      string
	Detail      string
}

func (e *ConfigError) Error() string {
	parts := []string{string(e.Code)}
	if e.TemplateID != "" {
		parts = append(parts, "template="+e.TemplateID)
	}
	if len(e.TemplateIDs) > 0 {
		parts = append(parts, "templates="+strings.Join(e.TemplateIDs, ","))
	}
	if e.ZoneID != "" {
		parts = append(parts, "zone="+e.ZoneID)
	}
	if e.ItemID != "" {
		parts = append(parts, "item="+e.ItemID)
	}
	if e.TeamID != "" {
		parts = append(parts, "team="+e.TeamID)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	return fmt.Sprintf("configuration error: %s", strings.Join(parts, " "))
}

// Reason converts the configuration error into a wire-level reason.
func (e *ConfigError) Reason() Reason {
	return Reason{
		Code:       e.Code,
		TemplateID: e.TemplateID,
		Message:    e.Error(),
	}
}
