package requirement

import (
	"fmt"

	"github.com/platotv/plato/core/diag"
	"github.com/platotv/plato/core/model"
)

// Validate checks a template's requirement expression against the snapshot
// inventory. Malformed expressions are authoring errors, not infeasibility.
func Validate(snap *model.Snapshot, tpl *model.TaskTemplate) *diag.ConfigError {
	req := tpl.Requirement
	if req.Empty() {
		return nil
	}
	malformed := func(detail string) *diag.ConfigError {
		return &diag.ConfigError{Code: diag.CodeMalformedRequirement, TemplateID: tpl.ID, Detail: detail}
	}
	for _, line := range req.ByType {
		if line.Quantity <= 0 {
			return malformed(fmt.Sprintf("byType %s: quantity %d", line.ResourceTypeID, line.Quantity))
		}
		if !typeExists(snap, line.ResourceTypeID) {
			return malformed(fmt.Sprintf("byType references unknown type %s", line.ResourceTypeID))
		}
	}
	for _, line := range req.ByItem {
		// A concrete unit can serve a single slot; pools are modelled as
		// separate items.
		if line.Quantity != 1 {
			return malformed(fmt.Sprintf("byItem %s: quantity must be 1, got %d", line.ResourceItemID, line.Quantity))
		}
		if snap.Item(line.ResourceItemID) == nil {
			return malformed(fmt.Sprintf("byItem references unknown item %s", line.ResourceItemID))
		}
	}
	if req.AnyOf != nil {
		if req.AnyOf.Quantity <= 0 {
			return malformed(fmt.Sprintf("anyOf: quantity %d", req.AnyOf.Quantity))
		}
		if req.AnyOf.Quantity > len(req.AnyOf.ResourceItemIDs) {
			return malformed(fmt.Sprintf("anyOf: quantity %d exceeds %d candidates", req.AnyOf.Quantity, len(req.AnyOf.ResourceItemIDs)))
		}
		for _, id := range req.AnyOf.ResourceItemIDs {
			if snap.Item(id) == nil {
				return malformed(fmt.Sprintf("anyOf references unknown item %s", id))
			}
		}
	}
	return nil
}

// DetectCompositeCycles walks the bundle composition graph and rejects
// cycles. Reservation would otherwise recurse forever through the closure.
func DetectCompositeCycles(snap *model.Snapshot) *diag.ConfigError {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	state := map[string]int{}
	var visit func(id string) *diag.ConfigError
	visit = func(id string) *diag.ConfigError {
		switch state[id] {
		case grey:
			return &diag.ConfigError{Code: diag.CodeCycleDetected, ItemID: id, Detail: "composite item cycle"}
		case black:
			return nil
		}
		state[id] = grey
		if it := snap.Item(id); it != nil {
			for _, c := range it.Components {
				if err := visit(c.ItemID); err != nil {
					return err
				}
			}
		}
		state[id] = black
		return nil
	}
	for i := range snap.Items {
		if err := visit(snap.Items[i].ID); err != nil {
			return err
		}
	}
	return nil
}

func typeExists(snap *model.Snapshot, typeID string) bool {
	for i := range snap.ResourceTypes {
		if snap.ResourceTypes[i].ID == typeID {
			return true
		}
	}
	return false
}
