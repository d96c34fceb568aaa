package requirement

import (
	"testing"

	"github.com/platotv/plato/core/diag"
	"github.com/platotv/plato/core/model"
)

func TestValidateRejectsMalformedExpressions(t *testing.T) {
	snap := resolverSnapshot(t)
	cases := []struct {
		name string
		req  *model.Requirement
	}{
		{"zero byType quantity", &model.Requirement{ByType: []model.TypeRequirement{{ResourceTypeID: "cam", Quantity: 0}}}},
		{"unknown type", &model.Requirement{ByType: []model.TypeRequirement{{ResourceTypeID: "nope", Quantity: 1}}}},
		{"byItem quantity above one", &model.Requirement{ByItem: []model.ItemRequirement{{ResourceItemID: "cam-1", Quantity: 2}}}},
		{"unknown item", &model.Requirement{ByItem: []model.ItemRequirement{{ResourceItemID: "nope", Quantity: 1}}}},
		{"anyOf larger than candidates", &model.Requirement{AnyOf: &model.AnyOfRequirement{Quantity: 3, ResourceItemIDs: []string{"cam-1", "cam-2"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := &model.TaskTemplate{ID: "tpl", Requirement: tc.req}
			err := Validate(snap, tpl)
			if err == nil {
				t.Fatal("expected a configuration error")
			}
			if err.Code != diag.CodeMalformedRequirement {
				t.Fatalf("expected MALFORMED_REQUIREMENT, got %s", err.Code)
			}
		})
	}
}

func TestValidateAcceptsWellFormedExpression(t *testing.T) {
	snap := resolverSnapshot(t)
	tpl := &model.TaskTemplate{ID: "tpl", Requirement: &model.Requirement{
		ByType: []model.TypeRequirement{{ResourceTypeID: "cam", Quantity: 2}},
		ByItem: []model.ItemRequirement{{ResourceItemID: "kit", Quantity: 1}},
		AnyOf:  &model.AnyOfRequirement{Quantity: 1, ResourceItemIDs: []string{"cam-1", "cam-2"}},
	}}
	if err := Validate(snap, tpl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDetectCompositeCycles(t *testing.T) {
	snap := &model.Snapshot{Items: []model.ResourceItem{
		{ID: "a", Available: true, Components: []model.Component{{ItemID: "b", Quantity: 1}}},
		{ID: "b", Available: true, Components: []model.Component{{ItemID: "a", Quantity: 1}}},
	}}
	err := DetectCompositeCycles(snap)
	if err == nil {
		t.Fatal("expected a cycle")
	}
	if err.Code != diag.CodeCycleDetected {
		t.Fatalf("expected CYCLE_DETECTED, got %s", err.Code)
	}

	snap.Items[1].Components = nil
	if err := DetectCompositeCycles(snap); err != nil {
		t.Fatalf("acyclic composition rejected: %v", err)
	}
}
