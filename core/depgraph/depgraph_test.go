package depgraph

import (
	"testing"

	"github.com/platotv/plato/core/diag"
	"github.com/platotv/plato/core/model"
)

func chainSnapshot() *model.Snapshot {
	// Template chain: tpl-c depends on tpl-b, tpl-b depends on tpl-a.
	return &model.Snapshot{
		Templates: []model.TaskTemplate{
			{ID: "tpl-a", Name: "A"},
			{ID: "tpl-b", Name: "B", HasDependency: true, DependsOnTemplateIDs: []string{"tpl-a"}},
			{ID: "tpl-c", Name: "C", HasDependency: true, DependsOnTemplateIDs: []string{"tpl-b"}},
		},
	}
}

func TestBuildLinksSameContestantPrereqs(t *testing.T) {
	snap := chainSnapshot()
	snap.Tasks = []model.DailyTask{
		{ID: "t-a", ContestantID: "c1", TemplateID: "tpl-a", Status: model.StatusPending},
		{ID: "t-b", ContestantID: "c1", TemplateID: "tpl-b", Status: model.StatusPending},
		{ID: "t-c", ContestantID: "c1", TemplateID: "tpl-c", Status: model.StatusPending},
	}
	g, missing, cfgErr := Build(snap)
	if cfgErr != nil {
		t.Fatalf("unexpected config error: %v", cfgErr)
	}
	if len(missing) != 0 {
		t.Fatalf("nothing should be missing: %v", missing)
	}
	if deps := g.Prereqs("t-c"); len(deps) != 1 || deps[0] != "t-b" {
		t.Fatalf("t-c should depend on t-b, got %v", deps)
	}
	if deps := g.Prereqs("t-b"); len(deps) != 1 || deps[0] != "t-a" {
		t.Fatalf("t-b should depend on t-a, got %v", deps)
	}
}

func TestBuildReportsDeepestMissingTemplate(t *testing.T) {
	snap := chainSnapshot()
	// Only the leaf task exists: both tpl-b and the transitive tpl-a are
	// unmet, and the reasons must name them so a producer can create the
	// chain bottom-up.
	snap.Tasks = []model.DailyTask{
		{ID: "t-c", ContestantID: "c1", TemplateID: "tpl-c", Status: model.StatusPending},
	}
	_, missing, cfgErr := Build(snap)
	if cfgErr != nil {
		t.Fatalf("unexpected config error: %v", cfgErr)
	}
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing templates, got %v", missing)
	}
	got := map[string]bool{}
	for _, r := range missing {
		if r.Code != diag.CodeDependencyMissing {
			t.Fatalf("expected DEPENDENCY_MISSING, got %s", r.Code)
		}
		if r.ContestantID != "c1" || r.TaskID != "t-c" {
			t.Fatalf("unexpected reason payload: %+v", r)
		}
		got[r.MissingTemplateID] = true
	}
	if !got["tpl-a"] || !got["tpl-b"] {
		t.Fatalf("expected tpl-a and tpl-b missing, got %v", got)
	}
}

func TestBuildDeduplicatesMissingPerContestantTemplate(t *testing.T) {
	snap := &model.Snapshot{
		Templates: []model.TaskTemplate{
			{ID: "tpl-a", Name: "A"},
			{ID: "tpl-b", Name: "B", HasDependency: true, DependsOnTemplateIDs: []string{"tpl-a"}},
		},
		Tasks: []model.DailyTask{
			{ID: "t-b1", ContestantID: "c1", TemplateID: "tpl-b", Status: model.StatusPending},
			{ID: "t-b2", ContestantID: "c1", TemplateID: "tpl-b", Status: model.StatusPending},
		},
	}
	_, missing, cfgErr := Build(snap)
	if cfgErr != nil {
		t.Fatalf("unexpected config error: %v", cfgErr)
	}
	if len(missing) != 1 {
		t.Fatalf("expected one reason per (contestant, template), got %v", missing)
	}
}

func TestBuildRejectsCycles(t *testing.T) {
	snap := &model.Snapshot{
		Templates: []model.TaskTemplate{
			{ID: "tpl-a", HasDependency: true, DependsOnTemplateIDs: []string{"tpl-b"}},
			{ID: "tpl-b", HasDependency: true, DependsOnTemplateIDs: []string{"tpl-a"}},
		},
	}
	_, _, cfgErr := Build(snap)
	if cfgErr == nil || cfgErr.Code != diag.CodeCycleDetected {
		t.Fatalf("expected CYCLE_DETECTED, got %v", cfgErr)
	}
}

func TestBuildRejectsEmptyDependencyFlag(t *testing.T) {
	snap := &model.Snapshot{
		Templates: []model.TaskTemplate{{ID: "tpl-a", HasDependency: true}},
	}
	_, _, cfgErr := Build(snap)
	if cfgErr == nil || cfgErr.Code != diag.CodeInvalidDependency {
		t.Fatalf("expected INVALID_DEPENDENCY, got %v", cfgErr)
	}
}

func TestLayersOrderPrereqsFirst(t *testing.T) {
	snap := chainSnapshot()
	snap.Tasks = []model.DailyTask{
		{ID: "t-a", ContestantID: "c1", TemplateID: "tpl-a", Status: model.StatusPending},
		{ID: "t-b", ContestantID: "c1", TemplateID: "tpl-b", Status: model.StatusPending},
		{ID: "t-c", ContestantID: "c1", TemplateID: "tpl-c", Status: model.StatusPending},
	}
	g, _, cfgErr := Build(snap)
	if cfgErr != nil {
		t.Fatalf("unexpected config error: %v", cfgErr)
	}
	working := []*model.DailyTask{&snap.Tasks[2], &snap.Tasks[0], &snap.Tasks[1]}
	layers := g.Layers(working)
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(layers))
	}
	order := []string{layers[0][0].ID, layers[1][0].ID, layers[2][0].ID}
	if order[0] != "t-a" || order[1] != "t-b" || order[2] != "t-c" {
		t.Fatalf("unexpected layer order: %v", order)
	}
}
