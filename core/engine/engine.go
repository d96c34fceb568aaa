// Package engine orchestrates plan generation: it loads the snapshot,
// validates the configuration, runs the allocator pipeline and commits the
// result. Runs for the same plan are serialized; runs for different plans
// are independent.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/platotv/plato/core/allocate"
	"github.com/platotv/plato/core/analyze"
	"github.com/platotv/plato/core/calendar"
	"github.com/platotv/plato/core/depgraph"
	"github.com/platotv/plato/core/diag"
	"github.com/platotv/plato/core/events"
	"github.com/platotv/plato/core/logger"
	"github.com/platotv/plato/core/metrics"
	"github.com/platotv/plato/core/model"
	"github.com/platotv/plato/core/progress"
	"github.com/platotv/plato/core/requirement"
	"github.com/platotv/plato/core/transport"
	"github.com/platotv/plato/internal/eventbus"
)

// ErrRunInFlight is returned when a generation for the same plan is already
// running. Callers retry once the running generation finishes.
var ErrRunInFlight = errors.New("engine: generation already in flight for this plan")

// Config tunes engine behaviour.
type Config struct {
	// MealTemplateName names the designated meal task template.
	MealTemplateName string `json:"meal_template_name"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MealTemplateName == "" {
		c.MealTemplateName = "Comida"
	}
}

// Result is the outcome of one generation run. Infeasible results carry
// reasons and no committed schedule.
type Result struct {
	DailyTasks []model.DailyTask `json:"dailyTasks,omitempty"`
	Warnings   []diag.Warning    `json:"warnings,omitempty"`
	Reasons    []diag.Reason     `json:"reasons,omitempty"`
	Infeasible bool              `json:"-"`
	// ConfigErr marks infeasibility caused by plan configuration rather
	// than scheduling pressure; telemetry keeps the two apart.
	ConfigErr bool `json:"-"`
}

// Engine runs generations and estimates over plans.
type Engine struct {
	reader SnapshotReader
	writer TaskWriter
	sink   metrics.Sink
	bus    eventbus.EventBus
	log    logger.Logger
	cfg    Config

	mu       sync.Mutex
	inflight map[string]bool
}

// New wires an engine. sink and bus may be nil.
func New(reader SnapshotReader, writer TaskWriter, sink metrics.Sink, bus eventbus.EventBus, log logger.Logger, cfg Config) (*Engine, error) {
	if reader == nil || writer == nil {
		return nil, fmt.Errorf("engine: nil store provided")
	}
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	cfg.SetDefaults()
	return &Engine{
		reader:   reader,
		writer:   writer,
		sink:     sink,
		bus:      bus,
		log:      log,
		cfg:      cfg,
		inflight: make(map[string]bool),
	}, nil
}

// Generate runs one generation for the plan in the given mode. The returned
// error covers infrastructure failures only; infeasibility and configuration
// problems come back as structured reasons on the result.
func (e *Engine) Generate(ctx context.Context, planID string, mode model.Mode) (*Result, error) {
	if err := e.acquire(planID); err != nil {
		return nil, err
	}
	defer e.release(planID)

	started := time.Now()
	e.publish(events.GenerationStarted{PlanID: planID, Mode: mode, Time: started})

	snap, err := e.reader.LoadSnapshot(ctx, planID)
	if err != nil {
		e.finish(planID, mode, metrics.OutcomeError, nil, started)
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	res := e.run(ctx, snap, mode)
	outcome := outcomeOf(mode, res)
	e.finish(planID, mode, outcome, res, started)
	return res, nil
}

// run executes the pipeline against a loaded snapshot.
func (e *Engine) run(ctx context.Context, snap *model.Snapshot, mode model.Mode) *Result {
	if cfgErr := e.validate(snap); cfgErr != nil {
		e.log.Errorf("plan %s: %v", snap.Plan.ID, cfgErr)
		return &Result{Infeasible: true, ConfigErr: true, Reasons: []diag.Reason{cfgErr.Reason()}}
	}

	graph, missing, cfgErr := depgraph.Build(snap)
	if cfgErr != nil {
		e.log.Errorf("plan %s: %v", snap.Plan.ID, cfgErr)
		return &Result{Infeasible: true, ConfigErr: true, Reasons: []diag.Reason{cfgErr.Reason()}}
	}

	working := allocate.WorkingSet(snap, mode)
	if len(working) == 0 && !hasTasks(snap) {
		return &Result{DailyTasks: []model.DailyTask{}}
	}

	// Missing prerequisites are hard errors, but only for tasks this mode
	// would actually place.
	if reasons := relevantMissing(missing, working); len(reasons) > 0 {
		return &Result{Infeasible: true, Reasons: reasons}
	}

	result := e.allocateWithTransport(snap, graph, mode)

	if len(result.Unplaced) > 0 && mode.AllOrNothing() {
		// All-or-nothing: no partial schedule leaves the engine.
		return &Result{Infeasible: true, Reasons: result.Unplaced}
	}

	updated := applyPlacements(snap, result)
	warnings := analyze.New(snap, e.cfg.MealTemplateName).Run(updated)
	if !mode.AllOrNothing() {
		for _, r := range result.Unplaced {
			warnings = append(warnings, diag.Warning{
				Code:    diag.CodeGeneric,
				TaskID:  r.TaskID,
				Message: fmt.Sprintf("%s: %s", r.Code, r.Message),
			})
		}
	}
	warnings = append(warnings, result.TransportWarnings...)

	if err := e.writer.CommitTasks(ctx, snap.Plan.ID, updated); err != nil {
		e.log.Errorf("plan %s: commit: %v", snap.Plan.ID, err)
		return &Result{Infeasible: true, Reasons: []diag.Reason{{
			Code:    diag.CodeGeneric,
			Message: fmt.Sprintf("commit failed: %v", err),
		}}}
	}
	return &Result{DailyTasks: updated, Warnings: warnings}
}

// allocResult bundles the allocator output with transport diagnostics.
type allocResult struct {
	*allocate.Result
	TransportWarnings []diag.Warning
}

// allocateWithTransport runs the placement pass, derives van grouping
// preferences from it and re-runs with those preferences installed. The
// second pass works on a fresh calendar so the preference shift cannot
// double-book anything.
func (e *Engine) allocateWithTransport(snap *model.Snapshot, graph *depgraph.Graph, mode model.Mode) allocResult {
	first := e.newAllocator(snap, graph).Run(mode)

	arrivals := e.rides(snap, first, snap.Transport.ArrivalTaskTemplateName)
	departures := e.rides(snap, first, snap.Transport.DepartureTaskTemplateName)
	if len(arrivals) == 0 && len(departures) == 0 {
		return allocResult{Result: first}
	}

	arrGroups := transport.Plan(transport.Arrivals, arrivals, snap.Transport)
	depGroups := transport.Plan(transport.Departures, departures, snap.Transport)
	prefs := transport.Preferences(arrGroups)
	for id, at := range transport.Preferences(depGroups) {
		prefs[id] = at
	}

	alloc := e.newAllocator(snap, graph)
	alloc.SetPreferences(prefs, transport.Tolerance(snap.Transport))
	second := alloc.Run(mode)

	var warnings []diag.Warning
	warnings = append(warnings, transport.ShortfallWarnings(transport.Arrivals, arrGroups, arrivals, snap.Transport)...)
	warnings = append(warnings, transport.ShortfallWarnings(transport.Departures, depGroups, departures, snap.Transport)...)
	return allocResult{Result: second, TransportWarnings: warnings}
}

func (e *Engine) newAllocator(snap *model.Snapshot, graph *depgraph.Graph) *allocate.Allocator {
	return allocate.New(snap, calendar.New(snap), graph, e.log, e.cfg.MealTemplateName)
}

// rides collects the placed tasks of one transport template.
func (e *Engine) rides(snap *model.Snapshot, res *allocate.Result, templateName string) []transport.Ride {
	if templateName == "" {
		return nil
	}
	var out []transport.Ride
	for id, p := range res.Placements {
		t := snap.Task(id)
		if t == nil {
			continue
		}
		if tpl := snap.Template(t.TemplateID); tpl != nil && tpl.Name == templateName {
			out = append(out, transport.Ride{TaskID: id, ContestantID: t.ContestantID, Start: p.Start})
		}
	}
	return out
}

// validate runs the load-time configuration checks: composite cycles,
// requirement expressions, itinerant team references and space tree depth.
func (e *Engine) validate(snap *model.Snapshot) *diag.ConfigError {
	if err := requirement.DetectCompositeCycles(snap); err != nil {
		return err
	}
	for i := range snap.Templates {
		tpl := &snap.Templates[i]
		if err := requirement.Validate(snap, tpl); err != nil {
			return err
		}
		if tpl.TeamMode == model.TeamSpecific {
			team := snap.Team(tpl.TeamID)
			if team == nil || !team.Active {
				return &diag.ConfigError{
					Code:       diag.CodeUnknownTeam,
					TemplateID: tpl.ID,
					TeamID:     tpl.TeamID,
					Detail:     "template requires a deleted or inactive itinerant team",
				}
			}
		}
	}
	for i := range snap.Zones {
		z := &snap.Zones[i]
		for j := range z.Spaces {
			if d := z.Depth(z.Spaces[j].ID); d > model.MaxSpaceDepth {
				return &diag.ConfigError{
					Code:   diag.CodeInvalidZone,
					ZoneID: z.ID,
					Detail: fmt.Sprintf("space %s nests %d levels deep, max is %d", z.Spaces[j].ID, d, model.MaxSpaceDepth),
				}
			}
		}
	}
	return nil
}

// Estimate is the independent read path: it projects completion per zone
// from the committed state and never touches placements.
func (e *Engine) Estimate(ctx context.Context, planID string) (progress.Estimate, error) {
	snap, err := e.reader.LoadSnapshot(ctx, planID)
	if err != nil {
		return progress.Estimate{}, fmt.Errorf("load snapshot: %w", err)
	}
	est := progress.New(snap).Run()
	if rec, ok := e.sink.(metrics.EstimateRecorder); ok {
		if err := rec.RecordEstimate(metrics.EstimateEvent{
			PlanID:      planID,
			Zones:       len(est.Zones),
			AdjustedEnd: est.AdjustedEnd,
			Time:        time.Now(),
		}); err != nil {
			e.log.Warnf("estimate metrics: %v", err)
		}
	}
	e.publish(events.EstimateServed{PlanID: planID, AdjustedEnd: est.AdjustedEnd, Time: time.Now()})
	return est, nil
}

func (e *Engine) acquire(planID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[planID] {
		return ErrRunInFlight
	}
	e.inflight[planID] = true
	return nil
}

func (e *Engine) release(planID string) {
	e.mu.Lock()
	delete(e.inflight, planID)
	e.mu.Unlock()
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func (e *Engine) finish(planID string, mode model.Mode, outcome metrics.Outcome, res *Result, started time.Time) {
	ev := metrics.GenerationEvent{
		PlanID:   planID,
		Mode:     mode,
		Outcome:  outcome,
		Duration: time.Since(started),
		Time:     time.Now(),
	}
	if res != nil {
		ev.Placed = len(res.DailyTasks)
		ev.Warnings = len(res.Warnings)
		ev.Reasons = len(res.Reasons)
	}
	if err := e.sink.RecordGeneration(ev); err != nil {
		e.log.Warnf("generation metrics: %v", err)
	}
	e.publish(events.GenerationFinished{
		PlanID:   planID,
		Mode:     mode,
		Outcome:  string(outcome),
		Placed:   ev.Placed,
		Warnings: ev.Warnings,
		Reasons:  ev.Reasons,
		Duration: ev.Duration,
		Time:     ev.Time,
	})
}

func outcomeOf(mode model.Mode, res *Result) metrics.Outcome {
	switch {
	case res == nil:
		return metrics.OutcomeError
	case res.ConfigErr:
		return metrics.OutcomeConfigErr
	case res.Infeasible:
		return metrics.OutcomeInfeasible
	case !mode.AllOrNothing() && len(res.Warnings) > 0:
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeCommitted
	}
}

func hasTasks(snap *model.Snapshot) bool { return len(snap.Tasks) > 0 }

func relevantMissing(missing []diag.Reason, working []*model.DailyTask) []diag.Reason {
	inSet := map[string]bool{}
	for _, t := range working {
		inSet[t.ID] = true
	}
	var out []diag.Reason
	for _, r := range missing {
		if inSet[r.TaskID] {
			out = append(out, r)
		}
	}
	return out
}

// applyPlacements writes the allocator output onto a copy of the snapshot
// task list. Locked tasks pass through bit for bit.
func applyPlacements(snap *model.Snapshot, res allocResult) []model.DailyTask {
	out := make([]model.DailyTask, len(snap.Tasks))
	copy(out, snap.Tasks)
	for i := range out {
		t := &out[i]
		p, ok := res.Placements[t.ID]
		if !ok {
			continue
		}
		start, end := p.Start, p.End
		t.PlannedStart = &start
		t.PlannedEnd = &end
		t.ZoneID = p.ZoneID
		t.SpaceID = p.SpaceID
		t.ResourceItemIDs = p.ResourceItemIDs
		t.StaffIDs = p.StaffIDs
		t.TeamID = p.TeamID
		t.LocationLabel = locationLabel(snap, p.ZoneID, p.SpaceID)
	}
	return out
}

func locationLabel(snap *model.Snapshot, zoneID, spaceID string) string {
	z := snap.Zone(zoneID)
	if z == nil {
		return ""
	}
	if sp := z.Space(spaceID); sp != nil {
		return z.Name + " / " + sp.Name
	}
	return z.Name
}
