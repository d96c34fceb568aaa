package model

// TransportSettings are the plan-independent van grouping defaults. All
// fields are PATCHable.
type TransportSettings struct {
	ArrivalTaskTemplateName        string `json:"arrivalTaskTemplateName"`
	DepartureTaskTemplateName      string `json:"departureTaskTemplateName"`
	ArrivalGroupingTarget          int    `json:"arrivalGroupingTarget"`
	DepartureGroupingTarget        int    `json:"departureGroupingTarget"`
	VanCapacity                    int    `json:"vanCapacity"`
	WeightArrivalDepartureGrouping int    `json:"weightArrivalDepartureGrouping"`
}

// SetDefaults applies sane defaults.
func (t *TransportSettings) SetDefaults() {
	if t.ArrivalTaskTemplateName == "" {
		t.ArrivalTaskTemplateName = "Llegada"
	}
	if t.DepartureTaskTemplateName == "" {
		t.DepartureTaskTemplateName = "Salida"
	}
	if t.VanCapacity <= 0 {
		t.VanCapacity = 8
	}
	if t.ArrivalGroupingTarget <= 0 {
		t.ArrivalGroupingTarget = t.VanCapacity
	}
	if t.DepartureGroupingTarget <= 0 {
		t.DepartureGroupingTarget = t.VanCapacity
	}
	if t.WeightArrivalDepartureGrouping < 0 {
		t.WeightArrivalDepartureGrouping = 0
	}
	if t.WeightArrivalDepartureGrouping > 10 {
		t.WeightArrivalDepartureGrouping = 10
	}
}
