package workshop

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workshop-planner/generic"
)

// projectValue holds the pro-rata inputs for one project.
type projectValue struct {
	value      decimal.Decimal
	totalHours decimal.Decimal
}

// ValueIndex apportions each project's value across its eligible hours.
type ValueIndex map[generic.ProjectID]projectValue

// NewValueIndex sums eligible estimated hours per project. Eligibility does
// not depend on the assigned worker being on the roster.
func NewValueIndex(projects []Project) ValueIndex {
	idx := make(ValueIndex, len(projects))
	for _, p := range projects {
		total := decimal.Zero
		for _, a := range p.Assignments {
			if a.Eligible() {
				total = total.Add(a.EstimatedHours)
			}
		}
		idx[p.ID] = projectValue{value: p.Value, totalHours: total}
	}
	return idx
}

// Attribute returns value * hours / totalHours for the project, or zero when
// the project has no eligible hours or is unknown.
func (idx ValueIndex) Attribute(project generic.ProjectID, hours decimal.Decimal) decimal.Decimal {
	pv, ok := idx[project]
	if !ok || !pv.totalHours.IsPositive() {
		return decimal.Zero
	}
	return pv.value.Mul(hours).Div(pv.totalHours)
}

// Decorate sets Value on every allocation in result.
func (idx ValueIndex) Decorate(result *ScheduleResult) {
	for _, days := range result.Allocations {
		for key, items := range days {
			for i := range items {
				items[i].Value = idx.Attribute(items[i].ProjectID, items[i].Hours)
			}
			days[key] = items
		}
	}
}
