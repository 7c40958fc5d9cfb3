package crawler

import (
	"time"

	"github.com/warpdl/warpcrawl/pkg/warplib"
)

// ItemReport holds the outcome of one followed item.
type ItemReport struct {
	URL     string
	Name    string
	Results []warplib.Result
	Err     error
}

// Report aggregates one Run.
type Report struct {
	Spider   string
	Items    []ItemReport
	Started  time.Time
	Finished time.Time
}

// Counts tallies task outcomes across items.
func (r *Report) Counts() map[warplib.Outcome]int {
	counts := make(map[warplib.Outcome]int)
	for _, item := range r.Items {
		for _, res := range item.Results {
			counts[res.Outcome]++
		}
	}
	return counts
}

// Results flattens all task results in execution order.
func (r *Report) Results() []warplib.Result {
	var out []warplib.Result
	for _, item := range r.Items {
		out = append(out, item.Results...)
	}
	return out
}
