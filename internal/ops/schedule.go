package ops

import (
	"fmt"
	"time"

	"sparkos/internal/types"
)

// standardTasks is the fixed SOP phase list for a rooftop solar build,
// two phases per week.
var standardTasks = []string{
	"MoS (Material on Site)", "Team On-Site", "Lifting Material", "Instalasi Walkway",
	"Instalasi Life Line", "Instalasi PV Mounting", "Instalasi PV Module",
	"Instalasi PV Cable", "Instalasi Water Piping", "Instalasi Inverter",
	"Instalasi AC Combiner", "Instalasi Kabel AC", "Wiring Instalasi",
	"Instalasi Grounding", "Pre-Com", "Test Run", "Commissioning",
}

// StandardSchedule returns the deterministic 17-step construction schedule
// used as the default for new projects. Each task starts Pending at progress
// zero and depends on the previous phase.
func StandardSchedule() []types.ScheduleTask {
	now := time.Now().UnixMilli()
	tasks := make([]types.ScheduleTask, len(standardTasks))
	for i, name := range standardTasks {
		var deps []string
		if i > 0 {
			deps = []string{fmt.Sprintf("task-%d", i-1)}
		}
		tasks[i] = types.ScheduleTask{
			ID:            fmt.Sprintf("task-%d-%d", now, i),
			Name:          name,
			WeekStart:     i/2 + 1,
			DurationWeeks: 1,
			Status:        types.TaskPending,
			Progress:      0,
			Dependencies:  deps,
		}
	}
	return tasks
}
