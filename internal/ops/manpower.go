package ops

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"sparkos/internal/logging"
	"sparkos/internal/types"
)

// Default profile for a new hire.
const (
	defaultPerformanceScore = 80
	defaultDailyRate        = 150000
)

// Hire adds a crew member. Zero-valued fields get the new-hire defaults.
func (e *Engine) Hire(w types.Manpower) (types.Manpower, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Role == "" {
		w.Role = "Solar Technician"
	}
	if w.Status == "" {
		w.Status = types.WorkerAvailable
	}
	if w.PerformanceScore == 0 {
		w.PerformanceScore = defaultPerformanceScore
	}
	if w.DailyRate == 0 {
		w.DailyRate = defaultDailyRate
	}
	if w.Skills == nil {
		w.Skills = []string{}
	}
	if w.JoinDate == "" {
		w.JoinDate = time.Now().Format("2006-01-02")
	}
	w.AttendanceHistory = nil
	w.AttendanceDaysThisMonth = 0
	w.TotalEarnedThisMonth = 0

	workers := append(e.store.Manpower(), w)
	if err := e.store.SaveManpower(workers); err != nil {
		return types.Manpower{}, err
	}

	logging.Ops("Worker hired: %s (%s)", w.ID, w.Name)
	logging.Audit().Log(logging.AuditEvent{
		EventType: logging.AuditWorkerHire,
		Target:    w.ID,
		Success:   true,
		Message:   fmt.Sprintf("Hired %s as %s", w.Name, w.Role),
	})
	return w, nil
}

// Terminate removes a crew member by ID.
func (e *Engine) Terminate(id string) error {
	workers := e.store.Manpower()
	kept := workers[:0]
	found := false
	for _, w := range workers {
		if w.ID == id {
			found = true
			continue
		}
		kept = append(kept, w)
	}
	if !found {
		return fmt.Errorf("worker %s: %w", id, ErrNotFound)
	}
	if err := e.store.SaveManpower(kept); err != nil {
		return err
	}

	logging.Ops("Worker terminated: %s", id)
	logging.Audit().Log(logging.AuditEvent{
		EventType: logging.AuditWorkerRemove,
		Target:    id,
		Success:   true,
	})
	return nil
}

// FindWorkerByName returns the first worker with a matching name, for
// command payloads that reference crew by name.
func (e *Engine) FindWorkerByName(name string) (types.Manpower, bool) {
	for _, w := range e.store.Manpower() {
		if w.Name == name {
			return w, true
		}
	}
	return types.Manpower{}, false
}

// UpdateWorker replaces a worker record wholesale, keyed by ID.
func (e *Engine) UpdateWorker(w types.Manpower) error {
	workers := e.store.Manpower()
	for i := range workers {
		if workers[i].ID == w.ID {
			workers[i] = w
			if err := e.store.SaveManpower(workers); err != nil {
				return err
			}
			logging.Ops("Worker updated: %s", w.ID)
			return nil
		}
	}
	return fmt.Errorf("worker %s: %w", w.ID, ErrNotFound)
}

// ToggleAttendance cycles a worker's record for one date:
// none -> Present -> Absent -> Sick -> removed. Monthly aggregates are
// recomputed from the full history after every toggle.
func (e *Engine) ToggleAttendance(workerID, date string) (types.Manpower, error) {
	workers := e.store.Manpower()
	for i := range workers {
		if workers[i].ID != workerID {
			continue
		}
		w := &workers[i]

		history := w.AttendanceHistory
		idx := -1
		for j, rec := range history {
			if rec.Date == date {
				idx = j
				break
			}
		}

		if idx >= 0 {
			switch history[idx].Status {
			case types.AttendancePresent:
				history[idx].Status = types.AttendanceAbsent
			case types.AttendanceAbsent:
				history[idx].Status = types.AttendanceSick
			default:
				history = append(history[:idx], history[idx+1:]...)
			}
		} else {
			history = append(history, types.AttendanceRecord{Date: date, Status: types.AttendancePresent})
		}
		w.AttendanceHistory = history

		present := 0
		for _, rec := range history {
			if rec.Status == types.AttendancePresent {
				present++
			}
		}
		w.AttendanceDaysThisMonth = present
		w.TotalEarnedThisMonth = float64(present) * w.DailyRate

		if err := e.store.SaveManpower(workers); err != nil {
			return types.Manpower{}, err
		}
		logging.OpsDebug("Attendance toggled: worker=%s date=%s present=%d", workerID, date, present)
		return *w, nil
	}
	return types.Manpower{}, fmt.Errorf("worker %s: %w", workerID, ErrNotFound)
}
