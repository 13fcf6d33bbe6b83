package ops

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"sparkos/internal/logging"
	"sparkos/internal/types"
)

// Supplier, HSE, training, chat, and settings mutations. These collections
// have no invariants beyond ID assignment; the methods exist so every write
// still funnels through the engine.

// AddSupplier inserts a vendor.
func (e *Engine) AddSupplier(s types.Supplier) (types.Supplier, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Rating == 0 {
		s.Rating = 3
	}
	suppliers := append(e.store.Suppliers(), s)
	if err := e.store.SaveSuppliers(suppliers); err != nil {
		return types.Supplier{}, err
	}
	logging.Ops("Supplier added: %s (%s)", s.ID, s.Name)
	return s, nil
}

// LogIncident appends an HSE incident, status Open.
func (e *Engine) LogIncident(inc types.SafetyIncident) (types.SafetyIncident, error) {
	if inc.ID == "" {
		inc.ID = uuid.NewString()
	}
	if inc.Date == "" {
		inc.Date = time.Now().Format("2006-01-02")
	}
	if inc.Status == "" {
		inc.Status = "Open"
	}
	incidents := append(e.store.Incidents(), inc)
	if err := e.store.SaveIncidents(incidents); err != nil {
		return types.SafetyIncident{}, err
	}
	logging.Ops("Incident logged: %s (%s)", inc.ID, inc.Type)
	return inc, nil
}

// ResolveIncident flips an incident to Resolved.
func (e *Engine) ResolveIncident(id string) error {
	incidents := e.store.Incidents()
	for i := range incidents {
		if incidents[i].ID == id {
			incidents[i].Status = "Resolved"
			if err := e.store.SaveIncidents(incidents); err != nil {
				return err
			}
			logging.Ops("Incident resolved: %s", id)
			return nil
		}
	}
	return fmt.Errorf("incident %s: %w", id, ErrNotFound)
}

// AddCourse inserts a training course.
func (e *Engine) AddCourse(c types.TrainingCourse) (types.TrainingCourse, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.EnrolledManpowerIDs == nil {
		c.EnrolledManpowerIDs = []string{}
	}
	courses := append(e.store.Courses(), c)
	if err := e.store.SaveCourses(courses); err != nil {
		return types.TrainingCourse{}, err
	}
	logging.Ops("Course added: %s (%s)", c.ID, c.Title)
	return c, nil
}

// EnrollWorker adds a worker to a course roster. Enrolling twice is a no-op.
func (e *Engine) EnrollWorker(courseID, workerID string) error {
	courses := e.store.Courses()
	for i := range courses {
		if courses[i].ID != courseID {
			continue
		}
		for _, id := range courses[i].EnrolledManpowerIDs {
			if id == workerID {
				return nil
			}
		}
		courses[i].EnrolledManpowerIDs = append(courses[i].EnrolledManpowerIDs, workerID)
		if err := e.store.SaveCourses(courses); err != nil {
			return err
		}
		logging.Ops("Worker %s enrolled in course %s", workerID, courseID)
		return nil
	}
	return fmt.Errorf("course %s: %w", courseID, ErrNotFound)
}

// AppendChat appends one message to the conversation log.
func (e *Engine) AppendChat(msg types.ChatMessage) (types.ChatMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.Channel == "" {
		msg.Channel = "Management"
	}
	messages := append(e.store.Chat(), msg)
	if err := e.store.SaveChat(messages); err != nil {
		return types.ChatMessage{}, err
	}
	return msg, nil
}

// UpdateSettings replaces the company profile.
func (e *Engine) UpdateSettings(s types.CompanySettings) error {
	if err := e.store.SaveSettings(s); err != nil {
		return err
	}
	logging.Ops("Settings updated: %s", s.CompanyName)
	return nil
}

// SetPLNRate updates the grid tariff used for savings estimates.
func (e *Engine) SetPLNRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("rate %.2f: %w", rate, ErrInvalidAmount)
	}
	return e.store.SavePLNRate(rate)
}
