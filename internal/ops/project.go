package ops

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"sparkos/internal/logging"
	"sparkos/internal/types"
)

// CreateProject inserts a new project. A missing ID gets a fresh one, a
// missing status starts at Lead, and an empty schedule is filled with the
// standard 17-task SOP build plan.
func (e *Engine) CreateProject(p types.Project) (types.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = types.StatusLead
	}
	if p.LastUpdate == "" {
		p.LastUpdate = time.Now().Format("2006-01-02")
	}
	if p.AssignedManpowerIDs == nil {
		p.AssignedManpowerIDs = []string{}
	}
	if len(p.Schedule) == 0 {
		p.Schedule = StandardSchedule()
	}

	projects := append(e.store.Projects(), p)
	if err := e.store.SaveProjects(projects); err != nil {
		return types.Project{}, err
	}

	logging.Ops("Project created: %s (%s)", p.ID, p.ClientName)
	logging.Audit().Log(logging.AuditEvent{
		EventType: logging.AuditProjectCreate,
		Target:    p.ID,
		Success:   true,
		Message:   fmt.Sprintf("Project created for %s", p.ClientName),
	})
	return p, nil
}

// UpdateProject replaces a project wholesale, keyed by ID.
func (e *Engine) UpdateProject(p types.Project) error {
	projects := e.store.Projects()
	for i := range projects {
		if projects[i].ID == p.ID {
			p.LastUpdate = time.Now().Format("2006-01-02")
			projects[i] = p
			if err := e.store.SaveProjects(projects); err != nil {
				return err
			}
			logging.Ops("Project updated: %s", p.ID)
			return nil
		}
	}
	return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
}

// UpdateProjectStatus moves a project to a new lifecycle stage. Any stage is
// reachable from any other; there is no enforced ordering.
func (e *Engine) UpdateProjectStatus(id string, status types.ProjectStatus) error {
	projects := e.store.Projects()
	for i := range projects {
		if projects[i].ID == id {
			projects[i].Status = status
			projects[i].LastUpdate = time.Now().Format("2006-01-02")
			if err := e.store.SaveProjects(projects); err != nil {
				return err
			}
			logging.Ops("Project %s status -> %s", id, status)
			logging.Audit().Log(logging.AuditEvent{
				EventType: logging.AuditProjectUpdate,
				Target:    id,
				Action:    string(status),
				Success:   true,
			})
			return nil
		}
	}
	return fmt.Errorf("project %s: %w", id, ErrNotFound)
}

// DeleteProject removes a project by ID.
func (e *Engine) DeleteProject(id string) error {
	projects := e.store.Projects()
	kept := projects[:0]
	found := false
	for _, p := range projects {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err := e.store.SaveProjects(kept); err != nil {
		return err
	}

	logging.Ops("Project deleted: %s", id)
	logging.Audit().Log(logging.AuditEvent{
		EventType: logging.AuditProjectDelete,
		Target:    id,
		Success:   true,
	})
	return nil
}

// mutateProject applies fn to the project with the given ID and persists the
// collection. fn sees a pointer into the loaded slice.
func (e *Engine) mutateProject(id string, fn func(*types.Project)) error {
	projects := e.store.Projects()
	for i := range projects {
		if projects[i].ID == id {
			fn(&projects[i])
			projects[i].LastUpdate = time.Now().Format("2006-01-02")
			return e.store.SaveProjects(projects)
		}
	}
	return fmt.Errorf("project %s: %w", id, ErrNotFound)
}

// SaveNotes overwrites a project's freeform notes.
func (e *Engine) SaveNotes(id, notes string) error {
	if err := e.mutateProject(id, func(p *types.Project) { p.Notes = notes }); err != nil {
		return err
	}
	logging.Ops("Project %s notes saved (%d bytes)", id, len(notes))
	return nil
}

// AttachRiskAssessment stores a generated risk view on the project.
func (e *Engine) AttachRiskAssessment(id string, ra *types.RiskAssessment) error {
	if err := e.mutateProject(id, func(p *types.Project) { p.RiskAssessment = ra }); err != nil {
		return err
	}
	logging.Ops("Project %s risk assessment attached", id)
	return nil
}

// AttachPlanAnalysis stores the drawing-analysis text on the project.
func (e *Engine) AttachPlanAnalysis(id, analysis string) error {
	if err := e.mutateProject(id, func(p *types.Project) { p.PlanAnalysis = analysis }); err != nil {
		return err
	}
	logging.Ops("Project %s plan analysis attached", id)
	return nil
}

// FindProjectByClient returns the first project whose client name matches,
// for command payloads that reference projects by name rather than ID.
func (e *Engine) FindProjectByClient(clientName string) (types.Project, bool) {
	for _, p := range e.store.Projects() {
		if p.ClientName == clientName {
			return p, true
		}
	}
	return types.Project{}, false
}

// AssignWorker links a worker to a project and marks them on-site.
func (e *Engine) AssignWorker(projectID, workerID string) error {
	projects := e.store.Projects()
	var proj *types.Project
	for i := range projects {
		if projects[i].ID == projectID {
			proj = &projects[i]
			break
		}
	}
	if proj == nil {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}

	workers := e.store.Manpower()
	var worker *types.Manpower
	for i := range workers {
		if workers[i].ID == workerID {
			worker = &workers[i]
			break
		}
	}
	if worker == nil {
		return fmt.Errorf("worker %s: %w", workerID, ErrNotFound)
	}

	for _, id := range proj.AssignedManpowerIDs {
		if id == workerID {
			return nil // already assigned
		}
	}
	proj.AssignedManpowerIDs = append(proj.AssignedManpowerIDs, workerID)
	worker.Status = types.WorkerOnSite
	worker.CurrentProjectID = projectID

	if err := e.store.SaveProjects(projects); err != nil {
		return err
	}
	if err := e.store.SaveManpower(workers); err != nil {
		return err
	}

	logging.Ops("Worker %s assigned to project %s", workerID, projectID)
	return nil
}
