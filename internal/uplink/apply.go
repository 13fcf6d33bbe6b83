package uplink

import (
	"encoding/json"
	"fmt"

	"sparkos/internal/logging"
	"sparkos/internal/ops"
	"sparkos/internal/types"
)

// Command actions GENESIS is allowed to emit. Anything else is preserved in
// the reply but never applied.
const (
	ActionAddProject          = "ADD_PROJECT"
	ActionDeleteProject       = "DELETE_PROJECT"
	ActionUpdateProjectStatus = "UPDATE_PROJECT_STATUS"
	ActionHireManpower        = "HIRE_MANPOWER"
	ActionFireManpower        = "FIRE_MANPOWER"
	ActionAddInventory        = "ADD_INVENTORY"
	ActionAddSupplier         = "ADD_SUPPLIER"
)

// ErrUnknownAction marks a command whose action is outside the allowed set.
var ErrUnknownAction = fmt.Errorf("unknown command action")

// Applier executes extracted commands against the ops engine. It is the only
// path by which model output mutates state.
type Applier struct {
	engine *ops.Engine
}

func NewApplier(engine *ops.Engine) *Applier {
	return &Applier{engine: engine}
}

// statusPayload covers both DELETE_PROJECT (client only) and
// UPDATE_PROJECT_STATUS (client + status); the model addresses projects and
// workers by name, not ID.
type statusPayload struct {
	ClientName string              `json:"clientName"`
	Status     types.ProjectStatus `json:"status"`
}

type namePayload struct {
	Name string `json:"name"`
}

// Apply decodes the command payload and routes it to the matching engine
// operation. Unknown actions return ErrUnknownAction; every outcome lands in
// the audit trail.
func (a *Applier) Apply(cmd *Command) error {
	if cmd == nil {
		return nil
	}
	err := a.apply(cmd)
	if err != nil {
		logging.Audit().CommandApplied(cmd.Action, "", false, err.Error())
		logging.DispatchWarn("command %s rejected: %v", cmd.Action, err)
		return err
	}
	logging.Audit().CommandApplied(cmd.Action, "", true, "")
	logging.Dispatch("command %s applied", cmd.Action)
	return nil
}

func (a *Applier) apply(cmd *Command) error {
	switch cmd.Action {
	case ActionAddProject:
		var p types.Project
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", cmd.Action, err)
		}
		_, err := a.engine.CreateProject(p)
		return err

	case ActionDeleteProject:
		var payload statusPayload
		if err := json.Unmarshal(cmd.Data, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", cmd.Action, err)
		}
		p, ok := a.engine.FindProjectByClient(payload.ClientName)
		if !ok {
			return fmt.Errorf("%w: project for client %q", ops.ErrNotFound, payload.ClientName)
		}
		return a.engine.DeleteProject(p.ID)

	case ActionUpdateProjectStatus:
		var payload statusPayload
		if err := json.Unmarshal(cmd.Data, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", cmd.Action, err)
		}
		p, ok := a.engine.FindProjectByClient(payload.ClientName)
		if !ok {
			return fmt.Errorf("%w: project for client %q", ops.ErrNotFound, payload.ClientName)
		}
		return a.engine.UpdateProjectStatus(p.ID, payload.Status)

	case ActionHireManpower:
		var w types.Manpower
		if err := json.Unmarshal(cmd.Data, &w); err != nil {
			return fmt.Errorf("decode %s payload: %w", cmd.Action, err)
		}
		_, err := a.engine.Hire(w)
		return err

	case ActionFireManpower:
		var payload namePayload
		if err := json.Unmarshal(cmd.Data, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", cmd.Action, err)
		}
		w, ok := a.engine.FindWorkerByName(payload.Name)
		if !ok {
			return fmt.Errorf("%w: worker %q", ops.ErrNotFound, payload.Name)
		}
		return a.engine.Terminate(w.ID)

	case ActionAddInventory:
		var item types.InventoryItem
		if err := json.Unmarshal(cmd.Data, &item); err != nil {
			return fmt.Errorf("decode %s payload: %w", cmd.Action, err)
		}
		_, err := a.engine.AddItem(item)
		return err

	case ActionAddSupplier:
		var s types.Supplier
		if err := json.Unmarshal(cmd.Data, &s); err != nil {
			return fmt.Errorf("decode %s payload: %w", cmd.Action, err)
		}
		_, err := a.engine.AddSupplier(s)
		return err

	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, cmd.Action)
	}
}
