package authz

import "taskboard/internal/models"

// Access is relation based. The role carried in the token grants nothing here.

// CanAccessProject: only the owner may read or change a project.
func CanAccessProject(callerID int64, p *models.Project) bool {
	return p != nil && p.OwnerID == callerID
}

// CanAccessTask: the creator or the assignee of a task.
func CanAccessTask(callerID int64, t *models.Task) bool {
	if t == nil {
		return false
	}
	return t.CreatorID == callerID || t.IsAssignedTo(callerID)
}

// CanManageTaskViaProject lets a project owner manage tasks in the project
// even when they neither created nor were assigned the task.
// It is checked separately and never derived from CanAccessTask.
func CanManageTaskViaProject(callerID int64, p *models.Project) bool {
	return CanAccessProject(callerID, p)
}
