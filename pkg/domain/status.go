package domain

import "slices"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectOnHold     ProjectStatus = "on_hold"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// ProjectStatuses lists project statuses in display order.
var ProjectStatuses = []ProjectStatus{
	ProjectPlanning, ProjectInProgress, ProjectOnHold, ProjectCompleted, ProjectCancelled,
}

func (s ProjectStatus) Valid() bool { return slices.Contains(ProjectStatuses, s) }

// Label returns the Portuguese display label.
func (s ProjectStatus) Label() string {
	switch s {
	case ProjectPlanning:
		return "Planeamento"
	case ProjectInProgress:
		return "Em Progresso"
	case ProjectOnHold:
		return "Em Espera"
	case ProjectCompleted:
		return "Concluído"
	case ProjectCancelled:
		return "Cancelado"
	}
	return string(s)
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskCompleted  TaskStatus = "completed"
	TaskBlocked    TaskStatus = "blocked"
)

// TaskStatuses lists task statuses in display order.
var TaskStatuses = []TaskStatus{TaskPending, TaskInProgress, TaskReview, TaskCompleted, TaskBlocked}

func (s TaskStatus) Valid() bool { return slices.Contains(TaskStatuses, s) }

func (s TaskStatus) Label() string {
	switch s {
	case TaskPending:
		return "Pendente"
	case TaskInProgress:
		return "Em Progresso"
	case TaskReview:
		return "Em Revisão"
	case TaskCompleted:
		return "Concluída"
	case TaskBlocked:
		return "Bloqueada"
	}
	return string(s)
}

// ToggleCompletion flips a task between pending and completed. Any status
// other than completed becomes completed; intermediate states are not kept.
func ToggleCompletion(s TaskStatus) TaskStatus {
	if s == TaskCompleted {
		return TaskPending
	}
	return TaskCompleted
}

// ResourceType classifies a resource. It is fixed at creation.
type ResourceType string

const (
	ResourceFinancial ResourceType = "financial"
	ResourceMaterial  ResourceType = "material"
	ResourceHuman     ResourceType = "human"
)

var ResourceTypes = []ResourceType{ResourceFinancial, ResourceMaterial, ResourceHuman}

func (t ResourceType) Valid() bool { return slices.Contains(ResourceTypes, t) }

func (t ResourceType) Label() string {
	switch t {
	case ResourceFinancial:
		return "Financeiro"
	case ResourceMaterial:
		return "Material"
	case ResourceHuman:
		return "Humano"
	}
	return string(t)
}

// Role is a team member's role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleMember}

func (r Role) Valid() bool { return slices.Contains(Roles, r) }

func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleManager:
		return "Gestor"
	case RoleMember:
		return "Membro"
	}
	return string(r)
}
