package services

import (
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
)

// Requester identifies who issued a request. The zero value is anonymous.
type Requester struct {
	UserID uint
	Role   string
}

// Anonymous returns the requester used when no credentials were presented
func Anonymous() Requester {
	return Requester{}
}

func (r Requester) IsAnonymous() bool {
	return r.UserID == 0
}

func (r Requester) IsAdmin() bool {
	return !r.IsAnonymous() && r.Role == models.RoleAdmin
}

// Action is the kind of recipe operation being authorized
type Action int

const (
	ActionList Action = iota
	ActionRetrieve
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionList:
		return "list"
	case ActionRetrieve:
		return "retrieve"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Authorize decides whether requester may perform action. recipe is the
// target object and may be nil for collection-level actions.
func Authorize(action Action, requester Requester, recipe *models.Recipe) error {
	switch action {
	case ActionList, ActionRetrieve:
		return nil
	case ActionCreate:
		if requester.IsAnonymous() {
			return ErrUnauthenticated
		}
		return nil
	case ActionUpdate, ActionDelete:
		if requester.IsAnonymous() {
			return ErrUnauthenticated
		}
		if recipe == nil {
			return ErrForbidden
		}
		if recipe.AuthorID == requester.UserID || requester.IsAdmin() {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}
