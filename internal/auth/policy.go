package auth

import (
	"net/http"

	"github.com/TahjibNil75/trackIT/internal/domain"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

// Denials returned by the ticket and comment access checks.
var (
	ErrForbidden             = apperrors.NewDomainError("FORBIDDEN", "You do not have permission to perform this action.", http.StatusForbidden, nil)
	ErrInvalidUpdate         = apperrors.NewDomainError("INVALID_UPDATE", "You are not allowed to update these ticket fields.", http.StatusBadRequest, nil)
	ErrPriorityUpdateDenied  = apperrors.NewDomainError("PRIORITY_UPDATE_FORBIDDEN", "Only admin, manager or it_support can change ticket priority.", http.StatusForbidden, nil)
	ErrStatusUpdateDenied    = apperrors.NewDomainError("STATUS_UPDATE_FORBIDDEN", "Only admin, manager or it_support can change ticket status.", http.StatusForbidden, nil)
	ErrAssignmentDenied      = apperrors.NewDomainError("ASSIGNMENT_FORBIDDEN", "Only the ticket creator or privileged users can assign this ticket.", http.StatusForbidden, nil)
	ErrAssigneeNotPrivileged = apperrors.NewDomainError("ASSIGNEE_NOT_PRIVILEGED", "Assignee must have a role of admin, it_support or manager.", http.StatusForbidden, nil)
)

// IsPrivileged reports whether user holds a privileged role. A nil user is never privileged.
func IsPrivileged(user *domain.User) bool {
	return user != nil && user.Role.IsPrivileged()
}

func isCreatorOrPrivileged(ticket *domain.Ticket, user *domain.User) bool {
	return IsPrivileged(user) || ticket.IsCreator(user.ID)
}

// CheckViewAccess allows privileged users, the creator and the assignee.
func CheckViewAccess(ticket *domain.Ticket, user *domain.User) error {
	if IsPrivileged(user) || ticket.IsCreator(user.ID) || ticket.IsAssignee(user.ID) {
		return nil
	}
	return ErrForbidden
}

type ruleContext struct {
	ticket *domain.Ticket
	user   *domain.User
	update domain.TicketUpdate
}

type fieldRule struct {
	field   string
	allowed func(rc ruleContext) bool
	denial  error
}

func creatorOrPrivileged(rc ruleContext) bool {
	return isCreatorOrPrivileged(rc.ticket, rc.user)
}

// updateRules is evaluated in order over the supplied fields. Priority and status
// are open to anyone when the value does not change.
var updateRules = []fieldRule{
	{field: domain.FieldSubject, allowed: creatorOrPrivileged, denial: ErrInvalidUpdate},
	{field: domain.FieldDescription, allowed: creatorOrPrivileged, denial: ErrInvalidUpdate},
	{field: domain.FieldIssueType, allowed: creatorOrPrivileged, denial: ErrInvalidUpdate},
	{
		field: domain.FieldPriority,
		allowed: func(rc ruleContext) bool {
			return *rc.update.Priority == rc.ticket.Priority || IsPrivileged(rc.user)
		},
		denial: ErrPriorityUpdateDenied,
	},
	{
		field: domain.FieldStatus,
		allowed: func(rc ruleContext) bool {
			return *rc.update.Status == rc.ticket.Status || IsPrivileged(rc.user)
		},
		denial: ErrStatusUpdateDenied,
	},
	{field: domain.FieldAssignedTo, allowed: creatorOrPrivileged, denial: ErrAssignmentDenied},
}

// CheckUpdatePermission applies the per-field rules to every supplied field and
// returns the first denial.
func CheckUpdatePermission(update domain.TicketUpdate, user *domain.User, ticket *domain.Ticket) error {
	rc := ruleContext{ticket: ticket, user: user, update: update}
	for _, rule := range updateRules {
		if !update.Has(rule.field) {
			continue
		}
		if !rule.allowed(rc) {
			return rule.denial
		}
	}
	return nil
}

// CheckDeletePermission allows the creator and privileged users.
func CheckDeletePermission(ticket *domain.Ticket, user *domain.User) error {
	if isCreatorOrPrivileged(ticket, user) {
		return nil
	}
	return ErrForbidden
}

// CheckAssignPermission gates the dedicated assignment operation.
func CheckAssignPermission(ticket *domain.Ticket, user *domain.User) error {
	if isCreatorOrPrivileged(ticket, user) {
		return nil
	}
	return ErrAssignmentDenied
}

// AuthorizeAssignee rejects candidates without a privileged role.
func AuthorizeAssignee(candidate *domain.User) error {
	if IsPrivileged(candidate) {
		return nil
	}
	return ErrAssigneeNotPrivileged
}

// CheckAttachmentUpload allows the creator and privileged users to add files to an existing ticket.
func CheckAttachmentUpload(ticket *domain.Ticket, user *domain.User) error {
	if isCreatorOrPrivileged(ticket, user) {
		return nil
	}
	return ErrForbidden
}

// CheckAttachmentDelete allows the ticket creator and admins only.
func CheckAttachmentDelete(ticket *domain.Ticket, user *domain.User) error {
	if ticket.IsCreator(user.ID) || user.Role == domain.RoleAdmin {
		return nil
	}
	return ErrForbidden
}

// CheckCommentCreate applies visibility-specific posting rules.
func CheckCommentCreate(ticket *domain.Ticket, user *domain.User, visibility domain.CommentVisibility) error {
	if visibility == domain.CommentVisibilityInternal {
		if user.Role.CanPostInternalComment() {
			return nil
		}
		return ErrForbidden
	}
	if IsPrivileged(user) || ticket.IsCreator(user.ID) || ticket.IsAssignee(user.ID) {
		return nil
	}
	return ErrForbidden
}

// CheckCommentUpdate allows the author and privileged users.
func CheckCommentUpdate(comment *domain.Comment, user *domain.User) error {
	if comment.UserID == user.ID || IsPrivileged(user) {
		return nil
	}
	return ErrForbidden
}

// CheckCommentDelete allows the author and admins only.
func CheckCommentDelete(comment *domain.Comment, user *domain.User) error {
	if comment.UserID == user.ID || user.Role == domain.RoleAdmin {
		return nil
	}
	return ErrForbidden
}

// CanSeeInternalComments reports whether internal comments are included in reads.
func CanSeeInternalComments(user *domain.User) bool {
	return IsPrivileged(user)
}
