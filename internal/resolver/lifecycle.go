package resolver

import (
	"time"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

// LifecycleState is a node in the template version state machine.
type LifecycleState string

const (
	StateDevelopment LifecycleState = "development"
	StateTesting     LifecycleState = "testing"
	StatePrerelease  LifecycleState = "prerelease"
	StateReleased    LifecycleState = "released"
	StateMaintenance LifecycleState = "maintenance"
	StateDeprecated  LifecycleState = "deprecated"
	StateArchived    LifecycleState = "archived"
	StateDeleted     LifecycleState = "deleted"
)

// legalTransitions is the edge set Development → Testing →
// {Development, Prerelease, Archived} → Released → {Maintenance,
// Deprecated} → Archived → Deleted. Transitions not listed here are
// rejected.
var legalTransitions = map[LifecycleState][]LifecycleState{
	StateDevelopment: {StateTesting},
	StateTesting:     {StateDevelopment, StatePrerelease, StateArchived},
	StatePrerelease:  {StateReleased},
	StateReleased:    {StateMaintenance, StateDeprecated},
	StateMaintenance: {StateArchived},
	StateDeprecated:  {StateArchived},
	StateArchived:    {StateDeleted},
}

// approvalGatedStates lists the target states that require an
// approved ApprovalRequest before the transition may execute.
var approvalGatedStates = map[LifecycleState]bool{
	StateReleased:  true,
	StateDeprecated: true,
	StateArchived:  true,
}

// defaultApprovers attaches the default approver roles for a target
// state when request_state_change is called without an explicit list.
func defaultApprovers(target LifecycleState) []string {
	switch target {
	case StateReleased:
		return []string{"release_manager", "tech_lead"}
	case StateDeprecated:
		return []string{"product_manager", "tech_lead"}
	case StateArchived:
		return []string{"admin"}
	default:
		return []string{"tech_lead"}
	}
}

// IsLegalTransition reports whether from->to is an edge in the
// lifecycle graph.
func IsLegalTransition(from, to LifecycleState) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TemplateVersion carries the lifecycle bookkeeping for one resolved
// template version.
type TemplateVersion struct {
	Name       string
	Version    Version
	State      LifecycleState
	ReleasedAt *time.Time
}

// Lifecycle drives TemplateVersion state transitions, gating the
// approval-required ones through an ApprovalStore.
type Lifecycle struct {
	Approvals *ApprovalStore
	Clock     func() time.Time
}

// NewLifecycle builds a Lifecycle backed by store, with clock
// defaulting to time.Now when nil.
func NewLifecycle(store *ApprovalStore, clock func() time.Time) *Lifecycle {
	if clock == nil {
		clock = time.Now
	}
	return &Lifecycle{Approvals: store, Clock: clock}
}

// RequestStateChange validates from->to is legal, attaches default
// approvers when approvers is empty, and records a pending
// ApprovalRequest (even for non-gated transitions, so every state
// change leaves an audit trail). A non-gated transition is applied
// immediately; its request still stays pending.
func (l *Lifecycle) RequestStateChange(tv *TemplateVersion, to LifecycleState, approvers []string, deadline time.Duration) (*ApprovalRequest, error) {
	if !IsLegalTransition(tv.State, to) {
		return nil, apperrors.NewLifecycleError(apperrors.KindIllegalTransition, tv.Name, string(tv.State), string(to), nil)
	}
	if len(approvers) == 0 {
		approvers = defaultApprovers(to)
	}
	if deadline <= 0 {
		deadline = 7 * 24 * time.Hour
	}
	now := l.Clock()
	req := &ApprovalRequest{
		ID:           newRequestID(tv.Name, to, now),
		VersionID:    tv.Name,
		TargetState:  to,
		CurrentState: tv.State,
		Status:       StatusPending,
		Approvers:    approvers,
		ExpiresAt:    now.Add(deadline),
	}
	l.Approvals.Put(req)

	if !approvalGatedStates[to] {
		l.apply(tv, req, now)
	}
	return req, nil
}

// Approve records approver once on the request; when approved_by
// equals approvers, the transition executes under an implicit system
// actor.
func (l *Lifecycle) Approve(tv *TemplateVersion, requestID, approver, comment string) error {
	req, ok := l.Approvals.Get(requestID)
	if !ok {
		return apperrors.NewLifecycleError(apperrors.KindNotFound, tv.Name, "", "", nil)
	}
	now := l.Clock()
	if now.After(req.ExpiresAt) {
		req.Status = StatusExpired
		return apperrors.NewLifecycleError(apperrors.KindRequestExpired, tv.Name, string(req.CurrentState), string(req.TargetState), nil)
	}
	if req.Status != StatusPending {
		return apperrors.NewLifecycleError(apperrors.KindIllegalTransition, tv.Name, string(req.CurrentState), string(req.TargetState), nil)
	}
	req.recordApproval(approver, comment)
	if req.isFullyApproved() {
		req.Status = StatusApproved
		l.apply(tv, req, now)
	}
	return nil
}

// Reject transitions the request to Rejected.
func (l *Lifecycle) Reject(requestID, approver, reason string) error {
	req, ok := l.Approvals.Get(requestID)
	if !ok {
		return apperrors.NewLifecycleError(apperrors.KindNotFound, "", "", "", nil)
	}
	req.Status = StatusRejected
	req.RejectedBy = append(req.RejectedBy, approver)
	req.Reason = reason
	return nil
}

func (l *Lifecycle) apply(tv *TemplateVersion, req *ApprovalRequest, now time.Time) {
	tv.State = req.TargetState
	if req.TargetState == StateReleased {
		t := now
		tv.ReleasedAt = &t
	}
}

// ExpirePending walks the approval store and marks any pending
// request past its deadline as Expired.
func (l *Lifecycle) ExpirePending() {
	now := l.Clock()
	for _, req := range l.Approvals.All() {
		if req.Status == StatusPending && now.After(req.ExpiresAt) {
			req.Status = StatusExpired
		}
	}
}
