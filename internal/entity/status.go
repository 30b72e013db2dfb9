package entity

import (
	"fmt"
	"strings"
)

type LeadStatus string

const (
	StatusNew         LeadStatus = "NEW"
	StatusTrialBooked LeadStatus = "TRIAL_BOOKED"
	StatusTrialDone   LeadStatus = "TRIAL_DONE"
	StatusPaymentSent LeadStatus = "PAYMENT_SENT"
	StatusActive      LeadStatus = "ACTIVE"
	StatusInactive    LeadStatus = "INACTIVE"
)

// LeadStatuses lists every status in lifecycle order.
var LeadStatuses = []LeadStatus{
	StatusNew,
	StatusTrialBooked,
	StatusTrialDone,
	StatusPaymentSent,
	StatusActive,
	StatusInactive,
}

// legacy values still present in older sheets
var statusAliases = map[string]LeadStatus{
	"PAID_VERIFIED": StatusActive,
	"REJECTED":      StatusInactive,
}

// ParseLeadStatus reads a status cell. Unknown values are reported as not ok.
func ParseLeadStatus(s string) (LeadStatus, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	for _, st := range LeadStatuses {
		if string(st) == v {
			return st, true
		}
	}
	if st, ok := statusAliases[v]; ok {
		return st, true
	}
	return "", false
}

type Event string

const (
	EventRegistered      Event = "REGISTERED"
	EventTrialBooked     Event = "TRIAL_BOOKED"
	EventTrialCompleted  Event = "TRIAL_COMPLETED"
	EventProofSubmitted  Event = "PROOF_SUBMITTED"
	EventPaymentApproved Event = "PAYMENT_APPROVED"
	EventPaymentRejected Event = "PAYMENT_REJECTED"
)

type transitionKey struct {
	from  LeadStatus
	event Event
}

// transitions is the whole lifecycle. Registration never appears here because
// re-registering keeps whatever status the lead already has.
var transitions = map[transitionKey]LeadStatus{
	{StatusNew, EventTrialBooked}:         StatusTrialBooked,
	{StatusTrialBooked, EventTrialBooked}: StatusTrialBooked,

	{StatusTrialBooked, EventTrialCompleted}: StatusTrialDone,

	{StatusNew, EventProofSubmitted}:         StatusPaymentSent,
	{StatusTrialBooked, EventProofSubmitted}: StatusPaymentSent,
	{StatusTrialDone, EventProofSubmitted}:   StatusPaymentSent,
	{StatusInactive, EventProofSubmitted}:    StatusPaymentSent,
	{StatusPaymentSent, EventProofSubmitted}: StatusPaymentSent,

	{StatusPaymentSent, EventPaymentApproved}: StatusActive,
	{StatusInactive, EventPaymentApproved}:    StatusActive,
	{StatusActive, EventPaymentApproved}:      StatusActive,

	{StatusPaymentSent, EventPaymentRejected}: StatusInactive,
	{StatusInactive, EventPaymentRejected}:    StatusInactive,
	// a late rejection of a duplicate proof never revokes access
	{StatusActive, EventPaymentRejected}: StatusActive,
}

// Transition returns the status a lead moves to when event happens in current.
// changed is false when the lead stays where it is.
func Transition(current LeadStatus, event Event) (next LeadStatus, changed bool, err error) {
	if event == EventRegistered {
		if current == "" {
			return StatusNew, true, nil
		}
		return current, false, nil
	}

	next, ok := transitions[transitionKey{current, event}]
	if !ok {
		return current, false, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, current)
	}
	return next, next != current, nil
}
