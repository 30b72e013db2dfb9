package database

import (
	"strconv"
	"strings"
)

const (
	LeadsSheet    = "Leads"
	TrialsSheet   = "Trials"
	PaymentsSheet = "Payments"
	EventsSheet   = "Events"
)

var (
	LeadColumns    = []string{"tg_id", "username", "name", "phone", "goal", "level", "source", "status", "created_at", "last_contact"}
	TrialColumns   = []string{"tg_id", "trial_at", "meet_link", "booked_at", "remind_24h_sent", "remind_1h_sent", "attended", "note"}
	PaymentColumns = []string{"tg_id", "amount", "proof_file_id", "proof_type", "submitted_at", "status", "verified_by", "verified_at"}
	EventColumns   = []string{"id", "type", "tg_id", "status", "occurred_at"}
)

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func parseID(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
