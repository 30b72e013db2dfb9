package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/lead-engine/internal/dialog"
	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/usecase"
)

const (
	cbMenuRegister = "menu:register"
	cbMenuTrial    = "menu:trial"
	cbMenuPayment  = "menu:payment"
	cbMenuPricing  = "menu:pricing"
	cbMenuQuestion = "menu:question"

	cbAdminLeads     = "admin:leads"
	cbAdminTrials    = "admin:trials"
	cbAdminPayments  = "admin:payments"
	cbAdminBroadcast = "admin:broadcast"

	// admin:leads:<STATUS>
	cbAdminLeadsPrefix = "admin:leads:"

	// pay:approve:<tg_id>:<submitted_at>
	cbPayApprove = "pay:approve:"
	cbPayReject  = "pay:reject:"
)

var mainMenuKeyboard = Keyboard{
	{{Text: "📝 Ro‘yxatdan o‘tish", Data: cbMenuRegister}},
	{{Text: "📅 Sinov darsga yozilish", Data: cbMenuTrial}},
	{{Text: "💳 To‘lov qildim", Data: cbMenuPayment}},
	{{Text: "ℹ Kurs va narx", Data: cbMenuPricing}},
	{{Text: "❓ Savol berish", Data: cbMenuQuestion}},
}

var adminKeyboard = Keyboard{
	{{Text: "🧾 Pending payments", Data: cbAdminPayments}},
	{{Text: "📅 Upcoming trials (next 7 days)", Data: cbAdminTrials}},
	{{Text: "📋 Leads by status", Data: cbAdminLeads}},
	{{Text: "📣 Broadcast", Data: cbAdminBroadcast}},
}

var broadcastConfirmKeyboard = Keyboard{
	{{Text: "Ha, yuborish", Data: dialog.CallbackBcConfirm}},
	{{Text: "Yo‘q", Data: dialog.CallbackBcCancel}},
}

// optionKeyboard renders one button per option, one per row.
func optionKeyboard(prefix string, options []string) Keyboard {
	kb := make(Keyboard, 0, len(options))
	for _, o := range options {
		kb = append(kb, []Button{{Text: o, Data: prefix + o}})
	}
	return kb
}

func segmentKeyboard() Keyboard {
	kb := make(Keyboard, 0, len(usecase.Segments))
	for _, s := range usecase.Segments {
		kb = append(kb, []Button{{Text: string(s), Data: dialog.CallbackSegment + string(s)}})
	}
	return kb
}

func leadStatusKeyboard() Keyboard {
	kb := make(Keyboard, 0, len(entity.LeadStatuses))
	for _, s := range entity.LeadStatuses {
		kb = append(kb, []Button{{Text: string(s), Data: cbAdminLeadsPrefix + string(s)}})
	}
	return kb
}

func reviewKeyboard(userID int64, submittedAt time.Time) Keyboard {
	ref := fmt.Sprintf("%d:%s", userID, entity.FormatTimestamp(submittedAt))
	return Keyboard{
		{{Text: "Approve", Data: cbPayApprove + ref}},
		{{Text: "Reject", Data: cbPayReject + ref}},
	}
}

// parseReview reads pay:approve|reject:<tg_id>:<submitted_at>. The timestamp
// itself contains colons, so only the first separator after the id counts.
func parseReview(data string) (approve bool, userID int64, submittedAt time.Time, ok bool) {
	var rest string
	switch {
	case strings.HasPrefix(data, cbPayApprove):
		approve, rest = true, strings.TrimPrefix(data, cbPayApprove)
	case strings.HasPrefix(data, cbPayReject):
		rest = strings.TrimPrefix(data, cbPayReject)
	default:
		return false, 0, time.Time{}, false
	}

	id, stamp, found := strings.Cut(rest, ":")
	if !found {
		return false, 0, time.Time{}, false
	}
	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || userID == 0 {
		return false, 0, time.Time{}, false
	}
	submittedAt, err = entity.ParseTimestamp(stamp)
	if err != nil || submittedAt.IsZero() {
		return false, 0, time.Time{}, false
	}
	return approve, userID, submittedAt, true
}
