package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/lead-engine/internal/dialog"
	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/usecase"
)

// User-facing texts. The audience reads Uzbek; admin-only texts stay terse.
const (
	msgMainMenu     = "Salom! Quyidagi menyudan tanlang:"
	msgAskName      = "Ismingizni yozing:"
	msgAskPhone     = "Telefon raqamingizni yuboring (masalan, +998901234567):"
	msgBadPhone     = "Raqam noto‘g‘ri. Masalan, +998901234567 shaklida yuboring."
	msgAskGoal      = "Maqsadingizni tanlang:"
	msgAskLevel     = "Darajangizni tanlang:"
	msgAskSource    = "Bizni qayerdan topdingiz?"
	msgChooseOption = "Iltimos, tugmalardan birini tanlang."
	msgRegistered   = "Rahmat! Maʼlumotlaringiz saqlandi."

	msgAskProof   = "Iltimos, to‘lov chekini yuboring (foto yoki hujjat).\nSumma: %s so‘m\nKarta: %s"
	msgNeedProof  = "Iltimos, foto yoki hujjat yuboring."
	msgProofTaken = "Qabul qilindi, admin tekshiradi."
	msgPricing    = "Kurs narxi: %s so‘m.\nTo‘lov kartasi: %s\nTo‘lovdan so‘ng “💳 To‘lov qildim” tugmasini bosing."
	msgQuestion   = "Bu bo‘lim tez orada ishga tushadi."

	msgTrialBooked   = "Sinov darsi yozildi!\nSana: %s\nMeet link: %s"
	msgTrialExists   = "Sizda allaqachon sinov darsi bor: %s."
	msgRegisterFirst = "Iltimos, avval ro‘yxatdan o‘ting: /start"
	msgAlreadyActive = "Siz allaqachon kurs talabasisiz."
	msgNotNow        = "Bu amalni hozir bajarib bo‘lmaydi."

	msgApprovedUser = "To‘lov tasdiqlandi. Guruhga qo‘shilish uchun so‘rov yuboring (private group)."
	msgRejectedUser = "To‘lov tasdiqlanmadi. Iltimos chekni qayta yuboring yoki admin bilan bog‘laning."
	msgJoinDeclined = "Guruhga qo‘shilish uchun avval to‘lovni yakunlang. “💳 To‘lov qildim” tugmasi orqali chek yuboring."

	msgCancelled     = "Bekor qilindi."
	msgAccessDenied  = "Ruxsat yo‘q."
	msgFailure       = "Xatolik yuz berdi. Birozdan so‘ng qayta urinib ko‘ring."
	msgSessionGone   = "Bu amal eskirgan. Menyudan qayta tanlang."
	msgUnknownAction = "Noma’lum amal."

	msgAdminPanel       = "Admin panel:"
	msgChooseStatus     = "Statusni tanlang:"
	msgChooseSegment    = "Segmentni tanlang:"
	msgAskBroadcastText = "Xabar matnini yuboring."
	msgConfirmBroadcast = "Tasdiqlaysizmi?\nSegment: %s\nXabar:\n%s"
	msgBroadcastStarted = "Broadcast boshlandi."
	msgBroadcastDone    = "Broadcast yakunlandi. Yuborildi: %d, xatolik: %d."
	msgBroadcastFailed  = "Broadcast to‘xtadi. Yuborildi: %d, xatolik: %d."

	msgNoPending       = "Pending to‘lovlar yo‘q."
	msgNoTrials        = "Yaqin 7 kunda sinov darslar yo‘q."
	msgNoLeads         = "%s statusida leadlar yo‘q."
	msgApprovedAdmin   = "To‘lov tasdiqlandi."
	msgRejectedAdmin   = "To‘lov rad etildi."
	msgReviewedAlready = "Bu to‘lov allaqachon ko‘rib chiqilgan."
	msgPaymentMissing  = "To‘lov topilmadi."
	msgTrialDoneUsage  = "Foydalanish: /trialdone <tg_id>"
	msgTrialDone       = "Sinov darsi yakunlandi: %d (%s)."
	msgNoPastTrial     = "O‘tgan sinov darsi topilmadi."
)

const (
	adminListLimit = 10
	dateLayout     = "2006-01-02 15:04"
)

// formatAmount renders 990000 as "990 000".
func formatAmount(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func paymentNotice(lead *entity.Lead, payment *entity.Payment) string {
	username := lead.Username
	if username == "" {
		username = "-"
	}
	return fmt.Sprintf("Yangi to‘lov:\nIsm: %s\nTelefon: %s\nUsername: %s\nTG ID: %d\nSumma: %d",
		lead.Name, lead.Phone, username, lead.UserID, payment.Amount)
}

func pendingLine(p *entity.Payment) string {
	return fmt.Sprintf("TG ID: %d\nSumma: %d\nSubmitted: %s", p.UserID, p.Amount, entity.FormatTimestamp(p.SubmittedAt))
}

func leadLines(leads []*entity.Lead) string {
	lines := make([]string, 0, len(leads))
	for _, l := range leads {
		lines = append(lines, fmt.Sprintf("%s | %s | %s | %s", l.Name, l.Phone, l.Goal, l.Level))
	}
	return strings.Join(lines, "\n")
}

func trialLines(trials []*entity.Trial, loc *time.Location) string {
	lines := make([]string, 0, len(trials))
	for _, t := range trials {
		lines = append(lines, fmt.Sprintf("%d | %s | %s", t.UserID, t.ScheduledAt.In(loc).Format(dateLayout), t.MeetLink))
	}
	return strings.Join(lines, "\n")
}

// stepPrompt is what a user sees when a step starts, with its buttons.
func stepPrompt(step dialog.Step) (string, Keyboard) {
	switch step {
	case dialog.StepRegName:
		return msgAskName, nil
	case dialog.StepRegPhone:
		return msgAskPhone, nil
	case dialog.StepRegGoal:
		return msgAskGoal, optionKeyboard(dialog.CallbackGoal, usecase.Goals)
	case dialog.StepRegLevel:
		return msgAskLevel, optionKeyboard(dialog.CallbackLevel, usecase.Levels)
	case dialog.StepRegSource:
		return msgAskSource, optionKeyboard(dialog.CallbackSource, usecase.Sources)
	case dialog.StepPayProof:
		return msgNeedProof, nil
	case dialog.StepBcSegment:
		return msgChooseSegment, segmentKeyboard()
	case dialog.StepBcText:
		return msgAskBroadcastText, nil
	case dialog.StepBcConfirm:
		return msgChooseOption, broadcastConfirmKeyboard
	}
	return msgMainMenu, mainMenuKeyboard
}

// suspendPrompt explains why the input was refused and repeats the step's buttons.
func suspendPrompt(step dialog.Step, reason string) (string, Keyboard) {
	prompt, kb := stepPrompt(step)
	switch reason {
	case dialog.ReasonInvalidPhone:
		return msgBadPhone, kb
	case dialog.ReasonChooseOption:
		return msgChooseOption, kb
	case dialog.ReasonProofRequired:
		return msgNeedProof, kb
	}
	return prompt, kb
}
