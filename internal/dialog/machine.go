package dialog

import (
	"strings"

	"github.com/xavierca1/lead-engine/internal/usecase"
)

type Outcome int

const (
	// Suspend keeps the session at its step and asks the user again.
	Suspend Outcome = iota + 1
	// Advance moves to Result.Next.
	Advance
	// Terminate ends the scene; the collected data is ready to act upon.
	Terminate
)

// Reasons a step suspends. The bot maps each one to a corrective prompt.
const (
	ReasonUnexpectedInput = "unexpected_input"
	ReasonInvalidName     = "invalid_name"
	ReasonInvalidPhone    = "invalid_phone"
	ReasonChooseOption    = "choose_option"
	ReasonProofRequired   = "proof_required"
	ReasonEmptyText       = "empty_text"
)

// Callback data prefixes owned by dialog steps.
const (
	CallbackGoal      = "reg_goal:"
	CallbackLevel     = "reg_level:"
	CallbackSource    = "reg_source:"
	CallbackSegment   = "bc:seg:"
	CallbackBcConfirm = "bc:confirm"
	CallbackBcCancel  = "bc:cancel"
)

type Result struct {
	Outcome  Outcome
	Next     Step
	Reason   string
	Captured map[string]string
}

type StepFunc func(s *Session, in Input) Result

type key struct {
	step Step
	kind InputKind
}

var table = map[key]StepFunc{
	{StepRegName, InputText}:        regName,
	{StepRegPhone, InputText}:       regPhone,
	{StepRegPhone, InputContact}:    regPhone,
	{StepRegGoal, InputCallback}:    option(CallbackGoal, usecase.Goals, FieldGoal, StepRegLevel),
	{StepRegLevel, InputCallback}:   option(CallbackLevel, usecase.Levels, FieldLevel, StepRegSource),
	{StepRegSource, InputCallback}:  regSource,
	{StepPayProof, InputAttachment}: payProof,
	{StepPayProof, InputText}:       suspend(ReasonProofRequired),
	{StepBcSegment, InputCallback}:  bcSegment,
	{StepBcText, InputText}:         bcText,
	{StepBcConfirm, InputCallback}:  bcConfirm,
}

// Apply feeds in to the session's current step and applies the result to s.
// A suspended step leaves s untouched.
func Apply(s *Session, in Input) Result {
	fn, ok := table[key{s.Step, in.Kind}]
	if !ok {
		return Result{Outcome: Suspend, Reason: ReasonUnexpectedInput}
	}

	res := fn(s, in)
	switch res.Outcome {
	case Advance:
		s.merge(res.Captured)
		s.Step = res.Next
	case Terminate:
		s.merge(res.Captured)
		s.Step = StepNone
	}
	return res
}

func (s *Session) merge(values map[string]string) {
	if s.Data == nil {
		s.Data = make(map[string]string, len(values))
	}
	for k, v := range values {
		s.Data[k] = v
	}
}

func suspend(reason string) StepFunc {
	return func(*Session, Input) Result {
		return Result{Outcome: Suspend, Reason: reason}
	}
}

func advance(next Step, field, value string) Result {
	return Result{Outcome: Advance, Next: next, Captured: map[string]string{field: value}}
}

func regName(_ *Session, in Input) Result {
	if err := usecase.ValidateName(in.Text); err != nil {
		return Result{Outcome: Suspend, Reason: ReasonInvalidName}
	}
	return advance(StepRegPhone, FieldName, strings.TrimSpace(in.Text))
}

func regPhone(_ *Session, in Input) Result {
	raw := in.Text
	if in.Kind == InputContact {
		raw = in.Phone
	}
	phone := usecase.NormalizePhone(raw)
	if !usecase.IsValidPhone(phone) {
		return Result{Outcome: Suspend, Reason: ReasonInvalidPhone}
	}
	return advance(StepRegGoal, FieldPhone, phone)
}

// option accepts a callback carrying one of the offered values.
func option(prefix string, options []string, field string, next Step) StepFunc {
	return func(_ *Session, in Input) Result {
		v, ok := strings.CutPrefix(in.Text, prefix)
		if !ok || !usecase.IsOption(options, v) {
			return Result{Outcome: Suspend, Reason: ReasonChooseOption}
		}
		return advance(next, field, v)
	}
}

func regSource(s *Session, in Input) Result {
	res := option(CallbackSource, usecase.Sources, FieldSource, StepNone)(s, in)
	if res.Outcome == Advance {
		res.Outcome = Terminate
	}
	return res
}

func payProof(_ *Session, in Input) Result {
	if strings.TrimSpace(in.FileID) == "" {
		return Result{Outcome: Suspend, Reason: ReasonProofRequired}
	}
	return Result{
		Outcome: Terminate,
		Captured: map[string]string{
			FieldProofID:   in.FileID,
			FieldProofKind: in.FileKind,
		},
	}
}

func bcSegment(_ *Session, in Input) Result {
	v, ok := strings.CutPrefix(in.Text, CallbackSegment)
	if !ok {
		return Result{Outcome: Suspend, Reason: ReasonChooseOption}
	}
	segment, ok := usecase.ParseSegment(v)
	if !ok {
		return Result{Outcome: Suspend, Reason: ReasonChooseOption}
	}
	return advance(StepBcText, FieldSegment, string(segment))
}

func bcText(_ *Session, in Input) Result {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Result{Outcome: Suspend, Reason: ReasonEmptyText}
	}
	return advance(StepBcConfirm, FieldText, text)
}

func bcConfirm(_ *Session, in Input) Result {
	switch in.Text {
	case CallbackBcConfirm:
		return Result{Outcome: Terminate, Captured: map[string]string{FieldConfirmed: "true"}}
	case CallbackBcCancel:
		return Result{Outcome: Terminate, Captured: map[string]string{FieldConfirmed: "false"}}
	}
	return Result{Outcome: Suspend, Reason: ReasonChooseOption}
}
