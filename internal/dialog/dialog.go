package dialog

import (
	"strings"
	"time"
)

// Step is the position of a user inside a scripted conversation.
type Step string

const (
	StepNone Step = ""

	StepRegName   Step = "reg.name"
	StepRegPhone  Step = "reg.phone"
	StepRegGoal   Step = "reg.goal"
	StepRegLevel  Step = "reg.level"
	StepRegSource Step = "reg.source"

	StepPayProof Step = "pay.proof"

	StepBcSegment Step = "bc.segment"
	StepBcText    Step = "bc.text"
	StepBcConfirm Step = "bc.confirm"
)

// Scene groups the steps of one conversation.
type Scene string

const (
	SceneRegistration Scene = "reg"
	ScenePayment      Scene = "pay"
	SceneBroadcast    Scene = "bc"
)

var firstStep = map[Scene]Step{
	SceneRegistration: StepRegName,
	ScenePayment:      StepPayProof,
	SceneBroadcast:    StepBcSegment,
}

func (s Step) Scene() Scene {
	prefix, _, _ := strings.Cut(string(s), ".")
	return Scene(prefix)
}

type InputKind int

const (
	InputText InputKind = iota + 1
	InputContact
	InputCallback
	InputAttachment
)

func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputContact:
		return "contact"
	case InputCallback:
		return "callback"
	case InputAttachment:
		return "attachment"
	}
	return "unknown"
}

// Input is one user action fed to the current step. Text holds the message
// text or the callback data.
type Input struct {
	Kind     InputKind
	Text     string
	Phone    string
	FileID   string
	FileKind string
}

// Keys of the values a session collects.
const (
	FieldName      = "name"
	FieldPhone     = "phone"
	FieldGoal      = "goal"
	FieldLevel     = "level"
	FieldSource    = "source"
	FieldProofID   = "proof_file_id"
	FieldProofKind = "proof_type"
	FieldSegment   = "segment"
	FieldText      = "text"
	FieldConfirmed = "confirmed"
)

// Session is the per-user conversation state.
type Session struct {
	UserID    int64             `json:"tg_id"`
	Step      Step              `json:"step"`
	Data      map[string]string `json:"data"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Start opens scene for userID at its first step.
func Start(userID int64, scene Scene, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		Step:      firstStep[scene],
		Data:      make(map[string]string),
		UpdatedAt: now,
	}
}

func (s *Session) Active() bool {
	return s != nil && s.Step != StepNone
}

func (s *Session) Get(field string) string {
	if s == nil || s.Data == nil {
		return ""
	}
	return s.Data[field]
}
