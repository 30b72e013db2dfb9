package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func TestRegistrationScene(t *testing.T) {
	s := Start(1001, SceneRegistration, now)
	require.Equal(t, StepRegName, s.Step)

	steps := []struct {
		in   Input
		want Step
	}{
		{Input{Kind: InputText, Text: " Aziz "}, StepRegPhone},
		{Input{Kind: InputText, Text: "+998 90 123 45 67"}, StepRegGoal},
		{Input{Kind: InputCallback, Text: "reg_goal:JLPT"}, StepRegLevel},
		{Input{Kind: InputCallback, Text: "reg_level:N5"}, StepRegSource},
	}
	for _, st := range steps {
		res := Apply(s, st.in)
		require.Equal(t, Advance, res.Outcome)
		require.Equal(t, st.want, s.Step)
	}

	res := Apply(s, Input{Kind: InputCallback, Text: "reg_source:Instagram"})
	assert.Equal(t, Terminate, res.Outcome)
	assert.False(t, s.Active())
	assert.Equal(t, map[string]string{
		FieldName:   "Aziz",
		FieldPhone:  "+998901234567",
		FieldGoal:   "JLPT",
		FieldLevel:  "N5",
		FieldSource: "Instagram",
	}, s.Data)
}

func TestPhoneFromSharedContact(t *testing.T) {
	s := &Session{UserID: 1, Step: StepRegPhone}
	res := Apply(s, Input{Kind: InputContact, Phone: "998901234567"})
	assert.Equal(t, Advance, res.Outcome)
	assert.Equal(t, "998901234567", s.Get(FieldPhone))
}

func TestInvalidInputSuspendsWithoutMutation(t *testing.T) {
	tests := []struct {
		name   string
		step   Step
		in     Input
		reason string
	}{
		{"short phone", StepRegPhone, Input{Kind: InputText, Text: "12345"}, ReasonInvalidPhone},
		{"empty name", StepRegName, Input{Kind: InputText, Text: "   "}, ReasonInvalidName},
		{"unknown goal", StepRegGoal, Input{Kind: InputCallback, Text: "reg_goal:Chess"}, ReasonChooseOption},
		{"foreign callback", StepRegLevel, Input{Kind: InputCallback, Text: "reg_goal:JLPT"}, ReasonChooseOption},
		{"text instead of button", StepRegGoal, Input{Kind: InputText, Text: "JLPT"}, ReasonUnexpectedInput},
		{"text instead of proof", StepPayProof, Input{Kind: InputText, Text: "paid"}, ReasonProofRequired},
		{"blank broadcast", StepBcText, Input{Kind: InputText, Text: " "}, ReasonEmptyText},
		{"unknown segment", StepBcSegment, Input{Kind: InputCallback, Text: "bc:seg:VIP"}, ReasonChooseOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{UserID: 1, Step: tt.step, Data: map[string]string{FieldName: "Aziz"}}
			res := Apply(s, tt.in)
			assert.Equal(t, Suspend, res.Outcome)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, tt.step, s.Step)
			assert.Equal(t, map[string]string{FieldName: "Aziz"}, s.Data)
		})
	}
}

func TestPaymentScene(t *testing.T) {
	s := Start(7, ScenePayment, now)
	res := Apply(s, Input{Kind: InputAttachment, FileID: "AgAD", FileKind: "photo"})
	assert.Equal(t, Terminate, res.Outcome)
	assert.Equal(t, "AgAD", s.Get(FieldProofID))
	assert.Equal(t, "photo", s.Get(FieldProofKind))
}

func TestBroadcastScene(t *testing.T) {
	s := Start(42, SceneBroadcast, now)

	assert.Equal(t, Advance, Apply(s, Input{Kind: InputCallback, Text: "bc:seg:ACTIVE"}).Outcome)
	assert.Equal(t, Advance, Apply(s, Input{Kind: InputText, Text: "Dars bugun"}).Outcome)
	assert.Equal(t, StepBcConfirm, s.Step)

	res := Apply(s, Input{Kind: InputCallback, Text: CallbackBcConfirm})
	assert.Equal(t, Terminate, res.Outcome)
	assert.Equal(t, "ACTIVE", s.Get(FieldSegment))
	assert.Equal(t, "Dars bugun", s.Get(FieldText))
	assert.Equal(t, "true", s.Get(FieldConfirmed))
}

func TestBroadcastCancel(t *testing.T) {
	s := &Session{UserID: 42, Step: StepBcConfirm, Data: map[string]string{FieldSegment: "ALL", FieldText: "hi"}}
	res := Apply(s, Input{Kind: InputCallback, Text: CallbackBcCancel})
	assert.Equal(t, Terminate, res.Outcome)
	assert.Equal(t, "false", s.Get(FieldConfirmed))
}

func TestStepScene(t *testing.T) {
	assert.Equal(t, SceneRegistration, StepRegSource.Scene())
	assert.Equal(t, ScenePayment, StepPayProof.Scene())
	assert.Equal(t, SceneBroadcast, StepBcText.Scene())
}
