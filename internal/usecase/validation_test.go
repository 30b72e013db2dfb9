package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/lead-engine/internal/entity"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+998 (90) 123-45-67":  "+998901234567",
		"998901234567":         "998901234567",
		"90 123 45 67":         "901234567",
		"tel: +998-90-1234567": "+998901234567",
		"90+123":               "90123",
		"":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), "input %q", in)
	}
}

func TestIsValidPhone(t *testing.T) {
	valid := []string{"+998901234567", "998901234567", "901234567"}
	invalid := []string{"+99890123456", "+7901234567", "12345678", "1234567890", "+901234567", "", "+"}

	for _, p := range valid {
		assert.True(t, IsValidPhone(p), "expected %q to be valid", p)
	}
	for _, p := range invalid {
		assert.False(t, IsValidPhone(p), "expected %q to be invalid", p)
	}
}

func TestValidateRegisterLeadInput(t *testing.T) {
	ok := RegisterLeadInput{UserID: 1, Name: "Aziz", Phone: "+998901234567", Goal: "JLPT", Level: "N5", Source: "Instagram"}
	assert.Empty(t, ValidateRegisterLeadInput(ok))

	bad := RegisterLeadInput{Name: " ", Phone: "123", Goal: "Other", Level: "N1", Source: "TV"}
	errs := ValidateRegisterLeadInput(bad)
	for _, field := range []string{"tg_id", "name", "phone", "goal", "level", "source"} {
		assert.True(t, errs.Has(field), "missing error for %s", field)
	}
}

func TestValidateProof(t *testing.T) {
	assert.Empty(t, ValidateProof(entity.Proof{FileID: "abc", Kind: entity.ProofPhoto}))
	errs := ValidateProof(entity.Proof{Kind: "video"})
	assert.True(t, errs.Has("proof_file_id"))
	assert.True(t, errs.Has("proof_type"))
}
