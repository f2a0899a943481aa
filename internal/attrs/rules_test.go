package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRuleRejectsBadSource(t *testing.T) {
	_, err := CompileRule("broken", `value &&`)
	assert.Error(t, err)
}

func TestCompileRuleRejectsNonBool(t *testing.T) {
	_, err := CompileRule("notBool", `num(value)`)
	assert.Error(t, err)
}

func TestRuleEval(t *testing.T) {
	tests := []struct {
		name   string
		source string
		value  string
		want   bool
	}{
		{"nonEmpty accepts text", `value != ""`, "r_0", true},
		{"nonEmpty rejects empty", `value != ""`, "", false},

		{"float accepts integer text", `isNum(value)`, "13", true},
		{"float accepts negative", `isNum(value)`, "-12.5", true},
		{"float rejects words", `isNum(value)`, "dummy", false},

		{"positive rejects zero", `isNum(value) && num(value) > 0`, "0", false},
		{"positive accepts decimal", `isNum(value) && num(value) > 0`, "13.2", true},

		{"nonNegativeInt accepts zero", `isInt(value) && num(value) >= 0`, "0", true},
		{"nonNegativeInt accepts plain", `isInt(value) && num(value) >= 0`, "30", true},
		{"nonNegativeInt rejects negative", `isInt(value) && num(value) >= 0`, "-20", false},
		{"nonNegativeInt rejects decimal", `isInt(value) && num(value) >= 0`, "30.2", false},
		{"nonNegativeInt rejects words", `isInt(value) && num(value) >= 0`, "dummy", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := CompileRule(tt.name, tt.source)
			require.NoError(t, err)
			got, err := r.Eval(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "value %q against %s", tt.value, tt.source)
		})
	}
}

func TestMustCompileRulePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompileRule("broken", `((`) })
}
