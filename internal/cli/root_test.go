package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmProceed(t *testing.T) {
	cases := map[string]bool{
		"y\n":    true,
		"Y\n":    true,
		"yes\n":  true,
		"YES\n":  true,
		" y \n":  true,
		"n\n":    false,
		"no\n":   false,
		"\n":     false,
		"maybe\n": false,
		"":       false, // EOF defaults to no
	}
	for input, want := range cases {
		var out strings.Builder
		got := confirmProceed(strings.NewReader(input), &out)
		assert.Equal(t, want, got, "input %q", input)
		assert.Contains(t, out.String(), "(y/N)")
	}
}
