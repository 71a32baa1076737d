package processor_test

import (
	"testing"

	"github.com/desertthunder/arofill/internal/processor"
	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain address", "bob@client.com", true},
		{"subdomain and tag", "a.b+tag@sub.domain.co", true},
		{"generated address", "job3422@x.aroflo.com", true},
		{"surrounding whitespace", "  bob@client.com  ", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"not an email", "not-an-email", false},
		{"missing tld", "bob@client", false},
		{"placeholder on", "on", false},
		{"placeholder off", "off", false},
		{"placeholder true", "true", false},
		{"placeholder false", "false", false},
		{"placeholder mixed case", "TRUE", false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, processor.ValidEmail(tt.input), "ValidEmail(%q)", tt.input)
		})
	}
}
