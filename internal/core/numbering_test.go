package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientCode(t *testing.T) {
	tests := []struct {
		name   string
		client string
		want   string
	}{
		{"plain name", "Acme Corporation", "ACME"},
		{"punctuation stripped", "Acme Corp!!", "ACME"},
		{"short name padded", "Bo", "BOXX"},
		{"digits kept", "4th Wall Media", "4THW"},
		{"spaces removed", "A B C D E", "ABCD"},
		{"lowercase uppercased", "acme", "ACME"},
		{"empty name", "", "XXXX"},
		{"only punctuation", "***", "XXXX"},
		{"non-ascii stripped", "Café Münchner", "CAFM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientCode(tt.client))
		})
	}
}

func TestNextInvoiceNumber(t *testing.T) {
	t.Run("first invoice", func(t *testing.T) {
		assert.Equal(t, "INV-ACME-0001", NextInvoiceNumber("Acme Corp", nil))
	})

	t.Run("increments highest sequence", func(t *testing.T) {
		existing := []string{"INV-ACME-0001", "INV-ACME-0007", "INV-ACME-0003"}
		assert.Equal(t, "INV-ACME-0008", NextInvoiceNumber("Acme Corp", existing))
	})

	t.Run("gaps are not reused", func(t *testing.T) {
		existing := []string{"INV-ACME-0001", "INV-ACME-0005"}
		assert.Equal(t, "INV-ACME-0006", NextInvoiceNumber("Acme Corp", existing))
	})

	t.Run("other clients ignored", func(t *testing.T) {
		existing := []string{"INV-GLBX-0009", "INV-ACME-0002"}
		assert.Equal(t, "INV-ACME-0003", NextInvoiceNumber("Acme Corp", existing))
	})

	t.Run("malformed numbers ignored", func(t *testing.T) {
		existing := []string{"DRAFT-1", "INV-ACME-abc", "INV-ACME-0004"}
		assert.Equal(t, "INV-ACME-0005", NextInvoiceNumber("Acme Corp", existing))
	})

	t.Run("sequence beyond four digits", func(t *testing.T) {
		existing := []string{"INV-ACME-9999"}
		assert.Equal(t, "INV-ACME-10000", NextInvoiceNumber("Acme Corp", existing))
	})
}
