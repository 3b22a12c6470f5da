package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// invoiceNumberPattern matches sequential invoice numbers of the form
// INV-<4 alphanumerics>-<digits>. Legacy or date-based numbers fall outside
// the pattern and never affect the sequence.
var invoiceNumberPattern = regexp.MustCompile(`^INV-([A-Z0-9]{4})-(\d+)$`)

// ClientCode derives the 4-character code embedded in invoice numbers:
// everything outside [A-Za-z0-9] stripped, uppercased, truncated to 4,
// right-padded with X when shorter.
func ClientCode(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r > unicode.MaxASCII || (!unicode.IsLetter(r) && !unicode.IsDigit(r)) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() == 4 {
			break
		}
	}
	code := b.String()
	for len(code) < 4 {
		code += "X"
	}
	return code
}

// NextInvoiceNumber allocates the next sequential number for a client given
// the full set of that client's existing invoice numbers. Numbers carrying a
// different client code are ignored, so mixed numbering schemes coexist
// without corrupting the sequence.
func NextInvoiceNumber(clientName string, existing []string) string {
	code := ClientCode(clientName)
	maxSeq := 0
	for _, num := range existing {
		m := invoiceNumberPattern.FindStringSubmatch(num)
		if m == nil || m[1] != code {
			continue
		}
		seq, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("INV-%s-%04d", code, maxSeq+1)
}
