package cmd

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dln-law/payments-portal/internal/types"
)

// readFormFile reads a form file, or stdin when path is "-".
func readFormFile(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form file: %w", err)
	}
	return data, nil
}

// decodePaymentForm parses a YAML (or JSON) payment form.
//
// EXAMPLE:
//
//	name: Jane Doe
//	email: jane@x.com
//	caseId: CASE-001
//	matterType: Litigation
//	amount: "$1,234.56"
//	acknowledgeRelationship: true
//	acknowledgeConfidential: true
func decodePaymentForm(data []byte) (types.RawFormInput, error) {
	var in types.RawFormInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("failed to parse payment form: %w", err)
	}
	return in, nil
}

// decodeContactForm parses a YAML (or JSON) contact form.
func decodeContactForm(data []byte) (types.ContactInput, error) {
	var in types.ContactInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("failed to parse contact form: %w", err)
	}
	return in, nil
}
