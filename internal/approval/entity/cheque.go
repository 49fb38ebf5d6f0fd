package entity

import (
	"strings"
	"time"
	"unicode"
)

// Cheque holds the read-only facts shown to the payer.
type Cheque struct {
	Ref           string
	Number        string
	HolderName    string
	PayeeName     string
	Mobile        string
	AmountMinor   int64
	Currency      string
	IssueDate     time.Time
	ImageBucket   string
	FrontImageKey string
	BackImageKey  string
}

// DecisionRecord is what the decision store persists once per workflow.
type DecisionRecord struct {
	WorkflowID string
	ChequeRef  string
	Decision   Decision
	DecidedAt  time.Time
}

// MaskMobile keeps the country code and the last four digits, e.g.
// "+919876547890" becomes "+91 XXXXXX7890". Numbers without a "+" prefix are
// masked whole except the last four digits.
func MaskMobile(mobile string) string {
	mobile = strings.TrimSpace(mobile)

	var prefix string
	if strings.HasPrefix(mobile, "+") {
		if sp := strings.IndexFunc(mobile, unicode.IsSpace); sp > 1 {
			prefix = mobile[:sp]
			mobile = mobile[sp:]
		}
	}

	digits := make([]rune, 0, len(mobile))
	for _, r := range mobile {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}

	if prefix == "" && strings.HasPrefix(strings.TrimSpace(mobile), "+") && len(digits) > 10 {
		cc := len(digits) - 10
		prefix = "+" + string(digits[:cc])
		digits = digits[cc:]
	}

	if len(digits) <= 4 {
		return strings.TrimSpace(prefix + " " + strings.Repeat("X", len(digits)))
	}

	masked := strings.Repeat("X", len(digits)-4) + string(digits[len(digits)-4:])
	if prefix == "" {
		return masked
	}
	return prefix + " " + masked
}
