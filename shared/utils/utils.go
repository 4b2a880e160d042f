package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FirstAccountNumber is issued when no account exists yet.
const FirstAccountNumber = "1000000000"

var accountNumberPattern = regexp.MustCompile(`^[0-9]{10}$`)

// GenerateTransactionID returns an opaque 32-character hex token, unique per attempt.
func GenerateTransactionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NextAccountNumber returns the account number following latest. An empty
// latest yields FirstAccountNumber.
func NextAccountNumber(latest string) (string, error) {
	if latest == "" {
		return FirstAccountNumber, nil
	}
	n, err := strconv.ParseInt(latest, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid account number %q: %w", latest, err)
	}
	return strconv.FormatInt(n+1, 10), nil
}

// ValidateAccountNumber validates the fixed-width numeric account number format
func ValidateAccountNumber(accountNumber string) bool {
	return accountNumberPattern.MatchString(accountNumber)
}

// ValidateTransactionID validates the transaction ID format
func ValidateTransactionID(transactionID string) bool {
	return len(transactionID) == 32 && strings.Trim(transactionID, "0123456789abcdef") == ""
}
