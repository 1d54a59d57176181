package domain

import (
	"fmt"
	"strings"
)

type Hospital struct {
	ID      string `db:"hospital_id" json:"id"`
	Name    string `db:"hospital_name" json:"name"`
	Place   string `db:"place" json:"place"`
	Address string `db:"address" json:"address"`
	Phone   string `db:"phone" json:"phone"`
	Email   string `db:"email" json:"email"`
}

// VerificationStatus gates admission of a prospective hospital.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "Pending"
	VerificationRejected VerificationStatus = "Rejected"
	VerificationVerified VerificationStatus = "Verified"
)

// ParseVerification accepts the three verification labels case-insensitively.
// An empty value is treated as Pending.
func ParseVerification(s string) (VerificationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return VerificationPending, nil
	case "rejected":
		return VerificationRejected, nil
	case "verified":
		return VerificationVerified, nil
	}
	return "", fmt.Errorf("unknown verification status %q", s)
}
