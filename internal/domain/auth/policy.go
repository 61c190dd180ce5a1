package auth

import "strings"

// AdminPolicy is the bootstrap rule for the admin flag. The flag is decided
// once, at registration, and never changed by any operation afterwards:
//
//   - the very first registered user becomes admin, so a fresh deployment
//     always has an administrator;
//   - any user registering with one of the reserved admin addresses becomes
//     admin.
//
// Everyone else is a regular shopper.
type AdminPolicy struct {
	ReservedEmails []string
}

// Decide returns the AdminDecision for a registration with the given email.
func (p AdminPolicy) Decide(email string) AdminDecision {
	return func(existingUsers int64) bool {
		return existingUsers == 0 || p.reserved(email)
	}
}

func (p AdminPolicy) reserved(email string) bool {
	email = strings.TrimSpace(email)
	for _, r := range p.ReservedEmails {
		if strings.EqualFold(email, strings.TrimSpace(r)) {
			return true
		}
	}
	return false
}
