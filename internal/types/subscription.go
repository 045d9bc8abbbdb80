package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
)

// PackageStatus is the subscription tier of a tenant. FREE is the terminal
// state the expiry sweeper demotes to; paid tiers are entered only through
// payment confirmation.
type PackageStatus string

const (
	PackageStatusFree       PackageStatus = "FREE"
	PackageStatusStarter    PackageStatus = "STARTER"
	PackageStatusBusiness   PackageStatus = "BUSINESS"
	PackageStatusEnterprise PackageStatus = "ENTERPRISE"
)

func (s PackageStatus) Validate() error {
	switch s {
	case PackageStatusFree, PackageStatusStarter, PackageStatusBusiness, PackageStatusEnterprise:
		return nil
	default:
		return ierr.NewError("invalid package status").
			WithHint("Unknown subscription package").
			WithReportableDetails(map[string]any{
				"package_status": s,
			}).
			Mark(ierr.ErrValidation)
	}
}

// IsPaid returns true for any tier above FREE
func (s PackageStatus) IsPaid() bool {
	return s != PackageStatusFree && s != ""
}

// SubscriptionStatus tracks whether the paid period is currently active
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
)
