// Package core provides the business logic for the donation moderation
// pipeline. This package has no UI dependencies and can be driven by any
// frontend.
package core

import "time"

// Default values applied to donations whose optional fields are missing
// from the upstream API response.
const (
	// DefaultDonorName is used when a donor gave anonymously.
	DefaultDonorName = "Anonymous"

	// DefaultRecipient is used when a donation has no recipient set.
	DefaultRecipient = "Extra Life"

	// DefaultAvatarURL is the DonorDrive placeholder avatar.
	DefaultAvatarURL = "https://assets.donordrive.com/clients/extralife/img/avatar-constituent-default.gif"
)

// TestIDPrefix is the reserved id prefix for synthetic donations seeded
// through the admin surface. PurgeTestRecords removes only records whose
// id carries this prefix.
const TestIDPrefix = "TEST-"

// DonationRecord is a donation as held in the record store. The id is
// issued upstream and is stable across re-fetches; donor-supplied fields
// are frozen at first insertion and only the moderation flags change
// afterwards.
type DonationRecord struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Message   string  `json:"message"`
	Avatar    string  `json:"avatar"`

	// Moderation flags. Approved and Denied are mutually exclusive;
	// Shown implies Approved.
	Approved bool `json:"approved"`
	Denied   bool `json:"denied"`
	Shown    bool `json:"shown"`

	// ApprovedAt is stamped on the most recent approval, nil while pending.
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
}

// FlagQuery selects records by their exact moderation flag combination.
type FlagQuery struct {
	Approved bool
	Denied   bool
	Shown    bool
}

// PendingQuery matches records no moderator has acted on yet.
func PendingQuery() FlagQuery {
	return FlagQuery{}
}

// QueueQuery matches the on-air queue: approved but not yet shown.
func QueueQuery() FlagQuery {
	return FlagQuery{Approved: true}
}

// ReconcileResult reports the outcome of one fetch-and-reconcile cycle.
type ReconcileResult struct {
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
}
