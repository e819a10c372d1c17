package core

// intents.go models moderation side effects as explicit intents.
//
// A transition never performs I/O itself: it reports which effects the
// coordinating Service must execute (export appends, live broadcasts). This
// keeps the transition rules unit-testable without a filesystem or network.

// Event names published on the live update channel.
const (
	EventDonation         = "donation"
	EventDonationApproved = "donation-approved"
	EventDonationShown    = "donation-shown"
)

// EffectKind identifies a side effect produced by a moderation transition.
type EffectKind string

const (
	// EffectExportAppend appends the record to the configured export file.
	EffectExportAppend EffectKind = "export-append"

	// EffectBroadcast pushes the record to live-update subscribers.
	EffectBroadcast EffectKind = "broadcast"
)

// SideEffect is one intent produced by a transition. Broadcast effects carry
// the event name to publish under.
type SideEffect struct {
	Kind  EffectKind
	Event string
}

// ApproveEffects are the intents of a successful approve transition: the
// record is mirrored to the export file and pushed to live viewers. Export
// runs on every approval, including re-approvals of an already-approved
// record; the export file is append-only and lines are never retracted.
func ApproveEffects() []SideEffect {
	return []SideEffect{
		{Kind: EffectExportAppend},
		{Kind: EffectBroadcast, Event: EventDonationApproved},
	}
}

// DenyEffects are the intents of a deny transition. A denial never writes to
// the export file, even when it reverses an earlier approval.
func DenyEffects() []SideEffect {
	return nil
}

// ShownEffects are the intents of a mark-shown transition: the display
// system is notified so it can run its on-air presentation.
func ShownEffects() []SideEffect {
	return []SideEffect{
		{Kind: EffectBroadcast, Event: EventDonationShown},
	}
}
