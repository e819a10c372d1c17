package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/extra-life-tools/donation-queue/internal/extralife"
)

// RecordStore is the persistence collaborator. Every method is a single
// atomic operation; callers must not assume partial writes on error.
type RecordStore interface {
	InsertIfAbsent(ctx context.Context, rec DonationRecord) (bool, error)
	Get(ctx context.Context, id string) (*DonationRecord, error)
	QueryByFlags(ctx context.Context, q FlagQuery) ([]DonationRecord, error)
	SetApproved(ctx context.Context, id string, at time.Time) error
	SetDenied(ctx context.Context, id string) error
	SetShown(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
	DeleteByIDPrefix(ctx context.Context, prefix string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// Fetcher pulls the current donation list for a team from the upstream API.
type Fetcher interface {
	TeamDonations(ctx context.Context, teamID string) ([]extralife.Donation, error)
}

// ExportSink mirrors approved donations into the append-only export file.
type ExportSink interface {
	AppendApproved(rec DonationRecord) error
}

// Broadcaster fans an event out to live-update subscribers. Best effort,
// no delivery guarantee.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// Service coordinates the moderation pipeline: it reconciles upstream
// snapshots into the store, applies moderation transitions, and executes
// the side-effect intents those transitions produce.
type Service struct {
	store    RecordStore
	fetcher  Fetcher
	sink     ExportSink
	hub      Broadcaster
	settings SettingsStore
	teamID   string

	now func() time.Time
}

// NewService wires the pipeline together. All collaborators are required
// except hub, which may be nil when no live channel is attached.
func NewService(store RecordStore, fetcher Fetcher, sink ExportSink, hub Broadcaster, settings SettingsStore, teamID string) *Service {
	return &Service{
		store:    store,
		fetcher:  fetcher,
		sink:     sink,
		hub:      hub,
		settings: settings,
		teamID:   teamID,
		now:      time.Now,
	}
}

// FetchAndReconcile pulls the full donation snapshot for the configured
// team and inserts every donation not yet stored. Safe to call arbitrarily
// often: insertion is first-write-wins, so repeated snapshots never modify
// existing records. An upstream failure reconciles nothing and returns an
// *UpstreamFetchError; stored records are unaffected.
func (s *Service) FetchAndReconcile(ctx context.Context) (ReconcileResult, error) {
	items, err := s.fetcher.TeamDonations(ctx, s.teamID)
	if err != nil {
		return ReconcileResult{}, &UpstreamFetchError{TeamID: s.teamID, Err: err}
	}

	result := ReconcileResult{Fetched: len(items)}
	for _, item := range items {
		if item.DonationID == "" {
			slog.Warn("skipping upstream donation without id")
			continue
		}

		rec := recordFromUpstream(item)
		inserted, err := s.store.InsertIfAbsent(ctx, rec)
		if err != nil {
			return result, err
		}
		if inserted {
			result.Inserted++
			s.broadcast(EventDonation, rec)
		}
	}

	return result, nil
}

// recordFromUpstream converts an upstream item to a stored record, filling
// missing optional fields with the documented defaults.
func recordFromUpstream(item extralife.Donation) DonationRecord {
	rec := DonationRecord{
		ID:        item.DonationID,
		Name:      DefaultDonorName,
		Recipient: DefaultRecipient,
		Avatar:    DefaultAvatarURL,
		Amount:    item.Amount,
	}
	if item.DisplayName != nil && *item.DisplayName != "" {
		rec.Name = *item.DisplayName
	}
	if item.RecipientName != nil && *item.RecipientName != "" {
		rec.Recipient = *item.RecipientName
	}
	if item.Message != nil {
		rec.Message = *item.Message
	}
	if item.AvatarImageURL != nil && *item.AvatarImageURL != "" {
		rec.Avatar = *item.AvatarImageURL
	}
	if rec.Amount < 0 {
		rec.Amount = 0
	}
	return rec
}

// Approve marks the donation approved (clearing any denial), then executes
// the approve intents: export append and live broadcast. The flag change is
// committed before the export runs; if the export write fails the returned
// error is an *ExportWriteError and the record stays approved. Approving an
// already-approved donation runs the export again.
func (s *Service) Approve(ctx context.Context, id string) (*DonationRecord, error) {
	if err := s.store.SetApproved(ctx, id, s.now()); err != nil {
		return nil, err
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return rec, s.runEffects(ApproveEffects(), *rec)
}

// Deny marks the donation denied, clearing any prior approval. Lines already
// written to the export file are not retracted.
func (s *Service) Deny(ctx context.Context, id string) (*DonationRecord, error) {
	if err := s.store.SetDenied(ctx, id); err != nil {
		return nil, err
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return rec, s.runEffects(DenyEffects(), *rec)
}

// MarkShown marks an approved donation as shown and notifies the display
// system. Returns ErrNotApproved when the donation has not been approved.
func (s *Service) MarkShown(ctx context.Context, id string) (*DonationRecord, error) {
	if err := s.store.SetShown(ctx, id); err != nil {
		return nil, err
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return rec, s.runEffects(ShownEffects(), *rec)
}

// runEffects executes transition intents in order. The export append is the
// only effect that can fail; broadcasts are fire-and-forget.
func (s *Service) runEffects(effects []SideEffect, rec DonationRecord) error {
	for _, effect := range effects {
		switch effect.Kind {
		case EffectExportAppend:
			if err := s.sink.AppendApproved(rec); err != nil {
				return err
			}
		case EffectBroadcast:
			s.broadcast(effect.Event, rec)
		}
	}
	return nil
}

func (s *Service) broadcast(event string, rec DonationRecord) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(event, rec)
}

// Get returns a single donation by id.
func (s *Service) Get(ctx context.Context, id string) (*DonationRecord, error) {
	return s.store.Get(ctx, id)
}

// ListByFlags returns donations matching the flag combination exactly.
func (s *Service) ListByFlags(ctx context.Context, q FlagQuery) ([]DonationRecord, error) {
	return s.store.QueryByFlags(ctx, q)
}

// ListPending returns donations no moderator has acted on.
func (s *Service) ListPending(ctx context.Context) ([]DonationRecord, error) {
	return s.store.QueryByFlags(ctx, PendingQuery())
}

// ListQueue returns the on-air queue: approved, not denied, not yet shown.
func (s *Service) ListQueue(ctx context.Context) ([]DonationRecord, error) {
	return s.store.QueryByFlags(ctx, QueueQuery())
}

// Count returns the total number of stored donations.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Reset wipes every stored donation. Administrative full reset; the export
// file is left untouched.
func (s *Service) Reset(ctx context.Context) error {
	return s.store.ClearAll(ctx)
}

// PurgeTestRecords deletes all synthetic donations (ids with TestIDPrefix)
// and returns the number removed. Real records are never touched.
func (s *Service) PurgeTestRecords(ctx context.Context) (int64, error) {
	return s.store.DeleteByIDPrefix(ctx, TestIDPrefix)
}

// SeedTestDonation inserts a synthetic donation under the reserved id
// prefix so moderators can exercise the pipeline end to end. Test records
// obey all the same invariants as real ones.
func (s *Service) SeedTestDonation(ctx context.Context, name, message string, amount float64) (*DonationRecord, error) {
	if name == "" {
		name = "Test Donor"
	}
	if amount < 0 {
		amount = 0
	}

	rec := DonationRecord{
		ID:        TestIDPrefix + uuid.NewString(),
		Name:      name,
		Recipient: DefaultRecipient,
		Amount:    amount,
		Message:   message,
		Avatar:    DefaultAvatarURL,
	}

	if _, err := s.store.InsertIfAbsent(ctx, rec); err != nil {
		return nil, err
	}
	s.broadcast(EventDonation, rec)
	return &rec, nil
}

// ExportSettings returns the current persisted export configuration.
func (s *Service) ExportSettings() ExportSettings {
	return s.settings.Get()
}

// UpdateExportSettings validates and persists new export configuration,
// which takes effect on the next approval.
func (s *Service) UpdateExportSettings(settings ExportSettings) error {
	return s.settings.Update(settings)
}
