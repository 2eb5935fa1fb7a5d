// Package core exposes the transactional service layer of ipstudio: CRUD and
// derived-state operations over a persistent store, the QA evaluator, publish
// pack and report generation, and the platform pack registry.
package core

import (
	"context"
	"fmt"
	"time"

	"ipstudio/internal/infra/persistence/memory"
	"ipstudio/pkg/domain"
)

// Service exposes higher-level transactional operations for the studio schema.
type Service struct {
	store   domain.PersistentStore
	plugins map[string]PluginMetadata
	qaRules map[Platform][]QARule
	publish map[Platform]PublishDefaults
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	now     func() time.Time
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		plugins: make(map[string]PluginMetadata),
		qaRules: make(map[Platform][]QARule),
		publish: make(map[Platform]PublishDefaults),
		logger:  noopLogger{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		audit:   noopAuditRecorder{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, rule := range coreQARules() {
		s.qaRules[PlatformAny] = append(s.qaRules[PlatformAny], rule)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// ErrNotFound is returned when reference validation fails within transactional helpers.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// CreateOrg persists a new tenant org.
func (s *Service) CreateOrg(ctx context.Context, org Org) (Org, Result, error) {
	ctx, finish := s.begin(ctx, "create_org")
	var created Org
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateOrg(org)
		return err
	})
	finish(EntityOrg, created.ID, err)
	return created, res, err
}

// UpdateOrg mutates an org using the provided mutator.
func (s *Service) UpdateOrg(ctx context.Context, id string, mutator func(*Org) error) (Org, Result, error) {
	ctx, finish := s.begin(ctx, "update_org")
	var updated Org
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateOrg(id, mutator)
		return err
	})
	finish(EntityOrg, id, err)
	return updated, res, err
}

// DeleteOrg removes an org record. Orgs still owning personas are refused.
func (s *Service) DeleteOrg(ctx context.Context, id string) (Result, error) {
	ctx, finish := s.begin(ctx, "delete_org")
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteOrg(id)
	})
	finish(EntityOrg, id, err)
	return res, err
}

// CreatePersona persists a new persona.
func (s *Service) CreatePersona(ctx context.Context, persona Persona) (Persona, Result, error) {
	ctx, finish := s.begin(ctx, "create_persona")
	var created Persona
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreatePersona(persona)
		return err
	})
	finish(EntityPersona, created.ID, err)
	return created, res, err
}

// UpdatePersona mutates a persona using the provided mutator.
func (s *Service) UpdatePersona(ctx context.Context, id string, mutator func(*Persona) error) (Persona, Result, error) {
	ctx, finish := s.begin(ctx, "update_persona")
	var updated Persona
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdatePersona(id, mutator)
		return err
	})
	finish(EntityPersona, id, err)
	return updated, res, err
}

// DeletePersona removes a persona and cascades to its owned records.
func (s *Service) DeletePersona(ctx context.Context, id string) (Result, error) {
	ctx, finish := s.begin(ctx, "delete_persona")
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeletePersona(id)
	})
	finish(EntityPersona, id, err)
	return res, err
}

// CreateEpoch persists a new strategic phase for a persona.
func (s *Service) CreateEpoch(ctx context.Context, epoch Epoch) (Epoch, Result, error) {
	ctx, finish := s.begin(ctx, "create_epoch")
	var created Epoch
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateEpoch(epoch)
		return err
	})
	finish(EntityEpoch, created.ID, err)
	return created, res, err
}

// UpdateEpoch mutates an epoch using the provided mutator.
func (s *Service) UpdateEpoch(ctx context.Context, id string, mutator func(*Epoch) error) (Epoch, Result, error) {
	ctx, finish := s.begin(ctx, "update_epoch")
	var updated Epoch
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateEpoch(id, mutator)
		return err
	})
	finish(EntityEpoch, id, err)
	return updated, res, err
}

// DeleteEpoch removes an epoch record.
func (s *Service) DeleteEpoch(ctx context.Context, id string) (Result, error) {
	ctx, finish := s.begin(ctx, "delete_epoch")
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteEpoch(id)
	})
	finish(EntityEpoch, id, err)
	return res, err
}

// SetCurrentEpoch atomically marks the epoch current for its persona, clears
// the flag on all siblings, and updates the persona's denormalized pointer.
func (s *Service) SetCurrentEpoch(ctx context.Context, personaID, epochID string) (Epoch, Result, error) {
	ctx, finish := s.begin(ctx, "set_current_epoch")
	var current Epoch
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		current, err = tx.SetCurrentEpoch(personaID, epochID)
		return err
	})
	finish(EntityEpoch, epochID, err)
	return current, res, err
}

// CreateEvidence persists a trust-building artifact.
func (s *Service) CreateEvidence(ctx context.Context, evidence Evidence) (Evidence, Result, error) {
	ctx, finish := s.begin(ctx, "create_evidence")
	var created Evidence
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateEvidence(evidence)
		return err
	})
	finish(EntityEvidence, created.ID, err)
	return created, res, err
}

// UpdateEvidence mutates an evidence artifact.
func (s *Service) UpdateEvidence(ctx context.Context, id string, mutator func(*Evidence) error) (Evidence, Result, error) {
	ctx, finish := s.begin(ctx, "update_evidence")
	var updated Evidence
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateEvidence(id, mutator)
		return err
	})
	finish(EntityEvidence, id, err)
	return updated, res, err
}

// DeleteEvidence removes an evidence artifact and unlinks it from contents.
func (s *Service) DeleteEvidence(ctx context.Context, id string) (Result, error) {
	ctx, finish := s.begin(ctx, "delete_evidence")
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteEvidence(id)
	})
	finish(EntityEvidence, id, err)
	return res, err
}

// CreateReference persists a collected example post.
func (s *Service) CreateReference(ctx context.Context, reference Reference) (Reference, Result, error) {
	ctx, finish := s.begin(ctx, "create_reference")
	var created Reference
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateReference(reference)
		return err
	})
	finish(EntityReference, created.ID, err)
	return created, res, err
}

// UpdateReference mutates a collected example post.
func (s *Service) UpdateReference(ctx context.Context, id string, mutator func(*Reference) error) (Reference, Result, error) {
	ctx, finish := s.begin(ctx, "update_reference")
	var updated Reference
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateReference(id, mutator)
		return err
	})
	finish(EntityReference, id, err)
	return updated, res, err
}

// DeleteReference removes a collected example post and unlinks it from contents.
func (s *Service) DeleteReference(ctx context.Context, id string) (Result, error) {
	ctx, finish := s.begin(ctx, "delete_reference")
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteReference(id)
	})
	finish(EntityReference, id, err)
	return res, err
}

// CreateContent persists a new content work item.
func (s *Service) CreateContent(ctx context.Context, content Content) (Content, Result, error) {
	ctx, finish := s.begin(ctx, "create_content")
	var created Content
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateContent(content)
		return err
	})
	finish(EntityContent, created.ID, err)
	return created, res, err
}

// UpdateContent mutates a content item using the provided mutator.
func (s *Service) UpdateContent(ctx context.Context, id string, mutator func(*Content) error) (Content, Result, error) {
	ctx, finish := s.begin(ctx, "update_content")
	var updated Content
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateContent(id, mutator)
		return err
	})
	finish(EntityContent, id, err)
	return updated, res, err
}

// DeleteContent removes a content item.
func (s *Service) DeleteContent(ctx context.Context, id string) (Result, error) {
	ctx, finish := s.begin(ctx, "delete_content")
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteContent(id)
	})
	finish(EntityContent, id, err)
	return res, err
}

// SetContentStatus moves a content item to the given workflow state. The
// content status rule rejects unknown states and publish-while-blocked
// transitions at commit time.
func (s *Service) SetContentStatus(ctx context.Context, id string, status ContentStatus) (Content, Result, error) {
	ctx, finish := s.begin(ctx, "set_content_status")
	var updated Content
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.SetContentStatus(id, status)
		return err
	})
	finish(EntityContent, id, err)
	return updated, res, err
}

// UpdateContentMetrics merges a partial metrics patch into a content item.
// Fields absent from the patch are left intact.
func (s *Service) UpdateContentMetrics(ctx context.Context, id string, patch MetricsPatch) (Content, Result, error) {
	ctx, finish := s.begin(ctx, "update_content_metrics")
	var updated Content
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.MergeContentMetrics(id, patch)
		return err
	})
	finish(EntityContent, id, err)
	return updated, res, err
}

// CreateLead persists a sales prospect. OrgID defaults from the owning persona.
func (s *Service) CreateLead(ctx context.Context, lead Lead) (Lead, Result, error) {
	ctx, finish := s.begin(ctx, "create_lead")
	var created Lead
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateLead(lead)
		return err
	})
	finish(EntityLead, created.ID, err)
	return created, res, err
}

// UpdateLead mutates a lead using the provided mutator.
func (s *Service) UpdateLead(ctx context.Context, id string, mutator func(*Lead) error) (Lead, Result, error) {
	ctx, finish := s.begin(ctx, "update_lead")
	var updated Lead
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateLead(id, mutator)
		return err
	})
	finish(EntityLead, id, err)
	return updated, res, err
}

// SetLeadStatus advances a lead through the funnel.
func (s *Service) SetLeadStatus(ctx context.Context, id string, status LeadStatus) (Lead, Result, error) {
	return s.UpdateLead(ctx, id, func(l *Lead) error {
		l.Status = status
		return nil
	})
}

// DeleteLead removes a lead record.
func (s *Service) DeleteLead(ctx context.Context, id string) (Result, error) {
	ctx, finish := s.begin(ctx, "delete_lead")
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteLead(id)
	})
	finish(EntityLead, id, err)
	return res, err
}

// PutSettings stores the org configuration record.
func (s *Service) PutSettings(ctx context.Context, settings Settings) (Settings, Result, error) {
	ctx, finish := s.begin(ctx, "put_settings")
	var stored Settings
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		stored, err = tx.PutSettings(settings)
		return err
	})
	finish(EntitySettings, settings.OrgID, err)
	return stored, res, err
}

// AddBannedWord appends a banned word to the org settings without duplicates.
func (s *Service) AddBannedWord(ctx context.Context, orgID, word string) (Settings, Result, error) {
	ctx, finish := s.begin(ctx, "add_banned_word")
	var stored Settings
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		stored, err = tx.AddBannedWord(orgID, word)
		return err
	})
	finish(EntitySettings, orgID, err)
	return stored, res, err
}

// RemoveBannedWord deletes a banned word from the org settings.
func (s *Service) RemoveBannedWord(ctx context.Context, orgID, word string) (Settings, Result, error) {
	ctx, finish := s.begin(ctx, "remove_banned_word")
	var stored Settings
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		stored, err = tx.RemoveBannedWord(orgID, word)
		return err
	})
	finish(EntitySettings, orgID, err)
	return stored, res, err
}

// AddDraftSource appends a line to the org's weekly inspiration pool with
// set-like dedup.
func (s *Service) AddDraftSource(ctx context.Context, orgID, text string) (Settings, Result, error) {
	ctx, finish := s.begin(ctx, "add_draft_source")
	var stored Settings
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		stored, err = tx.AddDraftSource(orgID, text)
		return err
	})
	finish(EntitySettings, orgID, err)
	return stored, res, err
}
