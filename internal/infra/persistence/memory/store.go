// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ipstudio/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Org aliases domain.Org for in-memory persistence operations.
	Org = domain.Org
	// Persona aliases domain.Persona.
	Persona = domain.Persona
	// Epoch aliases domain.Epoch.
	Epoch = domain.Epoch
	// Evidence aliases domain.Evidence.
	Evidence = domain.Evidence
	// Reference aliases domain.Reference.
	Reference = domain.Reference
	// Content aliases domain.Content.
	Content = domain.Content
	// Lead aliases domain.Lead.
	Lead = domain.Lead
	// InboxItem aliases domain.InboxItem.
	InboxItem = domain.InboxItem
	// WeeklyReport aliases domain.WeeklyReport.
	WeeklyReport = domain.WeeklyReport
	// Settings aliases domain.Settings.
	Settings = domain.Settings
	// Session aliases domain.Session.
	Session = domain.Session
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	orgs       map[string]Org
	personas   map[string]Persona
	epochs     map[string]Epoch
	evidences  map[string]Evidence
	references map[string]Reference
	contents   map[string]Content
	leads      map[string]Lead
	inbox      map[string]InboxItem
	reports    map[string]WeeklyReport
	settings   map[string]Settings // keyed by org ID
	sessions   map[string]Session  // keyed by user ID
}

// Snapshot captures a point-in-time clone of the store state. It is the unit
// of persistence for the durable backends.
type Snapshot struct {
	Orgs       map[string]Org          `json:"orgs"`
	Personas   map[string]Persona      `json:"personas"`
	Epochs     map[string]Epoch        `json:"epochs"`
	Evidences  map[string]Evidence     `json:"evidences"`
	References map[string]Reference    `json:"references"`
	Contents   map[string]Content      `json:"contents"`
	Leads      map[string]Lead         `json:"leads"`
	Inbox      map[string]InboxItem    `json:"inbox"`
	Reports    map[string]WeeklyReport `json:"reports"`
	Settings   map[string]Settings     `json:"settings"`
	Sessions   map[string]Session      `json:"sessions"`
}

func newMemoryState() memoryState {
	return memoryState{
		orgs:       make(map[string]Org),
		personas:   make(map[string]Persona),
		epochs:     make(map[string]Epoch),
		evidences:  make(map[string]Evidence),
		references: make(map[string]Reference),
		contents:   make(map[string]Content),
		leads:      make(map[string]Lead),
		inbox:      make(map[string]InboxItem),
		reports:    make(map[string]WeeklyReport),
		settings:   make(map[string]Settings),
		sessions:   make(map[string]Session),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.orgs {
		cloned.orgs[k] = cloneOrg(v)
	}
	for k, v := range s.personas {
		cloned.personas[k] = clonePersona(v)
	}
	for k, v := range s.epochs {
		cloned.epochs[k] = cloneEpoch(v)
	}
	for k, v := range s.evidences {
		cloned.evidences[k] = cloneEvidence(v)
	}
	for k, v := range s.references {
		cloned.references[k] = cloneReference(v)
	}
	for k, v := range s.contents {
		cloned.contents[k] = cloneContent(v)
	}
	for k, v := range s.leads {
		cloned.leads[k] = cloneLead(v)
	}
	for k, v := range s.inbox {
		cloned.inbox[k] = cloneInboxItem(v)
	}
	for k, v := range s.reports {
		cloned.reports[k] = cloneWeeklyReport(v)
	}
	for k, v := range s.settings {
		cloned.settings[k] = cloneSettings(v)
	}
	for k, v := range s.sessions {
		cloned.sessions[k] = cloneSession(v)
	}
	return cloned
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// RulesEngine returns the engine evaluated at every commit.
func (s *Store) RulesEngine() *RulesEngine { return s.engine }

// NowFunc returns the clock used to stamp records.
func (s *Store) NowFunc() func() time.Time { return s.nowFn }

// SetNowFunc overrides the store clock, primarily for deterministic tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// transaction is the mutable unit of work over a cloned state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

var _ domain.Transaction = (*transaction)(nil)

// RunInTransaction executes fn within a transactional copy of the store state.
// Rules run against the post-mutation snapshot; a blocking violation discards
// the clone and returns RuleViolationError.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTxView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newTxView(&snapshot))
}

// ExportState returns a deep copy of the committed state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cloned := s.state.clone()
	return Snapshot{
		Orgs:       cloned.orgs,
		Personas:   cloned.personas,
		Epochs:     cloned.epochs,
		Evidences:  cloned.evidences,
		References: cloned.references,
		Contents:   cloned.contents,
		Leads:      cloned.leads,
		Inbox:      cloned.inbox,
		Reports:    cloned.reports,
		Settings:   cloned.settings,
		Sessions:   cloned.sessions,
	}
}

// ImportState replaces the committed state with the snapshot. An empty
// snapshot resets the whole tree.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for k, v := range snapshot.Orgs {
		state.orgs[k] = cloneOrg(v)
	}
	for k, v := range snapshot.Personas {
		state.personas[k] = clonePersona(v)
	}
	for k, v := range snapshot.Epochs {
		state.epochs[k] = cloneEpoch(v)
	}
	for k, v := range snapshot.Evidences {
		state.evidences[k] = cloneEvidence(v)
	}
	for k, v := range snapshot.References {
		state.references[k] = cloneReference(v)
	}
	for k, v := range snapshot.Contents {
		state.contents[k] = cloneContent(v)
	}
	for k, v := range snapshot.Leads {
		state.leads[k] = cloneLead(v)
	}
	for k, v := range snapshot.Inbox {
		state.inbox[k] = cloneInboxItem(v)
	}
	for k, v := range snapshot.Reports {
		state.reports[k] = cloneWeeklyReport(v)
	}
	for k, v := range snapshot.Settings {
		state.settings[k] = cloneSettings(v)
	}
	for k, v := range snapshot.Sessions {
		state.sessions[k] = cloneSession(v)
	}
	s.state = state
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes a read-only view of the transactional state to callers.
func (tx *transaction) Snapshot() TransactionView {
	return newTxView(&tx.state)
}

// Org -----------------------------------------------------------------------

// CreateOrg stores a new org within the transaction.
func (tx *transaction) CreateOrg(o Org) (Org, error) {
	if o.ID == "" {
		o.ID = tx.store.newID()
	}
	if _, exists := tx.state.orgs[o.ID]; exists {
		return Org{}, fmt.Errorf("org %q already exists", o.ID)
	}
	if strings.TrimSpace(o.Name) == "" {
		return Org{}, errors.New("org name is required")
	}
	o.CreatedAt = tx.now
	o.UpdatedAt = tx.now
	tx.state.orgs[o.ID] = cloneOrg(o)
	tx.recordChange(Change{Entity: domain.EntityOrg, Action: domain.ActionCreate, After: cloneOrg(o)})
	return cloneOrg(o), nil
}

// UpdateOrg mutates an org using the provided mutator function.
func (tx *transaction) UpdateOrg(id string, mutator func(*Org) error) (Org, error) {
	current, ok := tx.state.orgs[id]
	if !ok {
		return Org{}, fmt.Errorf("org %q not found", id)
	}
	before := cloneOrg(current)
	if err := mutator(&current); err != nil {
		return Org{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.orgs[id] = cloneOrg(current)
	tx.recordChange(Change{Entity: domain.EntityOrg, Action: domain.ActionUpdate, Before: before, After: cloneOrg(current)})
	return cloneOrg(current), nil
}

// DeleteOrg removes an org. Orgs that still own personas cannot be deleted;
// the cascade policy is explicit at the persona level.
func (tx *transaction) DeleteOrg(id string) error {
	current, ok := tx.state.orgs[id]
	if !ok {
		return fmt.Errorf("org %q not found", id)
	}
	for _, p := range tx.state.personas {
		if p.OrgID == id {
			return fmt.Errorf("org %q still owns persona %q", id, p.ID)
		}
	}
	delete(tx.state.orgs, id)
	delete(tx.state.settings, id)
	tx.recordChange(Change{Entity: domain.EntityOrg, Action: domain.ActionDelete, Before: cloneOrg(current)})
	return nil
}

// Persona --------------------------------------------------------------------

// CreatePersona stores a new persona within the transaction.
func (tx *transaction) CreatePersona(p Persona) (Persona, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.personas[p.ID]; exists {
		return Persona{}, fmt.Errorf("persona %q already exists", p.ID)
	}
	if _, ok := tx.state.orgs[p.OrgID]; !ok {
		return Persona{}, fmt.Errorf("persona org %q not found", p.OrgID)
	}
	if p.Status == "" {
		p.Status = domain.PersonaActive
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.personas[p.ID] = clonePersona(p)
	tx.recordChange(Change{Entity: domain.EntityPersona, Action: domain.ActionCreate, After: clonePersona(p)})
	return clonePersona(p), nil
}

// UpdatePersona mutates a persona using the provided mutator function.
func (tx *transaction) UpdatePersona(id string, mutator func(*Persona) error) (Persona, error) {
	current, ok := tx.state.personas[id]
	if !ok {
		return Persona{}, fmt.Errorf("persona %q not found", id)
	}
	before := clonePersona(current)
	if err := mutator(&current); err != nil {
		return Persona{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.personas[id] = clonePersona(current)
	tx.recordChange(Change{Entity: domain.EntityPersona, Action: domain.ActionUpdate, Before: before, After: clonePersona(current)})
	return clonePersona(current), nil
}

// DeletePersona removes a persona and cascades to every record it owns:
// epochs, evidences, references, contents, leads, and inbox items. Sessions
// pointing at the persona fall back to the first remaining persona of the
// same org.
func (tx *transaction) DeletePersona(id string) error {
	current, ok := tx.state.personas[id]
	if !ok {
		return fmt.Errorf("persona %q not found", id)
	}
	delete(tx.state.personas, id)
	for k, v := range tx.state.epochs {
		if v.PersonaID == id {
			delete(tx.state.epochs, k)
		}
	}
	for k, v := range tx.state.evidences {
		if v.PersonaID == id {
			delete(tx.state.evidences, k)
		}
	}
	for k, v := range tx.state.references {
		if v.PersonaID == id {
			delete(tx.state.references, k)
		}
	}
	for k, v := range tx.state.contents {
		if v.PersonaID == id {
			delete(tx.state.contents, k)
		}
	}
	for k, v := range tx.state.leads {
		if v.PersonaID == id {
			delete(tx.state.leads, k)
		}
	}
	for k, v := range tx.state.inbox {
		if v.PersonaID == id {
			delete(tx.state.inbox, k)
		}
	}
	for k, v := range tx.state.reports {
		if v.PersonaID == id {
			delete(tx.state.reports, k)
		}
	}
	for userID, sess := range tx.state.sessions {
		if sess.CurrentPersonaID == nil || *sess.CurrentPersonaID != id {
			continue
		}
		sess.CurrentPersonaID = nil
		if sess.CurrentOrgID != nil {
			if next, ok := firstPersonaForOrg(&tx.state, *sess.CurrentOrgID); ok {
				nextID := next.ID
				sess.CurrentPersonaID = &nextID
			}
		}
		sess.UpdatedAt = tx.now
		tx.state.sessions[userID] = cloneSession(sess)
	}
	tx.recordChange(Change{Entity: domain.EntityPersona, Action: domain.ActionDelete, Before: clonePersona(current)})
	return nil
}

// Epoch ----------------------------------------------------------------------

// CreateEpoch stores a new epoch within the transaction.
func (tx *transaction) CreateEpoch(e Epoch) (Epoch, error) {
	if e.ID == "" {
		e.ID = tx.store.newID()
	}
	if _, exists := tx.state.epochs[e.ID]; exists {
		return Epoch{}, fmt.Errorf("epoch %q already exists", e.ID)
	}
	if _, ok := tx.state.personas[e.PersonaID]; !ok {
		return Epoch{}, fmt.Errorf("epoch persona %q not found", e.PersonaID)
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	tx.state.epochs[e.ID] = cloneEpoch(e)
	tx.recordChange(Change{Entity: domain.EntityEpoch, Action: domain.ActionCreate, After: cloneEpoch(e)})
	return cloneEpoch(e), nil
}

// UpdateEpoch mutates an epoch using the provided mutator function.
func (tx *transaction) UpdateEpoch(id string, mutator func(*Epoch) error) (Epoch, error) {
	current, ok := tx.state.epochs[id]
	if !ok {
		return Epoch{}, fmt.Errorf("epoch %q not found", id)
	}
	before := cloneEpoch(current)
	if err := mutator(&current); err != nil {
		return Epoch{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.epochs[id] = cloneEpoch(current)
	tx.recordChange(Change{Entity: domain.EntityEpoch, Action: domain.ActionUpdate, Before: before, After: cloneEpoch(current)})
	return cloneEpoch(current), nil
}

// DeleteEpoch removes an epoch and clears any persona pointer referencing it.
func (tx *transaction) DeleteEpoch(id string) error {
	current, ok := tx.state.epochs[id]
	if !ok {
		return fmt.Errorf("epoch %q not found", id)
	}
	delete(tx.state.epochs, id)
	if p, ok := tx.state.personas[current.PersonaID]; ok {
		if p.CurrentEpochID != nil && *p.CurrentEpochID == id {
			p.CurrentEpochID = nil
			p.UpdatedAt = tx.now
			tx.state.personas[p.ID] = clonePersona(p)
		}
	}
	tx.recordChange(Change{Entity: domain.EntityEpoch, Action: domain.ActionDelete, Before: cloneEpoch(current)})
	return nil
}

// SetCurrentEpoch marks epochID current for personaID, clears the flag on all
// sibling epochs, and updates the persona's denormalized pointer. All three
// writes land in the same transaction so the invariant cannot be observed
// half-applied.
func (tx *transaction) SetCurrentEpoch(personaID, epochID string) (Epoch, error) {
	persona, ok := tx.state.personas[personaID]
	if !ok {
		return Epoch{}, fmt.Errorf("persona %q not found", personaID)
	}
	target, ok := tx.state.epochs[epochID]
	if !ok {
		return Epoch{}, fmt.Errorf("epoch %q not found", epochID)
	}
	if target.PersonaID != personaID {
		return Epoch{}, fmt.Errorf("epoch %q does not belong to persona %q", epochID, personaID)
	}
	for id, e := range tx.state.epochs {
		if e.PersonaID != personaID {
			continue
		}
		isTarget := id == epochID
		if e.IsCurrent == isTarget {
			continue
		}
		before := cloneEpoch(e)
		e.IsCurrent = isTarget
		e.UpdatedAt = tx.now
		tx.state.epochs[id] = cloneEpoch(e)
		tx.recordChange(Change{Entity: domain.EntityEpoch, Action: domain.ActionUpdate, Before: before, After: cloneEpoch(e)})
	}
	beforePersona := clonePersona(persona)
	epochRef := epochID
	persona.CurrentEpochID = &epochRef
	persona.UpdatedAt = tx.now
	tx.state.personas[personaID] = clonePersona(persona)
	tx.recordChange(Change{Entity: domain.EntityPersona, Action: domain.ActionUpdate, Before: beforePersona, After: clonePersona(persona)})
	return cloneEpoch(tx.state.epochs[epochID]), nil
}

// Evidence -------------------------------------------------------------------

// CreateEvidence stores a new evidence artifact.
func (tx *transaction) CreateEvidence(e Evidence) (Evidence, error) {
	if e.ID == "" {
		e.ID = tx.store.newID()
	}
	if _, exists := tx.state.evidences[e.ID]; exists {
		return Evidence{}, fmt.Errorf("evidence %q already exists", e.ID)
	}
	if _, ok := tx.state.personas[e.PersonaID]; !ok {
		return Evidence{}, fmt.Errorf("evidence persona %q not found", e.PersonaID)
	}
	if e.Visibility == "" {
		e.Visibility = domain.VisibilityInternal
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	tx.state.evidences[e.ID] = cloneEvidence(e)
	tx.recordChange(Change{Entity: domain.EntityEvidence, Action: domain.ActionCreate, After: cloneEvidence(e)})
	return cloneEvidence(e), nil
}

// UpdateEvidence mutates an evidence artifact.
func (tx *transaction) UpdateEvidence(id string, mutator func(*Evidence) error) (Evidence, error) {
	current, ok := tx.state.evidences[id]
	if !ok {
		return Evidence{}, fmt.Errorf("evidence %q not found", id)
	}
	before := cloneEvidence(current)
	if err := mutator(&current); err != nil {
		return Evidence{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.evidences[id] = cloneEvidence(current)
	tx.recordChange(Change{Entity: domain.EntityEvidence, Action: domain.ActionUpdate, Before: before, After: cloneEvidence(current)})
	return cloneEvidence(current), nil
}

// DeleteEvidence removes an evidence artifact and unlinks it from contents.
func (tx *transaction) DeleteEvidence(id string) error {
	current, ok := tx.state.evidences[id]
	if !ok {
		return fmt.Errorf("evidence %q not found", id)
	}
	delete(tx.state.evidences, id)
	for cid, c := range tx.state.contents {
		trimmed := removeString(c.EvidenceIDs, id)
		if len(trimmed) == len(c.EvidenceIDs) {
			continue
		}
		c.EvidenceIDs = trimmed
		c.UpdatedAt = tx.now
		tx.state.contents[cid] = cloneContent(c)
	}
	tx.recordChange(Change{Entity: domain.EntityEvidence, Action: domain.ActionDelete, Before: cloneEvidence(current)})
	return nil
}

// Reference ------------------------------------------------------------------

// CreateReference stores a collected example post.
func (tx *transaction) CreateReference(r Reference) (Reference, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.references[r.ID]; exists {
		return Reference{}, fmt.Errorf("reference %q already exists", r.ID)
	}
	if _, ok := tx.state.personas[r.PersonaID]; !ok {
		return Reference{}, fmt.Errorf("reference persona %q not found", r.PersonaID)
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.references[r.ID] = cloneReference(r)
	tx.recordChange(Change{Entity: domain.EntityReference, Action: domain.ActionCreate, After: cloneReference(r)})
	return cloneReference(r), nil
}

// UpdateReference mutates a collected reference.
func (tx *transaction) UpdateReference(id string, mutator func(*Reference) error) (Reference, error) {
	current, ok := tx.state.references[id]
	if !ok {
		return Reference{}, fmt.Errorf("reference %q not found", id)
	}
	before := cloneReference(current)
	if err := mutator(&current); err != nil {
		return Reference{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.references[id] = cloneReference(current)
	tx.recordChange(Change{Entity: domain.EntityReference, Action: domain.ActionUpdate, Before: before, After: cloneReference(current)})
	return cloneReference(current), nil
}

// DeleteReference removes a reference and unlinks it from contents.
func (tx *transaction) DeleteReference(id string) error {
	current, ok := tx.state.references[id]
	if !ok {
		return fmt.Errorf("reference %q not found", id)
	}
	delete(tx.state.references, id)
	for cid, c := range tx.state.contents {
		trimmed := removeString(c.ReferenceIDs, id)
		if len(trimmed) == len(c.ReferenceIDs) {
			continue
		}
		c.ReferenceIDs = trimmed
		c.UpdatedAt = tx.now
		tx.state.contents[cid] = cloneContent(c)
	}
	tx.recordChange(Change{Entity: domain.EntityReference, Action: domain.ActionDelete, Before: cloneReference(current)})
	return nil
}

// Content --------------------------------------------------------------------

// CreateContent stores a new content work item.
func (tx *transaction) CreateContent(c Content) (Content, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.contents[c.ID]; exists {
		return Content{}, fmt.Errorf("content %q already exists", c.ID)
	}
	if _, ok := tx.state.personas[c.PersonaID]; !ok {
		return Content{}, fmt.Errorf("content persona %q not found", c.PersonaID)
	}
	if c.Status == "" {
		c.Status = domain.StatusIdea
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.contents[c.ID] = cloneContent(c)
	tx.recordChange(Change{Entity: domain.EntityContent, Action: domain.ActionCreate, After: cloneContent(c)})
	return cloneContent(c), nil
}

// UpdateContent mutates a content item using the provided mutator function.
func (tx *transaction) UpdateContent(id string, mutator func(*Content) error) (Content, error) {
	current, ok := tx.state.contents[id]
	if !ok {
		return Content{}, fmt.Errorf("content %q not found", id)
	}
	before := cloneContent(current)
	if err := mutator(&current); err != nil {
		return Content{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.contents[id] = cloneContent(current)
	tx.recordChange(Change{Entity: domain.EntityContent, Action: domain.ActionUpdate, Before: before, After: cloneContent(current)})
	return cloneContent(current), nil
}

// DeleteContent removes a content item. Leads keep their attribution pointer;
// the source content simply stops resolving.
func (tx *transaction) DeleteContent(id string) error {
	current, ok := tx.state.contents[id]
	if !ok {
		return fmt.Errorf("content %q not found", id)
	}
	delete(tx.state.contents, id)
	tx.recordChange(Change{Entity: domain.EntityContent, Action: domain.ActionDelete, Before: cloneContent(current)})
	return nil
}

// SetContentStatus transitions a content item to the given workflow state.
// Validity and the publish guard are enforced by the content status rule at
// commit, so a direct transition cannot bypass them.
func (tx *transaction) SetContentStatus(id string, status domain.ContentStatus) (Content, error) {
	return tx.UpdateContent(id, func(c *Content) error {
		c.Status = status
		return nil
	})
}

// MergeContentMetrics merges the patch into the content's metrics record,
// creating it when absent. Fields not present in the patch keep their values;
// both the metrics record and the content row get fresh timestamps.
func (tx *transaction) MergeContentMetrics(id string, patch domain.MetricsPatch) (Content, error) {
	return tx.UpdateContent(id, func(c *Content) error {
		metrics := domain.ContentMetrics{}
		if c.Metrics != nil {
			metrics = *c.Metrics
		}
		if patch.Views != nil {
			metrics.Views = *patch.Views
		}
		if patch.Likes != nil {
			metrics.Likes = *patch.Likes
		}
		if patch.Comments != nil {
			metrics.Comments = *patch.Comments
		}
		if patch.Shares != nil {
			metrics.Shares = *patch.Shares
		}
		if patch.Saves != nil {
			metrics.Saves = *patch.Saves
		}
		if patch.Leads != nil {
			metrics.Leads = *patch.Leads
		}
		metrics.UpdatedAt = tx.now
		c.Metrics = &metrics
		return nil
	})
}

// Lead -----------------------------------------------------------------------

// CreateLead stores a new sales prospect.
func (tx *transaction) CreateLead(l Lead) (Lead, error) {
	if l.ID == "" {
		l.ID = tx.store.newID()
	}
	if _, exists := tx.state.leads[l.ID]; exists {
		return Lead{}, fmt.Errorf("lead %q already exists", l.ID)
	}
	persona, ok := tx.state.personas[l.PersonaID]
	if !ok {
		return Lead{}, fmt.Errorf("lead persona %q not found", l.PersonaID)
	}
	if l.OrgID == "" {
		l.OrgID = persona.OrgID
	}
	if l.Status == "" {
		l.Status = domain.LeadNew
	}
	if l.Level == "" {
		l.Level = domain.LeadWarm
	}
	l.CreatedAt = tx.now
	l.UpdatedAt = tx.now
	tx.state.leads[l.ID] = cloneLead(l)
	tx.recordChange(Change{Entity: domain.EntityLead, Action: domain.ActionCreate, After: cloneLead(l)})
	return cloneLead(l), nil
}

// UpdateLead mutates a lead using the provided mutator function.
func (tx *transaction) UpdateLead(id string, mutator func(*Lead) error) (Lead, error) {
	current, ok := tx.state.leads[id]
	if !ok {
		return Lead{}, fmt.Errorf("lead %q not found", id)
	}
	before := cloneLead(current)
	if err := mutator(&current); err != nil {
		return Lead{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.leads[id] = cloneLead(current)
	tx.recordChange(Change{Entity: domain.EntityLead, Action: domain.ActionUpdate, Before: before, After: cloneLead(current)})
	return cloneLead(current), nil
}

// DeleteLead removes a lead from state.
func (tx *transaction) DeleteLead(id string) error {
	current, ok := tx.state.leads[id]
	if !ok {
		return fmt.Errorf("lead %q not found", id)
	}
	delete(tx.state.leads, id)
	tx.recordChange(Change{Entity: domain.EntityLead, Action: domain.ActionDelete, Before: cloneLead(current)})
	return nil
}

// InboxItem ------------------------------------------------------------------

// CreateInboxItem stores a raw capture.
func (tx *transaction) CreateInboxItem(item InboxItem) (InboxItem, error) {
	if item.ID == "" {
		item.ID = tx.store.newID()
	}
	if _, exists := tx.state.inbox[item.ID]; exists {
		return InboxItem{}, fmt.Errorf("inbox item %q already exists", item.ID)
	}
	if _, ok := tx.state.personas[item.PersonaID]; !ok {
		return InboxItem{}, fmt.Errorf("inbox persona %q not found", item.PersonaID)
	}
	item.CreatedAt = tx.now
	item.UpdatedAt = tx.now
	tx.state.inbox[item.ID] = cloneInboxItem(item)
	tx.recordChange(Change{Entity: domain.EntityInboxItem, Action: domain.ActionCreate, After: cloneInboxItem(item)})
	return cloneInboxItem(item), nil
}

// UpdateInboxItem mutates a raw capture.
func (tx *transaction) UpdateInboxItem(id string, mutator func(*InboxItem) error) (InboxItem, error) {
	current, ok := tx.state.inbox[id]
	if !ok {
		return InboxItem{}, fmt.Errorf("inbox item %q not found", id)
	}
	before := cloneInboxItem(current)
	if err := mutator(&current); err != nil {
		return InboxItem{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.inbox[id] = cloneInboxItem(current)
	tx.recordChange(Change{Entity: domain.EntityInboxItem, Action: domain.ActionUpdate, Before: before, After: cloneInboxItem(current)})
	return cloneInboxItem(current), nil
}

// DeleteInboxItem removes a raw capture.
func (tx *transaction) DeleteInboxItem(id string) error {
	current, ok := tx.state.inbox[id]
	if !ok {
		return fmt.Errorf("inbox item %q not found", id)
	}
	delete(tx.state.inbox, id)
	tx.recordChange(Change{Entity: domain.EntityInboxItem, Action: domain.ActionDelete, Before: cloneInboxItem(current)})
	return nil
}

// WeeklyReport ---------------------------------------------------------------

// CreateWeeklyReport stores a generated weekly snapshot.
func (tx *transaction) CreateWeeklyReport(r WeeklyReport) (WeeklyReport, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.reports[r.ID]; exists {
		return WeeklyReport{}, fmt.Errorf("weekly report %q already exists", r.ID)
	}
	if _, ok := tx.state.personas[r.PersonaID]; !ok {
		return WeeklyReport{}, fmt.Errorf("report persona %q not found", r.PersonaID)
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.reports[r.ID] = cloneWeeklyReport(r)
	tx.recordChange(Change{Entity: domain.EntityWeeklyReport, Action: domain.ActionCreate, After: cloneWeeklyReport(r)})
	return cloneWeeklyReport(r), nil
}

// DeleteWeeklyReport removes a weekly snapshot.
func (tx *transaction) DeleteWeeklyReport(id string) error {
	current, ok := tx.state.reports[id]
	if !ok {
		return fmt.Errorf("weekly report %q not found", id)
	}
	delete(tx.state.reports, id)
	tx.recordChange(Change{Entity: domain.EntityWeeklyReport, Action: domain.ActionDelete, Before: cloneWeeklyReport(current)})
	return nil
}

// Settings -------------------------------------------------------------------

// PutSettings upserts the settings record for its org.
func (tx *transaction) PutSettings(s Settings) (Settings, error) {
	if s.OrgID == "" {
		return Settings{}, errors.New("settings org id is required")
	}
	if _, ok := tx.state.orgs[s.OrgID]; !ok {
		return Settings{}, fmt.Errorf("settings org %q not found", s.OrgID)
	}
	existing, exists := tx.state.settings[s.OrgID]
	if s.ID == "" {
		s.ID = s.OrgID
	}
	if exists {
		s.CreatedAt = existing.CreatedAt
		s.UpdatedAt = tx.now
		tx.state.settings[s.OrgID] = cloneSettings(s)
		tx.recordChange(Change{Entity: domain.EntitySettings, Action: domain.ActionUpdate, Before: cloneSettings(existing), After: cloneSettings(s)})
	} else {
		s.CreatedAt = tx.now
		s.UpdatedAt = tx.now
		tx.state.settings[s.OrgID] = cloneSettings(s)
		tx.recordChange(Change{Entity: domain.EntitySettings, Action: domain.ActionCreate, After: cloneSettings(s)})
	}
	return cloneSettings(s), nil
}

func (tx *transaction) mutateSettings(orgID string, mutator func(*Settings)) (Settings, error) {
	if _, ok := tx.state.orgs[orgID]; !ok {
		return Settings{}, fmt.Errorf("settings org %q not found", orgID)
	}
	current, exists := tx.state.settings[orgID]
	if !exists {
		current = Settings{OrgID: orgID}
		current.ID = orgID
		current.CreatedAt = tx.now
	}
	before := cloneSettings(current)
	mutator(&current)
	current.OrgID = orgID
	current.UpdatedAt = tx.now
	tx.state.settings[orgID] = cloneSettings(current)
	action := domain.ActionUpdate
	if !exists {
		action = domain.ActionCreate
	}
	tx.recordChange(Change{Entity: domain.EntitySettings, Action: action, Before: before, After: cloneSettings(current)})
	return cloneSettings(current), nil
}

// AddBannedWord appends a banned word unless it is already configured.
func (tx *transaction) AddBannedWord(orgID, word string) (Settings, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Settings{}, errors.New("banned word is empty")
	}
	return tx.mutateSettings(orgID, func(s *Settings) {
		for _, w := range s.BannedWords {
			if w == word {
				return
			}
		}
		s.BannedWords = append(s.BannedWords, word)
	})
}

// RemoveBannedWord removes a banned word; absent words are a no-op.
func (tx *transaction) RemoveBannedWord(orgID, word string) (Settings, error) {
	return tx.mutateSettings(orgID, func(s *Settings) {
		s.BannedWords = removeString(s.BannedWords, word)
	})
}

// AddDraftSource appends to the weekly inspiration pool with set-like dedup.
func (tx *transaction) AddDraftSource(orgID, text string) (Settings, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Settings{}, errors.New("draft source is empty")
	}
	return tx.mutateSettings(orgID, func(s *Settings) {
		for _, existing := range s.DraftSources {
			if existing == text {
				return
			}
		}
		s.DraftSources = append(s.DraftSources, text)
	})
}

// ClearDraftSources empties the inspiration pool after consumption.
func (tx *transaction) ClearDraftSources(orgID string) (Settings, error) {
	return tx.mutateSettings(orgID, func(s *Settings) {
		s.DraftSources = nil
	})
}

// Session --------------------------------------------------------------------

// PutSession upserts the workspace session for its user.
func (tx *transaction) PutSession(sess Session) (Session, error) {
	if sess.UserID == "" {
		return Session{}, errors.New("session user id is required")
	}
	existing, exists := tx.state.sessions[sess.UserID]
	if sess.ID == "" {
		sess.ID = sess.UserID
	}
	if exists {
		sess.CreatedAt = existing.CreatedAt
		sess.UpdatedAt = tx.now
		tx.state.sessions[sess.UserID] = cloneSession(sess)
		tx.recordChange(Change{Entity: domain.EntitySession, Action: domain.ActionUpdate, Before: cloneSession(existing), After: cloneSession(sess)})
	} else {
		sess.CreatedAt = tx.now
		sess.UpdatedAt = tx.now
		tx.state.sessions[sess.UserID] = cloneSession(sess)
		tx.recordChange(Change{Entity: domain.EntitySession, Action: domain.ActionCreate, After: cloneSession(sess)})
	}
	return cloneSession(sess), nil
}

// DeleteSession removes a user's session entirely.
func (tx *transaction) DeleteSession(userID string) error {
	current, ok := tx.state.sessions[userID]
	if !ok {
		return fmt.Errorf("session %q not found", userID)
	}
	delete(tx.state.sessions, userID)
	tx.recordChange(Change{Entity: domain.EntitySession, Action: domain.ActionDelete, Before: cloneSession(current)})
	return nil
}

// Transaction finders --------------------------------------------------------

// FindOrg retrieves an org by ID from the transactional state.
func (tx *transaction) FindOrg(id string) (Org, bool) {
	o, ok := tx.state.orgs[id]
	if !ok {
		return Org{}, false
	}
	return cloneOrg(o), true
}

// FindPersona retrieves a persona by ID from the transactional state.
func (tx *transaction) FindPersona(id string) (Persona, bool) {
	p, ok := tx.state.personas[id]
	if !ok {
		return Persona{}, false
	}
	return clonePersona(p), true
}

// FindContent retrieves a content item by ID from the transactional state.
func (tx *transaction) FindContent(id string) (Content, bool) {
	c, ok := tx.state.contents[id]
	if !ok {
		return Content{}, false
	}
	return cloneContent(c), true
}

// FindSession retrieves a session by user ID from the transactional state.
func (tx *transaction) FindSession(userID string) (Session, bool) {
	s, ok := tx.state.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return cloneSession(s), true
}

// SettingsForOrg retrieves the settings record for an org.
func (tx *transaction) SettingsForOrg(orgID string) (Settings, bool) {
	s, ok := tx.state.settings[orgID]
	if !ok {
		return Settings{}, false
	}
	return cloneSettings(s), true
}

// FirstPersonaForOrg returns the org's first persona in collection order
// (creation time, then ID).
func (tx *transaction) FirstPersonaForOrg(orgID string) (Persona, bool) {
	return firstPersonaForOrg(&tx.state, orgID)
}

func firstPersonaForOrg(state *memoryState, orgID string) (Persona, bool) {
	var candidates []Persona
	for _, p := range state.personas {
		if p.OrgID == orgID {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return Persona{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return clonePersona(candidates[0]), true
}

func removeString(values []string, target string) []string {
	if len(values) == 0 {
		return values
	}
	out := values[:0:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
