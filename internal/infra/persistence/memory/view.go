package memory

import (
	"sort"

	"ipstudio/pkg/domain"
)

// txView exposes a read-only snapshot of transactional state to rules and
// callers of View.
type txView struct {
	state *memoryState
}

var _ domain.RuleView = txView{}

func newTxView(state *memoryState) txView {
	return txView{state: state}
}

func sortByCreation[T any](items []T, base func(T) domain.Base) {
	sort.Slice(items, func(i, j int) bool {
		a, b := base(items[i]), base(items[j])
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// ListOrgs returns all orgs in creation order.
func (v txView) ListOrgs() []Org {
	out := make([]Org, 0, len(v.state.orgs))
	for _, o := range v.state.orgs {
		out = append(out, cloneOrg(o))
	}
	sortByCreation(out, func(o Org) domain.Base { return o.Base })
	return out
}

// ListPersonas returns all personas in creation order.
func (v txView) ListPersonas() []Persona {
	out := make([]Persona, 0, len(v.state.personas))
	for _, p := range v.state.personas {
		out = append(out, clonePersona(p))
	}
	sortByCreation(out, func(p Persona) domain.Base { return p.Base })
	return out
}

// ListEpochs returns all epochs in creation order.
func (v txView) ListEpochs() []Epoch {
	out := make([]Epoch, 0, len(v.state.epochs))
	for _, e := range v.state.epochs {
		out = append(out, cloneEpoch(e))
	}
	sortByCreation(out, func(e Epoch) domain.Base { return e.Base })
	return out
}

// ListEvidences returns all evidence artifacts in creation order.
func (v txView) ListEvidences() []Evidence {
	out := make([]Evidence, 0, len(v.state.evidences))
	for _, e := range v.state.evidences {
		out = append(out, cloneEvidence(e))
	}
	sortByCreation(out, func(e Evidence) domain.Base { return e.Base })
	return out
}

// ListReferences returns all collected references in creation order.
func (v txView) ListReferences() []Reference {
	out := make([]Reference, 0, len(v.state.references))
	for _, r := range v.state.references {
		out = append(out, cloneReference(r))
	}
	sortByCreation(out, func(r Reference) domain.Base { return r.Base })
	return out
}

// ListContents returns all content items in creation order.
func (v txView) ListContents() []Content {
	out := make([]Content, 0, len(v.state.contents))
	for _, c := range v.state.contents {
		out = append(out, cloneContent(c))
	}
	sortByCreation(out, func(c Content) domain.Base { return c.Base })
	return out
}

// ListLeads returns all leads in creation order.
func (v txView) ListLeads() []Lead {
	out := make([]Lead, 0, len(v.state.leads))
	for _, l := range v.state.leads {
		out = append(out, cloneLead(l))
	}
	sortByCreation(out, func(l Lead) domain.Base { return l.Base })
	return out
}

// ListInboxItems returns all raw captures in creation order.
func (v txView) ListInboxItems() []InboxItem {
	out := make([]InboxItem, 0, len(v.state.inbox))
	for _, item := range v.state.inbox {
		out = append(out, cloneInboxItem(item))
	}
	sortByCreation(out, func(i InboxItem) domain.Base { return i.Base })
	return out
}

// ListWeeklyReports returns all weekly snapshots in creation order.
func (v txView) ListWeeklyReports() []WeeklyReport {
	out := make([]WeeklyReport, 0, len(v.state.reports))
	for _, r := range v.state.reports {
		out = append(out, cloneWeeklyReport(r))
	}
	sortByCreation(out, func(r WeeklyReport) domain.Base { return r.Base })
	return out
}

// ListSettings returns every org's settings record.
func (v txView) ListSettings() []Settings {
	out := make([]Settings, 0, len(v.state.settings))
	for _, s := range v.state.settings {
		out = append(out, cloneSettings(s))
	}
	sortByCreation(out, func(s Settings) domain.Base { return s.Base })
	return out
}

// ListSessions returns every user session.
func (v txView) ListSessions() []Session {
	out := make([]Session, 0, len(v.state.sessions))
	for _, s := range v.state.sessions {
		out = append(out, cloneSession(s))
	}
	sortByCreation(out, func(s Session) domain.Base { return s.Base })
	return out
}

// FindOrg retrieves an org by ID from the snapshot.
func (v txView) FindOrg(id string) (Org, bool) {
	o, ok := v.state.orgs[id]
	if !ok {
		return Org{}, false
	}
	return cloneOrg(o), true
}

// FindPersona retrieves a persona by ID from the snapshot.
func (v txView) FindPersona(id string) (Persona, bool) {
	p, ok := v.state.personas[id]
	if !ok {
		return Persona{}, false
	}
	return clonePersona(p), true
}

// FindEpoch retrieves an epoch by ID from the snapshot.
func (v txView) FindEpoch(id string) (Epoch, bool) {
	e, ok := v.state.epochs[id]
	if !ok {
		return Epoch{}, false
	}
	return cloneEpoch(e), true
}

// FindContent retrieves a content item by ID from the snapshot.
func (v txView) FindContent(id string) (Content, bool) {
	c, ok := v.state.contents[id]
	if !ok {
		return Content{}, false
	}
	return cloneContent(c), true
}

// FindLead retrieves a lead by ID from the snapshot.
func (v txView) FindLead(id string) (Lead, bool) {
	l, ok := v.state.leads[id]
	if !ok {
		return Lead{}, false
	}
	return cloneLead(l), true
}

// SettingsForOrg retrieves the settings record for an org.
func (v txView) SettingsForOrg(orgID string) (Settings, bool) {
	s, ok := v.state.settings[orgID]
	if !ok {
		return Settings{}, false
	}
	return cloneSettings(s), true
}

// FindSession retrieves a session by user ID from the snapshot.
func (v txView) FindSession(userID string) (Session, bool) {
	s, ok := v.state.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return cloneSession(s), true
}

// FirstPersonaForOrg returns the org's first persona in collection order.
func (v txView) FirstPersonaForOrg(orgID string) (Persona, bool) {
	return firstPersonaForOrg(v.state, orgID)
}

// Committed-state getters ----------------------------------------------------

// GetOrg retrieves an org by ID from committed state.
func (s *Store) GetOrg(id string) (Org, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).FindOrg(id)
}

// ListOrgs returns all orgs from committed state.
func (s *Store) ListOrgs() []Org {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).ListOrgs()
}

// GetPersona retrieves a persona by ID from committed state.
func (s *Store) GetPersona(id string) (Persona, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).FindPersona(id)
}

// ListPersonas returns all personas from committed state.
func (s *Store) ListPersonas() []Persona {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).ListPersonas()
}

// GetContent retrieves a content item by ID from committed state.
func (s *Store) GetContent(id string) (Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).FindContent(id)
}

// ListContents returns all content items from committed state.
func (s *Store) ListContents() []Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).ListContents()
}

// GetLead retrieves a lead by ID from committed state.
func (s *Store) GetLead(id string) (Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).FindLead(id)
}

// ListLeads returns all leads from committed state.
func (s *Store) ListLeads() []Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).ListLeads()
}

// ListEpochs returns all epochs from committed state.
func (s *Store) ListEpochs() []Epoch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).ListEpochs()
}

// ListEvidences returns all evidence artifacts from committed state.
func (s *Store) ListEvidences() []Evidence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).ListEvidences()
}

// ListReferences returns all collected references from committed state.
func (s *Store) ListReferences() []Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).ListReferences()
}

// ListInboxItems returns all raw captures from committed state.
func (s *Store) ListInboxItems() []InboxItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).ListInboxItems()
}

// ListWeeklyReports returns all weekly snapshots from committed state.
func (s *Store) ListWeeklyReports() []WeeklyReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).ListWeeklyReports()
}

// SettingsForOrg retrieves an org's settings record from committed state.
func (s *Store) SettingsForOrg(orgID string) (Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).SettingsForOrg(orgID)
}

// GetSession retrieves a user's session from committed state.
func (s *Store) GetSession(userID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTxView(&s.state).FindSession(userID)
}
