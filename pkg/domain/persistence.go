package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView

	CreateOrg(Org) (Org, error)
	UpdateOrg(id string, mutator func(*Org) error) (Org, error)
	DeleteOrg(id string) error

	CreatePersona(Persona) (Persona, error)
	UpdatePersona(id string, mutator func(*Persona) error) (Persona, error)
	DeletePersona(id string) error

	CreateEpoch(Epoch) (Epoch, error)
	UpdateEpoch(id string, mutator func(*Epoch) error) (Epoch, error)
	DeleteEpoch(id string) error
	SetCurrentEpoch(personaID, epochID string) (Epoch, error)

	CreateEvidence(Evidence) (Evidence, error)
	UpdateEvidence(id string, mutator func(*Evidence) error) (Evidence, error)
	DeleteEvidence(id string) error

	CreateReference(Reference) (Reference, error)
	UpdateReference(id string, mutator func(*Reference) error) (Reference, error)
	DeleteReference(id string) error

	CreateContent(Content) (Content, error)
	UpdateContent(id string, mutator func(*Content) error) (Content, error)
	DeleteContent(id string) error
	SetContentStatus(id string, status ContentStatus) (Content, error)
	MergeContentMetrics(id string, patch MetricsPatch) (Content, error)

	CreateLead(Lead) (Lead, error)
	UpdateLead(id string, mutator func(*Lead) error) (Lead, error)
	DeleteLead(id string) error

	CreateInboxItem(InboxItem) (InboxItem, error)
	UpdateInboxItem(id string, mutator func(*InboxItem) error) (InboxItem, error)
	DeleteInboxItem(id string) error

	CreateWeeklyReport(WeeklyReport) (WeeklyReport, error)
	DeleteWeeklyReport(id string) error

	PutSettings(Settings) (Settings, error)
	AddBannedWord(orgID, word string) (Settings, error)
	RemoveBannedWord(orgID, word string) (Settings, error)
	AddDraftSource(orgID, text string) (Settings, error)
	ClearDraftSources(orgID string) (Settings, error)

	PutSession(Session) (Session, error)
	DeleteSession(userID string) error

	FindOrg(id string) (Org, bool)
	FindPersona(id string) (Persona, bool)
	FindContent(id string) (Content, bool)
	FindSession(userID string) (Session, bool)
	SettingsForOrg(orgID string) (Settings, bool)
	FirstPersonaForOrg(orgID string) (Persona, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetOrg(id string) (Org, bool)
	ListOrgs() []Org
	GetPersona(id string) (Persona, bool)
	ListPersonas() []Persona
	GetContent(id string) (Content, bool)
	ListContents() []Content
	GetLead(id string) (Lead, bool)
	ListLeads() []Lead
	ListEpochs() []Epoch
	ListEvidences() []Evidence
	ListReferences() []Reference
	ListInboxItems() []InboxItem
	ListWeeklyReports() []WeeklyReport
	SettingsForOrg(orgID string) (Settings, bool)
	GetSession(userID string) (Session, bool)
	RulesEngine() *RulesEngine
}
