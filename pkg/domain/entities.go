// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by ipstudio.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityOrg identifies a tenant organization record.
	EntityOrg EntityType = "org"
	// EntityPersona identifies a managed public identity record.
	EntityPersona EntityType = "persona"
	// EntityEpoch identifies a strategic phase record.
	EntityEpoch EntityType = "epoch"
	// EntityEvidence identifies a trust-building artifact record.
	EntityEvidence EntityType = "evidence"
	// EntityReference identifies a collected example post record.
	EntityReference EntityType = "reference"
	// EntityContent identifies a planned or published post record.
	EntityContent EntityType = "content"
	// EntityLead identifies a sales prospect record.
	EntityLead EntityType = "lead"
	// EntityInboxItem identifies a raw capture record.
	EntityInboxItem EntityType = "inbox_item"
	// EntityWeeklyReport identifies a generated weekly snapshot record.
	EntityWeeklyReport EntityType = "weekly_report"
	// EntitySettings identifies the per-org configuration record.
	EntitySettings EntityType = "settings"
	// EntitySession identifies a user workspace session record.
	EntitySession EntityType = "session"
)

// Platform enumerates the publishing platforms a content item targets.
type Platform string

// Supported publishing platforms.
const (
	PlatformDouyin      Platform = "douyin"
	PlatformXiaohongshu Platform = "xiaohongshu"
	PlatformWeChat      Platform = "wechat"
)

// Platforms returns all supported platforms in canonical order.
func Platforms() []Platform {
	return []Platform{PlatformDouyin, PlatformXiaohongshu, PlatformWeChat}
}

// PersonaType classifies the public positioning of a persona.
type PersonaType string

// Canonical persona types.
const (
	PersonaFounder PersonaType = "founder"
	PersonaExpert  PersonaType = "expert"
	PersonaBrand   PersonaType = "brand"
	PersonaKOL     PersonaType = "kol"
)

// PersonaStatus enumerates persona activation states.
type PersonaStatus string

// Canonical persona statuses.
const (
	PersonaActive   PersonaStatus = "active"
	PersonaInactive PersonaStatus = "inactive"
)

// ContentStatus enumerates the content workflow states.
type ContentStatus string

// Canonical content workflow states. QA evaluation resolves to StatusApproved
// or StatusQAFix; publish confirmation resolves to StatusPublished and is
// guarded by the content status rule.
const (
	StatusIdea      ContentStatus = "idea"
	StatusDraft     ContentStatus = "draft"
	StatusWriting   ContentStatus = "writing"
	StatusQAPending ContentStatus = "qa_pending"
	StatusQAFix     ContentStatus = "qa_fix"
	StatusApproved  ContentStatus = "approved"
	StatusScheduled ContentStatus = "scheduled"
	StatusPublished ContentStatus = "published"
	StatusArchived  ContentStatus = "archived"
)

// ContentStatuses returns all valid workflow states.
func ContentStatuses() []ContentStatus {
	return []ContentStatus{
		StatusIdea, StatusDraft, StatusWriting, StatusQAPending, StatusQAFix,
		StatusApproved, StatusScheduled, StatusPublished, StatusArchived,
	}
}

// LeadStatus enumerates funnel stages for a sales prospect.
type LeadStatus string

// Canonical lead funnel stages. A lead may move to LeadLost from any stage.
const (
	LeadNew         LeadStatus = "new"
	LeadContacted   LeadStatus = "contacted"
	LeadQualified   LeadStatus = "qualified"
	LeadAppointment LeadStatus = "appointment"
	LeadWon         LeadStatus = "won"
	LeadLost        LeadStatus = "lost"
)

// LeadStatuses returns all funnel stages in canonical order.
func LeadStatuses() []LeadStatus {
	return []LeadStatus{LeadNew, LeadContacted, LeadQualified, LeadAppointment, LeadWon, LeadLost}
}

// LeadLevel grades the qualitative temperature of a lead.
type LeadLevel string

// Canonical lead levels.
const (
	LeadHot  LeadLevel = "hot"
	LeadWarm LeadLevel = "warm"
	LeadCold LeadLevel = "cold"
)

// EvidenceKind classifies trust-building artifacts.
type EvidenceKind string

// Canonical evidence kinds.
const (
	EvidenceCaseStudy   EvidenceKind = "case_study"
	EvidenceTestimonial EvidenceKind = "testimonial"
	EvidenceDataPoint   EvidenceKind = "data_point"
	EvidenceAward       EvidenceKind = "award"
)

// Visibility scopes who may see an evidence artifact.
type Visibility string

// Canonical visibility scopes.
const (
	VisibilityPublic       Visibility = "public"
	VisibilityInternal     Visibility = "internal"
	VisibilityConfidential Visibility = "confidential"
)

// InboxSource identifies how a raw capture entered the inbox.
type InboxSource string

// Canonical inbox sources.
const (
	InboxVoice InboxSource = "voice"
	InboxText  InboxSource = "text"
)

// InboxAssetKind classifies assets extracted from a raw capture.
type InboxAssetKind string

// Canonical extracted asset kinds.
const (
	AssetTopicSeed      InboxAssetKind = "topic_seed"
	AssetEvidenceClue   InboxAssetKind = "evidence_clue"
	AssetObjection      InboxAssetKind = "objection"
	AssetStrategySignal InboxAssetKind = "strategy_signal"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Org is the tenant container. Orgs are created at onboarding and may only be
// deleted once they own no personas.
type Org struct {
	Base
	Name      string `json:"name"`
	Industry  string `json:"industry"`
	Sensitive bool   `json:"sensitive"`
}

// BrandBook captures the style guide attached to a persona.
type BrandBook struct {
	Tone             string   `json:"tone"`
	ForbiddenStyles  []string `json:"forbidden_styles"`
	SignaturePhrases []string `json:"signature_phrases"`
}

// Offer describes a product or service a persona promotes.
type Offer struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// Persona is a managed public identity belonging to exactly one org.
type Persona struct {
	Base
	OrgID          string        `json:"org_id"`
	Name           string        `json:"name"`
	Bio            string        `json:"bio"`
	Type           PersonaType   `json:"type"`
	Status         PersonaStatus `json:"status"`
	BrandBook      BrandBook     `json:"brand_book"`
	Offers         []Offer       `json:"offers"`
	CurrentEpochID *string       `json:"current_epoch_id"`
}

// Epoch is a named time-boxed strategic phase for a persona. At most one
// epoch per persona carries IsCurrent; the SetCurrentEpoch transaction helper
// maintains the flag and the persona's denormalized pointer together.
type Epoch struct {
	Base
	PersonaID       string           `json:"persona_id"`
	Name            string           `json:"name"`
	Goal            string           `json:"goal"`
	PriorityTopics  []string         `json:"priority_topics"`
	PlatformWeights map[Platform]int `json:"platform_weights"`
	StartWeek       int              `json:"start_week"`
	EndWeek         int              `json:"end_week"`
	IsCurrent       bool             `json:"is_current"`
}

// Evidence is a trust-building artifact attached to a persona.
type Evidence struct {
	Base
	PersonaID   string       `json:"persona_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Kind        EvidenceKind `json:"kind"`
	Visibility  Visibility   `json:"visibility"`
}

// ReferenceAnalysis is the optional extracted structure of a collected post.
type ReferenceAnalysis struct {
	Hook       string   `json:"hook"`
	Structure  string   `json:"structure"`
	CTA        string   `json:"cta"`
	Highlights []string `json:"highlights"`
	Risks      []string `json:"risks"`
}

// Reference is an externally sourced example post collected for inspiration.
type Reference struct {
	Base
	PersonaID string             `json:"persona_id"`
	Platform  Platform           `json:"platform"`
	Author    string             `json:"author"`
	URL       string             `json:"url"`
	Excerpt   string             `json:"excerpt"`
	Analysis  *ReferenceAnalysis `json:"analysis,omitempty"`
}

// Script holds the structured copy of a content item.
type Script struct {
	Hook          string   `json:"hook"`
	Outline       []string `json:"outline"`
	FullScript    string   `json:"full_script"`
	ShootingNotes []string `json:"shooting_notes"`
}

// PublishPack bundles platform-ready copy generated for a content item.
type PublishPack struct {
	Titles        []string  `json:"titles"`
	Caption       string    `json:"caption"`
	Hashtags      []string  `json:"hashtags"`
	CoverText     string    `json:"cover_text"`
	PinnedComment string    `json:"pinned_comment"`
	ABTestHint    string    `json:"ab_test_hint"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// ContentMetrics holds engagement numbers back-filled after publishing.
type ContentMetrics struct {
	Views     int       `json:"views"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	Shares    int       `json:"shares"`
	Saves     int       `json:"saves"`
	Leads     int       `json:"leads"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MetricsPatch carries a partial metrics update. Nil fields are left intact;
// merging never replaces the whole record.
type MetricsPatch struct {
	Views    *int `json:"views,omitempty"`
	Likes    *int `json:"likes,omitempty"`
	Comments *int `json:"comments,omitempty"`
	Shares   *int `json:"shares,omitempty"`
	Saves    *int `json:"saves,omitempty"`
	Leads    *int `json:"leads,omitempty"`
}

// Content is the central work item: a single planned or published post.
type Content struct {
	Base
	PersonaID    string          `json:"persona_id"`
	Platform     Platform        `json:"platform"`
	Title        string          `json:"title"`
	TopicCluster string          `json:"topic_cluster"`
	Format       string          `json:"format"`
	Script       Script          `json:"script"`
	EvidenceIDs  []string        `json:"evidence_ids"`
	ReferenceIDs []string        `json:"reference_ids"`
	Status       ContentStatus   `json:"status"`
	QAResult     *QAResult       `json:"qa_result,omitempty"`
	PublishPack  *PublishPack    `json:"publish_pack,omitempty"`
	Metrics      *ContentMetrics `json:"metrics,omitempty"`
	WeekNumber   int             `json:"week_number"`
}

// Lead is a sales prospect, optionally attributed to a content item.
type Lead struct {
	Base
	OrgID           string     `json:"org_id"`
	PersonaID       string     `json:"persona_id"`
	Name            string     `json:"name"`
	Contact         string     `json:"contact"`
	SourceContentID *string    `json:"source_content_id,omitempty"`
	Status          LeadStatus `json:"status"`
	Level           LeadLevel  `json:"level"`
	Notes           string     `json:"notes"`
}

// InboxAsset is a classified fragment extracted from a raw capture.
type InboxAsset struct {
	Kind InboxAssetKind `json:"kind"`
	Text string         `json:"text"`
}

// InboxItem is a raw voice or text capture with extracted assets used to seed
// future content.
type InboxItem struct {
	Base
	PersonaID string       `json:"persona_id"`
	Source    InboxSource  `json:"source"`
	RawText   string       `json:"raw_text"`
	Assets    []InboxAsset `json:"assets"`
	Processed bool         `json:"processed"`
}

// ReportContentStat summarizes one content item inside a weekly report.
type ReportContentStat struct {
	ContentID string   `json:"content_id"`
	Title     string   `json:"title"`
	Platform  Platform `json:"platform"`
	Views     int      `json:"views"`
	Leads     int      `json:"leads"`
}

// WeeklyReport is a generated snapshot of a persona's week.
type WeeklyReport struct {
	Base
	OrgID      string              `json:"org_id"`
	PersonaID  string              `json:"persona_id"`
	WeekNumber int                 `json:"week_number"`
	TopContent []ReportContentStat `json:"top_content"`
	Funnel     map[LeadStatus]int  `json:"funnel"`
	NextTopics []string            `json:"next_topics"`
}

// Settings is the per-org configuration record, keyed by OrgID (one per org).
// DraftSources is the weekly inspiration pool consumed by report generation.
type Settings struct {
	Base
	OrgID          string           `json:"org_id"`
	BannedWords    []string         `json:"banned_words"`
	PlatformRatio  map[Platform]int `json:"platform_ratio"`
	DefaultFormats []string         `json:"default_formats"`
	DraftSources   []string         `json:"draft_sources"`
}

// Session tracks a user's workspace selection. The current persona must
// always belong to the current org; the session rule blocks any commit that
// violates this.
type Session struct {
	Base
	UserID           string   `json:"user_id"`
	OrgIDs           []string `json:"org_ids"`
	CurrentOrgID     *string  `json:"current_org_id"`
	CurrentPersonaID *string  `json:"current_persona_id"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
