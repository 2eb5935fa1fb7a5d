package core

import "ipstudio/pkg/domain"

type (
	EntityType         = domain.EntityType
	Platform           = domain.Platform
	ContentStatus      = domain.ContentStatus
	LeadStatus         = domain.LeadStatus
	Severity           = domain.Severity
	Verdict            = domain.Verdict
	Base               = domain.Base
	Org                = domain.Org
	Persona            = domain.Persona
	Epoch              = domain.Epoch
	Evidence           = domain.Evidence
	Reference          = domain.Reference
	Content            = domain.Content
	Lead               = domain.Lead
	InboxItem          = domain.InboxItem
	WeeklyReport       = domain.WeeklyReport
	Settings           = domain.Settings
	Session            = domain.Session
	QAFinding          = domain.QAFinding
	QAResult           = domain.QAResult
	Script             = domain.Script
	PublishPack        = domain.PublishPack
	ContentMetrics     = domain.ContentMetrics
	MetricsPatch       = domain.MetricsPatch
	Change             = domain.Change
	Action             = domain.Action
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityOrg          = domain.EntityOrg
	EntityPersona      = domain.EntityPersona
	EntityEpoch        = domain.EntityEpoch
	EntityEvidence     = domain.EntityEvidence
	EntityReference    = domain.EntityReference
	EntityContent      = domain.EntityContent
	EntityLead         = domain.EntityLead
	EntityInboxItem    = domain.EntityInboxItem
	EntityWeeklyReport = domain.EntityWeeklyReport
	EntitySettings     = domain.EntitySettings
	EntitySession      = domain.EntitySession
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	StatusIdea      = domain.StatusIdea
	StatusDraft     = domain.StatusDraft
	StatusWriting   = domain.StatusWriting
	StatusQAPending = domain.StatusQAPending
	StatusQAFix     = domain.StatusQAFix
	StatusApproved  = domain.StatusApproved
	StatusScheduled = domain.StatusScheduled
	StatusPublished = domain.StatusPublished
	StatusArchived  = domain.StatusArchived
)

const (
	PlatformDouyin      = domain.PlatformDouyin
	PlatformXiaohongshu = domain.PlatformXiaohongshu
	PlatformWeChat      = domain.PlatformWeChat
)

const (
	VerdictPass  = domain.VerdictPass
	VerdictFix   = domain.VerdictFix
	VerdictBlock = domain.VerdictBlock
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// NewRulesEngine constructs an empty rules engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// DefaultRulesEngine constructs a rules engine with the built-in commit-time
// rules registered.
func DefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(ContentStatusRule())
	engine.Register(ReferentialIntegrityRule())
	engine.Register(EpochExclusivityRule())
	engine.Register(SessionValidityRule())
	return engine
}
