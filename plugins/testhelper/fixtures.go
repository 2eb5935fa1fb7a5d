// Package testhelper hosts plugin fixture builders that may reference domain
// types without tripping the plugin import restrictions. Production plugin
// code must not import it.
package testhelper

import (
	"strings"
	"time"

	"ipstudio/internal/core"
	"ipstudio/pkg/domain"
)

// ContentFixtureConfig describes a content item used in plugin QA rule tests.
type ContentFixtureConfig struct {
	ID          string
	PersonaID   string
	OrgID       string
	Platform    core.Platform
	Title       string
	Hook        string
	FullScript  string
	EvidenceIDs []string
	BannedWords []string
	CreatedAt   time.Time
}

// QAInput assembles a core.QAInput from the fixture, joining the scannable
// text surfaces the same way the QA evaluator does.
func QAInput(cfg ContentFixtureConfig) core.QAInput {
	content := domain.Content{
		Base:      domain.Base{ID: cfg.ID, CreatedAt: cfg.CreatedAt, UpdatedAt: cfg.CreatedAt},
		PersonaID: cfg.PersonaID,
		Platform:  cfg.Platform,
		Title:     cfg.Title,
		Script: domain.Script{
			Hook:       cfg.Hook,
			FullScript: cfg.FullScript,
		},
		EvidenceIDs: append([]string(nil), cfg.EvidenceIDs...),
	}
	persona := domain.Persona{
		Base:  domain.Base{ID: cfg.PersonaID},
		OrgID: cfg.OrgID,
	}
	settings := domain.Settings{
		OrgID:       cfg.OrgID,
		BannedWords: append([]string(nil), cfg.BannedWords...),
	}
	return core.QAInput{
		Content:  content,
		Persona:  persona,
		Settings: settings,
		Text:     strings.Join([]string{content.Title, content.Script.Hook, content.Script.FullScript}, "\n"),
	}
}
