package core

import (
	"context"
	"sort"

	"ipstudio/pkg/domain"
)

const reportTopContentLimit = 5

// GenerateWeeklyReport snapshots a persona's week: top published content by
// views, the lead funnel, and next-week topics drawn from the org's draft
// source pool. The pool is consumed and cleared in the same transaction so a
// second run never reuses the same inspiration lines.
func (s *Service) GenerateWeeklyReport(ctx context.Context, personaID string, weekNumber int) (WeeklyReport, Result, error) {
	ctx, finish := s.begin(ctx, "generate_weekly_report")
	var report WeeklyReport
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		persona, ok := tx.FindPersona(personaID)
		if !ok {
			return ErrNotFound{Entity: EntityPersona, ID: personaID}
		}
		view := tx.Snapshot()

		var top []domain.ReportContentStat
		for _, content := range view.ListContents() {
			if content.PersonaID != personaID || content.Status != StatusPublished {
				continue
			}
			if weekNumber != 0 && content.WeekNumber != weekNumber {
				continue
			}
			stat := domain.ReportContentStat{
				ContentID: content.ID,
				Title:     content.Title,
				Platform:  content.Platform,
			}
			if content.Metrics != nil {
				stat.Views = content.Metrics.Views
				stat.Leads = content.Metrics.Leads
			}
			top = append(top, stat)
		}
		sort.SliceStable(top, func(i, j int) bool { return top[i].Views > top[j].Views })
		if len(top) > reportTopContentLimit {
			top = top[:reportTopContentLimit]
		}

		funnel := make(map[LeadStatus]int)
		for _, lead := range view.ListLeads() {
			if lead.PersonaID != personaID {
				continue
			}
			funnel[lead.Status]++
		}

		var nextTopics []string
		if settings, ok := tx.SettingsForOrg(persona.OrgID); ok && len(settings.DraftSources) > 0 {
			nextTopics = append([]string(nil), settings.DraftSources...)
			if _, err := tx.ClearDraftSources(persona.OrgID); err != nil {
				return err
			}
		}

		var err error
		report, err = tx.CreateWeeklyReport(WeeklyReport{
			OrgID:      persona.OrgID,
			PersonaID:  personaID,
			WeekNumber: weekNumber,
			TopContent: top,
			Funnel:     funnel,
			NextTopics: nextTopics,
		})
		return err
	})
	finish(EntityWeeklyReport, report.ID, err)
	return report, res, err
}
