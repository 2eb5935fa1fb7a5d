package memory

import "ipstudio/pkg/domain"

// Deep-clone helpers. Every value handed across the store boundary is cloned
// so callers can never alias committed state.

func cloneOrg(o Org) Org { return o }

func clonePersona(p Persona) Persona {
	cp := p
	cp.BrandBook.ForbiddenStyles = cloneStrings(p.BrandBook.ForbiddenStyles)
	cp.BrandBook.SignaturePhrases = cloneStrings(p.BrandBook.SignaturePhrases)
	if p.Offers != nil {
		cp.Offers = append([]domain.Offer(nil), p.Offers...)
	}
	cp.CurrentEpochID = cloneStringPtr(p.CurrentEpochID)
	return cp
}

func cloneEpoch(e Epoch) Epoch {
	cp := e
	cp.PriorityTopics = cloneStrings(e.PriorityTopics)
	if e.PlatformWeights != nil {
		cp.PlatformWeights = make(map[domain.Platform]int, len(e.PlatformWeights))
		for k, v := range e.PlatformWeights {
			cp.PlatformWeights[k] = v
		}
	}
	return cp
}

func cloneEvidence(e Evidence) Evidence { return e }

func cloneReference(r Reference) Reference {
	cp := r
	if r.Analysis != nil {
		analysis := *r.Analysis
		analysis.Highlights = cloneStrings(r.Analysis.Highlights)
		analysis.Risks = cloneStrings(r.Analysis.Risks)
		cp.Analysis = &analysis
	}
	return cp
}

func cloneContent(c Content) Content {
	cp := c
	cp.Script.Outline = cloneStrings(c.Script.Outline)
	cp.Script.ShootingNotes = cloneStrings(c.Script.ShootingNotes)
	cp.EvidenceIDs = cloneStrings(c.EvidenceIDs)
	cp.ReferenceIDs = cloneStrings(c.ReferenceIDs)
	if c.QAResult != nil {
		qa := *c.QAResult
		qa.Issues = cloneStrings(c.QAResult.Issues)
		qa.Suggestions = cloneStrings(c.QAResult.Suggestions)
		cp.QAResult = &qa
	}
	if c.PublishPack != nil {
		pack := *c.PublishPack
		pack.Titles = cloneStrings(c.PublishPack.Titles)
		pack.Hashtags = cloneStrings(c.PublishPack.Hashtags)
		cp.PublishPack = &pack
	}
	if c.Metrics != nil {
		metrics := *c.Metrics
		cp.Metrics = &metrics
	}
	return cp
}

func cloneLead(l Lead) Lead {
	cp := l
	cp.SourceContentID = cloneStringPtr(l.SourceContentID)
	return cp
}

func cloneInboxItem(item InboxItem) InboxItem {
	cp := item
	if item.Assets != nil {
		cp.Assets = append([]domain.InboxAsset(nil), item.Assets...)
	}
	return cp
}

func cloneWeeklyReport(r WeeklyReport) WeeklyReport {
	cp := r
	if r.TopContent != nil {
		cp.TopContent = append([]domain.ReportContentStat(nil), r.TopContent...)
	}
	if r.Funnel != nil {
		cp.Funnel = make(map[domain.LeadStatus]int, len(r.Funnel))
		for k, v := range r.Funnel {
			cp.Funnel[k] = v
		}
	}
	cp.NextTopics = cloneStrings(r.NextTopics)
	return cp
}

func cloneSettings(s Settings) Settings {
	cp := s
	cp.BannedWords = cloneStrings(s.BannedWords)
	if s.PlatformRatio != nil {
		cp.PlatformRatio = make(map[domain.Platform]int, len(s.PlatformRatio))
		for k, v := range s.PlatformRatio {
			cp.PlatformRatio[k] = v
		}
	}
	cp.DefaultFormats = cloneStrings(s.DefaultFormats)
	cp.DraftSources = cloneStrings(s.DraftSources)
	return cp
}

func cloneSession(s Session) Session {
	cp := s
	cp.OrgIDs = cloneStrings(s.OrgIDs)
	cp.CurrentOrgID = cloneStringPtr(s.CurrentOrgID)
	cp.CurrentPersonaID = cloneStringPtr(s.CurrentPersonaID)
	return cp
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
