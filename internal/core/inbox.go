package core

import (
	"context"
	"strings"

	"ipstudio/pkg/domain"
)

// Keyword heuristics for classifying capture lines. First match wins, in the
// order objection, evidence clue, strategy signal; everything else is a topic
// seed.
var (
	objectionKeywords = []string{"太贵", "没时间", "担心", "犹豫", "顾虑", "不靠谱"}
	evidenceKeywords  = []string{"案例", "客户", "数据", "效果", "成交", "好评"}
	strategyKeywords  = []string{"策略", "定位", "方向", "赛道", "竞品", "打法"}
)

func containsAny(line string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// extractInboxAssets classifies each non-empty line of a raw capture into a
// typed asset. Deterministic: the same text always yields the same assets.
func extractInboxAssets(rawText string) []domain.InboxAsset {
	var assets []domain.InboxAsset
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kind := domain.AssetTopicSeed
		switch {
		case containsAny(line, objectionKeywords):
			kind = domain.AssetObjection
		case containsAny(line, evidenceKeywords):
			kind = domain.AssetEvidenceClue
		case containsAny(line, strategyKeywords):
			kind = domain.AssetStrategySignal
		}
		assets = append(assets, domain.InboxAsset{Kind: kind, Text: line})
	}
	return assets
}

// CaptureInbox stores a raw voice or text capture with its extracted assets.
func (s *Service) CaptureInbox(ctx context.Context, personaID string, source domain.InboxSource, rawText string) (InboxItem, Result, error) {
	ctx, finish := s.begin(ctx, "capture_inbox")
	var created InboxItem
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateInboxItem(InboxItem{
			PersonaID: personaID,
			Source:    source,
			RawText:   rawText,
			Assets:    extractInboxAssets(rawText),
		})
		return err
	})
	finish(EntityInboxItem, created.ID, err)
	return created, res, err
}

// ProcessInboxItem feeds an item's topic seeds into the org draft source pool
// and marks the item processed. Reprocessing an already processed item is a
// no-op.
func (s *Service) ProcessInboxItem(ctx context.Context, itemID string) (InboxItem, Result, error) {
	ctx, finish := s.begin(ctx, "process_inbox_item")
	var updated InboxItem
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var item InboxItem
		found := false
		for _, it := range tx.Snapshot().ListInboxItems() {
			if it.ID == itemID {
				item = it
				found = true
				break
			}
		}
		if !found {
			return ErrNotFound{Entity: EntityInboxItem, ID: itemID}
		}
		if item.Processed {
			updated = item
			return nil
		}
		persona, ok := tx.FindPersona(item.PersonaID)
		if !ok {
			return ErrNotFound{Entity: EntityPersona, ID: item.PersonaID}
		}
		for _, asset := range item.Assets {
			if asset.Kind != domain.AssetTopicSeed {
				continue
			}
			if _, err := tx.AddDraftSource(persona.OrgID, asset.Text); err != nil {
				return err
			}
		}
		var err error
		updated, err = tx.UpdateInboxItem(itemID, func(i *InboxItem) error {
			i.Processed = true
			return nil
		})
		return err
	})
	finish(EntityInboxItem, itemID, err)
	return updated, res, err
}
