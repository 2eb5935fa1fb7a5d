package core

import (
	"context"
	"time"

	"ipstudio/pkg/domain"
)

// Fallback copy used when a platform pack supplies no defaults.
const (
	defaultCaption       = "查看全文了解更多"
	defaultPinnedComment = "欢迎在评论区留下你的问题，我会逐条回复。"
	defaultABTestHint    = "准备两版开头（原始 hook 与悬念式），各发布一半流量，48 小时后保留数据更优的一版。"
)

var fixedHashtags = []string{"#干货分享", "#实用攻略"}

// truncateRunes shortens s to at most n runes, appending an ellipsis when cut.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// buildPublishPack expands a content item into platform-ready copy. Purely
// deterministic template shaping; the only inputs are the content fields and
// the platform defaults.
func buildPublishPack(content Content, defaults PublishDefaults, generatedAt time.Time) PublishPack {
	hookTitle := truncateRunes(content.Script.Hook, 18)
	if hookTitle == "" {
		hookTitle = content.Title
	}
	titles := []string{
		content.Title,
		hookTitle,
		"必看｜" + content.Title,
	}

	caption := content.Script.Hook
	if caption == "" {
		caption = defaultCaption
	}

	hashtags := append([]string(nil), fixedHashtags...)
	if defaults.Hashtag != "" {
		hashtags = append(hashtags, defaults.Hashtag)
	} else {
		hashtags = append(hashtags, "#"+string(content.Platform))
	}
	if content.TopicCluster != "" {
		hashtags = append(hashtags, "#"+content.TopicCluster)
	}

	pinned := defaults.PinnedComment
	if pinned == "" {
		pinned = defaultPinnedComment
	}
	hint := defaults.ABTestHint
	if hint == "" {
		hint = defaultABTestHint
	}

	return PublishPack{
		Titles:        titles,
		Caption:       caption,
		Hashtags:      hashtags,
		CoverText:     truncateRunes(content.Title, 12),
		PinnedComment: pinned,
		ABTestHint:    hint,
		GeneratedAt:   generatedAt,
	}
}

// GeneratePublishPack produces the platform-ready copy bundle for a content
// item and persists it in one transaction.
func (s *Service) GeneratePublishPack(ctx context.Context, contentID string) (PublishPack, Result, error) {
	ctx, finish := s.begin(ctx, "generate_publish_pack")
	var pack PublishPack
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		content, ok := tx.FindContent(contentID)
		if !ok {
			return ErrNotFound{Entity: EntityContent, ID: contentID}
		}
		pack = buildPublishPack(content, s.publish[content.Platform], s.now())
		_, err := tx.UpdateContent(contentID, func(c *Content) error {
			p := pack
			c.PublishPack = &p
			return nil
		})
		return err
	})
	finish(EntityContent, contentID, err)
	return pack, res, err
}
