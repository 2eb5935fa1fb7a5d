package core

import (
	"context"
	"fmt"

	"ipstudio/pkg/domain"
)

// buildMockScript applies a style prefix to the hook and fabricates generic
// sections where the existing script is empty. No real language generation
// happens here; the output is fully deterministic.
func buildMockScript(content Content, style string) domain.Script {
	script := content.Script

	if script.Hook == "" {
		script.Hook = fmt.Sprintf("你有没有想过：%s？", content.Title)
	}
	if style != "" {
		script.Hook = fmt.Sprintf("【%s】%s", style, script.Hook)
	}

	if len(script.Outline) == 0 {
		script.Outline = []string{
			"开场点出目标人群的痛点",
			"给出可落地的解决步骤",
			"用一个真实案例验证效果",
			"收尾引导关注与评论互动",
		}
	}
	if script.FullScript == "" {
		script.FullScript = fmt.Sprintf(
			"%s\n\n围绕「%s」，今天拆解一个很多人忽略的做法。先说结论，再给步骤，最后用案例验证。看完记得收藏，照着做就行。",
			script.Hook, content.TopicCluster,
		)
	}
	if len(script.ShootingNotes) == 0 {
		script.ShootingNotes = []string{
			"口播为主，节奏偏快",
			"重点句配字幕强调",
			"结尾停顿两秒再引导关注",
		}
	}
	return script
}

// GenerateScript fills in a content item's script using the deterministic
// mocked generator and persists it. Existing sections are kept; only the hook
// gains the style prefix.
func (s *Service) GenerateScript(ctx context.Context, contentID, style string) (Content, Result, error) {
	ctx, finish := s.begin(ctx, "generate_script")
	var updated Content
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		content, ok := tx.FindContent(contentID)
		if !ok {
			return ErrNotFound{Entity: EntityContent, ID: contentID}
		}
		script := buildMockScript(content, style)
		var err error
		updated, err = tx.UpdateContent(contentID, func(c *Content) error {
			c.Script = script
			return nil
		})
		return err
	})
	finish(EntityContent, contentID, err)
	return updated, res, err
}
