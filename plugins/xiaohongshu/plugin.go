package xiaohongshu

import (
	"context"
	"fmt"
	"strings"

	"ipstudio/internal/core"
)

// Plugin is the xiaohongshu platform pack. Its lead capture rule is blocking:
// the platform suspends accounts over direct contact solicitation, so content
// carrying that wording must not reach published state.
type Plugin struct{}

// New constructs a xiaohongshu plugin instance.
func New() Plugin {
	return Plugin{}
}

// Name returns the plugin identifier.
func (Plugin) Name() string { return "xiaohongshu" }

// Version returns the plugin semantic version.
func (Plugin) Version() string { return "0.1.0" }

// Register wires xiaohongshu publish defaults and QA rules.
func (Plugin) Register(registry *core.PluginRegistry) error {
	if err := registry.RegisterPublishDefaults(core.PlatformXiaohongshu, core.PublishDefaults{
		Hashtag:       "#小红书成长",
		PinnedComment: "笔记里的方法都亲测过，有问题评论区见。",
		ABTestHint:    "A 版封面用大字报，B 版封面用真人出镜，对比点击率。",
	}); err != nil {
		return err
	}
	registry.RegisterQARule(core.PlatformXiaohongshu, leadCaptureRule{})
	return nil
}

// leadCapturePhrases is the wording the platform treats as off-platform
// diversion.
var leadCapturePhrases = []string{"加微信", "加v", "加V", "私信我", "联系我"}

type leadCaptureRule struct{}

func (leadCaptureRule) Name() string { return "xiaohongshu_lead_capture" }

func (leadCaptureRule) Check(_ context.Context, input core.QAInput) []core.QAFinding {
	var matched []string
	for _, phrase := range leadCapturePhrases {
		if strings.Contains(input.Text, phrase) {
			matched = append(matched, phrase)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return []core.QAFinding{{
		Rule:       "xiaohongshu_lead_capture",
		Verdict:    core.VerdictBlock,
		Penalty:    30,
		Issue:      fmt.Sprintf("direct lead capture wording present: %s", strings.Join(matched, ", ")),
		Suggestion: "move contact guidance into the pinned comment or profile bio",
	}}
}
