package wechat

import (
	"context"
	"strings"

	"ipstudio/internal/core"
)

// Plugin is the wechat platform pack for long form official account articles.
type Plugin struct{}

// New constructs a wechat plugin instance.
func New() Plugin {
	return Plugin{}
}

// Name returns the plugin identifier.
func (Plugin) Name() string { return "wechat" }

// Version returns the plugin semantic version.
func (Plugin) Version() string { return "0.1.0" }

// Register wires wechat publish defaults and QA rules.
func (Plugin) Register(registry *core.PluginRegistry) error {
	if err := registry.RegisterPublishDefaults(core.PlatformWeChat, core.PublishDefaults{
		Hashtag:       "#公众号运营",
		PinnedComment: "文末有延伸阅读，欢迎留言讨论。",
		ABTestHint:    "A 版标题走提问式，B 版标题走数字式，对比打开率。",
	}); err != nil {
		return err
	}
	registry.RegisterQARule(core.PlatformWeChat, inducedShareRule{})
	return nil
}

// inducedSharePhrases is wording the platform penalizes as induced sharing.
var inducedSharePhrases = []string{"转发领取", "分享到朋友圈", "集赞"}

type inducedShareRule struct{}

func (inducedShareRule) Name() string { return "wechat_induced_share" }

func (inducedShareRule) Check(_ context.Context, input core.QAInput) []core.QAFinding {
	for _, phrase := range inducedSharePhrases {
		if strings.Contains(input.Text, phrase) {
			return []core.QAFinding{{
				Rule:       "wechat_induced_share",
				Verdict:    core.VerdictFix,
				Penalty:    10,
				Issue:      "induced sharing wording detected",
				Suggestion: "invite discussion instead of asking readers to forward the article",
			}}
		}
	}
	return nil
}
