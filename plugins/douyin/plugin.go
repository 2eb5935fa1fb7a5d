package douyin

import (
	"context"
	"unicode/utf8"

	"ipstudio/internal/core"
)

// Plugin is the douyin platform pack: publish defaults tuned for short video
// plus a hook length QA rule.
type Plugin struct{}

// New constructs a douyin plugin instance.
func New() Plugin {
	return Plugin{}
}

// Name returns the plugin identifier.
func (Plugin) Name() string { return "douyin" }

// Version returns the plugin semantic version.
func (Plugin) Version() string { return "0.1.0" }

// Register wires douyin publish defaults and QA rules.
func (Plugin) Register(registry *core.PluginRegistry) error {
	if err := registry.RegisterPublishDefaults(core.PlatformDouyin, core.PublishDefaults{
		Hashtag:       "#抖音涨粉",
		PinnedComment: "想要完整资料的朋友，看我主页简介。",
		ABTestHint:    "A 版用悬念开场，B 版用结果前置，对比前 3 秒完播率。",
	}); err != nil {
		return err
	}
	registry.RegisterQARule(core.PlatformDouyin, hookLengthRule{})
	return nil
}

// hookLengthMax is the rune budget for a spoken three second opener.
const hookLengthMax = 40

type hookLengthRule struct{}

func (hookLengthRule) Name() string { return "douyin_hook_length" }

func (hookLengthRule) Check(_ context.Context, input core.QAInput) []core.QAFinding {
	hook := input.Content.Script.Hook
	if hook == "" || utf8.RuneCountInString(hook) <= hookLengthMax {
		return nil
	}
	return []core.QAFinding{{
		Rule:       "douyin_hook_length",
		Verdict:    core.VerdictFix,
		Penalty:    5,
		Issue:      "hook is too long to land within the first three seconds",
		Suggestion: "trim the hook to one spoken sentence of at most 40 characters",
	}}
}
