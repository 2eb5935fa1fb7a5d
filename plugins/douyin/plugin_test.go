package douyin

import (
	"context"
	"strings"
	"testing"

	"ipstudio/internal/core"
	"ipstudio/plugins/testhelper"
)

func TestRegisterContributions(t *testing.T) {
	registry := core.NewPluginRegistry()
	if err := New().Register(registry); err != nil {
		t.Fatalf("register: %v", err)
	}
	defaults, ok := registry.PublishDefaults()[core.PlatformDouyin]
	if !ok {
		t.Fatal("missing publish defaults for douyin")
	}
	if defaults.Hashtag != "#抖音涨粉" {
		t.Fatalf("hashtag = %q", defaults.Hashtag)
	}
	rules := registry.QARules()[core.PlatformDouyin]
	if len(rules) != 1 || rules[0].Name() != "douyin_hook_length" {
		t.Fatalf("qa rules = %v", rules)
	}
}

func TestHookLengthRule(t *testing.T) {
	rule := hookLengthRule{}

	short := testhelper.QAInput(testhelper.ContentFixtureConfig{
		Platform: core.PlatformDouyin,
		Title:    "转行三步法",
		Hook:     "你有没有想过，三个月就能转行？",
	})
	if findings := rule.Check(context.Background(), short); len(findings) != 0 {
		t.Fatalf("short hook flagged: %+v", findings)
	}

	empty := testhelper.QAInput(testhelper.ContentFixtureConfig{Platform: core.PlatformDouyin})
	if findings := rule.Check(context.Background(), empty); len(findings) != 0 {
		t.Fatalf("empty hook flagged: %+v", findings)
	}

	long := testhelper.QAInput(testhelper.ContentFixtureConfig{
		Platform: core.PlatformDouyin,
		Hook:     strings.Repeat("为什么你总是转行失败", 5),
	})
	findings := rule.Check(context.Background(), long)
	if len(findings) != 1 {
		t.Fatalf("findings = %+v, want one", findings)
	}
	if findings[0].Verdict != core.VerdictFix || findings[0].Penalty != 5 {
		t.Fatalf("finding = %+v, want fix with penalty 5", findings[0])
	}
}
