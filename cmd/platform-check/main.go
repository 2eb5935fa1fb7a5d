// Command platform-check verifies that the compiled-in platform packs cover
// every supported platform with publish defaults and report no registration
// conflicts. It is run in CI so a platform cannot silently ship uncovered.
package main

import (
	"flag"
	"fmt"
	"os"

	"ipstudio/internal/core"
	"ipstudio/pkg/domain"
	"ipstudio/plugins/douyin"
	"ipstudio/plugins/wechat"
	"ipstudio/plugins/xiaohongshu"
)

var exitFunc = os.Exit

func main() {
	verbose := flag.Bool("v", false, "print per-plugin coverage")
	flag.Parse()
	if err := check(*verbose); err != nil {
		fmt.Fprintln(os.Stderr, "platform-check:", err)
		exitFunc(1)
	}
	fmt.Println("platform-check: ok")
}

func check(verbose bool) error {
	svc := core.NewInMemoryService(core.DefaultRulesEngine())
	for _, plugin := range []core.Plugin{douyin.New(), xiaohongshu.New(), wechat.New()} {
		meta, err := svc.InstallPlugin(plugin)
		if err != nil {
			return fmt.Errorf("install %s: %w", plugin.Name(), err)
		}
		if len(meta.Platforms) == 0 {
			return fmt.Errorf("plugin %s registers no publish defaults", meta.Name)
		}
		if verbose {
			fmt.Printf("%s %s covers %v\n", meta.Name, meta.Version, meta.Platforms)
		}
	}

	covered := make(map[core.Platform]bool)
	for _, platform := range svc.CoveredPlatforms() {
		covered[platform] = true
	}
	var missing []domain.Platform
	for _, platform := range domain.Platforms() {
		if !covered[platform] {
			missing = append(missing, platform)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("platforms without publish defaults: %v", missing)
	}
	return nil
}
