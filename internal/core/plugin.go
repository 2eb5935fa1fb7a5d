package core

import (
	"fmt"
	"sort"
)

// Plugin describes a platform pack that contributes QA rules, commit-time
// rules, and publish defaults for the platforms it covers.
type Plugin interface {
	Name() string
	Version() string
	Register(registry *PluginRegistry) error
}

// PublishDefaults carries the platform-specific pieces of a publish pack.
type PublishDefaults struct {
	Hashtag       string
	PinnedComment string
	ABTestHint    string
}

// PluginRegistry accumulates plugin contributions during registration.
type PluginRegistry struct {
	rules   []Rule
	qaRules map[Platform][]QARule
	publish map[Platform]PublishDefaults
}

// NewPluginRegistry constructs a plugin registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		qaRules: make(map[Platform][]QARule),
		publish: make(map[Platform]PublishDefaults),
	}
}

// RegisterRule adds a commit-time rule contributed by the plugin.
func (r *PluginRegistry) RegisterRule(rule Rule) {
	if rule == nil {
		return
	}
	r.rules = append(r.rules, rule)
}

// RegisterQARule adds a QA rule scoped to one platform, or to every platform
// when registered under PlatformAny.
func (r *PluginRegistry) RegisterQARule(platform Platform, rule QARule) {
	if rule == nil {
		return
	}
	r.qaRules[platform] = append(r.qaRules[platform], rule)
}

// RegisterPublishDefaults stores the publish pack defaults for a platform.
func (r *PluginRegistry) RegisterPublishDefaults(platform Platform, defaults PublishDefaults) error {
	if platform == PlatformAny {
		return fmt.Errorf("publish defaults require a concrete platform")
	}
	if _, exists := r.publish[platform]; exists {
		return fmt.Errorf("publish defaults for %s already registered", platform)
	}
	r.publish[platform] = defaults
	return nil
}

// Rules returns a copy of registered commit-time rules.
func (r *PluginRegistry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// QARules returns registered QA rules keyed by platform.
func (r *PluginRegistry) QARules() map[Platform][]QARule {
	out := make(map[Platform][]QARule, len(r.qaRules))
	for platform, rules := range r.qaRules {
		out[platform] = append([]QARule(nil), rules...)
	}
	return out
}

// PublishDefaults returns registered publish defaults keyed by platform.
func (r *PluginRegistry) PublishDefaults() map[Platform]PublishDefaults {
	out := make(map[Platform]PublishDefaults, len(r.publish))
	for platform, defaults := range r.publish {
		out[platform] = defaults
	}
	return out
}

// Platforms returns the platforms the registry carries publish defaults for.
func (r *PluginRegistry) Platforms() []Platform {
	out := make([]Platform, 0, len(r.publish))
	for platform := range r.publish {
		out = append(out, platform)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PluginMetadata stores metadata describing an installed plugin.
type PluginMetadata struct {
	Name      string
	Version   string
	Platforms []Platform
}

// InstallPlugin registers a platform pack, wiring its commit-time rules into
// the active engine and its QA rules and publish defaults into the service.
func (s *Service) InstallPlugin(plugin Plugin) (PluginMetadata, error) {
	if plugin == nil {
		return PluginMetadata{}, fmt.Errorf("plugin cannot be nil")
	}
	if s.plugins == nil {
		s.plugins = make(map[string]PluginMetadata)
	}
	if _, ok := s.plugins[plugin.Name()]; ok {
		return PluginMetadata{}, fmt.Errorf("plugin %s already registered", plugin.Name())
	}

	registry := NewPluginRegistry()
	if err := plugin.Register(registry); err != nil {
		return PluginMetadata{}, err
	}

	for _, rule := range registry.Rules() {
		s.store.RulesEngine().Register(rule)
	}
	for platform, rules := range registry.QARules() {
		s.qaRules[platform] = append(s.qaRules[platform], rules...)
	}
	for platform, defaults := range registry.PublishDefaults() {
		if _, exists := s.publish[platform]; exists {
			return PluginMetadata{}, fmt.Errorf("publish defaults for %s already installed", platform)
		}
		s.publish[platform] = defaults
	}

	meta := PluginMetadata{
		Name:      plugin.Name(),
		Version:   plugin.Version(),
		Platforms: registry.Platforms(),
	}
	s.plugins[plugin.Name()] = meta
	return meta, nil
}

// RegisteredPlugins returns metadata describing installed plugins.
func (s *Service) RegisteredPlugins() []PluginMetadata {
	out := make([]PluginMetadata, 0, len(s.plugins))
	for _, meta := range s.plugins {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CoveredPlatforms returns the platforms with installed publish defaults.
func (s *Service) CoveredPlatforms() []Platform {
	out := make([]Platform, 0, len(s.publish))
	for platform := range s.publish {
		out = append(out, platform)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
