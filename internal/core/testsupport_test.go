package core

import (
	"context"
	"testing"
	"time"
)

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	return NewInMemoryService(DefaultRulesEngine(), opts...)
}

func seedWorkspace(t *testing.T, svc *Service) (Org, Persona) {
	t.Helper()
	ctx := context.Background()
	org, _, err := svc.CreateOrg(ctx, Org{Name: "小岛工作室", Industry: "career coaching"})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	persona, _, err := svc.CreatePersona(ctx, Persona{OrgID: org.ID, Name: "转行教练阿敏", Type: "expert"})
	if err != nil {
		t.Fatalf("create persona: %v", err)
	}
	return org, persona
}

func seedContent(t *testing.T, svc *Service, personaID string, mutate func(*Content)) Content {
	t.Helper()
	content := Content{
		PersonaID:    personaID,
		Platform:     PlatformDouyin,
		Title:        "三个月转行的完整路线",
		TopicCluster: "转行",
		Status:       StatusDraft,
	}
	if mutate != nil {
		mutate(&content)
	}
	created, _, err := svc.CreateContent(context.Background(), content)
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	return created
}

func fixedClock(ts time.Time) ServiceOption {
	return WithNowFunc(func() time.Time { return ts })
}
