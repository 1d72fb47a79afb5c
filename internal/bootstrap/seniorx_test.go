package bootstrap

import (
	"testing"

	"github.com/GustavoMarcolla/insightscore-pro/config"
	domainsx "github.com/GustavoMarcolla/insightscore-pro/internal/domain/seniorx"
)

func seniorXTestConfig(embedded bool) *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.SeniorX.TrustedRootDomain = "senior.com.br"
	cfg.SeniorX.APIBaseURL = "https://cloud-leaf.senior.com.br"
	cfg.SeniorX.Embedded = embedded
	cfg.SeniorX.Sanitize()
	return cfg
}

func TestBuildSeniorXStandalone(t *testing.T) {
	components, err := BuildSeniorX(seniorXTestConfig(false), ServiceContainer{}, discardLogger())
	if err != nil {
		t.Fatalf("BuildSeniorX() error = %v", err)
	}
	if components.Facade == nil || components.Guard == nil || components.Conn == nil {
		t.Fatalf("BuildSeniorX() = %+v, want all components set", components)
	}
	if got := components.Facade.Mode(); got != domainsx.ModeStandalone {
		t.Fatalf("Facade.Mode() = %v, want %v", got, domainsx.ModeStandalone)
	}
}

func TestBuildSeniorXEmbedded(t *testing.T) {
	components, err := BuildSeniorX(seniorXTestConfig(true), ServiceContainer{}, discardLogger())
	if err != nil {
		t.Fatalf("BuildSeniorX() error = %v", err)
	}
	if got := components.Facade.Mode(); got != domainsx.ModeEmbedded {
		t.Fatalf("Facade.Mode() = %v, want %v", got, domainsx.ModeEmbedded)
	}
}

func TestBuildSeniorXRejectsPublicSuffixRoot(t *testing.T) {
	cfg := seniorXTestConfig(false)
	cfg.SeniorX.TrustedRootDomain = "com.br"

	if _, err := BuildSeniorX(cfg, ServiceContainer{}, discardLogger()); err == nil {
		t.Fatal("BuildSeniorX() error = nil, want public suffix rejection")
	}
}
