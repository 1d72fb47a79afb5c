// Package mocks provides mock implementations for testing the service layer.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository interfaces in internal/core. To regenerate after interface
// changes, run:
//
//	go generate ./internal/mocks
package mocks

// Generate mocks for the repository and store interfaces from internal/core.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=core_mocks.go github.com/GustavoMarcolla/insightscore-pro/internal/core SupplierRepository,ContactRepository,GroupRepository,CriterionRepository,QualificationRepository,DashboardRepository,UserRepository,OneTimeTokenStore,DashboardCache
