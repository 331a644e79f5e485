package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"appforge/internal/domain"
	"appforge/internal/infra"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

type MockCodeGenerator struct {
	mock.Mock
}

func (m *MockCodeGenerator) Generate(ctx context.Context, order *domain.Order) (*domain.GeneratedApp, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedApp), args.Error(1)
}

type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) GenerateContract(ctx context.Context, order *domain.Order) (*domain.Contract, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

func (m *MockContractService) SendForSignature(ctx context.Context, contractID string, parties []infra.SignatureParty) error {
	args := m.Called(ctx, contractID, parties)
	return args.Error(0)
}

func (m *MockContractService) SignContract(ctx context.Context, contractID, partyID, signature string) error {
	args := m.Called(ctx, contractID, partyID, signature)
	return args.Error(0)
}

type MockRepositoryService struct {
	mock.Mock
}

func (m *MockRepositoryService) CreateRepository(ctx context.Context, orderID, name string, private bool) (*domain.Repository, error) {
	args := m.Called(ctx, orderID, name, private)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repository), args.Error(1)
}

func (m *MockRepositoryService) PushCode(ctx context.Context, fullName string, files []domain.GeneratedFile, message, branch string) error {
	args := m.Called(ctx, fullName, files, message, branch)
	return args.Error(0)
}

type MockDeploymentService struct {
	mock.Mock
}

func (m *MockDeploymentService) CreateProject(ctx context.Context, name, framework, sourceRepo string) (*domain.DeployProject, error) {
	args := m.Called(ctx, name, framework, sourceRepo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeployProject), args.Error(1)
}

func (m *MockDeploymentService) LinkToSource(ctx context.Context, projectID, sourceRepo string) error {
	args := m.Called(ctx, projectID, sourceRepo)
	return args.Error(0)
}

func (m *MockDeploymentService) CreateDeployment(ctx context.Context, projectName string, files []domain.GeneratedFile, target string) (*domain.Deployment, error) {
	args := m.Called(ctx, projectName, files, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deployment), args.Error(1)
}

type MockClusterService struct {
	mock.Mock
}

func (m *MockClusterService) DeployApplication(ctx context.Context, namespace, appName, deploymentName string, spec infra.ClusterSpec) (*domain.ClusterDeployment, error) {
	args := m.Called(ctx, namespace, appName, deploymentName, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClusterDeployment), args.Error(1)
}

type MockRefunder struct {
	mock.Mock
}

func (m *MockRefunder) RefundOrder(ctx context.Context, orderID, reason string) error {
	args := m.Called(ctx, orderID, reason)
	return args.Error(0)
}
