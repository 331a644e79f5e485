// Package infra holds the clients for the external collaborators the
// pipeline sequences: code generation, contracts, repositories, deployments
// and cluster rollout. The core consumes them only through these
// interfaces.
package infra

import (
	"context"

	"appforge/internal/domain"
)

// CodeGenerator is the generation black box. A failed Generate is a phase
// failure for the pipeline.
type CodeGenerator interface {
	Generate(ctx context.Context, order *domain.Order) (*domain.GeneratedApp, error)
}

type SignatureParty struct {
	PartyID string `json:"partyId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"` // client | vendor
}

type ContractService interface {
	GenerateContract(ctx context.Context, order *domain.Order) (*domain.Contract, error)
	SendForSignature(ctx context.Context, contractID string, parties []SignatureParty) error
	SignContract(ctx context.Context, contractID, partyID, signature string) error
}

type RepositoryService interface {
	CreateRepository(ctx context.Context, orderID, name string, private bool) (*domain.Repository, error)
	PushCode(ctx context.Context, fullName string, files []domain.GeneratedFile, message, branch string) error
}

type DeploymentService interface {
	CreateProject(ctx context.Context, name, framework, sourceRepo string) (*domain.DeployProject, error)
	LinkToSource(ctx context.Context, projectID, sourceRepo string) error
	CreateDeployment(ctx context.Context, projectName string, files []domain.GeneratedFile, target string) (*domain.Deployment, error)
}

// ClusterSpec is the rollout request for enterprise-tier orders.
type ClusterSpec struct {
	Image       string            `json:"image"`
	Replicas    int               `json:"replicas"`
	Environment map[string]string `json:"environment,omitempty"`
	Port        int               `json:"port"`
}

type ClusterService interface {
	DeployApplication(ctx context.Context, namespace, appName, deploymentName string, spec ClusterSpec) (*domain.ClusterDeployment, error)
}

var (
	_ CodeGenerator     = (*CodegenClient)(nil)
	_ ContractService   = (*ContractClient)(nil)
	_ RepositoryService = (*GitHubClient)(nil)
	_ DeploymentService = (*VercelClient)(nil)
	_ ClusterService    = (*ClusterClient)(nil)
)
