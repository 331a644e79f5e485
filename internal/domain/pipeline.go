package domain

import "time"

// PipelineTimeline records when each fulfillment phase of one orchestration
// run completed. Append-only: a nil later field means the run never got
// there. A retried run always starts a fresh timeline.
type PipelineTimeline struct {
	OrderCreated      *time.Time `json:"orderCreated,omitempty"`
	PaymentProcessed  *time.Time `json:"paymentProcessed,omitempty"`
	ContractSigned    *time.Time `json:"contractSigned,omitempty"`
	GenerationStarted *time.Time `json:"generationStarted,omitempty"`
	CodeGenerated     *time.Time `json:"codeGenerated,omitempty"`
	RepositoryCreated *time.Time `json:"repositoryCreated,omitempty"`
	Deployed          *time.Time `json:"deployed,omitempty"`
	Delivered         *time.Time `json:"delivered,omitempty"`
}

type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// GeneratedApp is the bundle handed back by the code-generation
// collaborator. The core stores it verbatim against the order.
type GeneratedApp struct {
	ID        string            `json:"id" gorm:"primaryKey;size:64"`
	OrderID   string            `json:"orderId" gorm:"column:order_id;uniqueIndex;not null"`
	Name      string            `json:"name" gorm:"column:name"`
	Framework string            `json:"framework" gorm:"column:framework"`
	Metadata  map[string]string `json:"metadata" gorm:"column:metadata;serializer:json"`
	Files     []GeneratedFile   `json:"files" gorm:"column:files;serializer:json"`
	CreatedAt time.Time         `json:"createdAt" gorm:"column:created_at"`
}

// Opaque references returned by external collaborators.

type Contract struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	SignedBy []string `json:"signedBy"`
}

type Repository struct {
	FullName string `json:"fullName"`
	HTMLURL  string `json:"htmlUrl"`
}

type DeployProject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Deployment struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ClusterDeployment struct {
	Namespace  string `json:"namespace"`
	Deployment string `json:"deployment"`
}

// CompleteGenerationResult is everything one pipeline run produced.
type CompleteGenerationResult struct {
	Order             *Order             `json:"order"`
	GeneratedApp      *GeneratedApp      `json:"generatedApp"`
	Contract          *Contract          `json:"contract"`
	Repository        *Repository        `json:"repository"`
	Deployment        *Deployment        `json:"deployment"`
	ClusterDeployment *ClusterDeployment `json:"clusterDeployment,omitempty"`
	Timeline          *PipelineTimeline  `json:"timeline"`
}
