package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"appforge/internal/domain"
	"appforge/internal/infra"
)

// PipelineConfig holds the orchestration knobs.
type PipelineConfig struct {
	PaymentWaitTimeout time.Duration
	ClusterNamespace   string
	VendorName         string
	VendorEmail        string
}

// PipelineService drives one order through the full fulfillment sequence:
// order, payment, contract, generation, repository, deployment, optional
// cluster rollout, delivery. Each phase stamps the run's timeline. A phase
// failure aborts the rest, refunds captured money and marks the order
// failed before the error surfaces to the caller.
type PipelineService struct {
	orders      *OrderService
	payments    *PaymentService
	generator   infra.CodeGenerator
	contracts   infra.ContractService
	repos       infra.RepositoryService
	deployments infra.DeploymentService
	cluster     infra.ClusterService
	cfg         PipelineConfig
	log         *logrus.Entry
}

func NewPipelineService(
	orders *OrderService,
	payments *PaymentService,
	generator infra.CodeGenerator,
	contracts infra.ContractService,
	repos infra.RepositoryService,
	deployments infra.DeploymentService,
	cluster infra.ClusterService,
	cfg PipelineConfig,
) *PipelineService {
	return &PipelineService{
		orders:      orders,
		payments:    payments,
		generator:   generator,
		contracts:   contracts,
		repos:       repos,
		deployments: deployments,
		cluster:     cluster,
		cfg:         cfg,
		log:         logrus.WithField("component", "pipeline"),
	}
}

// Run executes a single-shot fulfillment for fresh order data. Retrying a
// failed run means calling Run again: each run owns a fresh timeline.
func (s *PipelineService) Run(ctx context.Context, in CreateOrderInput, paymentMethodID string) (*domain.CompleteGenerationResult, error) {
	tl := &domain.PipelineTimeline{}

	// Phase 1: create the order. Validation failures surface directly,
	// there is nothing to roll back yet.
	order, err := s.orders.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}
	tl.OrderCreated = stamp()
	log := s.log.WithField("orderId", order.ID)

	// Phase 2: capture payment. This is the one point where the pipeline
	// blocks on an asynchronous resolution, bounded by the configured
	// timeout.
	intent, err := s.payments.CreatePaymentIntent(ctx, order, paymentMethodID)
	if err != nil {
		return nil, s.fail(ctx, order.ID, "", "payment", err)
	}
	if _, err := s.payments.ConfirmPayment(ctx, intent.ID); err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "payment", err)
	}

	status, err := s.payments.AwaitResult(ctx, intent.ID, s.cfg.PaymentWaitTimeout)
	if err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "payment", err)
	}
	if status != domain.IntentSucceeded {
		return nil, s.fail(ctx, order.ID, intent.ID, "payment", domain.ErrPaymentDeclined)
	}
	if err := s.orders.UpdateOrderStatus(ctx, order.ID, domain.StatusPaymentConfirmed); err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "payment", err)
	}
	tl.PaymentProcessed = stamp()
	log.Info("payment captured")

	if err := s.checkCancelled(ctx, order.ID); err != nil {
		return nil, err
	}

	// Phase 3: contract, signed by both parties before anything is built.
	contract, err := s.signContract(ctx, order)
	if err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "contract", err)
	}
	if err := s.orders.UpdateOrderStatus(ctx, order.ID, domain.StatusContractSigned); err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "contract", err)
	}
	tl.ContractSigned = stamp()

	if err := s.checkCancelled(ctx, order.ID); err != nil {
		return nil, err
	}

	// Phase 4: generation.
	if err := s.advance(ctx, order.ID,
		domain.StatusInQueue, domain.StatusOrchestrating, domain.StatusGeneratingCore); err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "generation", err)
	}
	tl.GenerationStarted = stamp()

	app, err := s.generator.Generate(ctx, order)
	if err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "generation", err)
	}
	if err := s.advance(ctx, order.ID,
		domain.StatusGeneratingUI, domain.StatusIntegrating, domain.StatusTesting); err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "generation", err)
	}
	tl.CodeGenerated = stamp()
	log.WithField("files", len(app.Files)).Info("application generated")

	if err := s.checkCancelled(ctx, order.ID); err != nil {
		return nil, err
	}

	// Phase 5: repository provisioning and push.
	repo, err := s.repos.CreateRepository(ctx, order.ID, order.AppSpecification.Name, true)
	if err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "repository", err)
	}
	commitMsg := fmt.Sprintf("Initial commit: generated %s", order.AppSpecification.Name)
	if err := s.repos.PushCode(ctx, repo.FullName, app.Files, commitMsg, "main"); err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "repository", err)
	}
	tl.RepositoryCreated = stamp()

	if err := s.checkCancelled(ctx, order.ID); err != nil {
		return nil, err
	}

	// Phase 6: deployment.
	if err := s.orders.UpdateOrderStatus(ctx, order.ID, domain.StatusDeploying); err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "deployment", err)
	}
	project, err := s.deployments.CreateProject(ctx, order.AppSpecification.Name, app.Framework, repo.FullName)
	if err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "deployment", err)
	}
	if err := s.deployments.LinkToSource(ctx, project.ID, repo.FullName); err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "deployment", err)
	}
	deployment, err := s.deployments.CreateDeployment(ctx, project.Name, app.Files, "production")
	if err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "deployment", err)
	}

	// Phase 7: enterprise tiers additionally roll out on the cluster.
	// Skipping it for the other tiers is a branch, not a failure.
	var clusterDeployment *domain.ClusterDeployment
	if order.AppSpecification.Complexity == domain.ComplexityEnterprise {
		clusterDeployment, err = s.cluster.DeployApplication(ctx,
			s.cfg.ClusterNamespace,
			order.AppSpecification.Name,
			"app-"+order.ID,
			infra.ClusterSpec{
				Image:    repo.FullName + ":latest",
				Replicas: 3,
				Port:     3000,
			})
		if err != nil {
			return nil, s.fail(ctx, order.ID, intent.ID, "cluster", err)
		}
	}
	tl.Deployed = stamp()
	log.WithField("url", deployment.URL).Info("application deployed")

	// Phase 8: delivery.
	if err := s.advance(ctx, order.ID,
		domain.StatusReadyForReview, domain.StatusFinalApproval, domain.StatusDelivered); err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "delivery", err)
	}
	if err := s.orders.StoreGeneratedApp(ctx, app); err != nil {
		return nil, s.fail(ctx, order.ID, intent.ID, "delivery", err)
	}
	tl.Delivered = stamp()

	final, err := s.orders.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline complete")
	return &domain.CompleteGenerationResult{
		Order:             final,
		GeneratedApp:      app,
		Contract:          contract,
		Repository:        repo,
		Deployment:        deployment,
		ClusterDeployment: clusterDeployment,
		Timeline:          tl,
	}, nil
}

func (s *PipelineService) signContract(ctx context.Context, order *domain.Order) (*domain.Contract, error) {
	contract, err := s.contracts.GenerateContract(ctx, order)
	if err != nil {
		return nil, err
	}

	client := infra.SignatureParty{
		PartyID: order.UserID,
		Name:    order.CustomerInfo.Name,
		Email:   order.CustomerInfo.Email,
		Role:    "client",
	}
	vendor := infra.SignatureParty{
		PartyID: "vendor-admin",
		Name:    s.cfg.VendorName,
		Email:   s.cfg.VendorEmail,
		Role:    "vendor",
	}
	if err := s.contracts.SendForSignature(ctx, contract.ID, []infra.SignatureParty{client, vendor}); err != nil {
		return nil, err
	}
	if err := s.contracts.SignContract(ctx, contract.ID, client.PartyID, "sig:"+client.Email); err != nil {
		return nil, err
	}
	if err := s.contracts.SignContract(ctx, contract.ID, vendor.PartyID, "sig:"+vendor.Email); err != nil {
		return nil, err
	}
	return contract, nil
}

// advance walks the order through consecutive edges of the state graph.
func (s *PipelineService) advance(ctx context.Context, orderID string, statuses ...domain.OrderStatus) error {
	for _, st := range statuses {
		if err := s.orders.UpdateOrderStatus(ctx, orderID, st); err != nil {
			return err
		}
	}
	return nil
}

// checkCancelled is the cooperative cancellation point between phases.
// Work already dispatched to collaborators is not clawed back; the
// pipeline's own progression stops.
func (s *PipelineService) checkCancelled(ctx context.Context, orderID string) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == domain.StatusCancelled {
		s.log.WithField("orderId", orderID).Info("pipeline stopped, order cancelled")
		return domain.ErrPipelineCancelled
	}
	return nil
}

// fail converts a phase error into the terminal rollback: full refund when
// money was captured, order marked failed, error wrapped and re-thrown.
func (s *PipelineService) fail(ctx context.Context, orderID, intentID, phase string, cause error) error {
	log := s.log.WithFields(logrus.Fields{"orderId": orderID, "phase": phase})
	log.WithError(cause).Error("pipeline phase failed")

	if intentID != "" {
		intent, err := s.payments.GetIntent(ctx, intentID)
		if err == nil && intent.Status == domain.IntentSucceeded {
			if err := s.payments.RefundOrder(ctx, orderID, "pipeline failure: "+phase); err != nil {
				log.WithError(err).Error("rollback refund failed")
			}
		}
	}

	reason := fmt.Sprintf("%s phase: %v", phase, cause)
	if err := s.orders.MarkFailed(ctx, orderID, reason); err != nil {
		log.WithError(err).Error("failed-status transition rejected")
	}

	return errors.Wrapf(&domain.PhaseError{Phase: phase, Err: cause}, "pipeline run for order %s", orderID)
}

func stamp() *time.Time {
	t := time.Now().UTC()
	return &t
}
