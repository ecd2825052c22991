package service

import (
	"context"

	"github.com/renderbase/renderbase/internal/api/dto"
)

// PlanService manages the plan catalog
type PlanService interface {
	CreatePlan(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	ListPlans(ctx context.Context, onlyActive bool) ([]*dto.PlanResponse, error)
	UpdatePlan(ctx context.Context, id string, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error)
}

type planService struct {
	ServiceParams
}

// NewPlanService creates a new instance of PlanService
func NewPlanService(params ServiceParams) PlanService {
	return &planService{
		ServiceParams: params,
	}
}

func (s *planService) CreatePlan(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToPlan(ctx)
	if err := s.PlanRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("created plan",
		"plan_id", p.ID,
		"name", p.Name,
		"credits_per_month", p.CreditsPerMonth,
	)
	return dto.NewPlanResponse(p), nil
}

func (s *planService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPlanResponse(p), nil
}

func (s *planService) ListPlans(ctx context.Context, onlyActive bool) ([]*dto.PlanResponse, error) {
	plans, err := s.PlanRepo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	items := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		items = append(items, dto.NewPlanResponse(p))
	}
	return items, nil
}

func (s *planService) UpdatePlan(ctx context.Context, id string, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.AmountCents != nil {
		p.AmountCents = *req.AmountCents
	}
	if req.CreditsPerMonth != nil {
		p.CreditsPerMonth = *req.CreditsPerMonth
	}
	if req.TrialDays != nil {
		p.TrialDays = *req.TrialDays
	}
	if req.TrialCredits != nil {
		p.TrialCredits = *req.TrialCredits
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.PlanRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return dto.NewPlanResponse(p), nil
}
