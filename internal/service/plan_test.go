package service

import (
	"testing"

	"github.com/renderbase/renderbase/internal/api/dto"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	planService PlanService
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceSuite))
}

func (s *PlanServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.planService = NewPlanService(ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		DB:         s.GetDB(),
		Cache:      s.GetCache(),
		WalletRepo: s.GetStores().WalletRepo,
		PlanRepo:   s.GetStores().PlanRepo,
		SubRepo:    s.GetStores().SubRepo,
	})
}

func (s *PlanServiceSuite) createRequest() *dto.CreatePlanRequest {
	return &dto.CreatePlanRequest{
		Name:            "starter",
		DisplayName:     "Starter",
		AmountCents:     900,
		Currency:        "usd",
		Interval:        "month",
		CreditsPerMonth: decimal.NewFromInt(50),
		TrialDays:       7,
		TrialCredits:    decimal.NewFromInt(15),
	}
}

func (s *PlanServiceSuite) TestCreateAndGetPlan() {
	created, err := s.planService.CreatePlan(s.GetContext(), s.createRequest())
	s.NoError(err)
	s.Equal("starter", created.Name)
	s.True(created.IsActive)

	fetched, err := s.planService.GetPlan(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(fetched.CreditsPerMonth.Equal(decimal.NewFromInt(50)))
}

func (s *PlanServiceSuite) TestDuplicateNameRejected() {
	_, err := s.planService.CreatePlan(s.GetContext(), s.createRequest())
	s.NoError(err)

	_, err = s.planService.CreatePlan(s.GetContext(), s.createRequest())
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *PlanServiceSuite) TestInvalidIntervalRejected() {
	req := s.createRequest()
	req.Interval = "fortnight"

	_, err := s.planService.CreatePlan(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestListOnlyActive() {
	created, err := s.planService.CreatePlan(s.GetContext(), s.createRequest())
	s.NoError(err)

	pro := s.createRequest()
	pro.Name = "pro"
	pro.DisplayName = "Pro"
	_, err = s.planService.CreatePlan(s.GetContext(), pro)
	s.NoError(err)

	inactive := false
	_, err = s.planService.UpdatePlan(s.GetContext(), created.ID, &dto.UpdatePlanRequest{
		IsActive: &inactive,
	})
	s.NoError(err)

	active, err := s.planService.ListPlans(s.GetContext(), true)
	s.NoError(err)
	s.Len(active, 1)
	s.Equal("pro", active[0].Name)

	all, err := s.planService.ListPlans(s.GetContext(), false)
	s.NoError(err)
	s.Len(all, 2)
}

func (s *PlanServiceSuite) TestUpdatePlanCredits() {
	created, err := s.planService.CreatePlan(s.GetContext(), s.createRequest())
	s.NoError(err)

	credits := decimal.NewFromInt(80)
	updated, err := s.planService.UpdatePlan(s.GetContext(), created.ID, &dto.UpdatePlanRequest{
		CreditsPerMonth: &credits,
	})
	s.NoError(err)
	s.True(updated.CreditsPerMonth.Equal(credits))
}
