package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propreg/api/internal/logger"
	"github.com/propreg/api/internal/models"
	"github.com/propreg/api/internal/repository"
)

// Debt compounding parameters: unpaid debt grows by 5% per recalculation
// cycle and is rounded half-up to one decimal place.
var (
	debtGrowthFactor = decimal.RequireFromString("1.05")
)

const debtScale = 1

// RecalcSummary reports the outcome of one recalculation cycle. The
// scheduler ignores it; the HTTP trigger returns it to the caller.
type RecalcSummary struct {
	Debtors int `json:"debtors"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// DebtService compounds outstanding tax debt.
type DebtService interface {
	// FindDebtors returns every owner with a strictly positive debt.
	FindDebtors(ctx context.Context) ([]models.Owner, error)

	// Recalculate runs one compounding cycle over the current debtor
	// set. A failure on one debtor is logged and counted, never aborting
	// the rest of the batch. Owners without positive debt are not
	// touched: no update call is issued for them.
	Recalculate(ctx context.Context) (RecalcSummary, error)
}

// debtService is the concrete implementation of DebtService.
type debtService struct {
	owners       repository.OwnerRepository
	log          *logger.Logger
	ownerTimeout time.Duration
}

// NewDebtService creates a new instance of DebtService. ownerTimeout bounds
// the store write for a single debtor so one slow write cannot stall the
// whole cycle.
func NewDebtService(owners repository.OwnerRepository, ownerTimeout time.Duration, log *logger.Logger) DebtService {
	return &debtService{
		owners:       owners,
		log:          log,
		ownerTimeout: ownerTimeout,
	}
}

func (s *debtService) FindDebtors(ctx context.Context) ([]models.Owner, error) {
	debtors, err := s.owners.FindDebtors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load debtors: %w", err)
	}
	return debtors, nil
}

// Recalculate re-reads the full debtor set on every run; no state is kept
// between cycles.
func (s *debtService) Recalculate(ctx context.Context) (RecalcSummary, error) {
	debtors, err := s.owners.FindDebtors(ctx)
	if err != nil {
		s.log.Error("Failed to load debtors for recalculation", err, nil)
		return RecalcSummary{}, fmt.Errorf("failed to load debtors: %w", err)
	}

	summary := RecalcSummary{Debtors: len(debtors)}

	for _, debtor := range debtors {
		// The debtor query already filters on positive debt; this guards
		// against a store handing back a non-debtor anyway.
		if !debtor.IsDebtor() {
			continue
		}

		if err := ctx.Err(); err != nil {
			s.log.Warn("Recalculation cancelled mid-cycle", map[string]interface{}{
				"processed": summary.Updated + summary.Failed,
				"debtors":   summary.Debtors,
			})
			return summary, err
		}

		if err := s.compound(ctx, debtor); err != nil {
			summary.Failed++
			s.log.Error("Failed to recalculate debt", err, map[string]interface{}{
				"owner_id": debtor.ID,
			})
			continue
		}
		summary.Updated++
	}

	s.log.Info("Debt recalculation cycle finished", map[string]interface{}{
		"debtors": summary.Debtors,
		"updated": summary.Updated,
		"failed":  summary.Failed,
	})

	return summary, nil
}

func (s *debtService) compound(ctx context.Context, debtor models.Owner) error {
	opCtx, cancel := context.WithTimeout(ctx, s.ownerTimeout)
	defer cancel()

	debtor.TaxDebt = debtor.TaxDebt.Mul(debtGrowthFactor).Round(debtScale)

	found, err := s.owners.Update(opCtx, debtor.ID, debtor)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: id %d", ErrOwnerNotFound, debtor.ID)
	}

	return nil
}
