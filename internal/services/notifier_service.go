package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/propreg/api/internal/logger"
	"github.com/propreg/api/internal/notification"
	"github.com/propreg/api/internal/repository"
)

// Business refusals for notification operations. These are expected
// outcomes, not faults: callers should not retry them.
var (
	ErrNoDebtors      = errors.New("no debtors in debtor list")
	ErrNoDebtIncurred = errors.New("owner has no tax debt")
)

// NotifierService builds and dispatches debtor notification events.
type NotifierService interface {
	// NotifyAll sends one BULK event per current debtor, in the order the
	// debtor set was returned. An empty debtor set is ErrNoDebtors. A
	// delivery failure for one recipient is logged and does not block the
	// others. The number of events accepted by the bus is returned.
	NotifyAll(ctx context.Context) (int, error)

	// NotifyOne sends a SINGLE event to the given owner.
	// Returns ErrOwnerNotFound when the owner does not exist and
	// ErrNoDebtIncurred when their debt is zero or negative.
	NotifyOne(ctx context.Context, ownerID int) error
}

// notifierService is the concrete implementation of NotifierService.
type notifierService struct {
	owners repository.OwnerRepository
	bus    notification.Bus
	log    *logger.Logger
}

// NewNotifierService creates a new instance of NotifierService.
func NewNotifierService(owners repository.OwnerRepository, bus notification.Bus, log *logger.Logger) NotifierService {
	return &notifierService{
		owners: owners,
		bus:    bus,
		log:    log,
	}
}

func (s *notifierService) NotifyAll(ctx context.Context) (int, error) {
	debtors, err := s.owners.FindDebtors(ctx)
	if err != nil {
		s.log.Error("Failed to load debtors for notification", err, nil)
		return 0, fmt.Errorf("failed to load debtors: %w", err)
	}
	if len(debtors) == 0 {
		return 0, ErrNoDebtors
	}

	// The batch size is computed once and repeated in every message.
	numberOfDebtors := strconv.Itoa(len(debtors))

	sent := 0
	for _, debtor := range debtors {
		event := notification.Event{
			RecipientEmail: debtor.Email,
			Kind:           notification.KindBulk,
			Parameters: map[string]string{
				notification.ParamNumberOfDebtors: numberOfDebtors,
				notification.ParamFirstName:       debtor.FirstName,
				notification.ParamLastName:        debtor.LastName,
				notification.ParamDebt:            debtor.TaxDebt.String(),
			},
		}

		if err := s.bus.Send(ctx, event); err != nil {
			s.log.Error("Failed to send debtor notification", err, map[string]interface{}{
				"owner_id":  debtor.ID,
				"recipient": debtor.Email,
			})
			continue
		}
		sent++
	}

	s.log.Info("Debtor notifications dispatched", map[string]interface{}{
		"debtors": len(debtors),
		"sent":    sent,
	})

	return sent, nil
}

func (s *notifierService) NotifyOne(ctx context.Context, ownerID int) error {
	owner, err := s.owners.FindByID(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to load owner: %w", err)
	}
	if owner == nil {
		return fmt.Errorf("%w: id %d", ErrOwnerNotFound, ownerID)
	}
	if !owner.IsDebtor() {
		return fmt.Errorf("%w: owner %d", ErrNoDebtIncurred, ownerID)
	}

	event := notification.Event{
		RecipientEmail: owner.Email,
		Kind:           notification.KindSingle,
		Parameters: map[string]string{
			notification.ParamFirstName:    owner.FirstName,
			notification.ParamLastName:     owner.LastName,
			notification.ParamDebt:         owner.TaxDebt.String(),
			notification.ParamHasChildren:  formatHasChildren(owner.HasChildren),
			notification.ParamFamilyStatus: owner.FamilyStatus.Title(),
		},
	}

	if err := s.bus.Send(ctx, event); err != nil {
		s.log.Error("Failed to send debtor notification", err, map[string]interface{}{
			"owner_id":  ownerID,
			"recipient": owner.Email,
		})
		return fmt.Errorf("failed to send notification: %w", err)
	}

	s.log.Info("Debtor notified", map[string]interface{}{
		"owner_id": ownerID,
	})

	return nil
}

func formatHasChildren(hasChildren bool) string {
	if hasChildren {
		return "Yes"
	}
	return "No"
}
