package services

import (
	"context"

	"task-manager/internal/domain"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/validation"
)

// historyServiceImpl implements the HistoryService interface
type historyServiceImpl struct {
	repo      sqlite.Repository
	mapper    *domain.Mapper
	validator *validation.Validator
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(repo sqlite.Repository) HistoryService {
	return &historyServiceImpl{
		repo:      repo,
		mapper:    domain.NewMapper(),
		validator: validation.NewValidator(),
	}
}

func (h *historyServiceImpl) validateID(id string) error {
	if h.validator.IsValidID(id) {
		return nil
	}
	ve := validation.NewValidationError()
	ve.AddInvalidFormatError("history_id", id, "UUID")
	return ve.ToAppError()
}

// List returns the owner's interactions, newest first
func (h *historyServiceImpl) List(ctx context.Context, ownerID string) ([]domain.Interaction, error) {
	items, err := h.repo.ListInteractions(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return h.mapper.Interaction.FromDatabaseSlice(items), nil
}

// Get returns one of the owner's interactions
func (h *historyServiceImpl) Get(ctx context.Context, ownerID, id string) (*domain.Interaction, error) {
	if err := h.validateID(id); err != nil {
		return nil, err
	}

	item, err := h.repo.GetInteraction(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	in := h.mapper.Interaction.FromDatabase(*item)
	return &in, nil
}

// Delete removes one of the owner's interactions
func (h *historyServiceImpl) Delete(ctx context.Context, ownerID, id string) error {
	if err := h.validateID(id); err != nil {
		return err
	}
	return h.repo.DeleteInteraction(ctx, id, ownerID)
}
