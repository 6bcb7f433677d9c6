package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/notebook-buddy/backend/internal/data/repos/block"
	types "github.com/notebook-buddy/backend/internal/domain"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

// BlockInput is one submitted block. Order is optional: blocks without an
// explicit order are assigned their position in the submitted batch.
type BlockInput struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Order   *int   `json:"order"`
}

type TextBlockService interface {
	// SaveBlocks persists the batch one block at a time. The first failure
	// aborts the remainder; blocks already written stay written.
	SaveBlocks(ctx context.Context, projectID string, inputs []BlockInput) ([]*types.TextBlock, error)
	GetBlocks(ctx context.Context, projectID string) ([]*types.TextBlock, error)
	DeleteBlock(ctx context.Context, projectID, blockID string) error
}

type textBlockService struct {
	log       *logger.Logger
	blockRepo block.BlockRepo
}

func NewTextBlockService(log *logger.Logger, blockRepo block.BlockRepo) (TextBlockService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if blockRepo == nil {
		return nil, fmt.Errorf("block repo required")
	}
	return &textBlockService{
		log:       log.With("service", "TextBlockService"),
		blockRepo: blockRepo,
	}, nil
}

func (s *textBlockService) SaveBlocks(ctx context.Context, projectID string, inputs []BlockInput) ([]*types.TextBlock, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apierr.Validation("project id required")
	}
	for i, in := range inputs {
		if strings.TrimSpace(in.ID) == "" {
			return nil, apierr.Validation("block at position %d missing id", i)
		}
	}

	now := time.Now().UTC()
	saved := make([]*types.TextBlock, 0, len(inputs))
	for i, in := range inputs {
		order := i
		if in.Order != nil {
			order = *in.Order
		}
		b := &types.TextBlock{
			ProjectID: projectID,
			BlockID:   in.ID,
			Content:   in.Content,
			Order:     order,
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
			UpdatedAt: now,
		}
		if err := s.blockRepo.Save(ctx, nil, b); err != nil {
			s.log.Error("Block save failed; aborting batch",
				"project_id", projectID,
				"block_id", in.ID,
				"saved_so_far", len(saved),
				"error", err,
			)
			return nil, apierr.Storage("failed to save block %s in project %s", in.ID, projectID)
		}
		saved = append(saved, b)
	}

	// Ascending by order; equal orders keep submission sequence.
	sort.SliceStable(saved, func(a, b int) bool {
		return saved[a].Order < saved[b].Order
	})
	return saved, nil
}

func (s *textBlockService) GetBlocks(ctx context.Context, projectID string) ([]*types.TextBlock, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apierr.Validation("project id required")
	}
	blocks, err := s.blockRepo.ListByProject(ctx, nil, projectID)
	if err != nil {
		return nil, apierr.Storage("failed to load blocks for project %s", projectID)
	}
	return blocks, nil
}

func (s *textBlockService) DeleteBlock(ctx context.Context, projectID, blockID string) error {
	projectID = strings.TrimSpace(projectID)
	blockID = strings.TrimSpace(blockID)
	if projectID == "" || blockID == "" {
		return apierr.Validation("project id and block id required")
	}
	// Deleting an absent block succeeds; the end state is the same.
	if err := s.blockRepo.Delete(ctx, nil, projectID, blockID); err != nil {
		return apierr.Storage("failed to delete block %s in project %s", blockID, projectID)
	}
	return nil
}
