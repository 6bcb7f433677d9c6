package block

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/notebook-buddy/backend/internal/domain"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

type BlockRepo interface {
	Save(ctx context.Context, tx *gorm.DB, block *types.TextBlock) error
	ListByProject(ctx context.Context, tx *gorm.DB, projectID string) ([]*types.TextBlock, error)
	Delete(ctx context.Context, tx *gorm.DB, projectID, blockID string) error
}

type blockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlockRepo(db *gorm.DB, baseLog *logger.Logger) BlockRepo {
	repoLog := baseLog.With("repo", "BlockRepo")
	return &blockRepo{db: db, log: repoLog}
}

// Save upserts on the (project_id, block_id) composite key. Re-saving an
// existing block updates content and order but keeps the original created_at,
// which readers use to break order ties by insertion sequence.
func (br *blockRepo) Save(ctx context.Context, tx *gorm.DB, block *types.TextBlock) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "project_id"}, {Name: "block_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content", "block_order", "updated_at",
			}),
		}).
		Create(block).Error
}

func (br *blockRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID string) ([]*types.TextBlock, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*types.TextBlock
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("block_order ASC").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Delete is idempotent: removing a block that does not exist is not an error.
func (br *blockRepo) Delete(ctx context.Context, tx *gorm.DB, projectID, blockID string) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	return transaction.WithContext(ctx).
		Where("project_id = ? AND block_id = ?", projectID, blockID).
		Delete(&types.TextBlock{}).Error
}
