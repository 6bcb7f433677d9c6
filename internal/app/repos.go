package app

import (
	"gorm.io/gorm"

	"github.com/notebook-buddy/backend/internal/data/repos/block"
	"github.com/notebook-buddy/backend/internal/data/repos/project"
	"github.com/notebook-buddy/backend/internal/data/repos/user"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

type Repos struct {
	User    user.UserRepo
	Project project.ProjectRepo
	Block   block.BlockRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:    user.NewUserRepo(db, log),
		Project: project.NewProjectRepo(db, log),
		Block:   block.NewBlockRepo(db, log),
	}
}
