// Package cron exposes scheduled jobs to an external scheduler.
package cron

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/backup"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// BackupPath triggers a database backup.
const BackupPath = "/cron/backup-database"

// Service is the cron handler service.
type Service struct {
	db  *gorm.DB
	dir string
}

// Init registers the cron routes. They require the cron secret.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil {
		return handler.ErrNilDeps
	}

	s.db = deps.DB
	s.dir = deps.Cfg.Cron.BackupDir

	router.Get(BackupPath, auth.RequireCronSecret(deps.Cfg.Cron.Secret), s.Backup)

	return nil
}

// Backup dumps every table and returns the summary.
func (s *Service) Backup(c *fiber.Ctx) error {
	sum, err := backup.Run(c.UserContext(), s.db, s.dir)
	if err != nil {
		log.Error().Err(err).Msg("backup request failed")

		return handler.JSONError(c, fiber.StatusInternalServerError, "Backup failed")
	}

	return c.JSON(sum)
}
