package db

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm/clause"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/types"
	"github.com/coursebridge/coursebridge-backend/internal/utils"
)

type seedFile struct {
	Categories []struct {
		ExternalID string `yaml:"external_id"`
		Name       string `yaml:"name"`
	} `yaml:"categories"`
	Levels []struct {
		Name string `yaml:"name"`
		Rank int    `yaml:"rank"`
	} `yaml:"levels"`
}

// SeedTaxonomy loads categories and levels from the YAML file named by
// SEED_FILE. Rows are upserted by their natural keys, so re-running the
// seed on every boot is safe.
func (s *PostgresService) SeedTaxonomy(log *logger.Logger) error {
	path := utils.GetEnv("SEED_FILE", "", log)
	if path == "" {
		s.log.Debug("No seed file configured, skipping taxonomy seed")
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Failed to read seed file %q: %w", path, err)
	}
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("Failed to parse seed file %q: %w", path, err)
	}

	for _, c := range file.Categories {
		category := types.Category{ExternalID: c.ExternalID, Name: c.Name}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&category).Error
		if err != nil {
			return fmt.Errorf("Failed to seed category %q: %w", c.Name, err)
		}
	}
	for _, l := range file.Levels {
		level := types.Level{Name: l.Name, Rank: l.Rank}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"rank"}),
		}).Create(&level).Error
		if err != nil {
			return fmt.Errorf("Failed to seed level %q: %w", l.Name, err)
		}
	}

	s.log.Info("Taxonomy seed applied", "categories", len(file.Categories), "levels", len(file.Levels))
	return nil
}
