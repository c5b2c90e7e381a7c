package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/envutil"
	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := envutil.String("POSTGRES_HOST", "localhost")
	postgresPort := envutil.String("POSTGRES_PORT", "5432")
	postgresUser := envutil.String("POSTGRES_USER", "postgres")
	postgresPassword := envutil.String("POSTGRES_PASSWORD", "")
	postgresName := envutil.String("POSTGRES_NAME", "mlcatalog")
	postgresSSLMode := envutil.String("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName, postgresSSLMode)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		// Unique-index violations must surface as gorm.ErrDuplicatedKey so the
		// version append conflict is recognized and retried.
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Collection{},
		&types.Agent{},
		&types.Entity{},
		&types.Dataset{},
		&types.TrainedModel{},
		&types.Task{},
		&types.EntityVersion{},
		&types.VersionTag{},
		&types.EntityRelationship{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		ddl  string
	}{
		{"fk_entities_collection_id", `
			ALTER TABLE "entities"
			ADD CONSTRAINT "fk_entities_collection_id"
			FOREIGN KEY ("collection_id") REFERENCES "collections"("id")
			ON DELETE RESTRICT`},
		{"fk_entity_versions_entity_id", `
			ALTER TABLE "entity_versions"
			ADD CONSTRAINT "fk_entity_versions_entity_id"
			FOREIGN KEY ("entity_id") REFERENCES "entities"("id")
			ON DELETE CASCADE`},
		{"fk_version_tags_entity_id", `
			ALTER TABLE "version_tags"
			ADD CONSTRAINT "fk_version_tags_entity_id"
			FOREIGN KEY ("entity_id") REFERENCES "entities"("id")
			ON DELETE CASCADE`},
		{"fk_entity_relationships_source", `
			ALTER TABLE "entity_relationships"
			ADD CONSTRAINT "fk_entity_relationships_source"
			FOREIGN KEY ("source_entity_id") REFERENCES "entities"("id")
			ON DELETE RESTRICT`},
		{"fk_entity_relationships_target", `
			ALTER TABLE "entity_relationships"
			ADD CONSTRAINT "fk_entity_relationships_target"
			FOREIGN KEY ("target_entity_id") REFERENCES "entities"("id")
			ON DELETE RESTRICT`},
	}
	for _, c := range constraints {
		var exists bool
		s.db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name).Scan(&exists)
		if exists {
			continue
		}
		if err := s.db.Exec(c.ddl).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
