package infra

import (
	"fmt"

	"github.com/xzero11x/app-hotel-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies idempotent SQL patches for the constraints GORM cannot express
// (partial unique indexes in particular).
//
// TranslateError is on so unique-constraint violations surface as
// gorm.ErrDuplicatedKey — the caja repository depends on that to turn a
// concurrent double-open into model.ErrCajaOcupada.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Caja{},
		&model.Turno{},
		&model.MovimientoCaja{},
		&model.Habitacion{},
		&model.Huesped{},
		&model.Reserva{},
		&model.Pago{},
		&model.Comprobante{},
		&model.SerieComprobante{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Each statement uses IF NOT EXISTS semantics so re-running on an already
// patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one open turno per caja. This is the authoritative
		// enforcement of the invariant — application-level checks are only a
		// friendlier error path in front of it.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'ux_turnos_caja_abierto') THEN
		    CREATE UNIQUE INDEX ux_turnos_caja_abierto
		        ON turnos (caja_id)
		        WHERE estado = 'abierto';
		  END IF;
		END $$`,
		// Partial index for the invoice sync query over pending documents.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_comprobantes_pendientes') THEN
		    CREATE INDEX idx_comprobantes_pendientes
		        ON comprobantes (created_at)
		        WHERE estado_sunat = 'pendiente';
		  END IF;
		END $$`,
		// Ledger rows are append-only: even a bugged code path must not be
		// able to rewrite history.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'movimientos_caja_inmutables') THEN
		    CREATE OR REPLACE FUNCTION rechazar_mutacion_movimiento() RETURNS trigger AS $fn$
		    BEGIN
		      RAISE EXCEPTION 'movimientos_caja es append-only';
		    END;
		    $fn$ LANGUAGE plpgsql;
		    CREATE TRIGGER movimientos_caja_inmutables
		        BEFORE UPDATE OR DELETE ON movimientos_caja
		        FOR EACH ROW EXECUTE FUNCTION rechazar_mutacion_movimiento();
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// RunMigrations applies the schema for integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Caja{},
		&model.Turno{},
		&model.MovimientoCaja{},
		&model.Habitacion{},
		&model.Huesped{},
		&model.Reserva{},
		&model.Pago{},
		&model.Comprobante{},
		&model.SerieComprobante{},
	); err != nil {
		return err
	}
	return applySchemaPatches(db)
}
