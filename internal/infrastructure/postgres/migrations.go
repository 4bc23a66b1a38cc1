package postgres

import (
	"context"
	"fmt"
)

// schema crea las tablas si no existen. Las sentencias son idempotentes.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS clusters (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id            UUID PRIMARY KEY,
		cluster_id    UUID NOT NULL REFERENCES clusters(id),
		name          TEXT NOT NULL,
		email         TEXT UNIQUE,
		phone         TEXT,
		block         TEXT,
		house_number  TEXT,
		password_hash TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_profiles_cluster ON profiles (cluster_id)`,
	`CREATE TABLE IF NOT EXISTS user_permissions (
		id          UUID PRIMARY KEY,
		profile_id  UUID NOT NULL REFERENCES profiles(id),
		cluster_id  UUID NOT NULL REFERENCES clusters(id),
		resident_id UUID REFERENCES profiles(id),
		scope       TEXT NOT NULL CHECK (scope IN ('self', 'cluster_admin'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_permissions_profile ON user_permissions (profile_id, cluster_id)`,
	`CREATE TABLE IF NOT EXISTS iuran (
		id             UUID PRIMARY KEY,
		cluster_id     UUID NOT NULL REFERENCES clusters(id),
		name           TEXT NOT NULL,
		due_date       SMALLINT NOT NULL CHECK (due_date BETWEEN 1 AND 31),
		start_date     DATE NOT NULL,
		end_date       DATE NOT NULL,
		amount         NUMERIC(18,2) NOT NULL CHECK (amount > 0),
		deactivated_at TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (start_date <= end_date)
	)`,
	`CREATE TABLE IF NOT EXISTS iuran_participants (
		iuran_id    UUID NOT NULL REFERENCES iuran(id),
		resident_id UUID NOT NULL REFERENCES profiles(id),
		position    INT NOT NULL,
		PRIMARY KEY (iuran_id, resident_id)
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id             UUID PRIMARY KEY,
		iuran_id       UUID NOT NULL REFERENCES iuran(id),
		cluster_id     UUID NOT NULL REFERENCES clusters(id),
		resident_id    UUID NOT NULL REFERENCES profiles(id),
		amount         NUMERIC(18,2) NOT NULL CHECK (amount > 0),
		billing_period CHAR(7) NOT NULL,
		due_at         DATE NOT NULL,
		status         TEXT NOT NULL CHECK (status IN ('pending', 'paid', 'overdue', 'cancelled')),
		paid_at        TIMESTAMPTZ,
		cancelled_at   TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT uq_invoices_iuran_resident_period UNIQUE (iuran_id, resident_id, billing_period)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_cluster_updated ON invoices (cluster_id, updated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_pending_due ON invoices (cluster_id, due_at) WHERE status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS chart_of_accounts (
		id         UUID PRIMARY KEY,
		cluster_id UUID NOT NULL REFERENCES clusters(id),
		code       TEXT NOT NULL,
		name       TEXT NOT NULL,
		type       TEXT NOT NULL CHECK (type IN ('asset', 'liability', 'equity', 'revenue', 'expense')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT uq_chart_of_accounts_cluster_code UNIQUE (cluster_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS ledgers (
		id                   UUID PRIMARY KEY,
		cluster_id           UUID NOT NULL REFERENCES clusters(id),
		invoice_id           UUID REFERENCES invoices(id) ON DELETE RESTRICT,
		chart_of_accounts_id UUID NOT NULL REFERENCES chart_of_accounts(id) ON DELETE RESTRICT,
		amount               NUMERIC(18,2) NOT NULL CHECK (amount > 0),
		direction            TEXT NOT NULL CHECK (direction IN ('debit', 'credit')),
		posting_ref          UUID NOT NULL,
		description          TEXT NOT NULL DEFAULT '',
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledgers_cluster_updated ON ledgers (cluster_id, updated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_ledgers_invoice ON ledgers (invoice_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ledgers_account ON ledgers (chart_of_accounts_id)`,
}

// Migrate aplica el esquema dentro de una transacción.
func Migrate(ctx context.Context, q Querier) error {
	tx, err := q.Begin(ctx)
	if err != nil {
		return wrapErr("migrate: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return wrapErr(fmt.Sprintf("migrate: sentencia %d", i+1), err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("migrate: commit", err)
	}
	return nil
}
