package database

import (
	"context"
	"fmt"
)

// Schema テーブル定義。既存のテーブルには後から追加したカラムだけを足す
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS resources (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT NOT NULL,
		description TEXT,
		link TEXT NOT NULL,
		category TEXT NOT NULL,
		tags TEXT[],
		extraction_code TEXT,
		file_size TEXT,
		file_type TEXT,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE resources ADD COLUMN IF NOT EXISTS category_id UUID REFERENCES categories(id) ON DELETE SET NULL`,
	`ALTER TABLE resources ADD COLUMN IF NOT EXISTS view_count BIGINT NOT NULL DEFAULT 0`,
	`ALTER TABLE resources ADD COLUMN IF NOT EXISTS download_count BIGINT NOT NULL DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS idx_resources_created_at ON resources (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_resources_category ON resources (category)`,
	`CREATE INDEX IF NOT EXISTS idx_resources_category_id ON resources (category_id)`,
	`CREATE TABLE IF NOT EXISTS resource_requests (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		resource_name TEXT NOT NULL,
		description TEXT,
		requester_email TEXT NOT NULL,
		contact_info TEXT,
		priority TEXT NOT NULL DEFAULT 'normal',
		status TEXT NOT NULL DEFAULT 'pending',
		admin_notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_resource_requests_status ON resource_requests (status)`,
	`CREATE INDEX IF NOT EXISTS idx_resource_requests_created_at ON resource_requests (created_at DESC)`,
}

// Migrate スキーマを順に適用する。何度実行しても同じ結果になる
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.logger.WithError(err).WithField("step", i).Error("マイグレーションに失敗しました")
			return fmt.Errorf("migration step %d: %w", i, err)
		}
	}

	db.logger.WithField("steps", len(Schema)).Info("マイグレーションが完了しました")
	return nil
}
