package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		phone VARCHAR(30) UNIQUE,
		password_hash VARCHAR(255),
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		avatar_url VARCHAR(500),
		provider VARCHAR(50),
		provider_id VARCHAR(255),
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(provider, provider_id)
	)`,

	`CREATE TABLE IF NOT EXISTS listings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(100) NOT NULL,
		slug VARCHAR(120) NOT NULL,
		short_description VARCHAR(200) NOT NULL,
		long_description VARCHAR(2000),
		category VARCHAR(50) NOT NULL,
		provider VARCHAR(50) NOT NULL,
		pricing VARCHAR(20) NOT NULL DEFAULT 'freemium',
		model_type VARCHAR(50),
		external_url VARCHAR(500),
		tags TEXT[] NOT NULL DEFAULT '{}',
		capabilities TEXT[] NOT NULL DEFAULT '{}',
		best_for TEXT[] NOT NULL DEFAULT '{}',
		features TEXT[] NOT NULL DEFAULT '{}',
		example_prompts TEXT[] NOT NULL DEFAULT '{}',
		rating NUMERIC(3,2) NOT NULL DEFAULT 0,
		reviews_count INTEGER NOT NULL DEFAULT 0,
		installs_count INTEGER NOT NULL DEFAULT 0,
		trending_score INTEGER NOT NULL DEFAULT 0,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		rejection_reason TEXT,
		uploaded_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CONSTRAINT listings_slug_key UNIQUE (slug)
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_uploaded_by ON listings(uploaded_by)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_browse ON listings(featured DESC, trending_score DESC, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,

	// Substring search over name and short_description
	`CREATE EXTENSION IF NOT EXISTS pg_trgm`,
	`CREATE INDEX IF NOT EXISTS idx_listings_name_search ON listings USING gin (name gin_trgm_ops)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
