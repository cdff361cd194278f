package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByWorkspaceID scopes a query to one tenant.
type ByWorkspaceID struct {
	WorkspaceID uuid.UUID
}

func (s ByWorkspaceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workspace_id = ?", s.WorkspaceID)
}

// ByDataSourceID scopes sync state and snapshots to one connection.
type ByDataSourceID struct {
	DataSourceID uuid.UUID
}

func (s ByDataSourceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("data_source_id = ?", s.DataSourceID)
}

// ByProvider filters credential and data-source rows.
type ByProvider struct {
	Provider string
}

func (s ByProvider) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider = ?", s.Provider)
}

// BySource pins one ingestible unit (source_type, source_id).
type BySource struct {
	SourceType string
	SourceID   string
}

func (s BySource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_type = ? AND source_id = ?", s.SourceType, s.SourceID)
}

// BySourceType filters records for disconnect flows.
type BySourceType struct {
	SourceType string
}

func (s BySourceType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_type = ?", s.SourceType)
}

// ByRecordIDs selects a batch of chunks by their index ids.
type ByRecordIDs struct {
	IDs []string
}

func (s ByRecordIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

// ByFileID pins one Drive file snapshot.
type ByFileID struct {
	FileID string
}

func (s ByFileID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("file_id = ?", s.FileID)
}

// BySlug finds a workspace by its sanitized slug.
type BySlug struct {
	Slug string
}

func (s BySlug) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slug = ?", s.Slug)
}
