package unitofwork

import (
	"context"

	"arcana-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	WorkspaceRepository() contract.WorkspaceRepository
	RagIndexRepository() contract.RagIndexRepository
	DataSourceRepository() contract.DataSourceRepository
	CredentialRepository() contract.CredentialRepository
	NotionSyncStateRepository() contract.NotionSyncStateRepository
	DriveSyncStateRepository() contract.DriveSyncStateRepository
	DriveSnapshotRepository() contract.DriveSnapshotRepository
	SourceRecordRepository() contract.SourceRecordRepository
}
