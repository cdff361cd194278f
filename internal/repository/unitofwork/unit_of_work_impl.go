package unitofwork

import (
	"context"
	"fmt"

	"arcana-be/internal/repository/contract"
	"arcana-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) WorkspaceRepository() contract.WorkspaceRepository {
	return implementation.NewWorkspaceRepository(u.getDB())
}

func (u *UnitOfWorkImpl) RagIndexRepository() contract.RagIndexRepository {
	return implementation.NewRagIndexRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DataSourceRepository() contract.DataSourceRepository {
	return implementation.NewDataSourceRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CredentialRepository() contract.CredentialRepository {
	return implementation.NewCredentialRepository(u.getDB())
}

func (u *UnitOfWorkImpl) NotionSyncStateRepository() contract.NotionSyncStateRepository {
	return implementation.NewNotionSyncStateRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DriveSyncStateRepository() contract.DriveSyncStateRepository {
	return implementation.NewDriveSyncStateRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DriveSnapshotRepository() contract.DriveSnapshotRepository {
	return implementation.NewDriveSnapshotRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SourceRecordRepository() contract.SourceRecordRepository {
	return implementation.NewSourceRecordRepository(u.getDB())
}
