package mapper

import (
	"arcana-be/internal/entity"
	"arcana-be/internal/model"
)

type SyncStateMapper struct{}

func NewSyncStateMapper() *SyncStateMapper {
	return &SyncStateMapper{}
}

func (m *SyncStateMapper) NotionToEntity(s *model.NotionSyncState) *entity.NotionSyncState {
	if s == nil {
		return nil
	}
	return &entity.NotionSyncState{
		Id:               s.Id,
		DataSourceId:     s.DataSourceId,
		LastFullSync:     s.LastFullSync,
		Since:            s.Since,
		NextCursor:       s.NextCursor,
		RateLimitedUntil: s.RateLimitedUntil,
		UpdatedAt:        s.UpdatedAt,
	}
}

func (m *SyncStateMapper) NotionToModel(s *entity.NotionSyncState) *model.NotionSyncState {
	if s == nil {
		return nil
	}
	return &model.NotionSyncState{
		Id:               s.Id,
		DataSourceId:     s.DataSourceId,
		LastFullSync:     s.LastFullSync,
		Since:            s.Since,
		NextCursor:       s.NextCursor,
		RateLimitedUntil: s.RateLimitedUntil,
		UpdatedAt:        s.UpdatedAt,
	}
}

func (m *SyncStateMapper) DriveToEntity(s *model.DriveSyncState) *entity.DriveSyncState {
	if s == nil {
		return nil
	}
	return &entity.DriveSyncState{
		Id:             s.Id,
		DataSourceId:   s.DataSourceId,
		RootFolderId:   s.RootFolderId,
		StartPageToken: s.StartPageToken,
		BootstrappedAt: s.BootstrappedAt,
		LastSynced:     s.LastSynced,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (m *SyncStateMapper) DriveToModel(s *entity.DriveSyncState) *model.DriveSyncState {
	if s == nil {
		return nil
	}
	return &model.DriveSyncState{
		Id:             s.Id,
		DataSourceId:   s.DataSourceId,
		RootFolderId:   s.RootFolderId,
		StartPageToken: s.StartPageToken,
		BootstrappedAt: s.BootstrappedAt,
		LastSynced:     s.LastSynced,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (m *SyncStateMapper) SnapshotToEntity(s *model.DriveFileSnapshot) *entity.DriveFileSnapshot {
	if s == nil {
		return nil
	}
	return &entity.DriveFileSnapshot{
		Id:           s.Id,
		DataSourceId: s.DataSourceId,
		FileId:       s.FileId,
		Name:         s.Name,
		MimeType:     s.MimeType,
		Md5Checksum:  s.Md5Checksum,
		Version:      s.Version,
		ModifiedTime: s.ModifiedTime,
		WebViewLink:  s.WebViewLink,
		LastSynced:   s.LastSynced,
	}
}

func (m *SyncStateMapper) SnapshotToModel(s *entity.DriveFileSnapshot) *model.DriveFileSnapshot {
	if s == nil {
		return nil
	}
	return &model.DriveFileSnapshot{
		Id:           s.Id,
		DataSourceId: s.DataSourceId,
		FileId:       s.FileId,
		Name:         s.Name,
		MimeType:     s.MimeType,
		Md5Checksum:  s.Md5Checksum,
		Version:      s.Version,
		ModifiedTime: s.ModifiedTime,
		WebViewLink:  s.WebViewLink,
		LastSynced:   s.LastSynced,
	}
}
