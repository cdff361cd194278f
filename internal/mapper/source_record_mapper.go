package mapper

import (
	"arcana-be/internal/entity"
	"arcana-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type SourceRecordMapper struct{}

func NewSourceRecordMapper() *SourceRecordMapper {
	return &SourceRecordMapper{}
}

func (m *SourceRecordMapper) ToEntity(r *model.SourceRecord) *entity.SourceRecord {
	if r == nil {
		return nil
	}

	return &entity.SourceRecord{
		Id:               r.Id,
		WorkspaceId:      r.WorkspaceId,
		SourceType:       r.SourceType,
		SourceId:         r.SourceId,
		ChunkOrd:         r.ChunkOrd,
		Text:             r.Text,
		Title:            r.Title,
		URL:              r.URL,
		BlockTypes:       r.BlockTypes,
		BlockMarkers:     r.BlockMarkers,
		BlockDepths:      r.BlockDepths,
		BlockStarts:      r.BlockStarts,
		StructuredFormat: r.StructuredFormat,
		StructuredText:   r.StructuredText,
		FilePath:         r.FilePath,
		Embedding:        r.Embedding.Slice(),
		IngestedAt:       r.IngestedAt,
	}
}

func (m *SourceRecordMapper) ToModel(r *entity.SourceRecord) *model.SourceRecord {
	if r == nil {
		return nil
	}

	return &model.SourceRecord{
		Id:               r.Id,
		WorkspaceId:      r.WorkspaceId,
		SourceType:       r.SourceType,
		SourceId:         r.SourceId,
		ChunkOrd:         r.ChunkOrd,
		Text:             r.Text,
		Title:            r.Title,
		URL:              r.URL,
		BlockTypes:       r.BlockTypes,
		BlockMarkers:     r.BlockMarkers,
		BlockDepths:      r.BlockDepths,
		BlockStarts:      r.BlockStarts,
		StructuredFormat: r.StructuredFormat,
		StructuredText:   r.StructuredText,
		FilePath:         r.FilePath,
		Embedding:        pgvector.NewVector(r.Embedding),
		IngestedAt:       r.IngestedAt,
	}
}

func (m *SourceRecordMapper) ToEntities(records []*model.SourceRecord) []*entity.SourceRecord {
	entities := make([]*entity.SourceRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

func (m *SourceRecordMapper) ToModels(records []*entity.SourceRecord) []*model.SourceRecord {
	models := make([]*model.SourceRecord, len(records))
	for i, r := range records {
		models[i] = m.ToModel(r)
	}
	return models
}
