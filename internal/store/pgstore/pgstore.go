// Package pgstore is the production ResourceService, backed by PostgreSQL
// via GORM, grounded on db/postgres.go's connection/migration pattern and
// db/repository/postgres.go's repository-over-gorm shape.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/trellis-ldp/ldpcore/pkg/ldp/apierror"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/model"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/rdf"
)

// resourceRow is the current-state row for one internal identifier.
type resourceRow struct {
	gorm.Model
	InternalID        string `gorm:"uniqueIndex;size:1024"`
	ParentID          string `gorm:"index;size:1024"`
	InteractionModel  string
	Types             string // JSON array of type IRIs
	Inbox             string
	AnnotationService string
	HasACL            bool
	BinaryID          string
	BinaryMimeType    string
	BinarySize        int64
	ModifiedAt        time.Time
}

// quadRow is one RDF quad belonging to a resourceRow's named graph, stored
// as flat columns rather than a serialized blob so per-graph SELECTs don't
// need to deserialize the whole resource.
type quadRow struct {
	gorm.Model
	InternalID    string `gorm:"index;size:1024"`
	GraphIRI      string `gorm:"index;size:256"`
	SubjectKind   int
	SubjectValue  string
	PredicateIRI  string
	ObjectKind    int
	ObjectValue   string
	ObjectDatatype string
	ObjectLang    string
	VersionAt     time.Time `gorm:"index"` // the resourceHistoryRow this quad belongs to
}

// resourceHistoryRow captures one past version of a resource for memento
// retrieval; quadRow rows are shared with history via VersionAt matching.
type resourceHistoryRow struct {
	gorm.Model
	InternalID       string `gorm:"index;size:1024"`
	InteractionModel string
	Types            string
	HasACL           bool
	CapturedAt       time.Time `gorm:"index"`
}

// Store is the services.ResourceService implementation over Postgres.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and runs AutoMigrate for the store's tables,
// mirroring db.PGInfo/db.PGMigrations's connect-then-migrate sequence.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, apierror.Internal(err, "failed to connect to postgres")
	}
	if err := db.AutoMigrate(&resourceRow{}, &quadRow{}, &resourceHistoryRow{}); err != nil {
		return nil, apierror.Internal(err, "failed to migrate postgres schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, internalID string, datetime time.Time) (*model.Resource, error) {
	if datetime.IsZero() {
		var row resourceRow
		if err := s.db.WithContext(ctx).Where("internal_id = ?", internalID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("no such resource: %s", internalID)
			}
			return nil, apierror.Internal(err, "failed to load resource %s", internalID)
		}
		return rowToResource(&row), nil
	}

	var hist resourceHistoryRow
	err := s.db.WithContext(ctx).
		Where("internal_id = ? AND captured_at <= ?", internalID, datetime).
		Order("captured_at DESC").
		First(&hist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("no memento of %s at or before %s", internalID, datetime)
		}
		return nil, apierror.Internal(err, "failed to load memento of %s", internalID)
	}
	return historyToResource(&hist), nil
}

func (s *Store) Quads(ctx context.Context, internalID string, graphs []string) ([]rdf.Quad, error) {
	var rows []quadRow
	q := s.db.WithContext(ctx).Where("internal_id = ? AND version_at = ?", internalID, time.Time{})
	if len(graphs) == 0 {
		graphs = []string{model.PreferUserManaged}
	}
	q = q.Where("graph_iri IN ?", graphs)
	if err := q.Find(&rows).Error; err != nil {
		return nil, apierror.Internal(err, "failed to load quads for %s", internalID)
	}
	out := make([]rdf.Quad, len(rows))
	for i, r := range rows {
		out[i] = quadRowToQuad(r)
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, internalID, parentID string, res *model.Resource, quads []rdf.Quad) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := resourceToRow(internalID, parentID, res)
		if err != nil {
			return err
		}
		var existing resourceRow
		if err := tx.Where("internal_id = ?", internalID).First(&existing).Error; err == nil {
			return apierror.Conflict("resource already exists: %s", internalID)
		}
		if err := tx.Create(row).Error; err != nil {
			return apierror.Internal(err, "failed to create resource %s", internalID)
		}
		return insertQuadsAndHistory(tx, internalID, res, quads)
	})
}

func (s *Store) Replace(ctx context.Context, internalID string, res *model.Resource, quads []rdf.Quad) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := resourceToRow(internalID, "", res)
		if err != nil {
			return err
		}
		result := tx.Model(&resourceRow{}).
			Where("internal_id = ?", internalID).
			Updates(map[string]any{
				"interaction_model":  row.InteractionModel,
				"types":              row.Types,
				"inbox":              row.Inbox,
				"annotation_service": row.AnnotationService,
				"has_acl":            row.HasACL,
				"binary_id":          row.BinaryID,
				"binary_mime_type":   row.BinaryMimeType,
				"binary_size":        row.BinarySize,
				"modified_at":        row.ModifiedAt,
			})
		if result.Error != nil {
			return apierror.Internal(result.Error, "failed to replace resource %s", internalID)
		}
		if result.RowsAffected == 0 {
			return apierror.NotFound("no such resource: %s", internalID)
		}
		if err := tx.Where("internal_id = ?", internalID).Delete(&quadRow{}, "version_at = ?", time.Time{}).Error; err != nil {
			return apierror.Internal(err, "failed to clear current quads for %s", internalID)
		}
		return insertQuadsAndHistory(tx, internalID, res, quads)
	})
}

func (s *Store) Delete(ctx context.Context, internalID string, recursive bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row resourceRow
		if err := tx.Where("internal_id = ?", internalID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("no such resource: %s", internalID)
			}
			return apierror.Internal(err, "failed to load resource %s", internalID)
		}
		if recursive {
			var children []resourceRow
			if err := tx.Where("parent_id = ?", internalID).Find(&children).Error; err != nil {
				return apierror.Internal(err, "failed to list children of %s", internalID)
			}
			for _, c := range children {
				if err := tx.Where("internal_id = ?", c.InternalID).Delete(&resourceRow{}).Error; err != nil {
					return apierror.Internal(err, "failed to delete child %s", c.InternalID)
				}
			}
		}
		types, err := appendType(row.Types, model.DeletedResourceType)
		if err != nil {
			return err
		}
		return tx.Model(&row).Update("types", types).Error
	})
}

func (s *Store) Children(ctx context.Context, internalID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&resourceRow{}).
		Where("parent_id = ?", internalID).
		Order("internal_id ASC").
		Pluck("internal_id", &ids).Error
	if err != nil {
		return nil, apierror.Internal(err, "failed to list children of %s", internalID)
	}
	return ids, nil
}

func (s *Store) Mementos(ctx context.Context, internalID string) ([]model.VersionRange, error) {
	var rows []resourceHistoryRow
	if err := s.db.WithContext(ctx).Where("internal_id = ?", internalID).Order("captured_at ASC").Find(&rows).Error; err != nil {
		return nil, apierror.Internal(err, "failed to load mementos for %s", internalID)
	}
	out := make([]model.VersionRange, len(rows))
	for i, r := range rows {
		until := time.Now()
		if i+1 < len(rows) {
			until = rows[i+1].CapturedAt
		}
		out[i] = model.VersionRange{From: r.CapturedAt, Until: until}
	}
	return out, nil
}

func insertQuadsAndHistory(tx *gorm.DB, internalID string, res *model.Resource, quads []rdf.Quad) error {
	rows := make([]quadRow, len(quads))
	for i, q := range quads {
		rows[i] = quadToQuadRow(internalID, q, time.Time{})
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			return apierror.Internal(err, "failed to store quads for %s", internalID)
		}
	}
	hasACL := false
	for _, q := range quads {
		if q.Graph.Value == model.PreferAccessControl {
			hasACL = true
			break
		}
	}
	if err := tx.Model(&resourceRow{}).Where("internal_id = ?", internalID).Update("has_acl", hasACL).Error; err != nil {
		return apierror.Internal(err, "failed to record ACL flag for %s", internalID)
	}
	types, err := json.Marshal(res.Types)
	if err != nil {
		return apierror.Internal(err, "failed to marshal types for %s", internalID)
	}
	hist := resourceHistoryRow{
		InternalID:       internalID,
		InteractionModel: res.InteractionModel,
		Types:            string(types),
		HasACL:           hasACL,
		CapturedAt:       res.Modified,
	}
	if err := tx.Create(&hist).Error; err != nil {
		return apierror.Internal(err, "failed to record memento for %s", internalID)
	}
	historyRows := make([]quadRow, len(quads))
	for i, q := range quads {
		historyRows[i] = quadToQuadRow(internalID, q, res.Modified)
	}
	if len(historyRows) > 0 {
		if err := tx.Create(&historyRows).Error; err != nil {
			return apierror.Internal(err, "failed to archive quads for %s", internalID)
		}
	}
	return nil
}

func appendType(typesJSON, newType string) (string, error) {
	var types []string
	if typesJSON != "" {
		if err := json.Unmarshal([]byte(typesJSON), &types); err != nil {
			return "", apierror.Internal(err, "corrupt types column")
		}
	}
	types = append(types, newType)
	out, err := json.Marshal(types)
	if err != nil {
		return "", apierror.Internal(err, "failed to marshal types")
	}
	return string(out), nil
}

func resourceToRow(internalID, parentID string, res *model.Resource) (*resourceRow, error) {
	types, err := json.Marshal(res.Types)
	if err != nil {
		return nil, apierror.Internal(err, "failed to marshal types for %s", internalID)
	}
	row := &resourceRow{
		InternalID:        internalID,
		ParentID:          parentID,
		InteractionModel:  res.InteractionModel,
		Types:             string(types),
		Inbox:             res.Inbox,
		AnnotationService: res.AnnotationService,
		HasACL:            res.HasACL,
		ModifiedAt:        res.Modified,
	}
	if res.Binary != nil {
		row.BinaryID = res.Binary.Identifier
		row.BinaryMimeType = res.Binary.MimeType
		row.BinarySize = res.Binary.Size
	}
	return row, nil
}

func rowToResource(row *resourceRow) *model.Resource {
	var types []string
	_ = json.Unmarshal([]byte(row.Types), &types)
	res := &model.Resource{
		Identifier:        row.InternalID,
		InteractionModel:  row.InteractionModel,
		Modified:          row.ModifiedAt,
		Types:             types,
		Inbox:             row.Inbox,
		AnnotationService: row.AnnotationService,
		HasACL:            row.HasACL,
	}
	if row.BinaryID != "" {
		res.Binary = &model.Binary{
			Identifier: row.BinaryID,
			MimeType:   row.BinaryMimeType,
			Size:       row.BinarySize,
			Modified:   row.ModifiedAt,
		}
	}
	return res
}

func historyToResource(row *resourceHistoryRow) *model.Resource {
	var types []string
	_ = json.Unmarshal([]byte(row.Types), &types)
	return &model.Resource{
		Identifier:       row.InternalID,
		InteractionModel: row.InteractionModel,
		Modified:         row.CapturedAt,
		Types:            types,
		HasACL:           row.HasACL,
	}
}

func quadToQuadRow(internalID string, q rdf.Quad, versionAt time.Time) quadRow {
	return quadRow{
		InternalID:     internalID,
		GraphIRI:       q.Graph.Value,
		SubjectKind:    int(q.Subject.Kind),
		SubjectValue:   q.Subject.Value,
		PredicateIRI:   q.Predicate.Value,
		ObjectKind:     int(q.Object.Kind),
		ObjectValue:    q.Object.Value,
		ObjectDatatype: q.Object.Datatype,
		ObjectLang:     q.Object.Lang,
		VersionAt:      versionAt,
	}
}

func quadRowToQuad(r quadRow) rdf.Quad {
	return rdf.Quad{
		Subject:   rdf.Term{Kind: rdf.TermKind(r.SubjectKind), Value: r.SubjectValue},
		Predicate: rdf.NewIRI(r.PredicateIRI),
		Object:    rdf.Term{Kind: rdf.TermKind(r.ObjectKind), Value: r.ObjectValue, Datatype: r.ObjectDatatype, Lang: r.ObjectLang},
		Graph:     rdf.NewIRI(r.GraphIRI),
	}
}
