package gorm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/metastore/pkg/model"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// DefaultProject is used when an operation names no project
const DefaultProject = "default"

// Ensure TagStore implements store.TagStore
var _ store.TagStore = (*TagStore)(nil)

// TagStore implements store.TagStore using GORM. Every kind it serves must
// be declared up front; tables are never derived from request input.
type TagStore struct {
	db             *gorm.DB
	kinds          *model.Kinds
	now            func() time.Time
	defaultProject string
}

// TagStoreOption configures a TagStore
type TagStoreOption func(*TagStore)

// WithClock overrides the clock used for versions stored without an
// explicit update time
func WithClock(now func() time.Time) TagStoreOption {
	return func(s *TagStore) {
		s.now = now
	}
}

// WithDefaultProject overrides the project used when none is given
func WithDefaultProject(project string) TagStoreOption {
	return func(s *TagStore) {
		s.defaultProject = project
	}
}

// NewTagStore creates a new TagStore serving the given kinds
func NewTagStore(db *gorm.DB, kinds []model.Kind, opts ...TagStoreOption) (*TagStore, error) {
	registry, err := model.NewKinds(kinds)
	if err != nil {
		return nil, err
	}
	s := &TagStore{
		db:             db,
		kinds:          registry,
		now:            time.Now,
		defaultProject: DefaultProject,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Kinds returns the names of the registered kinds
func (s *TagStore) Kinds() []string {
	return s.kinds.Names()
}

// versionRow is the scan target for version queries. Tag is empty unless
// the query joined a tag table.
type versionRow struct {
	model.Version
	Tag string `gorm:"column:tag"`
}

const versionColumns = `v.id, v.project, v.key, v.uid, v.iter, v.body, v.updated`

func (s *TagStore) kind(name string) (model.Kind, error) {
	kind, ok := s.kinds.Lookup(name)
	if !ok {
		return model.Kind{}, fmt.Errorf("%w: %q", store.ErrUnknownKind, name)
	}
	return kind, nil
}

func (s *TagStore) project(project string) string {
	if project == "" {
		return s.defaultProject
	}
	return project
}

// validTagName rejects the pseudo-tags, which are never stored
func validTagName(tag string) error {
	switch tag {
	case "":
		return fmt.Errorf("%w: tag is required", store.ErrInvalidArgument)
	case store.LatestTag, store.AnyTag:
		return fmt.Errorf("%w: %q is a reserved tag", store.ErrInvalidArgument, tag)
	}
	return nil
}

// StoreVersion inserts or replaces the version (project, key, uid, iter)
// and, when opts.Tag is set, points the tag at it in the same transaction.
func (s *TagStore) StoreVersion(ctx context.Context, kindName, key, uid string, body map[string]any, opts store.StoreOptions) (*store.Record, error) {
	kind, err := s.kind(kindName)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", store.ErrInvalidArgument)
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", store.ErrInvalidArgument)
	}
	if opts.Iter < 0 {
		return nil, fmt.Errorf("%w: iter must not be negative", store.ErrInvalidArgument)
	}
	if opts.Tag != "" {
		if err := validTagName(opts.Tag); err != nil {
			return nil, err
		}
	}
	if body == nil {
		body = map[string]any{}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", store.ErrInvalidArgument, err)
	}

	project := s.project(opts.Project)
	updated := opts.Updated
	if updated.IsZero() {
		updated = s.now()
	}
	updated = updated.UTC()

	var row versionRow
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(fmt.Sprintf(`
			INSERT INTO %s (project, key, uid, iter, body, updated)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (project, key, uid, iter) DO UPDATE SET body = excluded.body, updated = excluded.updated
		`, kind.Table), project, key, uid, opts.Iter, datatypes.JSON(raw), updated).Error
		if err != nil {
			return fmt.Errorf("store %s %s/%s: %w", kind.Name, project, key, err)
		}

		result := tx.Raw(fmt.Sprintf(`
			SELECT %s FROM %s v
			WHERE v.project = ? AND v.key = ? AND v.uid = ? AND v.iter = ?
		`, versionColumns, kind.Table), project, key, uid, opts.Iter).Scan(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("stored %s %s/%s not found", kind.Name, project, key)
		}

		if opts.Tag == "" {
			return nil
		}
		row.Tag = opts.Tag
		return upsertTag(tx, kind, model.Tag{
			Project: project,
			Name:    opts.Tag,
			ObjID:   row.ID,
			ObjKey:  row.Key,
			ObjIter: row.Iter,
		})
	})
	if err != nil {
		return nil, err
	}
	return toRecord(kind, row)
}

// upsertTag points (project, name, obj_key, obj_iter) at tag.ObjID,
// replacing whichever version it pointed at before.
func upsertTag(tx *gorm.DB, kind model.Kind, tag model.Tag) error {
	err := tx.Table(kind.TagTable).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "project"}, {Name: "name"}, {Name: "obj_key"}, {Name: "obj_iter"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"obj_id"}),
	}).Create(&tag).Error
	if err != nil {
		return fmt.Errorf("tag %s %s/%s as %q: %w", kind.Name, tag.Project, tag.ObjKey, tag.Name, err)
	}
	return nil
}

// Read resolves one version of key. A uid wins over a tag; a tag with no
// mapping is retried as a uid; with neither the newest version is returned.
func (s *TagStore) Read(ctx context.Context, kindName, key string, opts store.ReadOptions) (*store.Record, error) {
	kind, err := s.kind(kindName)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", store.ErrInvalidArgument)
	}
	project := s.project(opts.Project)

	var row versionRow
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch {
		case opts.UID != "":
			row, err = readByUID(tx, kind, project, key, opts.UID, opts.Iter)
		case opts.Tag != "" && opts.Tag != store.LatestTag:
			row, err = readByTag(tx, kind, project, key, opts.Tag, opts.Iter)
			if errors.Is(err, errNoRow) {
				row, err = readByUID(tx, kind, project, key, opts.Tag, opts.Iter)
			}
		default:
			row, err = readLatest(tx, kind, project, key, opts.Iter)
		}
		return err
	})
	if errors.Is(err, errNoRow) {
		return nil, fmt.Errorf("%w: %s %s/%s", store.ErrNotFound, kind.Name, project, key)
	}
	if err != nil {
		return nil, err
	}
	return toRecord(kind, row)
}

var errNoRow = errors.New("no row")

func scanOne(tx *gorm.DB, query string, args ...interface{}) (versionRow, error) {
	var rows []versionRow
	if err := tx.Raw(query, args...).Scan(&rows).Error; err != nil {
		return versionRow{}, err
	}
	if len(rows) == 0 {
		return versionRow{}, errNoRow
	}
	return rows[0], nil
}

func readByUID(tx *gorm.DB, kind model.Kind, project, key, uid string, iter *int) (versionRow, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s v WHERE v.project = ? AND v.key = ? AND v.uid = ?`, versionColumns, kind.Table)
	args := []interface{}{project, key, uid}
	if iter != nil {
		query += ` AND v.iter = ?`
		args = append(args, *iter)
	}
	query += ` ORDER BY v.updated DESC, v.id DESC LIMIT 1`
	return scanOne(tx, query, args...)
}

func readByTag(tx *gorm.DB, kind model.Kind, project, key, tag string, iter *int) (versionRow, error) {
	query := fmt.Sprintf(`
		SELECT %s, t.name AS tag FROM %s t
		JOIN %s v ON v.id = t.obj_id
		WHERE t.project = ? AND t.name = ? AND t.obj_key = ? AND v.project = ?`, versionColumns, kind.TagTable, kind.Table)
	args := []interface{}{project, tag, key, project}
	if iter != nil {
		query += ` AND t.obj_iter = ?`
		args = append(args, *iter)
	}
	query += ` ORDER BY v.updated DESC, v.id DESC LIMIT 1`
	return scanOne(tx, query, args...)
}

func readLatest(tx *gorm.DB, kind model.Kind, project, key string, iter *int) (versionRow, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s v WHERE v.project = ? AND v.key = ?`, versionColumns, kind.Table)
	args := []interface{}{project, key}
	if iter != nil {
		query += ` AND v.iter = ?`
		args = append(args, *iter)
	}
	query += ` ORDER BY v.updated DESC, v.id DESC LIMIT 1`
	return scanOne(tx, query, args...)
}

// List returns the versions of a kind matching filter, ordered by update
// time then id (both descending) then tag. An empty result is not an error.
func (s *TagStore) List(ctx context.Context, kindName string, filter store.ListFilter) ([]store.Record, error) {
	kind, err := s.kind(kindName)
	if err != nil {
		return nil, err
	}
	project := s.project(filter.Project)

	var (
		query string
		args  []interface{}
	)
	switch filter.Tag {
	case "", store.LatestTag:
		query = fmt.Sprintf(`SELECT %s, '' AS tag FROM %s v`, versionColumns, kind.Table)
	case store.AnyTag:
		join := "JOIN"
		if filter.IncludeUntagged {
			join = "LEFT JOIN"
		}
		query = fmt.Sprintf(`SELECT %s, COALESCE(t.name, '') AS tag FROM %s v %s %s t ON t.obj_id = v.id AND t.project = ?`,
			versionColumns, kind.Table, join, kind.TagTable)
		args = append(args, project)
	default:
		query = fmt.Sprintf(`SELECT %s, t.name AS tag FROM %s v JOIN %s t ON t.obj_id = v.id AND t.project = ? AND t.name = ?`,
			versionColumns, kind.Table, kind.TagTable)
		args = append(args, project, filter.Tag)
	}

	conds := []string{"v.project = ?"}
	args = append(args, project)
	if filter.Key != "" {
		conds = append(conds, "v.key = ?")
		args = append(args, filter.Key)
	}
	if filter.Tag == store.LatestTag {
		conds = append(conds, fmt.Sprintf(`NOT EXISTS (
			SELECT 1 FROM %s n
			WHERE n.project = v.project AND n.key = v.key
			AND (n.updated > v.updated OR (n.updated = v.updated AND n.id > v.id)))`, kind.Table))
	}
	if filter.Since != nil {
		conds = append(conds, "v.updated >= ?")
		args = append(args, filter.Since.UTC())
	}
	if filter.Until != nil {
		conds = append(conds, "v.updated <= ?")
		args = append(args, filter.Until.UTC())
	}
	query += ` WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY v.updated DESC, v.id DESC, tag ASC`

	var rows []versionRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Name, err)
	}
	return toRecords(kind, rows)
}

// DeleteVersions deletes every version of key along with their tags
func (s *TagStore) DeleteVersions(ctx context.Context, kindName, project, key string) (int64, error) {
	kind, err := s.kind(kindName)
	if err != nil {
		return 0, err
	}
	if key == "" {
		return 0, fmt.Errorf("%w: key is required", store.ErrInvalidArgument)
	}
	project = s.project(project)

	var deleted int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(fmt.Sprintf(`
			DELETE FROM %s WHERE obj_id IN (SELECT id FROM %s WHERE project = ? AND key = ?)
		`, kind.TagTable, kind.Table), project, key).Error
		if err != nil {
			return err
		}
		result := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE project = ? AND key = ?`, kind.Table), project, key)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete %s %s/%s: %w", kind.Name, project, key, err)
	}
	return deleted, nil
}

func toRecord(kind model.Kind, row versionRow) (*store.Record, error) {
	body := map[string]any{}
	if len(row.Body) > 0 {
		if err := json.Unmarshal(row.Body, &body); err != nil {
			return nil, fmt.Errorf("decode %s %d: %w", kind.Name, row.ID, err)
		}
		if body == nil {
			body = map[string]any{}
		}
	}
	return &store.Record{
		ID:      row.ID,
		Kind:    kind.Name,
		Project: row.Project,
		Key:     row.Key,
		UID:     row.UID,
		Iter:    row.Iter,
		Tag:     row.Tag,
		Updated: row.Updated.UTC(),
		Body:    body,
	}, nil
}

func toRecords(kind model.Kind, rows []versionRow) ([]store.Record, error) {
	records := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(kind, row)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}
