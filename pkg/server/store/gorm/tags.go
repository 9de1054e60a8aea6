package gorm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/metastore/pkg/model"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// TagObjects tags every object in objects with (project, tag). Objects are
// validated and loaded inside the transaction, so a single unknown kind or
// missing id leaves every tag untouched.
func (s *TagStore) TagObjects(ctx context.Context, objects []store.ObjectRef, project, tag string) error {
	if err := validTagName(tag); err != nil {
		return err
	}
	project = s.project(project)

	idsByKind := make(map[string][]int64)
	for _, obj := range objects {
		if _, err := s.kind(obj.Kind); err != nil {
			return err
		}
		if obj.ID <= 0 {
			return fmt.Errorf("%w: %s object id %d", store.ErrInvalidArgument, obj.Kind, obj.ID)
		}
		idsByKind[obj.Kind] = append(idsByKind[obj.Kind], obj.ID)
	}
	if len(idsByKind) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range s.kinds.All() {
			ids, ok := idsByKind[kind.Name]
			if !ok {
				continue
			}
			if err := tagKindObjects(tx, kind, ids, project, tag); err != nil {
				return err
			}
		}
		return nil
	})
}

func tagKindObjects(tx *gorm.DB, kind model.Kind, ids []int64, project, tag string) error {
	type objectRow struct {
		ID   int64  `gorm:"column:id"`
		Key  string `gorm:"column:key"`
		Iter int    `gorm:"column:iter"`
	}

	var rows []objectRow
	err := tx.Raw(fmt.Sprintf(`SELECT id, key, iter FROM %s WHERE id IN ? ORDER BY id`, kind.Table), ids).Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("load %s objects: %w", kind.Name, err)
	}

	found := make(map[int64]objectRow, len(rows))
	for _, row := range rows {
		found[row.ID] = row
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: %s object %d", store.ErrNotFound, kind.Name, id)
		}
	}

	for _, row := range rows {
		err := upsertTag(tx, kind, model.Tag{
			Project: project,
			Name:    tag,
			ObjID:   row.ID,
			ObjKey:  row.Key,
			ObjIter: row.Iter,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// DelTag removes (project, tag) from every kind
func (s *TagStore) DelTag(ctx context.Context, project, tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: tag is required", store.ErrInvalidArgument)
	}
	project = s.project(project)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range s.kinds.All() {
			err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE project = ? AND name = ?`, kind.TagTable), project, tag).Error
			if err != nil {
				return fmt.Errorf("delete tag %q from %s: %w", tag, kind.Name, err)
			}
		}
		return nil
	})
}

// FindTagged returns every object of any kind carrying (project, tag).
// Kinds are queried concurrently and returned in declaration order.
func (s *TagStore) FindTagged(ctx context.Context, project, tag string) ([]store.Record, error) {
	if tag == "" {
		return nil, fmt.Errorf("%w: tag is required", store.ErrInvalidArgument)
	}
	project = s.project(project)

	kinds := s.kinds.All()
	results := make([][]store.Record, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			var rows []versionRow
			err := s.db.WithContext(gctx).Raw(fmt.Sprintf(`
				SELECT %s, t.name AS tag FROM %s t
				JOIN %s v ON v.id = t.obj_id
				WHERE t.project = ? AND t.name = ?
				ORDER BY v.updated DESC, v.id DESC
			`, versionColumns, kind.TagTable, kind.Table), project, tag).Scan(&rows).Error
			if err != nil {
				return fmt.Errorf("find %s tagged %q: %w", kind.Name, tag, err)
			}
			records, err := toRecords(kind, rows)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]store.Record, 0)
	for _, r := range results {
		records = append(records, r...)
	}
	return records, nil
}

// ListTags returns the distinct tag names used in project across all kinds
func (s *TagStore) ListTags(ctx context.Context, project string) ([]string, error) {
	project = s.project(project)

	kinds := s.kinds.All()
	selects := make([]string, 0, len(kinds))
	args := make([]interface{}, 0, len(kinds))
	for _, kind := range kinds {
		selects = append(selects, fmt.Sprintf(`SELECT name FROM %s WHERE project = ?`, kind.TagTable))
		args = append(args, project)
	}

	var names []string
	err := s.db.WithContext(ctx).Raw(strings.Join(selects, " UNION ")+` ORDER BY name`, args...).Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	sort.Strings(names)
	return names, nil
}

// ListTagRefs returns the distinct (project, key, tag) triples of one kind
func (s *TagStore) ListTagRefs(ctx context.Context, kindName, project string) ([]store.TagRef, error) {
	kind, err := s.kind(kindName)
	if err != nil {
		return nil, err
	}
	project = s.project(project)

	type tagRefRow struct {
		Project string `gorm:"column:project"`
		ObjKey  string `gorm:"column:obj_key"`
		Name    string `gorm:"column:name"`
	}

	var rows []tagRefRow
	err = s.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT DISTINCT project, obj_key, name FROM %s
		WHERE project = ?
		ORDER BY obj_key, name
	`, kind.TagTable), project).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s tag refs: %w", kind.Name, err)
	}

	refs := make([]store.TagRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, store.TagRef{Project: row.Project, Key: row.ObjKey, Tag: row.Name})
	}
	return refs, nil
}
