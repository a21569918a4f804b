package blogservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/sushihentaime/blogcontent/internal/common"
)

func (m *BlogModel) insertTerm(ctx context.Context, k termKind, name string) (*Category, error) {
	query := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id`, k.table)

	term := Category{Name: name}

	err := m.db.QueryRowContext(ctx, query, name).Scan(&term.ID)
	if err != nil {
		switch {
		case common.UniqueViolation(err, k.table+"_name_key"):
			return nil, common.NewValidationError("name", fmt.Sprintf("a %s with this name already exists", k.name))
		default:
			return nil, err
		}
	}

	return &term, nil
}

func (m *BlogModel) listTerms(ctx context.Context, k termKind) ([]Category, error) {
	query := fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name`, k.table)

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := []Category{}
	for rows.Next() {
		var term Category
		if err := rows.Scan(&term.ID, &term.Name); err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return terms, nil
}

// CreateCategory creates a category. Names are unique.
func (s *BlogService) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)

	v := common.NewValidator()
	validateTermName(v, name)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.insertTerm(ctx, categoryKind, name)
}

// ListCategories returns all categories ordered by name.
func (s *BlogService) ListCategories(ctx context.Context) ([]Category, error) {
	return s.m.listTerms(ctx, categoryKind)
}

// CreateTag creates a tag. Names are unique.
func (s *BlogService) CreateTag(ctx context.Context, name string) (*Tag, error) {
	name = strings.TrimSpace(name)

	v := common.NewValidator()
	validateTermName(v, name)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	term, err := s.m.insertTerm(ctx, tagKind, name)
	if err != nil {
		return nil, err
	}

	tag := Tag(*term)
	return &tag, nil
}

// ListTags returns all tags ordered by name.
func (s *BlogService) ListTags(ctx context.Context) ([]Tag, error) {
	terms, err := s.m.listTerms(ctx, tagKind)
	if err != nil {
		return nil, err
	}

	return toTags(terms), nil
}
