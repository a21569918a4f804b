package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sushihentaime/blogcontent/internal/common"
)

var (
	ErrAuthorForeignKey = errors.New("author does not exist")
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// termKind describes one of the two many-to-many taxonomies attached to a blog.
type termKind struct {
	table      string
	joinTable  string
	column     string
	field      string
	name       string
	constraint string
}

var (
	categoryKind = termKind{
		table:      "categories",
		joinTable:  "blog_categories",
		column:     "category_id",
		field:      "categories",
		name:       "category",
		constraint: "blog_categories_category_id_fkey",
	}
	tagKind = termKind{
		table:      "tags",
		joinTable:  "blog_tags",
		column:     "tag_id",
		field:      "tags",
		name:       "tag",
		constraint: "blog_tags_tag_id_fkey",
	}
)

const blogColumns = `id, title, content, author_id, image_url, created_at, updated_at, version`

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

func scanBlog(row interface{ Scan(...any) error }) (*Blog, error) {
	var (
		blog     Blog
		imageURL sql.NullString
	)

	err := row.Scan(&blog.ID, &blog.Title, &blog.Content, &blog.Author, &imageURL, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		return nil, err
	}

	if imageURL.Valid {
		blog.ImageURL = &imageURL.String
	}
	blog.Categories = []Category{}
	blog.Tags = []Tag{}
	blog.Likes = []Like{}
	blog.Comments = []Comment{}

	return &blog, nil
}

func nullString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// dedupeIDs drops repeated ids, keeping the first occurrence.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// link resolves ids against the taxonomy table and attaches them to the blog in the given order.
// Any id that does not resolve fails the whole call with a ValidationError.
func (k termKind) link(ctx context.Context, tx *sql.Tx, blogID uuid.UUID, ids []int64) ([]Category, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return []Category{}, nil
	}

	query := fmt.Sprintf(`SELECT id, name FROM %s WHERE id = ANY($1)`, k.table)

	rows, err := tx.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int64]string, len(ids))
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	var missing []string
	terms := make([]Category, 0, len(ids))
	for _, id := range ids {
		name, ok := names[id]
		if !ok {
			missing = append(missing, strconv.FormatInt(id, 10))
			continue
		}
		terms = append(terms, Category{ID: id, Name: name})
	}
	if len(missing) > 0 {
		return nil, common.NewValidationError(k.field, fmt.Sprintf("unknown %s id(s): %s", k.name, strings.Join(missing, ", ")))
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (blog_id, %s, position)
		SELECT $1::uuid, t.id, t.ord
		FROM unnest($2::bigint[]) WITH ORDINALITY AS t(id, ord)`, k.joinTable, k.column)

	_, err = tx.ExecContext(ctx, insert, blogID, pq.Array(ids))
	if err != nil {
		switch {
		case common.ForeignKeyError(err, k.constraint):
			// the term was deleted between the lookup and the insert
			return nil, common.NewValidationError(k.field, fmt.Sprintf("unknown %s id(s)", k.name))
		default:
			return nil, err
		}
	}

	return terms, nil
}

func (k termKind) unlink(ctx context.Context, tx *sql.Tx, blogID uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE blog_id = $1`, k.joinTable)
	_, err := tx.ExecContext(ctx, query, blogID)
	return err
}

func toTags(terms []Category) []Tag {
	tags := make([]Tag, len(terms))
	for i, t := range terms {
		tags[i] = Tag(t)
	}
	return tags
}

// insert creates a blog and its category/tag links in one transaction.
func (m *BlogModel) insert(ctx context.Context, in *BlogInput) (*Blog, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	blog := &Blog{
		ID:       uuid.New(),
		Title:    in.Title,
		Content:  in.Content,
		Author:   in.Author,
		Likes:    []Like{},
		Comments: []Comment{},
	}
	if in.ImageURL != nil && *in.ImageURL != "" {
		blog.ImageURL = in.ImageURL
	}

	query := `
		INSERT INTO blogs (id, title, content, author_id, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at, version`

	err = tx.QueryRowContext(ctx, query, blog.ID, blog.Title, blog.Content, blog.Author, nullString(blog.ImageURL)).Scan(&blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case common.ForeignKeyError(err, "blogs_author_id_fkey"):
			return nil, ErrAuthorForeignKey
		default:
			return nil, err
		}
	}

	categories, err := categoryKind.link(ctx, tx, blog.ID, in.Categories)
	if err != nil {
		return nil, err
	}
	blog.Categories = categories

	tags, err := tagKind.link(ctx, tx, blog.ID, in.Tags)
	if err != nil {
		return nil, err
	}
	blog.Tags = toTags(tags)

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return blog, nil
}

func getBlog(ctx context.Context, q queryer, id uuid.UUID) (*Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs
		WHERE id = $1`

	blog, err := scanBlog(q.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	blogs := []*Blog{blog}
	if err := loadRelations(ctx, q, blogs); err != nil {
		return nil, err
	}

	return blog, nil
}

// getBlogByID returns a blog with its categories, tags, likes and comments.
func (m *BlogModel) getBlogByID(ctx context.Context, id uuid.UUID) (*Blog, error) {
	return getBlog(ctx, m.db, id)
}

// getBlogs returns one page of blogs, newest first, and the total number of blogs.
// Both reads share a snapshot so total and items agree.
func (m *BlogModel) getBlogs(ctx context.Context, limit, skip int) ([]Blog, int, error) {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var total int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + blogColumns + `
		FROM blogs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := tx.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ptrs []*Blog
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, 0, err
		}
		ptrs = append(ptrs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	if err := loadRelations(ctx, tx, ptrs); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	blogs := make([]Blog, 0, len(ptrs))
	for _, b := range ptrs {
		blogs = append(blogs, *b)
	}

	return blogs, total, nil
}

// lockForOwner locks the blog row for the rest of tx and checks that user owns it.
func lockForOwner(ctx context.Context, tx *sql.Tx, id uuid.UUID, user int64) error {
	var author int64

	err := tx.QueryRowContext(ctx, `SELECT author_id FROM blogs WHERE id = $1 FOR UPDATE`, id).Scan(&author)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return common.ErrRecordNotFound
		default:
			return err
		}
	}

	if author != user {
		return common.ErrForbidden
	}

	return nil
}

// updateBlog applies the fields present in patch. Ownership is re-checked under the row lock.
func (m *BlogModel) updateBlog(ctx context.Context, id uuid.UUID, user int64, patch *BlogPatch) (*Blog, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := lockForOwner(ctx, tx, id, user); err != nil {
		return nil, err
	}

	var (
		set  []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Author != nil {
		add("author_id", *patch.Author)
	}
	if patch.ImageURL != nil {
		add("image_url", nullString(patch.ImageURL))
	}
	set = append(set, "updated_at = clock_timestamp()", "version = version + 1")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE blogs SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		switch {
		case common.ForeignKeyError(err, "blogs_author_id_fkey"):
			return nil, ErrAuthorForeignKey
		default:
			return nil, err
		}
	}

	if patch.Categories != nil {
		if err := categoryKind.unlink(ctx, tx, id); err != nil {
			return nil, err
		}
		if _, err := categoryKind.link(ctx, tx, id, *patch.Categories); err != nil {
			return nil, err
		}
	}

	if patch.Tags != nil {
		if err := tagKind.unlink(ctx, tx, id); err != nil {
			return nil, err
		}
		if _, err := tagKind.link(ctx, tx, id, *patch.Tags); err != nil {
			return nil, err
		}
	}

	blog, err := getBlog(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return blog, nil
}

// deleteBlog removes the blog. Comments and category/tag links cascade, likes are detached.
func (m *BlogModel) deleteBlog(ctx context.Context, id uuid.UUID, user int64) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockForOwner(ctx, tx, id, user); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	}

	return tx.Commit()
}

// addLike records a like by user. It reports false when the user already liked the blog.
func (m *BlogModel) addLike(ctx context.Context, blogID uuid.UUID, user int64) (bool, error) {
	query := `
		INSERT INTO likes (blog_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT likes_blog_id_user_id_key DO NOTHING`

	res, err := m.db.ExecContext(ctx, query, blogID, user)
	if err != nil {
		switch {
		case common.ForeignKeyError(err, "likes_blog_id_fkey"):
			return false, common.ErrRecordNotFound
		default:
			return false, err
		}
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (m *BlogModel) addComment(ctx context.Context, blogID uuid.UUID, author int64, content string) (*Comment, error) {
	query := `
		INSERT INTO comments (blog_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	c := Comment{Author: author, Content: content}

	err := m.db.QueryRowContext(ctx, query, blogID, author, content).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		switch {
		case common.ForeignKeyError(err, "comments_blog_id_fkey"):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

// loadRelations fills categories, tags, likes and comments for blogs with one query per relation.
func loadRelations(ctx context.Context, q queryer, blogs []*Blog) error {
	if len(blogs) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]*Blog, len(blogs))
	ids := make([]string, 0, len(blogs))
	for _, b := range blogs {
		index[b.ID] = b
		ids = append(ids, b.ID.String())
	}

	for _, k := range []termKind{categoryKind, tagKind} {
		query := fmt.Sprintf(`
			SELECT j.blog_id, t.id, t.name
			FROM %s j
			JOIN %s t ON t.id = j.%s
			WHERE j.blog_id = ANY($1::uuid[])
			ORDER BY j.blog_id, j.position`, k.joinTable, k.table, k.column)

		err := eachRow(ctx, q, query, pq.Array(ids), func(rows *sql.Rows) error {
			var (
				blogID uuid.UUID
				term   Category
			)
			if err := rows.Scan(&blogID, &term.ID, &term.Name); err != nil {
				return err
			}
			b := index[blogID]
			if k == categoryKind {
				b.Categories = append(b.Categories, term)
			} else {
				b.Tags = append(b.Tags, Tag(term))
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	likes := `
		SELECT blog_id, id, user_id
		FROM likes
		WHERE blog_id = ANY($1::uuid[])
		ORDER BY id`

	err := eachRow(ctx, q, likes, pq.Array(ids), func(rows *sql.Rows) error {
		var (
			blogID uuid.UUID
			like   Like
		)
		if err := rows.Scan(&blogID, &like.ID, &like.User); err != nil {
			return err
		}
		index[blogID].Likes = append(index[blogID].Likes, like)
		return nil
	})
	if err != nil {
		return err
	}

	comments := `
		SELECT blog_id, id, author_id, content, created_at
		FROM comments
		WHERE blog_id = ANY($1::uuid[])
		ORDER BY created_at, id`

	return eachRow(ctx, q, comments, pq.Array(ids), func(rows *sql.Rows) error {
		var (
			blogID  uuid.UUID
			comment Comment
		)
		if err := rows.Scan(&blogID, &comment.ID, &comment.Author, &comment.Content, &comment.CreatedAt); err != nil {
			return err
		}
		index[blogID].Comments = append(index[blogID].Comments, comment)
		return nil
	})
}

func eachRow(ctx context.Context, q queryer, query string, arg any, fn func(rows *sql.Rows) error) error {
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}
