package database

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// gorm rewrites '?' into the dialect's bind variables, so Question works for every driver
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// DatasetListQuery holds the filters, ordering and paging of a dataset listing.
// Skip and Limit are expected to be clamped by the caller.
type DatasetListQuery struct {
	Skip      int
	Limit     int
	Search    string
	LabelName string
	Status    string
	SortBy    string
	SortOrder string
}

var datasetSortColumns = map[string]string{
	SortByID:         "d.id",
	SortByName:       "d.name",
	SortByCreatedAt:  "d.created_at",
	SortByImageCount: "image_count",
}

// LikeEscape is the escape character paired with ContainsPattern; it is a plain
// character in sqlite, mysql and postgres string literals.
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")

// ContainsPattern builds a lowercase LIKE pattern matching term as a literal substring.
// Use it with "LIKE ? ESCAPE '!'".
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

func (q DatasetListQuery) filters() sq.And {
	where := sq.And{}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := ContainsPattern(search)
		where = append(where, sq.Or{
			sq.Expr("LOWER(d.name) LIKE ? ESCAPE '!'", pattern),
			sq.Expr("LOWER(COALESCE(d.description, '')) LIKE ? ESCAPE '!'", pattern),
		})
	}
	if labelName := strings.TrimSpace(q.LabelName); labelName != "" {
		where = append(where, sq.Expr(
			"EXISTS (SELECT 1 FROM labels l WHERE l.dataset_id = d.id AND LOWER(l.name) LIKE ? ESCAPE '!')",
			ContainsPattern(labelName),
		))
	}
	if status := strings.TrimSpace(q.Status); status != "" {
		where = append(where, sq.Eq{"d.status": status})
	}
	return where
}

// CountSQL builds the query returning the number of datasets matching the filters
func (q DatasetListQuery) CountSQL() (string, []interface{}, error) {
	builder := psql.Select("COUNT(*)").From("datasets d")
	if where := q.filters(); len(where) > 0 {
		builder = builder.Where(where)
	}
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build SQL for dataset count: %w", err)
	}
	return sqlStr, args, nil
}

// ItemsSQL builds the paged listing query; every row carries its image_count.
// Ties are broken by id so the same request always yields the same order.
func (q DatasetListQuery) ItemsSQL() (string, []interface{}, error) {
	sortBy, sortOrder := NormalizeSort(q.SortBy, strings.ToLower(q.SortOrder))
	direction := "ASC"
	if sortOrder == SortDesc {
		direction = "DESC"
	}

	builder := psql.Select(
		"d.id", "d.name", "d.description", "d.status", "d.created_at", "d.updated_at",
		"(SELECT COUNT(*) FROM images i WHERE i.dataset_id = d.id) AS image_count",
	).From("datasets d")
	if where := q.filters(); len(where) > 0 {
		builder = builder.Where(where)
	}

	builder = builder.OrderBy(fmt.Sprintf("%s %s", datasetSortColumns[sortBy], direction))
	if sortBy != SortByID {
		builder = builder.OrderBy("d.id ASC")
	}

	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}
	if q.Skip > 0 {
		builder = builder.Offset(uint64(q.Skip))
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build SQL for dataset listing: %w", err)
	}
	return sqlStr, args, nil
}
