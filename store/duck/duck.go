// Package duck serves grid rows from an in-memory duckdb table loaded from ndjson.
package duck

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	nt "shgrid/entity"
	"shgrid/query"
)

// IdColumn is added to every loaded row, numbering rows in file order from 1.
const IdColumn = "row_id"

const table = "grid_rows"

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotFound      = errors.New("row not found")
)

// Field is a column of the loaded table.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Duck is a row store backed by duckdb.
// Queries may run while the file is reloaded.
type Duck struct {
	mu       sync.RWMutex
	db       *sql.DB
	logger   nt.Logger
	fields   []Field
	filename string
}

// New opens an in-memory duckdb.
func New(lgr nt.Logger) (dk *Duck, err error) {

	db, err := sql.Open("duckdb", "")
	if err != nil {
		err = errors.Wrapf(err, "failed to open memo duck")
		return
	}

	dk = NewWithDB(db, lgr)
	return
}

// NewWithDB wraps an open database.
func NewWithDB(db *sql.DB, lgr nt.Logger) *Duck {

	if lgr == nil {
		lgr = nt.NopLogger{}
	}

	return &Duck{
		db:     db,
		logger: lgr,
	}
}

func (dk *Duck) Close() {
	dk.db.Close()
}

// Load an ndjson file, one object per row
func (dk *Duck) Load(ctx context.Context, path string) (err error) {

	err = loadTable(ctx, dk.db, path)
	if err != nil {
		return
	}

	fields, err := getFields(ctx, dk.db)
	if err != nil {
		return
	}

	dk.mu.Lock()
	dk.fields = fields
	dk.filename = path
	dk.mu.Unlock()

	dk.logger.Info(ctx, "loaded rows", "path", path, "fields", len(dk.fields))
	return
}

// Name returns the name of the loaded file
func (dk *Duck) Name() string {
	dk.mu.RLock()
	defer dk.mu.RUnlock()
	return dk.filename
}

// Fields returns the columns of the loaded table.
func (dk *Duck) Fields() []Field {
	dk.mu.RLock()
	defer dk.mu.RUnlock()
	return slices.Clone(dk.fields)
}

// Index a column to speed up sorting on it
func (dk *Duck) Index(ctx context.Context, column string) (err error) {

	ident, err := dk.ident(column)
	if err != nil {
		return
	}

	stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName(column), table, ident)
	_, err = dk.db.ExecContext(ctx, stmt)
	err = errors.Wrapf(err, "failed to index column")
	return
}

// Query returns the window of rows matching filters in sort order, and the count of all matches.
func (dk *Duck) Query(ctx context.Context, in query.Input) (rows []map[string]any, count int, err error) {

	where, args, err := dk.whereClause(in.Filters)
	if err != nil {
		return
	}

	order, err := dk.orderClause(in.Sorters)
	if err != nil {
		return
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, where)
	err = dk.db.QueryRowContext(ctx, countQuery, args...).Scan(&count)
	if err != nil {
		err = errors.Wrapf(err, "failed to count rows")
		return
	}

	pageQuery := fmt.Sprintf("SELECT * FROM %s%s%s LIMIT %d OFFSET %d", table, where, order, in.Limit, in.Offset)
	rows, err = dk.selectRows(ctx, pageQuery, args...)
	return
}

// GetRow returns a single row by id
func (dk *Duck) GetRow(ctx context.Context, id string) (row map[string]any, err error) {

	num, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		err = errors.Wrapf(ErrNotFound, "id %q", id)
		return
	}

	stmt := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", table, IdColumn)

	rows, err := dk.selectRows(ctx, stmt, num)
	if err != nil {
		return
	}
	if len(rows) == 0 {
		err = errors.Wrapf(ErrNotFound, "id %q", id)
		return
	}

	row = rows[0]
	return
}

// unexported

func (dk *Duck) ident(column string) (ident string, err error) {

	dk.mu.RLock()
	defer dk.mu.RUnlock()

	known := slices.ContainsFunc(dk.fields, func(fld Field) bool {
		return fld.Name == column
	})
	if !known {
		err = errors.Wrapf(ErrUnknownColumn, "%q", column)
		return
	}

	ident = `"` + strings.ReplaceAll(column, `"`, `""`) + `"`
	return
}

// whereClause matches each filter as a case-insensitive substring of the column's text.
func (dk *Duck) whereClause(filters []nt.FilterPair) (clause string, args []any, err error) {

	exprs := []string{}
	for _, pair := range filters {
		var ident string
		ident, err = dk.ident(pair.Column)
		if err != nil {
			return
		}

		exprs = append(exprs, fmt.Sprintf("CAST(%s AS VARCHAR) ILIKE ?", ident))
		args = append(args, "%"+pair.Text+"%")
	}

	if len(exprs) > 0 {
		clause = " WHERE " + strings.Join(exprs, " AND ")
	}
	return
}

// orderClause always ends with the id column so paging is stable.
func (dk *Duck) orderClause(sorters []nt.Sorter) (clause string, err error) {

	terms := []string{}
	for _, srt := range sorters {
		var ident string
		ident, err = dk.ident(srt.Column)
		if err != nil {
			return
		}

		dir := "DESC"
		if srt.Asc {
			dir = "ASC"
		}
		terms = append(terms, ident+" "+dir)
	}
	terms = append(terms, IdColumn+" ASC")

	clause = " ORDER BY " + strings.Join(terms, ", ")
	return
}

func (dk *Duck) selectRows(ctx context.Context, stmt string, args ...any) (out []map[string]any, err error) {

	rows, err := dk.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		err = errors.Wrapf(err, "failed to query rows")
		return
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		err = errors.Wrapf(err, "failed to get cols from query rows")
		return
	}

	out = []map[string]any{}
	for rows.Next() {
		var vals []any
		vals, err = scanRow(rows, len(names))
		if err != nil {
			err = errors.Wrapf(err, "failed to scan row")
			return
		}

		row := make(map[string]any, len(names))
		for i, name := range names {
			row[name] = vals[i]
		}
		out = append(out, row)
	}

	err = rows.Err()
	err = errors.Wrapf(err, "error iterating rows")
	return
}

func indexName(column string) string {

	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, column)

	return "idx_" + name
}

func scanRow(rows *sql.Rows, columnCount int) ([]any, error) {
	vals := make([]any, columnCount)
	ptrs := make([]any, columnCount)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	err := rows.Scan(ptrs...)
	return vals, err
}

func loadTable(ctx context.Context, db *sql.DB, path string) (err error) {

	// Todo: ROW_NUMBER relies on read order, fine for a single file
	create := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS
SELECT ROW_NUMBER() OVER () AS %s, *
FROM read_json_auto('%s', format='newline_delimited', maximum_object_size=16777216)`,
		table, IdColumn, strings.ReplaceAll(path, "'", "''"))

	_, err = db.ExecContext(ctx, create)
	if err != nil {
		err = errors.Wrapf(err, "failed to create table from %s", path)
		return
	}

	stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName(IdColumn), table, IdColumn)
	_, err = db.ExecContext(ctx, stmt)
	err = errors.Wrapf(err, "failed to create index")
	return
}

func getFields(ctx context.Context, db *sql.DB) (fields []Field, err error) {

	rows, err := db.QueryContext(ctx, `SELECT column_name, data_type
FROM information_schema.columns
WHERE table_name = ?
ORDER BY ordinal_position`, table)
	if err != nil {
		err = errors.Wrapf(err, "failed to query schema")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var fld Field
		if err = rows.Scan(&fld.Name, &fld.Type); err != nil {
			err = errors.Wrapf(err, "failed to scan field")
			return
		}
		fields = append(fields, fld)
	}

	err = rows.Err()
	err = errors.Wrapf(err, "error iterating schema")
	return
}
