package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newscr/db/pgw"
	"newscr/oops"
	"newscr/scraper"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func Article_Exists(qu pgw.Queryable, articleUrl string) (bool, error) {
	row := qu.QueryRow("select 1 from articles where url = $1", articleUrl)
	var one int
	err := row.Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, oops.Wrap(err)
	}
	return true, nil
}

// Article_Columns introspects the live articles table. The insert payload
// adapts to this set so a trimmed server-side schema doesn't fail writes.
func Article_Columns(qu pgw.Queryable) (map[string]bool, error) {
	rows, err := qu.Query(`
		select column_name from information_schema.columns
		where table_schema = 'public' and table_name = 'articles'
	`)
	if err != nil {
		return nil, oops.Wrap(err)
	}

	columns := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, oops.Wrap(err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Wrap(err)
	}
	if len(columns) == 0 {
		return nil, oops.New("articles table not found")
	}

	return columns, nil
}

// Column order is fixed so generated statements are stable in logs.
var articleColumnOrder = []string{
	"title", "subtitle", "body", "author", "author_email", "tags",
	"published_at", "url", "source_domain", "category", "summary", "image_url",
}

// The subset that must exist for a row to be worth storing at all.
var articleMinimalColumns = map[string]bool{"title": true, "body": true, "url": true}

func articleValue(article *scraper.Article, column string) any {
	switch column {
	case "title":
		return article.Title
	case "subtitle":
		return nullIfEmpty(article.Subtitle)
	case "body":
		return article.Body
	case "author":
		return nullIfEmpty(article.Author)
	case "author_email":
		return nullIfEmpty(article.AuthorEmail)
	case "tags":
		return article.Tags
	case "published_at":
		return article.PublishedAt
	case "url":
		return article.Url
	case "source_domain":
		return nullIfEmpty(article.SourceDomain)
	case "category":
		return nullIfEmpty(article.Category)
	case "summary":
		return nullIfEmpty(article.Summary)
	case "image_url":
		return nullIfEmpty(article.ImageUrl)
	default:
		panic(fmt.Sprintf("Unknown article column %s", column))
	}
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// Article_Insert writes one row, sending only the intersection of the
// record's fields and tableColumns (nil means send everything).
func Article_Insert(qu pgw.Queryable, article *scraper.Article, tableColumns map[string]bool) error {
	var columns []string
	var placeholders []string
	var values []any
	for _, column := range articleColumnOrder {
		if tableColumns != nil && !tableColumns[column] {
			continue
		}
		columns = append(columns, column)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(columns)))
		values = append(values, articleValue(article, column))
	}
	if len(columns) == 0 {
		return oops.New("no insertable columns")
	}

	query := fmt.Sprintf(
		"insert into articles (%s) values (%s)",
		strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)
	if _, err := qu.Exec(query, values...); err != nil {
		return oops.Wrap(err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isSchemaShaped(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.UndefinedColumn, pgerrcode.UndefinedTable, pgerrcode.DatatypeMismatch:
		return true
	default:
		return false
	}
}

// ArticleGate is the deduplicating persistence gate: select by URL first,
// insert at most once. Transient failures go through the shared retry
// policy; schema-shaped failures get exactly one reduced-payload retry.
type ArticleGate struct {
	Ctx    context.Context
	Retry  scraper.RetryPolicy
	Logger scraper.Logger

	// acquire hands out a connection-scoped Queryable plus its release.
	acquire func() (pgw.Queryable, func(), error)
	columns map[string]bool
}

func NewArticleGate(
	ctx context.Context, pool *pgw.Pool, retry scraper.RetryPolicy, logger scraper.Logger,
) *ArticleGate {
	return &ArticleGate{
		Ctx:    ctx,
		Retry:  retry,
		Logger: logger,
		acquire: func() (pgw.Queryable, func(), error) {
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return nil, nil, oops.Wrap(err)
			}
			return conn, conn.Release, nil
		},
		columns: nil,
	}
}

func (g *ArticleGate) Save(article *scraper.Article) (scraper.SaveStatus, error) {
	conn, release, err := g.acquire()
	if err != nil {
		return scraper.SaveFailed, err
	}
	defer release()

	exists, err := Article_Exists(conn, article.Url)
	if err != nil {
		return scraper.SaveFailed, err
	}
	if exists {
		return scraper.SaveDuplicate, nil
	}

	if g.columns == nil {
		columns, err := Article_Columns(conn)
		if err != nil {
			g.Logger.Warn("Column introspection failed, sending full payload: %v", err)
		} else {
			g.columns = columns
		}
	}

	status := scraper.SaveSaved
	err = g.Retry.Do(func() error {
		err := Article_Insert(conn, article, g.columns)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			// lost the race to another writer, same outcome as the
			// select-first path
			status = scraper.SaveDuplicate
			return nil
		}
		if isSchemaShaped(err) {
			g.Logger.Warn("Schema-shaped insert failure for %s, retrying with minimal fields: %v",
				article.Url, err)
			if minimalErr := Article_Insert(conn, article, articleMinimalColumns); minimalErr != nil {
				return backoff.Permanent(minimalErr)
			}
			return nil
		}
		return err
	})
	if err != nil {
		return scraper.SaveFailed, err
	}
	return status, nil
}

// SaveBatch applies the gate per record and aggregates the verdicts.
// Records that failed pipeline validation never reach here; the caller
// accounts for those in BatchResult.Invalid alongside these verdicts.
func (g *ArticleGate) SaveBatch(articles []*scraper.Article) scraper.BatchResult {
	var result scraper.BatchResult
	for _, article := range articles {
		status, err := g.Save(article)
		switch status {
		case scraper.SaveSaved:
			result.Saved++
		case scraper.SaveDuplicate:
			result.Duplicates++
		case scraper.SaveFailed:
			result.Failed++
			g.Logger.Error("Save failed for %s: %v", article.Url, err)
		}
	}
	return result
}
