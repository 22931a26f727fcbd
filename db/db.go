package db

import (
	"context"
	"fmt"

	"newscr/config"
	"newscr/db/pgw"
	"newscr/models"
	"newscr/oops"

	"github.com/spf13/cobra"
)

var DbCmd *cobra.Command

func init() {
	DbCmd = &cobra.Command{
		Use: "db",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the articles table if it doesn't exist",
		RunE: func(_ *cobra.Command, _ []string) error {
			return initSchema()
		},
	}

	columnsCmd := &cobra.Command{
		Use:   "columns",
		Short: "Print the columns of the articles table",
		RunE: func(_ *cobra.Command, _ []string) error {
			return printColumns()
		},
	}

	DbCmd.AddCommand(initCmd)
	DbCmd.AddCommand(columnsCmd)
}

func Connect(ctx context.Context) (*pgw.Pool, error) {
	if err := config.Cfg.DB.Validate(); err != nil {
		return nil, oops.Wrap(err)
	}
	pool, err := pgw.NewPool(ctx, config.Cfg.DB.URL)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Wrap(err)
	}
	return pool, nil
}

const articlesSchema = `
create table if not exists articles (
	id bigint generated always as identity primary key,
	title text not null,
	subtitle text,
	body text not null,
	author text,
	author_email text,
	tags text[],
	published_at timestamptz,
	url text not null unique,
	source_domain text,
	category text,
	summary text,
	image_url text,
	created_at timestamptz not null default now()
)`

func initSchema() error {
	ctx := context.Background()
	pool, err := Connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return oops.Wrap(err)
	}
	defer conn.Release()

	if _, err := conn.Exec(articlesSchema); err != nil {
		return oops.Wrap(err)
	}
	fmt.Println("articles table is ready")
	return nil
}

func printColumns() error {
	ctx := context.Background()
	pool, err := Connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return oops.Wrap(err)
	}
	defer conn.Release()

	columns, err := models.Article_Columns(conn)
	if err != nil {
		return err
	}
	for name := range columns {
		fmt.Println(name)
	}
	return nil
}
