package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"github.com/gdblog/go-blog/server"
	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/service/persist/postgres"
)

// Seeds a post with a wide and deep comment thread, e.g.
// `go run cmd/comments_prepop/main.go --post 1 --author 2 --roots 20 --replies 300 --depth 50`

type options struct {
	postID   int64
	authorID int64
	roots    int
	replies  int
	depth    int
	workers  int
}

func main() {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "comments_prepop",
		Short: "Seed a post with threaded comments",
		RunE: func(cmd *cobra.Command, args []string) error {
			server.SetDefaults()
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().Int64Var(&opts.postID, "post", 0, "post to comment on")
	cmd.Flags().Int64Var(&opts.authorID, "author", 0, "user that writes every comment")
	cmd.Flags().IntVar(&opts.roots, "roots", 10, "root comments to create")
	cmd.Flags().IntVar(&opts.replies, "replies", 100, "direct replies under each root")
	cmd.Flags().IntVar(&opts.depth, "depth", 20, "length of the reply chain under each root")
	cmd.Flags().IntVar(&opts.workers, "workers", 10, "roots seeded concurrently")
	cmd.MarkFlagRequired("post")
	cmd.MarkFlagRequired("author")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	start := time.Now()
	defer func() {
		logger.For(ctx).Infof("Took %s", time.Since(start))
	}()

	pg := postgres.NewPgxClient()
	defer pg.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	postID := persist.DBID(opts.postID)
	authorID := persist.DBID(opts.authorID)

	var created int64
	var failed int64

	wp := workerpool.New(opts.workers)
	for i := 0; i < opts.roots; i++ {
		i := i
		wp.Submit(func() {
			n, err := seedThread(ctx, pg, postID, authorID, i, opts.replies, opts.depth)
			atomic.AddInt64(&created, int64(n))
			if err != nil {
				atomic.AddInt64(&failed, 1)
				logger.For(ctx).Errorf("failed to seed thread %d: %s", i, err)
			}
		})
	}
	wp.StopWait()

	logger.For(ctx).Infof("created %d comments on post %s", created, postID)
	if failed > 0 {
		return fmt.Errorf("%d of %d threads failed", failed, opts.roots)
	}
	return nil
}

// seedThread creates one root with replies direct children and a chain of depth nested replies
func seedThread(ctx context.Context, pg *pgxpool.Pool, postID, authorID persist.DBID, n, replies, depth int) (int, error) {
	created := 0

	rootID, err := insertComment(ctx, pg, postID, authorID, 0, fmt.Sprintf("root %d", n))
	if err != nil {
		return created, err
	}
	created++

	for i := 0; i < replies; i++ {
		if _, err := insertComment(ctx, pg, postID, authorID, rootID, fmt.Sprintf("reply %d.%d", n, i)); err != nil {
			return created, err
		}
		created++
	}

	parentID := rootID
	for d := 0; d < depth; d++ {
		parentID, err = insertComment(ctx, pg, postID, authorID, parentID, fmt.Sprintf("nested %d.%d", n, d))
		if err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

func insertComment(ctx context.Context, pg *pgxpool.Pool, postID, authorID, parentID persist.DBID, content string) (persist.DBID, error) {
	var id persist.DBID
	err := pg.QueryRow(ctx, "INSERT INTO comments (content, post_id, user_id, parent_id) VALUES ($1, $2, $3, $4) RETURNING id", content, postID, authorID, parentID).Scan(&id)
	return id, err
}
