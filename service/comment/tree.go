package comment

import (
	"context"
	"math"
	"time"

	"github.com/jinzhu/copier"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/gdblog/go-blog/service/logger"
	"github.com/gdblog/go-blog/service/persist"
	"github.com/gdblog/go-blog/util"
)

const (
	// DefaultFetchCap is the most descendants loaded for a single page of roots
	DefaultFetchCap = 5000
	// DefaultMaxDepth is the most reply levels loaded below a root
	DefaultMaxDepth = 256
	// maxOffset keeps the root offset inside a postgres integer
	maxOffset = math.MaxInt32
)

const (
	limitReasonFetchCap = "fetch_cap"
	limitReasonMaxDepth = "max_depth"
)

var (
	treeLimitsHit = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "comment_tree_limits_hit_total",
		Help: "Number of comment tree listings that returned a partial tree",
	}, []string{"reason"})

	listDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "comment_tree_list_duration_seconds",
		Help:    "Histogram of threaded comment listing latency in seconds",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})
)

// AuthorResolver resolves comment authors in bulk
type AuthorResolver interface {
	ResolveMany(ctx context.Context, userIDs []persist.DBID) (map[persist.DBID]persist.UserSummary, error)
}

// ThreadedPage is one page of root comments, each carrying its replies
type ThreadedPage struct {
	Comments   []*persist.CommentView `json:"records"`
	Total      int                    `json:"total"`
	PageNumber int                    `json:"current"`
	PageSize   int                    `json:"size"`
	Truncated  bool                   `json:"truncated,omitempty"`
}

// Assembler builds comment trees from flat rows
type Assembler struct {
	comments persist.CommentRepository
	authors  AuthorResolver
	FetchCap int
	MaxDepth int
}

type AssemblerOption func(*Assembler)

func WithFetchCap(fetchCap int) AssemblerOption {
	return func(a *Assembler) {
		if fetchCap > 0 {
			a.FetchCap = fetchCap
		}
	}
}

func WithMaxDepth(maxDepth int) AssemblerOption {
	return func(a *Assembler) {
		if maxDepth > 0 {
			a.MaxDepth = maxDepth
		}
	}
}

func NewAssembler(comments persist.CommentRepository, authors AuthorResolver, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		comments: comments,
		authors:  authors,
		FetchCap: DefaultFetchCap,
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ListThreaded returns a page of a post's root comments, newest first, each with its full reply
// tree ordered oldest first. When the tree is larger than the fetch cap or deeper than the max
// depth, the partial tree is returned and Truncated is set.
func (a *Assembler) ListThreaded(ctx context.Context, postID persist.DBID, pageNumber, pageSize int) (ThreadedPage, error) {
	defer util.Track(ctx, "ListThreaded", time.Now())
	timer := prometheus.NewTimer(listDuration)
	defer timer.ObserveDuration()

	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if lastPage := maxOffset/pageSize + 1; pageNumber > lastPage {
		pageNumber = lastPage
	}

	var roots []persist.Comment
	var total int

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roots, err = a.comments.GetRootsByPostID(gCtx, postID, pageSize, (pageNumber-1)*pageSize)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = a.comments.CountRootsByPostID(gCtx, postID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ThreadedPage{}, err
	}

	page := ThreadedPage{
		Comments:   make([]*persist.CommentView, 0, len(roots)),
		Total:      total,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}

	if len(roots) == 0 {
		return page, nil
	}

	descendants, truncated, err := a.fetchDescendants(ctx, postID, roots)
	if err != nil {
		return ThreadedPage{}, err
	}
	page.Truncated = truncated

	authorIDs := lo.Uniq(lo.Map(append(append([]persist.Comment{}, roots...), descendants...), func(c persist.Comment, _ int) persist.DBID {
		return c.UserID
	}))
	authors, err := a.authors.ResolveMany(ctx, authorIDs)
	if err != nil {
		return ThreadedPage{}, err
	}

	byParent := lo.GroupBy(descendants, func(c persist.Comment) persist.DBID {
		return c.ParentID
	})
	for _, children := range byParent {
		slices.SortStableFunc(children, createdBefore)
	}

	stack := make([]*persist.CommentView, 0, len(roots))
	for _, root := range roots {
		view, err := toView(root, authors)
		if err != nil {
			return ThreadedPage{}, err
		}
		page.Comments = append(page.Comments, view)
		stack = append(stack, view)
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range byParent[current.ID] {
			view, err := toView(child, authors)
			if err != nil {
				return ThreadedPage{}, err
			}
			current.Children = append(current.Children, view)
			stack = append(stack, view)
		}
	}

	return page, nil
}

// fetchDescendants walks the reply graph one level at a time starting from roots. Each level is
// a single query bounded by whatever is left of the fetch cap.
func (a *Assembler) fetchDescendants(ctx context.Context, postID persist.DBID, roots []persist.Comment) ([]persist.Comment, bool, error) {
	visited := make(map[persist.DBID]bool, len(roots))
	frontier := make([]persist.DBID, 0, len(roots))
	for _, root := range roots {
		visited[root.ID] = true
		frontier = append(frontier, root.ID)
	}

	descendants := make([]persist.Comment, 0)

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= a.MaxDepth {
			deeper, err := a.comments.GetByParentIDs(ctx, postID, frontier, 1)
			if err != nil {
				return nil, false, err
			}
			if len(deeper) == 0 {
				return descendants, false, nil
			}
			a.recordLimit(ctx, postID, limitReasonMaxDepth, len(descendants))
			return descendants, true, nil
		}

		remaining := a.FetchCap - len(descendants)
		if remaining < 0 {
			remaining = 0
		}

		// One extra row tells us whether anything was cut off
		batch, err := a.comments.GetByParentIDs(ctx, postID, frontier, remaining+1)
		if err != nil {
			return nil, false, err
		}

		truncated := false
		if len(batch) > remaining {
			batch = batch[:remaining]
			truncated = true
		}

		next := make([]persist.DBID, 0, len(batch))
		for _, c := range batch {
			if visited[c.ID] {
				continue
			}
			visited[c.ID] = true
			descendants = append(descendants, c)
			next = append(next, c.ID)
		}

		if truncated {
			a.recordLimit(ctx, postID, limitReasonFetchCap, len(descendants))
			return descendants, true, nil
		}

		frontier = next
	}

	return descendants, false, nil
}

func (a *Assembler) recordLimit(ctx context.Context, postID persist.DBID, reason string, fetched int) {
	treeLimitsHit.WithLabelValues(reason).Inc()
	logger.For(ctx).WithFields(logrus.Fields{
		"postId":   postID,
		"fetched":  fetched,
		"cap":      a.FetchCap,
		"maxDepth": a.MaxDepth,
		"reason":   reason,
	}).Warn("comment tree truncated")
}

// GetView returns a single live comment with its author attached and no children
func (a *Assembler) GetView(ctx context.Context, commentID persist.DBID) (*persist.CommentView, error) {
	c, err := a.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	authors, err := a.authors.ResolveMany(ctx, []persist.DBID{c.UserID})
	if err != nil {
		return nil, err
	}

	return toView(c, authors)
}

func toView(c persist.Comment, authors map[persist.DBID]persist.UserSummary) (*persist.CommentView, error) {
	view := &persist.CommentView{}
	if err := copier.Copy(view, &c); err != nil {
		return nil, err
	}

	view.Children = make([]*persist.CommentView, 0)
	if author, ok := authors[c.UserID]; ok {
		view.Author = &author
	}

	return view, nil
}

// createdBefore orders comments oldest first with unset timestamps last, then by id
func createdBefore(a, b persist.Comment) bool {
	if a.CreatedAt.IsZero() != b.CreatedAt.IsZero() {
		return !a.CreatedAt.IsZero()
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
