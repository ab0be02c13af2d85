// Package publish pushes generated content to the GitHub Pages
// repository that serves the public site.
package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"

	"github.com/dalebar/viaductecho-backend/internal/identity"
	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
)

// repoFiles is the slice of the GitHub contents API the publisher uses.
type repoFiles interface {
	CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error)
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
}

// Publisher writes Jekyll posts and JSON snapshots into a repo branch.
type Publisher struct {
	files  repoFiles
	owner  string
	repo   string
	branch string
	now    func() time.Time
	log    logger.Logger
}

// NewPublisher expects repo in "owner/name" form.
func NewPublisher(token, repo, branch string, log logger.Logger) (*Publisher, error) {
	owner, name, found := strings.Cut(repo, "/")
	if !found || owner == "" || name == "" {
		return nil, fmt.Errorf("publish: repo %q is not owner/name", repo)
	}

	client := github.NewClient(nil).WithAuthToken(token)
	return &Publisher{
		files:  client.Repositories,
		owner:  owner,
		repo:   name,
		branch: branch,
		now:    time.Now,
		log:    log,
	}, nil
}

// PublishArticle creates a dated Jekyll post for a processed article.
func (p *Publisher) PublishArticle(ctx context.Context, article *model.Article, summary, imageURL string) error {
	slug := identity.Slugify(article.OriginalTitle, identity.PostSlugMaxLen)
	path := fmt.Sprintf("_posts/%s-%s.md", p.now().Format("2006-01-02"), slug)
	body := jekyllPost(article, summary, imageURL)

	_, _, err := p.files.CreateFile(ctx, p.owner, p.repo, path, &github.RepositoryContentFileOptions{
		Message: github.String("Auto-post: " + article.OriginalTitle),
		Content: []byte(body),
		Branch:  github.String(p.branch),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", path, err)
	}

	p.log.Info("article published",
		logger.String("path", path),
		logger.String("title", article.OriginalTitle))
	return nil
}

// UploadJSON creates or updates a JSON snapshot at the given repo path.
func (p *Publisher) UploadJSON(ctx context.Context, path string, data []byte) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String("Update " + path),
		Content: data,
		Branch:  github.String(p.branch),
	}

	existing, _, _, err := p.files.GetContents(ctx, p.owner, p.repo, path, &github.RepositoryContentGetOptions{Ref: p.branch})
	if err == nil && existing != nil {
		opts.SHA = existing.SHA
		if _, _, err := p.files.UpdateFile(ctx, p.owner, p.repo, path, opts); err != nil {
			return fmt.Errorf("update %s: %w", path, err)
		}
	} else {
		if _, _, err := p.files.CreateFile(ctx, p.owner, p.repo, path, opts); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
	}

	p.log.Info("snapshot uploaded", logger.String("path", path))
	return nil
}

func jekyllPost(article *model.Article, summary, imageURL string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("layout: post\n")
	fmt.Fprintf(&b, "title: %q\n", article.OriginalTitle)
	b.WriteString("author: archie\n")
	b.WriteString("categories: news\n")
	fmt.Fprintf(&b, "image: %s\n", imageURL)
	b.WriteString("---\n")
	b.WriteString(summary)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "![Article Image](%s)\n\n", imageURL)
	fmt.Fprintf(&b, "[Read the full article at %s](%s)\n\n", article.OriginalSource, article.OriginalLink)
	b.WriteString("---\n")
	return b.String()
}
