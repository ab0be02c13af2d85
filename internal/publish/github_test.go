package publish

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v66/github"

	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
)

type fakeFiles struct {
	created map[string][]byte
	updated map[string][]byte
	// paths that GetContents reports as existing, keyed by path -> sha
	existing map[string]string

	lastOpts *github.RepositoryContentFileOptions
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		created:  make(map[string][]byte),
		updated:  make(map[string][]byte),
		existing: make(map[string]string),
	}
}

func (f *fakeFiles) CreateFile(_ context.Context, _, _, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error) {
	f.created[path] = opts.Content
	f.lastOpts = opts
	return nil, nil, nil
}

func (f *fakeFiles) UpdateFile(_ context.Context, _, _, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, *github.Response, error) {
	f.updated[path] = opts.Content
	f.lastOpts = opts
	return nil, nil, nil
}

func (f *fakeFiles) GetContents(_ context.Context, _, _, path string, _ *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error) {
	sha, ok := f.existing[path]
	if !ok {
		return nil, nil, nil, errors.New("404 not found")
	}
	return &github.RepositoryContent{SHA: github.String(sha)}, nil, nil, nil
}

func testPublisher(files *fakeFiles) *Publisher {
	return &Publisher{
		files:  files,
		owner:  "dalebar",
		repo:   "viaductecho",
		branch: "main",
		now:    func() time.Time { return time.Date(2024, 12, 2, 10, 0, 0, 0, time.UTC) },
		log:    logger.NewNop(),
	}
}

func TestNewPublisherRepoFormat(t *testing.T) {
	if _, err := NewPublisher("tok", "not-a-repo", "main", logger.NewNop()); err == nil {
		t.Error("NewPublisher(bad repo) = nil error")
	}
	if _, err := NewPublisher("tok", "dalebar/viaductecho", "main", logger.NewNop()); err != nil {
		t.Errorf("NewPublisher(good repo) error: %v", err)
	}
}

func TestPublishArticle(t *testing.T) {
	files := newFakeFiles()
	p := testPublisher(files)

	article := &model.Article{
		OriginalTitle:  "Stockport Viaduct Repairs Begin!",
		OriginalLink:   "https://www.bbc.co.uk/news/x",
		OriginalSource: "BBC News",
	}

	err := p.PublishArticle(context.Background(), article, "Work starts today.", "https://img.example.com/v.jpg")
	if err != nil {
		t.Fatalf("PublishArticle() error: %v", err)
	}

	wantPath := "_posts/2024-12-02-stockport-viaduct-repairs-begin.md"
	body, ok := files.created[wantPath]
	if !ok {
		t.Fatalf("post not created at %s, got %v", wantPath, files.created)
	}

	content := string(body)
	for _, want := range []string{
		"layout: post",
		`title: "Stockport Viaduct Repairs Begin!"`,
		"author: archie",
		"categories: news",
		"image: https://img.example.com/v.jpg",
		"Work starts today.",
		"[Read the full article at BBC News](https://www.bbc.co.uk/news/x)",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("post missing %q:\n%s", want, content)
		}
	}

	if got := files.lastOpts.GetMessage(); got != "Auto-post: Stockport Viaduct Repairs Begin!" {
		t.Errorf("commit message = %q", got)
	}
	if got := files.lastOpts.GetBranch(); got != "main" {
		t.Errorf("branch = %q", got)
	}
}

func TestUploadJSONCreatesWhenMissing(t *testing.T) {
	files := newFakeFiles()
	p := testPublisher(files)

	if err := p.UploadJSON(context.Background(), "data/events.json", []byte(`{"total":0}`)); err != nil {
		t.Fatalf("UploadJSON() error: %v", err)
	}
	if _, ok := files.created["data/events.json"]; !ok {
		t.Error("snapshot not created")
	}
	if len(files.updated) != 0 {
		t.Error("update called for a missing file")
	}
}

func TestUploadJSONUpdatesWhenPresent(t *testing.T) {
	files := newFakeFiles()
	files.existing["data/events.json"] = "abc123"
	p := testPublisher(files)

	if err := p.UploadJSON(context.Background(), "data/events.json", []byte(`{"total":2}`)); err != nil {
		t.Fatalf("UploadJSON() error: %v", err)
	}
	if _, ok := files.updated["data/events.json"]; !ok {
		t.Error("snapshot not updated")
	}
	if got := files.lastOpts.GetSHA(); got != "abc123" {
		t.Errorf("SHA = %q, want existing blob sha", got)
	}
}
