package model

import "time"

// ArticleStatus is the soft-delete lifecycle of an article. Rows are never
// physically removed; deletion flips the status and keeps the url_hash so
// the same link cannot be re-ingested.
type ArticleStatus string

const (
	ArticlePublished ArticleStatus = "published"
	ArticleDeleted   ArticleStatus = "deleted"
)

// CanTransition reports whether moving to next is a legal status change.
// Deleted is terminal.
func (s ArticleStatus) CanTransition(next ArticleStatus) bool {
	return s == ArticlePublished && next == ArticleDeleted
}

// Article is one aggregated news item. Identity is URLHash, an md5 of the
// exact original link with no normalization: links differing in case or a
// trailing slash are distinct articles.
type Article struct {
	ID               uint          `json:"id" gorm:"primaryKey"`
	OriginalTitle    string        `json:"original_title" gorm:"size:500;not null"`
	OriginalLink     string        `json:"original_link" gorm:"uniqueIndex;not null"`
	OriginalSummary  string        `json:"original_summary"`
	OriginalSource   string        `json:"original_source" gorm:"size:100;not null;index"`
	SourceType       string        `json:"source_type" gorm:"size:50"`
	OriginalPubdate  *time.Time    `json:"original_pubdate"`
	URLHash          string        `json:"-" gorm:"size:64;uniqueIndex"`
	ExtractedContent string        `json:"extracted_content"`
	AISummary        string        `json:"ai_summary"`
	ImageURL         string        `json:"image_url"`
	Processed        bool          `json:"processed" gorm:"default:false;index"`
	Status           ArticleStatus `json:"status" gorm:"size:20;default:published"`
	CreatedAt        time.Time     `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (Article) TableName() string { return "rss_articles" }

// ArticleInput is what a news source hands to the aggregation driver.
type ArticleInput struct {
	Title   string
	Link    string
	Summary string
	Source  string
	Type    string
	Pubdate *time.Time
}

// SourceStat is one row of the grouped per-source aggregate.
type SourceStat struct {
	Name           string     `json:"name"`
	ArticleCount   int64      `json:"article_count"`
	ProcessedCount int64      `json:"processed_count"`
	LatestArticle  *time.Time `json:"latest_article"`
}
