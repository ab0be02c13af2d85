package store

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dalebar/viaductecho-backend/internal/identity"
	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
)

// ArticleExists checks presence by URL hash. O(1) via the unique index.
func (s *Store) ArticleExists(link string) (bool, error) {
	hash := identity.HashURL(link)
	var count int64
	err := s.run(func(db *gorm.DB) error {
		return db.Model(&model.Article{}).Where("url_hash = ?", hash).Count(&count).Error
	})
	return count > 0, err
}

// InsertArticle inserts a new row keyed by the link hash. A duplicate link
// returns ErrDuplicate; callers are expected to have checked ArticleExists
// first, so hitting it means two writers raced and the constraint decided.
func (s *Store) InsertArticle(in model.ArticleInput) (*model.Article, error) {
	article := &model.Article{
		OriginalTitle:   in.Title,
		OriginalLink:    in.Link,
		OriginalSummary: in.Summary,
		OriginalSource:  in.Source,
		SourceType:      in.Type,
		OriginalPubdate: in.Pubdate,
		URLHash:         identity.HashURL(in.Link),
		Status:          model.ArticlePublished,
	}
	if article.SourceType == "" {
		article.SourceType = "RSS"
	}

	err := s.run(func(db *gorm.DB) error {
		return db.Create(article).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	s.log.Info("inserted article", logger.String("title", article.OriginalTitle))
	return article, nil
}

// UpdateContent stores the extracted full text and, when present, the image
// URL. Committed independently of the other enrichment stages.
func (s *Store) UpdateContent(link, content, imageURL string) error {
	updates := map[string]interface{}{"extracted_content": content}
	if imageURL != "" {
		updates["image_url"] = imageURL
	}
	return s.updateByHash(link, updates)
}

// UpdateAISummary stores the generated summary.
func (s *Store) UpdateAISummary(link, summary string) error {
	return s.updateByHash(link, map[string]interface{}{"ai_summary": summary})
}

// MarkProcessed flips the processed flag once the article has been
// published downstream.
func (s *Store) MarkProcessed(link string) error {
	return s.updateByHash(link, map[string]interface{}{"processed": true})
}

func (s *Store) updateByHash(link string, updates map[string]interface{}) error {
	hash := identity.HashURL(link)
	return s.run(func(db *gorm.DB) error {
		res := db.Model(&model.Article{}).Where("url_hash = ?", hash).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ArticlesPaginated returns processed (or all) articles newest-first.
func (s *Store) ArticlesPaginated(page, perPage int, source string, processedOnly bool) ([]model.Article, int64, error) {
	page = clampPage(page)
	perPage = clampPerPage(perPage)
	offset := (page - 1) * perPage

	var articles []model.Article
	var total int64
	err := s.run(func(db *gorm.DB) error {
		q := db.Model(&model.Article{}).Where("status = ?", model.ArticlePublished)
		if processedOnly {
			q = q.Where("processed = ?", true)
		}
		if source != "" {
			q = q.Where("original_source = ?", source)
		}
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Order("created_at DESC").Offset(offset).Limit(perPage).Find(&articles).Error
	})
	return articles, total, err
}

// RecentArticles returns processed articles created in the last N hours.
func (s *Store) RecentArticles(hours, limit int) ([]model.Article, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	var articles []model.Article
	err := s.run(func(db *gorm.DB) error {
		return db.Where("created_at >= ? AND processed = ? AND status = ?",
			cutoff, true, model.ArticlePublished).
			Order("created_at DESC").
			Limit(limit).
			Find(&articles).Error
	})
	return articles, err
}

// SearchArticles does a case-insensitive substring match across title,
// summary and extracted content. Queries shorter than two characters fail
// closed: empty result, storage untouched.
func (s *Store) SearchArticles(query string, page, perPage int) ([]model.Article, int64, error) {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < 2 {
		return []model.Article{}, 0, nil
	}

	page = clampPage(page)
	perPage = clampPerPage(perPage)
	offset := (page - 1) * perPage
	pattern := "%" + strings.ToLower(trimmed) + "%"

	var articles []model.Article
	var total int64
	err := s.run(func(db *gorm.DB) error {
		q := db.Model(&model.Article{}).
			Where("processed = ? AND status = ?", true, model.ArticlePublished).
			Where("LOWER(original_title) LIKE ? OR LOWER(original_summary) LIKE ? OR LOWER(extracted_content) LIKE ?",
				pattern, pattern, pattern)
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Order("created_at DESC").Offset(offset).Limit(perPage).Find(&articles).Error
	})
	return articles, total, err
}

// ArticleByID fetches one processed article.
func (s *Store) ArticleByID(id uint) (*model.Article, error) {
	var article model.Article
	err := s.run(func(db *gorm.DB) error {
		return db.Where("id = ? AND processed = ? AND status = ?",
			id, true, model.ArticlePublished).First(&article).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

// SourceStats groups processed articles by source, most prolific first.
func (s *Store) SourceStats() ([]model.SourceStat, error) {
	var stats []model.SourceStat
	err := s.run(func(db *gorm.DB) error {
		return db.Model(&model.Article{}).
			Select("original_source AS name, " +
				"COUNT(id) AS article_count, " +
				"SUM(CASE WHEN processed THEN 1 ELSE 0 END) AS processed_count, " +
				"MAX(created_at) AS latest_article").
			Where("processed = ?", true).
			Group("original_source").
			Order("article_count DESC").
			Scan(&stats).Error
	})
	return stats, err
}

// ArticleCount returns the total number of (optionally processed) articles.
func (s *Store) ArticleCount(processedOnly bool) (int64, error) {
	var count int64
	err := s.run(func(db *gorm.DB) error {
		q := db.Model(&model.Article{}).Where("status = ?", model.ArticlePublished)
		if processedOnly {
			q = q.Where("processed = ?", true)
		}
		return q.Count(&count).Error
	})
	return count, err
}

// SoftDeleteArticle flips status to deleted. The row and its hash stay so
// the link cannot be re-ingested.
func (s *Store) SoftDeleteArticle(id uint) error {
	return s.run(func(db *gorm.DB) error {
		var article model.Article
		if err := db.First(&article, id).Error; err != nil {
			return translate(err)
		}
		if !article.Status.CanTransition(model.ArticleDeleted) {
			return fmt.Errorf("%w: %s -> deleted", ErrBadTransition, article.Status)
		}
		return db.Model(&article).Update("status", model.ArticleDeleted).Error
	})
}
