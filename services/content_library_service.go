package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/learnhub-ng/api/model"
	"gorm.io/gorm"
)

const (
	// Flag content for review once downvotes dominate a real sample
	moderationDownvoteRatio = 0.7
	moderationMinVotes      = 5
)

// ContentInput is the payload for creating contributed content
type ContentInput struct {
	Title          string               `json:"title" validate:"required,max=100"`
	Description    string               `json:"description" validate:"required,max=1000"`
	Subject        string               `json:"subject" validate:"required,oneof=mathematics science language social_studies arts physical_education technology other"`
	GradeLevels    []string             `json:"grade_levels" validate:"required,min=1,dive,required"`
	Kind           model.UploadedKind   `json:"content_type" validate:"required,oneof=lesson quiz assignment resource"`
	Format         model.UploadedFormat `json:"format" validate:"required,oneof=video document presentation audio interactive"`
	Language       string               `json:"language"`
	FileURL        string               `json:"file_url" validate:"required"`
	FileSize       int64                `json:"file_size" validate:"required,min=1"`
	ThumbnailURL   string               `json:"thumbnail_url"`
	Tags           []string             `json:"tags"`
	IsDownloadable *bool                `json:"is_downloadable"`
}

// ContentUpdate carries the updatable fields of contributed content. Nil
// fields are left untouched.
type ContentUpdate struct {
	Title          *string  `json:"title" validate:"omitempty,max=100"`
	Description    *string  `json:"description" validate:"omitempty,max=1000"`
	Subject        *string  `json:"subject" validate:"omitempty,oneof=mathematics science language social_studies arts physical_education technology other"`
	GradeLevels    []string `json:"grade_levels"`
	FileURL        *string  `json:"file_url"`
	FileSize       *int64   `json:"file_size" validate:"omitempty,min=1"`
	ThumbnailURL   *string  `json:"thumbnail_url"`
	Tags           []string `json:"tags"`
	IsDownloadable *bool    `json:"is_downloadable"`
}

// VoteSummary is the vote state returned after casting a vote
type VoteSummary struct {
	Upvotes   int64          `json:"upvotes"`
	Downvotes int64          `json:"downvotes"`
	UserVote  model.VoteKind `json:"user_vote,omitempty"` // empty when the vote was removed
}

// DownloadInfo points a client at a contributed content file
type DownloadInfo struct {
	FileURL  string `json:"file_url"`
	FileSize int64  `json:"file_size"`
	Title    string `json:"title"`
}

// ContentLibraryService owns the community-contributed content catalog, its
// comment threads and its up/down votes. Votes keep one row per (content,
// user) pair; the denormalized counters on the content row are what lists
// and reports read.
type ContentLibraryService struct {
	db         *gorm.DB
	engagement *EngagementService
}

// NewContentLibraryService creates a new content library service
func NewContentLibraryService(db *gorm.DB, engagement *EngagementService) *ContentLibraryService {
	return &ContentLibraryService{
		db:         db,
		engagement: engagement,
	}
}

// CreateContent publishes a new contributed item. Content goes live
// immediately; community voting handles quality after the fact.
func (s *ContentLibraryService) CreateContent(ctx context.Context, creatorID uint, input ContentInput) (*model.UploadedContent, error) {
	gradeLevels, err := json.Marshal(input.GradeLevels)
	if err != nil {
		return nil, fmt.Errorf("failed to encode grade levels: %w", err)
	}
	tags, err := json.Marshal(input.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	language := input.Language
	if language == "" {
		language = "en"
	}
	downloadable := true
	if input.IsDownloadable != nil {
		downloadable = *input.IsDownloadable
	}

	content := model.UploadedContent{
		Title:          input.Title,
		Description:    input.Description,
		Subject:        input.Subject,
		GradeLevels:    gradeLevels,
		Kind:           input.Kind,
		Format:         input.Format,
		Language:       language,
		CreatorID:      creatorID,
		FileURL:        input.FileURL,
		FileSize:       input.FileSize,
		ThumbnailURL:   input.ThumbnailURL,
		Tags:           tags,
		IsDownloadable: downloadable,
		Approved:       true,
	}
	if err := s.db.WithContext(ctx).Create(&content).Error; err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}
	return &content, nil
}

// GetContent loads one contributed item and counts the view, both on the row
// and in today's engagement bucket.
func (s *ContentLibraryService) GetContent(ctx context.Context, contentID uint) (*model.UploadedContent, error) {
	content, err := s.loadContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(content).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count view: %w", err)
	}
	content.Views++

	if err := s.engagement.RecordEngagement(ctx, model.ContentTypeUploaded, content.ID, EngagementDelta{Views: 1}); err != nil {
		return nil, err
	}
	return content, nil
}

// UpdateContent applies the non-nil fields. Only the creator may update.
func (s *ContentLibraryService) UpdateContent(ctx context.Context, userID, contentID uint, update ContentUpdate) (*model.UploadedContent, error) {
	content, err := s.loadContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if content.CreatorID != userID {
		return nil, fmt.Errorf("%w: content %d", ErrNotOwner, contentID)
	}

	if update.Title != nil {
		content.Title = *update.Title
	}
	if update.Description != nil {
		content.Description = *update.Description
	}
	if update.Subject != nil {
		content.Subject = *update.Subject
	}
	if update.GradeLevels != nil {
		encoded, err := json.Marshal(update.GradeLevels)
		if err != nil {
			return nil, fmt.Errorf("failed to encode grade levels: %w", err)
		}
		content.GradeLevels = encoded
	}
	if update.FileURL != nil {
		content.FileURL = *update.FileURL
	}
	if update.FileSize != nil {
		content.FileSize = *update.FileSize
	}
	if update.ThumbnailURL != nil {
		content.ThumbnailURL = *update.ThumbnailURL
	}
	if update.Tags != nil {
		encoded, err := json.Marshal(update.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
		content.Tags = encoded
	}
	if update.IsDownloadable != nil {
		content.IsDownloadable = *update.IsDownloadable
	}

	if err := s.db.WithContext(ctx).Save(content).Error; err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}
	return content, nil
}

// DeleteContent removes a contributed item. Only the creator may delete.
func (s *ContentLibraryService) DeleteContent(ctx context.Context, userID, contentID uint) error {
	content, err := s.loadContent(ctx, contentID)
	if err != nil {
		return err
	}
	if content.CreatorID != userID {
		return fmt.Errorf("%w: content %d", ErrNotOwner, contentID)
	}

	if err := s.db.WithContext(ctx).Delete(content).Error; err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return nil
}

// VoteContent casts, switches or removes a user's vote on a contributed item.
// Casting the same vote again removes it; casting the opposite vote flips it.
// Content whose downvote ratio crosses the moderation threshold is flagged
// for review.
func (s *ContentLibraryService) VoteContent(ctx context.Context, userID, contentID uint, vote model.VoteKind) (*VoteSummary, error) {
	if !vote.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVote, vote)
	}

	content, err := s.loadContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	var existing model.ContentVote
	err = s.db.WithContext(ctx).
		Where("content_id = ? AND user_id = ?", contentID, userID).
		First(&existing).Error

	summary := &VoteSummary{UserVote: vote}

	switch {
	case err == gorm.ErrRecordNotFound:
		// First vote
		record := model.ContentVote{ContentID: contentID, UserID: userID, Vote: vote}
		if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, fmt.Errorf("failed to record vote: %w", err)
		}
		s.adjustVoteCount(content, vote, 1)

		// A fresh vote doubles as a coarse rating in the daily bucket
		rating := 5
		if vote == model.VoteDown {
			rating = 1
		}
		if err := s.engagement.RecordRating(ctx, model.ContentTypeUploaded, contentID, rating); err != nil {
			return nil, err
		}

	case err != nil:
		return nil, fmt.Errorf("failed to load vote: %w", err)

	case existing.Vote == vote:
		// Same vote again removes it
		if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to remove vote: %w", err)
		}
		s.adjustVoteCount(content, vote, -1)
		summary.UserVote = ""

	default:
		// Switch sides
		existing.Vote = vote
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update vote: %w", err)
		}
		s.adjustVoteCount(content, oppositeVote(vote), -1)
		s.adjustVoteCount(content, vote, 1)
	}

	totalVotes := content.Upvotes + content.Downvotes
	if totalVotes >= moderationMinVotes &&
		float64(content.Downvotes)/float64(totalVotes) > moderationDownvoteRatio {
		content.IsModerated = true
	}

	err = s.db.WithContext(ctx).Model(content).
		Updates(map[string]interface{}{
			"upvotes":      content.Upvotes,
			"downvotes":    content.Downvotes,
			"is_moderated": content.IsModerated,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update vote counts: %w", err)
	}

	summary.Upvotes = content.Upvotes
	summary.Downvotes = content.Downvotes
	return summary, nil
}

// DownloadContent resolves the file reference for a downloadable item and
// counts the download on the row and in today's engagement bucket.
func (s *ContentLibraryService) DownloadContent(ctx context.Context, contentID uint) (*DownloadInfo, error) {
	content, err := s.loadContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if !content.IsDownloadable {
		return nil, fmt.Errorf("%w: content %d", ErrNotDownloadable, contentID)
	}

	err = s.db.WithContext(ctx).Model(content).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count download: %w", err)
	}

	if err := s.engagement.RecordEngagement(ctx, model.ContentTypeUploaded, content.ID, EngagementDelta{Downloads: 1}); err != nil {
		return nil, err
	}

	return &DownloadInfo{
		FileURL:  content.FileURL,
		FileSize: content.FileSize,
		Title:    content.Title,
	}, nil
}

// AddComment attaches a comment, or a reply when parentID is set. Replies
// must reference a parent on the same content item.
func (s *ContentLibraryService) AddComment(ctx context.Context, userID, contentID uint, text string, parentID *uint) (*model.Comment, error) {
	if _, err := s.loadContent(ctx, contentID); err != nil {
		return nil, err
	}

	if parentID != nil {
		var parent model.Comment
		err := s.db.WithContext(ctx).First(&parent, *parentID).Error
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: %d", ErrCommentNotFound, *parentID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load parent comment: %w", err)
		}
		if parent.ContentID != contentID {
			return nil, fmt.Errorf("%w: comment %d", ErrParentCommentWrong, *parentID)
		}
	}

	comment := model.Comment{
		ContentID: contentID,
		UserID:    userID,
		Text:      text,
		ParentID:  parentID,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &comment, nil
}

// ListComments pages through a content item's live comments, newest first.
// With onlyTopLevel set it returns the thread roots; with parentID set it
// returns the replies to that comment.
func (s *ContentLibraryService) ListComments(ctx context.Context, contentID uint, parentID *uint, onlyTopLevel bool, offset, limit int) ([]model.Comment, int64, error) {
	if _, err := s.loadContent(ctx, contentID); err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("content_id = ? AND is_deleted = ?", contentID, false)
	if onlyTopLevel {
		query = query.Where("parent_id IS NULL")
	} else if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	var comments []model.Comment
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load comments: %w", err)
	}
	return comments, total, nil
}

// UpdateComment replaces a comment's text. Only the author may update.
func (s *ContentLibraryService) UpdateComment(ctx context.Context, userID, commentID uint, text string) (*model.Comment, error) {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, fmt.Errorf("%w: comment %d", ErrNotOwner, commentID)
	}

	comment.Text = text
	if err := s.db.WithContext(ctx).Save(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

// DeleteComment soft-deletes a comment, keeping the row so reply threads
// stay intact. Only the author may delete.
func (s *ContentLibraryService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return fmt.Errorf("%w: comment %d", ErrNotOwner, commentID)
	}

	err = s.db.WithContext(ctx).Model(comment).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"text":       "[This comment has been deleted]",
		}).Error
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func (s *ContentLibraryService) loadContent(ctx context.Context, contentID uint) (*model.UploadedContent, error) {
	var content model.UploadedContent
	if err := s.db.WithContext(ctx).First(&content, contentID).Error; err != nil {
		return nil, wrapNotFound(err, model.ContentTypeUploaded, contentID)
	}
	return &content, nil
}

func (s *ContentLibraryService) loadComment(ctx context.Context, commentID uint) (*model.Comment, error) {
	var comment model.Comment
	err := s.db.WithContext(ctx).First(&comment, commentID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: %d", ErrCommentNotFound, commentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return &comment, nil
}

func (s *ContentLibraryService) adjustVoteCount(content *model.UploadedContent, vote model.VoteKind, delta int64) {
	if vote == model.VoteUp {
		content.Upvotes += delta
	} else {
		content.Downvotes += delta
	}
}

func oppositeVote(vote model.VoteKind) model.VoteKind {
	if vote == model.VoteUp {
		return model.VoteDown
	}
	return model.VoteUp
}
