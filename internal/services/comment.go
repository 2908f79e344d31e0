package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventticketing/internal/domain"
)

const maxCommentLength = 2000

type commentService struct {
	commentRepo domain.CommentRepository
	eventRepo   domain.EventRepository
}

// NewCommentService creates a CommentService.
func NewCommentService(commentRepo domain.CommentRepository, eventRepo domain.EventRepository) domain.CommentService {
	return &commentService{
		commentRepo: commentRepo,
		eventRepo:   eventRepo,
	}
}

func (s *commentService) Create(ctx context.Context, eventID, userID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment body is required", domain.ErrInvalidInput)
	}
	if len(body) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", domain.ErrInvalidInput, maxCommentLength)
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	now := time.Now()
	comment := &domain.Comment{
		UserID:    userID,
		EventID:   eventID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Comment, int, error) {
	comments, total, err := s.commentRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return comments, total, nil
}

func (s *commentService) Delete(ctx context.Context, commentID, requesterID, requesterRole string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get comment: %w", err)
	}

	allowed := comment.UserID == requesterID || requesterRole == domain.RoleAdmin
	if !allowed {
		event, err := s.eventRepo.GetByID(ctx, comment.EventID)
		if err == nil && event.OrganizerID == requesterID {
			allowed = true
		}
	}
	if !allowed {
		return domain.ErrForbidden
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
