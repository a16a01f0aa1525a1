package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"video-portal/constant"
	"video-portal/dto"
	"video-portal/entities"
	"video-portal/repository"
)

// ObjectStorage is the subset of *minio.Client the catalog needs.
type ObjectStorage interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Publisher sends one JSON message to a fixed exchange and routing key.
type Publisher interface {
	Publish(ctx context.Context, payload any) error
}

type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type UploadInput struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Duration    string
	Video       UploadFile
	// Thumbnail is optional; Reader is nil when none was sent.
	Thumbnail UploadFile
}

type CatalogConfig struct {
	Bucket       string
	MediaBaseURL string
}

type CatalogService interface {
	List(ctx context.Context, filter repository.VideoFilter) ([]*entities.Video, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Video, error)
	Categories(ctx context.Context) ([]string, error)
	Upload(ctx context.Context, in UploadInput) (*entities.Video, *entities.Job, error)
	Update(ctx context.Context, id uuid.UUID, req dto.VideoUpdateRequest) (*entities.Video, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Job(ctx context.Context, id uuid.UUID) (*entities.Job, error)
}

type catalogService struct {
	repo      repository.Repository
	storage   ObjectStorage
	publisher Publisher
	cfg       CatalogConfig
}

// NewCatalogService builds the catalog. publisher may be nil, in which case
// uploads are stored but no transcode job is announced.
func NewCatalogService(repo repository.Repository, storage ObjectStorage, publisher Publisher, cfg CatalogConfig) CatalogService {
	return &catalogService{repo: repo, storage: storage, publisher: publisher, cfg: cfg}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "video"
	}
	return name
}

// VideoObjectName is where an uploaded file is stored.
func VideoObjectName(publicID, fileName string) string {
	return path.Join("videos", publicID, sanitizeFileName(fileName))
}

// ThumbnailObjectName is where a video's thumbnail lives, uploaded or generated.
func ThumbnailObjectName(publicID string) string {
	return path.Join("thumbnails", publicID+".jpg")
}

func (s *catalogService) objectURL(objectName string) string {
	return strings.TrimRight(s.cfg.MediaBaseURL, "/") + "/" + s.cfg.Bucket + "/" + objectName
}

func (s *catalogService) List(ctx context.Context, filter repository.VideoFilter) ([]*entities.Video, error) {
	return s.repo.ListVideos(ctx, filter)
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	return s.repo.FindVideoById(ctx, id)
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

func (s *catalogService) Job(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	return s.repo.FindJobById(ctx, id)
}

func (s *catalogService) Upload(ctx context.Context, in UploadInput) (*entities.Video, *entities.Job, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Video.Reader == nil {
		return nil, nil, fmt.Errorf("%w: video file is required", ErrInvalidInput)
	}

	publicID := uuid.NewString()
	objectName := VideoObjectName(publicID, in.Video.Name)
	logger := zerolog.Ctx(ctx).With().Str("public_id", publicID).Logger()

	logger.Info().Str("object", objectName).Int64("size", in.Video.Size).Msg("uploading video")
	_, err := s.storage.PutObject(ctx, s.cfg.Bucket, objectName, in.Video.Reader, in.Video.Size, minio.PutObjectOptions{
		ContentType: in.Video.ContentType,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to upload video")
		return nil, nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	thumbnailStored := false
	if in.Thumbnail.Reader != nil {
		_, err := s.storage.PutObject(ctx, s.cfg.Bucket, ThumbnailObjectName(publicID), in.Thumbnail.Reader, in.Thumbnail.Size, minio.PutObjectOptions{
			ContentType: in.Thumbnail.ContentType,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to upload thumbnail")
		} else {
			thumbnailStored = true
		}
	}

	video := &entities.Video{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Category:     strings.TrimSpace(in.Category),
		Tags:         cleanTags(in.Tags),
		Duration:     strings.TrimSpace(in.Duration),
		MediaURL:     s.objectURL(objectName),
		ObjectName:   objectName,
		PublicID:     publicID,
		ThumbnailURL: s.objectURL(ThumbnailObjectName(publicID)),
	}
	job := &entities.Job{
		EntityType: constant.EntityTypeVideo,
		Status:     constant.JobStatusPending,
		JobType:    constant.JobTypeTranscoder,
	}
	err = s.repo.Transaction(ctx, func(ctx context.Context, tx repository.Repository) error {
		if err := tx.CreateVideo(ctx, video); err != nil {
			return err
		}
		job.EntityId = video.ID
		return tx.CreateJob(ctx, job)
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to save video")
		s.removeObject(ctx, objectName)
		if thumbnailStored {
			s.removeObject(ctx, ThumbnailObjectName(publicID))
		}
		return nil, nil, err
	}

	s.announce(ctx, job, objectName, in.Video.Name)
	logger.Info().Str("video_id", video.ID.String()).Str("job_id", job.ID.String()).Msg("video uploaded")
	return video, job, nil
}

// announce publishes the transcode request. A failed publish marks the job
// failed but keeps the uploaded video.
func (s *catalogService) announce(ctx context.Context, job *entities.Job, objectName, fileName string) {
	if s.publisher == nil {
		zerolog.Ctx(ctx).Warn().Str("job_id", job.ID.String()).Msg("no queue configured, transcode job not published")
		return
	}
	err := s.publisher.Publish(ctx, dto.JobMessage{
		JobId:      job.ID,
		ObjectPath: objectName,
		FileName:   sanitizeFileName(fileName),
	})
	if err == nil {
		return
	}
	zerolog.Ctx(ctx).Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to publish transcode job")
	if err := s.repo.UpdateStatusJob(ctx, constant.JobStatusFailed, job.ID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to update job status")
		return
	}
	job.Status = constant.JobStatusFailed
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req dto.VideoUpdateRequest) (*entities.Video, error) {
	video, err := s.repo.FindVideoById(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		video.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.Category != nil {
		video.Category = strings.TrimSpace(*req.Category)
	}
	if req.Duration != nil {
		video.Duration = strings.TrimSpace(*req.Duration)
	}
	if req.Tags != nil {
		video.Tags = cleanTags(req.Tags)
	}
	if err := s.repo.SaveVideo(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	video, err := s.repo.FindVideoById(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteVideo(ctx, id); err != nil {
		return err
	}
	if video.ObjectName != "" {
		s.removeObject(ctx, video.ObjectName)
	}
	if video.PublicID != "" {
		s.removeObject(ctx, ThumbnailObjectName(video.PublicID))
	}
	zerolog.Ctx(ctx).Info().Str("video_id", id.String()).Msg("video deleted")
	return nil
}

func (s *catalogService) removeObject(ctx context.Context, objectName string) {
	if err := s.storage.RemoveObject(ctx, s.cfg.Bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("object", objectName).Msg("failed to remove object")
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}
