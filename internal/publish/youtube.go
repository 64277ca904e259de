package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"pinpoint/internal/config"
	"pinpoint/internal/logging"
)

// ErrMissingCredentials is returned when any OAuth value is absent.
var ErrMissingCredentials = errors.New("youtube credentials not configured")

// Error is an upload failure reported by the API.
type Error struct {
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" && e.Err != nil {
		body = e.Err.Error()
	}
	return fmt.Sprintf("youtube upload: http %d: %s", e.Status, body)
}

func (e *Error) Unwrap() error { return e.Err }

// Credentials are the OAuth2 values needed to mint access tokens.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// CredentialsFromConfig reads the [youtube] credentials.
func CredentialsFromConfig(cfg *config.Config) Credentials {
	return Credentials{
		ClientID:     cfg.YouTube.ClientID,
		ClientSecret: cfg.YouTube.ClientSecret,
		RefreshToken: cfg.YouTube.RefreshToken,
	}
}

func (c Credentials) complete() bool {
	return strings.TrimSpace(c.ClientID) != "" &&
		strings.TrimSpace(c.ClientSecret) != "" &&
		strings.TrimSpace(c.RefreshToken) != ""
}

// OAuthConfig returns the installed-app OAuth configuration for uploads.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     strings.TrimSpace(clientID),
		ClientSecret: strings.TrimSpace(clientSecret),
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
}

// inserter performs the videos.insert call.
type inserter interface {
	Insert(ctx context.Context, video *youtube.Video, media io.Reader) (*youtube.Video, error)
}

type serviceInserter struct {
	service *youtube.Service
}

func (s serviceInserter) Insert(ctx context.Context, video *youtube.Video, media io.Reader) (*youtube.Video, error) {
	return s.service.Videos.
		Insert([]string{"snippet", "status"}, video).
		Media(media, googleapi.ChunkSize(googleapi.DefaultUploadChunkSize)).
		Context(ctx).
		Do()
}

// Uploader publishes videos to a YouTube channel.
type Uploader struct {
	inserter inserter
	timeout  time.Duration
	logger   *slog.Logger
}

// NewUploader builds an uploader whose access tokens are refreshed from creds.
func NewUploader(ctx context.Context, creds Credentials, timeout time.Duration, logger *slog.Logger) (*Uploader, error) {
	if !creds.complete() {
		return nil, ErrMissingCredentials
	}
	conf := OAuthConfig(creds.ClientID, creds.ClientSecret, "")
	tokens := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: strings.TrimSpace(creds.RefreshToken)})
	service, err := youtube.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokens)))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return newUploader(serviceInserter{service: service}, timeout, logger), nil
}

// DeferredUploader builds the YouTube client on first Upload, so missing or
// rejected credentials fail the publish step instead of run setup.
type DeferredUploader struct {
	creds   Credentials
	timeout time.Duration
	logger  *slog.Logger
}

// NewDeferredUploader returns a publisher that resolves creds at upload time.
func NewDeferredUploader(creds Credentials, timeout time.Duration, logger *slog.Logger) *DeferredUploader {
	return &DeferredUploader{creds: creds, timeout: timeout, logger: logger}
}

// Upload builds the uploader and sends the file at path.
func (d *DeferredUploader) Upload(ctx context.Context, path string, meta Metadata) (string, error) {
	uploader, err := NewUploader(ctx, d.creds, d.timeout, d.logger)
	if err != nil {
		return "", err
	}
	return uploader.Upload(ctx, path, meta)
}

func newUploader(ins inserter, timeout time.Duration, logger *slog.Logger) *Uploader {
	return &Uploader{inserter: ins, timeout: timeout, logger: logging.NewComponentLogger(logger, "publish")}
}

// Upload sends the file at path with meta and returns the new video ID.
func (u *Uploader) Upload(ctx context.Context, path string, meta Metadata) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open video: %w", err)
	}
	defer file.Close()

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  meta.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           meta.Privacy,
			SelfDeclaredMadeForKids: meta.MadeForKids,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	u.logger.Info("uploading video", logging.String("path", path), logging.String("title", meta.Title))
	resp, err := u.inserter.Insert(ctx, video, file)
	if err != nil {
		return "", mapError(err)
	}
	if resp == nil || resp.Id == "" {
		return "", &Error{Status: http.StatusOK, Body: "response did not include a video id"}
	}
	return resp.Id, nil
}

func mapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		body := apiErr.Body
		if strings.TrimSpace(body) == "" {
			body = apiErr.Message
		}
		return &Error{Status: apiErr.Code, Body: body, Err: err}
	}
	return fmt.Errorf("youtube upload: %w", err)
}
