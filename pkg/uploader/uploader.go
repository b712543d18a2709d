package uploader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/williamokano/r2_uploader/pkg/capture"
	"github.com/williamokano/r2_uploader/pkg/link"
	"github.com/williamokano/r2_uploader/pkg/pathtemplate"
	"github.com/williamokano/r2_uploader/pkg/settings"
	"github.com/williamokano/r2_uploader/pkg/storage"
)

// Editor is the edit target the generated links are inserted into
type Editor interface {
	ReplaceSelection(text string) error
}

// Workspace exposes the currently active document, if any
type Workspace interface {
	ActiveDocument() *pathtemplate.Document
}

// Notifier shows short, transient messages to the user
type Notifier interface {
	Notice(msg string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(msg string)

func (f NotifierFunc) Notice(msg string) { f(msg) }

// Result describes one uploaded file
type Result struct {
	Key  string // object key inside the bucket
	URL  string // public URL under the base URL
	Link string // markdown inserted into the note
}

// Uploader uploads captured files and inserts links to them
type Uploader struct {
	settings *settings.Store
	clients  *clientCache
	now      func() time.Time
	newID    func() string
	notifier Notifier
	logger   zerolog.Logger
}

// Option configures an Uploader
type Option func(*Uploader)

// WithStoreFactory replaces the S3 client constructor
func WithStoreFactory(factory StoreFactory) Option {
	return func(u *Uploader) {
		u.clients = newClientCache(u.settings, factory)
	}
}

// WithClock replaces time.Now for the {year}/{month}/{day} variables
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) { u.now = now }
}

// WithIDGenerator replaces the {uuid} generator
func WithIDGenerator(newID func() string) Option {
	return func(u *Uploader) { u.newID = newID }
}

// WithNotifier sets where success and failure notices go
func WithNotifier(n Notifier) Option {
	return func(u *Uploader) { u.notifier = n }
}

// WithLogger sets the diagnostic logger
func WithLogger(logger zerolog.Logger) Option {
	return func(u *Uploader) { u.logger = logger }
}

// New creates an Uploader reading its configuration from store
func New(store *settings.Store, opts ...Option) *Uploader {
	u := &Uploader{
		settings: store,
		clients:  newClientCache(store, DefaultStoreFactory),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(u)
	}

	if u.notifier == nil {
		logger := u.logger
		u.notifier = NotifierFunc(func(msg string) {
			logger.Info().Msg(msg)
		})
	}

	return u
}

// HandlePaste handles a paste event. It returns false, doing nothing,
// when the clipboard carries no files. A non-nil error has already been
// logged and shown to the user.
func (u *Uploader) HandlePaste(ctx context.Context, event capture.PasteEvent, ed Editor, ws Workspace) (bool, error) {
	if len(event.Files) == 0 {
		return false, nil
	}
	return true, u.UploadAndInsert(ctx, event.Files, ed, ws)
}

// HandleDrop handles a drop event, with the same contract as HandlePaste
func (u *Uploader) HandleDrop(ctx context.Context, event capture.DropEvent, ed Editor, ws Workspace) (bool, error) {
	if len(event.Files) == 0 {
		return false, nil
	}
	return true, u.UploadAndInsert(ctx, event.Files, ed, ws)
}

// UploadAndInsert uploads files in order and inserts all links as one
// block at the editor selection. Any failure aborts the whole batch:
// nothing is inserted and a single failure notice is shown.
func (u *Uploader) UploadAndInsert(ctx context.Context, files []capture.File, ed Editor, ws Workspace) error {
	results, err := u.Upload(ctx, files, ws)
	if err == nil {
		err = ed.ReplaceSelection(JoinLinks(results))
	}

	if err != nil {
		u.logger.Error().Err(err).Int("files", len(files)).Msg("upload batch failed")
		u.notifier.Notice(fmt.Sprintf("R2 upload failed: %s", err.Error()))
		return err
	}

	u.notifier.Notice(fmt.Sprintf("Uploaded %d file(s) to R2", len(files)))
	return nil
}

// Upload uploads files sequentially and returns one Result per file.
// Readiness is checked once, before any request is made.
func (u *Uploader) Upload(ctx context.Context, files []capture.File, ws Workspace) ([]Result, error) {
	if len(files) == 0 {
		return nil, nil
	}

	cfg := u.settings.Get()
	if err := checkReady(cfg); err != nil {
		return nil, err
	}

	if _, unknown := pathtemplate.Placeholders(cfg.Path); len(unknown) > 0 {
		u.logger.Warn().Strs("placeholders", unknown).Msg("unknown placeholders render as empty")
	}

	store, err := u.clients.get(ctx)
	if err != nil {
		return nil, err
	}

	var doc *pathtemplate.Document
	if ws != nil {
		doc = ws.ActiveDocument()
	}

	results := make([]Result, 0, len(files))
	for _, f := range files {
		result, err := u.uploadFile(ctx, store, cfg, f, doc)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

func (u *Uploader) uploadFile(ctx context.Context, store storage.ObjectStore, cfg settings.Settings, f capture.File, doc *pathtemplate.Document) (Result, error) {
	tctx := pathtemplate.NewContext(u.now(), u.newID(), f.Name, doc)
	key := pathtemplate.Render(cfg.Path, tctx)
	if key == "" {
		return Result{}, storage.NewConfigurationError("path", "path template rendered an empty key")
	}

	fileLog := u.logger.With().Str("file", f.Name).Str("key", key).Logger()

	body, err := f.Bytes()
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	if err := store.Put(ctx, key, f.Type, body); err != nil {
		return Result{}, err
	}

	url := link.PublicURL(cfg.BaseURL, key)
	fileLog.Info().
		Str("store", store.Name()).
		Int("size_bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("uploaded")

	return Result{
		Key:  key,
		URL:  url,
		Link: link.Markdown(url, f.Type, f.Name),
	}, nil
}

// checkReady rejects settings that cannot produce a link
func checkReady(cfg settings.Settings) error {
	if cfg.Bucket == "" {
		return storage.NewConfigurationError("bucket", "bucket is empty")
	}
	if cfg.BaseURL == "" {
		return storage.NewConfigurationError("baseUrl", "baseUrl (CDN) is empty")
	}
	if cfg.Path == "" {
		return storage.NewConfigurationError("path", "path template is empty")
	}
	return nil
}

// JoinLinks joins the links of results with newlines
func JoinLinks(results []Result) string {
	links := make([]string, len(results))
	for i, r := range results {
		links[i] = r.Link
	}
	return strings.Join(links, "\n")
}
