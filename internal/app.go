package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
)

// TranscriptSource downloads the caption track referenced by a watch page
type TranscriptSource interface {
	Transcript(ctx context.Context, id string, page []byte) (*Transcript, error)
}

// App holds the application state and dependencies
type App struct {
	fetcher       Fetcher
	extractor     *Extractor
	transcripts   TranscriptSource
	ai            *AI
	promptManager *PromptManager
	config        *Config
	ui            UIManager
	logger        *slog.Logger

	store     *Store
	storeOnce sync.Once
	storeErr  error
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	httpFetcher := NewHTTPFetcher(config.UserAgent, config.Language, config.FetchTimeout, WithRateLimit(config.FetchRate))

	app := &App{
		fetcher:       httpFetcher,
		transcripts:   NewTranscriptFetcher(httpFetcher, config.Language),
		ai:            NewAIWithEndpoint(config.OllamaURL, config.APIKey, config.OllamaModel, config.ChatTimeout),
		promptManager: NewPromptManager(config.ConfigDir, config.Prompt),
		config:        config,
		ui:            NewUIManager(config.Quiet, IsTerminal()),
		logger:        slog.New(slog.DiscardHandler),
	}

	for _, option := range options {
		option(app)
	}

	app.extractor = NewExtractor(app.logger)

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithFetcher sets a custom watch page fetcher
func WithFetcher(fetcher Fetcher) AppOption {
	return func(a *App) {
		a.fetcher = fetcher
	}
}

// WithTranscripts sets a custom transcript source
func WithTranscripts(transcripts TranscriptSource) AppOption {
	return func(a *App) {
		a.transcripts = transcripts
	}
}

// WithAI sets a custom AI processor
func WithAI(ai *AI) AppOption {
	return func(a *App) {
		a.ai = ai
	}
}

// WithStore sets an already opened store
func WithStore(store *Store) AppOption {
	return func(a *App) {
		a.store = store
		a.storeOnce.Do(func() {})
	}
}

// WithLogger sets the logger used for diagnostics, including extraction fallbacks
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// SetPromptManager sets a new prompt manager
func (app *App) SetPromptManager(pm *PromptManager) {
	app.promptManager = pm
}

// Store returns the database, opening it and creating the tables on first use
func (app *App) Store(ctx context.Context) (*Store, error) {
	app.storeOnce.Do(func() {
		app.store, app.storeErr = OpenDatabase(ctx, app.config.DatabaseURL, app.config.SchemaFile)
	})
	return app.store, app.storeErr
}

// Close releases the database handle if it was opened
func (app *App) Close() error {
	if app.store == nil {
		return nil
	}
	return app.store.Close()
}

// OpenDatabase opens the store and creates the schema when the database is new.
// PostgreSQL schemas are applied every time since they only create missing tables.
func OpenDatabase(ctx context.Context, databaseURL, schemaFile string) (*Store, error) {
	dialect, _, dsn, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	isNew := dialect == DialectPostgres || !IsSQLite3DB(dsn)
	if dialect == DialectSQLite && isNew {
		if err := EnsureDirs(filepath.Dir(dsn)); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	store, err := OpenStore(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if isNew {
		if err := store.Init(ctx, schemaFile); err != nil {
			store.Close()
			return nil, fmt.Errorf("initializing database: %w", err)
		}
	}
	return store, nil
}

// VideoInfo returns the record for id, from the store unless refresh is set
func (app *App) VideoInfo(ctx context.Context, id string, refresh bool) (VideoRecord, error) {
	return app.VideoInfoWithStatus(ctx, id, refresh, false)
}

// VideoInfoWithStatus is VideoInfo with an optional status spinner
func (app *App) VideoInfoWithStatus(ctx context.Context, id string, refresh, showStatus bool) (VideoRecord, error) {
	if id == "" {
		return VideoRecord{}, ErrEmptyVideoID
	}

	store, err := app.Store(ctx)
	if err != nil {
		return VideoRecord{}, err
	}

	if !refresh {
		record, err := store.Video(ctx, id)
		if err == nil {
			app.logger.Debug("using stored video record", "video_id", id)
			return record, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return VideoRecord{}, err
		}
	}

	spinner := app.spinner(showStatus, "Fetching video page...")
	defer spinner.Finish()

	record, _, err := app.fetchRecord(ctx, id)
	if err != nil {
		return VideoRecord{}, err
	}

	spinner.Describe("Saving video record...")
	spinner.Advance()
	if err := store.SaveVideo(ctx, record); err != nil {
		return VideoRecord{}, err
	}

	return record, nil
}

// fetchRecord downloads the watch page and extracts the record from it.
// The page is returned so callers can reuse it for the transcript.
func (app *App) fetchRecord(ctx context.Context, id string) (VideoRecord, []byte, error) {
	app.logger.Debug("fetching watch page", "video_id", id)

	page, err := app.fetcher.Fetch(ctx, id)
	if err != nil {
		return VideoRecord{}, nil, err
	}

	record, err := app.extractor.Extract(id, page)
	if err != nil {
		return VideoRecord{}, nil, err
	}

	app.logger.Debug("extracted video record", "video_id", id, "title", record.Title,
		"views", record.Views, "likes", record.Likes, "dislikes", record.Dislikes)
	return record, page, nil
}

// VideoText fetches the record and transcript for id, stores both and returns
// the transcript as plain text
func (app *App) VideoText(ctx context.Context, id string) (string, error) {
	return app.VideoTextWithStatus(ctx, id, false)
}

// VideoTextWithStatus is VideoText with an optional status spinner
func (app *App) VideoTextWithStatus(ctx context.Context, id string, showStatus bool) (string, error) {
	if id == "" {
		return "", ErrEmptyVideoID
	}

	store, err := app.Store(ctx)
	if err != nil {
		return "", err
	}

	spinner := app.spinner(showStatus, "Fetching video page...")
	defer spinner.Finish()

	record, page, err := app.fetchRecord(ctx, id)
	if err != nil {
		return "", err
	}
	if err := store.SaveVideo(ctx, record); err != nil {
		return "", err
	}

	spinner.Describe("Fetching captions...")
	spinner.Advance()

	transcript, err := app.transcripts.Transcript(ctx, id, page)
	if err != nil {
		return "", err
	}

	spinner.Describe("Saving transcript...")
	spinner.Advance()

	if err := store.SaveTranscript(ctx, transcript); err != nil {
		return "", err
	}
	text := transcript.Text()
	if err := store.SaveTranscriptFile(ctx, id, []byte(text)); err != nil {
		return "", err
	}

	app.logger.Debug("stored transcript", "video_id", id, "segments", len(transcript.Segments),
		"language", transcript.LanguageCode, "generated", transcript.IsGenerated)
	return text, nil
}

// storedText returns a previously stored transcript for id, fetching it when missing
func (app *App) storedText(ctx context.Context, id string, showStatus bool) (string, error) {
	store, err := app.Store(ctx)
	if err != nil {
		return "", err
	}

	segments, err := store.TranscriptSegments(ctx, id)
	if err == nil {
		app.logger.Debug("using stored transcript", "video_id", id)
		return FormatTranscript(segments), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	return app.VideoTextWithStatus(ctx, id, showStatus)
}

// Chat sends a prompt to the model and stores the response
func (app *App) Chat(ctx context.Context, model, role, prompt string) (*ChatResponse, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt is empty")
	}

	resp, err := app.ai.Chat(ctx, model, role, prompt)
	if err != nil {
		return nil, err
	}

	if err := app.saveChatResponse(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Summarize builds a prompt from the video's record and transcript, asks the
// model for a summary and stores the response. It returns raw markdown.
func (app *App) Summarize(ctx context.Context, id, model string) (*ChatResponse, error) {
	showStatus := !app.config.Quiet

	text, err := app.storedText(ctx, id, showStatus)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("transcript for %s is empty", id)
	}

	record, err := app.VideoInfo(ctx, id, false)
	if err != nil {
		return nil, err
	}

	prompt, err := app.promptManager.CreatePrompt(text, &record)
	if err != nil {
		return nil, fmt.Errorf("creating prompt: %w", err)
	}

	spinner := app.spinner(showStatus, "Generating summary...")
	resp, err := app.ai.Chat(ctx, model, "user", prompt)
	spinner.Finish()
	if err != nil {
		return nil, fmt.Errorf("generating summary: %w", err)
	}

	resp.VideoID = id
	if err := app.saveChatResponse(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteVideo removes a stored video and its transcript
func (app *App) DeleteVideo(ctx context.Context, id string) error {
	store, err := app.Store(ctx)
	if err != nil {
		return err
	}
	return store.DeleteVideo(ctx, id)
}

func (app *App) saveChatResponse(ctx context.Context, resp *ChatResponse) error {
	store, err := app.Store(ctx)
	if err != nil {
		return err
	}
	rowID, err := store.SaveChatResponse(ctx, resp)
	if err != nil {
		return err
	}
	app.logger.Debug("stored chat response", "id", rowID, "model", resp.Model, "video_id", resp.VideoID)
	return nil
}

func (app *App) spinner(show bool, description string) ProgressBar {
	if !show || app.config.Verbose {
		return SilentProgressBar{}
	}
	return app.ui.NewSpinner(description)
}
