package bootstrap

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AI-Jie01/Whisperboard/internal/audio"
	"github.com/AI-Jie01/Whisperboard/internal/config"
	"github.com/AI-Jie01/Whisperboard/internal/models"
	"github.com/AI-Jie01/Whisperboard/internal/ports"
	"github.com/AI-Jie01/Whisperboard/internal/storage"
	"github.com/AI-Jie01/Whisperboard/internal/usecase"
	"github.com/AI-Jie01/Whisperboard/internal/whisper"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.Controller
	Store      *storage.FileStore
	Writer     *storage.Writer
	Selector   *models.DirSelector
	Config     config.Config
	Log        zerolog.Logger
}

// UUIDGen allocates recording ids. The generator is injected everywhere
// else so tests can substitute a deterministic one.
type UUIDGen struct{}

func (UUIDGen) NewID() string { return uuid.NewString() }

// SystemClock is the production ports.Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Build wires all dependencies for the current runtime.
func Build(sink ports.StateSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	log := newLogger(cfg.Log.Level)

	idGen := UUIDGen{}
	store, err := storage.NewFileStore(cfg.Storage.DataDir, idGen, log)
	if err != nil {
		return Services{}, err
	}
	writer := storage.NewWriter(store, log)
	selector := models.NewDirSelector(cfg.Whisper.ModelsDir, cfg.Whisper.Model)

	audioCfg := audio.Config{
		Command:     cfg.Audio.FFMPEGCommand,
		InputFormat: cfg.Audio.InputFormat,
		InputDevice: cfg.Audio.InputDevice,
		SampleRate:  cfg.Audio.SampleRate,
		Channels:    cfg.Audio.Channels,
	}

	controller := usecase.NewController(usecase.Deps{
		Recorder:   audio.NewFFMPEGRecorder(audioCfg),
		Player:     audio.NewFFPlayPlayer(cfg.Audio.FFPlayCommand),
		Permission: audio.NewProbePermission(audioCfg),
		Engine:     whisper.NewCLIEngine(cfg.Whisper.Command, cfg.Whisper.Language, cfg.Whisper.Threads),
		Selector:   selector,
		Store:      store,
		Persister:  writer,
		IDGen:      idGen,
		Clock:      SystemClock{},
		Sink:       sink,
		Log:        log,
	})

	return Services{
		Controller: controller,
		Store:      store,
		Writer:     writer,
		Selector:   selector,
		Config:     cfg,
		Log:        log,
	}, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(lvl).
		With().Timestamp().Logger()
}
