package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config stores runtime configuration for the app.
type Config struct {
	Storage StorageConfig
	Audio   AudioConfig
	Whisper WhisperConfig
	Log     LogConfig
}

type StorageConfig struct {
	DataDir string
}

type AudioConfig struct {
	FFMPEGCommand string
	FFPlayCommand string
	InputFormat   string
	InputDevice   string
	SampleRate    int
	Channels      int
}

type WhisperConfig struct {
	Command   string
	ModelsDir string
	Model     string
	Language  string
	Threads   int
}

type LogConfig struct {
	Level string
}

// Load resolves configuration from WHISPERBOARD_* environment variables,
// an optional config file in the data dir, and defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.Wrap(err, "could not determine home directory")
	}
	dataDir := filepath.Join(home, ".whisperboard")

	v := viper.New()
	v.SetEnvPrefix("whisperboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.datadir", dataDir)
	v.SetDefault("audio.ffmpegcommand", "ffmpeg")
	v.SetDefault("audio.ffplaycommand", "ffplay")
	v.SetDefault("audio.inputformat", defaultInputFormat())
	v.SetDefault("audio.inputdevice", "default")
	v.SetDefault("audio.samplerate", 16000)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("whisper.command", "whisper-cli")
	v.SetDefault("whisper.modelsdir", filepath.Join(dataDir, "models"))
	v.SetDefault("whisper.model", "base.en")
	v.SetDefault("whisper.language", "")
	v.SetDefault("whisper.threads", 0)
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("storage.datadir"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(errors.Cause(err)) {
			return Config{}, errors.Wrap(err, "read config file")
		}
	}

	cfg := Config{
		Storage: StorageConfig{
			DataDir: v.GetString("storage.datadir"),
		},
		Audio: AudioConfig{
			FFMPEGCommand: v.GetString("audio.ffmpegcommand"),
			FFPlayCommand: v.GetString("audio.ffplaycommand"),
			InputFormat:   v.GetString("audio.inputformat"),
			InputDevice:   v.GetString("audio.inputdevice"),
			SampleRate:    v.GetInt("audio.samplerate"),
			Channels:      v.GetInt("audio.channels"),
		},
		Whisper: WhisperConfig{
			Command:   v.GetString("whisper.command"),
			ModelsDir: v.GetString("whisper.modelsdir"),
			Model:     v.GetString("whisper.model"),
			Language:  v.GetString("whisper.language"),
			Threads:   v.GetInt("whisper.threads"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	return cfg, nil
}

func defaultInputFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "pulse"
	}
}
