package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/manifestlabs/manifest/internal/capability"
	"github.com/manifestlabs/manifest/internal/clips"
	"github.com/manifestlabs/manifest/internal/config"
	"github.com/manifestlabs/manifest/internal/ffmpeg"
	"github.com/manifestlabs/manifest/internal/logging"
	"github.com/manifestlabs/manifest/internal/pipeline"
	"github.com/manifestlabs/manifest/internal/queue"
	"github.com/manifestlabs/manifest/internal/segment"
	"github.com/manifestlabs/manifest/internal/store"
	"github.com/manifestlabs/manifest/internal/viral"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "manifest",
	Short: "manifest - video analysis and clip-synthesis engine",
	Long:  "Analyzes videos for scene boundaries and viral potential, then extracts platform-formatted clips with thumbnails.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(scenesCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	processID      string
	processOut     string
	noTranscribe   bool
	noScenes       bool
	noViral        bool
	noClips        bool
	flagNumClips   int
	flagClipLength float64
	flagPlatform   string
)

var processCmd = &cobra.Command{
	Use:   "process [input video]",
	Short: "Run the full analysis pipeline on a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, closeFn, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		settings := settingsFromFlags(cfg)

		videoID := processID
		if videoID == "" {
			videoID = uuid.New().String()
		}

		result, err := pipe.Process(cmd.Context(), videoID, args[0], settings)
		if err != nil {
			return err
		}

		return writeJSON(result, processOut)
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [input video]",
	Short: "Print video metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg)
		if err != nil {
			return err
		}

		info, err := exec.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return writeJSON(map[string]interface{}{
			"path":     info.FilePath,
			"duration": info.Duration.Seconds(),
			"width":    info.Width,
			"height":   info.Height,
			"fps":      info.FPS,
			"codec":    info.VideoCodec,
		}, "")
	},
}

var scenesCmd = &cobra.Command{
	Use:   "scenes [input video]",
	Short: "Detect scene boundaries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg)
		if err != nil {
			return err
		}

		info, err := exec.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		segmenter := segment.New(log.Logger, exec, cfg.Segmenter)
		scenes, err := segmenter.Segment(cmd.Context(), info)
		if err != nil {
			return err
		}

		return writeJSON(scenes, "")
	},
}

var scoreTranscript string

var scoreCmd = &cobra.Command{
	Use:   "score [input video]",
	Short: "Score viral potential and suggest titles/hashtags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg)
		if err != nil {
			return err
		}

		info, err := exec.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		transcript := ""
		if scoreTranscript != "" {
			data, err := os.ReadFile(scoreTranscript)
			if err != nil {
				return err
			}
			transcript = strings.TrimSpace(string(data))
		}

		scorer := viral.NewScorer(log.Logger, buildSentiment(cfg), viral.NewSeededJitter(cfg.Scoring.JitterSeed))
		analysis := scorer.Score(cmd.Context(), info, transcript)

		return writeJSON(analysis, "")
	},
}

var workerCount int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process every video in the uploads directory concurrently",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, closeFn, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		workers := workerCount
		if workers <= 0 {
			workers = cfg.Concurrency
		}

		entries, err := os.ReadDir(cfg.UploadsDir)
		if err != nil {
			return fmt.Errorf("failed to read uploads dir: %w", err)
		}

		pool := queue.New(log.Logger, pipe, workers)
		pool.Start(cmd.Context())

		enqueued := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(cfg.UploadsDir, entry.Name())
			videoID := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			if _, err := pool.Enqueue(videoID, path, settingsFromFlags(cfg)); err != nil {
				log.Warn().Err(err).Str("video", entry.Name()).Msg("could not enqueue")
				continue
			}
			enqueued++
		}

		pool.Stop()
		log.Info().Int("videos", enqueued).Msg("backlog processed")
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [input video]",
	Short: "Copy a video into the uploads directory under a unique name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		media, err := store.NewMediaStore(log.Logger, cfg.UploadsDir, cfg.ClipsDir, cfg.ProcessedDir)
		if err != nil {
			return err
		}

		name, err := media.Ingest(args[0])
		if err != nil {
			return err
		}

		fmt.Println(media.UploadPath(name))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the current configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		path := "./config.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if err := cfg.Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)

	processCmd.Flags().StringVar(&processID, "id", "", "video id (default: random)")
	processCmd.Flags().StringVarP(&processOut, "out", "o", "", "write result JSON to file instead of stdout")

	for _, cmd := range []*cobra.Command{processCmd, workerCmd} {
		cmd.Flags().BoolVar(&noTranscribe, "no-transcribe", false, "skip transcription")
		cmd.Flags().BoolVar(&noScenes, "no-scenes", false, "skip scene detection")
		cmd.Flags().BoolVar(&noViral, "no-viral", false, "skip viral analysis")
		cmd.Flags().BoolVar(&noClips, "no-clips", false, "skip clip generation")
		cmd.Flags().IntVar(&flagNumClips, "clips", 0, "number of clips to generate")
		cmd.Flags().Float64Var(&flagClipLength, "clip-duration", 0, "maximum clip duration in seconds")
		cmd.Flags().StringVar(&flagPlatform, "platform", "", "target platform (youtube_short, tiktok, instagram_reel, youtube, other)")
	}

	scoreCmd.Flags().StringVar(&scoreTranscript, "transcript", "", "transcript file to include in scoring")
	workerCmd.Flags().IntVar(&workerCount, "workers", 0, "worker count (default: config concurrency)")
}

// settingsFromFlags layers CLI flags over config defaults
func settingsFromFlags(cfg *config.Config) pipeline.Settings {
	settings := pipeline.DefaultSettings()
	settings.NumClips = cfg.Clips.NumClips
	settings.ClipDuration = cfg.Clips.ClipDuration
	settings.Platform = cfg.Clips.Platform
	settings.ThumbQuality = cfg.Clips.ThumbQuality

	settings.Transcribe = !noTranscribe
	settings.DetectScenes = !noScenes
	settings.AnalyzeViral = !noViral
	settings.GenerateClips = !noClips

	if flagNumClips > 0 {
		settings.NumClips = flagNumClips
	}
	if flagClipLength > 0 {
		settings.ClipDuration = flagClipLength
	}
	if flagPlatform != "" {
		settings.Platform = flagPlatform
	}
	return settings
}

// buildPipeline wires the pipeline from config. Optional capabilities
// that fail to initialize degrade to their unavailable variants.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg)
	if err != nil {
		return nil, nil, err
	}

	media, err := store.NewMediaStore(log.Logger, cfg.UploadsDir, cfg.ClipsDir, cfg.ProcessedDir)
	if err != nil {
		return nil, nil, err
	}

	var stt capability.SpeechToText = capability.UnavailableSpeechToText{}
	if cfg.Whisper.Enabled {
		whisper, err := capability.NewWhisperTranscriber(log.Logger, cfg.Whisper.Model)
		if err != nil {
			log.Warn().Err(err).Msg("transcription unavailable")
		} else {
			stt = whisper
		}
	}

	var cache capability.KeyValueCache = capability.NopCache{}
	if cfg.Cache.Path != "" {
		sqliteCache, err := store.NewSQLiteCache(cfg.Cache.Path)
		if err != nil {
			log.Warn().Err(err).Msg("result cache unavailable")
		} else {
			cache = sqliteCache
		}
	}

	pipe, err := pipeline.New(log.Logger, pipeline.Deps{
		Prober:       exec,
		Segmenter:    segment.New(log.Logger, exec, cfg.Segmenter),
		Scorer:       viral.NewScorer(log.Logger, buildSentiment(cfg), viral.NewSeededJitter(cfg.Scoring.JitterSeed)),
		Synthesizer:  clips.New(log.Logger, exec, media.ClipsDir, media.ProcessedDir),
		SpeechToText: stt,
		Cache:        cache,
	}, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	if err != nil {
		return nil, nil, err
	}

	return pipe, func() { _ = cache.Close() }, nil
}

// buildSentiment returns the configured classifier or the explicit
// unavailable variant
func buildSentiment(cfg *config.Config) capability.SentimentClassifier {
	if !cfg.Sentiment.Enabled || len(cfg.Sentiment.Command) == 0 {
		return capability.UnavailableSentiment{}
	}

	classifier, err := capability.NewCommandClassifier(log.Logger, cfg.Sentiment.Command)
	if err != nil {
		log.Warn().Err(err).Msg("sentiment classification unavailable")
		return capability.UnavailableSentiment{}
	}
	return classifier
}

// writeJSON prints v as indented JSON to stdout or to a file
func writeJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
