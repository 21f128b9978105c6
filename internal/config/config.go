package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Vision     VisionConfig
	Liveness   LivenessConfig
	Detection  DetectionConfig
	Recognizer RecognizerConfig
	Attendance AttendanceConfig
	Gallery    GalleryConfig
	Database   DatabaseConfig
}

type VisionConfig struct {
	DetectorURL string // face detector service (YOLO sidecar)
	MatcherURL  string // identity matcher service (DeepFace sidecar), optional
	EmbedderURL string // embedding service, required when MatcherURL is empty
	Timeout     time.Duration
}

type LivenessConfig struct {
	BlinkThreshold   float64 `yaml:"blink_threshold"`
	ReflectionCutoff int     `yaml:"reflection_cutoff"`
}

type DetectionConfig struct {
	MinConfidence float64 `yaml:"min_confidence"`
}

type RecognizerConfig struct {
	CropSize int `yaml:"crop_size"`
	MinVotes int `yaml:"min_votes"`
}

type AttendanceConfig struct {
	ToleranceMinutes int `yaml:"tolerance_minutes"`
}

// Tolerance returns the schedule window tolerance as a duration.
func (c AttendanceConfig) Tolerance() time.Duration {
	return time.Duration(c.ToleranceMinutes) * time.Minute
}

type GalleryConfig struct {
	Path          string // root directory, one subfolder per identity
	CleanInterval time.Duration
}

type DatabaseConfig struct {
	URL           string // PostgreSQL connection URL
	MaxOpenConns  int    // Maximum open connections (default 25)
	MaxIdleConns  int    // Maximum idle connections (default 5)
	HNSWIndexPath string // Path to persist the gallery HNSW index (optional)
}

// defaults mirrors the embedded defaults.yaml layout.
type defaults struct {
	Liveness   LivenessConfig   `yaml:"liveness"`
	Detection  DetectionConfig  `yaml:"detection"`
	Recognizer RecognizerConfig `yaml:"recognition"`
	Attendance AttendanceConfig `yaml:"attendance"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var def defaults
	if err := yaml.Unmarshal(defaultsYAML, &def); err != nil {
		// Embedded file, cannot happen outside a broken build.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Vision: VisionConfig{
			DetectorURL: os.Getenv("DETECTOR_URL"),
			MatcherURL:  os.Getenv("MATCHER_URL"),
			EmbedderURL: os.Getenv("EMBEDDER_URL"),
			Timeout:     time.Duration(envInt("VISION_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Liveness: LivenessConfig{
			BlinkThreshold:   envFloat("BLINK_THRESHOLD", def.Liveness.BlinkThreshold),
			ReflectionCutoff: envInt("REFLECTION_CUTOFF", def.Liveness.ReflectionCutoff),
		},
		Detection: DetectionConfig{
			MinConfidence: envFloat("DETECTION_MIN_CONFIDENCE", def.Detection.MinConfidence),
		},
		Recognizer: RecognizerConfig{
			CropSize: envInt("RECOGNITION_CROP_SIZE", def.Recognizer.CropSize),
			MinVotes: envInt("RECOGNITION_MIN_VOTES", def.Recognizer.MinVotes),
		},
		Attendance: AttendanceConfig{
			ToleranceMinutes: envInt("SCHEDULE_TOLERANCE_MINUTES", def.Attendance.ToleranceMinutes),
		},
		Gallery: GalleryConfig{
			Path:          os.Getenv("GALLERY_PATH"),
			CleanInterval: time.Duration(envInt("GALLERY_CLEAN_INTERVAL_MINUTES", 60)) * time.Minute,
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MaxOpenConns:  envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWIndexPath: os.Getenv("HNSW_INDEX_PATH"),
		},
	}
}
