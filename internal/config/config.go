package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8501"`
		Host         string        `yaml:"host" default:"127.0.0.1"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"60s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"60s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"120s"`
	} `yaml:"server"`

	Auth struct {
		ClientID       string   `yaml:"client_id"`
		Authority      string   `yaml:"authority" default:"https://login.microsoftonline.com/common"`
		Scopes         []string `yaml:"scopes"`
		CredentialFile string   `yaml:"credential_file" default:"cred.json"`
		// StaleDays is the age after which a cached credential is refused outright.
		StaleDays int `yaml:"stale_days" default:"80"`
	} `yaml:"auth"`

	Graph struct {
		BaseURL   string        `yaml:"base_url" default:"https://graph.microsoft.com/v1.0"`
		Timeout   time.Duration `yaml:"timeout" default:"10s"`
		RateLimit int           `yaml:"rate_limit" default:"120"` // requests per minute
	} `yaml:"graph"`

	Drive struct {
		TrackerPath      string `yaml:"tracker_path" default:"Jobs/JobTracker.xlsx"`
		TrackerTable     string `yaml:"tracker_table" default:"JobTable"`
		ApplicationsRoot string `yaml:"applications_root" default:"Jobs/applications"`
		TemplatesRoot    string `yaml:"templates_root" default:"Jobs/templates"`
		BulletBankFolder string `yaml:"bullet_bank_folder" default:"Bullet Bank"`
	} `yaml:"drive"`

	Documents struct {
		CV          DocumentSet `yaml:"cv"`
		CoverLetter DocumentSet `yaml:"cover_letter"`
		JobTypes    []string    `yaml:"job_types"`
		Categories  []string    `yaml:"categories"`
	} `yaml:"documents"`

	Session struct {
		Backend    string        `yaml:"backend" default:"memory"` // memory or redis
		CookieName string        `yaml:"cookie_name" default:"jobdesk_session"`
		TTL        time.Duration `yaml:"ttl" default:"12h"`
	} `yaml:"session"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`

	LLM struct {
		Provider  string        `yaml:"provider" default:"claude"`
		APIKey    string        `yaml:"api_key"`
		BaseURL   string        `yaml:"base_url"`
		Model     string        `yaml:"model" default:"claude-3-5-haiku-latest"`
		MaxTokens int           `yaml:"max_tokens" default:"512"`
		Timeout   time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"llm"`

	Archive struct {
		Enabled         bool   `yaml:"enabled"`
		BucketURL       string `yaml:"bucket_url"`
		CDNEndpoint     string `yaml:"cdn_endpoint"`
		AccessKeyID     string `yaml:"access_key_id"`
		AccessKeySecret string `yaml:"access_key_secret"`
		Region          string `yaml:"region" default:"fra1"`
		BucketName      string `yaml:"bucket_name"`
		Prefix          string `yaml:"prefix" default:"applications"`
	} `yaml:"archive"`

	Posting struct {
		Timeout   time.Duration `yaml:"timeout" default:"10s"`
		UserAgent string        `yaml:"user_agent"`
	} `yaml:"posting"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"text"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// DocumentSet names the files that make up one generated document kind.
type DocumentSet struct {
	TemplateDocx string `yaml:"template_docx"`
	SchemaJSON   string `yaml:"schema_json"`
	BulletsJSON  string `yaml:"bullets_json"`
	OutputDocx   string `yaml:"output_docx"`
	OutputPDF    string `yaml:"output_pdf"`
}

var (
	bracedVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands ${VAR} and $VAR references, leaving unknown variables in place
func expandEnvVars(s string) string {
	s = bracedVar.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})

	return bareVar.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[1:]); val != "" {
			return val
		}
		return match
	})
}

// Default returns a configuration populated with built-in defaults only
func Default() *Config {
	config := &Config{}

	config.Server.Port = 8501
	config.Server.Host = "127.0.0.1"
	config.Server.ReadTimeout = 60 * time.Second
	config.Server.WriteTimeout = 60 * time.Second
	config.Server.IdleTimeout = 120 * time.Second

	config.Auth.Authority = "https://login.microsoftonline.com/common"
	config.Auth.Scopes = []string{"User.Read", "Files.ReadWrite"}
	config.Auth.CredentialFile = "cred.json"
	config.Auth.StaleDays = 80

	config.Graph.BaseURL = "https://graph.microsoft.com/v1.0"
	config.Graph.Timeout = 10 * time.Second
	config.Graph.RateLimit = 120

	config.Drive.TrackerPath = "Jobs/JobTracker.xlsx"
	config.Drive.TrackerTable = "JobTable"
	config.Drive.ApplicationsRoot = "Jobs/applications"
	config.Drive.TemplatesRoot = "Jobs/templates"
	config.Drive.BulletBankFolder = "Bullet Bank"

	config.Documents.CV = DocumentSet{
		TemplateDocx: "CV.docx",
		SchemaJSON:   "CV_template.json",
		BulletsJSON:  "CV_WEBullets.json",
		OutputDocx:   "Preview_CV.docx",
		OutputPDF:    "CV.pdf",
	}
	config.Documents.CoverLetter = DocumentSet{
		TemplateDocx: "coverletter.docx",
		SchemaJSON:   "CL_template.json",
		BulletsJSON:  "CL_WEBullets.json",
		OutputDocx:   "FINAL_CL.docx",
		OutputPDF:    "FINAL_CL.pdf",
	}
	config.Documents.JobTypes = []string{
		"Full Stack Developer", "Cloud Engineer", "DevOps Engineer",
		"Python Engineer", "Backend Engineer", "AI Engineer",
	}
	config.Documents.Categories = []string{"Frontend", "Backend", "DevOps", "Cloud", "Metrics", "Database"}

	config.Session.Backend = "memory"
	config.Session.CookieName = "jobdesk_session"
	config.Session.TTL = 12 * time.Hour

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Timeout = 5 * time.Second

	config.LLM.Provider = "claude"
	config.LLM.Model = "claude-3-5-haiku-latest"
	config.LLM.MaxTokens = 512
	config.LLM.Timeout = 30 * time.Second

	config.Archive.Region = "fra1"
	config.Archive.Prefix = "applications"

	config.Posting.Timeout = 10 * time.Second
	config.Posting.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	config.Logging.Level = "info"
	config.Logging.Format = "text"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()
	config.normalize()

	return config, nil
}

// StaleAfter returns the credential staleness threshold as a duration
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Auth.StaleDays) * 24 * time.Hour
}

// Accepted range for auth.stale_days
const (
	MinStaleDays = 80
	MaxStaleDays = 90
)

// normalize clamps values that the rest of the system relies on
func (c *Config) normalize() {
	switch {
	case c.Auth.StaleDays < MinStaleDays:
		c.Auth.StaleDays = MinStaleDays
	case c.Auth.StaleDays > MaxStaleDays:
		c.Auth.StaleDays = MaxStaleDays
	}
	if c.Graph.RateLimit <= 0 {
		c.Graph.RateLimit = 120
	}
	c.Graph.BaseURL = strings.TrimRight(c.Graph.BaseURL, "/")
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if clientID := os.Getenv("AZURE_CLIENT_ID"); clientID != "" {
		c.Auth.ClientID = clientID
	}

	if authority := os.Getenv("AZURE_AUTHORITY"); authority != "" {
		c.Auth.Authority = authority
	}

	if credFile := os.Getenv("CREDENTIAL_FILE"); credFile != "" {
		c.Auth.CredentialFile = credFile
	}

	if staleDays := os.Getenv("CREDENTIAL_STALE_DAYS"); staleDays != "" {
		if days, err := strconv.Atoi(staleDays); err == nil {
			c.Auth.StaleDays = days
		}
	}

	if baseURL := os.Getenv("GRAPH_BASE_URL"); baseURL != "" {
		c.Graph.BaseURL = baseURL
	}

	if trackerPath := os.Getenv("TRACKER_PATH"); trackerPath != "" {
		c.Drive.TrackerPath = trackerPath
	}

	if backend := os.Getenv("SESSION_BACKEND"); backend != "" {
		c.Session.Backend = backend
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	// Spaces archive
	if enabled := os.Getenv("ARCHIVE_ENABLED"); enabled != "" {
		c.Archive.Enabled = enabled == "true" || enabled == "1"
	}

	if bucketURL := os.Getenv("BUCKET_URL"); bucketURL != "" {
		c.Archive.BucketURL = bucketURL
	}

	if cdnEndpoint := os.Getenv("BUCKET_CDN_ENDPOINT"); cdnEndpoint != "" {
		c.Archive.CDNEndpoint = cdnEndpoint
	}

	if accessKeyID := os.Getenv("BUCKET_ACCESS_KEY_ID"); accessKeyID != "" {
		c.Archive.AccessKeyID = accessKeyID
	}

	if accessKeySecret := os.Getenv("BUCKET_ACCESS_KEY_SECRET"); accessKeySecret != "" {
		c.Archive.AccessKeySecret = accessKeySecret
	}

	if region := os.Getenv("BUCKET_REGION"); region != "" {
		c.Archive.Region = region
	}

	if bucketName := os.Getenv("BUCKET_NAME"); bucketName != "" {
		c.Archive.BucketName = bucketName
	}
}
