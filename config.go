package voevent

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the file form of the client settings.
//
//	hosts = ["45.58.43.186", "68.169.57.253"]
//	port = 8099
//	max_reconnect_timeout = "1024s"
//	read_timeout = "150s"
//	notice_types = [111, 112, 115]
type Config struct {
	Hosts               []string      `toml:"hosts"`
	Port                int           `toml:"port"`
	InitialReconnect    time.Duration `toml:"initial_reconnect_delay"`
	MaxReconnectTimeout time.Duration `toml:"max_reconnect_timeout"`
	Jitter              bool          `toml:"jitter"`
	ConnectTimeout      time.Duration `toml:"connect_timeout"`
	ReadTimeout         time.Duration `toml:"read_timeout"`
	MaxFrameSize        uint32        `toml:"max_frame_size"`

	// Respond enables VTP ack/iamalive responses signed with IVORN.
	Respond bool   `toml:"respond"`
	IVORN   string `toml:"ivorn"`

	// NoticeTypes restricts the primary handler; empty means all types.
	NoticeTypes []int `toml:"notice_types"`
	// ExcludeNoticeTypes is applied when NoticeTypes is empty.
	ExcludeNoticeTypes []int `toml:"exclude_notice_types"`

	ArchiveDir  string `toml:"archive_dir"`
	LogLevel    string `toml:"log_level"`
	MetricsAddr string `toml:"metrics_addr"`
}

// DefaultConfig returns the settings of the public GCN brokers.
func DefaultConfig() Config {
	backoff := DefaultBackoffConfig()
	return Config{
		Hosts:               append([]string(nil), DefaultHosts...),
		Port:                DefaultPort,
		InitialReconnect:    backoff.InitialDelay,
		MaxReconnectTimeout: backoff.MaxDelay,
		IVORN:               DefaultIVORN,
		LogLevel:            "info",
	}
}

// LoadConfig reads a TOML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config load failed (%s)", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML data over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, "config parse failed")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, errors.Errorf("config has unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (cfg Config) Validate() error {
	if len(cfg.Hosts) == 0 {
		return ErrNoHosts
	}
	for i, h := range cfg.Hosts {
		if strings.TrimSpace(h) == "" {
			return errors.Errorf("hosts[%d] is empty", i)
		}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.Wrapf(ErrInvalidPort, "%d", cfg.Port)
	}
	if cfg.MaxReconnectTimeout < 0 || cfg.InitialReconnect < 0 {
		return errors.New("reconnect delays must not be negative")
	}
	if cfg.ConnectTimeout < 0 || cfg.ReadTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if len(cfg.NoticeTypes) > 0 && len(cfg.ExcludeNoticeTypes) > 0 {
		return errors.New("notice_types and exclude_notice_types are mutually exclusive")
	}
	return nil
}

// Options converts the transport settings to client options.
// Handlers are not part of the file; add them with Registration or
// RegistrationOption.
func (cfg Config) Options() []Option {
	opts := []Option{
		HostsOption(cfg.Hosts...),
		PortOption(cfg.Port),
		BackoffOption(BackoffConfig{
			InitialDelay: cfg.InitialReconnect,
			Multiplier:   2.0,
			MaxDelay:     cfg.MaxReconnectTimeout,
			Jitter:       cfg.Jitter,
		}),
		ConnectTimeoutOption(cfg.ConnectTimeout),
		ReadTimeoutOption(cfg.ReadTimeout),
		MaxFrameSizeOption(cfg.MaxFrameSize),
	}
	if cfg.Respond {
		opts = append(opts, ResponderOption(cfg.IVORN))
	}
	return opts
}

// Registration wraps h with the configured notice type filter.
func (cfg Config) Registration(h Handler) Registration {
	switch {
	case len(cfg.NoticeTypes) > 0:
		return IncludeNoticeTypes(h, toNoticeTypes(cfg.NoticeTypes)...)
	case len(cfg.ExcludeNoticeTypes) > 0:
		return ExcludeNoticeTypes(h, toNoticeTypes(cfg.ExcludeNoticeTypes)...)
	default:
		return AllNotices(h)
	}
}

func toNoticeTypes(raw []int) []NoticeType {
	types := make([]NoticeType, len(raw))
	for i, t := range raw {
		types[i] = NoticeType(t)
	}
	return types
}
