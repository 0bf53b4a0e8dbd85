package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"zigbee-host/internal/mqtt"
	"zigbee-host/internal/network"
	"zigbee-host/internal/store"
	"zigbee-host/internal/transport"
	"zigbee-host/internal/zigbee"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

type Config struct {
	Serial struct {
		Port string `yaml:"port"`
		Baud int    `yaml:"baud"`
	} `yaml:"serial"`
	Network struct {
		Channel     uint8  `yaml:"channel"`
		PanID       uint16 `yaml:"pan_id"`
		ExtPanID    string `yaml:"extended_pan_id"`
		SecurityKey string `yaml:"security_key"`
		Reinit      bool   `yaml:"reinitialize"`
	} `yaml:"network"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	MQTT struct {
		Enabled     bool   `yaml:"enabled"`
		Broker      string `yaml:"broker"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		TopicPrefix string `yaml:"topic_prefix"`
	} `yaml:"mqtt"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func (c *Config) validate() error {
	if c.Serial.Port == "" {
		return fmt.Errorf("serial.port is required")
	}
	if c.Network.Channel < 11 || c.Network.Channel > 26 {
		return fmt.Errorf("network.channel must be 11-26, got %d", c.Network.Channel)
	}
	if c.Network.PanID > 0x3FFF && c.Network.PanID != 0xFFFF {
		return fmt.Errorf("network.pan_id must be 0x0000-0x3FFF or 0xFFFF, got 0x%04X", c.Network.PanID)
	}
	return nil
}

func main() {
	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfgPath := "config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		bootLogger.Error("load config", "err", err)
		os.Exit(1)
	}
	if err := cfg.validate(); err != nil {
		bootLogger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("zigbee-host starting", "version", version)

	db, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	radio := transport.NewSerialTransport(cfg.Serial.Port, cfg.Serial.Baud, logger)
	manager := network.NewManager(radio, logger)
	manager.SetStateSerializer(db)

	result, err := manager.Initialize()
	if err != nil {
		logger.Error("initialize", "err", err)
		os.Exit(1)
	}
	if result == transport.InitFailed {
		logger.Error("transport failed to initialize")
		os.Exit(1)
	}
	logger.Info("initialized", "result", result.String(),
		"nodes", len(manager.Nodes()), "devices", len(manager.Devices()))

	if err := configureNetwork(manager, cfg); err != nil {
		logger.Error("configure network", "err", err)
		os.Exit(1)
	}

	if err := manager.Startup(cfg.Network.Reinit); err != nil {
		logger.Error("startup", "err", err)
		os.Exit(1)
	}

	var bridge *mqtt.Bridge
	if cfg.MQTT.Enabled {
		bridge, err = mqtt.NewBridge(manager, mqtt.Config{
			Broker:      cfg.MQTT.Broker,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		}, logger)
		if err != nil {
			logger.Error("mqtt bridge", "err", err)
			os.Exit(1)
		}
		bridge.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	signal.Stop(sigCh)
	logger.Info("shutting down", "signal", sig)

	if bridge != nil {
		bridge.Stop()
	}
	if err := manager.Shutdown(); err != nil {
		logger.Error("shutdown", "err", err)
	}
	logger.Info("goodbye")
}

func configureNetwork(manager *network.Manager, cfg *Config) error {
	if err := manager.SetChannel(cfg.Network.Channel); err != nil {
		return fmt.Errorf("set channel: %w", err)
	}
	if err := manager.SetPanID(cfg.Network.PanID); err != nil {
		return fmt.Errorf("set pan id: %w", err)
	}
	if cfg.Network.ExtPanID != "" {
		extPanID, err := zigbee.ParseIEEE(cfg.Network.ExtPanID)
		if err != nil {
			return fmt.Errorf("parse extended pan id: %w", err)
		}
		if err := manager.SetExtendedPanID(uint64(extPanID)); err != nil {
			return fmt.Errorf("set extended pan id: %w", err)
		}
	}
	if cfg.Network.SecurityKey != "" {
		key, err := hex.DecodeString(strings.ReplaceAll(cfg.Network.SecurityKey, ":", ""))
		if err != nil {
			return fmt.Errorf("parse security key: %w", err)
		}
		if err := manager.SetSecurityKey(key); err != nil {
			return fmt.Errorf("set security key: %w", err)
		}
	}
	return nil
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "zigbee-host.db"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "zigbee-host"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	return &cfg, nil
}

func newLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
