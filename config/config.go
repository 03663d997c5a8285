package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"fleetedge/grid"
)

// Config is the top-level application configuration.
type Config struct {
	mu sync.Mutex `yaml:"-"`

	Namespace    string `yaml:"namespace"`
	DatabasePath string `yaml:"database_path"`

	Grid      GridConfig      `yaml:"grid"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Hazard    HazardConfig    `yaml:"hazard"`
	Sim       SimConfig       `yaml:"sim"`
	Routes    []RouteConfig   `yaml:"routes"`
	Web       WebConfig       `yaml:"web"`
	Messaging MessagingConfig `yaml:"messaging"`
}

// GridConfig defines the warehouse floor grid.
type GridConfig struct {
	Size    int     `yaml:"size"`
	Spacing float64 `yaml:"spacing"`
}

// TelemetryConfig defines the robot health feed.
type TelemetryConfig struct {
	URL      string        `yaml:"url"`
	PollRate time.Duration `yaml:"poll_rate"`
}

// HazardConfig defines the zone sensor feed.
type HazardConfig struct {
	URL      string        `yaml:"url"`
	PollRate time.Duration `yaml:"poll_rate"`
}

// SimConfig defines the simulation clock.
type SimConfig struct {
	Tick     time.Duration `yaml:"tick"`      // tick interval
	StepRate float64       `yaml:"step_rate"` // path progress per second
}

// RouteConfig is the configured trip for one tracked robot.
type RouteConfig struct {
	RobotID string          `yaml:"robot_id"`
	Start   grid.Coordinate `yaml:"start"`
	Goal    grid.Coordinate `yaml:"goal"`
}

// WebConfig defines the web server settings.
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// MessagingConfig defines the optional broker integration. The topics are
// optional; when empty a backend-appropriate default is derived, since MQTT
// topic syntax (slashes, wildcards) is not legal in Kafka topic names.
type MessagingConfig struct {
	Backend        string        `yaml:"backend"` // "", "mqtt" or "kafka"
	MQTT           MQTTConfig    `yaml:"mqtt"`
	Kafka          KafkaConfig   `yaml:"kafka"`
	ZoneTopic      string        `yaml:"zone_topic"`
	SnapshotTopic  string        `yaml:"snapshot_topic"`
	ReportInterval time.Duration `yaml:"report_interval"`
}

// MQTTConfig defines MQTT broker settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// KafkaConfig defines Kafka broker settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

// Defaults returns a Config with sane defaults: the 20×20 demo floor and
// the three-robot fleet the dashboards track.
func Defaults() *Config {
	return &Config{
		Namespace:    "warehouse-a",
		DatabasePath: "fleetedge.db",
		Grid:         GridConfig{Size: 20, Spacing: 4},
		Telemetry: TelemetryConfig{
			URL:      "http://localhost:8000/robots/health",
			PollRate: 10 * time.Second,
		},
		Hazard: HazardConfig{
			URL:      "http://localhost:8000/zones/environment",
			PollRate: 15 * time.Second,
		},
		Sim: SimConfig{
			Tick:     50 * time.Millisecond,
			StepRate: 0.05,
		},
		Routes: []RouteConfig{
			{RobotID: "R1", Start: grid.Coordinate{X: 2, Y: 2}, Goal: grid.Coordinate{X: 17, Y: 17}},
			{RobotID: "R2", Start: grid.Coordinate{X: 5, Y: 14}, Goal: grid.Coordinate{X: 14, Y: 3}},
			{RobotID: "R3", Start: grid.Coordinate{X: 17, Y: 2}, Goal: grid.Coordinate{X: 2, Y: 17}},
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 8081,
		},
		Messaging: MessagingConfig{
			Backend:        "",
			ReportInterval: 5 * time.Second,
			MQTT: MQTTConfig{
				Broker: "localhost",
				Port:   1883,
			},
		},
	}
}

// Load reads a YAML config file. If the file doesn't exist, defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) validate() error {
	if c.Grid.Size <= 0 || c.Grid.Spacing <= 0 {
		return fmt.Errorf("grid size and spacing must be positive")
	}
	model := c.GridModel()
	for _, rt := range c.Routes {
		if !model.InBounds(rt.Start) || !model.InBounds(rt.Goal) {
			return fmt.Errorf("route %s: start %v or goal %v outside %dx%d grid",
				rt.RobotID, rt.Start, rt.Goal, c.Grid.Size, c.Grid.Size)
		}
	}
	return nil
}

// GridModel returns the grid conversion model for the configured floor.
func (c *Config) GridModel() grid.Model {
	return grid.Model{Size: c.Grid.Size, Spacing: c.Grid.Spacing}
}

// Route returns the configured route for a robot id.
func (c *Config) Route(robotID string) (RouteConfig, bool) {
	for _, rt := range c.Routes {
		if rt.RobotID == robotID {
			return rt, true
		}
	}
	return RouteConfig{}, false
}

// TrackedRobots returns the ids of all robots with a configured route.
// Telemetry for any other id is ignored.
func (c *Config) TrackedRobots() map[string]bool {
	tracked := make(map[string]bool, len(c.Routes))
	for _, rt := range c.Routes {
		tracked[rt.RobotID] = true
	}
	return tracked
}

// ClientID returns the configured MQTT client id, or derives one.
func (c *Config) ClientID() string {
	if c.Messaging.MQTT.ClientID != "" {
		return c.Messaging.MQTT.ClientID
	}
	return "fleetedge-" + c.Namespace
}

// ZoneTopic returns the topic the zone sensor feed arrives on. Unless
// configured, MQTT gets the simulator's zone/<id> wildcard and Kafka a
// single zone-readings topic, because '/' and '+' are not legal in Kafka
// topic names.
func (c *Config) ZoneTopic() string {
	if c.Messaging.ZoneTopic != "" {
		return c.Messaging.ZoneTopic
	}
	if c.Messaging.Backend == "kafka" {
		return "zone-readings"
	}
	return "zone/+"
}

// SnapshotTopic returns the topic fleet snapshots are published to, derived
// per backend the same way as ZoneTopic.
func (c *Config) SnapshotTopic() string {
	if c.Messaging.SnapshotTopic != "" {
		return c.Messaging.SnapshotTopic
	}
	if c.Messaging.Backend == "kafka" {
		return "fleet-snapshot"
	}
	return "fleet/snapshot"
}
