package kaiten

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/kaiten/control"
	"github.com/viant/kaiten/logging"
	"github.com/viant/kaiten/policy"
	"github.com/viant/kaiten/service/allocator"
	"github.com/viant/kaiten/service/arrival"
	"github.com/viant/kaiten/service/group"
	"github.com/viant/kaiten/service/kitchen"
	"github.com/viant/kaiten/service/manager"
	"gopkg.in/yaml.v3"
)

// ErrInit wraps every failure to set up a simulation.
var ErrInit = errors.New("simulation init failed")

// Config is a serialisable representation of a simulation. It can be
// populated from YAML or JSON; LoadConfig starts from DefaultConfig so a
// document only needs the fields it changes.
type Config struct {
	// Tables holds the number of tables seating 1, 2, 3 and 4 guests.
	Tables       []int            `json:"tables" yaml:"tables"`
	Belt         BeltConfig       `json:"belt" yaml:"belt"`
	Queue        QueueConfig      `json:"queue" yaml:"queue"`
	Speed        string           `json:"speed" yaml:"speed"`
	PollInterval time.Duration    `json:"pollInterval" yaml:"pollInterval"`
	Arrival      arrival.Config   `json:"arrival" yaml:"arrival"`
	Kitchen      kitchen.Config   `json:"kitchen" yaml:"kitchen"`
	Group        group.Config     `json:"group" yaml:"group"`
	Allocator    allocator.Config `json:"allocator" yaml:"allocator"`
	Policy       *policy.Config   `json:"policy,omitempty" yaml:"policy,omitempty"`
	Schedule     manager.Schedule `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Logging      logging.Config   `json:"logging" yaml:"logging"`
	Journal      int              `json:"journal" yaml:"journal"`
	Tracing      TracingConfig    `json:"tracing" yaml:"tracing"`
}

// BeltConfig configures the conveyor belt.
type BeltConfig struct {
	Capacity int           `json:"capacity" yaml:"capacity"`
	Rotation time.Duration `json:"rotation" yaml:"rotation"`
}

// QueueConfig configures the waiting queues.
type QueueConfig struct {
	MaxNormal int `json:"maxNormal" yaml:"maxNormal"`
	MaxVIP    int `json:"maxVip" yaml:"maxVip"`
	// Barrier defers seating until that many groups arrived; zero disables it.
	Barrier int `json:"barrier" yaml:"barrier"`
}

// TracingConfig enables the stdout (or file) span exporter.
type TracingConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
}

// DefaultConfig returns four tables of every size, a ten plate belt and
// ten places in each waiting queue.
func DefaultConfig() *Config {
	return &Config{
		Tables:       []int{4, 4, 4, 4},
		Belt:         BeltConfig{Capacity: 10, Rotation: 500 * time.Millisecond},
		Queue:        QueueConfig{MaxNormal: 10, MaxVIP: 10},
		Speed:        control.Normal.String(),
		PollInterval: control.DefaultPollInterval,
		Arrival:      arrival.DefaultConfig(),
		Kitchen:      kitchen.DefaultConfig(),
		Group:        group.DefaultConfig(),
		Allocator:    allocator.DefaultConfig(),
		Logging:      logging.DefaultConfig(),
		Journal:      1024,
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config was nil")
	}
	var errs []error
	if len(c.Tables) != 4 {
		errs = append(errs, fmt.Errorf("tables must list 4 counts (capacity 1..4), got %d", len(c.Tables)))
	} else {
		total := 0
		for i, count := range c.Tables {
			if count < 0 {
				errs = append(errs, fmt.Errorf("tables[%d] must be >= 0", i))
			}
			total += count
		}
		if total == 0 {
			errs = append(errs, errors.New("at least one table is required"))
		}
	}
	if c.Belt.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("belt.capacity must be > 0, got %d", c.Belt.Capacity))
	}
	if c.Queue.MaxNormal <= 0 || c.Queue.MaxVIP <= 0 {
		errs = append(errs, errors.New("queue.maxNormal and queue.maxVip must be > 0"))
	}
	if c.Queue.Barrier < 0 {
		errs = append(errs, errors.New("queue.barrier must be >= 0"))
	}
	if c.Queue.Barrier > 0 && c.Arrival.Groups > 0 && c.Queue.Barrier > c.Arrival.Groups {
		errs = append(errs, fmt.Errorf("queue.barrier %d exceeds arrival.groups %d", c.Queue.Barrier, c.Arrival.Groups))
	}
	if _, err := control.ParseSpeed(c.Speed); err != nil {
		errs = append(errs, err)
	}
	if c.Group.OrderChance < 0 || c.Group.OrderChance > 1 {
		errs = append(errs, fmt.Errorf("group.orderChance must be within [0, 1], got %v", c.Group.OrderChance))
	}
	for _, err := range []error{c.Arrival.Validate(), c.Policy.Validate(), c.Schedule.Validate(), c.Logging.Validate()} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TableCounts returns Tables as the per-capacity array used by model.NewTables.
func (c *Config) TableCounts() [4]int {
	var ret [4]int
	copy(ret[:], c.Tables)
	return ret
}

// LoadConfig reads a YAML (or JSON) document from any afs supported URL
// (file://, mem://, embed://, ...) on top of DefaultConfig.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load config %v: %v", ErrInit, URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config %v: %v", ErrInit, URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	return ret, nil
}
