package registry

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/reviewbot/internal/di"
)

// Loader builds the dependency container from the parsed global flags.
type Loader func(ctx context.Context, cmd *cli.Command) (*di.Container, error)

type CommandFactory interface {
	CreateCommand(load Loader) *cli.Command
}

// Registry keeps command factories in registration order.
type Registry struct {
	names     []string
	factories map[string]CommandFactory
	load      Loader
}

func NewRegistry(load Loader) *Registry {
	return &Registry{
		factories: make(map[string]CommandFactory),
		load:      load,
	}
}

func (r *Registry) Register(name string, factory CommandFactory) error {
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("command factory '%s' already registered", name)
	}
	r.names = append(r.names, name)
	r.factories[name] = factory
	return nil
}

func (r *Registry) CreateCommands() []*cli.Command {
	commands := make([]*cli.Command, 0, len(r.names))
	for _, name := range r.names {
		commands = append(commands, r.factories[name].CreateCommand(r.load))
	}
	return commands
}
