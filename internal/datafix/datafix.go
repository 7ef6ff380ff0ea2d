// Package datafix is the game schema: the registered record types, their
// walkers and the conversion rules, installed by one ordered registration
// sequence.
package datafix

import (
	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/observability/log"
	"github.com/zeusync/dataconverter/internal/core/schema/registry"
	"github.com/zeusync/dataconverter/internal/core/walkers"
)

// Registered type names.
const (
	Player         = "player"
	Chunk          = "chunk"
	TileEntity     = "tile_entity"
	Entity         = "entity"
	ItemStack      = "item_stack"
	DataComponents = "data_components"
	TextComponent  = "text_component"
	Command        = "command"
)

// CommandUpgrader rewrites the arguments of one command to the current
// grammar. leadingSlash tells whether the command starts with '/'.
type CommandUpgrader interface {
	UpgradeCommand(cmd string, leadingSlash bool) (string, error)
}

type CommandUpgraderFunc func(cmd string, leadingSlash bool) (string, error)

func (f CommandUpgraderFunc) UpgradeCommand(cmd string, leadingSlash bool) (string, error) {
	return f(cmd, leadingSlash)
}

type Options struct {
	// DisableCommandConverter turns dispatch of command strings into identity.
	DisableCommandConverter bool
	// CommandUpgrader is used by the command rule. Without one, commands are
	// carried over unchanged.
	CommandUpgrader CommandUpgrader
}

type schema struct {
	reg  *registry.Registry
	log  log.Log
	opts Options
	text *walkers.Components

	player         *registry.MapTypeDef
	chunk          *registry.MapTypeDef
	tileEntity     *registry.MapTypeDef
	entity         *registry.MapTypeDef
	itemStack      *registry.MapTypeDef
	dataComponents *registry.MapTypeDef
	command        *registry.ValueTypeDef
}

// NewRegistry builds and freezes the game schema.
func NewRegistry(logger log.Log, opts Options) *registry.Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	reg := registry.New(logger)
	s := &schema{
		reg:  reg,
		log:  logger.With(log.String("component", "datafix")),
		opts: opts,
		text: walkers.NewComponents(reg, logger, Command, ItemStack),
	}

	s.registerTypes()
	s.registerWalkers()

	registerV101(s)
	registerV21W43A(s)
	registerV1_20(s)
	registerV3818(s)

	if opts.DisableCommandConverter {
		// registered above, Disable cannot fail
		_ = reg.Disable(Command)
		s.logSkipped(Command, "disabled")
	}

	reg.Freeze()
	return reg
}

func (s *schema) registerTypes() {
	s.player = s.reg.RegisterMapType(Player)
	s.chunk = s.reg.RegisterMapType(Chunk)
	s.tileEntity = s.reg.RegisterIDType(TileEntity, "id")
	s.entity = s.reg.RegisterIDType(Entity, "id")
	s.itemStack = s.reg.RegisterIDType(ItemStack, "id")
	s.dataComponents = s.reg.RegisterMapType(DataComponents)
	s.reg.RegisterValueType(TextComponent)
	s.command = s.reg.RegisterValueType(Command)
}

// walkText brings the commands and items embedded in a component string from
// the last layout before item components up to to. Failures other than
// contract violations keep the input.
func (s *schema) walkText(text string, to converter.Version) (string, error) {
	return s.text.Walk(text, V1_20_4, to)
}
