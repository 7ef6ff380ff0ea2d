package datafix

import (
	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/walkers"
)

var signIDs = []string{"minecraft:sign", "minecraft:hanging_sign"}

func (s *schema) registerWalkers() {
	r := s.reg

	s.player.SetWalker(walkers.Compose(
		walkers.Lists(r, ItemStack, "Inventory", "EnderItems"),
		walkers.Maps(r, Entity, "RootVehicle.Entity"),
	))

	s.chunk.SetWalker(walkers.Compose(
		walkers.Lists(r, Entity, "Level.Entities"),
		walkers.Lists(r, TileEntity, "Level.TileEntities"),
	))
	s.chunk.AddWalker(V21W43A, walkers.Compose(
		walkers.Lists(r, Entity, "entities"),
		walkers.Lists(r, TileEntity, "block_entities"),
	))

	s.tileEntity.SetWalker(walkers.Compose(
		walkers.Lists(r, ItemStack, "Items"),
		walkers.Maps(r, ItemStack, "RecordItem", "Book"),
	))
	for _, id := range []string{"Control", "minecraft:command_block"} {
		s.tileEntity.AddWalkerForID(id, converter.Version{}, walkers.Values(r, Command, "Command"))
	}

	s.entity.SetWalker(walkers.Compose(
		walkers.Lists(r, ItemStack, "Items", "ArmorItems", "HandItems", "Inventory"),
		walkers.Maps(r, ItemStack, "Item", "SaddleItem"),
		walkers.Lists(r, Entity, "Passengers"),
	))
	for _, id := range []string{"MinecartCommandBlock", "minecraft:command_block_minecart"} {
		s.entity.AddWalkerForID(id, converter.Version{}, walkers.Values(r, Command, "Command"))
	}

	s.itemStack.SetWalker(walkers.Compose(
		walkers.Maps(r, TileEntity, "tag.BlockEntityTag"),
		walkers.Maps(r, Entity, "tag.EntityTag"),
		walkers.Lists(r, ItemStack, "tag.Items"),
	))
	s.itemStack.AddWalker(itemComponentsVersion, walkers.Maps(r, DataComponents, "components"))

	s.dataComponents.SetWalker(walkers.Compose(
		walkers.Each(walkers.Maps(r, ItemStack, "item"), "minecraft:container"),
		walkers.Lists(r, ItemStack, "minecraft:bundle_contents", "minecraft:charged_projectiles"),
		walkers.Maps(r, TileEntity, "minecraft:block_entity_data"),
		walkers.Maps(r, Entity, "minecraft:entity_data"),
	))
}
