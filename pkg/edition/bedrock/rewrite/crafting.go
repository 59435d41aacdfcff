package rewrite

import (
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// wildcardMeta is the metadata value of descriptors matching any damage.
const wildcardMeta = 0x7fff

func (r *Rewriter) craftingData(p int32, pk *packet.CraftingData) {
	for _, rec := range pk.Recipes {
		switch rec := rec.(type) {
		case *protocol.ShapelessRecipe:
			r.shapeless(p, rec)
		case *protocol.ShapelessChemistryRecipe:
			r.shapeless(p, &rec.ShapelessRecipe)
		case *protocol.ShulkerBoxRecipe:
			r.shapeless(p, &rec.ShapelessRecipe)
		case *protocol.ShapedRecipe:
			r.shaped(p, rec)
		case *protocol.ShapedChemistryRecipe:
			r.shaped(p, &rec.ShapedRecipe)
		case *protocol.FurnaceRecipe:
			rec.InputType.NetworkID, _ = r.idMeta(p, rec.InputType.NetworkID, 0)
			rec.Output = r.translator.Item(p, rec.Output, true)
		case *protocol.FurnaceDataRecipe:
			rec.InputType.NetworkID, rec.InputType.MetadataValue = r.idMeta(p, rec.InputType.NetworkID, rec.InputType.MetadataValue)
			rec.Output = r.translator.Item(p, rec.Output, true)
		case *protocol.SmithingTransformRecipe:
			r.descriptor(p, &rec.Template)
			r.descriptor(p, &rec.Base)
			r.descriptor(p, &rec.Addition)
			rec.Result = r.translator.Item(p, rec.Result, true)
		case *protocol.SmithingTrimRecipe:
			r.descriptor(p, &rec.Template)
			r.descriptor(p, &rec.Base)
			r.descriptor(p, &rec.Addition)
		case *protocol.MultiRecipe:
			// hardcoded in the client
		}
	}
	for i := range pk.PotionRecipes {
		m := &pk.PotionRecipes[i]
		m.InputPotionID, m.InputPotionMetadata = r.idMetaInt(p, m.InputPotionID, m.InputPotionMetadata)
		m.ReagentItemID, m.ReagentItemMetadata = r.idMetaInt(p, m.ReagentItemID, m.ReagentItemMetadata)
		m.OutputPotionID, m.OutputPotionMetadata = r.idMetaInt(p, m.OutputPotionID, m.OutputPotionMetadata)
	}
	for i := range pk.PotionContainerChangeRecipes {
		m := &pk.PotionContainerChangeRecipes[i]
		m.InputItemID = r.translator.ItemRuntimeID(p, m.InputItemID, true)
		m.ReagentItemID = r.translator.ItemRuntimeID(p, m.ReagentItemID, true)
		m.OutputItemID = r.translator.ItemRuntimeID(p, m.OutputItemID, true)
	}
}

func (r *Rewriter) shapeless(p int32, rec *protocol.ShapelessRecipe) {
	for i := range rec.Input {
		r.descriptor(p, &rec.Input[i])
	}
	for i := range rec.Output {
		rec.Output[i] = r.translator.Item(p, rec.Output[i], true)
	}
}

func (r *Rewriter) shaped(p int32, rec *protocol.ShapedRecipe) {
	for i := range rec.Input {
		r.descriptor(p, &rec.Input[i])
	}
	for i := range rec.Output {
		rec.Output[i] = r.translator.Item(p, rec.Output[i], true)
	}
}

// descriptor translates an ingredient that references a concrete item.
// Tag, alias, MoLang and deferred descriptors reference items symbolically
// and are left unchanged.
func (r *Rewriter) descriptor(p int32, d *protocol.ItemDescriptorCount) {
	def, ok := d.Descriptor.(*protocol.DefaultItemDescriptor)
	if !ok || def.NetworkID == 0 {
		return
	}
	id, meta := r.idMeta(p, int32(def.NetworkID), uint32(def.MetadataValue))
	translated := &protocol.DefaultItemDescriptor{NetworkID: int16(id), MetadataValue: def.MetadataValue}
	if def.MetadataValue != wildcardMeta {
		translated.MetadataValue = int16(meta)
	}
	d.Descriptor = translated
}

// idMeta translates an item given only by runtime id and metadata value.
func (r *Rewriter) idMeta(p, id int32, meta uint32) (int32, uint32) {
	stack := r.translator.Item(p, protocol.ItemStack{
		ItemType: protocol.ItemType{NetworkID: id, MetadataValue: meta},
	}, true)
	return stack.NetworkID, stack.MetadataValue
}

// idMetaInt is idMeta for the signed metadata values of potion recipes.
func (r *Rewriter) idMetaInt(p, id, meta int32) (int32, int32) {
	id, m := r.idMeta(p, id, uint32(meta))
	return id, int32(m)
}
