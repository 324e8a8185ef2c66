package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchmasta/internal/sysex"
)

func TestEffectRegistryShape(t *testing.T) {
	types := EffectTypes()
	require.Len(t, types, 18)
	for i, def := range types {
		assert.Equal(t, i, def.ID)
	}
	assert.Equal(t, "Effect Off", types[0].Name)
	assert.Empty(t, types[0].Params)
	assert.Equal(t, "Grain Shifter", types[17].Name)
}

func TestEffectParamCounts(t *testing.T) {
	want := map[int]int{
		0: 0, 1: 5, 2: 16, 3: 16, 4: 15, 5: 14, 6: 10, 7: 12, 8: 18,
		9: 9, 10: 16, 11: 8, 12: 14, 13: 10, 14: 14, 15: 10, 16: 15, 17: 11,
	}
	for id, count := range want {
		def, ok := EffectType(id)
		require.True(t, ok, "type %d", id)
		assert.Len(t, def.Params, count, "type %d (%s)", id, def.Name)
	}
}

func TestEffectSlotIndexInvariants(t *testing.T) {
	for _, def := range EffectTypes() {
		seen := map[int]bool{}
		for _, p := range def.Params {
			assert.False(t, seen[p.SlotIndex],
				"%s: duplicate slot index %d", def.Name, p.SlotIndex)
			seen[p.SlotIndex] = true
			assert.GreaterOrEqual(t, p.SlotIndex, 0, "%s/%s", def.Name, p.Key)
			assert.LessOrEqual(t, p.SlotIndex, sysex.MaxSlotIndex, "%s/%s", def.Name, p.Key)
			assert.NotEqual(t, sysex.RibbonAssignOff, p.SlotIndex,
				"%s/%s collides with the ribbon-off sentinel", def.Name, p.Key)
			assert.LessOrEqual(t, p.Min, p.Max, "%s/%s", def.Name, p.Key)
		}
		// Slot indices are contiguous from 0.
		for i := 0; i < len(def.Params); i++ {
			assert.True(t, seen[i], "%s: slot index %d missing", def.Name, i)
		}
	}
}

func TestEveryActiveEffectHasRibbonableDryWet(t *testing.T) {
	for _, def := range EffectTypes()[1:] {
		p, ok := def.ParamByKey("dry_wet")
		require.True(t, ok, def.Name)
		assert.Equal(t, 0, p.SlotIndex, def.Name)
		assert.True(t, p.RibbonAssignable, def.Name)

		assigns := def.RibbonAssigns()
		require.NotEmpty(t, assigns, def.Name)
		assert.Equal(t, "dry_wet", assigns[0].Key, def.Name)
	}
}

func TestEffectParamLookups(t *testing.T) {
	delay, ok := EffectType(6)
	require.True(t, ok)
	assert.Equal(t, "Delay", delay.Name)

	p, ok := delay.ParamByKey("feedback")
	require.True(t, ok)
	assert.Equal(t, 6, p.SlotIndex)

	bySlot, ok := delay.ParamBySlot(6)
	require.True(t, ok)
	assert.Equal(t, "feedback", bySlot.Key)

	_, ok = delay.ParamByKey("no_such_key")
	assert.False(t, ok)
	_, ok = delay.ParamBySlot(99)
	assert.False(t, ok)

	_, ok = EffectType(-1)
	assert.False(t, ok)
	_, ok = EffectType(18)
	assert.False(t, ok)
}

func TestLFOSyncNoteLabels(t *testing.T) {
	filter, ok := EffectType(2)
	require.True(t, ok)
	p, ok := filter.ParamByKey("lfo_sync_note")
	require.True(t, ok)
	require.Len(t, p.ValueLabels, 22)
	assert.Equal(t, "8/1", p.ValueLabels[0])
	assert.Equal(t, "1/64", p.ValueLabels[21])
	assert.Equal(t, 21, p.Max)
}
